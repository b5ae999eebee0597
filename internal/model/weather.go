package model

// DayKind tags which section of the timeline a DayRecord belongs to.
type DayKind string

const (
	KindCurrent  DayKind = "current"
	KindForecast DayKind = "forecast"
	KindHistory  DayKind = "history"
)

// CurrentConditions is a normalized snapshot of "now" for one location.
// Produced once per fetch and replaced wholesale on refetch.
type CurrentConditions struct {
	Temperature     float64 `json:"temperature"`
	FeelsLike       float64 `json:"feelsLike"`
	Description     string  `json:"description"`
	WeatherCode     int     `json:"weatherCode"`
	WindSpeed       float64 `json:"windSpeed"`
	WindDirection   string  `json:"windDirection"`
	WindDegree      int     `json:"windDegree"`
	Pressure        float64 `json:"pressure"`
	Precipitation   float64 `json:"precipitation"`
	Humidity        float64 `json:"humidity"`
	CloudCover      float64 `json:"cloudCover"`
	UVIndex         float64 `json:"uvIndex"`
	Visibility      float64 `json:"visibility"`
	IsDay           bool    `json:"isDay"`
	ObservationTime string  `json:"observationTime"`
	IconURL         string  `json:"iconUrl"`
}

// DayRecord is one calendar day's weather, real or simulated.
// IsSimulated is load-bearing for UI disclosure: it is true for every record
// built by the simulator and false for every record built from provider data.
type DayRecord struct {
	Date          string  `json:"date"` // ISO calendar date, unique per timeline
	DayOfWeek     string  `json:"dayOfWeek"`
	Label         string  `json:"label"`
	Temperature   int     `json:"temperature"`
	TempHigh      int     `json:"tempHigh"`
	TempLow       int     `json:"tempLow"`
	Description   string  `json:"description"`
	WeatherCode   int     `json:"weatherCode"`
	WindSpeed     int     `json:"windSpeed"`
	WindDirection string  `json:"windDirection"`
	Pressure      int     `json:"pressure"`
	Precipitation float64 `json:"precipitation"`
	Humidity      int     `json:"humidity"`
	CloudCover    int     `json:"cloudCover"`
	UVIndex       int     `json:"uvIndex"`
	IsSimulated   bool    `json:"isSimulated"`
	Kind          DayKind `json:"kind"`
}

// LocationInfo is the resolved place identity for a fetch cycle.
type LocationInfo struct {
	Name      string  `json:"name"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Timezone  string  `json:"timezone"`
	Localtime string  `json:"localtime"`
}

// SelectedDayState tracks which day the presentation layer is displaying.
// It is transient and reset whenever the location query changes.
type SelectedDayState struct {
	Day    *DayRecord `json:"day"`
	Source DayKind    `json:"source"`
}
