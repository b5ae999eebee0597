package model

// OpenMeteoResponse is the raw payload of the Open-Meteo forecast endpoint
// when queried with daily aggregates plus hourly ancillary fields.
type OpenMeteoResponse struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Timezone  string          `json:"timezone"`
	Daily     OpenMeteoDaily  `json:"daily"`
	Hourly    OpenMeteoHourly `json:"hourly"`
}

// OpenMeteoDaily carries parallel arrays indexed by day.
type OpenMeteoDaily struct {
	Time                     []string  `json:"time"` // "2006-01-02"
	Temperature2mMax         []float64 `json:"temperature_2m_max"`
	Temperature2mMin         []float64 `json:"temperature_2m_min"`
	PrecipitationSum         []float64 `json:"precipitation_sum"`
	WindSpeed10mMax          []float64 `json:"wind_speed_10m_max"`
	WindDirection10mDominant []float64 `json:"wind_direction_10m_dominant"`
	WeatherCode              []int     `json:"weather_code"`
	UVIndexMax               []float64 `json:"uv_index_max"`
}

// OpenMeteoHourly carries hourly samples that get averaged into daily means
// by matching each timestamp's date prefix.
type OpenMeteoHourly struct {
	Time               []string  `json:"time"` // "2006-01-02T15:04"
	SurfacePressure    []float64 `json:"surface_pressure"`
	RelativeHumidity2m []float64 `json:"relative_humidity_2m"`
	CloudCover         []float64 `json:"cloud_cover"`
}
