package model

// WeatherbitForecastResponse is the raw payload of the weatherbit
// /forecast/daily endpoint.
type WeatherbitForecastResponse struct {
	CityName    string          `json:"city_name"`
	CountryCode string          `json:"country_code"`
	Timezone    string          `json:"timezone"`
	Data        []WeatherbitDay `json:"data"`
}

type WeatherbitDay struct {
	Datetime  string            `json:"datetime"` // "2006-01-02"
	Temp      float64           `json:"temp"`
	MaxTemp   float64           `json:"max_temp"`
	MinTemp   float64           `json:"min_temp"`
	WindSpd   float64           `json:"wind_spd"` // metres per second
	WindCdir  string            `json:"wind_cdir"`
	Pres      float64           `json:"pres"`
	Precip    float64           `json:"precip"`
	RH        float64           `json:"rh"`
	Clouds    int               `json:"clouds"`
	UV        float64           `json:"uv"`
	Weather   WeatherbitWeather `json:"weather"`
	ValidDate string            `json:"valid_date"`
}

type WeatherbitWeather struct {
	Code        int    `json:"code"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}
