package model

// WeatherstackResponse is the raw success envelope returned by the
// weatherstack /current endpoint.
type WeatherstackResponse struct {
	Request  WeatherstackRequest  `json:"request"`
	Location WeatherstackLocation `json:"location"`
	Current  WeatherstackCurrent  `json:"current"`
}

type WeatherstackRequest struct {
	Type     string `json:"type"`
	Query    string `json:"query"`
	Language string `json:"language"`
	Unit     string `json:"unit"`
}

// WeatherstackLocation carries lat/lon as strings; the normalizer coerces
// them to floats.
type WeatherstackLocation struct {
	Name           string `json:"name"`
	Country        string `json:"country"`
	Region         string `json:"region"`
	Lat            string `json:"lat"`
	Lon            string `json:"lon"`
	TimezoneID     string `json:"timezone_id"`
	Localtime      string `json:"localtime"`
	LocaltimeEpoch int64  `json:"localtime_epoch"`
	UTCOffset      string `json:"utc_offset"`
}

type WeatherstackCurrent struct {
	ObservationTime     string   `json:"observation_time"`
	Temperature         float64  `json:"temperature"`
	WeatherCode         int      `json:"weather_code"`
	WeatherIcons        []string `json:"weather_icons"`
	WeatherDescriptions []string `json:"weather_descriptions"`
	WindSpeed           float64  `json:"wind_speed"`
	WindDegree          int      `json:"wind_degree"`
	WindDir             string   `json:"wind_dir"`
	Pressure            float64  `json:"pressure"`
	Precip              float64  `json:"precip"`
	Humidity            float64  `json:"humidity"`
	CloudCover          float64  `json:"cloudcover"`
	FeelsLike           float64  `json:"feelslike"`
	UVIndex             float64  `json:"uv_index"`
	Visibility          float64  `json:"visibility"`
	IsDay               string   `json:"is_day"` // "yes" / "no"
}

// WeatherstackEnvelope distinguishes the success and error shapes of a
// weatherstack response. Error responses arrive with HTTP 200 and
// success=false, so the discriminator has to be inspected explicitly.
type WeatherstackEnvelope struct {
	Success *bool                  `json:"success,omitempty"`
	Error   *WeatherstackErrorBody `json:"error,omitempty"`

	Location *WeatherstackLocation `json:"location,omitempty"`
	Current  *WeatherstackCurrent  `json:"current,omitempty"`
}

type WeatherstackErrorBody struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

// IsError reports whether the envelope carries an error body.
func (e WeatherstackEnvelope) IsError() bool {
	return e.Success != nil && !*e.Success
}
