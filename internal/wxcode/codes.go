// Package wxcode holds the fixed weather-code and unit tables shared by the
// normalizers and the simulator. The canonical code space is weatherstack's;
// other providers are translated into it at the normalization boundary so
// icon and description logic stays provider-agnostic.
package wxcode

import "math"

// GenericCloudy is the fallback code for conditions no table knows about.
const GenericCloudy = 119

// severityGroup orders a subset of codes from mildest to most severe. The
// simulator drifts a day's condition by at most one step along this group.
var severityGroup = []int{113, 116, 119, 176, 299, 227, 200}

// Descriptions maps the codes in the severity group to display text.
var Descriptions = map[int]string{
	113: "Sunny",
	116: "Partly Cloudy",
	119: "Cloudy",
	176: "Light Rain",
	299: "Moderate Rain",
	227: "Light Snow",
	200: "Thunderstorm",
}

// SeverityIndex returns the code's position in the severity group, or -1 if
// the code is outside the known ordering.
func SeverityIndex(code int) int {
	for i, c := range severityGroup {
		if c == code {
			return i
		}
	}
	return -1
}

// SeverityAt returns the code at position idx, clamped to the group's ends.
func SeverityAt(idx int) int {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(severityGroup) {
		idx = len(severityGroup) - 1
	}
	return severityGroup[idx]
}

// wmoToWeatherstack translates Open-Meteo's WMO weather codes into the
// weatherstack code space.
var wmoToWeatherstack = map[int]int{
	0:  113, // clear sky
	1:  113, // mainly clear
	2:  116, // partly cloudy
	3:  119, // overcast
	45: 143, // fog
	48: 143, // depositing rime fog
	51: 176, // light drizzle
	53: 176, // moderate drizzle
	55: 266, // dense drizzle
	56: 185, // light freezing drizzle
	57: 185, // dense freezing drizzle
	61: 176, // slight rain
	63: 299, // moderate rain
	65: 308, // heavy rain
	66: 311, // light freezing rain
	67: 314, // heavy freezing rain
	71: 227, // slight snow fall
	73: 329, // moderate snow fall
	75: 338, // heavy snow fall
	77: 227, // snow grains
	80: 176, // slight rain showers
	81: 299, // moderate rain showers
	82: 308, // violent rain showers
	85: 227, // slight snow showers
	86: 338, // heavy snow showers
	95: 200, // thunderstorm
	96: 200, // thunderstorm with slight hail
	99: 200, // thunderstorm with heavy hail
}

// WMODescriptions maps WMO codes to display text.
var WMODescriptions = map[int]string{
	0:  "Clear Sky",
	1:  "Mainly Clear",
	2:  "Partly Cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Rime Fog",
	51: "Light Drizzle",
	53: "Moderate Drizzle",
	55: "Dense Drizzle",
	56: "Light Freezing Drizzle",
	57: "Dense Freezing Drizzle",
	61: "Light Rain",
	63: "Moderate Rain",
	65: "Heavy Rain",
	66: "Light Freezing Rain",
	67: "Heavy Freezing Rain",
	71: "Light Snow",
	73: "Moderate Snow",
	75: "Heavy Snow",
	77: "Snow Grains",
	80: "Light Showers",
	81: "Moderate Showers",
	82: "Heavy Showers",
	85: "Light Snow Showers",
	86: "Heavy Snow Showers",
	95: "Thunderstorm",
	96: "Thunderstorm with Hail",
	99: "Heavy Thunderstorm with Hail",
}

// FromWMO translates a WMO code into the weatherstack code space, falling
// back to the generic cloudy code for unmapped values.
func FromWMO(code int) int {
	if ws, ok := wmoToWeatherstack[code]; ok {
		return ws
	}
	return GenericCloudy
}

var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// DegreesToDirection converts a wind bearing into a 16-point compass label.
func DegreesToDirection(degrees float64) string {
	idx := int(math.Round(degrees/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassPoints[idx]
}
