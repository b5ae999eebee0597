// Package normalize converts raw provider payloads into the unified weather
// model. Everything here is a pure mapping: unit reconciliation, type
// coercion and code translation happen at this boundary so nothing upstream
// of the presentation layer ever sees a provider-shaped value.
package normalize

import (
	"math"
	"strconv"
	"time"

	"github.com/mvdwalt/weatherornot/internal/dates"
	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/wxcode"
)

// Location maps a weatherstack location payload. Latitude and longitude
// arrive as strings; unparseable values become zero rather than an error.
func Location(raw model.WeatherstackLocation) model.LocationInfo {
	lat, _ := strconv.ParseFloat(raw.Lat, 64)
	lon, _ := strconv.ParseFloat(raw.Lon, 64)

	return model.LocationInfo{
		Name:      raw.Name,
		Region:    raw.Region,
		Country:   raw.Country,
		Lat:       lat,
		Lon:       lon,
		Timezone:  raw.TimezoneID,
		Localtime: raw.Localtime,
	}
}

// Current maps a weatherstack current-conditions payload. Empty description
// or icon arrays fall back to "Unknown" / empty string.
func Current(raw model.WeatherstackCurrent) model.CurrentConditions {
	desc := "Unknown"
	if len(raw.WeatherDescriptions) > 0 {
		desc = raw.WeatherDescriptions[0]
	}
	icon := ""
	if len(raw.WeatherIcons) > 0 {
		icon = raw.WeatherIcons[0]
	}

	return model.CurrentConditions{
		Temperature:     raw.Temperature,
		FeelsLike:       raw.FeelsLike,
		Description:     desc,
		WeatherCode:     raw.WeatherCode,
		WindSpeed:       raw.WindSpeed,
		WindDirection:   raw.WindDir,
		WindDegree:      raw.WindDegree,
		Pressure:        raw.Pressure,
		Precipitation:   raw.Precip,
		Humidity:        raw.Humidity,
		CloudCover:      raw.CloudCover,
		UVIndex:         raw.UVIndex,
		Visibility:      raw.Visibility,
		IsDay:           raw.IsDay == "yes",
		ObservationTime: raw.ObservationTime,
		IconURL:         icon,
	}
}

// WeatherbitDay maps one weatherbit daily forecast entry. Weatherbit reports
// wind in m/s regardless of its unit parameter's wind handling, so the speed
// is converted to km/h here, at the normalization boundary.
func WeatherbitDay(raw model.WeatherbitDay, now time.Time) model.DayRecord {
	return model.DayRecord{
		Date:          raw.Datetime,
		DayOfWeek:     dates.DayOfWeek(raw.Datetime),
		Label:         dates.Label(now, raw.Datetime),
		Temperature:   roundInt(raw.Temp),
		TempHigh:      roundInt(raw.MaxTemp),
		TempLow:       roundInt(raw.MinTemp),
		Description:   raw.Weather.Description,
		WeatherCode:   raw.Weather.Code,
		WindSpeed:     roundInt(raw.WindSpd * 3.6),
		WindDirection: raw.WindCdir,
		Pressure:      roundInt(raw.Pres),
		Precipitation: roundTenth(raw.Precip),
		Humidity:      roundInt(raw.RH),
		CloudCover:    raw.Clouds,
		UVIndex:       roundInt(raw.UV),
		IsSimulated:   false,
		Kind:          model.KindForecast,
	}
}

// OpenMeteoDays maps an Open-Meteo multi-day response into DayRecords, one
// per daily entry. Hourly pressure, humidity and cloud cover are aggregated
// into daily means by matching each hourly timestamp's date prefix; the WMO
// weather code is translated into the weatherstack code space. Each record's
// Kind is stamped by comparing its date against today's ISO date.
func OpenMeteoDays(resp model.OpenMeteoResponse, units model.UnitSystem, today string, now time.Time) []model.DayRecord {
	daily := resp.Daily
	averages := hourlyAverages(resp.Hourly, daily.Time)

	records := make([]model.DayRecord, 0, len(daily.Time))
	for i, date := range daily.Time {
		wmo := dailyInt(daily.WeatherCode, i)

		high := roundInt(dailyAt(daily.Temperature2mMax, i))
		low := roundInt(dailyAt(daily.Temperature2mMin, i))
		temp := roundInt(float64(high+low) / 2)

		// Open-Meteo has no Kelvin mode; apply the offset for the
		// scientific unit system here.
		if units == model.UnitsScientific {
			high = roundInt(float64(high) + 273.15)
			low = roundInt(float64(low) + 273.15)
			temp = roundInt(float64(temp) + 273.15)
		}

		desc, ok := wxcode.WMODescriptions[wmo]
		if !ok {
			desc = "Unknown"
		}

		kind := model.KindHistory
		switch {
		case date == today:
			kind = model.KindCurrent
		case date > today:
			kind = model.KindForecast
		}

		records = append(records, model.DayRecord{
			Date:          date,
			DayOfWeek:     dates.DayOfWeek(date),
			Label:         dates.Label(now, date),
			Temperature:   temp,
			TempHigh:      high,
			TempLow:       low,
			Description:   desc,
			WeatherCode:   wxcode.FromWMO(wmo),
			WindSpeed:     roundInt(dailyAt(daily.WindSpeed10mMax, i)),
			WindDirection: wxcode.DegreesToDirection(dailyAt(daily.WindDirection10mDominant, i)),
			Pressure:      averages.pressure[i],
			Precipitation: roundTenth(dailyAt(daily.PrecipitationSum, i)),
			Humidity:      averages.humidity[i],
			CloudCover:    averages.cloudCover[i],
			UVIndex:       roundInt(dailyAt(daily.UVIndexMax, i)),
			IsSimulated:   false,
			Kind:          kind,
		})
	}
	return records
}

type dailyMeans struct {
	pressure   []int
	humidity   []int
	cloudCover []int
}

// hourlyAverages folds hourly samples into per-day means keyed by the date
// prefix of each hourly timestamp. Days with no matching hours fall back to
// neutral defaults rather than zeroes.
func hourlyAverages(hourly model.OpenMeteoHourly, days []string) dailyMeans {
	means := dailyMeans{
		pressure:   make([]int, len(days)),
		humidity:   make([]int, len(days)),
		cloudCover: make([]int, len(days)),
	}

	for d, date := range days {
		var pSum, hSum, cSum float64
		count := 0

		for i, ts := range hourly.Time {
			if len(ts) < len(date) || ts[:len(date)] != date {
				continue
			}
			pSum += hourlyAt(hourly.SurfacePressure, i)
			hSum += hourlyAt(hourly.RelativeHumidity2m, i)
			cSum += hourlyAt(hourly.CloudCover, i)
			count++
		}

		if count > 0 {
			n := float64(count)
			means.pressure[d] = roundInt(pSum / n)
			means.humidity[d] = roundInt(hSum / n)
			means.cloudCover[d] = roundInt(cSum / n)
		} else {
			means.pressure[d] = 1013
			means.humidity[d] = 50
			means.cloudCover[d] = 0
		}
	}
	return means
}

// dailyAt guards against ragged parallel arrays in provider payloads.
func dailyAt(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func dailyInt(vals []int, i int) int {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func hourlyAt(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
