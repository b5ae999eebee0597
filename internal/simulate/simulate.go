// Package simulate synthesizes daily weather records for days the free-tier
// providers cannot supply. All output is a pure function of the current
// conditions, the location name and the target date: the same inputs always
// reproduce the same records, so simulated days are stable across refetches.
package simulate

import (
	"fmt"
	"math"
	"time"

	"github.com/mvdwalt/weatherornot/internal/dates"
	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/wxcode"
)

// Per-metric perturbation widths applied around the current-conditions
// baseline.
const (
	TempVariance     = 4
	WindVariance     = 8
	PressureVariance = 10
	PrecipVariance   = 2
	HumidityVariance = 15
	CloudVariance    = 20
	UVVariance       = 2
)

// Simulator generates simulated DayRecords. The zero value uses the real
// clock; tests pin Now to a fixed instant.
type Simulator struct {
	Now func() time.Time
}

func (s Simulator) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// hashSeed folds a string into a 32-bit seed. Order- and case-sensitive:
// h = h*31 + codepoint over the string, wrapped to 32 bits, absolute value.
func hashSeed(s string) uint32 {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return uint32(v)
}

// rng is a linear-congruential generator producing draws in [0, 1). It has
// no state beyond the seed, so regenerating with the same seed reproduces
// the identical stream.
type rng struct {
	state uint32
}

func (r *rng) next() float64 {
	r.state = r.state*1664525 + 1013904223
	return float64(r.state) / float64(math.MaxUint32)
}

// vary perturbs base by a signed fraction of variance: draw 0 maps to
// -variance, draw 1 to +variance.
func vary(base, variance, draw float64) float64 {
	return base + (draw*2-1)*variance
}

func clamp(v, min, max float64) float64 {
	return math.Min(max, math.Max(min, v))
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

// shiftCode drifts a weather code by at most one position along the severity
// group: draws below 1/3 step milder, above 2/3 step more severe, otherwise
// stay. Codes outside the group pass through unchanged.
func shiftCode(code int, draw float64) int {
	idx := wxcode.SeverityIndex(code)
	if idx < 0 {
		return code
	}

	switch {
	case draw < 0.33:
		idx--
	case draw > 0.66:
		idx++
	}
	return wxcode.SeverityAt(idx)
}

// simulateDay builds one simulated record for the given date offset. Metrics
// consume draws in a fixed order (temperature, wind, pressure, precipitation,
// humidity, cloud cover, UV, code shift, high offset, low offset); changing
// that order would silently change every simulated value.
func (s Simulator) simulateDay(current model.CurrentConditions, locationName string, offset int, kind model.DayKind) model.DayRecord {
	now := s.now()
	dateStr := dates.Offset(now, offset)

	role := "history"
	if kind == model.KindForecast {
		role = "forecast"
	}
	r := rng{state: hashSeed(fmt.Sprintf("%s_%s_%s", locationName, dateStr, role))}

	temp := roundInt(clamp(vary(current.Temperature, TempVariance, r.next()), -40, 55))
	wind := roundInt(clamp(vary(current.WindSpeed, WindVariance, r.next()), 0, 120))
	pressure := roundInt(clamp(vary(current.Pressure, PressureVariance, r.next()), 950, 1060))
	precip := math.Round(clamp(vary(current.Precipitation, PrecipVariance, r.next()), 0, 50)*10) / 10
	humidity := roundInt(clamp(vary(current.Humidity, HumidityVariance, r.next()), 0, 100))
	cloud := roundInt(clamp(vary(current.CloudCover, CloudVariance, r.next()), 0, 100))
	uv := roundInt(clamp(vary(current.UVIndex, UVVariance, r.next()), 0, 11))
	code := shiftCode(current.WeatherCode, r.next())

	desc, ok := wxcode.Descriptions[code]
	if !ok {
		desc = current.Description
	}

	return model.DayRecord{
		Date:          dateStr,
		DayOfWeek:     dates.DayOfWeek(dateStr),
		Label:         dates.Label(now, dateStr),
		Temperature:   temp,
		TempHigh:      temp + roundInt(r.next()*4+1),
		TempLow:       temp - roundInt(r.next()*4+1),
		Description:   desc,
		WeatherCode:   code,
		WindSpeed:     wind,
		WindDirection: current.WindDirection,
		Pressure:      pressure,
		Precipitation: precip,
		Humidity:      humidity,
		CloudCover:    cloud,
		UVIndex:       uv,
		IsSimulated:   true,
		Kind:          kind,
	}
}

// GenerateHistory synthesizes the three days preceding today, ordered oldest
// to newest (offsets -3, -2, -1). Every record is flagged simulated.
func (s Simulator) GenerateHistory(current model.CurrentConditions, locationName string) []model.DayRecord {
	days := make([]model.DayRecord, 0, 3)
	for i := -3; i <= -1; i++ {
		days = append(days, s.simulateDay(current, locationName, i, model.KindHistory))
	}
	return days
}

// GenerateForecast synthesizes the three days following today (offsets +1,
// +2, +3). Every record is flagged simulated.
func (s Simulator) GenerateForecast(current model.CurrentConditions, locationName string) []model.DayRecord {
	days := make([]model.DayRecord, 0, 3)
	for i := 1; i <= 3; i++ {
		days = append(days, s.simulateDay(current, locationName, i, model.KindForecast))
	}
	return days
}

// WrapAsToday wraps the current snapshot as today's DayRecord without any
// randomness. High/low are derived as temperature +/- 3.
func (s Simulator) WrapAsToday(current model.CurrentConditions) model.DayRecord {
	now := s.now()
	dateStr := dates.Offset(now, 0)
	temp := roundInt(current.Temperature)

	return model.DayRecord{
		Date:          dateStr,
		DayOfWeek:     dates.DayOfWeek(dateStr),
		Label:         "Today",
		Temperature:   temp,
		TempHigh:      temp + 3,
		TempLow:       temp - 3,
		Description:   current.Description,
		WeatherCode:   current.WeatherCode,
		WindSpeed:     roundInt(current.WindSpeed),
		WindDirection: current.WindDirection,
		Pressure:      roundInt(current.Pressure),
		Precipitation: current.Precipitation,
		Humidity:      roundInt(current.Humidity),
		CloudCover:    roundInt(current.CloudCover),
		UVIndex:       roundInt(current.UVIndex),
		IsSimulated:   false,
		Kind:          model.KindCurrent,
	}
}
