// Package aggregate combines the current-conditions provider with one
// configured secondary source into a single coherent timeline bundle, and
// tracks per-query fetch lifecycle and day selection on top of it.
package aggregate

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/provider/openmeteo"
	"github.com/mvdwalt/weatherornot/internal/provider/weatherstack"
	"github.com/mvdwalt/weatherornot/internal/simulate"
)

// SecondarySource selects where history and forecast come from. It is a
// deployment-time configuration choice, not a runtime fallback chain.
type SecondarySource string

const (
	// SourceSimulated derives history and forecast from the simulator,
	// seeded by the primary provider's location and conditions.
	SourceSimulated SecondarySource = "simulated"

	// SourceWeatherbit fetches the forecast from weatherbit; history stays
	// simulated because the weatherbit free tier has none.
	SourceWeatherbit SecondarySource = "weatherbit"

	// SourceOpenMeteo fetches both history and forecast from Open-Meteo,
	// keyed by the coordinates the primary provider resolved.
	SourceOpenMeteo SecondarySource = "openmeteo"
)

// forecastDayCount is how many future days a bundle carries.
const forecastDayCount = 3

// CurrentProvider is the authoritative current-conditions source. Its
// failure is fatal to the whole fetch.
type CurrentProvider interface {
	Fetch(ctx context.Context, location string, settings model.Settings) (*weatherstack.Result, error)
}

// ForecastProvider returns future days for a free-text location query.
type ForecastProvider interface {
	Fetch(ctx context.Context, location string, settings model.Settings, days int) ([]model.DayRecord, error)
}

// TimelineProvider returns a past-and-future window keyed by coordinates.
type TimelineProvider interface {
	Fetch(ctx context.Context, lat, lon float64, settings model.Settings) (*openmeteo.Result, error)
}

// Bundle is one aggregation cycle's complete result: authoritative current
// conditions plus an ordered history/today/forecast timeline.
type Bundle struct {
	Current  model.CurrentConditions `json:"current"`
	Location model.LocationInfo      `json:"location"`
	Today    model.DayRecord         `json:"today"`
	Forecast []model.DayRecord       `json:"forecast"`
	History  []model.DayRecord       `json:"history"`
}

// Service runs aggregation cycles. It is stateless and safe for concurrent
// use; all per-query state lives in the Controller.
type Service struct {
	primary  CurrentProvider
	forecast ForecastProvider
	timeline TimelineProvider
	source   SecondarySource
	sim      simulate.Simulator
	log      *zap.SugaredLogger
}

// NewService wires the providers for the configured secondary source.
// forecast and timeline may be nil when the source does not need them; a
// source whose provider is missing degrades to SourceSimulated.
func NewService(primary CurrentProvider, forecast ForecastProvider, timeline TimelineProvider, source SecondarySource, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		primary:  primary,
		forecast: forecast,
		timeline: timeline,
		source:   source,
		log:      log,
	}
}

// SetClock pins the simulator's clock. Used only in tests.
func (s *Service) SetClock(now func() time.Time) {
	s.sim.Now = now
}

func (s *Service) effectiveSource() SecondarySource {
	switch s.source {
	case SourceWeatherbit:
		if s.forecast != nil {
			return SourceWeatherbit
		}
	case SourceOpenMeteo:
		if s.timeline != nil {
			return SourceOpenMeteo
		}
	}
	return SourceSimulated
}

// Fetch runs one aggregation cycle for a location query. The primary fetch
// and the weatherbit forecast run concurrently and both settle before the
// bundle is assembled. Secondary failures degrade to an empty forecast;
// primary failures are returned as-is.
func (s *Service) Fetch(ctx context.Context, query string, settings model.Settings) (*Bundle, error) {
	source := s.effectiveSource()

	var (
		wg         sync.WaitGroup
		primaryRes *weatherstack.Result
		primaryErr error
		futureDays []model.DayRecord
		futureErr  error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		primaryRes, primaryErr = s.primary.Fetch(ctx, query, settings)
	}()

	if source == SourceWeatherbit {
		wg.Add(1)
		go func() {
			defer wg.Done()
			futureDays, futureErr = s.forecast.Fetch(ctx, query, settings, forecastDayCount)
		}()
	}

	wg.Wait()

	if primaryErr != nil {
		return nil, primaryErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle := &Bundle{
		Current:  primaryRes.Current,
		Location: primaryRes.Location,
		Today:    s.sim.WrapAsToday(primaryRes.Current),
		Forecast: []model.DayRecord{},
		History:  s.sim.GenerateHistory(primaryRes.Current, primaryRes.Location.Name),
	}

	switch source {
	case SourceSimulated:
		bundle.Forecast = s.sim.GenerateForecast(primaryRes.Current, primaryRes.Location.Name)

	case SourceWeatherbit:
		if futureErr != nil {
			s.log.Warnw("forecast provider failed, degrading to empty forecast",
				"provider", "weatherbit", "query", query, "error", futureErr)
			break
		}
		bundle.Forecast = futureDays

	case SourceOpenMeteo:
		timeline, err := s.timeline.Fetch(ctx, primaryRes.Location.Lat, primaryRes.Location.Lon, settings)
		if err != nil {
			s.log.Warnw("timeline provider failed, degrading to empty forecast",
				"provider", "openmeteo", "query", query, "error", err)
			break
		}
		bundle.Forecast = timeline.Forecast
		bundle.History = timeline.History
		if timeline.Today != nil {
			bundle.Today = *timeline.Today
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return bundle, nil
}
