// Package openmeteo fetches real history and forecast from the Open-Meteo
// forecast endpoint, keyed by coordinates rather than free-text query. It
// needs no API key, which makes it the alternate secondary source for users
// without a weatherbit account.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mvdwalt/weatherornot/internal/cache"
	"github.com/mvdwalt/weatherornot/internal/dates"
	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/normalize"
	"github.com/mvdwalt/weatherornot/internal/provider"
)

const providerName = "openmeteo"

const (
	pastDays     = 3
	forecastDays = 4 // today plus three future days
)

const dailyFields = "temperature_2m_max,temperature_2m_min,precipitation_sum," +
	"wind_speed_10m_max,wind_direction_10m_dominant,weather_code,uv_index_max"

const hourlyFields = "surface_pressure,relative_humidity_2m,cloud_cover"

// Result is the partitioned multi-day timeline around today.
type Result struct {
	Today    *model.DayRecord  `json:"today"`
	Forecast []model.DayRecord `json:"forecast"`
	History  []model.DayRecord `json:"history"`
}

// Client is the Open-Meteo fetch orchestrator.
type Client struct {
	baseURL string
	http    *provider.HTTPClient
	cache   *cache.Cache
	log     *zap.SugaredLogger

	// now anchors "today" for partitioning; tests pin it.
	now func() time.Time
}

func New(baseURL string, http *provider.HTTPClient, c *cache.Cache, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http,
		cache:   c,
		log:     log,
		now:     time.Now,
	}
}

// SetClock overrides the client's clock. Used only in tests.
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}

// cacheKey rounds coordinates to two decimals so nearby refetches of the
// same place hit the same entry.
func cacheKey(lat, lon float64, units model.UnitSystem) string {
	return fmt.Sprintf("om_%.2f_%.2f_%s", lat, lon, units)
}

// Fetch returns the past three days, today, and the next three days for the
// given coordinates, cache-first.
func (c *Client) Fetch(ctx context.Context, lat, lon float64, settings model.Settings) (*Result, error) {
	key := cacheKey(lat, lon, settings.Units)
	if cached, ok := cache.Get[Result](ctx, c.cache, key); ok {
		c.log.Debugw("cache hit", "provider", providerName, "key", key)
		return &cached, nil
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("daily", dailyFields)
	params.Set("hourly", hourlyFields)
	params.Set("past_days", strconv.Itoa(pastDays))
	params.Set("forecast_days", strconv.Itoa(forecastDays))
	params.Set("timezone", "auto")
	if settings.Units == model.UnitsImperial {
		params.Set("temperature_unit", "fahrenheit")
		params.Set("wind_speed_unit", "mph")
		params.Set("precipitation_unit", "inch")
	}

	body, err := c.http.GetJSON(ctx, providerName, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp model.OpenMeteoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", providerName, err)
	}
	if len(resp.Daily.Time) == 0 {
		return nil, fmt.Errorf("%s: returned no daily data", providerName)
	}

	now := c.now()
	today := dates.Offset(now, 0)
	all := normalize.OpenMeteoDays(resp, settings.Units, today, now)

	result := Result{}
	for i := range all {
		day := all[i]
		switch day.Kind {
		case model.KindCurrent:
			result.Today = &day
		case model.KindForecast:
			result.Forecast = append(result.Forecast, day)
		default:
			result.History = append(result.History, day)
		}
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	cache.Set(ctx, c.cache, key, result, settings.CacheTTLMillis())

	return &result, nil
}
