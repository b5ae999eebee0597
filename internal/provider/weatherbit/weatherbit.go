// Package weatherbit fetches the multi-day forecast from the weatherbit
// /forecast/daily endpoint. It is an optional secondary source: failures
// degrade the timeline to an empty forecast instead of failing the cycle.
package weatherbit

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
	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/normalize"
	"github.com/mvdwalt/weatherornot/internal/provider"
)

const providerName = "weatherbit"

// Client is the weatherbit fetch orchestrator.
type Client struct {
	baseURL string
	apiKey  string
	http    *provider.HTTPClient
	cache   *cache.Cache
	log     *zap.SugaredLogger

	// now is the clock used for day labels; tests pin it.
	now func() time.Time
}

func New(baseURL, apiKey string, http *provider.HTTPClient, c *cache.Cache, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
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

func cacheKey(location string, days int, settings model.Settings) string {
	return fmt.Sprintf("wb_%s_%d_%s_%s", location, days, settings.Units, settings.Language)
}

// mapUnits translates the app unit system into weatherbit's M/I parameter.
// Scientific shares metric here; the Kelvin offset is a display concern.
func mapUnits(units model.UnitSystem) string {
	if units == model.UnitsImperial {
		return "I"
	}
	return "M"
}

// Fetch returns the next `days` forecast days for a city, skipping today
// (weatherbit's first entry), cache-first.
func (c *Client) Fetch(ctx context.Context, location string, settings model.Settings, days int) ([]model.DayRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName, provider.ErrMissingAPIKey)
	}

	key := cacheKey(location, days, settings)
	if cached, ok := cache.Get[[]model.DayRecord](ctx, c.cache, key); ok {
		c.log.Debugw("cache hit", "provider", providerName, "key", key)
		return cached, nil
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("city", location)
	params.Set("days", strconv.Itoa(days+1))
	params.Set("units", mapUnits(settings.Units))
	params.Set("lang", settings.Language)

	body, err := c.http.GetJSON(ctx, providerName, c.baseURL+"/forecast/daily?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp model.WeatherbitForecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", providerName, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%s: returned no forecast data", providerName)
	}

	// Entry 0 is today; today's record comes from the current-conditions
	// provider instead.
	upper := days + 1
	if upper > len(resp.Data) {
		upper = len(resp.Data)
	}
	now := c.now()
	records := make([]model.DayRecord, 0, days)
	for _, raw := range resp.Data[1:upper] {
		records = append(records, normalize.WeatherbitDay(raw, now))
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	cache.Set(ctx, c.cache, key, records, settings.CacheTTLMillis())

	return records, nil
}
