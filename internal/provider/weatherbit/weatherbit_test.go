package weatherbit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvdwalt/weatherornot/internal/cache"
	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/provider"
	"github.com/mvdwalt/weatherornot/internal/storage"
)

const forecastBody = `{
	"city_name": "Pretoria", "country_code": "ZA", "timezone": "Africa/Johannesburg",
	"data": [
		{"datetime": "2026-02-23", "temp": 21, "max_temp": 24, "min_temp": 17, "wind_spd": 3.1,
		 "wind_cdir": "NE", "pres": 1017, "precip": 0, "rh": 64, "clouds": 25, "uv": 4,
		 "weather": {"code": 802, "icon": "c02d", "description": "Scattered clouds"}},
		{"datetime": "2026-02-24", "temp": 22, "max_temp": 26, "min_temp": 18, "wind_spd": 4.2,
		 "wind_cdir": "E", "pres": 1015, "precip": 0.5, "rh": 58, "clouds": 15, "uv": 6,
		 "weather": {"code": 801, "icon": "c02d", "description": "Few clouds"}},
		{"datetime": "2026-02-25", "temp": 20, "max_temp": 23, "min_temp": 16, "wind_spd": 5.5,
		 "wind_cdir": "SE", "pres": 1012, "precip": 3.2, "rh": 71, "clouds": 65, "uv": 3,
		 "weather": {"code": 500, "icon": "r01d", "description": "Light rain"}},
		{"datetime": "2026-02-26", "temp": 18, "max_temp": 21, "min_temp": 15, "wind_spd": 6.0,
		 "wind_cdir": "S", "pres": 1010, "precip": 8.1, "rh": 80, "clouds": 90, "uv": 2,
		 "weather": {"code": 501, "icon": "r02d", "description": "Moderate rain"}}
	]
}`

func testSettings() model.Settings {
	return model.Settings{
		Units:           model.UnitsMetric,
		Language:        "en",
		LocationType:    model.LocationCity,
		CacheTTLMinutes: 30,
	}
}

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := cache.New(storage.NewMemoryStore(), nil)
	httpClient := provider.NewHTTPClient("weatherbit-test", server.Client(), 100, 100)
	client := New(server.URL, "test_key", httpClient, c, nil)
	client.SetClock(func() time.Time {
		return time.Date(2026, 2, 23, 14, 0, 0, 0, time.UTC)
	})
	return client
}

func TestFetch_SkipsTodayAndNormalizes(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test_key", r.URL.Query().Get("key"))
		assert.Equal(t, "Pretoria", r.URL.Query().Get("city"))
		assert.Equal(t, "4", r.URL.Query().Get("days"))
		assert.Equal(t, "M", r.URL.Query().Get("units"))
		w.Write([]byte(forecastBody))
	})

	days, err := client.Fetch(context.Background(), "Pretoria", testSettings(), 3)
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, "2026-02-24", days[0].Date)
	assert.Equal(t, "Tomorrow", days[0].Label)
	assert.Equal(t, "2026-02-26", days[2].Date)
	assert.Equal(t, 15, days[0].WindSpeed, "4.2 m/s converts to 15 km/h")
	for _, d := range days {
		assert.False(t, d.IsSimulated)
		assert.Equal(t, model.KindForecast, d.Kind)
	}
}

func TestFetch_SecondCallHitsCache(t *testing.T) {
	var calls int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(forecastBody))
	})
	ctx := context.Background()

	first, err := client.Fetch(ctx, "Pretoria", testSettings(), 3)
	require.NoError(t, err)
	second, err := client.Fetch(ctx, "Pretoria", testSettings(), 3)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first, second)
}

func TestFetch_DayCountIsPartOfCacheKey(t *testing.T) {
	var calls int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(forecastBody))
	})
	ctx := context.Background()

	_, err := client.Fetch(ctx, "Pretoria", testSettings(), 3)
	require.NoError(t, err)
	_, err = client.Fetch(ctx, "Pretoria", testSettings(), 2)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_MissingAPIKey(t *testing.T) {
	c := cache.New(storage.NewMemoryStore(), nil)
	httpClient := provider.NewHTTPClient("weatherbit-test", nil, 100, 100)
	client := New("http://unused.invalid", "", httpClient, c, nil)

	_, err := client.Fetch(context.Background(), "Pretoria", testSettings(), 3)
	assert.ErrorIs(t, err, provider.ErrMissingAPIKey)
}

func TestFetch_EmptyDataIsError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"city_name": "Nowhere", "data": []}`))
	})

	_, err := client.Fetch(context.Background(), "Nowhere", testSettings(), 3)
	assert.Error(t, err)
}

func TestMapUnits(t *testing.T) {
	assert.Equal(t, "M", mapUnits(model.UnitsMetric))
	assert.Equal(t, "M", mapUnits(model.UnitsScientific))
	assert.Equal(t, "I", mapUnits(model.UnitsImperial))
}
