package integrationtest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mvdwalt/weatherornot/internal/aggregate"
	"github.com/mvdwalt/weatherornot/internal/cache"
	"github.com/mvdwalt/weatherornot/internal/handler"
	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/provider"
	"github.com/mvdwalt/weatherornot/internal/provider/weatherstack"
	"github.com/mvdwalt/weatherornot/internal/settings"
	"github.com/mvdwalt/weatherornot/internal/storage"
)

// WeatherAPITestSuite runs the full stack — handler, aggregation, provider
// client, cache and Redis-backed store — against a mock weatherstack API
// and an embedded miniredis.
type WeatherAPITestSuite struct {
	suite.Suite
	httpServer    *httptest.Server
	miniRedis     *miniredis.Miniredis
	store         *storage.RedisStore
	upstream      *httptest.Server
	upstreamCalls int32
}

func (s *WeatherAPITestSuite) SetupSuite() {
	s.miniRedis = miniredis.NewMiniRedis()
	s.Require().NoError(s.miniRedis.Start())

	s.upstream = httptest.NewServer(http.HandlerFunc(s.mockWeatherstack))

	s.store = storage.NewRedisStore(s.miniRedis.Addr())
	weatherCache := cache.New(s.store, nil)

	primary := weatherstack.New(
		s.upstream.URL,
		"test_access_key",
		provider.NewHTTPClient("weatherstack", nil, 100, 100),
		weatherCache,
		nil,
	)
	svc := aggregate.NewService(primary, nil, nil, aggregate.SourceSimulated, nil)

	mgr := settings.NewManager(s.store, nil)
	mgr.Load(context.Background())

	mux := http.NewServeMux()
	handler.NewWeatherHandler(svc, mgr, nil).Register(mux)
	s.httpServer = httptest.NewServer(mux)
}

func (s *WeatherAPITestSuite) TearDownSuite() {
	if s.httpServer != nil {
		s.httpServer.Close()
	}
	if s.upstream != nil {
		s.upstream.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.miniRedis != nil {
		s.miniRedis.Close()
	}
}

func (s *WeatherAPITestSuite) SetupTest() {
	s.miniRedis.FlushAll()
	atomic.StoreInt32(&s.upstreamCalls, 0)
}

func TestWeatherAPITestSuite(t *testing.T) {
	suite.Run(t, new(WeatherAPITestSuite))
}

func (s *WeatherAPITestSuite) mockWeatherstack(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.upstreamCalls, 1)
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Query().Get("access_key") != "test_access_key" {
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":101,"type":"invalid_access_key","info":"Invalid access key"}}`))
		return
	}
	if r.URL.Query().Get("query") == "Nowhere12345" {
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":615,"type":"request_failed","info":"Your API request failed"}}`))
		return
	}
	_, _ = w.Write([]byte(`{
		"location": {"name": "Pretoria", "country": "South Africa", "region": "Gauteng",
			"lat": "-25.750", "lon": "28.190", "timezone_id": "Africa/Johannesburg", "localtime": "2026-02-23 14:00"},
		"current": {"observation_time": "12:00 PM", "temperature": 21, "weather_code": 116,
			"weather_icons": ["https://cdn.example.com/partly.png"], "weather_descriptions": ["Partly cloudy"],
			"wind_speed": 12, "wind_degree": 180, "wind_dir": "S", "pressure": 1017, "precip": 0,
			"humidity": 64, "cloudcover": 25, "feelslike": 21, "uv_index": 4, "visibility": 10, "is_day": "yes"}
	}`))
}

func (s *WeatherAPITestSuite) getJSON(path string) (*http.Response, model.Response) {
	resp, err := s.httpServer.Client().Get(s.httpServer.URL + path)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var envelope model.Response
	s.Require().NoError(json.Unmarshal(body, &envelope))
	return resp, envelope
}

func (s *WeatherAPITestSuite) TestMissingLocationParameter() {
	resp, envelope := s.getJSON("/weather")
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	assert.Contains(s.T(), *envelope.Error, "Missing 'location' query parameter")
}

func (s *WeatherAPITestSuite) TestProviderErrorEnvelopeSurfaces() {
	resp, envelope := s.getJSON("/weather?location=Nowhere12345")
	assert.Equal(s.T(), http.StatusBadGateway, resp.StatusCode)
	assert.Contains(s.T(), *envelope.Error, "request failed")
}

func (s *WeatherAPITestSuite) TestSuccessfulFetchCarriesFullTimeline() {
	resp, envelope := s.getJSON("/weather?location=Pretoria")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Require().NotNil(envelope.Data)

	raw, err := json.Marshal(envelope.Data)
	s.Require().NoError(err)
	var bundle aggregate.Bundle
	s.Require().NoError(json.Unmarshal(raw, &bundle))

	assert.Equal(s.T(), "Pretoria", bundle.Location.Name)
	assert.Equal(s.T(), 21.0, bundle.Current.Temperature)
	assert.False(s.T(), bundle.Today.IsSimulated)
	assert.Len(s.T(), bundle.History, 3)
	assert.Len(s.T(), bundle.Forecast, 3)
	for _, d := range bundle.History {
		assert.True(s.T(), d.IsSimulated)
	}
}

func (s *WeatherAPITestSuite) TestSecondRequestServedFromRedisCache() {
	_, _ = s.getJSON("/weather?location=Pretoria")
	first := atomic.LoadInt32(&s.upstreamCalls)
	s.Require().Equal(int32(1), first)

	resp, _ := s.getJSON("/weather?location=Pretoria")
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(s.T(), int32(1), atomic.LoadInt32(&s.upstreamCalls), "repeat request must not reach the provider")
}

func (s *WeatherAPITestSuite) TestSettingsRoundTripThroughRedis() {
	resp, err := s.httpServer.Client().Get(s.httpServer.URL + "/settings")
	s.Require().NoError(err)
	defer resp.Body.Close()
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data model.Settings `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(s.T(), settings.Defaults(), envelope.Data)
}
