// Package weatherstack fetches current conditions from the weatherstack
// /current endpoint. It is the authoritative source for "now" and for the
// resolved location identity; its failure aborts the whole fetch cycle.
package weatherstack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/mvdwalt/weatherornot/internal/cache"
	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/normalize"
	"github.com/mvdwalt/weatherornot/internal/provider"
)

const providerName = "weatherstack"

// Result pairs the normalized current conditions with the resolved location.
type Result struct {
	Current  model.CurrentConditions `json:"current"`
	Location model.LocationInfo      `json:"location"`
}

// Client is the weatherstack fetch orchestrator.
type Client struct {
	baseURL   string
	accessKey string
	http      *provider.HTTPClient
	cache     *cache.Cache
	log       *zap.SugaredLogger
}

// New creates a Client. accessKey may be empty; Fetch then fails with
// provider.ErrMissingAPIKey.
func New(baseURL, accessKey string, http *provider.HTTPClient, c *cache.Cache, log *zap.SugaredLogger) *Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		http:      http,
		cache:     c,
		log:       log,
	}
}

// cacheKey folds in every parameter that shapes the response: the resolved
// query plus unit system and language.
func cacheKey(query string, settings model.Settings) string {
	return fmt.Sprintf("ws_%s_%s_%s", query, settings.Units, settings.Language)
}

// buildQuery interprets the free-text location input per the configured
// location type. "auto" asks weatherstack to geolocate the caller's IP.
func buildQuery(location string, locType model.LocationType) string {
	if locType == model.LocationAuto {
		return "fetch:ip"
	}
	return strings.TrimSpace(location)
}

// Fetch returns current conditions for the location, consulting the cache
// before going to the network. A cache hit involves no network access; a
// canceled context leaves the cache untouched.
func (c *Client) Fetch(ctx context.Context, location string, settings model.Settings) (*Result, error) {
	if c.accessKey == "" {
		return nil, fmt.Errorf("%s: %w", providerName, provider.ErrMissingAPIKey)
	}

	query := buildQuery(location, settings.LocationType)
	key := cacheKey(query, settings)
	if cached, ok := cache.Get[Result](ctx, c.cache, key); ok {
		c.log.Debugw("cache hit", "provider", providerName, "key", key)
		return &cached, nil
	}

	params := url.Values{}
	params.Set("access_key", c.accessKey)
	params.Set("query", query)
	params.Set("units", string(settings.Units))
	params.Set("language", settings.Language)

	body, err := c.http.GetJSON(ctx, providerName, c.baseURL+"/current?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var envelope model.WeatherstackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", providerName, err)
	}

	if envelope.IsError() {
		perr := &provider.Error{Provider: providerName}
		if envelope.Error != nil {
			perr.Code = envelope.Error.Code
			perr.Message = envelope.Error.Info
		}
		return nil, perr
	}
	if envelope.Location == nil || envelope.Current == nil {
		return nil, fmt.Errorf("%s: response missing location or current block", providerName)
	}

	result := Result{
		Current:  normalize.Current(*envelope.Current),
		Location: normalize.Location(*envelope.Location),
	}

	// A canceled cycle must not repopulate the cache.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	cache.Set(ctx, c.cache, key, result, settings.CacheTTLMillis())

	return &result, nil
}
