// Package provider holds the pieces shared by the upstream fetch
// orchestrators: the error taxonomy the aggregation layer dispatches on and
// a resilient HTTP helper wrapping every outbound call with a rate limiter
// and a circuit breaker.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrMissingAPIKey marks a provider whose access key is not configured.
// Fatal for the primary provider, a normal degrade for secondaries.
var ErrMissingAPIKey = errors.New("provider API key is not configured")

// Error is a provider-reported semantic failure: the HTTP exchange
// succeeded but the provider's envelope carried an error. The upstream code
// and message are preserved for the presentation boundary.
type Error struct {
	Provider string
	Code     int
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (%d): %s", e.Provider, e.Code, e.Message)
}

// StatusError is a transport-level failure: a non-success HTTP status.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: %d %s", e.Provider, e.StatusCode, http.StatusText(e.StatusCode))
}

// HTTPClient bundles the transport with per-provider resilience. Free-tier
// weather APIs throttle aggressively, so every provider carries its own
// limiter and breaker.
type HTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPClient builds a resilient client for the named provider. A nil
// base client falls back to http.DefaultClient.
func NewHTTPClient(name string, base *http.Client, rps float64, burst int) *HTTPClient {
	if base == nil {
		base = http.DefaultClient
	}
	return &HTTPClient{
		client:  base,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// GetJSON issues a single GET through the limiter and breaker and returns
// the response body. A non-2xx status is returned as a StatusError; the
// caller decodes success bodies and inspects provider error envelopes
// itself. The request honors ctx for cancellation throughout.
func (h *HTTPClient) GetJSON(ctx context.Context, name, url string) ([]byte, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	result, err := h.breaker.Execute(func() (interface{}, error) {
		resp, err := h.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{Provider: name, StatusCode: resp.StatusCode}
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
