// Package middleware carries the HTTP middleware for the API surface:
// per-client and per-location rate limiting.
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mvdwalt/weatherornot/internal/model"
)

// staleAfter is how long an idle client's limiter state is kept.
const staleAfter = 3 * time.Minute

// Limits configures the rate limiter. PerMinute bounds all requests from
// one client IP; PerLocationPerMinute bounds requests for one location
// value from one client IP, which protects the upstream provider quota
// from a single hot query.
type Limits struct {
	PerMinute            float64
	PerLocationPerMinute float64
}

// DefaultLimits matches free-tier provider quotas.
func DefaultLimits() Limits {
	return Limits{PerMinute: 10, PerLocationPerMinute: 2}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces Limits per client IP and per (IP, location) pair.
type RateLimiter struct {
	limits Limits

	mu        sync.Mutex
	global    map[string]*visitor            // ip -> visitor
	perFacet  map[string]map[string]*visitor // ip -> location -> visitor
	now       func() time.Time
	stopClean chan struct{}
}

func NewRateLimiter(limits Limits) *RateLimiter {
	return &RateLimiter{
		limits:    limits,
		global:    make(map[string]*visitor),
		perFacet:  make(map[string]map[string]*visitor),
		now:       time.Now,
		stopClean: make(chan struct{}),
	}
}

func (rl *RateLimiter) globalLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, ok := rl.global[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.limits.PerMinute/60.0), int(rl.limits.PerMinute))}
		rl.global[ip] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

func (rl *RateLimiter) locationLimiter(ip, location string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	facets, ok := rl.perFacet[ip]
	if !ok {
		facets = make(map[string]*visitor)
		rl.perFacet[ip] = facets
	}
	v, ok := facets[location]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.limits.PerLocationPerMinute/60.0), int(rl.limits.PerLocationPerMinute))}
		facets[location] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// StartCleanup evicts idle visitor state every minute until Stop is called.
func (rl *RateLimiter) StartCleanup() {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopClean:
				return
			}
		}
	}()
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopClean)
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-staleAfter)
	for ip, v := range rl.global {
		if v.lastSeen.Before(cutoff) {
			delete(rl.global, ip)
		}
	}
	for ip, facets := range rl.perFacet {
		for location, v := range facets {
			if v.lastSeen.Before(cutoff) {
				delete(facets, location)
			}
		}
		if len(facets) == 0 {
			delete(rl.perFacet, ip)
		}
	}
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func reject(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse(msg))
}

// Middleware wraps next with both limits. Requests without a location
// parameter share a single bucket per IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		location := r.URL.Query().Get("location")
		if location == "" {
			location = "__none__"
		}

		if !rl.globalLimiter(ip).Allow() {
			reject(w, "Rate limit exceeded for this client")
			return
		}
		if !rl.locationLimiter(ip, location).Allow() {
			reject(w, "Rate limit exceeded for this location")
			return
		}
		next.ServeHTTP(w, r)
	})
}
