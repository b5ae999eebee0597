// Package handler exposes the aggregation service and settings manager over
// HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mvdwalt/weatherornot/internal/aggregate"
	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/provider"
	"github.com/mvdwalt/weatherornot/internal/settings"
)

// Aggregator runs one aggregation cycle per request. Satisfied by
// *aggregate.Service.
type Aggregator interface {
	Fetch(ctx context.Context, query string, settings model.Settings) (*aggregate.Bundle, error)
}

type WeatherHandler struct {
	svc      Aggregator
	settings *settings.Manager
	log      *zap.SugaredLogger
}

func NewWeatherHandler(svc Aggregator, mgr *settings.Manager, log *zap.SugaredLogger) *WeatherHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &WeatherHandler{svc: svc, settings: mgr, log: log}
}

// Register mounts the handler's routes on mux.
func (h *WeatherHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/weather", h.HandleWeather)
	mux.HandleFunc("/settings", h.HandleSettings)
}

func (h *WeatherHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Errorw("encoding response", "error", err)
	}
}

// HandleWeather serves GET /weather?location=. Each request is one
// aggregation cycle scoped to the request context; closing the connection
// cancels the fetch.
func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse("Method not allowed"))
		return
	}

	location := r.URL.Query().Get("location")
	if location == "" {
		h.writeJSON(w, http.StatusBadRequest, model.ErrorResponse("Missing 'location' query parameter"))
		return
	}

	bundle, err := h.svc.Fetch(r.Context(), location, h.settings.Current())
	if err != nil {
		status, msg := mapFetchError(err)
		h.log.Warnw("weather fetch failed", "location", location, "error", err)
		h.writeJSON(w, status, model.ErrorResponse(msg))
		return
	}

	h.writeJSON(w, http.StatusOK, model.SuccessResponse(bundle))
}

// HandleSettings serves GET /settings (current values) and PATCH /settings
// (partial update; omitted fields keep their values).
func (h *WeatherHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, model.SuccessResponse(h.settings.Current()))

	case http.MethodPatch:
		var patch settings.Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			h.writeJSON(w, http.StatusBadRequest, model.ErrorResponse("Invalid settings payload"))
			return
		}
		updated, err := h.settings.Update(r.Context(), patch)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, model.ErrorResponse(err.Error()))
			return
		}
		h.writeJSON(w, http.StatusOK, model.SuccessResponse(updated))

	default:
		w.Header().Set("Allow", "GET, PATCH")
		h.writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse("Method not allowed"))
	}
}

// mapFetchError translates fatal aggregation errors into a status code and
// a client-safe message. Provider-reported failures surface their message;
// everything else is a generic 500.
func mapFetchError(err error) (int, string) {
	var provErr *provider.Error
	if errors.As(err, &provErr) {
		return http.StatusBadGateway, provErr.Message
	}
	var statusErr *provider.StatusError
	if errors.As(err, &statusErr) {
		return http.StatusBadGateway, "Weather provider is unavailable"
	}
	if errors.Is(err, provider.ErrMissingAPIKey) {
		return http.StatusInternalServerError, "Weather provider is not configured"
	}
	return http.StatusInternalServerError, "Failed to fetch weather data"
}
