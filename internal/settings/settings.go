// Package settings persists the user-controlled fetch parameters. Stored
// settings are merged field by field over the defaults on load, so adding a
// new field never invalidates what an older version wrote.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/storage"
)

// settingsKey lives outside the cache namespace so clearing the weather
// cache never resets the user's preferences.
const settingsKey = "weatherornot:settings"

// Defaults returns the settings used when nothing is stored yet.
func Defaults() model.Settings {
	return model.Settings{
		Units:           model.UnitsMetric,
		Language:        "en",
		LocationType:    model.LocationCity,
		DefaultLocation: "Pretoria",
		CacheTTLMinutes: 30,
	}
}

// Patch is a partial settings update. Nil fields keep their current value.
type Patch struct {
	Units           *model.UnitSystem   `json:"units,omitempty"`
	Language        *string             `json:"language,omitempty"`
	LocationType    *model.LocationType `json:"locationType,omitempty"`
	DefaultLocation *string             `json:"defaultLocation,omitempty"`
	CacheTTLMinutes *int                `json:"cacheTtlMinutes,omitempty"`
}

// Manager loads, caches and persists the settings. Persistence is
// synchronous: Update returns only after the store has accepted the write.
type Manager struct {
	store storage.Store
	log   *zap.SugaredLogger

	mu      sync.RWMutex
	current model.Settings
	loaded  bool
}

func NewManager(store storage.Store, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{store: store, log: log}
}

// Load reads the stored settings, merged over the defaults. An absent or
// unreadable record yields the defaults. The result is cached; subsequent
// calls return the in-memory copy.
func (m *Manager) Load(ctx context.Context) model.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return m.current
	}

	m.current = Defaults()
	m.loaded = true

	raw, err := m.store.Get(ctx, settingsKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.log.Warnw("reading stored settings", "error", err)
		}
		return m.current
	}

	var stored Patch
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		m.log.Warnw("stored settings are corrupt, using defaults", "error", err)
		return m.current
	}
	m.current = overlay(m.current, stored)
	return m.current
}

// Current returns the in-memory settings without touching the store.
func (m *Manager) Current() model.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loaded {
		return Defaults()
	}
	return m.current
}

// Update validates and applies a partial update, persists the result and
// returns it.
func (m *Manager) Update(ctx context.Context, patch Patch) (model.Settings, error) {
	if patch.Units != nil && !model.ValidUnits(*patch.Units) {
		return model.Settings{}, fmt.Errorf("invalid unit system %q", *patch.Units)
	}
	if patch.LocationType != nil && !model.ValidLocationType(*patch.LocationType) {
		return model.Settings{}, fmt.Errorf("invalid location type %q", *patch.LocationType)
	}
	if patch.CacheTTLMinutes != nil && *patch.CacheTTLMinutes < 0 {
		return model.Settings{}, fmt.Errorf("cache TTL must not be negative, got %d", *patch.CacheTTLMinutes)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		m.current = Defaults()
		m.loaded = true
	}

	next := overlay(m.current, patch)
	if err := m.persist(ctx, next); err != nil {
		return model.Settings{}, err
	}
	m.current = next
	return next, nil
}

// Reset restores and persists the defaults.
func (m *Manager) Reset(ctx context.Context) (model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := Defaults()
	if err := m.persist(ctx, next); err != nil {
		return model.Settings{}, err
	}
	m.current = next
	m.loaded = true
	return next, nil
}

func (m *Manager) persist(ctx context.Context, s model.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, settingsKey, string(raw)); err != nil {
		return fmt.Errorf("persisting settings: %w", err)
	}
	return nil
}

func overlay(base model.Settings, p Patch) model.Settings {
	if p.Units != nil {
		base.Units = *p.Units
	}
	if p.Language != nil {
		base.Language = *p.Language
	}
	if p.LocationType != nil {
		base.LocationType = *p.LocationType
	}
	if p.DefaultLocation != nil {
		base.DefaultLocation = *p.DefaultLocation
	}
	if p.CacheTTLMinutes != nil {
		base.CacheTTLMinutes = *p.CacheTTLMinutes
	}
	return base
}
