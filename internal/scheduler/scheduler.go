// Package scheduler keeps the cache warm for the default location by
// re-running the aggregation cycle on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/mvdwalt/weatherornot/internal/aggregate"
	"github.com/mvdwalt/weatherornot/internal/model"
	"github.com/mvdwalt/weatherornot/internal/settings"
)

// warmTimeout bounds a single warm cycle so a hung provider cannot pile up
// overlapping jobs.
const warmTimeout = 30 * time.Second

// Fetcher runs one aggregation cycle. Satisfied by *aggregate.Service.
type Fetcher interface {
	Fetch(ctx context.Context, query string, settings model.Settings) (*aggregate.Bundle, error)
}

type Scheduler struct {
	cron     *gocron.Scheduler
	svc      Fetcher
	settings *settings.Manager
	log      *zap.SugaredLogger
}

func New(svc Fetcher, mgr *settings.Manager, log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		svc:      svc,
		settings: mgr,
		log:      log,
	}
}

// Start schedules the warm job every interval and runs the scheduler in the
// background.
func (s *Scheduler) Start(interval time.Duration) error {
	if _, err := s.cron.Every(interval).Do(s.warm); err != nil {
		return err
	}
	s.cron.StartAsync()
	s.log.Infow("cache warmer started", "interval", interval)
	return nil
}

// Stop halts the scheduler. A warm cycle already in flight finishes.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) warm() {
	current := s.settings.Current()
	if current.DefaultLocation == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()

	if _, err := s.svc.Fetch(ctx, current.DefaultLocation, current); err != nil {
		s.log.Warnw("cache warm fetch failed", "location", current.DefaultLocation, "error", err)
		return
	}
	s.log.Debugw("cache warmed", "location", current.DefaultLocation)
}
