package aggregate

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mvdwalt/weatherornot/internal/model"
)

// Snapshot is the controller state handed to the presentation boundary.
// Bundle is nil while the first fetch for a query is still loading or after
// a fatal error.
type Snapshot struct {
	Query   string
	Loading bool
	Err     error
	Bundle  *Bundle
}

// Controller serializes fetch cycles per display surface. Starting a cycle
// cancels any still-pending one, and a superseded cycle's outcome is
// discarded without touching state. Day selection lives here too: it is a
// pure state transition and resets whenever the query changes.
type Controller struct {
	svc *Service
	log *zap.SugaredLogger

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	query    string
	loading  bool
	err      error
	bundle   *Bundle
	selected *model.DayRecord
}

func NewController(svc *Service, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Controller{svc: svc, log: log}
}

// Fetch starts a cycle for query and blocks until it settles. If a newer
// cycle starts meanwhile, this one's result is discarded and Fetch returns
// context.Canceled. The fatal-vs-degrade split happens in the Service; by
// the time an error reaches here it is fatal for the query.
func (c *Controller) Fetch(ctx context.Context, query string, settings model.Settings) (*Bundle, error) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	cctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.gen++
	gen := c.gen
	if query != c.query {
		c.selected = nil
		c.bundle = nil
	}
	c.query = query
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	bundle, err := c.svc.Fetch(cctx, query, settings)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		// A newer cycle owns the state now.
		return nil, context.Canceled
	}
	cancel()
	c.cancel = nil
	c.loading = false
	if err != nil {
		c.err = err
		c.bundle = nil
		return nil, err
	}
	c.err = nil
	c.bundle = bundle
	return bundle, nil
}

// Refetch reruns the current query as a fresh cycle.
func (c *Controller) Refetch(ctx context.Context, settings model.Settings) (*Bundle, error) {
	c.mu.Lock()
	query := c.query
	c.mu.Unlock()
	return c.Fetch(ctx, query, settings)
}

// SelectDay marks a day as displayed. No I/O.
func (c *Controller) SelectDay(day model.DayRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := day
	c.selected = &d
}

// ClearSelection returns the display to today.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// Displayed returns the selected day, falling back to today. ok is false
// until a fetch has produced a bundle.
func (c *Controller) Displayed() (model.DayRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != nil {
		return *c.selected, true
	}
	if c.bundle == nil {
		return model.DayRecord{}, false
	}
	return c.bundle.Today, true
}

// State returns a point-in-time snapshot of the controller.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Query: c.query, Loading: c.loading, Err: c.err, Bundle: c.bundle}
}
