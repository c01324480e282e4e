package presentation

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/engine/clock"
	"github.com/Carmen-Shannon/oxy-portal/engine/logging"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
	"github.com/google/uuid"
)

// DefaultIdleTimeout is how long a state may go unused before a sweep disposes it.
const DefaultIdleTimeout = 60 * time.Second

// DefaultSweepInterval is the minimum time between two sweeps.
const DefaultSweepInterval = 30 * time.Second

// DefaultMispredictWindow is the window within which two mispredictions mark a portal as unstable.
const DefaultMispredictWindow = 30 * time.Second

// FrameSource supplies the index of the frame currently being rendered.
type FrameSource interface {
	// FrameIndex returns the current frame index. It increases by one per rendered frame.
	FrameIndex() int64
}

// Presentable is anything presentation state can be kept for. Both portal.Portal and *portal.Group qualify.
type Presentable interface {
	// Discriminator returns the identity the state is keyed by.
	Discriminator() uuid.UUID
	// Removed reports whether the owner has discarded the portal.
	Removed() bool
}

// Cache owns the presentation State of every portal seen during a render session.
// It is driven from the render loop and is not safe for concurrent use.
type Cache interface {
	// Get returns the state for p, creating it on first use. Never fails. Repeated calls return the same
	// State until it is evicted.
	//
	// Parameters:
	//   - p: the portal or group
	//
	// Returns:
	//   - State: the portal's presentation state
	Get(p Presentable) State

	// PeriodicSweep disposes states whose portal was removed or that have been idle longer than the idle timeout.
	// It does nothing if the previous sweep ran less than the sweep interval ago.
	//
	// Parameters:
	//   - now: the current time
	//
	// Returns:
	//   - int: number of states disposed
	PeriodicSweep(now time.Time) int

	// Purge disposes idle states immediately, ignoring the sweep interval and the removed flag.
	//
	// Parameters:
	//   - now: the current time
	//
	// Returns:
	//   - int: number of states disposed
	Purge(now time.Time) int

	// Cleanup disposes every state and empties the cache. Called when the render session ends.
	Cleanup()

	// Len returns the number of live states.
	Len() int
}

type cacheEntry struct {
	owner Presentable
	state *stateImpl
}

// cacheImpl is the implementation of the Cache interface.
type cacheImpl struct {
	pool   query.Pool
	frames FrameSource
	clk    clock.Clock
	logger *slog.Logger

	idleTimeout      time.Duration
	sweepInterval    time.Duration
	mispredictWindow time.Duration

	entries   map[uuid.UUID]*cacheEntry
	lastSweep time.Time
}

var _ Cache = &cacheImpl{}

// NewCache creates an empty Cache lending handles from pool and reading the frame index from frames.
// Panics if either is nil.
//
// Parameters:
//   - pool: the query handle pool
//   - frames: the frame index source
//   - options: functional options to configure the cache
//
// Returns:
//   - Cache: the new cache
func NewCache(pool query.Pool, frames FrameSource, options ...CacheBuilderOption) Cache {
	if pool == nil {
		panic("presentation: NewCache requires a non-nil query.Pool")
	}
	if frames == nil {
		panic("presentation: NewCache requires a non-nil FrameSource")
	}

	c := &cacheImpl{
		pool:             pool,
		frames:           frames,
		clk:              clock.System(),
		idleTimeout:      DefaultIdleTimeout,
		sweepInterval:    DefaultSweepInterval,
		mispredictWindow: DefaultMispredictWindow,
		entries:          make(map[uuid.UUID]*cacheEntry),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cacheImpl) Get(p Presentable) State {
	id := p.Discriminator()
	if e, ok := c.entries[id]; ok {
		return e.state
	}
	e := &cacheEntry{owner: p, state: newState(c)}
	c.entries[id] = e
	return e.state
}

func (c *cacheImpl) PeriodicSweep(now time.Time) int {
	if !c.lastSweep.IsZero() && now.Sub(c.lastSweep) <= c.sweepInterval {
		return 0
	}
	c.lastSweep = now

	disposed := c.removeIf(func(e *cacheEntry) bool {
		return e.owner.Removed() || e.state.shouldDispose(now)
	})
	if disposed > 0 {
		logging.Or(c.logger).Debug("swept portal presentation states", "disposed", disposed, "remaining", len(c.entries))
	}
	return disposed
}

func (c *cacheImpl) Purge(now time.Time) int {
	return c.removeIf(func(e *cacheEntry) bool {
		return e.state.shouldDispose(now)
	})
}

func (c *cacheImpl) Cleanup() {
	for _, e := range c.entries {
		e.state.Dispose()
	}
	clear(c.entries)
	logging.Or(c.logger).Info("cleaning up portal presentation info")
}

func (c *cacheImpl) Len() int {
	return len(c.entries)
}

func (c *cacheImpl) removeIf(pred func(e *cacheEntry) bool) int {
	disposed := 0
	for id, e := range c.entries {
		if pred(e) {
			e.state.Dispose()
			delete(c.entries, id)
			disposed++
		}
	}
	return disposed
}
