// Package session ties the per-portal presentation cache, the occlusion query pool and the frame counter to one
// render session. A Session is created when rendering starts and closed when it ends; nothing outlives it.
package session

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/engine/clock"
	"github.com/Carmen-Shannon/oxy-portal/engine/logging"
	"github.com/Carmen-Shannon/oxy-portal/engine/presentation"
	"github.com/Carmen-Shannon/oxy-portal/engine/profiler"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
)

// Session owns the render-side portal bookkeeping of one rendering session.
// All methods must be called from the render loop.
type Session interface {
	presentation.FrameSource

	// BeginFrame advances to the next frame and runs the periodic presentation sweep.
	//
	// Returns:
	//   - int64: the new frame index
	BeginFrame() int64

	// SkipFrames advances the frame index by n without running a sweep, as happens when frames are dropped.
	// States touched next will see a gap and discard their history.
	//
	// Parameters:
	//   - n: number of frames skipped
	SkipFrames(n int64)

	// Presentation returns the presentation state for p. Shorthand for Cache().Get(p).
	//
	// Parameters:
	//   - p: the portal or group
	//
	// Returns:
	//   - presentation.State: the portal's state
	Presentation(p presentation.Presentable) presentation.State

	// Cache returns the session's presentation cache.
	Cache() presentation.Cache

	// Pool returns the session's query handle pool.
	Pool() query.Pool

	// Clock returns the session's time source.
	Clock() clock.Clock

	// Close disposes every presentation state and destroys the pool. The session must not be used afterwards.
	Close()
}

// sessionImpl is the implementation of the Session interface.
type sessionImpl struct {
	pool       query.Pool
	cache      presentation.Cache
	clk        clock.Clock
	logger     *slog.Logger
	frameIndex int64
	closed     bool

	cacheOptions     []presentation.CacheBuilderOption
	profileInterval  time.Duration
	profiler         *profiler.Profiler
	destroyPoolOnEnd bool
}

var _ Session = &sessionImpl{}

// NewSession creates a Session around pool. Panics if pool is nil.
//
// Parameters:
//   - pool: the query handle pool lending handles to presentation states
//   - options: functional options to configure the session
//
// Returns:
//   - Session: the new session
func NewSession(pool query.Pool, options ...SessionBuilderOption) Session {
	if pool == nil {
		panic("session: NewSession requires a non-nil query.Pool")
	}
	s := &sessionImpl{
		pool:             pool,
		clk:              clock.System(),
		destroyPoolOnEnd: true,
	}
	for _, opt := range options {
		opt(s)
	}

	cacheOptions := append([]presentation.CacheBuilderOption{
		presentation.WithClock(s.clk),
		presentation.WithLogger(s.logger),
	}, s.cacheOptions...)
	s.cache = presentation.NewCache(pool, s, cacheOptions...)

	if s.profileInterval > 0 {
		s.profiler = profiler.NewProfiler(s.profileInterval, s.clk, s.logger)
	}
	return s
}

func (s *sessionImpl) FrameIndex() int64 {
	return s.frameIndex
}

func (s *sessionImpl) BeginFrame() int64 {
	s.frameIndex++
	evicted := s.cache.PeriodicSweep(s.clk.Now())

	if s.profiler != nil {
		s.profiler.Tick(profiler.Stats{
			Frame:         s.frameIndex,
			Presentations: s.cache.Len(),
			QueriesInUse:  s.pool.InUse(),
			QueryCapacity: s.pool.Capacity(),
			Evicted:       evicted,
		})
	}
	return s.frameIndex
}

func (s *sessionImpl) SkipFrames(n int64) {
	if n > 0 {
		s.frameIndex += n
	}
}

func (s *sessionImpl) Presentation(p presentation.Presentable) presentation.State {
	return s.cache.Get(p)
}

func (s *sessionImpl) Cache() presentation.Cache {
	return s.cache
}

func (s *sessionImpl) Pool() query.Pool {
	return s.pool
}

func (s *sessionImpl) Clock() clock.Clock {
	return s.clk
}

func (s *sessionImpl) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cache.Cleanup()
	if s.destroyPoolOnEnd {
		s.pool.Destroy()
	}
	logging.Or(s.logger).Info("render session closed", "frames", s.frameIndex)
}
