package session

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/engine/clock"
	"github.com/Carmen-Shannon/oxy-portal/engine/presentation"
)

// SessionBuilderOption is a functional option for configuring a Session.
// Use the With* functions to create options.
type SessionBuilderOption func(s *sessionImpl)

// WithClock sets the time source shared by the session and its presentation cache.
//
// Parameters:
//   - clk: the clock to use
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithClock(clk clock.Clock) SessionBuilderOption {
	return func(s *sessionImpl) {
		if clk != nil {
			s.clk = clk
		}
	}
}

// WithLogger sets the logger for the session, its cache and its profiler.
//
// Parameters:
//   - logger: destination logger
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SessionBuilderOption {
	return func(s *sessionImpl) {
		s.logger = logger
	}
}

// WithCacheOptions forwards options to the presentation cache. They are applied after the session's own
// clock and logger, so they can override either.
//
// Parameters:
//   - options: presentation cache options
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithCacheOptions(options ...presentation.CacheBuilderOption) SessionBuilderOption {
	return func(s *sessionImpl) {
		s.cacheOptions = append(s.cacheOptions, options...)
	}
}

// WithProfiler enables periodic statistics logging at the given interval. Disabled by default.
//
// Parameters:
//   - interval: time between reports
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithProfiler(interval time.Duration) SessionBuilderOption {
	return func(s *sessionImpl) {
		s.profileInterval = interval
	}
}

// WithSharedPool keeps the pool alive when the session closes, for hosts that reuse one pool across sessions.
//
// Returns:
//   - SessionBuilderOption: option function to apply
func WithSharedPool() SessionBuilderOption {
	return func(s *sessionImpl) {
		s.destroyPoolOnEnd = false
	}
}
