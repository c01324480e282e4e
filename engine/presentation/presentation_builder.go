package presentation

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/engine/clock"
)

// CacheBuilderOption is a functional option for configuring a Cache.
// Use the With* functions to create options.
type CacheBuilderOption func(c *cacheImpl)

// WithClock sets the time source for activity stamps and misprediction history.
//
// Parameters:
//   - clk: the clock to use
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithClock(clk clock.Clock) CacheBuilderOption {
	return func(c *cacheImpl) {
		if clk != nil {
			c.clk = clk
		}
	}
}

// WithIdleTimeout sets how long a state may go unused before a sweep disposes it.
// Defaults to DefaultIdleTimeout (60s).
//
// Parameters:
//   - timeout: idle duration before eviction
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithIdleTimeout(timeout time.Duration) CacheBuilderOption {
	return func(c *cacheImpl) {
		if timeout > 0 {
			c.idleTimeout = timeout
		}
	}
}

// WithSweepInterval sets the minimum time between sweeps. Defaults to DefaultSweepInterval (30s).
//
// Parameters:
//   - interval: minimum gap between sweeps
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithSweepInterval(interval time.Duration) CacheBuilderOption {
	return func(c *cacheImpl) {
		if interval >= 0 {
			c.sweepInterval = interval
		}
	}
}

// WithMispredictWindow sets the window within which two mispredictions flag a portal as unstable.
// Defaults to DefaultMispredictWindow (30s).
//
// Parameters:
//   - window: the misprediction window
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithMispredictWindow(window time.Duration) CacheBuilderOption {
	return func(c *cacheImpl) {
		if window > 0 {
			c.mispredictWindow = window
		}
	}
}

// WithLogger sets the logger used for sweep and cleanup messages.
//
// Parameters:
//   - logger: destination logger
//
// Returns:
//   - CacheBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) CacheBuilderOption {
	return func(c *cacheImpl) {
		c.logger = logger
	}
}
