package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/engine/clock"
)

// DefaultLimitedWindow is the window over which a LimitedLogger counts emitted records.
const DefaultLimitedWindow = 60 * time.Second

// LimitedLogger emits at most a fixed number of records per time window and drops the rest.
// When a new window opens after records were dropped, a single summary record reports how many.
// Safe for concurrent use; a single instance is typically shared by every value of one type.
type LimitedLogger struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	clk         clock.Clock
	logger      *slog.Logger
	windowStart time.Time
	emitted     int
	dropped     int
}

// LimitedLoggerOption is a functional option for configuring a LimitedLogger.
type LimitedLoggerOption func(l *LimitedLogger)

// WithWindow sets the counting window. Non-positive values are ignored.
//
// Parameters:
//   - window: duration of one counting window
//
// Returns:
//   - LimitedLoggerOption: option function to apply
func WithWindow(window time.Duration) LimitedLoggerOption {
	return func(l *LimitedLogger) {
		if window > 0 {
			l.window = window
		}
	}
}

// WithClock sets the time source used to open new windows.
//
// Parameters:
//   - clk: the clock to use
//
// Returns:
//   - LimitedLoggerOption: option function to apply
func WithClock(clk clock.Clock) LimitedLoggerOption {
	return func(l *LimitedLogger) {
		if clk != nil {
			l.clk = clk
		}
	}
}

// WithLogger routes records to the given logger instead of the package-wide one.
//
// Parameters:
//   - logger: destination logger
//
// Returns:
//   - LimitedLoggerOption: option function to apply
func WithLogger(logger *slog.Logger) LimitedLoggerOption {
	return func(l *LimitedLogger) {
		l.logger = logger
	}
}

// NewLimitedLogger creates a LimitedLogger allowing limit records per window.
//
// Parameters:
//   - limit: maximum records per window (values below 1 are raised to 1)
//   - options: functional options
//
// Returns:
//   - *LimitedLogger: the rate-limited logger
func NewLimitedLogger(limit int, options ...LimitedLoggerOption) *LimitedLogger {
	l := &LimitedLogger{
		limit:  max(limit, 1),
		window: DefaultLimitedWindow,
		clk:    clock.System(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// Error logs at error level if the window still has budget.
//
// Returns:
//   - bool: true if the record was emitted
func (l *LimitedLogger) Error(msg string, args ...any) bool {
	return l.log(slog.LevelError, msg, args...)
}

// Warn logs at warn level if the window still has budget.
//
// Returns:
//   - bool: true if the record was emitted
func (l *LimitedLogger) Warn(msg string, args ...any) bool {
	return l.log(slog.LevelWarn, msg, args...)
}

// Dropped returns how many records were suppressed in the current window.
func (l *LimitedLogger) Dropped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

func (l *LimitedLogger) log(level slog.Level, msg string, args ...any) bool {
	l.mu.Lock()
	now := l.clk.Now()
	var suppressed int
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.window {
		suppressed = l.dropped
		l.windowStart = now
		l.emitted = 0
		l.dropped = 0
	}
	if l.emitted >= l.limit {
		l.dropped++
		l.mu.Unlock()
		return false
	}
	l.emitted++
	l.mu.Unlock()

	out := Or(l.logger)
	if suppressed > 0 {
		out.Log(context.Background(), slog.LevelWarn, "suppressed repeated log records", "count", suppressed)
	}
	out.Log(context.Background(), level, msg, args...)
	return true
}
