// Package logging holds the shared slog logger for the portal engine packages and a rate-limited
// wrapper for diagnostics that may fire every frame.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// NewNop creates a logger that silently discards all output.
//
// Returns:
//   - *slog.Logger: a disabled logger
func NewNop() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(NewNop())
}

// SetLogger configures the logger used by every engine package that was not given its own via a
// WithLogger option. By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used:
//   - slog.LevelDebug: per-frame diagnostics (stale readbacks, query rotation)
//   - slog.LevelInfo: session lifecycle (cleanup, sweep results)
//   - slog.LevelWarn: non-fatal issues (occlusion compute pipeline unavailable)
//   - slog.LevelError: caller contract violations that were ignored (duplicate group member)
//
// Parameters:
//   - l: the logger to install, or nil
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package-wide logger. Safe for concurrent use.
//
// Returns:
//   - *slog.Logger: the active logger, never nil
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Or returns l when it is non-nil and the package-wide logger otherwise.
// Components store an optional injected logger and resolve it through Or at log time,
// so a later SetLogger still reaches them.
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Logger()
}
