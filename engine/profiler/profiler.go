package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/engine/clock"
	"github.com/Carmen-Shannon/oxy-portal/engine/logging"
)

// Stats is the per-frame snapshot of portal bookkeeping reported to the Profiler.
type Stats struct {
	// Frame is the index of the frame just begun.
	Frame int64
	// Presentations is the number of live per-portal presentation states.
	Presentations int
	// QueriesInUse is the number of occlusion query handles currently lent out.
	QueriesInUse int
	// QueryCapacity is the total number of query slots allocated by the pool.
	QueryCapacity int
	// Evicted is the number of presentation states disposed by this frame's sweep.
	Evicted int
}

// Profiler tracks frame rate, portal bookkeeping and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	evicted        int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	clk            clock.Clock
	logger         *slog.Logger
}

// NewProfiler creates a new Profiler reporting every interval.
// A non-positive interval defaults to 1 second.
//
// Parameters:
//   - interval: time between reports
//   - clk: time source, or nil for the system clock
//   - logger: destination logger, or nil for the package-wide logger
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration, clk clock.Clock, logger *slog.Logger) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	if clk == nil {
		clk = clock.System()
	}
	return &Profiler{
		lastTime:       clk.Now(),
		updateInterval: interval,
		clk:            clk,
		logger:         logger,
	}
}

// Tick should be called once per frame with that frame's stats.
// Logs a report when the update interval has elapsed. Evictions are summed over the interval;
// the other counters are reported as of the latest tick.
//
// Parameters:
//   - s: the current frame's stats
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(s Stats) bool {
	p.frameCount++
	p.evicted += s.Evicted
	now := p.clk.Now()
	elapsed := now.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	gcDelta := p.memStats.NumGC - p.lastGCCount

	logging.Or(p.logger).Info("portal profiler",
		"frame", s.Frame,
		"fps", fps,
		"presentations", s.Presentations,
		"queries_in_use", s.QueriesInUse,
		"query_capacity", s.QueryCapacity,
		"evicted", p.evicted,
		"heap_mb", heapMB,
		"gc", gcDelta,
	)

	p.frameCount = 0
	p.evicted = 0
	p.lastTime = now
	p.lastGCCount = p.memStats.NumGC
	return true
}
