package profiler

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/engine/clock"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	clk := clock.NewManual(time.Unix(0, 0))
	p := NewProfiler(time.Second, clk, slog.New(slog.NewTextHandler(&buf, nil)))

	for i := range 9 {
		clk.Advance(100 * time.Millisecond)
		if p.Tick(Stats{Frame: int64(i + 1), Evicted: 1}) {
			t.Fatalf("reported early on tick %d", i+1)
		}
	}
	clk.Advance(100 * time.Millisecond)
	if !p.Tick(Stats{Frame: 10, Presentations: 4, QueriesInUse: 6, QueryCapacity: 64, Evicted: 1}) {
		t.Fatal("no report after the interval elapsed")
	}

	out := buf.String()
	for _, want := range []string{"portal profiler", "frame=10", "presentations=4", "queries_in_use=6", "evicted=10", "fps=10"} {
		if !strings.Contains(out, want) {
			t.Errorf("report %q missing %q", out, want)
		}
	}

	clk.Advance(100 * time.Millisecond)
	if p.Tick(Stats{Frame: 11}) {
		t.Error("reported again right after a report")
	}
}

func TestNewProfilerDefaults(t *testing.T) {
	p := NewProfiler(0, nil, nil)
	if p.updateInterval != time.Second {
		t.Errorf("updateInterval = %v, want 1s", p.updateInterval)
	}
	if p.clk == nil {
		t.Error("clock should default to the system clock")
	}
}
