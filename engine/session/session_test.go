package session

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/engine/clock"
	"github.com/Carmen-Shannon/oxy-portal/engine/portal"
	"github.com/Carmen-Shannon/oxy-portal/engine/presentation"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
)

func newTestSession(options ...SessionBuilderOption) (Session, *clock.Manual) {
	clk := clock.NewManual(time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))
	opts := append([]SessionBuilderOption{WithClock(clk)}, options...)
	return NewSession(query.NewPool(query.WithPageSize(4)), opts...), clk
}

func TestBeginFrameAdvancesIndex(t *testing.T) {
	s, _ := newTestSession()
	if s.FrameIndex() != 0 {
		t.Fatalf("initial frame = %d", s.FrameIndex())
	}
	for want := int64(1); want <= 3; want++ {
		if got := s.BeginFrame(); got != want {
			t.Errorf("BeginFrame = %d, want %d", got, want)
		}
	}
	if s.FrameIndex() != 3 {
		t.Errorf("FrameIndex = %d, want 3", s.FrameIndex())
	}
}

func TestPresentationFollowsSessionFrames(t *testing.T) {
	s, _ := newTestSession()
	p := portal.NewPortal()
	d := portal.NewDescriptor(p)

	s.BeginFrame()
	h := s.Presentation(p).AcquireThisFrameQuery(d)

	s.BeginFrame()
	if last, ok := s.Presentation(p).LastFrameQuery(d); !ok || last != h {
		t.Errorf("LastFrameQuery = %v, %v, want %v", last, ok, h)
	}

	s.SkipFrames(2)
	s.BeginFrame()
	if _, ok := s.Presentation(p).LastFrameQuery(d); ok {
		t.Error("query survived skipped frames")
	}
	if s.Pool().InUse() != 0 {
		t.Errorf("InUse = %d after skip", s.Pool().InUse())
	}
}

func TestBeginFrameSweepsIdleStates(t *testing.T) {
	s, clk := newTestSession()
	p := portal.NewPortal()

	s.BeginFrame()
	s.Presentation(p).AcquireThisFrameQuery(portal.NewDescriptor(p))

	clk.Advance(presentation.DefaultIdleTimeout + time.Second)
	s.BeginFrame()
	if s.Cache().Len() != 0 {
		t.Errorf("Len = %d, want idle state swept", s.Cache().Len())
	}
	if s.Pool().InUse() != 0 {
		t.Errorf("InUse = %d after sweep", s.Pool().InUse())
	}
}

func TestCacheOptionsOverrideSessionDefaults(t *testing.T) {
	s, clk := newTestSession(WithCacheOptions(
		presentation.WithIdleTimeout(time.Second),
		presentation.WithSweepInterval(0),
	))
	p := portal.NewPortal()
	s.BeginFrame()
	s.Presentation(p)

	clk.Advance(2 * time.Second)
	s.BeginFrame()
	if s.Cache().Len() != 0 {
		t.Error("custom idle timeout was not applied")
	}
}

func TestCloseDisposesAndIsIdempotent(t *testing.T) {
	s, _ := newTestSession()
	p := portal.NewPortal()
	s.BeginFrame()
	s.Presentation(p).AcquireThisFrameQuery(portal.NewDescriptor(p))

	s.Close()
	if s.Cache().Len() != 0 {
		t.Errorf("Len = %d after Close", s.Cache().Len())
	}
	if s.Pool().Capacity() != 0 {
		t.Errorf("Capacity = %d, want destroyed pool", s.Pool().Capacity())
	}
	s.Close()
}

func TestSharedPoolSurvivesClose(t *testing.T) {
	pool := query.NewPool(query.WithPageSize(4))
	s := NewSession(pool, WithSharedPool())
	p := portal.NewPortal()
	s.BeginFrame()
	s.Presentation(p).AcquireThisFrameQuery(portal.NewDescriptor(p))

	s.Close()
	if pool.InUse() != 0 {
		t.Errorf("InUse = %d, want handles returned", pool.InUse())
	}
	if pool.Capacity() == 0 {
		t.Error("shared pool was destroyed")
	}
}

func TestNewSessionPanicsWithoutPool(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewSession(nil)
}
