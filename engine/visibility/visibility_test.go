package visibility

import (
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/clock"
	"github.com/Carmen-Shannon/oxy-portal/engine/portal"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
	"github.com/Carmen-Shannon/oxy-portal/engine/session"
	"github.com/go-gl/mathgl/mgl64"
)

type unit struct {
	box common.Box
}

func (u unit) BoundingBox() common.Box { return u.box }

func newTestCuller(t *testing.T, options ...CullerBuilderOption) (Culler, session.Session, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	s := session.NewSession(query.NewPool(query.WithPageSize(16)), session.WithClock(clk))
	t.Cleanup(s.Close)
	c := NewCuller(s, options...)
	t.Cleanup(c.Close)
	return c, s, clk
}

// frontView looks at the origin from +Z.
func frontView() View {
	return View{CameraPos: mgl64.Vec3{0, 0, 5}}
}

func frustumLookingAt(eye, target mgl64.Vec3) *common.Frustum {
	vp := mgl64.Perspective(math.Pi/2, 1, 0.1, 100).Mul4(mgl64.LookAtV(eye, target, mgl64.Vec3{0, 1, 0}))
	f := common.ExtractFrustumFromMatrix(vp)
	return &f
}

func TestDecideFollowsLastFrameResult(t *testing.T) {
	c, s, _ := newTestCuller(t)
	p := portal.NewPortal()
	d := portal.NewDescriptor(p)

	s.BeginFrame()
	v := c.Decide(p, d, frontView())
	if v.Decision != DecisionRender || !v.HasQuery {
		t.Fatalf("first frame = %+v, want render with a query", v)
	}
	s.Pool().Resolve(v.Query, 0)

	s.BeginFrame()
	v = c.Decide(p, d, frontView())
	if v.Decision != DecisionSkip {
		t.Fatalf("zero samples last frame gave %v, want skip", v.Decision)
	}
	if v.Mispredicted {
		t.Error("rendered frame with no samples flagged as mispredicted")
	}
	s.Pool().Resolve(v.Query, 12)

	s.BeginFrame()
	v = c.Decide(p, d, frontView())
	if !v.Mispredicted {
		t.Error("samples after a skip should be a misprediction")
	}
	if v.Decision != DecisionRender {
		t.Errorf("decision = %v, want render", v.Decision)
	}
}

func TestDecideRendersWhenUnresolved(t *testing.T) {
	c, s, _ := newTestCuller(t)
	p := portal.NewPortal()
	d := portal.NewDescriptor(p)

	s.BeginFrame()
	c.Decide(p, d, frontView())

	// No readback arrived for last frame's query.
	s.BeginFrame()
	if v := c.Decide(p, d, frontView()); v.Decision != DecisionRender {
		t.Errorf("decision = %v, want render for an unresolved query", v.Decision)
	}
}

func TestFrequentMispredictionForcesRender(t *testing.T) {
	c, s, clk := newTestCuller(t)
	p := portal.NewPortal()
	d := portal.NewDescriptor(p)

	// Alternate empty and non-empty readbacks so every skip is wrong.
	samples := []uint64{0, 5, 0, 5}
	var v Verdict
	for _, n := range samples {
		s.BeginFrame()
		v = c.Decide(p, d, frontView())
		s.Pool().Resolve(v.Query, n)
	}

	s.BeginFrame()
	v = c.Decide(p, d, frontView())
	if !v.Mispredicted || v.Decision != DecisionRender {
		t.Fatalf("second misprediction = %+v", v)
	}
	s.Pool().Resolve(v.Query, 0)

	s.BeginFrame()
	if v = c.Decide(p, d, frontView()); v.Decision != DecisionRender {
		t.Errorf("frequently mispredicted portal got %v, want render", v.Decision)
	}
	s.Pool().Resolve(v.Query, 0)

	clk.Advance(31 * time.Second)
	s.BeginFrame()
	if v = c.Decide(p, d, frontView()); v.Decision != DecisionSkip {
		t.Errorf("after the window passed got %v, want skip", v.Decision)
	}
}

func TestDecideCulls(t *testing.T) {
	c, s, _ := newTestCuller(t)
	p := portal.NewPortal()
	d := portal.NewDescriptor(p)
	s.BeginFrame()

	tests := []struct {
		name string
		view View
	}{
		{"behind the portal", View{CameraPos: mgl64.Vec3{0, 0, -5}}},
		{"looking away", View{
			CameraPos: mgl64.Vec3{0, 0, 5},
			Frustum:   frustumLookingAt(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{0, 0, 10}),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := c.Decide(p, d, tt.view)
			if v.Decision != DecisionCulled || v.HasQuery {
				t.Errorf("verdict = %+v, want culled without a query", v)
			}
		})
	}
	if s.Pool().InUse() != 0 {
		t.Errorf("culled portal acquired %d queries", s.Pool().InUse())
	}
}

// stripUnits returns n unit boxes along x at z=-20, about half of which a camera at the origin looking down -Z
// can see, together with the units that frustum keeps when tested one by one.
func stripUnits(t *testing.T, fr *common.Frustum, n int) (units, want []portal.RenderUnit) {
	t.Helper()
	for i := range n {
		x := float64(i-n/2) * 2
		units = append(units, unit{common.NewBox(mgl64.Vec3{x, -1, -21}, mgl64.Vec3{x + 1, 1, -19})})
	}
	for _, u := range units {
		if fr.IntersectsBox(u.BoundingBox()) {
			want = append(want, u)
		}
	}
	if len(want) == 0 || len(want) == len(units) {
		t.Fatalf("test setup keeps %d of %d units", len(want), len(units))
	}
	return units, want
}

func assertUnits(t *testing.T, got, want []portal.RenderUnit) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("kept %d units, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unit %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCullUnitsParallelMatchesSequential(t *testing.T) {
	fr := frustumLookingAt(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1})
	units, want := stripUnits(t, fr, 100)

	c, _, _ := newTestCuller(t, WithBatchSize(7), WithWorkers(3))
	assertUnits(t, c.CullUnits(append([]portal.RenderUnit(nil), units...), fr, nil), want)
}

func TestCloseStopsWorkersAndKeepsCulling(t *testing.T) {
	fr := frustumLookingAt(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, -1})
	units, want := stripUnits(t, fr, 100)

	c, _, _ := newTestCuller(t, WithBatchSize(7), WithWorkers(3))
	c.Close()
	c.Close()
	if !c.(*cullerImpl).closed {
		t.Fatal("Close did not mark the culler closed")
	}

	done := make(chan []portal.RenderUnit, 1)
	go func() {
		done <- c.CullUnits(append([]portal.RenderUnit(nil), units...), fr, nil)
	}()
	select {
	case got := <-done:
		assertUnits(t, got, want)
	case <-time.After(5 * time.Second):
		t.Fatal("CullUnits after Close blocked on the stopped worker pool")
	}
}

func TestCullUnitsAppliesPortalCull(t *testing.T) {
	c, _, _ := newTestCuller(t)
	box, _ := portal.NewSealedBox(
		mgl64.Vec3{0, 4, 0}, mgl64.Vec3{8, 8, 8},
		mgl64.Vec3{0, 64, 0}, 2,
		"overworld", "nether",
	)

	inside := unit{common.NewBox(mgl64.Vec3{0, 60, 0}, mgl64.Vec3{1, 61, 1})}
	outside := unit{common.NewBox(mgl64.Vec3{50, 60, 0}, mgl64.Vec3{51, 61, 1})}

	got := c.CullUnits([]portal.RenderUnit{outside, inside}, nil, box)
	if len(got) != 1 || got[0] != inside {
		t.Errorf("CullUnits = %v, want only the unit inside the sealed box", got)
	}

	got = c.CullUnits([]portal.RenderUnit{outside, inside}, nil, nil)
	if len(got) != 2 {
		t.Errorf("CullUnits without frustum or portal dropped units: %v", got)
	}
}

func TestDecisionString(t *testing.T) {
	for d, want := range map[Decision]string{
		DecisionCulled: "culled",
		DecisionRender: "render",
		DecisionSkip:   "skip",
	} {
		if got := d.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", d, got, want)
		}
	}
}
