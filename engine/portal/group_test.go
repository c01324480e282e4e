package portal

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/logging"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	boxCenter  = mgl64.Vec3{0, 4, 0}
	boxSize    = mgl64.Vec3{8, 8, 8}
	boxDest    = mgl64.Vec3{0, 64, 0}
	boxScale   = 2.0
	wantDestBB = common.Box{Min: mgl64.Vec3{-8, 56, -8}, Max: mgl64.Vec3{8, 72, 8}}
)

type testUnit struct {
	name string
	box  common.Box
}

func (u testUnit) BoundingBox() common.Box { return u.box }

func quietGroupLogger() GroupBuilderOption {
	return WithGroupLogger(logging.NewLimitedLogger(100, logging.WithLogger(logging.NewNop())))
}

func newTestBox(t *testing.T) (*Group, []RectPortal) {
	t.Helper()
	g, faces := NewSealedBox(boxCenter, boxSize, boxDest, boxScale, "overworld", "nether", quietGroupLogger())
	if g.Len() != 6 {
		t.Fatalf("sealed box has %d members, want 6", g.Len())
	}
	return g, faces
}

// extraFace builds a portal sharing the box transform whose outward normal is axisW x axisH.
func extraFace(g *Group, origin, axisW, axisH mgl64.Vec3, size float64) RectPortal {
	d := g.TransformationDesc()
	return NewPortal(
		WithOrigin(origin),
		WithAxes(axisW, axisH),
		WithSize(size, size),
		WithDestination(d.TransformPoint(origin)),
		WithScale(d.Scale),
		WithWorlds("overworld", "nether"),
	)
}

func TestSealedBoxEnclosesDestination(t *testing.T) {
	g, _ := newTestBox(t)

	box, ok := g.EnclosedDestAreaBox()
	if !ok {
		t.Fatal("six distinct facings should enclose the destination")
	}
	if !box.ApproxEqual(wantDestBB, 1e-9) {
		t.Errorf("EnclosedDestAreaBox = %v, want %v", box, wantDestBB)
	}

	wantExact := common.Box{Min: mgl64.Vec3{-4, 0, -4}, Max: mgl64.Vec3{4, 8, 4}}
	if exact := g.ExactAreaBox(); !exact.ApproxEqual(wantExact, 1e-9) {
		t.Errorf("ExactAreaBox = %v, want %v", exact, wantExact)
	}
	if o := g.OriginPos(); !o.ApproxEqualThreshold(boxCenter, 1e-9) {
		t.Errorf("OriginPos = %v", o)
	}
	if d := g.DestPos(); !d.ApproxEqualThreshold(boxDest, 1e-9) {
		t.Errorf("DestPos = %v", d)
	}
	if r := g.DestAreaRadiusEstimation(); r != 16 {
		t.Errorf("DestAreaRadiusEstimation = %v, want 16", r)
	}
}

func TestEnclosureNeedsSixDistinctFacings(t *testing.T) {
	t.Run("five faces", func(t *testing.T) {
		g, faces := newTestBox(t)
		g.EnclosedDestAreaBox()
		g.RemovePortal(faces[common.DirectionEast])
		if _, ok := g.EnclosedDestAreaBox(); ok {
			t.Error("five faces reported enclosed")
		}
	})

	t.Run("repeated facing", func(t *testing.T) {
		g, faces := newTestBox(t)
		g.RemovePortal(faces[common.DirectionUp])
		second := extraFace(g, mgl64.Vec3{0, -2, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 1}, 2)
		if !g.AddPortal(second) {
			t.Fatal("second downward face rejected")
		}
		if g.Len() != 6 {
			t.Fatalf("Len = %d, want 6", g.Len())
		}
		if _, ok := g.EnclosedDestAreaBox(); ok {
			t.Error("six members with a repeated facing reported enclosed")
		}
	})

	t.Run("gaps between faces", func(t *testing.T) {
		// The check counts facings only, so a face too small to seal its side still counts.
		g, faces := newTestBox(t)
		g.RemovePortal(faces[common.DirectionEast])
		small := extraFace(g, mgl64.Vec3{4, 4, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}, 2)
		if !g.AddPortal(small) {
			t.Fatal("small east face rejected")
		}
		box, ok := g.EnclosedDestAreaBox()
		if !ok {
			t.Fatal("distinct facings with gaps should still report enclosed")
		}
		if !box.ApproxEqual(wantDestBB, 1e-9) {
			t.Errorf("EnclosedDestAreaBox = %v, want %v", box, wantDestBB)
		}

		// A unit past the open part of the east side could be seen through the gap, yet it is culled.
		beyondEast := testUnit{"beyond east", common.NewBox(mgl64.Vec3{9, 60, -1}, mgl64.Vec3{12, 66, 1})}
		if got := g.DoAdditionalRenderingCull([]RenderUnit{beyondEast}); len(got) != 0 {
			t.Errorf("kept %v, want the unit beyond the gap over-culled", got)
		}
	})
}

func TestDoAdditionalRenderingCull(t *testing.T) {
	g, _ := newTestBox(t)

	inside := testUnit{"inside", common.NewBox(mgl64.Vec3{-1, 63, -1}, mgl64.Vec3{1, 65, 1})}
	straddling := testUnit{"straddling", common.NewBox(mgl64.Vec3{7, 60, 0}, mgl64.Vec3{9, 62, 2})}
	touching := testUnit{"touching", common.NewBox(mgl64.Vec3{8, 60, 0}, mgl64.Vec3{9, 62, 2})}
	outside := testUnit{"outside", common.NewBox(mgl64.Vec3{100, 64, 0}, mgl64.Vec3{101, 65, 1})}

	units := []RenderUnit{inside, outside, straddling, touching}
	got := g.DoAdditionalRenderingCull(units)

	var names []string
	for _, u := range got {
		names = append(names, u.(testUnit).name)
	}
	if strings.Join(names, ",") != "inside,straddling" {
		t.Errorf("kept %v, want [inside straddling]", names)
	}
}

func TestDoAdditionalRenderingCullWithoutEnclosureKeepsAll(t *testing.T) {
	g, faces := newTestBox(t)
	g.RemovePortal(faces[common.DirectionDown])

	units := []RenderUnit{
		testUnit{"near", common.NewBox(mgl64.Vec3{0, 64, 0}, mgl64.Vec3{1, 65, 1})},
		testUnit{"far", common.NewBox(mgl64.Vec3{500, 0, 0}, mgl64.Vec3{501, 1, 1})},
	}
	got := g.DoAdditionalRenderingCull(units)
	if len(got) != 2 || got[0] != units[0] || got[1] != units[1] {
		t.Errorf("cull without enclosure changed the input: %v", got)
	}
}

func TestAddPortalRejections(t *testing.T) {
	g, faces := newTestBox(t)
	desc := g.TransformationDesc()
	o := mgl64.Vec3{0, 0, 20}

	tests := []struct {
		name string
		p    Portal
	}{
		{"duplicate", faces[0]},
		{"global", NewPortal(WithGlobal(true), WithOrigin(o), WithDestination(desc.TransformPoint(o)),
			WithScale(boxScale), WithWorlds("overworld", "nether"))},
		{"other world", NewPortal(WithOrigin(o), WithDestination(desc.TransformPoint(o)),
			WithScale(boxScale), WithWorlds("end", "nether"))},
		{"other transformation", NewPortal(WithOrigin(o), WithDestination(desc.TransformPoint(o)),
			WithScale(3), WithWorlds("overworld", "nether"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if g.AddPortal(tt.p) {
				t.Error("AddPortal accepted the portal")
			}
			if g.Len() != 6 {
				t.Errorf("Len = %d after rejection", g.Len())
			}
		})
	}
}

func TestGroupCachesInvalidateOnMembershipChange(t *testing.T) {
	d := NewTransformationDesc("overworld", mgl64.Vec3{}, mgl64.Vec3{0, 100, 0}, nil, 1)
	mk := func(origin mgl64.Vec3) RectPortal {
		return NewPortal(WithOrigin(origin), WithDestination(d.TransformPoint(origin)))
	}
	a := mk(mgl64.Vec3{0, 0, 0})
	b := mk(mgl64.Vec3{10, 0, 0})

	g := NewGroup(d, quietGroupLogger())
	g.AddPortal(a)
	if got := g.ExactAreaBox(); got != a.ExactBoundingBox() {
		t.Fatalf("single-member box = %v", got)
	}
	g.AddPortal(b)
	want := a.ExactBoundingBox().Union(b.ExactBoundingBox())
	if got := g.ExactAreaBox(); got != want {
		t.Errorf("box after add = %v, want %v", got, want)
	}
	if got := g.OriginPos(); got != want.Center() {
		t.Errorf("OriginPos after add = %v, want %v", got, want.Center())
	}

	b.MarkRemoved()
	if n := g.Purge(); n != 1 {
		t.Fatalf("Purge dropped %d, want 1", n)
	}
	if got := g.ExactAreaBox(); got != a.ExactBoundingBox() {
		t.Errorf("box after purge = %v, want %v", got, a.ExactBoundingBox())
	}
	if g.Removed() {
		t.Error("group with one member reported removed")
	}

	g.RemovePortal(a)
	if !g.Removed() {
		t.Error("empty group should report removed")
	}
	if g.RemovePortal(a) {
		t.Error("removing a non-member succeeded")
	}
}

func TestEmptyGroupPanics(t *testing.T) {
	g := NewGroup(NewTransformationDesc("overworld", mgl64.Vec3{}, mgl64.Vec3{}, nil, 1))
	ops := map[string]func(){
		"ExactAreaBox":   func() { g.ExactAreaBox() },
		"TransformPoint": func() { g.TransformPoint(mgl64.Vec3{}) },
		"OriginWorld":    func() { g.OriginWorld() },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				if msg, _ := r.(string); !strings.Contains(msg, "empty group") {
					t.Errorf("panic = %v, want an empty group panic", r)
				}
			}()
			op()
		})
	}
}

func TestGroupDelegatesToMembers(t *testing.T) {
	g, faces := newTestBox(t)

	if g.IsConventional() || g.IsGlobal() {
		t.Error("group should be neither conventional nor global")
	}
	if g.OriginWorld() != "overworld" || g.DestWorld() != "nether" {
		t.Errorf("worlds = %s -> %s", g.OriginWorld(), g.DestWorld())
	}
	if _, rotated := g.Rotation(); rotated {
		t.Error("unrotated box reported a rotation")
	}
	if g.Scale() != boxScale {
		t.Errorf("Scale = %v", g.Scale())
	}
	if got, want := g.TransformPoint(mgl64.Vec3{4, 4, 0}), faces[0].TransformPoint(mgl64.Vec3{4, 4, 0}); got != want {
		t.Errorf("TransformPoint = %v, want %v", got, want)
	}

	backOfEast := NewPortal(
		WithOrigin(mgl64.Vec3{4, 4, 0}),
		WithAxes(mgl64.Vec3{0, 0, 1}, mgl64.Vec3{0, 1, 0}),
		WithWorlds("overworld", "nether"),
	)
	if !g.IsParallelWith(backOfEast) {
		t.Error("group should be parallel with the back of its east face")
	}

	var n int
	g.ViewAreaMesh(mgl64.Vec3{}, func(mgl64.Vec3) { n++ })
	if n != 36 {
		t.Errorf("ViewAreaMesh emitted %d vertices, want 36", n)
	}
	if d := g.DistanceToNearestPoint(mgl64.Vec3{10, 4, 0}); d != 6 {
		t.Errorf("DistanceToNearestPoint = %v, want 6", d)
	}
	if !strings.HasPrefix(g.String(), "PortalGroup(6)") {
		t.Errorf("String = %q", g.String())
	}
}
