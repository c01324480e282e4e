package main

import (
	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/portal"
	"github.com/Carmen-Shannon/oxy-portal/engine/query"
	"github.com/go-gl/mathgl/mgl64"
)

// chunk is a destination-side render unit, standing in for a built chunk section.
type chunk struct {
	box common.Box
}

func (c chunk) BoundingBox() common.Box { return c.box }

// chunkGrid tiles a cube of n^3 chunks of the given edge length around center.
func chunkGrid(center mgl64.Vec3, n int, edge float64) []portal.RenderUnit {
	units := make([]portal.RenderUnit, 0, n*n*n)
	start := center.Sub(mgl64.Vec3{1, 1, 1}.Mul(float64(n) * edge / 2))
	for x := range n {
		for y := range n {
			for z := range n {
				lo := start.Add(mgl64.Vec3{float64(x), float64(y), float64(z)}.Mul(edge))
				units = append(units, chunk{box: common.NewBox(lo, lo.Add(mgl64.Vec3{edge, edge, edge}))})
			}
		}
	}
	return units
}

// samplesPerAxis is how many sample points are taken along each extent of a portal face.
const samplesPerAxis = 4

// sampleSegments returns the lines of sight from the camera to a grid of points on every face of p that the
// camera is in front of. A face seen from behind contributes nothing.
func sampleSegments(p portal.PortalLike, cameraPos mgl64.Vec3) []query.Segment {
	var faces []portal.Portal
	switch v := p.(type) {
	case *portal.Group:
		faces = v.Portals()
	case portal.Portal:
		faces = []portal.Portal{v}
	}

	var segments []query.Segment
	for _, f := range faces {
		if !f.IsRoughlyVisibleTo(cameraPos) {
			continue
		}
		for _, pt := range facePoints(f.ExactBoundingBox()) {
			segments = append(segments, query.Segment{From: cameraPos, To: pt})
		}
	}
	return segments
}

// facePoints spreads sample points over the box, inset from its edges. Flat axes get a single coordinate so
// an axis-aligned face yields a 2D grid.
func facePoints(b common.Box) []mgl64.Vec3 {
	var coords [3][]float64
	for axis := range 3 {
		lo, hi := b.Min[axis], b.Max[axis]
		if hi-lo < 1e-9 {
			coords[axis] = []float64{lo}
			continue
		}
		step := (hi - lo) / samplesPerAxis
		for i := range samplesPerAxis {
			coords[axis] = append(coords[axis], lo+step*(float64(i)+0.5))
		}
	}

	points := make([]mgl64.Vec3, 0, len(coords[0])*len(coords[1])*len(coords[2]))
	for _, x := range coords[0] {
		for _, y := range coords[1] {
			for _, z := range coords[2] {
				points = append(points, mgl64.Vec3{x, y, z})
			}
		}
	}
	return points
}
