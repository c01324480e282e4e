// package common contains plain value types shared by the portal engine packages. They are not interface-wrapped
// structs, just geometry and state primitives used throughout culling and presentation bookkeeping.
package common

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned bounding box in world space.
// A valid Box always satisfies Min <= Max on every axis; use NewBox to build one from arbitrary corners.
type Box struct {
	// Min is the corner with the smallest coordinate on every axis.
	Min mgl64.Vec3
	// Max is the corner with the largest coordinate on every axis.
	Max mgl64.Vec3
}

// NewBox creates a Box spanning the two given corners in any order.
//
// Parameters:
//   - a: first corner
//   - b: opposite corner
//
// Returns:
//   - Box: the normalized box
func NewBox(a, b mgl64.Vec3) Box {
	return Box{
		Min: mgl64.Vec3{math.Min(a[0], b[0]), math.Min(a[1], b[1]), math.Min(a[2], b[2])},
		Max: mgl64.Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])},
	}
}

// Union returns the smallest box containing both b and o.
//
// Parameters:
//   - o: the other box
//
// Returns:
//   - Box: the union of both boxes
func (b Box) Union(o Box) Box {
	return Box{
		Min: mgl64.Vec3{math.Min(b.Min[0], o.Min[0]), math.Min(b.Min[1], o.Min[1]), math.Min(b.Min[2], o.Min[2])},
		Max: mgl64.Vec3{math.Max(b.Max[0], o.Max[0]), math.Max(b.Max[1], o.Max[1]), math.Max(b.Max[2], o.Max[2])},
	}
}

// Center returns the midpoint of the box.
func (b Box) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Box) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxDimension returns the largest extent of the box along any single axis.
func (b Box) MaxDimension() float64 {
	s := b.Size()
	return math.Max(s[0], math.Max(s[1], s[2]))
}

// Intersects reports whether the interiors of the two boxes overlap.
// Boxes that only touch along a face do not intersect.
//
// Parameters:
//   - o: the other box
//
// Returns:
//   - bool: true if the boxes overlap
func (b Box) Intersects(o Box) bool {
	return b.Min[0] < o.Max[0] && b.Max[0] > o.Min[0] &&
		b.Min[1] < o.Max[1] && b.Max[1] > o.Min[1] &&
		b.Min[2] < o.Max[2] && b.Max[2] > o.Min[2]
}

// Contains reports whether the point lies inside the box or on its boundary.
func (b Box) Contains(p mgl64.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// Corners returns the eight corners of the box.
func (b Box) Corners() [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{b.Min[0], b.Min[1], b.Min[2]},
		{b.Max[0], b.Min[1], b.Min[2]},
		{b.Min[0], b.Max[1], b.Min[2]},
		{b.Max[0], b.Max[1], b.Min[2]},
		{b.Min[0], b.Min[1], b.Max[2]},
		{b.Max[0], b.Min[1], b.Max[2]},
		{b.Min[0], b.Max[1], b.Max[2]},
		{b.Max[0], b.Max[1], b.Max[2]},
	}
}

// Transform maps every corner of the box through fn and returns the bounding box of the results.
// For rigid transforms whose rotation is a multiple of 90 degrees about the axes this is exact;
// for arbitrary rotations it is the tightest axis-aligned bound of the rotated box.
//
// Parameters:
//   - fn: point transform applied to each corner
//
// Returns:
//   - Box: axis-aligned bound of the transformed corners
func (b Box) Transform(fn func(mgl64.Vec3) mgl64.Vec3) Box {
	corners := b.Corners()
	first := fn(corners[0])
	out := Box{Min: first, Max: first}
	for _, c := range corners[1:] {
		p := fn(c)
		out = out.Union(Box{Min: p, Max: p})
	}
	return out
}

// DistanceTo returns the Euclidean distance from the point to the nearest point of the box.
// Points inside the box are at distance zero.
//
// Parameters:
//   - p: the query point
//
// Returns:
//   - float64: distance to the box surface, or 0 if inside
func (b Box) DistanceTo(p mgl64.Vec3) float64 {
	var d mgl64.Vec3
	for i := 0; i < 3; i++ {
		switch {
		case p[i] < b.Min[i]:
			d[i] = b.Min[i] - p[i]
		case p[i] > b.Max[i]:
			d[i] = p[i] - b.Max[i]
		}
	}
	return d.Len()
}

// SegmentIntersects reports whether the segment between the two points passes through or touches the box.
// It is a slab test clipped to the segment's [0, 1] parameter range.
//
// Parameters:
//   - from: segment start
//   - to: segment end
//
// Returns:
//   - bool: true if some point of the segment lies in the box
func (b Box) SegmentIntersects(from, to mgl64.Vec3) bool {
	d := to.Sub(from)
	tMin, tMax := 0.0, 1.0
	for axis := range 3 {
		if math.Abs(d[axis]) < 1e-12 {
			if from[axis] < b.Min[axis] || from[axis] > b.Max[axis] {
				return false
			}
			continue
		}
		t1 := (b.Min[axis] - from[axis]) / d[axis]
		t2 := (b.Max[axis] - from[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// ApproxEqual reports whether both corners of the boxes are within eps of each other on every axis.
func (b Box) ApproxEqual(o Box, eps float64) bool {
	return b.Min.ApproxEqualThreshold(o.Min, eps) && b.Max.ApproxEqualThreshold(o.Max, eps)
}

func (b Box) String() string {
	return fmt.Sprintf("Box[(%.3f, %.3f, %.3f) -> (%.3f, %.3f, %.3f)]",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}
