package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Plane represents a plane in 3D space using the equation: ax + by + cz + d = 0
// where (a, b, c) is the normal and d is the distance from origin.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

// SignedDistance returns the signed distance of the point from the plane.
// Positive values lie on the side the normal points to.
func (p Plane) SignedDistance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.Distance
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumPlane indices for clarity
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// ExtractFrustumFromMatrix extracts frustum planes from a view-projection matrix.
// The matrix should be the combined Projection * View matrix.
// Uses the Gribb/Hartmann method for plane extraction.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: the view-projection matrix (column-major, as stored by mgl64)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj mgl64.Mat4) Frustum {
	var f Frustum

	// mgl64 stores M[row][col] at index col*4 + row.
	row := func(i int) [4]float64 {
		return [4]float64{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	set := func(index int, sign float64, r [4]float64) {
		f.Planes[index] = Plane{
			Normal:   mgl64.Vec3{r3[0] + sign*r[0], r3[1] + sign*r[1], r3[2] + sign*r[2]},
			Distance: r3[3] + sign*r[3],
		}
	}

	set(FrustumLeft, 1, r0)
	set(FrustumRight, -1, r0)
	set(FrustumBottom, 1, r1)
	set(FrustumTop, -1, r1)
	set(FrustumNear, 1, r2)
	set(FrustumFar, -1, r2)

	for i := range f.Planes {
		f.normalizePlane(i)
	}

	return f
}

// IntersectsBox tests the box against all six planes using the positive-vertex method.
// The test is conservative: boxes near frustum corners may be reported as intersecting.
//
// Parameters:
//   - b: the box to test
//
// Returns:
//   - bool: false only if the box lies entirely outside at least one plane
func (f *Frustum) IntersectsBox(b Box) bool {
	for i := range f.Planes {
		p := &f.Planes[i]
		var v mgl64.Vec3
		for axis := 0; axis < 3; axis++ {
			if p.Normal[axis] >= 0 {
				v[axis] = b.Max[axis]
			} else {
				v[axis] = b.Min[axis]
			}
		}
		if p.SignedDistance(v) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether the point is inside or on every plane.
func (f *Frustum) ContainsPoint(point mgl64.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].SignedDistance(point) < 0 {
			return false
		}
	}
	return true
}

// normalizePlane normalizes a frustum plane so that the normal has unit length.
func (f *Frustum) normalizePlane(index int) {
	p := &f.Planes[index]
	length := math.Sqrt(p.Normal.Dot(p.Normal))

	if length > 0 {
		invLen := 1.0 / length
		p.Normal = p.Normal.Mul(invLen)
		p.Distance *= invLen
	}
}
