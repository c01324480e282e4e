package portal

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DescEpsilon is the tolerance used when comparing transformation descriptors.
const DescEpsilon = 1e-6

// TransformationDesc describes the rigid transform of a portal: p' = Rotation * (Scale * p) + Offset.
// Portals whose descriptors are equal map every point identically and may be grouped.
type TransformationDesc struct {
	// DestWorld is the world the transform leads into.
	DestWorld WorldID
	// Rotation is applied after scaling. Ignored unless HasRotation is set.
	Rotation mgl64.Quat
	// HasRotation distinguishes an identity transform from an explicit rotation.
	HasRotation bool
	// Scale is the uniform scale factor.
	Scale float64
	// Offset is the translation applied after rotation.
	Offset mgl64.Vec3
}

// NewTransformationDesc derives the descriptor of a portal that maps origin onto dest with the given rotation
// and scale. A nil rotation means no rotation.
//
// Parameters:
//   - destWorld: destination world
//   - origin: a point on the origin side
//   - dest: where origin lands on the destination side
//   - rotation: optional rotation
//   - scale: uniform scale factor
//
// Returns:
//   - TransformationDesc: the descriptor
func NewTransformationDesc(destWorld WorldID, origin, dest mgl64.Vec3, rotation *mgl64.Quat, scale float64) TransformationDesc {
	d := TransformationDesc{
		DestWorld: destWorld,
		Rotation:  mgl64.QuatIdent(),
		Scale:     scale,
	}
	if rotation != nil {
		d.Rotation = rotation.Normalize()
		d.HasRotation = true
	}
	d.Offset = dest.Sub(d.TransformVec(origin))
	return d
}

// TransformPoint applies the full transform to a point.
func (d TransformationDesc) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return d.TransformVec(p).Add(d.Offset)
}

// TransformVec applies scale and rotation to a vector.
func (d TransformationDesc) TransformVec(v mgl64.Vec3) mgl64.Vec3 {
	v = v.Mul(d.Scale)
	if d.HasRotation {
		v = d.Rotation.Rotate(v)
	}
	return v
}

// Equals reports whether both descriptors describe the same transform within DescEpsilon.
// Rotations q and -q are the same rotation.
//
// Parameters:
//   - o: the other descriptor
//
// Returns:
//   - bool: true if the transforms match
func (d TransformationDesc) Equals(o TransformationDesc) bool {
	if d.DestWorld != o.DestWorld || math.Abs(d.Scale-o.Scale) > DescEpsilon {
		return false
	}
	if !d.Offset.ApproxEqualThreshold(o.Offset, DescEpsilon) {
		return false
	}
	a, b := d.effectiveRotation(), o.effectiveRotation()
	return math.Abs(math.Abs(a.Dot(b))-1) <= DescEpsilon
}

func (d TransformationDesc) effectiveRotation() mgl64.Quat {
	if !d.HasRotation {
		return mgl64.QuatIdent()
	}
	return d.Rotation
}

func (d TransformationDesc) String() string {
	r := d.effectiveRotation()
	return fmt.Sprintf("TransformationDesc{%s rot=(%.3f %.3f %.3f %.3f) scale=%.3f offset=(%.3f %.3f %.3f)}",
		d.DestWorld, r.W, r.V[0], r.V[1], r.V[2], d.Scale, d.Offset[0], d.Offset[1], d.Offset[2])
}
