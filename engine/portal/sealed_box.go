package portal

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/go-gl/mathgl/mgl64"
)

// faceAxes gives, per outward facing, the in-plane axes whose cross product is that facing.
var faceAxes = [6][2]mgl64.Vec3{
	common.DirectionDown:  {{1, 0, 0}, {0, 0, 1}},
	common.DirectionUp:    {{0, 0, 1}, {1, 0, 0}},
	common.DirectionNorth: {{0, 1, 0}, {1, 0, 0}},
	common.DirectionSouth: {{1, 0, 0}, {0, 1, 0}},
	common.DirectionWest:  {{0, 0, 1}, {0, 1, 0}},
	common.DirectionEast:  {{0, 1, 0}, {0, 0, 1}},
}

// NewSealedBox builds the six outward-facing portals of a box around center and groups them. Every face maps
// the box onto a box around destCenter scaled by scale, so the group encloses its destination.
//
// Parameters:
//   - center: center of the box on the origin side
//   - size: full extent of the box along each axis
//   - destCenter: where center lands on the destination side
//   - scale: uniform scale from origin to destination
//   - originWorld: world the box stands in
//   - destWorld: world the box shows
//   - options: options for the group
//
// Returns:
//   - *Group: the group holding all six faces
//   - []RectPortal: the faces, indexed by common.Direction of their outward normal
func NewSealedBox(center, size, destCenter mgl64.Vec3, scale float64, originWorld, destWorld WorldID, options ...GroupBuilderOption) (*Group, []RectPortal) {
	half := size.Mul(0.5)
	faces := make([]RectPortal, 0, len(common.AllDirections))
	for _, d := range common.AllDirections {
		n := d.Vector()
		axes := faceAxes[d]
		origin := center.Add(mgl64.Vec3{n[0] * half[0], n[1] * half[1], n[2] * half[2]})
		faces = append(faces, NewPortal(
			WithTag(fmt.Sprintf("box-%s", d)),
			WithOrigin(origin),
			WithAxes(axes[0], axes[1]),
			WithSize(axisExtent(size, axes[0]), axisExtent(size, axes[1])),
			WithDestination(destCenter.Add(origin.Sub(center).Mul(scale))),
			WithScale(scale),
			WithWorlds(originWorld, destWorld),
		))
	}

	g := NewGroup(NewTransformationDesc(destWorld, center, destCenter, nil, scale), options...)
	for _, f := range faces {
		g.AddPortal(f)
	}
	return g, faces
}

// axisExtent returns the component of size along a unit axis vector.
func axisExtent(size, axis mgl64.Vec3) float64 {
	return size[0]*axis[0] + size[1]*axis[1] + size[2]*axis[2]
}
