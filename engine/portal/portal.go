package portal

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// parallelDotThreshold is how close to exactly opposite two normals must be for IsParallelWith.
const parallelDotThreshold = -0.9999

// coplanarEpsilon is the maximum plane offset for two openings to count as coplanar.
const coplanarEpsilon = 1e-3

// rectPortal is a flat rectangular opening spanned by two perpendicular axes around its origin.
type rectPortal struct {
	id          uuid.UUID
	tag         string
	origin      mgl64.Vec3
	axisW       mgl64.Vec3
	axisH       mgl64.Vec3
	width       float64
	height      float64
	destination mgl64.Vec3
	rotation    *mgl64.Quat
	scale       float64
	originWorld WorldID
	destWorld   WorldID
	global      bool
	removed     bool

	desc TransformationDesc
}

var _ Portal = &rectPortal{}

// RectPortal is the reference Portal implementation with a mutable removed flag, as owned by entity code.
type RectPortal interface {
	Portal

	// MarkRemoved flags the portal as discarded by its owner. Presentation sweeps and group purges drop it.
	MarkRemoved()
}

// NewPortal creates a rectangular portal. Defaults: a 1x1 opening at the origin in the XY plane
// (facing +Z) leading to the same point in the same world with no rotation and scale 1.
// Panics if the axes are parallel or the size is not positive.
//
// Parameters:
//   - options: functional options to configure the portal
//
// Returns:
//   - RectPortal: the new portal
func NewPortal(options ...PortalBuilderOption) RectPortal {
	p := &rectPortal{
		id:          uuid.New(),
		axisW:       mgl64.Vec3{1, 0, 0},
		axisH:       mgl64.Vec3{0, 1, 0},
		width:       1,
		height:      1,
		scale:       1,
		originWorld: "overworld",
	}
	for _, opt := range options {
		opt(p)
	}
	if p.destWorld == "" {
		p.destWorld = p.originWorld
	}
	if p.width <= 0 || p.height <= 0 {
		panic(fmt.Sprintf("portal: NewPortal requires a positive size, got %vx%v", p.width, p.height))
	}
	if p.axisW.Cross(p.axisH).Len() < 1e-9 {
		panic("portal: NewPortal requires non-parallel axes")
	}
	p.axisW = p.axisW.Normalize()
	p.axisH = p.axisH.Normalize()
	p.desc = NewTransformationDesc(p.destWorld, p.origin, p.destination, p.rotation, p.scale)
	return p
}

func (p *rectPortal) ID() uuid.UUID            { return p.id }
func (p *rectPortal) Discriminator() uuid.UUID { return p.id }
func (p *rectPortal) Removed() bool            { return p.removed }
func (p *rectPortal) MarkRemoved()             { p.removed = true }
func (p *rectPortal) IsConventional() bool     { return true }
func (p *rectPortal) IsGlobal() bool           { return p.global }
func (p *rectPortal) OriginWorld() WorldID     { return p.originWorld }
func (p *rectPortal) DestWorld() WorldID       { return p.destWorld }
func (p *rectPortal) Scale() float64           { return p.scale }
func (p *rectPortal) Tag() string              { return p.tag }
func (p *rectPortal) OriginPos() mgl64.Vec3    { return p.origin }
func (p *rectPortal) DestPos() mgl64.Vec3      { return p.destination }

func (p *rectPortal) TransformationDesc() TransformationDesc {
	return p.desc
}

func (p *rectPortal) Rotation() (mgl64.Quat, bool) {
	if p.rotation == nil {
		return mgl64.QuatIdent(), false
	}
	return *p.rotation, true
}

// Normal is axisW x axisH.
func (p *rectPortal) Normal() mgl64.Vec3 {
	return p.axisW.Cross(p.axisH).Normalize()
}

// ContentDirection is the reversed normal carried to the destination side.
func (p *rectPortal) ContentDirection() mgl64.Vec3 {
	return p.TransformLocalVec(p.Normal().Mul(-1))
}

func (p *rectPortal) corners() [4]mgl64.Vec3 {
	w := p.axisW.Mul(p.width / 2)
	h := p.axisH.Mul(p.height / 2)
	return [4]mgl64.Vec3{
		p.origin.Sub(w).Sub(h),
		p.origin.Add(w).Sub(h),
		p.origin.Add(w).Add(h),
		p.origin.Sub(w).Add(h),
	}
}

func (p *rectPortal) ExactBoundingBox() common.Box {
	c := p.corners()
	box := common.NewBox(c[0], c[2])
	return box.Union(common.NewBox(c[1], c[3]))
}

func (p *rectPortal) ExactAreaBox() common.Box {
	return p.ExactBoundingBox()
}

func (p *rectPortal) TransformPoint(pos mgl64.Vec3) mgl64.Vec3 {
	return p.desc.TransformPoint(pos)
}

func (p *rectPortal) TransformLocalVec(v mgl64.Vec3) mgl64.Vec3 {
	return p.desc.TransformVec(v)
}

func (p *rectPortal) DestAreaRadiusEstimation() float64 {
	return math.Max(p.width, p.height) * p.scale
}

func (p *rectPortal) DistanceToNearestPoint(point mgl64.Vec3) float64 {
	return p.ExactBoundingBox().DistanceTo(point)
}

// IsRoughlyVisibleTo reports whether the camera is in front of the opening.
func (p *rectPortal) IsRoughlyVisibleTo(cameraPos mgl64.Vec3) bool {
	return cameraPos.Sub(p.origin).Dot(p.Normal()) > 0
}

func (p *rectPortal) IsParallelWith(other Portal) bool {
	if other == nil || other.ID() == p.id {
		return false
	}
	if other.OriginWorld() != p.originWorld || other.DestWorld() != p.destWorld {
		return false
	}
	n := p.Normal()
	if n.Dot(other.Normal()) > parallelDotThreshold {
		return false
	}
	return math.Abs(other.OriginPos().Sub(p.origin).Dot(n)) < coplanarEpsilon
}

// DoAdditionalRenderingCull is a no-op for a single opening.
func (p *rectPortal) DoAdditionalRenderingCull(units []RenderUnit) []RenderUnit {
	return units
}

// ViewAreaMesh emits two triangles covering the rectangle, centered on posInPlayerCoordinate.
func (p *rectPortal) ViewAreaMesh(posInPlayerCoordinate mgl64.Vec3, emit func(mgl64.Vec3)) {
	c := p.corners()
	for _, i := range [6]int{0, 1, 2, 2, 3, 0} {
		emit(posInPlayerCoordinate.Add(c[i].Sub(p.origin)))
	}
}

func (p *rectPortal) String() string {
	return fmt.Sprintf("Portal(%s)%s", p.id, p.tag)
}
