package portal

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/logging"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// enclosureFacings is the number of distinct axis facings a group needs to seal its destination area.
const enclosureFacings = 6

// groupLogger is shared by every Group so that a misbehaving grouping policy cannot flood the log.
var groupLogger = logging.NewLimitedLogger(20)

// Group is a set of portals sharing one transformation, rendered and culled as a single portal.
// Derived geometry is cached and invalidated together whenever membership changes.
// Not safe for concurrent use.
type Group struct {
	desc    TransformationDesc
	world   WorldID
	portals []Portal
	id      uuid.UUID
	logger  *logging.LimitedLogger

	exactAreaBox     common.Cached[common.Box]
	origin           common.Cached[mgl64.Vec3]
	dest             common.Cached[mgl64.Vec3]
	enclosedDestArea common.Cached[common.Box]
}

var _ PortalLike = &Group{}

// NewGroup creates an empty group for portals with the given transformation.
//
// Parameters:
//   - desc: the transformation every member shares
//   - options: functional options to configure the group
//
// Returns:
//   - *Group: the new group
func NewGroup(desc TransformationDesc, options ...GroupBuilderOption) *Group {
	g := &Group{
		desc:   desc,
		id:     uuid.New(),
		logger: groupLogger,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// AddPortal appends p to the group. Duplicates, global portals, portals from another world and portals whose
// transformation differs from the group's are rejected with a rate-limited error log.
//
// Parameters:
//   - p: the portal to add
//
// Returns:
//   - bool: true if p was added
func (g *Group) AddPortal(p Portal) bool {
	switch {
	case p.IsGlobal():
		g.logger.Error("refusing to group a global portal", "group", g.String(), "portal", p.ID())
		return false
	case g.world != "" && p.OriginWorld() != g.world:
		g.logger.Error("refusing to group a portal from another world",
			"group", g.String(), "portal", p.ID(), "world", p.OriginWorld(), "group_world", g.world)
		return false
	case !p.TransformationDesc().Equals(g.desc):
		g.logger.Error("refusing to group a portal with a different transformation",
			"group", g.String(), "portal", p.ID(), "desc", p.TransformationDesc().String())
		return false
	case g.indexOf(p) >= 0:
		g.logger.Error("adding duplicate portal into group", "group", g.String(), "portal", p.ID())
		return false
	}

	if g.world == "" {
		g.world = p.OriginWorld()
	}
	g.portals = append(g.portals, p)
	g.invalidate()
	return true
}

// RemovePortal removes p if it is a member.
//
// Parameters:
//   - p: the portal to remove
//
// Returns:
//   - bool: true if p was a member
func (g *Group) RemovePortal(p Portal) bool {
	i := g.indexOf(p)
	if i < 0 {
		return false
	}
	g.portals = slices.Delete(g.portals, i, i+1)
	g.invalidate()
	return true
}

// Purge drops every member whose owner has removed it.
//
// Returns:
//   - int: number of members dropped
func (g *Group) Purge() int {
	before := len(g.portals)
	g.portals = slices.DeleteFunc(g.portals, func(p Portal) bool {
		return p.Removed()
	})
	removed := before - len(g.portals)
	if removed > 0 {
		g.invalidate()
	}
	return removed
}

// Portals returns a copy of the members in insertion order.
func (g *Group) Portals() []Portal {
	return slices.Clone(g.portals)
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.portals)
}

// TransformationDesc returns the transformation shared by all members.
func (g *Group) TransformationDesc() TransformationDesc {
	return g.desc
}

func (g *Group) indexOf(p Portal) int {
	return slices.IndexFunc(g.portals, func(m Portal) bool {
		return m.ID() == p.ID()
	})
}

func (g *Group) invalidate() {
	g.exactAreaBox.Reset()
	g.origin.Reset()
	g.dest.Reset()
	g.enclosedDestArea.Reset()
}

// representative returns the first member. Transform queries delegate to it because every member shares
// the group's transformation.
func (g *Group) representative(op string) Portal {
	if len(g.portals) == 0 {
		panic(fmt.Sprintf("portal: %s on empty group %s", op, g.id))
	}
	return g.portals[0]
}

// EnclosedDestAreaBox returns the destination-side region sealed by the group, if any.
// A group seals its destination when it has at least six members whose content directions cover all six
// axis facings with no facing repeated. This is a facing count only: gaps or overlaps between members are
// not checked.
// The result, present or absent, is cached until membership changes.
//
// Returns:
//   - common.Box: the exact area box transformed to the destination side
//   - bool: true if the group encloses its destination
func (g *Group) EnclosedDestAreaBox() (common.Box, bool) {
	if !g.enclosedDestArea.Computed() {
		g.computeEnclosedDestArea()
	}
	return g.enclosedDestArea.Get()
}

func (g *Group) computeEnclosedDestArea() {
	if len(g.portals) < enclosureFacings {
		g.enclosedDestArea.SetAbsent()
		return
	}

	var seen [enclosureFacings]bool
	for _, p := range g.portals {
		d := common.DirectionFromVector(p.ContentDirection())
		if seen[d] {
			g.enclosedDestArea.SetAbsent()
			return
		}
		seen[d] = true
	}

	rep := g.representative("EnclosedDestAreaBox")
	g.enclosedDestArea.SetPresent(g.ExactAreaBox().Transform(rep.TransformPoint))
}

// ExactAreaBox returns the union of every member's bounding box. Panics on an empty group.
func (g *Group) ExactAreaBox() common.Box {
	if box, ok := g.exactAreaBox.Get(); ok {
		return box
	}
	box := g.representative("ExactAreaBox").ExactBoundingBox()
	for _, p := range g.portals[1:] {
		box = box.Union(p.ExactBoundingBox())
	}
	g.exactAreaBox.SetPresent(box)
	return box
}

func (g *Group) TransformPoint(pos mgl64.Vec3) mgl64.Vec3 {
	return g.representative("TransformPoint").TransformPoint(pos)
}

func (g *Group) TransformLocalVec(v mgl64.Vec3) mgl64.Vec3 {
	return g.representative("TransformLocalVec").TransformLocalVec(v)
}

// OriginPos returns the center of the exact area box.
func (g *Group) OriginPos() mgl64.Vec3 {
	if origin, ok := g.origin.Get(); ok {
		return origin
	}
	origin := g.ExactAreaBox().Center()
	g.origin.SetPresent(origin)
	return origin
}

// DestPos returns OriginPos carried through the shared transformation.
func (g *Group) DestPos() mgl64.Vec3 {
	if dest, ok := g.dest.Get(); ok {
		return dest
	}
	dest := g.TransformPoint(g.OriginPos())
	g.dest.SetPresent(dest)
	return dest
}

// DestAreaRadiusEstimation returns the largest extent of the exact area box times the scale.
func (g *Group) DestAreaRadiusEstimation() float64 {
	return g.ExactAreaBox().MaxDimension() * g.desc.Scale
}

func (g *Group) DistanceToNearestPoint(point mgl64.Vec3) float64 {
	return g.ExactAreaBox().DistanceTo(point)
}

// DoAdditionalRenderingCull keeps only units intersecting the enclosed destination box, filtering in place.
// Nothing outside a sealed region can be seen through all faces at once. Without an enclosed box the input
// is returned untouched.
//
// Parameters:
//   - units: candidate render units on the destination side
//
// Returns:
//   - []RenderUnit: the surviving units (sharing the input's backing array)
func (g *Group) DoAdditionalRenderingCull(units []RenderUnit) []RenderUnit {
	enclosed, ok := g.EnclosedDestAreaBox()
	if !ok {
		return units
	}
	return slices.DeleteFunc(units, func(u RenderUnit) bool {
		return !u.BoundingBox().Intersects(enclosed)
	})
}

// IsParallelWith reports whether any member is parallel with p.
func (g *Group) IsParallelWith(p Portal) bool {
	return slices.ContainsFunc(g.portals, func(m Portal) bool {
		return m.IsParallelWith(p)
	})
}

// ViewAreaMesh emits each member's mesh shifted by the member's offset from the group origin.
func (g *Group) ViewAreaMesh(posInPlayerCoordinate mgl64.Vec3, emit func(mgl64.Vec3)) {
	origin := g.OriginPos()
	for _, p := range g.portals {
		p.ViewAreaMesh(posInPlayerCoordinate.Add(p.OriginPos().Sub(origin)), emit)
	}
}

func (g *Group) Discriminator() uuid.UUID { return g.id }

// Removed reports whether the group has no members left.
func (g *Group) Removed() bool { return len(g.portals) == 0 }

func (g *Group) IsConventional() bool { return false }
func (g *Group) IsGlobal() bool       { return false }

// IsRoughlyVisibleTo always reports true; members face different ways so no single side test applies.
func (g *Group) IsRoughlyVisibleTo(mgl64.Vec3) bool { return true }

func (g *Group) OriginWorld() WorldID {
	return g.representative("OriginWorld").OriginWorld()
}

func (g *Group) DestWorld() WorldID {
	return g.representative("DestWorld").DestWorld()
}

func (g *Group) Rotation() (mgl64.Quat, bool) {
	if !g.desc.HasRotation {
		return mgl64.QuatIdent(), false
	}
	return g.desc.Rotation, true
}

func (g *Group) Scale() float64 {
	return g.desc.Scale
}

func (g *Group) String() string {
	if len(g.portals) == 0 {
		return "PortalGroup(0)"
	}
	return fmt.Sprintf("PortalGroup(%d)%s", len(g.portals), g.portals[0].Tag())
}
