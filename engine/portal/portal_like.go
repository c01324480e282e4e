// Package portal defines the geometric surface shared by single portals and portal groups, a reference
// rectangular portal, and Group, which combines coplanar openings sharing one transform into one cullable unit.
package portal

import (
	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// WorldID identifies the world (dimension) a portal lives in or leads to.
type WorldID string

// RenderUnit is anything the renderer can cull by bounding volume, such as a built chunk section.
type RenderUnit interface {
	// BoundingBox returns the world-space bounds of the unit.
	BoundingBox() common.Box
}

// PortalLike is the capability surface the renderer and visibility code use for both a single Portal and a Group.
// Callers treat a Group exactly like one portal.
type PortalLike interface {
	// Discriminator returns the identity used to key per-portal presentation state.
	Discriminator() uuid.UUID

	// Removed reports whether the owner has discarded this portal. A Group reports removed once it has no members.
	Removed() bool

	// IsConventional reports whether this is a single ordinary portal rather than a composite.
	IsConventional() bool

	// IsGlobal reports whether the portal is a world-spanning variant that must never be grouped.
	IsGlobal() bool

	// ExactAreaBox returns the world-space bounds of the portal opening(s).
	ExactAreaBox() common.Box

	// TransformPoint maps a point on the origin side to the destination side.
	TransformPoint(pos mgl64.Vec3) mgl64.Vec3

	// TransformLocalVec maps a direction/offset vector, ignoring translation.
	TransformLocalVec(v mgl64.Vec3) mgl64.Vec3

	// OriginPos returns the representative point of the opening on the origin side.
	OriginPos() mgl64.Vec3

	// DestPos returns OriginPos transformed to the destination side.
	DestPos() mgl64.Vec3

	// DestAreaRadiusEstimation returns a conservative size of the destination view area for coarse visibility heuristics.
	DestAreaRadiusEstimation() float64

	// DistanceToNearestPoint returns the distance from point to the nearest part of the opening.
	DistanceToNearestPoint(point mgl64.Vec3) float64

	// OriginWorld returns the world the opening is placed in.
	OriginWorld() WorldID

	// DestWorld returns the world the opening shows.
	DestWorld() WorldID

	// Rotation returns the transform rotation and whether the transform rotates at all.
	Rotation() (mgl64.Quat, bool)

	// Scale returns the uniform scale factor of the transform.
	Scale() float64

	// IsRoughlyVisibleTo is a cheap pre-test of whether the opening could face the camera.
	IsRoughlyVisibleTo(cameraPos mgl64.Vec3) bool

	// IsParallelWith reports whether the opening shares a plane with p and faces the opposite way.
	IsParallelWith(p Portal) bool

	// DoAdditionalRenderingCull drops render units that cannot be seen through the opening and returns the survivors.
	// The input slice may be filtered in place.
	DoAdditionalRenderingCull(units []RenderUnit) []RenderUnit

	// ViewAreaMesh emits triangle vertices covering the opening, positioned relative to posInPlayerCoordinate.
	ViewAreaMesh(posInPlayerCoordinate mgl64.Vec3, emit func(mgl64.Vec3))
}

// Portal is a single navigable opening. Its owner (entity sync, world management) lives outside this module;
// the renderer only reads it.
type Portal interface {
	PortalLike

	// ID returns the entity identity. Two Portal values are the same portal iff their IDs are equal.
	ID() uuid.UUID

	// ExactBoundingBox returns the bounds of this single opening.
	ExactBoundingBox() common.Box

	// Normal returns the unit normal of the opening's front face.
	Normal() mgl64.Vec3

	// ContentDirection returns the direction the destination content faces, in destination space.
	ContentDirection() mgl64.Vec3

	// TransformationDesc returns the transform descriptor used to group portals.
	TransformationDesc() TransformationDesc

	// Tag returns a free-form label for diagnostics.
	Tag() string
}
