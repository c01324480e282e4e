package portal

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// PortalBuilderOption is a functional option for configuring a rectangular portal.
// Use the With* functions to create options.
type PortalBuilderOption func(p *rectPortal)

// WithID sets the portal identity instead of generating a random one.
//
// Parameters:
//   - id: the entity identity
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithID(id uuid.UUID) PortalBuilderOption {
	return func(p *rectPortal) {
		p.id = id
	}
}

// WithTag sets the diagnostic label.
//
// Parameters:
//   - tag: free-form label
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithTag(tag string) PortalBuilderOption {
	return func(p *rectPortal) {
		p.tag = tag
	}
}

// WithOrigin sets the center of the opening on the origin side.
//
// Parameters:
//   - origin: world-space center
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithOrigin(origin mgl64.Vec3) PortalBuilderOption {
	return func(p *rectPortal) {
		p.origin = origin
	}
}

// WithAxes sets the two in-plane axes. The normal is axisW x axisH.
//
// Parameters:
//   - axisW: width axis
//   - axisH: height axis
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithAxes(axisW, axisH mgl64.Vec3) PortalBuilderOption {
	return func(p *rectPortal) {
		p.axisW = axisW
		p.axisH = axisH
	}
}

// WithSize sets the extent of the opening along axisW and axisH.
//
// Parameters:
//   - width: extent along axisW
//   - height: extent along axisH
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithSize(width, height float64) PortalBuilderOption {
	return func(p *rectPortal) {
		p.width = width
		p.height = height
	}
}

// WithDestination sets where the origin point lands on the destination side.
//
// Parameters:
//   - dest: destination-space position of the origin
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithDestination(dest mgl64.Vec3) PortalBuilderOption {
	return func(p *rectPortal) {
		p.destination = dest
	}
}

// WithRotation sets the rotation applied when crossing the portal.
//
// Parameters:
//   - rotation: the rotation quaternion
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithRotation(rotation mgl64.Quat) PortalBuilderOption {
	return func(p *rectPortal) {
		r := rotation
		p.rotation = &r
	}
}

// WithScale sets the uniform scale applied when crossing the portal.
//
// Parameters:
//   - scale: scale factor (must be positive)
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithScale(scale float64) PortalBuilderOption {
	return func(p *rectPortal) {
		if scale > 0 {
			p.scale = scale
		}
	}
}

// WithWorlds sets the origin and destination worlds.
//
// Parameters:
//   - origin: world the portal stands in
//   - dest: world the portal shows
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithWorlds(origin, dest WorldID) PortalBuilderOption {
	return func(p *rectPortal) {
		p.originWorld = origin
		p.destWorld = dest
	}
}

// WithGlobal marks the portal as a world-spanning variant, which groups refuse.
//
// Parameters:
//   - global: whether the portal is global
//
// Returns:
//   - PortalBuilderOption: option function to apply
func WithGlobal(global bool) PortalBuilderOption {
	return func(p *rectPortal) {
		p.global = global
	}
}
