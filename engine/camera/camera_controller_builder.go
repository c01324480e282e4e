package camera

import "github.com/go-gl/mathgl/mgl64"

// CameraControllerOption is a functional option for configuring an orbit controller.
type CameraControllerOption func(*orbitController)

// WithRadius sets the initial orbit radius (distance from target).
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - CameraControllerOption: functional option to set the radius
func WithRadius(radius float64) CameraControllerOption {
	return func(cc *orbitController) {
		cc.radius = radius
	}
}

// WithRadiusBounds sets the range SetRadius clamps to.
//
// Parameters:
//   - minRadius: closest allowed distance
//   - maxRadius: farthest allowed distance
//
// Returns:
//   - CameraControllerOption: functional option to set the bounds
func WithRadiusBounds(minRadius, maxRadius float64) CameraControllerOption {
	return func(cc *orbitController) {
		if minRadius > 0 && maxRadius >= minRadius {
			cc.minRadius = minRadius
			cc.maxRadius = maxRadius
		}
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
//
// Parameters:
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//
// Returns:
//   - CameraControllerOption: functional option to set the azimuth
func WithAzimuth(azimuth float64) CameraControllerOption {
	return func(cc *orbitController) {
		cc.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraControllerOption: functional option to set the elevation
func WithElevation(elevation float64) CameraControllerOption {
	return func(cc *orbitController) {
		cc.elevation = elevation
	}
}

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - target: world-space pivot
//
// Returns:
//   - CameraControllerOption: functional option to set the target position
func WithTarget(target mgl64.Vec3) CameraControllerOption {
	return func(cc *orbitController) {
		cc.target = target
	}
}
