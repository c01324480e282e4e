package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// CameraController owns the positional state of a camera. The camera reads position and target from its
// controller and derives its matrices from them.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl64.Vec3: world-space camera position
	Position() mgl64.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl64.Vec3: world-space target position
	Target() mgl64.Vec3

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space pivot
	SetTarget(target mgl64.Vec3)

	// Orbit rotates the camera around its target.
	//
	// Parameters:
	//   - dAzimuth: change of the horizontal angle in radians
	//   - dElevation: change of the vertical angle in radians, clamped to the allowed range
	Orbit(dAzimuth, dElevation float64)

	// Radius returns the current orbit radius (distance from target).
	Radius() float64

	// SetRadius sets the orbit radius, clamped to the configured bounds.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float64)

	// Azimuth returns the horizontal angle around the Y axis in radians.
	Azimuth() float64

	// Elevation returns the vertical angle from the horizontal plane in radians.
	Elevation() float64
}

// orbitController is the spherical-coordinate CameraController.
type orbitController struct {
	mu *sync.Mutex

	position mgl64.Vec3
	target   mgl64.Vec3

	radius    float64
	azimuth   float64
	elevation float64

	minRadius    float64
	maxRadius    float64
	minElevation float64
	maxElevation float64
}

var _ CameraController = &orbitController{}

// NewOrbitController creates a controller circling its target.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewOrbitController(options ...CameraControllerOption) CameraController {
	cc := &orbitController{
		mu:           &sync.Mutex{},
		radius:       40,
		elevation:    math.Pi / 8,
		minRadius:    1,
		maxRadius:    2000,
		minElevation: -math.Pi/2 + 0.05,
		maxElevation: math.Pi/2 - 0.05,
	}
	for _, option := range options {
		option(cc)
	}
	cc.radius = mgl64.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mgl64.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the position from spherical coordinates. Caller must hold the mutex.
func (cc *orbitController) updatePosition() {
	cosElev, sinElev := math.Cos(cc.elevation), math.Sin(cc.elevation)
	cc.position = cc.target.Add(mgl64.Vec3{
		cc.radius * cosElev * math.Sin(cc.azimuth),
		cc.radius * sinElev,
		cc.radius * cosElev * math.Cos(cc.azimuth),
	})
}

func (cc *orbitController) Position() mgl64.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *orbitController) Target() mgl64.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *orbitController) SetTarget(target mgl64.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *orbitController) Orbit(dAzimuth, dElevation float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = math.Mod(cc.azimuth+dAzimuth, 2*math.Pi)
	cc.elevation = mgl64.Clamp(cc.elevation+dElevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *orbitController) Radius() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *orbitController) SetRadius(radius float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = mgl64.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *orbitController) Azimuth() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *orbitController) Elevation() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

// fixedController is a controller pinned to one position and target. Cameras carried through a portal use it.
type fixedController struct {
	position mgl64.Vec3
	target   mgl64.Vec3
}

var _ CameraController = &fixedController{}

func (f *fixedController) Position() mgl64.Vec3        { return f.position }
func (f *fixedController) Target() mgl64.Vec3          { return f.target }
func (f *fixedController) SetTarget(target mgl64.Vec3) { f.target = target }
func (f *fixedController) Orbit(float64, float64)      {}
func (f *fixedController) Radius() float64             { return f.position.Sub(f.target).Len() }
func (f *fixedController) SetRadius(float64)           {}
func (f *fixedController) Azimuth() float64            { return 0 }
func (f *fixedController) Elevation() float64          { return 0 }
