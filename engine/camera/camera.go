// Package camera provides a perspective camera whose matrices and frustum feed portal visibility decisions,
// and which can be carried through a portal to view the destination side.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-portal/common"
	"github.com/Carmen-Shannon/oxy-portal/engine/portal"
	"github.com/go-gl/mathgl/mgl64"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl64.Vec3

	fov    float64
	aspect float64
	near   float64
	far    float64

	viewMatrix           mgl64.Mat4
	projectionMatrix     mgl64.Mat4
	viewProjectionMatrix mgl64.Mat4
	frustum              common.Frustum

	controller CameraController
}

// Camera holds perspective settings and computes view/projection matrices and the view frustum from an
// attached CameraController each frame via Update().
type Camera interface {
	// Up returns the camera's up vector.
	Up() mgl64.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float64

	// Aspect returns the aspect ratio (width / height).
	Aspect() float64

	// Near returns the near clipping plane distance.
	Near() float64

	// Far returns the far clipping plane distance.
	Far() float64

	// Position returns the controller's position, or the origin without a controller.
	Position() mgl64.Vec3

	// ViewMatrix returns the current view matrix.
	ViewMatrix() mgl64.Mat4

	// ProjectionMatrix returns the current projection matrix.
	ProjectionMatrix() mgl64.Mat4

	// ViewProjectionMatrix returns the current combined view-projection matrix.
	ViewProjectionMatrix() mgl64.Mat4

	// Frustum returns a copy of the view frustum extracted from the view-projection matrix.
	//
	// Returns:
	//   - *common.Frustum: the frustum, owned by the caller
	Frustum() *common.Frustum

	// Controller returns the attached CameraController, or nil.
	Controller() CameraController

	// Update reads position/target from the controller and recomputes matrices.
	// Should be called once per frame. Does nothing without a controller.
	Update()

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float64)

	// SetController attaches a CameraController to the camera and recomputes matrices.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// ThroughPortal returns a camera placed where this one appears on the destination side of p.
	// Position, target and up are carried through the portal transform and the clip planes are scaled with it.
	// Returns nil without a controller.
	//
	// Parameters:
	//   - p: the portal or group being looked through
	//
	// Returns:
	//   - Camera: the destination-side camera
	ThroughPortal(p portal.PortalLike) Camera
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings. A controller must be attached via
// SetController or WithController before the matrices are meaningful.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:                   &sync.Mutex{},
		up:                   mgl64.Vec3{0, 1, 0},
		fov:                  60 * (math.Pi / 180),
		aspect:               16.0 / 9.0,
		near:                 0.1,
		far:                  500,
		viewMatrix:           mgl64.Ident4(),
		projectionMatrix:     mgl64.Ident4(),
		viewProjectionMatrix: mgl64.Ident4(),
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Up() mgl64.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() mgl64.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return mgl64.Vec3{}
	}
	return c.controller.Position()
}

func (c *cameraImpl) ViewMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() *common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.frustum
	return &f
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect > 0 {
		c.aspect = aspect
	}
	c.updateMatrices()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
	c.updateMatrices()
}

func (c *cameraImpl) ThroughPortal(p portal.PortalLike) Camera {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controller == nil {
		return nil
	}

	scale := p.Scale()
	out := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     p.TransformLocalVec(c.up).Normalize(),
		fov:    c.fov,
		aspect: c.aspect,
		near:   c.near * scale,
		far:    c.far * scale,
		controller: &fixedController{
			position: p.TransformPoint(c.controller.Position()),
			target:   p.TransformPoint(c.controller.Target()),
		},
	}
	out.updateMatrices()
	return out
}

// updateMatrices recalculates the view, projection and view-projection matrices and the frustum.
// It is a no-op when the controller is nil. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.controller == nil {
		return
	}

	c.viewMatrix = mgl64.LookAtV(c.controller.Position(), c.controller.Target(), c.up)
	c.projectionMatrix = mgl64.Perspective(c.fov, c.aspect, c.near, c.far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
	c.frustum = common.ExtractFrustumFromMatrix(c.viewProjectionMatrix)
}
