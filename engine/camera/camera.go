package camera

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/chewxy/math32"
)

// worldUp is +Y for both projections.
var worldUp = common.V3(0, 1, 0)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

type cameraImpl struct {
	mu *sync.Mutex

	orthographic bool

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
	lightDirection       common.Vec3

	controller        CameraController
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera turns its controller's eye and target into the view-projection matrix and light
// direction uploaded to the camera uniform. A perspective camera orbits; an orthographic
// camera looks down -Z and only pans and zooms.
type Camera interface {
	// Orthographic reports whether the camera uses an orthographic projection.
	Orthographic() bool

	// Fov returns the vertical field of view in radians. Unused by orthographic cameras.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance. Orthographic cameras add it to the radius.
	Far() float32

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix as 16 floats (column-major).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// LightDirection returns the normalized direction the headlight travels in world space.
	// It follows the camera, coming from over the viewer's upper left shoulder.
	LightDirection() common.Vec3

	// Controller returns the attached CameraController.
	Controller() CameraController

	// BindGroupProvider returns the provider that owns the camera's uniform buffer.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Update reads position and target from the controller and recomputes the matrices.
	// Called once per tick.
	Update()

	// SetAspect sets the aspect ratio and recomputes the matrices. Non-positive or non-finite
	// values are ignored, which covers minimized windows.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Drag applies a primary-button mouse drag: orbit for perspective cameras, pan otherwise.
	//
	// Parameters:
	//   - dx, dy: mouse movement in pixels, y positive downwards
	//   - viewportHeight: framebuffer height in pixels
	Drag(dx, dy float32, viewportHeight int)

	// Pan moves the camera so the scene follows the mouse by dx, dy pixels at the target's depth.
	//
	// Parameters:
	//   - dx, dy: mouse movement in pixels, y positive downwards
	//   - viewportHeight: framebuffer height in pixels
	Pan(dx, dy float32, viewportHeight int)

	// Uniform returns the 80-byte camera uniform for the current matrices.
	//
	// Returns:
	//   - []byte: the serialized GPUCameraUniform
	Uniform() []byte

	// UniformWrite returns the buffer write that uploads Uniform to binding 0 of BindGroupProvider.
	UniformWrite() bind_group_provider.BufferWrite
}

var _ Camera = &cameraImpl{}

// NewOrbitCamera creates a perspective camera for 3D scenes. Without WithController it orbits
// the origin from 5 units away, raised 30 degrees and turned 45 degrees.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewOrbitCamera(options ...CameraBuilderOption) Camera {
	return newCamera(false, func() CameraController {
		return NewCameraController(WithAngles(math32.Pi/4, math32.Pi/6))
	}, options...)
}

// NewOrthoCamera creates an orthographic camera for 2D scenes. The controller's radius is the
// half-height of the visible area, and orbiting is disabled.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewOrthoCamera(options ...CameraBuilderOption) Camera {
	return newCamera(true, func() CameraController {
		return NewCameraController(WithPanOnly())
	}, options...)
}

func newCamera(orthographic bool, defaultController func() CameraController, options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:           &sync.Mutex{},
		orthographic: orthographic,
		fov:          45 * math32.Pi / 180,
		aspect:       1,
		near:         0.01,
		far:          1000,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraCount.Add(1), 10),
		),
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = defaultController()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Orthographic() bool {
	return c.orthographic
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) LightDirection() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lightDirection
}

func (c *cameraImpl) Controller() CameraController {
	return c.controller
}

func (c *cameraImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return c.bindGroupProvider
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if !(aspect > 0) || math32.IsInf(aspect, 0) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Drag(dx, dy float32, viewportHeight int) {
	if c.orthographic || !c.controller.OrbitEnabled() {
		c.Pan(dx, dy, viewportHeight)
		return
	}
	c.controller.OrbitBy(dx, dy)
}

func (c *cameraImpl) Pan(dx, dy float32, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	perPixel := c.visibleHalfHeight() * 2 / float32(viewportHeight)
	c.controller.PanRight(-dx * perPixel)
	c.controller.PanUp(dy * perPixel)
}

// visibleHalfHeight is half the world-space height visible at the target's depth.
func (c *cameraImpl) visibleHalfHeight() float32 {
	radius := c.controller.Radius()
	if c.orthographic {
		return radius
	}
	c.mu.Lock()
	fov := c.fov
	c.mu.Unlock()
	return radius * math32.Tan(fov/2)
}

func (c *cameraImpl) Uniform() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := GPUCameraUniform{
		ViewProj: c.viewProjectionMatrix,
		LightDir: [4]float32{c.lightDirection.X, c.lightDirection.Y, c.lightDirection.Z, 0},
	}
	return u.Marshal()
}

func (c *cameraImpl) UniformWrite() bind_group_provider.BufferWrite {
	return bind_group_provider.UniformWrite(c.bindGroupProvider, 0, c.Uniform())
}

// updateMatrices recalculates the view, projection and view-projection matrices and the light
// direction. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	eye := c.controller.Position()
	target := c.controller.Target()

	common.LookAt(c.viewMatrix[:], eye, target, worldUp)

	if c.orthographic {
		halfH := c.controller.Radius()
		halfW := halfH * c.aspect
		common.Ortho(c.projectionMatrix[:], -halfW, halfW, -halfH, halfH, c.near, halfH+c.far)
	} else {
		common.Perspective(c.projectionMatrix[:], c.fov, c.aspect, c.near, c.far)
	}

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])

	// Rows of the view matrix are the camera's right, up and back axes.
	right := common.V3(c.viewMatrix[0], c.viewMatrix[4], c.viewMatrix[8])
	up := common.V3(c.viewMatrix[1], c.viewMatrix[5], c.viewMatrix[9])
	back := common.V3(c.viewMatrix[2], c.viewMatrix[6], c.viewMatrix[10])
	c.lightDirection = back.Neg().Add(up.Scale(-0.5)).Add(right.Scale(0.3)).Normalize()
}
