package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

// cameraControllerImpl keeps the eye on a sphere around target. Orbit methods change the
// spherical angles; pan methods translate eye and target together along the local axes.
type cameraControllerImpl struct {
	mu *sync.Mutex

	position common.Vec3
	target   common.Vec3

	radius    float32
	azimuth   float32 // around world Y, 0 looks down -Z
	elevation float32 // above the XZ plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitEnabled bool
	sens         Sensitivity
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller looking at the origin from +Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		radius:    5,
		azimuth:   0,
		elevation: 0,

		minRadius:    0.01,
		maxRadius:    10000,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,

		orbitEnabled: true,
		sens:         DefaultSensitivity(),
	}

	for _, option := range options {
		option(cc)
	}

	cc.radius = clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// updatePosition recomputes the eye from target and the spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)

	cc.position = cc.target.Add(common.V3(
		cc.radius*cosElev*sinAzim,
		cc.radius*sinElev,
		cc.radius*cosElev*cosAzim,
	))
}

// localAxes returns the right, up and forward axes matching common.LookAt with world up +Y.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up, forward common.Vec3) {
	back := cc.position.Sub(cc.target).Normalize()
	right = common.V3(0, 1, 0).Cross(back).Normalize()
	up = back.Cross(right)
	forward = back.Neg()
	return
}

func (cc *cameraControllerImpl) translate(offset common.Vec3) {
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func (cc *cameraControllerImpl) Position() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() common.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) SetTarget(target common.Vec3) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = clamp(cc.radius*math32.Pow(1-cc.sens.Zoom, delta), cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitEnabled() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.orbitEnabled
}

func (cc *cameraControllerImpl) orbit(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.orbitEnabled {
		return
	}
	cc.azimuth += dAzimuth
	cc.elevation = clamp(cc.elevation+dElevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) OrbitLeft()  { cc.orbit(-cc.sens.OrbitStep, 0) }
func (cc *cameraControllerImpl) OrbitRight() { cc.orbit(cc.sens.OrbitStep, 0) }
func (cc *cameraControllerImpl) OrbitUp()    { cc.orbit(0, cc.sens.OrbitStep) }
func (cc *cameraControllerImpl) OrbitDown()  { cc.orbit(0, -cc.sens.OrbitStep) }

func (cc *cameraControllerImpl) OrbitBy(dx, dy float32) {
	cc.orbit(-dx*cc.sens.Mouse, dy*cc.sens.Mouse)
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sens.Mouse
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sens.Zoom
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, _, _ := cc.localAxes()
	cc.translate(right.Scale(delta * cc.sens.Pan))
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, up, _ := cc.localAxes()
	cc.translate(up.Scale(delta * cc.sens.Pan))
}

func (cc *cameraControllerImpl) PanForward(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, _, forward := cc.localAxes()
	cc.translate(forward.Scale(delta * cc.sens.Pan))
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sens.Pan
}
