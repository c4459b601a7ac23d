package camera

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// Sensitivity scales how far each input moves the camera.
type Sensitivity struct {
	OrbitStep float32 // radians per keyboard orbit step
	Mouse     float32 // radians of orbit per pixel dragged
	Zoom      float32 // fraction of the radius removed per scroll unit, in (0, 1)
	Pan       float32 // multiplier on pan distances
}

// DefaultSensitivity returns the sensitivity used when no WithSensitivity option is given.
func DefaultSensitivity() Sensitivity {
	return Sensitivity{OrbitStep: 0.03, Mouse: 0.005, Zoom: 0.1, Pan: 1}
}

// CameraControllerOption configures a controller in NewCameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithTarget sets the pivot the eye looks at.
func WithTarget(target common.Vec3) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = target
	}
}

// WithRadius sets the starting eye distance. It is clamped to the radius limits.
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.radius = radius
	}
}

// WithRadiusLimits bounds the distance reachable by Zoom and SetRadius.
//
// Parameters:
//   - minRadius: the closest allowed distance
//   - maxRadius: the farthest allowed distance
//
// Returns:
//   - CameraControllerOption: the option
func WithRadiusLimits(minRadius, maxRadius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minRadius = minRadius
		cc.maxRadius = maxRadius
	}
}

// WithAngles sets the starting azimuth around +Y and elevation above the XZ plane, both in
// radians.
func WithAngles(azimuth, elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.azimuth = azimuth
		cc.elevation = elevation
	}
}

// WithPanOnly disables orbiting, leaving pan and zoom. Used for 2D scenes.
func WithPanOnly() CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.orbitEnabled = false
	}
}

// WithSensitivity replaces DefaultSensitivity.
func WithSensitivity(s Sensitivity) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.sens = s
	}
}
