package camera

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// CameraController owns the camera's pivot and its spherical offset from that pivot.
// The camera reads Position and Target from it on every Update.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the world-space eye position.
	//
	// Returns:
	//   - common.Vec3: the eye position
	Position() common.Vec3

	// Target returns the point the camera looks at and orbits around.
	//
	// Returns:
	//   - common.Vec3: the pivot
	Target() common.Vec3

	// SetTarget moves the pivot. The spherical offset is kept, so the eye moves with it.
	//
	// Parameters:
	//   - target: the new pivot
	SetTarget(target common.Vec3)

	// Zoom scales the distance to the target. Positive deltas move closer. Each unit of delta
	// scales the radius by (1 - ZoomSpeed), clamped to the radius limits.
	//
	// Parameters:
	//   - delta: the scroll amount
	Zoom(delta float32)

	// Radius returns the distance from the target.
	Radius() float32

	// SetRadius sets the distance from the target, clamped to the radius limits.
	//
	// Parameters:
	//   - radius: the new distance
	SetRadius(radius float32)
}

type orbitCameraController interface {
	// OrbitEnabled reports whether the orbit methods move the camera. The 2D camera disables them.
	OrbitEnabled() bool

	OrbitLeft()
	OrbitRight()
	OrbitUp()
	OrbitDown()

	// OrbitBy rotates by mouse movement in pixels, scaled by MouseSensitivity.
	//
	// Parameters:
	//   - dx: horizontal movement, positive to the right
	//   - dy: vertical movement, positive downwards
	OrbitBy(dx, dy float32)

	Azimuth() float32
	SetAzimuth(azimuth float32)
	Elevation() float32
	SetElevation(elevation float32)

	MouseSensitivity() float32
	ZoomSpeed() float32
}

type planarCameraController interface {
	// PanRight translates target and eye along the camera's right axis.
	//
	// Parameters:
	//   - delta: distance in world units, before PanSpeed scaling
	PanRight(delta float32)

	// PanUp translates target and eye along the camera's up axis.
	//
	// Parameters:
	//   - delta: distance in world units, before PanSpeed scaling
	PanUp(delta float32)

	// PanForward translates target and eye along the view direction.
	//
	// Parameters:
	//   - delta: distance in world units, before PanSpeed scaling
	PanForward(delta float32)

	PanSpeed() float32
}
