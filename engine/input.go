package engine

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// keyPanFraction is the share of the visible half-height one arrow key press pans a 2D view.
const keyPanFraction = 0.05

// inputState maps window input onto the camera:
//   - left drag orbits in 3D and pans in 2D; middle or right drag pans;
//   - scroll and +/- zoom;
//   - arrows orbit in 3D and pan in 2D; W/S dolly in 3D;
//   - R or Home restores the initial view.
type inputState struct {
	mu *sync.Mutex

	camera camera.Camera
	window window.Window

	dragging   bool
	dragButton window.MouseButton
	lastX      float32
	lastY      float32

	home cameraPose
}

type cameraPose struct {
	target    common.Vec3
	radius    float32
	azimuth   float32
	elevation float32
}

func newInputState(c camera.Camera, w window.Window) *inputState {
	ctrl := c.Controller()
	return &inputState{
		mu:     &sync.Mutex{},
		camera: c,
		window: w,
		home: cameraPose{
			target:    ctrl.Target(),
			radius:    ctrl.Radius(),
			azimuth:   ctrl.Azimuth(),
			elevation: ctrl.Elevation(),
		},
	}
}

// bind registers the input callbacks on the window.
func (in *inputState) bind(w window.Window) {
	w.SetScrollCallback(in.onScroll)
	w.SetMouseButtonCallback(in.onMouseButton)
	w.SetMouseMoveCallback(in.onMouseMove)
	w.SetKeyDownCallback(in.onKeyDown)
}

func (in *inputState) onScroll(delta float32) {
	in.camera.Controller().Zoom(delta)
}

func (in *inputState) onMouseButton(button window.MouseButton, pressed bool, x, y float32) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if pressed {
		if !in.dragging {
			in.dragging = true
			in.dragButton = button
			in.lastX, in.lastY = x, y
		}
		return
	}
	if in.dragging && button == in.dragButton {
		in.dragging = false
	}
}

func (in *inputState) onMouseMove(x, y float32) {
	in.mu.Lock()
	if !in.dragging {
		in.mu.Unlock()
		return
	}
	dx, dy := x-in.lastX, y-in.lastY
	in.lastX, in.lastY = x, y
	button := in.dragButton
	in.mu.Unlock()

	height := in.window.Height()
	if button == window.MouseButtonLeft {
		in.camera.Drag(dx, dy, height)
	} else {
		in.camera.Pan(dx, dy, height)
	}
}

func (in *inputState) onKeyDown(keyCode uint32) {
	ctrl := in.camera.Controller()
	orbit := ctrl.OrbitEnabled()
	step := ctrl.Radius() * keyPanFraction

	switch keyCode {
	case common.KeyLeft, common.KeyA:
		if orbit {
			ctrl.OrbitLeft()
		} else {
			ctrl.PanRight(-step)
		}
	case common.KeyRight, common.KeyD:
		if orbit {
			ctrl.OrbitRight()
		} else {
			ctrl.PanRight(step)
		}
	case common.KeyUp:
		if orbit {
			ctrl.OrbitUp()
		} else {
			ctrl.PanUp(step)
		}
	case common.KeyDown:
		if orbit {
			ctrl.OrbitDown()
		} else {
			ctrl.PanUp(-step)
		}
	case common.KeyW:
		if orbit {
			ctrl.PanForward(step)
		} else {
			ctrl.PanUp(step)
		}
	case common.KeyS:
		if orbit {
			ctrl.PanForward(-step)
		} else {
			ctrl.PanUp(-step)
		}
	case common.KeyQ, common.KeyPageDown:
		ctrl.PanUp(-step)
	case common.KeyE, common.KeyPageUp:
		ctrl.PanUp(step)
	case common.KeyEqual, common.KeyKPAdd:
		ctrl.Zoom(1)
	case common.KeyMinus, common.KeyKPSubtract:
		ctrl.Zoom(-1)
	case common.KeyR, common.KeyHome:
		in.reset()
	}
}

func (in *inputState) reset() {
	ctrl := in.camera.Controller()
	ctrl.SetTarget(in.home.target)
	ctrl.SetRadius(in.home.radius)
	ctrl.SetAzimuth(in.home.azimuth)
	ctrl.SetElevation(in.home.elevation)
}
