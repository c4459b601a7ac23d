package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// pollInterval bounds how long poll sleeps when no events arrive, in seconds.
const pollInterval = 1.0 / 120

var glfwButtons = map[glfw.MouseButton]MouseButton{
	glfw.MouseButtonLeft:   MouseButtonLeft,
	glfw.MouseButtonRight:  MouseButtonRight,
	glfw.MouseButtonMiddle: MouseButtonMiddle,
}

type glfwPlatform struct {
	win *glfw.Window
}

var _ platform = &glfwPlatform{}

// openGLFW creates a GLFW window without a GL context and routes its events to w's
// callbacks. The calling goroutine is locked to its OS thread.
func openGLFW(w *engineWindow) (*glfwPlatform, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.requestedWidth, w.requestedHeight, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(sizeLimit(w.minWidth), sizeLimit(w.minHeight), glfw.DontCare, glfw.DontCare)

	p := &glfwPlatform{win: win}
	p.route(w)
	w.setFramebufferSize(win.GetFramebufferSize())
	return p, nil
}

// route installs the GLFW callbacks. Escape closes the window instead of reaching onKeyDown.
func (p *glfwPlatform) route(w *engineWindow) {
	p.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch {
		case key == glfw.KeyEscape && action == glfw.Press:
			p.win.SetShouldClose(true)
		case action == glfw.Release && w.onKeyUp != nil:
			w.onKeyUp(uint32(key))
		case action != glfw.Release && w.onKeyDown != nil:
			w.onKeyDown(uint32(key))
		}
	})

	p.win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	p.win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b, ok := glfwButtons[button]
		if !ok || w.onMouseButton == nil || action == glfw.Repeat {
			return
		}
		x, y := p.win.GetCursorPos()
		w.onMouseButton(b, action == glfw.Press, float32(x), float32(y))
	})

	p.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(float32(x), float32(y))
		}
	})

	// The surface is sized in framebuffer pixels, which differ from screen coordinates on
	// high-DPI displays.
	p.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.setFramebufferSize(width, height)
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
}

func (p *glfwPlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(p.win)
}

func (p *glfwPlatform) closeRequested() bool {
	return p.win.ShouldClose()
}

func (p *glfwPlatform) poll() {
	glfw.WaitEventsTimeout(pollInterval)
}

// wake may be called from any goroutine.
func (p *glfwPlatform) wake() {
	glfw.PostEmptyEvent()
}

func (p *glfwPlatform) destroy() {
	p.win.Destroy()
	glfw.Terminate()
}

func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}
