package window

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
)

// MouseButton identifies a mouse button in button callbacks.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Window defines the interface for a platform window that owns the GPU surface and delivers
// input. NewWindow, ProcessMessages and Close must run on the same OS thread. Callbacks fire on
// that thread from inside ProcessMessages.
type Window interface {
	// SetUpdateCallback sets a function called after every pass of the message loop.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets a function called with the new framebuffer size in pixels.
	// A minimized window reports 0x0.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets a function called with the vertical scroll offset.
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets a function called on key press and repeat. Codes match common.Key*.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets a function called on key release.
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseButtonCallback sets a function called when a mouse button is pressed or released.
	//
	// Parameters:
	//   - callback: receives the button, whether it is now down, and the cursor position
	SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y float32))

	// SetMouseMoveCallback sets a function called with the cursor position in window coordinates.
	SetMouseMoveCallback(callback func(x, y float32))

	// SurfaceDescriptor returns the descriptor the renderer creates its surface from.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the surface descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open and Stop has not been called.
	IsRunning() bool

	// Stop asks ProcessMessages to return. It is safe to call from any goroutine.
	Stop()

	// Close destroys the window and terminates the platform library.
	//
	// Returns:
	//   - error: error if the window is not initialized
	Close() error

	// ProcessMessages runs the message loop until the window closes or Stop is called.
	ProcessMessages()

	// Width returns the framebuffer width in pixels. Safe to call from any goroutine.
	Width() int

	// Height returns the framebuffer height in pixels. Safe to call from any goroutine.
	Height() int
}

type engineWindow struct {
	title string

	requestedWidth  int
	requestedHeight int

	minWidth  int
	minHeight int

	// framebuffer size, written on the window thread and read by the render loop
	width  atomic.Int32
	height atomic.Int32

	stopped atomic.Bool

	// plat is nil until the platform window exists and again after Close.
	plat platform

	onUpdate      func()
	onResize      func(width, height int)
	onScroll      func(delta float32)
	onKeyDown     func(keyCode uint32)
	onKeyUp       func(keyCode uint32)
	onMouseButton func(button MouseButton, pressed bool, x, y float32)
	onMouseMove   func(x, y float32)
}

var _ Window = &engineWindow{}

// platform is the native window behind an engineWindow. Every method runs on the window
// thread except wake.
type platform interface {
	surfaceDescriptor() *wgpu.SurfaceDescriptor
	closeRequested() bool
	poll()
	wake()
	destroy()
}

// NewWindow creates and shows a platform window. It locks the calling goroutine to its OS thread.
//
// Parameters:
//   - options: functional options such as WithTitle and WithSize
//
// Returns:
//   - Window: the created window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:           "oxy-viewer",
		requestedWidth:  1280,
		requestedHeight: 720,
		minWidth:        320,
		minHeight:       240,
	}
	for _, opt := range options {
		opt(w)
	}
	plat, err := openGLFW(w)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	w.plat = plat
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseButtonCallback(callback func(button MouseButton, pressed bool, x, y float32)) {
	w.onMouseButton = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.plat == nil {
		return nil
	}
	return w.plat.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return !w.stopped.Load() && w.plat != nil && !w.plat.closeRequested()
}

func (w *engineWindow) Stop() {
	if w.stopped.CompareAndSwap(false, true) && w.plat != nil {
		w.plat.wake()
	}
}

func (w *engineWindow) Close() error {
	w.stopped.Store(true)
	if w.plat == nil {
		return errors.New("window is not initialized")
	}
	w.plat.destroy()
	w.plat = nil
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		w.plat.poll()

		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

func (w *engineWindow) Width() int {
	return int(w.width.Load())
}

func (w *engineWindow) Height() int {
	return int(w.height.Load())
}

func (w *engineWindow) setFramebufferSize(width, height int) {
	w.width.Store(int32(width))
	w.height.Store(int32(height))
}
