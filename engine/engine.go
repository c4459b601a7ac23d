package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// idleBackoff is how long the render loop waits after a frame could not begin, for example
// while the window is minimized.
const idleBackoff = 50 * time.Millisecond

type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates
	running         atomic.Bool
	wg              sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window    window.Window
	renderer  renderer.Renderer
	store     scene.Store
	camera    camera.Camera
	submitter *renderer.Submitter
	input     *inputState

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate   time.Duration
	renderFrameLimit atomic.Int64 // minimum frame duration in ns; 0 = uncapped

	// applied by the render goroutine, which owns the renderer
	pendingResize     atomic.Pointer[[2]int]
	pendingClearColor atomic.Pointer[common.Color]

	logger *slog.Logger
}

// Engine runs the viewer: the window message loop on the calling thread, a tick goroutine that
// updates the camera and a render goroutine that submits the store to the renderer every frame.
type Engine interface {
	// Window returns the engine's window.
	Window() window.Window

	// Renderer returns the engine's renderer.
	Renderer() renderer.Renderer

	// Store returns the entity store the engine draws.
	Store() scene.Store

	// Camera returns the active camera.
	Camera() camera.Camera

	// SetProfiling turns frame statistics logging on or off. Safe to call while running.
	SetProfiling(enabled bool)

	// SetTickRate sets the camera update rate. Non-positive values mean 60.
	//
	// Parameters:
	//   - fps: ticks per second
	SetTickRate(fps float64)

	// SetRenderFrameLimit caps the render frame rate. Non-positive values mean uncapped.
	// Safe to call while running.
	SetRenderFrameLimit(fps float64)

	// SetClearColor changes the background from the next frame on. Safe to call while running.
	SetClearColor(c common.Color)

	// Run registers the viewer pipelines, starts the tick and render goroutines and runs the
	// window message loop until the window closes or Quit is called. GPU resources are released
	// before it returns. It must be called on the thread that created the window.
	//
	// Returns:
	//   - error: an error if the pipelines or the camera bind group could not be created
	Run() error

	// Quit stops the engine. It is idempotent and safe to call from any goroutine.
	Quit()

	// Done is closed once the engine starts shutting down.
	Done() <-chan struct{}
}

var _ Engine = &engine{}

// NewEngine creates an engine. WithWindow, WithRenderer and WithStore are required; NewEngine
// panics without them.
//
// Parameters:
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		engineTickRate:  time.Second / 60,
		logger:          common.Logger(),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil || e.renderer == nil || e.store == nil {
		panic("engine: NewEngine requires WithWindow, WithRenderer and WithStore")
	}
	if e.camera == nil {
		viewport := camera.WithViewport(e.window.Width(), e.window.Height())
		if e.store.Dim() == geometry.Dim2 {
			e.camera = camera.NewOrthoCamera(viewport)
		} else {
			e.camera = camera.NewOrbitCamera(viewport)
		}
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	e.submitter = renderer.NewSubmitter(e.store, e.renderer, renderer.WithSubmitterLogger(e.logger))
	e.input = newInputState(e.camera, e.window)

	e.window.SetResizeCallback(func(width, height int) {
		e.pendingResize.Store(&[2]int{width, height})
	})
	e.input.bind(e.window)

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Store() scene.Store {
	return e.store
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Run() error {
	if err := e.setup(); err != nil {
		e.signalQuit()
		return err
	}

	e.running.Store(true)
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()

	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()
	e.running.Store(false)

	e.submitter.Release()
	e.camera.BindGroupProvider().Release()
	e.renderer.Release()
	return nil
}

// setup registers the pipelines for the store's dimensionality and creates the camera uniform.
func (e *engine) setup() error {
	pipelines := renderer.NewViewerPipelines(e.store.Dim())
	if err := e.renderer.RegisterPipelines(pipelines...); err != nil {
		return fmt.Errorf("register viewer pipelines: %w", err)
	}
	if err := e.renderer.InitBindGroup(e.camera.BindGroupProvider(), renderer.CameraLayout(pipelines)); err != nil {
		return fmt.Errorf("create camera bind group: %w", err)
	}
	if w, h := e.window.Width(), e.window.Height(); h > 0 {
		e.camera.SetAspect(float32(w) / float32(h))
	}
	return nil
}

func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		e.window.Stop()
	})
}

func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			e.camera.Update()
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("[Engine] render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		if err := e.renderFrame(); err != nil {
			e.logger.Debug("[Engine] frame skipped", "error", err)
			time.Sleep(idleBackoff)
			continue
		}

		if limit := time.Duration(e.renderFrameLimit.Load()); limit > 0 {
			if remaining := limit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderFrame applies pending window changes, uploads the camera and draws the store once.
func (e *engine) renderFrame() error {
	if size := e.pendingResize.Swap(nil); size != nil {
		if err := e.renderer.Resize(size[0], size[1]); err != nil {
			e.logger.Warn("[Engine] resize failed", "width", size[0], "height", size[1], "error", err)
		}
		if size[1] > 0 {
			e.camera.SetAspect(float32(size[0]) / float32(size[1]))
		}
	}
	if c := e.pendingClearColor.Swap(nil); c != nil {
		e.renderer.SetClearColor(*c)
	}

	e.renderer.WriteBuffers([]bind_group_provider.BufferWrite{e.camera.UniformWrite()})

	stats, err := e.submitter.Frame(e.camera.BindGroupProvider())
	if errors.Is(err, renderer.ErrFrameSkipped) {
		return err
	}
	if err != nil {
		e.logger.Warn("[Engine] draw rejected", "error", err)
	}
	if e.profilingEnabled.Load() {
		e.profiler.Tick(stats.Entities, stats.DrawCalls)
	}
	return nil
}

func (e *engine) SetProfiling(enabled bool) {
	e.profilingEnabled.Store(enabled)
}

func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)
	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit.Store(int64(frameInterval(fps)))
}

func (e *engine) SetClearColor(c common.Color) {
	e.pendingClearColor.Store(&c)
}
