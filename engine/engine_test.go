package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	width, height atomic.Int32
	stop          chan struct{}
	stopOnce      sync.Once

	onResize      func(width, height int)
	onScroll      func(delta float32)
	onKeyDown     func(keyCode uint32)
	onMouseButton func(button window.MouseButton, pressed bool, x, y float32)
	onMouseMove   func(x, y float32)
}

func newFakeWindow(width, height int) *fakeWindow {
	w := &fakeWindow{stop: make(chan struct{})}
	w.width.Store(int32(width))
	w.height.Store(int32(height))
	return w
}

func (w *fakeWindow) SetUpdateCallback(func())                     {}
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))     { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32))   { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32))        {}
func (w *fakeWindow) SetMouseButtonCallback(cb func(button window.MouseButton, pressed bool, x, y float32)) {
	w.onMouseButton = cb
}
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y float32)) { w.onMouseMove = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) Close() error                               { return nil }
func (w *fakeWindow) Width() int                                 { return int(w.width.Load()) }
func (w *fakeWindow) Height() int                                { return int(w.height.Load()) }
func (w *fakeWindow) Stop()                                      { w.stopOnce.Do(func() { close(w.stop) }) }
func (w *fakeWindow) ProcessMessages()                           { <-w.stop }

func (w *fakeWindow) IsRunning() bool {
	select {
	case <-w.stop:
		return false
	default:
		return true
	}
}

func (w *fakeWindow) resize(width, height int) {
	w.width.Store(int32(width))
	w.height.Store(int32(height))
	w.onResize(width, height)
}

type rendererState struct {
	registered []string
	bindGroups []string
	writes     []bind_group_provider.BufferWrite
	resizes    [][2]int
	clearColor *common.Color
	draws      int
	presented  int
	released   bool
}

type fakeRenderer struct {
	mu sync.Mutex
	rendererState

	registerErr error
	panicOnDraw bool
}

var _ renderer.Renderer = &fakeRenderer{}

func (f *fakeRenderer) Pipeline(string) pipeline.Pipeline { return nil }

func (f *fakeRenderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	for _, p := range pipelines {
		f.registered = append(f.registered, p.PipelineKey())
	}
	return nil
}

func (f *fakeRenderer) Resize(width, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes = append(f.resizes, [2]int{width, height})
	return nil
}

func (f *fakeRenderer) SetVSync(bool) {}

func (f *fakeRenderer) SetClearColor(c common.Color) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearColor = &c
}

func (f *fakeRenderer) InitMeshBuffers(p bind_group_provider.BindGroupProvider, _, _ []byte, indexCount int) error {
	p.SetIndexCount(indexCount)
	return nil
}

func (f *fakeRenderer) InitBindGroup(p bind_group_provider.BindGroupProvider, desc wgpu.BindGroupLayoutDescriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindGroups = append(f.bindGroups, p.Label())
	return nil
}

func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, writes...)
}

func (f *fakeRenderer) BeginFrame() error { return nil }

func (f *fakeRenderer) DrawCall(string, bind_group_provider.BindGroupProvider, []bind_group_provider.BindGroupProvider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnDraw {
		panic("device lost")
	}
	f.draws++
	return nil
}

func (f *fakeRenderer) EndFrame() {}

func (f *fakeRenderer) Present() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presented++
}

func (f *fakeRenderer) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = true
}

func (f *fakeRenderer) snapshot() rendererState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.rendererState
	st.registered = append([]string(nil), f.registered...)
	st.bindGroups = append([]string(nil), f.bindGroups...)
	st.writes = append([]bind_group_provider.BufferWrite(nil), f.writes...)
	st.resizes = append([][2]int(nil), f.resizes...)
	return st
}

func runEngine(t *testing.T, e Engine) <-chan error {
	t.Helper()
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run() }()
	return errCh
}

func waitRun(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
		return nil
	}
}

func TestEngineDrawsStoreAndShutsDown(t *testing.T) {
	store := scene.NewStore(geometry.Dim2)
	_, err := store.Insert("alice", geometry.Circle{Radius: 1, NumSides: 6, CellType: common.CellTypeTriangle})
	require.NoError(t, err)

	fw := newFakeWindow(800, 600)
	fr := &fakeRenderer{}
	e := NewEngine(WithWindow(fw), WithRenderer(fr), WithStore(store), WithRenderFrameLimit(500))
	require.True(t, e.Camera().Orthographic())

	errCh := runEngine(t, e)
	require.Eventually(t, func() bool { return fr.snapshot().draws > 0 }, 5*time.Second, 5*time.Millisecond)

	e.SetClearColor(common.Black)
	require.Eventually(t, func() bool { return fr.snapshot().clearColor != nil }, 5*time.Second, 5*time.Millisecond)

	e.Quit()
	e.Quit()
	require.NoError(t, waitRun(t, errCh))

	snap := fr.snapshot()
	assert.Equal(t, []string{"line2d", "tri2d"}, snap.registered)
	assert.Equal(t, []string{e.Camera().BindGroupProvider().Label()}, snap.bindGroups)
	assert.Equal(t, common.Black, *snap.clearColor)
	assert.True(t, snap.released)
	assert.InDelta(t, 800.0/600.0, e.Camera().Aspect(), 1e-5)

	require.NotEmpty(t, snap.writes)
	assert.Equal(t, e.Camera().BindGroupProvider(), snap.writes[0].Provider)
	assert.Len(t, snap.writes[0].Data, 80)

	select {
	case <-e.Done():
	default:
		t.Fatal("Done is closed after Run returns")
	}
}

func TestEngineAppliesResizeOnRenderLoop(t *testing.T) {
	store := scene.NewStore(geometry.Dim3)
	fw := newFakeWindow(800, 600)
	fr := &fakeRenderer{}
	e := NewEngine(WithWindow(fw), WithRenderer(fr), WithStore(store), WithRenderFrameLimit(500))
	require.False(t, e.Camera().Orthographic())

	errCh := runEngine(t, e)
	require.Eventually(t, func() bool { return fr.snapshot().presented > 0 }, 5*time.Second, 5*time.Millisecond)

	fw.resize(0, 0)
	require.Eventually(t, func() bool { return len(fr.snapshot().resizes) == 1 }, 5*time.Second, 5*time.Millisecond)
	assert.InDelta(t, 800.0/600.0, e.Camera().Aspect(), 1e-5, "a minimized window keeps the aspect")

	fw.resize(1000, 500)
	require.Eventually(t, func() bool { return len(fr.snapshot().resizes) == 2 }, 5*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return e.Camera().Aspect() == 2 }, 5*time.Second, 5*time.Millisecond)

	e.Quit()
	require.NoError(t, waitRun(t, errCh))
	assert.Equal(t, [][2]int{{0, 0}, {1000, 500}}, fr.snapshot().resizes)
}

type countingCamera struct {
	camera.Camera
	updates atomic.Int64
}

func (c *countingCamera) Update() {
	c.updates.Add(1)
	c.Camera.Update()
}

func TestEngineTickUpdatesCamera(t *testing.T) {
	store := scene.NewStore(geometry.Dim3)
	fw := newFakeWindow(800, 600)
	cam := &countingCamera{Camera: camera.NewOrbitCamera()}
	e := NewEngine(WithWindow(fw), WithRenderer(&fakeRenderer{}), WithStore(store), WithCamera(cam), WithTickRate(200))

	errCh := runEngine(t, e)
	require.Eventually(t, func() bool { return cam.updates.Load() > 0 }, 5*time.Second, 5*time.Millisecond)

	e.SetTickRate(500)
	seen := cam.updates.Load()
	require.Eventually(t, func() bool { return cam.updates.Load() > seen+5 }, 5*time.Second, 5*time.Millisecond)

	e.Quit()
	require.NoError(t, waitRun(t, errCh))
}

func TestEngineSetupFailure(t *testing.T) {
	fr := &fakeRenderer{registerErr: errors.New("no adapter")}
	e := NewEngine(WithWindow(newFakeWindow(800, 600)), WithRenderer(fr), WithStore(scene.NewStore(geometry.Dim3)))

	err := e.Run()
	assert.ErrorContains(t, err, "register viewer pipelines")
	<-e.Done()
}

func TestEngineRecoversRenderPanic(t *testing.T) {
	store := scene.NewStore(geometry.Dim2)
	_, err := store.Insert("alice", geometry.Line2D{V1: common.V2(0, 0), V2: common.V2(1, 1)})
	require.NoError(t, err)

	fr := &fakeRenderer{panicOnDraw: true}
	e := NewEngine(WithWindow(newFakeWindow(800, 600)), WithRenderer(fr), WithStore(store))

	errCh := runEngine(t, e)
	require.NoError(t, waitRun(t, errCh), "the engine quits on its own after a render panic")
	assert.True(t, fr.snapshot().released)
}

func TestNewEngineRequiresDependencies(t *testing.T) {
	fw := newFakeWindow(1, 1)
	store := scene.NewStore(geometry.Dim2)
	assert.Panics(t, func() { NewEngine(WithRenderer(&fakeRenderer{}), WithStore(store)) })
	assert.Panics(t, func() { NewEngine(WithWindow(fw), WithStore(store)) })
	assert.Panics(t, func() { NewEngine(WithWindow(fw), WithRenderer(&fakeRenderer{})) })

	cam := camera.NewOrbitCamera()
	e := NewEngine(WithWindow(fw), WithRenderer(&fakeRenderer{}), WithStore(store), WithCamera(cam))
	assert.Same(t, cam, e.Camera())
}

func TestInput2D(t *testing.T) {
	fw := newFakeWindow(800, 200)
	e := NewEngine(WithWindow(fw), WithRenderer(&fakeRenderer{}), WithStore(scene.NewStore(geometry.Dim2)))
	ctrl := e.Camera().Controller()

	// 200px tall viewport showing 10 world units.
	fw.onMouseButton(window.MouseButtonLeft, true, 10, 10)
	fw.onMouseMove(110, 10)
	fw.onMouseButton(window.MouseButtonLeft, false, 110, 10)
	fw.onMouseMove(500, 500)
	assert.InDelta(t, -5, ctrl.Target().X, 1e-4)
	assert.InDelta(t, 0, ctrl.Target().Y, 1e-4)

	fw.onKeyDown(common.KeyLeft)
	assert.Equal(t, float32(0), ctrl.Azimuth(), "arrows pan instead of orbiting in 2D")
	assert.InDelta(t, -5.25, ctrl.Target().X, 1e-4)

	fw.onScroll(1)
	assert.InDelta(t, 4.5, ctrl.Radius(), 1e-4)

	fw.onKeyDown(common.KeyR)
	assert.Equal(t, common.Vec3{}, ctrl.Target())
	assert.InDelta(t, 5, ctrl.Radius(), 1e-4)
}

func TestInput3D(t *testing.T) {
	fw := newFakeWindow(800, 600)
	e := NewEngine(WithWindow(fw), WithRenderer(&fakeRenderer{}), WithStore(scene.NewStore(geometry.Dim3)))
	ctrl := e.Camera().Controller()
	azimuth := ctrl.Azimuth()

	fw.onMouseButton(window.MouseButtonLeft, true, 0, 0)
	fw.onMouseButton(window.MouseButtonMiddle, true, 0, 0)
	fw.onMouseMove(20, 0)
	assert.InDelta(t, azimuth-20*ctrl.MouseSensitivity(), ctrl.Azimuth(), 1e-5, "the first pressed button owns the drag")
	assert.Equal(t, common.Vec3{}, ctrl.Target())

	fw.onMouseButton(window.MouseButtonLeft, false, 20, 0)
	fw.onMouseButton(window.MouseButtonMiddle, true, 20, 0)
	fw.onMouseMove(40, 0)
	assert.NotEqual(t, common.Vec3{}, ctrl.Target(), "middle drag pans")

	fw.onKeyDown(common.KeyHome)
	assert.Equal(t, common.Vec3{}, ctrl.Target())
	assert.InDelta(t, azimuth, ctrl.Azimuth(), 1e-6)

	fw.onKeyDown(common.KeyRight)
	assert.InDelta(t, azimuth+0.03, ctrl.Azimuth(), 1e-6)
}
