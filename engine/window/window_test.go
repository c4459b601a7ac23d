package window

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{requestedWidth: 1280, requestedHeight: 720}
	for _, opt := range []WindowBuilderOption{
		WithTitle("viewer"),
		WithSize(800, 0),
		WithMinSize(100, 0),
	} {
		opt(w)
	}

	assert.Equal(t, "viewer", w.title)
	assert.Equal(t, 800, w.requestedWidth)
	assert.Equal(t, 720, w.requestedHeight, "non-positive sizes keep the default")
	assert.Equal(t, 100, sizeLimit(w.minWidth))
	assert.Equal(t, glfw.DontCare, sizeLimit(w.minHeight))
}

func TestUninitializedWindow(t *testing.T) {
	w := &engineWindow{}

	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())

	w.setFramebufferSize(640, 480)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())

	assert.NotPanics(t, w.Stop)
	assert.NotPanics(t, w.Stop)
	assert.NotPanics(t, w.ProcessMessages, "returns immediately once stopped")
}

type fakePlatform struct {
	closing bool
	polls   int
	woken   int
	gone    bool
}

func (f *fakePlatform) surfaceDescriptor() *wgpu.SurfaceDescriptor { return &wgpu.SurfaceDescriptor{} }
func (f *fakePlatform) closeRequested() bool                       { return f.closing }
func (f *fakePlatform) poll()                                      { f.polls++ }
func (f *fakePlatform) wake()                                      { f.woken++ }
func (f *fakePlatform) destroy()                                   { f.gone = true }

func TestMessageLoopRunsUntilCloseRequested(t *testing.T) {
	plat := &fakePlatform{}
	w := &engineWindow{plat: plat}
	updates := 0
	w.SetUpdateCallback(func() {
		updates++
		if updates == 3 {
			plat.closing = true
		}
	})

	assert.NotNil(t, w.SurfaceDescriptor())
	w.ProcessMessages()
	assert.Equal(t, 3, plat.polls)
	assert.Equal(t, 3, updates)

	w.Stop()
	w.Stop()
	assert.Equal(t, 1, plat.woken, "only the first Stop wakes the loop")

	require.NoError(t, w.Close())
	assert.True(t, plat.gone)
	assert.Error(t, w.Close())
}
