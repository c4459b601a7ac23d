package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/stretchr/testify/assert"
)

func TestSurfaceOptionDefaults(t *testing.T) {
	o := newSurfaceOptions()
	assert.False(t, o.vsync)
	assert.Equal(t, MSAA4x, o.sampleCount)
	assert.Equal(t, common.White, o.clearColor)
	assert.False(t, o.softwareFallback)
}

func TestSurfaceOptions(t *testing.T) {
	o := newSurfaceOptions(WithVSync(true), WithMSAA(1), WithClearColor(common.Navy), WithSoftwareFallback(true))
	assert.True(t, o.vsync)
	assert.Equal(t, MSAAOff, o.sampleCount)
	assert.Equal(t, common.Navy, o.clearColor)
	assert.True(t, o.softwareFallback)

	for samples, want := range map[int]MSAASampleCount{0: MSAAOff, 1: MSAAOff, 2: MSAA4x, 4: MSAA4x, 8: MSAA4x} {
		assert.Equal(t, want, newSurfaceOptions(WithMSAA(samples)).sampleCount, "samples=%d", samples)
	}
}
