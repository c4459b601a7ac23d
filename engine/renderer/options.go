package renderer

import "github.com/Carmen-Shannon/oxy-viewer/common"

// MSAASampleCount is the number of samples per pixel. WebGPU guarantees 1 and 4.
type MSAASampleCount uint32

const (
	MSAAOff MSAASampleCount = 1
	MSAA4x  MSAASampleCount = 4
)

// surfaceOptions is the device and swapchain configuration fixed at NewRenderer.
type surfaceOptions struct {
	vsync            bool
	sampleCount      MSAASampleCount
	clearColor       common.Color
	softwareFallback bool
}

// RendererBuilderOption configures NewRenderer.
type RendererBuilderOption func(*surfaceOptions)

// WithVSync presents on vertical blank when on. Off presents immediately, which is the
// default.
func WithVSync(on bool) RendererBuilderOption {
	return func(o *surfaceOptions) {
		o.vsync = on
	}
}

// WithMSAA sets the multisample count from a configured sample count. Anything above one
// selects 4x; the default is 4x.
//
// Parameters:
//   - samples: the requested samples per pixel
//
// Returns:
//   - RendererBuilderOption: the option
func WithMSAA(samples int) RendererBuilderOption {
	return func(o *surfaceOptions) {
		o.sampleCount = MSAAOff
		if samples > 1 {
			o.sampleCount = MSAA4x
		}
	}
}

// WithClearColor sets the background every frame is cleared to. The default is white.
func WithClearColor(c common.Color) RendererBuilderOption {
	return func(o *surfaceOptions) {
		o.clearColor = c
	}
}

// WithSoftwareFallback requests the CPU fallback adapter, which needs a software Vulkan ICD
// such as lavapipe.
func WithSoftwareFallback(on bool) RendererBuilderOption {
	return func(o *surfaceOptions) {
		o.softwareFallback = on
	}
}

func newSurfaceOptions(options ...RendererBuilderOption) surfaceOptions {
	o := surfaceOptions{sampleCount: MSAA4x, clearColor: common.White}
	for _, opt := range options {
		opt(&o)
	}
	return o
}
