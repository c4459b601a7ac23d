package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	backend       wgpuRendererBackend
}

// Renderer is the GPU facade the viewer draws through. It caches registered pipelines by key,
// creates mesh and uniform resources on bind group providers and batches draw calls into
// one render pass per frame.
type Renderer interface {
	// Pipeline retrieves a registered Pipeline by key, or nil if none is registered.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the registered pipeline
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines compiles each pipeline on the backend and caches it by PipelineKey.
	// Keys that are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface for a new framebuffer size. A zero size, or a failed
	// resize, pauses drawing until the next successful one.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the render attachments could not be created
	Resize(width, height int) error

	// SetVSync switches between vertical-blank and immediate presentation. It applies on the
	// next Resize.
	SetVSync(on bool)

	// SetClearColor changes the background colour from the next frame on.
	SetClearColor(c common.Color)

	// InitMeshBuffers uploads vertex and index data into new GPU buffers stored on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that will own the buffers
	//   - vertexData: the raw vertex bytes
	//   - indexData: the raw uint32 index bytes
	//   - indexCount: the number of indices to draw
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the buffers and bind group described by a layout descriptor and
	// stores them on the provider. Only buffer bindings are supported.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that will own the bind group
	//   - descriptor: the layout descriptor, typically from Pipeline.BindGroupLayouts
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers queues writes into provider buffers.
	//
	// Parameters:
	//   - writes: the buffer writes to perform
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface image and opens the frame's render pass.
	//
	// Returns:
	//   - error: an error if the surface image could not be acquired
	BeginFrame() error

	// DrawCall records one indexed draw of a mesh with the given pipeline.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - meshProvider: the provider holding the vertex and index buffers
	//   - bindGroups: providers bound to group 0, 1, ... in order
	//
	// Returns:
	//   - error: an error if the pipeline is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame closes the render pass and submits the recorded commands.
	EndFrame()

	// Present shows the frame on the surface.
	Present()

	// Release frees the device and surface. The renderer must not be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates the WebGPU device for a window and configures its surface. It must be
// called on the thread that owns the window.
//
// Parameters:
//   - w: the window providing the surface
//   - options: functional options such as WithMSAA and WithClearColor
//
// Returns:
//   - Renderer: the renderer
//   - error: an error if no adapter or device could be acquired
func NewRenderer(w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	opts := newSurfaceOptions(options...)
	b, err := newWGPURendererBackend(w.SurfaceDescriptor(), opts.softwareFallback, opts.sampleCount)
	if err != nil {
		return nil, err
	}
	b.SetVSync(opts.vsync)
	b.SetClearColor(opts.clearColor)
	if err := b.ConfigureSurface(w.Width(), w.Height()); err != nil {
		b.Release()
		return nil, err
	}

	return &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backend:       b,
	}, nil
}

func (r *renderer) Resize(width, height int) error {
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetVSync(on bool) {
	r.backend.SetVSync(on)
}

func (r *renderer) SetClearColor(c common.Color) {
	r.backend.SetClearColor(c)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %s: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	return r.backend.InitBindGroup(provider, descriptor)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	r.backend.DrawCall(p, meshProvider, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}
