package pipeline

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// State is the fixed-function configuration of a render pipeline.
type State struct {
	Topology  wgpu.PrimitiveTopology
	FrontFace wgpu.FrontFace
	CullMode  wgpu.CullMode

	// DepthTest compares fragments with Less when set and with Always otherwise, in which
	// case draw order decides visibility.
	DepthTest  bool
	DepthWrite bool

	// DepthBias and DepthBiasSlopeScale must stay zero for line topologies.
	DepthBias           int32
	DepthBiasSlopeScale float32
}

// DepthCompare returns the comparison function the depth attachment uses.
func (s State) DepthCompare() wgpu.CompareFunction {
	if s.DepthTest {
		return wgpu.CompareFunctionLess
	}
	return wgpu.CompareFunctionAlways
}

// DefaultState is a depth-tested, unculled triangle list with counter-clockwise fronts.
func DefaultState() State {
	return State{
		Topology:   wgpu.PrimitiveTopologyTriangleList,
		FrontFace:  wgpu.FrontFaceCCW,
		CullMode:   wgpu.CullModeNone,
		DepthTest:  true,
		DepthWrite: true,
	}
}

type pipeline struct {
	key            string
	vertexShader   shader.Shader
	fragmentShader shader.Shader
	state          State
	renderPipeline *wgpu.RenderPipeline
}

// Pipeline pairs a vertex and fragment shader with fixed-function State. The backend
// attaches the compiled GPU object when the pipeline is registered.
type Pipeline interface {
	// PipelineKey returns the key the pipeline is registered and drawn under.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Shader returns the shader bound to a stage, or nil if none is set.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the stage's shader
	Shader(shaderType shader.ShaderType) shader.Shader

	// State returns the fixed-function configuration.
	State() State

	// BindGroupLayouts merges the bind group layouts declared by both stages.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor

	RenderPipeline() *wgpu.RenderPipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// IsRegistered reports whether a compiled GPU pipeline is attached.
	IsRegistered() bool
}

var _ Pipeline = &pipeline{}

// PipelineBuilderOption configures a pipeline in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithShaders sets the vertex and fragment stages.
//
// Parameters:
//   - vs: the vertex shader
//   - fs: the fragment shader
//
// Returns:
//   - PipelineBuilderOption: the option
func WithShaders(vs, fs shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = vs
		p.fragmentShader = fs
	}
}

// WithLineList assembles indices as line segments and clears any depth bias.
func WithLineList() PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.Topology = wgpu.PrimitiveTopologyLineList
		p.state.DepthBias = 0
		p.state.DepthBiasSlopeScale = 0
	}
}

// WithPaintersOrder turns depth testing and depth writes off.
func WithPaintersOrder() PipelineBuilderOption {
	return func(p *pipeline) {
		p.state.DepthTest = false
		p.state.DepthWrite = false
	}
}

// WithDepthBias pushes rasterised triangles away from the camera. It is ignored for line
// lists.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - PipelineBuilderOption: the option
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		if p.state.Topology == wgpu.PrimitiveTopologyLineList {
			return
		}
		p.state.DepthBias = bias
		p.state.DepthBiasSlopeScale = slopeScale
	}
}

// WithState replaces the whole fixed-function configuration.
func WithState(s State) PipelineBuilderOption {
	return func(p *pipeline) {
		p.state = s
	}
}

// NewPipeline creates a pipeline starting from DefaultState.
//
// Parameters:
//   - key: the pipeline key
//   - opts: options applied in order
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{key: key, state: DefaultState()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string { return p.key }

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	}
	return nil
}

func (p *pipeline) State() State { return p.state }

func (p *pipeline) BindGroupLayouts() map[int]wgpu.BindGroupLayoutDescriptor {
	return shader.MergeBindGroupLayouts(p.vertexShader, p.fragmentShader)
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline { return p.renderPipeline }

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) { p.renderPipeline = rp }

func (p *pipeline) IsRegistered() bool { return p.renderPipeline != nil }
