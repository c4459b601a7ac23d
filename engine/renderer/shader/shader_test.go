package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSource = `
/* header
   /* nested */ still a comment @vertex fn hidden() {}
*/
struct Camera {
    view_proj: mat4x4<f32>,
    light_dir: vec4<f32>,
}

struct Lights {
    items: array<vec3<f32>, 4>,
    count: u32,
}

@group(0) @binding(0) var<uniform> camera: Camera;
@group(1) @binding(2) var<storage, read> lights: Lights;
@group(1) @binding(0) var<uniform> tint: vec4<f32>;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) color: vec3<f32>,
}

struct VertexOutput {
    @builtin(position) clip: vec4<f32>,
    @location(0) color: vec3<f32>,
}

// @vertex fn commented() {}
@vertex
fn vs_a(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip = camera.view_proj * vec4<f32>(in.position, 1.0);
    out.color = in.color;
    return out;
}

@vertex
fn vs_b(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(in.color, 1.0) * tint;
}
`

func TestNewShaderVertex(t *testing.T) {
	s := NewShader("test_vs", ShaderTypeVertex, testSource)

	assert.Equal(t, "test_vs", s.Key())
	assert.Equal(t, "vs_a", s.EntryPoint())
	assert.Equal(t, "test_vs", s.Module().Label)
	assert.Equal(t, testSource, s.Module().WGSLDescriptor.Code)

	layouts := s.VertexLayout()
	require.Len(t, layouts, 1)
	assert.Equal(t, uint64(36), layouts[0].ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layouts[0].StepMode)
	require.Len(t, layouts[0].Attributes, 3)
	for i, want := range []uint64{0, 12, 24} {
		assert.Equal(t, want, layouts[0].Attributes[i].Offset)
		assert.Equal(t, uint32(i), layouts[0].Attributes[i].ShaderLocation)
		assert.Equal(t, wgpu.VertexFormatFloat32x3, layouts[0].Attributes[i].Format)
	}
}

func TestNewShaderEntryPointSelection(t *testing.T) {
	s := NewShader("test_vs", ShaderTypeVertex, testSource, WithEntryPoint("vs_b"))
	assert.Equal(t, "vs_b", s.EntryPoint())

	assert.Panics(t, func() {
		NewShader("test_vs", ShaderTypeVertex, testSource, WithEntryPoint("hidden"))
	})
	assert.Panics(t, func() {
		NewShader("test_vs", ShaderTypeVertex, testSource, WithEntryPoint("commented"))
	})
	assert.Panics(t, func() {
		NewShader("empty", ShaderTypeFragment, "")
	})
	assert.Panics(t, func() {
		NewShader("no_fs", ShaderTypeFragment, "@vertex fn vs() {}")
	})
}

func TestBindGroupLayouts(t *testing.T) {
	s := NewShader("test_fs", ShaderTypeFragment, testSource)
	assert.Equal(t, "fs_main", s.EntryPoint())
	assert.Nil(t, s.VertexLayout())

	g0 := s.BindGroupLayoutDescriptor(0)
	require.Len(t, g0.Entries, 1)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, g0.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(80), g0.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.ShaderStageFragment, g0.Entries[0].Visibility)

	g1 := s.BindGroupLayoutDescriptor(1)
	require.Len(t, g1.Entries, 2)
	assert.Equal(t, uint32(0), g1.Entries[0].Binding, "entries are sorted by binding")
	assert.Equal(t, uint64(16), g1.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint32(2), g1.Entries[1].Binding)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, g1.Entries[1].Buffer.Type)
	// four 16-byte array strides plus a u32, rounded to 16
	assert.Equal(t, uint64(80), g1.Entries[1].Buffer.MinBindingSize)

	assert.Empty(t, s.BindGroupLayoutDescriptor(5).Entries)
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vs := NewShader("vs", ShaderTypeVertex, testSource)
	fs := NewShader("fs", ShaderTypeFragment, testSource)

	merged := MergeBindGroupLayouts(vs, fs, nil)
	require.Len(t, merged, 2)
	require.Len(t, merged[0].Entries, 1)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, merged[0].Entries[0].Visibility)
	assert.Len(t, merged[1].Entries, 2)
}

func TestStripBlockCommentsNested(t *testing.T) {
	out := stripBlockComments("a /* b /* c */ d */ e")
	assert.Equal(t, "a  e", out)
}

func TestResolveTypeLayout(t *testing.T) {
	known := map[string]typeLayout{"Inner": {32, 16}}

	l, ok := resolveTypeLayout("array<Inner, 3>", known)
	require.True(t, ok)
	assert.Equal(t, typeLayout{96, 16}, l)

	_, ok = resolveTypeLayout("array<f32>", known)
	assert.False(t, ok, "runtime-sized arrays have no fixed size")

	_, ok = resolveTypeLayout("texture_2d<f32>", known)
	assert.False(t, ok)
}
