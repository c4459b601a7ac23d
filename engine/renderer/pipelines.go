package renderer

import (
	_ "embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	//go:embed shaders/d2.wgsl
	d2Source string

	//go:embed shaders/d3.wgsl
	d3Source string
)

// CameraGroup is the bind group index of the camera uniform in every viewer pipeline.
const CameraGroup = 0

// PipelineKey names the pipeline that draws entities of a dimensionality and cell type.
//
// Parameters:
//   - dim: the scene dimensionality
//   - cell: the entity's cell type
//
// Returns:
//   - string: the pipeline key, for example "line2d" or "tri3d"
func PipelineKey(dim geometry.Dim, cell common.CellType) string {
	prefix := "line"
	if cell == common.CellTypeTriangle {
		prefix = "tri"
	}
	return fmt.Sprintf("%s%dd", prefix, int(dim))
}

// ShaderSource returns the embedded WGSL for a dimensionality.
func ShaderSource(dim geometry.Dim) string {
	if dim == geometry.Dim2 {
		return d2Source
	}
	return d3Source
}

// NewViewerPipelines builds the line and triangle pipelines for a dimensionality.
//
// 2D pipelines ignore depth so later entities draw over earlier ones. 3D pipelines depth test;
// triangles are pushed back by a small bias so edges drawn on a surface stay visible, and
// triangles are shaded with the directional light.
//
// Parameters:
//   - dim: the scene dimensionality
//
// Returns:
//   - []pipeline.Pipeline: the line pipeline followed by the triangle pipeline
func NewViewerPipelines(dim geometry.Dim) []pipeline.Pipeline {
	src := ShaderSource(dim)
	tag := dim.String()

	lineVS := shader.NewShader("vs_line_"+tag, shader.ShaderTypeVertex, src, shader.WithEntryPoint("vs_line"))
	triVS := shader.NewShader("vs_tri_"+tag, shader.ShaderTypeVertex, src, shader.WithEntryPoint("vs_tri"))
	flatFS := shader.NewShader("fs_flat_"+tag, shader.ShaderTypeFragment, src, shader.WithEntryPoint("fs_flat"))

	lineOpts := []pipeline.PipelineBuilderOption{pipeline.WithShaders(lineVS, flatFS), pipeline.WithLineList()}
	var triOpts []pipeline.PipelineBuilderOption

	if dim == geometry.Dim2 {
		lineOpts = append(lineOpts, pipeline.WithPaintersOrder())
		triOpts = append(triOpts, pipeline.WithShaders(triVS, flatFS), pipeline.WithPaintersOrder())
	} else {
		litFS := shader.NewShader("fs_lit_"+tag, shader.ShaderTypeFragment, src, shader.WithEntryPoint("fs_lit"))
		triOpts = append(triOpts, pipeline.WithShaders(triVS, litFS), pipeline.WithDepthBias(1, 1))
	}

	return []pipeline.Pipeline{
		pipeline.NewPipeline(PipelineKey(dim, common.CellTypeLine), lineOpts...),
		pipeline.NewPipeline(PipelineKey(dim, common.CellTypeTriangle), triOpts...),
	}
}

// CameraLayout returns the merged layout of the camera bind group shared by the pipelines.
//
// Parameters:
//   - pipelines: pipelines built by NewViewerPipelines
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the group-0 layout with vertex and fragment visibility
func CameraLayout(pipelines []pipeline.Pipeline) wgpu.BindGroupLayoutDescriptor {
	var shaders []shader.Shader
	for _, p := range pipelines {
		shaders = append(shaders, p.Shader(shader.ShaderTypeVertex), p.Shader(shader.ShaderTypeFragment))
	}
	return shader.MergeBindGroupLayouts(shaders...)[CameraGroup]
}
