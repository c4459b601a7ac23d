package shader

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex ShaderType = iota
	// ShaderTypeFragment is the fragment stage of a render pipeline.
	ShaderTypeFragment
)

// String returns the stage name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// Visibility maps the shader type to the wgpu stage flag used in bind group layouts.
func (t ShaderType) Visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageNone
	}
}

type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	vertexLayout               *wgpu.VertexBufferLayout
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is a parsed WGSL stage. It carries the reflection data a render pipeline needs:
// the entry point, the vertex buffer layout for vertex stages and the bind group layouts.
type Shader interface {
	// Key retrieves the unique identifier for this shader.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// ShaderType returns the stage this shader is compiled for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point function name.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string

	// VertexLayout returns the vertex buffer layout parsed from the vertex input struct.
	// Fragment shaders and vertex shaders without inputs return nil.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: zero or one buffer layouts
	VertexLayout() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptor retrieves the layout descriptor for a bind group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, or an empty one if the group is unused
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// Module returns the shader module descriptor built from the source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the module descriptor labelled with the shader key
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader parses WGSL source into a Shader. A single source may declare several entry
// points for the same stage; the first one is used unless WithEntryPoint selects another.
// It panics when the source is empty or has no matching entry point, since shader sources
// are compiled into the binary.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the pipeline stage
//   - source: the WGSL source code
//   - options: optional configuration such as WithEntryPoint
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, source string, options ...ShaderBuilderOption) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s has no source", key))
	}
	s := &shader{
		key:        key,
		shaderType: shaderType,
		source:     source,
	}
	for _, opt := range options {
		opt(s)
	}

	entries := parseEntryPoints(source, shaderType)
	switch {
	case len(entries) == 0:
		panic(fmt.Sprintf("shader: %s declares no %s entry point", key, shaderType))
	case s.entryPoint == "":
		s.entryPoint = entries[0]
	case !slices.Contains(entries, s.entryPoint):
		panic(fmt.Sprintf("shader: %s has no %s entry point %q (found %v)", key, shaderType, s.entryPoint, entries))
	}

	if shaderType == ShaderTypeVertex {
		if layout, ok := parseVertexLayout(source); ok {
			s.vertexLayout = &layout
		}
	}
	s.bindGroupLayoutDescriptors = parseBindGroupLayouts(source, shaderType.Visibility())
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) VertexLayout() []wgpu.VertexBufferLayout {
	if s.vertexLayout == nil {
		return nil
	}
	return []wgpu.VertexBufferLayout{*s.vertexLayout}
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

// MergeBindGroupLayouts combines the bind group layouts of several stages. Entries sharing
// a group and binding are merged by OR-ing their visibility; the result is sorted by binding.
//
// Parameters:
//   - shaders: the stages to merge, typically a vertex and a fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func MergeBindGroupLayouts(shaders ...Shader) map[int]wgpu.BindGroupLayoutDescriptor {
	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	for _, s := range shaders {
		if s == nil {
			continue
		}
		for g, desc := range s.BindGroupLayoutDescriptors() {
			if byGroup[g] == nil {
				byGroup[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := byGroup[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					e = existing
				}
				byGroup[g][e.Binding] = e
			}
		}
	}

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(byGroup))
	for g, entryMap := range byGroup {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
		for _, binding := range slices.Sorted(maps.Keys(entryMap)) {
			entries = append(entries, entryMap[binding])
		}
		merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return merged
}
