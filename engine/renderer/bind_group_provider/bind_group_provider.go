package bind_group_provider

import (
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
)

// meshBuffers is the vertex/index pair uploaded for one scene entity.
type meshBuffers struct {
	vertices   *wgpu.Buffer
	indices    *wgpu.Buffer
	indexCount int
}

func (m *meshBuffers) release() {
	if m.vertices != nil {
		m.vertices.Release()
	}
	if m.indices != nil {
		m.indices.Release()
	}
	*m = meshBuffers{}
}

// uniformGroup is a bind group together with the buffers bound into it.
type uniformGroup struct {
	group   *wgpu.BindGroup
	layout  *wgpu.BindGroupLayout
	buffers map[int]*wgpu.Buffer
}

func (u *uniformGroup) release() {
	for _, buf := range u.buffers {
		if buf != nil {
			buf.Release()
		}
	}
	if u.group != nil {
		u.group.Release()
	}
	if u.layout != nil {
		u.layout.Release()
	}
	*u = uniformGroup{}
}

type bindGroupProvider struct {
	label string

	client   string
	entityID uint64

	mesh    meshBuffers
	uniform uniformGroup
}

// BindGroupProvider owns the GPU side of one drawable: either the mesh buffers of a scene
// entity, or the camera's uniform bind group. The renderer fills it in and the owner
// releases it.
type BindGroupProvider interface {
	// Label returns the debug label given to GPU objects created for this provider.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Owner returns the client and entity id the provider was created for, or ("", 0) for
	// providers that do not hold an entity mesh.
	//
	// Returns:
	//   - string: the client name
	//   - uint64: the entity id
	Owner() (string, uint64)

	BindGroup() *wgpu.BindGroup
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at a binding index, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	Buffer(binding int) *wgpu.Buffer

	VertexBuffer() *wgpu.Buffer
	IndexBuffer() *wgpu.Buffer
	IndexCount() int

	// MeshReady reports whether both mesh buffers are uploaded and at least one index is set.
	MeshReady() bool

	SetBindGroup(bg *wgpu.BindGroup)
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)
	SetBuffer(binding int, buf *wgpu.Buffer)
	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)

	// Release frees every GPU resource the provider holds. Calling it twice, or on a nil
	// provider, is a no-op.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// BindGroupProviderOption configures a provider in NewBindGroupProvider.
type BindGroupProviderOption func(*bindGroupProvider)

// WithOwner tags the provider with the scene entity whose mesh it will hold. When the
// provider has no label, "<client>/<id>" is used.
//
// Parameters:
//   - client: the owning client name
//   - entityID: the entity id
//
// Returns:
//   - BindGroupProviderOption: the option
func WithOwner(client string, entityID uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.client = client
		p.entityID = entityID
		if p.label == "" {
			p.label = client + "/" + strconv.FormatUint(entityID, 10)
		}
	}
}

// NewBindGroupProvider creates an empty provider. The renderer attaches buffers later in
// InitMeshBuffers or InitBindGroup.
//
// Parameters:
//   - label: the debug label, may be empty when WithOwner is given
//   - options: functional options
//
// Returns:
//   - BindGroupProvider: the provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{label: label}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string { return p.label }

func (p *bindGroupProvider) Owner() (string, uint64) { return p.client, p.entityID }

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup { return p.uniform.group }

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout { return p.uniform.layout }

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer { return p.uniform.buffers[binding] }

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer { return p.mesh.vertices }

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer { return p.mesh.indices }

func (p *bindGroupProvider) IndexCount() int { return p.mesh.indexCount }

func (p *bindGroupProvider) MeshReady() bool {
	return p.mesh.vertices != nil && p.mesh.indices != nil && p.mesh.indexCount > 0
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) { p.uniform.group = bg }

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) { p.uniform.layout = bgl }

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if p.uniform.buffers == nil {
		p.uniform.buffers = make(map[int]*wgpu.Buffer)
	}
	p.uniform.buffers[binding] = buf
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) { p.mesh.vertices = buf }

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) { p.mesh.indices = buf }

func (p *bindGroupProvider) SetIndexCount(count int) { p.mesh.indexCount = count }

func (p *bindGroupProvider) Release() {
	if p == nil {
		return
	}
	p.mesh.release()
	p.uniform.release()
}
