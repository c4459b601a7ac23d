package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("camera_1")
	assert.Equal(t, "camera_1", p.Label())
	client, id := p.Owner()
	assert.Empty(t, client)
	assert.Zero(t, id)
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
	assert.False(t, p.MeshReady())

	p.SetIndexCount(12)
	assert.Equal(t, 12, p.IndexCount())
	assert.False(t, p.MeshReady(), "buffers are still missing")
}

func TestWithOwner(t *testing.T) {
	p := NewBindGroupProvider("", WithOwner("plotter", 7))
	assert.Equal(t, "plotter/7", p.Label())
	client, id := p.Owner()
	assert.Equal(t, "plotter", client)
	assert.Equal(t, uint64(7), id)

	named := NewBindGroupProvider("surface", WithOwner("plotter", 8))
	assert.Equal(t, "surface", named.Label())
}

func TestReleaseWithoutResources(t *testing.T) {
	p := NewBindGroupProvider("empty")
	p.SetIndexCount(3)
	p.SetBuffer(0, nil)

	assert.NotPanics(t, p.Release)
	assert.NotPanics(t, p.Release)
	assert.Zero(t, p.IndexCount())
	assert.Nil(t, p.Buffer(0))

	var nilProvider *bindGroupProvider
	assert.NotPanics(t, nilProvider.Release)
}

func TestBufferWriteEmpty(t *testing.T) {
	p := NewBindGroupProvider("camera")
	assert.True(t, UniformWrite(p, 0, nil).Empty())
	assert.True(t, BufferWrite{Data: []byte{1}}.Empty())

	w := UniformWrite(p, 0, []byte{1, 2, 3, 4})
	assert.False(t, w.Empty())
	assert.Equal(t, 0, w.Binding)
	assert.Zero(t, w.Offset)
}
