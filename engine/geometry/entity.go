package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// Entity is a tessellated primitive ready for upload. Vertices are interleaved with Dim.Stride()
// floats per vertex; Indices are grouped by CellType (pairs for lines, triples for triangles).
//
// An Entity is immutable once it has been stored. Every helper that changes colors returns a copy.
type Entity struct {
	ID       uint64
	Dim      Dim
	CellType common.CellType
	Vertices []float32
	Indices  []uint32
}

// Stride returns the number of float32 values per vertex.
func (e *Entity) Stride() int {
	return e.Dim.Stride()
}

// VertexCount returns the number of interleaved vertices.
func (e *Entity) VertexCount() int {
	return len(e.Vertices) / e.Stride()
}

// PrimitiveCount returns the number of lines or triangles described by Indices.
func (e *Entity) PrimitiveCount() int {
	n := e.CellType.IndicesPerPrimitive()
	if n == 0 {
		return 0
	}
	return len(e.Indices) / n
}

// Position returns the position of vertex i. 2D positions have Z = 0.
func (e *Entity) Position(i int) common.Vec3 {
	base := i * e.Stride()
	if e.Dim == Dim2 {
		return common.V3(e.Vertices[base], e.Vertices[base+1], 0)
	}
	return common.V3(e.Vertices[base], e.Vertices[base+1], e.Vertices[base+2])
}

// Normal returns the normal of vertex i. 2D entities carry no normals and always return +Z.
func (e *Entity) Normal(i int) common.Vec3 {
	if e.Dim == Dim2 {
		return common.V3(0, 0, 1)
	}
	base := i*e.Stride() + 3
	return common.V3(e.Vertices[base], e.Vertices[base+1], e.Vertices[base+2])
}

// LineColor returns the line color of vertex i.
func (e *Entity) LineColor(i int) common.Color {
	return e.color(i, e.Dim.lineColorOffset())
}

// TriangleColor returns the triangle color of vertex i.
func (e *Entity) TriangleColor(i int) common.Color {
	return e.color(i, e.Dim.lineColorOffset()+3)
}

func (e *Entity) color(i, offset int) common.Color {
	base := i*e.Stride() + offset
	return common.RGB(e.Vertices[base], e.Vertices[base+1], e.Vertices[base+2])
}

// Clone returns a deep copy of e.
func (e *Entity) Clone() *Entity {
	out := *e
	out.Vertices = append([]float32(nil), e.Vertices...)
	out.Indices = append([]uint32(nil), e.Indices...)
	return &out
}

// WithLineColor returns a copy of e with every vertex's line color set to c.
func (e *Entity) WithLineColor(c common.Color) *Entity {
	return e.recolor(e.Dim.lineColorOffset(), func(int) common.Color { return c })
}

// WithTriangleColor returns a copy of e with every vertex's triangle color set to c.
func (e *Entity) WithTriangleColor(c common.Color) *Entity {
	return e.recolor(e.Dim.lineColorOffset()+3, func(int) common.Color { return c })
}

func (e *Entity) recolor(offset int, color func(i int) common.Color) *Entity {
	out := e.Clone()
	stride := out.Stride()
	for i := range out.VertexCount() {
		c := color(i)
		base := i*stride + offset
		out.Vertices[base] = c.R
		out.Vertices[base+1] = c.G
		out.Vertices[base+2] = c.B
	}
	return out
}

// ColormapTriangleColors colors each vertex of e by mapping its scalar value through cmap.
// Values are looked up as given; use common.Normalize first to stretch a field over the full map.
//
// Parameters:
//   - e: the source entity, left unchanged
//   - values: one scalar per vertex
//   - cmap: the colormap, e.g. common.Viridis
//
// Returns:
//   - *Entity: a recolored copy of e
//   - error: ErrInvalidGeometry if len(values) does not match the vertex count
func ColormapTriangleColors(e *Entity, values []float32, cmap common.Colormap) (*Entity, error) {
	if len(values) != e.VertexCount() {
		return nil, fmt.Errorf("%w: %d scalar values for %d vertices", ErrInvalidGeometry, len(values), e.VertexCount())
	}
	return e.recolor(e.Dim.lineColorOffset()+3, func(i int) common.Color { return cmap.Color(values[i]) }), nil
}

// Merge concatenates b onto a. The indices of b are shifted by a's vertex count.
// Both entities must share Dim and CellType; a mismatch is an internal error and panics with *FatalError.
func Merge(a, b *Entity) *Entity {
	if a.Dim != b.Dim || a.CellType != b.CellType {
		panic(&FatalError{Msg: fmt.Sprintf("merge of %s/%s into %s/%s", b.Dim, b.CellType, a.Dim, a.CellType)})
	}
	shift := uint32(a.VertexCount())
	out := &Entity{
		Dim:      a.Dim,
		CellType: a.CellType,
		Vertices: make([]float32, 0, len(a.Vertices)+len(b.Vertices)),
		Indices:  make([]uint32, 0, len(a.Indices)+len(b.Indices)),
	}
	out.Vertices = append(out.Vertices, a.Vertices...)
	out.Vertices = append(out.Vertices, b.Vertices...)
	out.Indices = append(out.Indices, a.Indices...)
	for _, idx := range b.Indices {
		out.Indices = append(out.Indices, idx+shift)
	}
	return out
}

func (d Dim) lineColorOffset() int {
	if d == Dim3 {
		return 6
	}
	return 2
}

// meshBuilder accumulates interleaved vertices and indices for one entity.
type meshBuilder struct {
	dim  Dim
	cell common.CellType
	v    []float32
	i    []uint32
}

func newMeshBuilder(dim Dim, cell common.CellType, vertices, indices int) *meshBuilder {
	return &meshBuilder{
		dim:  dim,
		cell: cell,
		v:    make([]float32, 0, vertices*dim.Stride()),
		i:    make([]uint32, 0, indices),
	}
}

// vertex2 appends a 2D vertex and returns its index.
func (b *meshBuilder) vertex2(p common.Vec2, line, tri common.Color) uint32 {
	idx := uint32(len(b.v) / Dim2.Stride())
	b.v = append(b.v, p.X, p.Y, line.R, line.G, line.B, tri.R, tri.G, tri.B)
	return idx
}

// vertex3 appends a 3D vertex and returns its index.
func (b *meshBuilder) vertex3(p, n common.Vec3, line, tri common.Color) uint32 {
	idx := uint32(len(b.v) / Dim3.Stride())
	b.v = append(b.v, p.X, p.Y, p.Z, n.X, n.Y, n.Z, line.R, line.G, line.B, tri.R, tri.G, tri.B)
	return idx
}

func (b *meshBuilder) line(a, c uint32) {
	b.i = append(b.i, a, c)
}

func (b *meshBuilder) tri(a, c, d uint32) {
	b.i = append(b.i, a, c, d)
}

func (b *meshBuilder) entity() *Entity {
	return &Entity{Dim: b.dim, CellType: b.cell, Vertices: b.v, Indices: b.i}
}
