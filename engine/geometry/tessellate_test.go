package geometry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTessellate(t *testing.T, d Descriptor) *Entity {
	t.Helper()
	v, err := Validate(d)
	require.NoError(t, err)
	e := Tessellate(v)
	require.NotNil(t, e)
	assertWellFormed(t, e)
	return e
}

// assertWellFormed checks the structural invariants every tessellated entity must satisfy.
func assertWellFormed(t *testing.T, e *Entity) {
	t.Helper()
	require.NotEmpty(t, e.Vertices)
	require.NotEmpty(t, e.Indices)
	assert.Zero(t, len(e.Vertices)%e.Stride())
	assert.Zero(t, len(e.Indices)%e.CellType.IndicesPerPrimitive())
	for _, idx := range e.Indices {
		assert.Less(t, int(idx), e.VertexCount())
	}
	for _, f := range e.Vertices {
		assert.False(t, math32.IsNaN(f) || math32.IsInf(f, 0))
	}
}

// edgeKey identifies an undirected edge by the rounded positions of its endpoints so duplicated
// vertices at the same location count as one.
func edgeKey(e *Entity, a, b uint32) string {
	pa, pb := posKey(e.Position(int(a))), posKey(e.Position(int(b)))
	if pa > pb {
		pa, pb = pb, pa
	}
	return pa + "|" + pb
}

func posKey(p common.Vec3) string {
	r := func(f float32) float32 { return math32.Round(f*1e4) / 1e4 }
	return fmt.Sprintf("%.4f,%.4f,%.4f", r(p.X)+0, r(p.Y)+0, r(p.Z)+0)
}

// assertClosed checks that every triangle edge is shared by exactly two triangles.
func assertClosed(t *testing.T, e *Entity) {
	t.Helper()
	counts := map[string]int{}
	for i := 0; i < len(e.Indices); i += 3 {
		a, b, c := e.Indices[i], e.Indices[i+1], e.Indices[i+2]
		counts[edgeKey(e, a, b)]++
		counts[edgeKey(e, b, c)]++
		counts[edgeKey(e, c, a)]++
	}
	for k, n := range counts {
		assert.Equal(t, 2, n, "edge %s", k)
	}
}

// assertOutward checks that every triangle's geometric normal points away from center.
func assertOutward(t *testing.T, e *Entity, center common.Vec3) {
	t.Helper()
	for i := 0; i < len(e.Indices); i += 3 {
		a := e.Position(int(e.Indices[i]))
		b := e.Position(int(e.Indices[i+1]))
		c := e.Position(int(e.Indices[i+2]))
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Scale(1.0 / 3)
		assert.Greater(t, n.Dot(centroid.Sub(center)), float32(0), "triangle %d faces inward", i/3)
	}
}

func TestTessellateSquare(t *testing.T) {
	tri := mustTessellate(t, unitSquare(common.CellTypeTriangle))
	assert.Equal(t, 4, tri.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, tri.Indices)
	assert.Equal(t, 2, tri.PrimitiveCount())
	assert.Equal(t, common.V3(1, 1, 0), tri.Position(2))
	assert.Equal(t, common.Orange, tri.TriangleColor(3))
	assert.Equal(t, common.Black, tri.LineColor(0))

	line := mustTessellate(t, unitSquare(common.CellTypeLine))
	assert.Equal(t, 4, line.VertexCount())
	assert.Equal(t, []uint32{0, 1, 1, 2, 2, 3, 3, 0}, line.Indices)
	assert.Equal(t, 4, line.PrimitiveCount())
}

func TestTessellateAxes(t *testing.T) {
	e := mustTessellate(t, Axes2D{Origin: common.V2(1, 1), XAxis: common.V2(2, 0), YAxis: common.V2(0, 1), NegLen: 1, PosLen: 3})
	assert.Equal(t, common.CellTypeLine, e.CellType)
	assert.Equal(t, 4, e.VertexCount())
	assert.Equal(t, common.V3(-1, 1, 0), e.Position(0))
	assert.Equal(t, common.V3(7, 1, 0), e.Position(1))
	assert.Equal(t, common.Red, e.LineColor(0))
	assert.Equal(t, common.Green, e.LineColor(2))
	assert.Equal(t, common.Gray, e.TriangleColor(2))

	e3 := mustTessellate(t, Axes3D{XAxis: common.V3(1, 0, 0), YAxis: common.V3(0, 1, 0), ZAxis: common.V3(0, 0, 1), NegLen: 1, PosLen: 1})
	assert.Equal(t, 6, e3.VertexCount())
	assert.Equal(t, 3, e3.PrimitiveCount())
	assert.Equal(t, common.Green, e3.LineColor(0))
	assert.Equal(t, common.Red, e3.LineColor(2))
	assert.Equal(t, common.Blue, e3.LineColor(4))
}

func TestTessellateLine(t *testing.T) {
	e := mustTessellate(t, Line3D{V1: common.V3(0, 0, 0), V2: common.V3(1, 2, 3), Color: common.Teal})
	assert.Equal(t, []uint32{0, 1}, e.Indices)
	assert.Equal(t, common.Teal, e.LineColor(1))
	assert.Equal(t, common.Teal, e.TriangleColor(1))
}

func TestTessellateCircle(t *testing.T) {
	for _, n := range []uint32{3, 4, 17} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			line := mustTessellate(t, Circle{Center: common.V2(2, 3), Radius: 1.5, NumSides: n, CellType: common.CellTypeLine})
			assert.Equal(t, int(n), line.VertexCount())
			assert.Equal(t, int(n), line.PrimitiveCount())
			for i := range line.VertexCount() {
				assert.InDelta(t, 1.5, line.Position(i).Sub(common.V3(2, 3, 0)).Length(), 1e-5)
			}

			tri := mustTessellate(t, Circle{Center: common.V2(2, 3), Radius: 1.5, NumSides: n, CellType: common.CellTypeTriangle})
			assert.Equal(t, int(n)+1, tri.VertexCount())
			assert.Equal(t, int(n), tri.PrimitiveCount())
			for i := 0; i < len(tri.Indices); i += 3 {
				a := tri.Position(int(tri.Indices[i]))
				b := tri.Position(int(tri.Indices[i+1]))
				c := tri.Position(int(tri.Indices[i+2]))
				assert.Greater(t, b.Sub(a).Cross(c.Sub(a)).Z, float32(0), "triangle %d is degenerate or clockwise", i/3)
			}
		})
	}
}

func TestTessellateTriangle(t *testing.T) {
	d := Triangle{V1: common.V3(0, 0, 0), V2: common.V3(2, 0, 0), V3: common.V3(0, 2, 0), CellType: common.CellTypeTriangle}
	e := mustTessellate(t, d)
	assert.Equal(t, []uint32{0, 1, 2}, e.Indices)
	for i := range 3 {
		assert.Equal(t, common.V3(0, 0, 1), e.Normal(i))
	}

	d.CellType = common.CellTypeLine
	assert.Len(t, mustTessellate(t, d).Indices, 6)
}

func TestTessellatePlane(t *testing.T) {
	d := Plane{XAxis: common.V3(0, 1, 0), YAxis: common.V3(0, 0, 1), XMin: -1, XMax: 2, YMin: 0, YMax: 1, CellType: common.CellTypeTriangle}
	e := mustTessellate(t, d)
	assert.Equal(t, 4, e.VertexCount())
	assert.Equal(t, 2, e.PrimitiveCount())
	assert.Equal(t, common.V3(0, -1, 0), e.Position(0))
	assert.Equal(t, common.V3(0, 2, 1), e.Position(2))
	assert.Equal(t, common.V3(1, 0, 0), e.Normal(0))
	// Both triangles wind counter-clockwise around the normal.
	assertOutward(t, e, common.V3(-1, 0.5, 0.5))

	d.CellType = common.CellTypeLine
	assert.Equal(t, 4, mustTessellate(t, d).PrimitiveCount())
}

func TestTessellateCuboid(t *testing.T) {
	d := unitCuboid(common.CellTypeTriangle)
	center := common.V3(0.5, 1, 1.5)

	e := mustTessellate(t, d)
	assert.Equal(t, 8, e.VertexCount())
	assert.Equal(t, 12, e.PrimitiveCount())
	assertClosed(t, e)
	assertOutward(t, e, center)
	for i := range e.VertexCount() {
		assert.Greater(t, e.Normal(i).Dot(e.Position(i).Sub(center)), float32(0))
	}

	// A left-handed frame still yields outward faces.
	d.ZAxis = common.V3(0, 0, -1)
	left := mustTessellate(t, d)
	assertOutward(t, left, common.V3(0.5, 1, -1.5))

	d.CellType = common.CellTypeLine
	line := mustTessellate(t, d)
	assert.Equal(t, 8, line.VertexCount())
	assert.Equal(t, 12, line.PrimitiveCount())
}

func TestTessellateDisc(t *testing.T) {
	axis := common.V3(1, 1, 0)
	tri := mustTessellate(t, Disc{Origin: common.V3(1, 2, 3), Axis: axis, Radius: 2, NumSides: 6, CellType: common.CellTypeTriangle})
	assert.Equal(t, 7, tri.VertexCount())
	assert.Equal(t, 6, tri.PrimitiveCount())
	a := axis.Normalize()
	for i := range tri.VertexCount() {
		assert.InDelta(t, 1, tri.Normal(i).Dot(a), 1e-5)
		assert.InDelta(t, 0, tri.Position(i).Sub(common.V3(1, 2, 3)).Dot(a), 1e-5)
	}
	// Triangles face along the axis.
	assertOutward(t, tri, common.V3(1, 2, 3).Sub(a))

	line := mustTessellate(t, Disc{Axis: axis, Radius: 2, NumSides: 6, CellType: common.CellTypeLine})
	assert.Equal(t, 12, line.PrimitiveCount())
}

func TestTessellateCylinder(t *testing.T) {
	const n = 12
	d := Cylinder{Origin: common.V3(0, 0, 0), Axis: common.V3(0, 0, 2), Radius: 1, Height: 3, NumSides: n, Open: true, CellType: common.CellTypeTriangle}
	center := common.V3(0, 0, 1.5)

	open := mustTessellate(t, d)
	assert.Equal(t, 2*n, open.VertexCount())
	assert.Equal(t, 2*n, open.PrimitiveCount())
	assertOutward(t, open, center)
	for i := range open.VertexCount() {
		p := open.Position(i)
		assert.InDelta(t, 1, common.V3(p.X, p.Y, 0).Length(), 1e-5)
		assert.True(t, p.Z == 0 || math32.Abs(p.Z-3) < 1e-5)
	}

	d.Open = false
	closed := mustTessellate(t, d)
	assert.Equal(t, 2*n+2*(n+1), closed.VertexCount())
	assert.Equal(t, 4*n, closed.PrimitiveCount())
	assertClosed(t, closed)
	assertOutward(t, closed, center)

	d.CellType = common.CellTypeLine
	d.Open = true
	openLines := mustTessellate(t, d)
	assert.Equal(t, 3*n, openLines.PrimitiveCount())

	d.Open = false
	closedLines := mustTessellate(t, d)
	assert.Equal(t, 5*n, closedLines.PrimitiveCount())
}

func TestTessellateSphere(t *testing.T) {
	d := Sphere{Origin: common.V3(1, 1, 1), Axis: common.V3(0, 1, 0), Radius: 2, NLat: 4, NLong: 4, CellType: common.CellTypeTriangle}
	e := mustTessellate(t, d)
	assert.Equal(t, 5*4, e.VertexCount())
	assert.Equal(t, 24, e.PrimitiveCount())
	assertClosed(t, e)
	assertOutward(t, e, d.Origin)

	for i := range e.VertexCount() {
		assert.InDelta(t, 2, e.Position(i).Sub(d.Origin).Length(), 1e-5)
		assert.InDelta(t, 1, e.Normal(i).Length(), 1e-5)
	}
	// Pole rows collapse to one point.
	for j := range 4 {
		assert.Equal(t, common.V3(1, 3, 1), e.Position(j))
		assert.Equal(t, common.V3(1, -1, 1), e.Position(16+j))
	}

	d.CellType = common.CellTypeLine
	line := mustTessellate(t, d)
	assert.Equal(t, 4*4+3*4, line.PrimitiveCount())
}

func TestTessellateMeshCopies(t *testing.T) {
	d := Mesh2D{Vertices: make([]float32, 24), Indices: []uint32{0, 1, 2}, CellType: common.CellTypeTriangle}
	e := mustTessellate(t, d)
	d.Indices[0] = 2
	d.Vertices[0] = 42
	assert.Equal(t, uint32(0), e.Indices[0])
	assert.Zero(t, e.Vertices[0])
}

func TestTessellateUnvalidatedIsFatal(t *testing.T) {
	var err error
	func() {
		defer RecoverFatal(&err)
		Tessellate(Validated{})
	}()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFatal))
}

func TestRecoverFatalRepanics(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		var err error
		defer RecoverFatal(&err)
		panic("boom")
	})
}
