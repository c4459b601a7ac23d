package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

// Tessellate converts a validated descriptor into an Entity with ID 0. The caller assigns the ID
// when the entity is stored.
//
// Tessellating the zero Validated is an internal error and panics with *FatalError.
//
// Parameters:
//   - v: a descriptor returned by Validate
//
// Returns:
//   - *Entity: the interleaved vertex and index buffers
func Tessellate(v Validated) *Entity {
	switch g := v.d.(type) {
	case Axes2D:
		return axes2D(g)
	case Line2D:
		return line2D(g)
	case Square:
		return square(g)
	case Circle:
		return circle(g)
	case Mesh2D:
		return passthrough(Dim2, g.CellType, g.Vertices, g.Indices)
	case Axes3D:
		return axes3D(g)
	case Line3D:
		return line3D(g)
	case Triangle:
		return triangle(g)
	case Plane:
		return plane(g)
	case Cuboid:
		return cuboid(g)
	case Cylinder:
		return cylinder(g)
	case Disc:
		return disc(g)
	case Sphere:
		return sphere(g)
	case Mesh3D:
		return passthrough(Dim3, g.CellType, g.Vertices, g.Indices)
	case nil:
		panic(&FatalError{Msg: "tessellate called with an unvalidated descriptor"})
	default:
		panic(&FatalError{Msg: fmt.Sprintf("tessellate: unsupported descriptor %T", g)})
	}
}

// ring returns the angle of step i around a closed ring of n sides.
func ring(i, n int) float32 {
	return float32(i) * (2 * math32.Pi / float32(n))
}

func passthrough(dim Dim, cell common.CellType, vertices []float32, indices []uint32) *Entity {
	return &Entity{
		Dim:      dim,
		CellType: cell,
		Vertices: append([]float32(nil), vertices...),
		Indices:  append([]uint32(nil), indices...),
	}
}

func axes2D(g Axes2D) *Entity {
	b := newMeshBuilder(Dim2, common.CellTypeLine, 4, 4)
	for _, ax := range []struct {
		dir   common.Vec2
		color common.Color
	}{
		{g.XAxis, common.Red},
		{g.YAxis, common.Green},
	} {
		from := b.vertex2(g.Origin.Sub(ax.dir.Scale(g.NegLen)), ax.color, common.Gray)
		to := b.vertex2(g.Origin.Add(ax.dir.Scale(g.PosLen)), ax.color, common.Gray)
		b.line(from, to)
	}
	return b.entity()
}

func line2D(g Line2D) *Entity {
	b := newMeshBuilder(Dim2, common.CellTypeLine, 2, 2)
	b.line(b.vertex2(g.V1, g.Color, g.Color), b.vertex2(g.V2, g.Color, g.Color))
	return b.entity()
}

func square(g Square) *Entity {
	dx := g.XAxis.Scale(g.LenX)
	dy := g.YAxis.Scale(g.LenY)
	corners := [4]common.Vec2{g.Origin, g.Origin.Add(dx), g.Origin.Add(dx).Add(dy), g.Origin.Add(dy)}

	b := newMeshBuilder(Dim2, g.CellType, 4, 8)
	for _, c := range corners {
		b.vertex2(c, g.LineColor, g.TriColor)
	}
	if g.CellType == common.CellTypeTriangle {
		b.tri(0, 1, 2)
		b.tri(0, 2, 3)
	} else {
		for i := range uint32(4) {
			b.line(i, (i+1)%4)
		}
	}
	return b.entity()
}

func circle(g Circle) *Entity {
	n := int(g.NumSides)
	rim := func(i int) common.Vec2 {
		a := ring(i, n)
		return g.Center.Add(common.V2(math32.Cos(a), math32.Sin(a)).Scale(g.Radius))
	}

	if g.CellType == common.CellTypeLine {
		b := newMeshBuilder(Dim2, g.CellType, n, 2*n)
		for i := range n {
			b.vertex2(rim(i), g.LineColor, g.TriColor)
		}
		for i := range n {
			b.line(uint32(i), uint32((i+1)%n))
		}
		return b.entity()
	}

	b := newMeshBuilder(Dim2, g.CellType, n+1, 3*n)
	c := b.vertex2(g.Center, g.LineColor, g.TriColor)
	for i := range n {
		b.vertex2(rim(i), g.LineColor, g.TriColor)
	}
	for i := range n {
		b.tri(c, uint32(1+i), uint32(1+(i+1)%n))
	}
	return b.entity()
}
