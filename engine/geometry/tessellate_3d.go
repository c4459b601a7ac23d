package geometry

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

// frame is an orthonormal basis around a unit axis. x × y == axis.
type frame struct {
	axis, x, y common.Vec3
}

func frameAround(axis common.Vec3) frame {
	a := axis.Normalize()
	x := common.OrthogonalVector(a).Normalize()
	return frame{axis: a, x: x, y: a.Cross(x)}
}

// radial returns the unit direction at angle theta in the frame's plane.
func (f frame) radial(theta float32) common.Vec3 {
	return f.x.Scale(math32.Cos(theta)).Add(f.y.Scale(math32.Sin(theta)))
}

func axes3D(g Axes3D) *Entity {
	b := newMeshBuilder(Dim3, common.CellTypeLine, 6, 6)
	for _, ax := range []struct {
		dir   common.Vec3
		color common.Color
	}{
		{g.XAxis, common.Green},
		{g.YAxis, common.Red},
		{g.ZAxis, common.Blue},
	} {
		from := b.vertex3(g.Origin.Sub(ax.dir.Scale(g.NegLen)), common.Vec3{}, ax.color, common.Gray)
		to := b.vertex3(g.Origin.Add(ax.dir.Scale(g.PosLen)), common.Vec3{}, ax.color, common.Gray)
		b.line(from, to)
	}
	return b.entity()
}

func line3D(g Line3D) *Entity {
	b := newMeshBuilder(Dim3, common.CellTypeLine, 2, 2)
	b.line(
		b.vertex3(g.V1, common.Vec3{}, g.Color, g.Color),
		b.vertex3(g.V2, common.Vec3{}, g.Color, g.Color),
	)
	return b.entity()
}

func triangle(g Triangle) *Entity {
	n := g.V2.Sub(g.V1).Cross(g.V3.Sub(g.V1)).Normalize()
	b := newMeshBuilder(Dim3, g.CellType, 3, 6)
	for _, v := range [3]common.Vec3{g.V1, g.V2, g.V3} {
		b.vertex3(v, n, g.LineColor, g.TriColor)
	}
	if g.CellType == common.CellTypeTriangle {
		b.tri(0, 1, 2)
	} else {
		b.line(0, 1)
		b.line(1, 2)
		b.line(2, 0)
	}
	return b.entity()
}

func plane(g Plane) *Entity {
	at := func(s, t float32) common.Vec3 {
		return g.Origin.Add(g.XAxis.Scale(s)).Add(g.YAxis.Scale(t))
	}
	n := g.XAxis.Cross(g.YAxis).Normalize()
	b := newMeshBuilder(Dim3, g.CellType, 4, 8)
	for _, c := range [4]common.Vec3{
		at(g.XMin, g.YMin),
		at(g.XMax, g.YMin),
		at(g.XMax, g.YMax),
		at(g.XMin, g.YMax),
	} {
		b.vertex3(c, n, g.LineColor, g.TriColor)
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

// cuboidFaces lists two triangles per face, counter-clockwise seen from outside when
// x_axis, y_axis and z_axis form a right-handed frame. Corners 0-3 are the z=0 face in
// order o, o+x, o+x+y, o+y and corners 4-7 repeat them offset by z.
var cuboidFaces = [12][3]uint32{
	{0, 7, 3}, {0, 4, 7}, // -x
	{1, 2, 6}, {1, 6, 5}, // +x
	{0, 1, 5}, {0, 5, 4}, // -y
	{2, 3, 7}, {2, 7, 6}, // +y
	{0, 2, 1}, {0, 3, 2}, // -z
	{4, 5, 6}, {4, 6, 7}, // +z
}

var cuboidEdges = [12][2]uint32{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func cuboid(g Cuboid) *Entity {
	dx := g.XAxis.Scale(g.LenX)
	dy := g.YAxis.Scale(g.LenY)
	dz := g.ZAxis.Scale(g.LenZ)
	center := g.Origin.Add(dx.Add(dy).Add(dz).Scale(0.5))

	var corners [8]common.Vec3
	for i, base := range [4]common.Vec3{g.Origin, g.Origin.Add(dx), g.Origin.Add(dx).Add(dy), g.Origin.Add(dy)} {
		corners[i] = base
		corners[i+4] = base.Add(dz)
	}

	b := newMeshBuilder(Dim3, g.CellType, 8, 36)
	for _, c := range corners {
		b.vertex3(c, c.Sub(center).Normalize(), g.LineColor, g.TriColor)
	}
	if g.CellType == common.CellTypeLine {
		for _, e := range cuboidEdges {
			b.line(e[0], e[1])
		}
		return b.entity()
	}

	leftHanded := dx.Cross(dy).Dot(dz) < 0
	for _, f := range cuboidFaces {
		if leftHanded {
			b.tri(f[0], f[2], f[1])
		} else {
			b.tri(f[0], f[1], f[2])
		}
	}
	return b.entity()
}

// fan builds a disc of n rim points around center in the plane of f. Triangles wind so the
// face points along normal, which must be ±f.axis. LINE fans emit spokes only.
func fan(f frame, center common.Vec3, radius float32, n int, cell common.CellType, normal common.Vec3, line, tri common.Color) *Entity {
	b := newMeshBuilder(Dim3, cell, n+1, 3*n)
	c := b.vertex3(center, normal, line, tri)
	for i := range n {
		b.vertex3(center.Add(f.radial(ring(i, n)).Scale(radius)), normal, line, tri)
	}
	down := normal.Dot(f.axis) < 0
	for i := range n {
		p, q := uint32(1+i), uint32(1+(i+1)%n)
		switch {
		case cell == common.CellTypeLine:
			b.line(c, p)
		case down:
			b.tri(c, q, p)
		default:
			b.tri(c, p, q)
		}
	}
	return b.entity()
}

func disc(g Disc) *Entity {
	f := frameAround(g.Axis)
	e := fan(f, g.Origin, g.Radius, int(g.NumSides), g.CellType, f.axis, g.LineColor, g.TriColor)
	if g.CellType == common.CellTypeLine {
		n := uint32(g.NumSides)
		for i := range n {
			e.Indices = append(e.Indices, 1+i, 1+(i+1)%n)
		}
	}
	return e
}

func cylinder(g Cylinder) *Entity {
	f := frameAround(g.Axis)
	n := int(g.NumSides)
	top := g.Origin.Add(f.axis.Scale(g.Height))

	b := newMeshBuilder(Dim3, g.CellType, 2*n, 6*n)
	for _, base := range [2]common.Vec3{g.Origin, top} {
		for i := range n {
			r := f.radial(ring(i, n))
			b.vertex3(base.Add(r.Scale(g.Radius)), r, g.LineColor, g.TriColor)
		}
	}
	for i := range n {
		bi, bj := uint32(i), uint32((i+1)%n)
		ti, tj := bi+uint32(n), bj+uint32(n)
		if g.CellType == common.CellTypeTriangle {
			b.tri(bi, bj, tj)
			b.tri(bi, tj, ti)
		} else {
			b.line(bi, bj)
			b.line(ti, tj)
			b.line(bi, ti)
		}
	}
	side := b.entity()
	if g.Open {
		return side
	}

	bottom := fan(f, g.Origin, g.Radius, n, g.CellType, f.axis.Neg(), g.LineColor, g.TriColor)
	lid := fan(f, top, g.Radius, n, g.CellType, f.axis, g.LineColor, g.TriColor)
	return Merge(Merge(side, bottom), lid)
}

func sphere(g Sphere) *Entity {
	f := frameAround(g.Axis)
	nLat, nLong := int(g.NLat), int(g.NLong)
	idx := func(i, j int) uint32 { return uint32(i*nLong + j%nLong) }

	b := newMeshBuilder(Dim3, g.CellType, (nLat+1)*nLong, 6*nLat*nLong)
	for i := 0; i <= nLat; i++ {
		phi := float32(i) * math32.Pi / float32(nLat)
		cosPhi, sinPhi := math32.Cos(phi), math32.Sin(phi)
		switch i {
		case 0:
			cosPhi, sinPhi = 1, 0
		case nLat:
			cosPhi, sinPhi = -1, 0
		}
		for j := range nLong {
			n := f.axis.Scale(cosPhi).Add(f.radial(ring(j, nLong)).Scale(sinPhi))
			b.vertex3(g.Origin.Add(n.Scale(g.Radius)), n, g.LineColor, g.TriColor)
		}
	}

	for i := range nLat {
		for j := range nLong {
			a, bb, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			if g.CellType == common.CellTypeLine {
				b.line(a, bb)
				if i > 0 {
					b.line(a, d)
				}
				continue
			}
			if i != nLat-1 {
				b.tri(a, bb, c)
			}
			if i != 0 {
				b.tri(a, c, d)
			}
		}
	}
	return b.entity()
}
