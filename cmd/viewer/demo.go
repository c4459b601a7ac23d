package main

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/geometry"
	"github.com/Carmen-Shannon/oxy-viewer/rpc"
	"github.com/chewxy/math32"
)

type demoStep struct {
	name string
	add  func(ctx context.Context) (uint64, error)
}

func runDemo(ctx context.Context, steps []demoStep, p *printer) error {
	for _, s := range steps {
		id, err := s.add(ctx)
		if err != nil {
			return fmt.Errorf("demo %s: %w", s.name, err)
		}
		p.success("added %-9s #%d", s.name, id)
	}
	return nil
}

func demo2D(c *rpc.Client2D) []demoStep {
	x, y := common.V2(1, 0), common.V2(0, 1)
	return []demoStep{
		{"axes", func(ctx context.Context) (uint64, error) {
			return c.AddAxes(ctx, geometry.Axes2D{XAxis: x, YAxis: y, NegLen: 1, PosLen: 4})
		}},
		{"square", func(ctx context.Context) (uint64, error) {
			return c.AddSquare(ctx, geometry.Square{
				Origin: common.V2(0.5, 0.5), XAxis: x, YAxis: y, LenX: 1.5, LenY: 1,
				TriColor: common.Orange, CellType: common.CellTypeTriangle,
			})
		}},
		{"outline", func(ctx context.Context) (uint64, error) {
			return c.AddSquare(ctx, geometry.Square{
				Origin: common.V2(0.5, 0.5), XAxis: x, YAxis: y, LenX: 1.5, LenY: 1,
				LineColor: common.Black, CellType: common.CellTypeLine,
			})
		}},
		{"circle", func(ctx context.Context) (uint64, error) {
			return c.AddCircle(ctx, geometry.Circle{
				Center: common.V2(3, 1), Radius: 0.75, NumSides: 48,
				LineColor: common.Navy, CellType: common.CellTypeLine,
			})
		}},
		{"line", func(ctx context.Context) (uint64, error) {
			return c.AddLine(ctx, geometry.Line2D{V1: common.V2(0, 3), V2: common.V2(3.5, 2.5), Color: common.Purple})
		}},
		{"ring", func(ctx context.Context) (uint64, error) {
			mesh, err := viridisRing(common.V2(1.5, 3), 0.4, 0.8, 64)
			if err != nil {
				return 0, err
			}
			return c.AddMesh(ctx, mesh)
		}},
	}
}

func demo3D(c *rpc.Client3D) []demoStep {
	x, y, z := common.V3(1, 0, 0), common.V3(0, 1, 0), common.V3(0, 0, 1)
	return []demoStep{
		{"axes", func(ctx context.Context) (uint64, error) {
			return c.AddAxes(ctx, geometry.Axes3D{XAxis: x, YAxis: y, ZAxis: z, NegLen: 0.5, PosLen: 3})
		}},
		{"plane", func(ctx context.Context) (uint64, error) {
			return c.AddPlane(ctx, geometry.Plane{
				XAxis: x, YAxis: z, XMin: -2, XMax: 2, YMin: -2, YMax: 2,
				LineColor: common.Gray, CellType: common.CellTypeLine,
			})
		}},
		{"cuboid", func(ctx context.Context) (uint64, error) {
			return c.AddCuboid(ctx, geometry.Cuboid{
				Origin: common.V3(-1.5, 0, -1.5), XAxis: x, YAxis: y, ZAxis: z, LenX: 1, LenY: 1, LenZ: 1,
				TriColor: common.Orange, CellType: common.CellTypeTriangle,
			})
		}},
		{"sphere", func(ctx context.Context) (uint64, error) {
			return c.AddSphere(ctx, geometry.Sphere{
				Origin: common.V3(1, 0.75, 1), Axis: y, Radius: 0.75, NLat: 24, NLong: 48,
				TriColor: common.Teal, CellType: common.CellTypeTriangle,
			})
		}},
		{"cylinder", func(ctx context.Context) (uint64, error) {
			return c.AddCylinder(ctx, geometry.Cylinder{
				Origin: common.V3(1, 0, -1), Axis: y, Radius: 0.4, Height: 1.5, NumSides: 32,
				TriColor: common.Purple, CellType: common.CellTypeTriangle,
			})
		}},
		{"disc", func(ctx context.Context) (uint64, error) {
			return c.AddDisc(ctx, geometry.Disc{
				Origin: common.V3(-1, 0.01, 1), Axis: y, Radius: 0.6, NumSides: 32,
				TriColor: common.Green, CellType: common.CellTypeTriangle,
			})
		}},
		{"triangle", func(ctx context.Context) (uint64, error) {
			return c.AddTriangle(ctx, geometry.Triangle{
				V1: common.V3(-2, 0, 2), V2: common.V3(-1, 2, 2), V3: common.V3(0, 0, 2),
				TriColor: common.Red, CellType: common.CellTypeTriangle,
			})
		}},
		{"line", func(ctx context.Context) (uint64, error) {
			return c.AddLine(ctx, geometry.Line3D{V1: common.V3(-2, 2, -2), V2: common.V3(2, 2, 2), Color: common.Black})
		}},
	}
}

// viridisRing builds an annulus whose vertices are coloured by angle through common.Viridis.
func viridisRing(center common.Vec2, inner, outer float32, sides int) (geometry.Mesh2D, error) {
	e := &geometry.Entity{Dim: geometry.Dim2, CellType: common.CellTypeTriangle}
	values := make([]float32, 0, 2*sides)
	for i := range sides {
		a := 2 * math32.Pi * float32(i) / float32(sides)
		cos, sin := math32.Cos(a), math32.Sin(a)
		for _, r := range []float32{inner, outer} {
			e.Vertices = append(e.Vertices, center.X+r*cos, center.Y+r*sin, 0, 0, 0, 0, 0, 0)
			values = append(values, a)
		}
		in, out := uint32(2*i), uint32(2*i+1)
		nextIn, nextOut := uint32(2*((i+1)%sides)), uint32(2*((i+1)%sides)+1)
		e.Indices = append(e.Indices, in, out, nextOut, in, nextOut, nextIn)
	}

	colored, err := geometry.ColormapTriangleColors(e, common.Normalize(values), common.Viridis)
	if err != nil {
		return geometry.Mesh2D{}, err
	}
	return geometry.Mesh2D{Vertices: colored.Vertices, Indices: colored.Indices, CellType: colored.CellType}, nil
}
