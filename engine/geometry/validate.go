package geometry

import (
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

const (
	// eps is the relative tolerance used for zero-length and parallel axis checks.
	eps = 1e-6

	// maxSubdivisions bounds num_sides, n_lat and n_long.
	maxSubdivisions = 1 << 16

	// maxGridVertices bounds the vertex count of a sphere's latitude/longitude grid.
	maxGridVertices = 1 << 22
)

// Validated wraps a descriptor that passed Validate. The zero value wraps nothing and must not be
// tessellated.
type Validated struct {
	d Descriptor
}

// Descriptor returns the wrapped descriptor, or nil for the zero value.
func (v Validated) Descriptor() Descriptor {
	return v.d
}

// Validate checks every field of d and returns it wrapped for tessellation. It never corrects input.
//
// Parameters:
//   - d: the descriptor to check
//
// Returns:
//   - Validated: the checked descriptor, zero on failure
//   - error: an *InvalidGeometryError naming the first offending field, or nil
func Validate(d Descriptor) (Validated, error) {
	var err error
	switch g := d.(type) {
	case Axes2D:
		err = validateAxes2D(g)
	case Line2D:
		err = validateLine2D(g)
	case Square:
		err = validateSquare(g)
	case Circle:
		err = validateCircle(g)
	case Mesh2D:
		g.Vertices, g.Indices = cloneMesh(g.Vertices, g.Indices)
		d = g
		err = validateMesh(g.Kind(), Dim2, g.Vertices, g.Indices, g.CellType)
	case Axes3D:
		err = validateAxes3D(g)
	case Line3D:
		err = validateLine3D(g)
	case Triangle:
		err = validateTriangle(g)
	case Plane:
		err = validatePlane(g)
	case Cuboid:
		err = validateCuboid(g)
	case Cylinder:
		err = validateCylinder(g)
	case Disc:
		err = validateDisc(g)
	case Sphere:
		err = validateSphere(g)
	case Mesh3D:
		g.Vertices, g.Indices = cloneMesh(g.Vertices, g.Indices)
		d = g
		err = validateMesh(g.Kind(), Dim3, g.Vertices, g.Indices, g.CellType)
	case nil:
		err = invalid(Kind(-1), "descriptor", "is nil")
	default:
		err = invalid(Kind(-1), "descriptor", "unsupported type %T", d)
	}
	if err != nil {
		return Validated{}, err
	}
	return Validated{d: d}, nil
}

// cloneMesh detaches mesh data from the caller so later writes cannot bypass the checks.
func cloneMesh(vertices []float32, indices []uint32) ([]float32, []uint32) {
	return append([]float32(nil), vertices...), append([]uint32(nil), indices...)
}

// check runs each step in order and returns the first failure.
func check(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func finiteScalar(k Kind, field string, f float32) func() error {
	return func() error {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return invalid(k, field, "must be finite, got %v", f)
		}
		return nil
	}
}

func finiteVec2(k Kind, field string, v common.Vec2) func() error {
	return func() error {
		if !v.IsFinite() {
			return invalid(k, field, "must be finite, got %v", v)
		}
		return nil
	}
}

func finiteVec3(k Kind, field string, v common.Vec3) func() error {
	return func() error {
		if !v.IsFinite() {
			return invalid(k, field, "must be finite, got %v", v)
		}
		return nil
	}
}

func finiteColor(k Kind, field string, c common.Color) func() error {
	return func() error {
		if !c.IsFinite() {
			return invalid(k, field, "must be finite, got %v", c)
		}
		return nil
	}
}

func positive(k Kind, field string, f float32) func() error {
	return func() error {
		if err := finiteScalar(k, field, f)(); err != nil {
			return err
		}
		if f <= 0 {
			return invalid(k, field, "must be > 0, got %v", f)
		}
		return nil
	}
}

func subdivisions(k Kind, field string, n uint32) func() error {
	return func() error {
		if n < 3 {
			return invalid(k, field, "must be >= 3, got %d", n)
		}
		if n > maxSubdivisions {
			return invalid(k, field, "must be <= %d, got %d", maxSubdivisions, n)
		}
		return nil
	}
}

// indexable fails when n elements cannot all be addressed by a uint32 index.
func indexable(k Kind, field string, n int) func() error {
	return func() error {
		if uint64(n) > math.MaxUint32 {
			return invalid(k, field, "%d elements exceed the uint32 index range", n)
		}
		return nil
	}
}

func drawable(k Kind, c common.CellType) func() error {
	return func() error {
		switch c {
		case common.CellTypeLine, common.CellTypeTriangle:
			return nil
		case common.CellTypeNone:
			return invalid(k, "cell_type", "must be line or triangle, got none")
		}
		return invalid(k, "cell_type", "unknown value %d", uint32(c))
	}
}

func nonZero2(k Kind, field string, v common.Vec2) func() error {
	return func() error {
		if err := finiteVec2(k, field, v)(); err != nil {
			return err
		}
		if v.Length() <= eps {
			return invalid(k, field, "must be non-zero")
		}
		return nil
	}
}

func nonZero3(k Kind, field string, v common.Vec3) func() error {
	return func() error {
		if err := finiteVec3(k, field, v)(); err != nil {
			return err
		}
		if v.Length() <= eps {
			return invalid(k, field, "must be non-zero")
		}
		return nil
	}
}

func notParallel2(k Kind, field string, a, b common.Vec2) func() error {
	return func() error {
		if math32.Abs(a.Cross(b)) <= eps*a.Length()*b.Length() {
			return invalid(k, field, "is parallel to x_axis")
		}
		return nil
	}
}

func notParallel3(k Kind, field, other string, a, b common.Vec3) func() error {
	return func() error {
		if a.Cross(b).Length() <= eps*a.Length()*b.Length() {
			return invalid(k, field, "is parallel to %s", other)
		}
		return nil
	}
}

func validateAxes2D(g Axes2D) error {
	k := g.Kind()
	return check(
		finiteVec2(k, "origin", g.Origin),
		nonZero2(k, "x_axis", g.XAxis),
		nonZero2(k, "y_axis", g.YAxis),
		notParallel2(k, "y_axis", g.XAxis, g.YAxis),
		positive(k, "neg_len", g.NegLen),
		positive(k, "pos_len", g.PosLen),
	)
}

func validateLine2D(g Line2D) error {
	k := g.Kind()
	return check(
		finiteVec2(k, "v1", g.V1),
		finiteVec2(k, "v2", g.V2),
		finiteColor(k, "color", g.Color),
	)
}

func validateSquare(g Square) error {
	k := g.Kind()
	return check(
		finiteVec2(k, "origin", g.Origin),
		nonZero2(k, "x_axis", g.XAxis),
		nonZero2(k, "y_axis", g.YAxis),
		notParallel2(k, "y_axis", g.XAxis, g.YAxis),
		positive(k, "lenx", g.LenX),
		positive(k, "leny", g.LenY),
		finiteColor(k, "line_color", g.LineColor),
		finiteColor(k, "tri_color", g.TriColor),
		drawable(k, g.CellType),
	)
}

func validateCircle(g Circle) error {
	k := g.Kind()
	return check(
		finiteVec2(k, "center", g.Center),
		positive(k, "radius", g.Radius),
		subdivisions(k, "num_sides", g.NumSides),
		finiteColor(k, "line_color", g.LineColor),
		finiteColor(k, "tri_color", g.TriColor),
		drawable(k, g.CellType),
	)
}

func validateAxes3D(g Axes3D) error {
	k := g.Kind()
	return check(
		finiteVec3(k, "origin", g.Origin),
		nonZero3(k, "x_axis", g.XAxis),
		nonZero3(k, "y_axis", g.YAxis),
		nonZero3(k, "z_axis", g.ZAxis),
		notParallel3(k, "y_axis", "x_axis", g.YAxis, g.XAxis),
		notParallel3(k, "z_axis", "x_axis", g.ZAxis, g.XAxis),
		notParallel3(k, "z_axis", "y_axis", g.ZAxis, g.YAxis),
		positive(k, "neg_len", g.NegLen),
		positive(k, "pos_len", g.PosLen),
	)
}

func validateLine3D(g Line3D) error {
	k := g.Kind()
	return check(
		finiteVec3(k, "v1", g.V1),
		finiteVec3(k, "v2", g.V2),
		finiteColor(k, "color", g.Color),
	)
}

func validateTriangle(g Triangle) error {
	k := g.Kind()
	return check(
		finiteVec3(k, "v1", g.V1),
		finiteVec3(k, "v2", g.V2),
		finiteVec3(k, "v3", g.V3),
		func() error {
			e1 := g.V2.Sub(g.V1)
			e2 := g.V3.Sub(g.V1)
			if e1.Cross(e2).Length() <= eps*e1.Length()*e2.Length() {
				return invalid(k, "v3", "is collinear with v1 and v2")
			}
			return nil
		},
		finiteColor(k, "line_color", g.LineColor),
		finiteColor(k, "tri_color", g.TriColor),
		drawable(k, g.CellType),
	)
}

func validatePlane(g Plane) error {
	k := g.Kind()
	return check(
		finiteVec3(k, "origin", g.Origin),
		nonZero3(k, "x_axis", g.XAxis),
		nonZero3(k, "y_axis", g.YAxis),
		notParallel3(k, "y_axis", "x_axis", g.YAxis, g.XAxis),
		finiteScalar(k, "x_min", g.XMin),
		finiteScalar(k, "x_max", g.XMax),
		finiteScalar(k, "y_min", g.YMin),
		finiteScalar(k, "y_max", g.YMax),
		func() error {
			if g.XMin >= g.XMax {
				return invalid(k, "x_max", "must be > x_min (%v), got %v", g.XMin, g.XMax)
			}
			if g.YMin >= g.YMax {
				return invalid(k, "y_max", "must be > y_min (%v), got %v", g.YMin, g.YMax)
			}
			return nil
		},
		finiteColor(k, "line_color", g.LineColor),
		finiteColor(k, "tri_color", g.TriColor),
		drawable(k, g.CellType),
	)
}

func validateCuboid(g Cuboid) error {
	k := g.Kind()
	return check(
		finiteVec3(k, "origin", g.Origin),
		nonZero3(k, "x_axis", g.XAxis),
		nonZero3(k, "y_axis", g.YAxis),
		nonZero3(k, "z_axis", g.ZAxis),
		notParallel3(k, "y_axis", "x_axis", g.YAxis, g.XAxis),
		func() error {
			triple := g.XAxis.Cross(g.YAxis).Dot(g.ZAxis)
			if math32.Abs(triple) <= eps*g.XAxis.Length()*g.YAxis.Length()*g.ZAxis.Length() {
				return invalid(k, "z_axis", "is coplanar with x_axis and y_axis")
			}
			return nil
		},
		positive(k, "lenx", g.LenX),
		positive(k, "leny", g.LenY),
		positive(k, "lenz", g.LenZ),
		finiteColor(k, "line_color", g.LineColor),
		finiteColor(k, "tri_color", g.TriColor),
		drawable(k, g.CellType),
	)
}

func validateCylinder(g Cylinder) error {
	k := g.Kind()
	return check(
		finiteVec3(k, "origin", g.Origin),
		nonZero3(k, "axis", g.Axis),
		positive(k, "radius", g.Radius),
		positive(k, "height", g.Height),
		subdivisions(k, "num_sides", g.NumSides),
		finiteColor(k, "line_color", g.LineColor),
		finiteColor(k, "tri_color", g.TriColor),
		drawable(k, g.CellType),
	)
}

func validateDisc(g Disc) error {
	k := g.Kind()
	return check(
		finiteVec3(k, "origin", g.Origin),
		nonZero3(k, "axis", g.Axis),
		positive(k, "radius", g.Radius),
		subdivisions(k, "num_sides", g.NumSides),
		finiteColor(k, "line_color", g.LineColor),
		finiteColor(k, "tri_color", g.TriColor),
		drawable(k, g.CellType),
	)
}

func validateSphere(g Sphere) error {
	k := g.Kind()
	return check(
		finiteVec3(k, "origin", g.Origin),
		nonZero3(k, "axis", g.Axis),
		positive(k, "radius", g.Radius),
		subdivisions(k, "n_lat", g.NLat),
		subdivisions(k, "n_long", g.NLong),
		func() error {
			if n := (uint64(g.NLat) + 1) * uint64(g.NLong); n > maxGridVertices {
				return invalid(k, "n_long", "n_lat x n_long grid needs %d vertices, limit is %d", n, maxGridVertices)
			}
			return nil
		},
		finiteColor(k, "line_color", g.LineColor),
		finiteColor(k, "tri_color", g.TriColor),
		drawable(k, g.CellType),
	)
}

func validateMesh(k Kind, dim Dim, vertices []float32, indices []uint32, cell common.CellType) error {
	return check(
		drawable(k, cell),
		indexable(k, "vertices", len(vertices)/dim.Stride()),
		indexable(k, "indices", len(indices)),
		func() error {
			stride := dim.Stride()
			if len(vertices) == 0 {
				return invalid(k, "vertices", "must not be empty")
			}
			if len(vertices)%stride != 0 {
				return invalid(k, "vertices", "length %d is not a multiple of %d", len(vertices), stride)
			}
			for i, f := range vertices {
				if math32.IsNaN(f) || math32.IsInf(f, 0) {
					return invalid(k, "vertices", "value %d must be finite, got %v", i, f)
				}
			}
			return nil
		},
		func() error {
			if len(indices) == 0 {
				return invalid(k, "indices", "must not be empty")
			}
			per := cell.IndicesPerPrimitive()
			if len(indices)%per != 0 {
				return invalid(k, "indices", "length %d is not a multiple of %d for %s", len(indices), per, cell)
			}
			count := uint32(len(vertices) / dim.Stride())
			for i, idx := range indices {
				if idx >= count {
					return invalid(k, "indices", "index %d at position %d is out of range for %d vertices", idx, i, count)
				}
			}
			return nil
		},
	)
}
