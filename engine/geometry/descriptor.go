package geometry

import "github.com/Carmen-Shannon/oxy-viewer/common"

// Dim identifies which viewer a descriptor or entity belongs to.
type Dim int

const (
	// Dim2 entities carry 8 floats per vertex: position(2), line color(3), triangle color(3).
	Dim2 Dim = 2
	// Dim3 entities carry 12 floats per vertex: position(3), normal(3), line color(3), triangle color(3).
	Dim3 Dim = 3
)

// Stride returns the number of float32 values per interleaved vertex.
func (d Dim) Stride() int {
	if d == Dim3 {
		return 12
	}
	return 8
}

func (d Dim) String() string {
	if d == Dim3 {
		return "d3"
	}
	return "d2"
}

// Kind enumerates the closed set of primitive descriptors.
type Kind int

const (
	KindAxes2D Kind = iota
	KindLine2D
	KindSquare
	KindCircle
	KindMesh2D
	KindAxes3D
	KindLine3D
	KindTriangle
	KindPlane
	KindCuboid
	KindCylinder
	KindDisc
	KindSphere
	KindMesh3D
)

var kindNames = [...]string{
	KindAxes2D:   "axes",
	KindLine2D:   "line",
	KindSquare:   "square",
	KindCircle:   "circle",
	KindMesh2D:   "mesh",
	KindAxes3D:   "axes",
	KindLine3D:   "line",
	KindTriangle: "triangle",
	KindPlane:    "plane",
	KindCuboid:   "cuboid",
	KindCylinder: "cylinder",
	KindDisc:     "disc",
	KindSphere:   "sphere",
	KindMesh3D:   "mesh",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Descriptor is the sum type over every primitive the viewer can tessellate.
// The set is closed: only the types in this package implement it.
type Descriptor interface {
	Kind() Kind
	Dim() Dim
	descriptor()
}

// Axes2D draws one segment per axis through Origin, NegLen behind and PosLen ahead.
// Axis vectors are used as given, so their magnitude scales the drawn length.
type Axes2D struct {
	Origin common.Vec2 `json:"origin"`
	XAxis  common.Vec2 `json:"x_axis"`
	YAxis  common.Vec2 `json:"y_axis"`
	NegLen float32     `json:"neg_len"`
	PosLen float32     `json:"pos_len"`
}

type Line2D struct {
	V1    common.Vec2  `json:"v1"`
	V2    common.Vec2  `json:"v2"`
	Color common.Color `json:"color"`
}

// Square is a parallelogram spanned by XAxis*LenX and YAxis*LenY from Origin.
type Square struct {
	Origin    common.Vec2     `json:"origin"`
	XAxis     common.Vec2     `json:"x_axis"`
	YAxis     common.Vec2     `json:"y_axis"`
	LenX      float32         `json:"lenx"`
	LenY      float32         `json:"leny"`
	LineColor common.Color    `json:"line_color"`
	TriColor  common.Color    `json:"tri_color"`
	CellType  common.CellType `json:"cell_type"`
}

type Circle struct {
	Center    common.Vec2     `json:"center"`
	Radius    float32         `json:"radius"`
	NumSides  uint32          `json:"num_sides"`
	LineColor common.Color    `json:"line_color"`
	TriColor  common.Color    `json:"tri_color"`
	CellType  common.CellType `json:"cell_type"`
}

// Mesh2D passes caller-built interleaved vertices (8 floats each) and indices through unchanged.
type Mesh2D struct {
	Vertices []float32       `json:"vertices"`
	Indices  []uint32        `json:"indices"`
	CellType common.CellType `json:"cell_type"`
}

type Axes3D struct {
	Origin common.Vec3 `json:"origin"`
	XAxis  common.Vec3 `json:"x_axis"`
	YAxis  common.Vec3 `json:"y_axis"`
	ZAxis  common.Vec3 `json:"z_axis"`
	NegLen float32     `json:"neg_len"`
	PosLen float32     `json:"pos_len"`
}

type Line3D struct {
	V1    common.Vec3  `json:"v1"`
	V2    common.Vec3  `json:"v2"`
	Color common.Color `json:"color"`
}

type Triangle struct {
	V1        common.Vec3     `json:"v1"`
	V2        common.Vec3     `json:"v2"`
	V3        common.Vec3     `json:"v3"`
	LineColor common.Color    `json:"line_color"`
	TriColor  common.Color    `json:"tri_color"`
	CellType  common.CellType `json:"cell_type"`
}

// Plane is the panel Origin + s*XAxis + t*YAxis for s in [XMin, XMax] and t in [YMin, YMax].
type Plane struct {
	Origin    common.Vec3     `json:"origin"`
	XAxis     common.Vec3     `json:"x_axis"`
	YAxis     common.Vec3     `json:"y_axis"`
	XMin      float32         `json:"x_min"`
	XMax      float32         `json:"x_max"`
	YMin      float32         `json:"y_min"`
	YMax      float32         `json:"y_max"`
	LineColor common.Color    `json:"line_color"`
	TriColor  common.Color    `json:"tri_color"`
	CellType  common.CellType `json:"cell_type"`
}

type Cuboid struct {
	Origin    common.Vec3     `json:"origin"`
	XAxis     common.Vec3     `json:"x_axis"`
	YAxis     common.Vec3     `json:"y_axis"`
	ZAxis     common.Vec3     `json:"z_axis"`
	LenX      float32         `json:"lenx"`
	LenY      float32         `json:"leny"`
	LenZ      float32         `json:"lenz"`
	LineColor common.Color    `json:"line_color"`
	TriColor  common.Color    `json:"tri_color"`
	CellType  common.CellType `json:"cell_type"`
}

// Cylinder has its bottom face centered at Origin and its top face at Origin + Height along Axis.
// Open omits both end caps.
type Cylinder struct {
	Origin    common.Vec3     `json:"origin"`
	Axis      common.Vec3     `json:"axis"`
	Radius    float32         `json:"radius"`
	Height    float32         `json:"height"`
	NumSides  uint32          `json:"num_sides"`
	Open      bool            `json:"open"`
	LineColor common.Color    `json:"line_color"`
	TriColor  common.Color    `json:"tri_color"`
	CellType  common.CellType `json:"cell_type"`
}

// Disc is a filled circle centered at Origin in the plane normal to Axis.
type Disc struct {
	Origin    common.Vec3     `json:"origin"`
	Axis      common.Vec3     `json:"axis"`
	Radius    float32         `json:"radius"`
	NumSides  uint32          `json:"num_sides"`
	LineColor common.Color    `json:"line_color"`
	TriColor  common.Color    `json:"tri_color"`
	CellType  common.CellType `json:"cell_type"`
}

// Sphere is tessellated on an NLat x NLong latitude/longitude grid with its poles on Axis.
type Sphere struct {
	Origin    common.Vec3     `json:"origin"`
	Axis      common.Vec3     `json:"axis"`
	Radius    float32         `json:"radius"`
	NLat      uint32          `json:"n_lat"`
	NLong     uint32          `json:"n_long"`
	LineColor common.Color    `json:"line_color"`
	TriColor  common.Color    `json:"tri_color"`
	CellType  common.CellType `json:"cell_type"`
}

// Mesh3D passes caller-built interleaved vertices (12 floats each) and indices through unchanged.
type Mesh3D struct {
	Vertices []float32       `json:"vertices"`
	Indices  []uint32        `json:"indices"`
	CellType common.CellType `json:"cell_type"`
}

func (Axes2D) Kind() Kind   { return KindAxes2D }
func (Line2D) Kind() Kind   { return KindLine2D }
func (Square) Kind() Kind   { return KindSquare }
func (Circle) Kind() Kind   { return KindCircle }
func (Mesh2D) Kind() Kind   { return KindMesh2D }
func (Axes3D) Kind() Kind   { return KindAxes3D }
func (Line3D) Kind() Kind   { return KindLine3D }
func (Triangle) Kind() Kind { return KindTriangle }
func (Plane) Kind() Kind    { return KindPlane }
func (Cuboid) Kind() Kind   { return KindCuboid }
func (Cylinder) Kind() Kind { return KindCylinder }
func (Disc) Kind() Kind     { return KindDisc }
func (Sphere) Kind() Kind   { return KindSphere }
func (Mesh3D) Kind() Kind   { return KindMesh3D }

func (Axes2D) Dim() Dim   { return Dim2 }
func (Line2D) Dim() Dim   { return Dim2 }
func (Square) Dim() Dim   { return Dim2 }
func (Circle) Dim() Dim   { return Dim2 }
func (Mesh2D) Dim() Dim   { return Dim2 }
func (Axes3D) Dim() Dim   { return Dim3 }
func (Line3D) Dim() Dim   { return Dim3 }
func (Triangle) Dim() Dim { return Dim3 }
func (Plane) Dim() Dim    { return Dim3 }
func (Cuboid) Dim() Dim   { return Dim3 }
func (Cylinder) Dim() Dim { return Dim3 }
func (Disc) Dim() Dim     { return Dim3 }
func (Sphere) Dim() Dim   { return Dim3 }
func (Mesh3D) Dim() Dim   { return Dim3 }

func (Axes2D) descriptor()   {}
func (Line2D) descriptor()   {}
func (Square) descriptor()   {}
func (Circle) descriptor()   {}
func (Mesh2D) descriptor()   {}
func (Axes3D) descriptor()   {}
func (Line3D) descriptor()   {}
func (Triangle) descriptor() {}
func (Plane) descriptor()    {}
func (Cuboid) descriptor()   {}
func (Cylinder) descriptor() {}
func (Disc) descriptor()     {}
func (Sphere) descriptor()   {}
func (Mesh3D) descriptor()   {}
