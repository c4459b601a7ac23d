// package common contains the plain value types shared by the viewer: vectors, colors, and the cell topology enum.
// They are not interface-wrapped structs, just plain structs passed by value.
package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// Vec2 is an immutable 2D vector.
type Vec2 struct {
	X float32 `json:"x" yaml:"x" toml:"x"`
	Y float32 `json:"y" yaml:"y" toml:"y"`
}

// Vec3 is an immutable 3D vector.
type Vec3 struct {
	X float32 `json:"x" yaml:"x" toml:"x"`
	Y float32 `json:"y" yaml:"y" toml:"y"`
	Z float32 `json:"z" yaml:"z" toml:"z"`
}

// V2 is shorthand for constructing a Vec2.
func V2(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

// V3 is shorthand for constructing a Vec3.
func V3(x, y, z float32) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float32   { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Length() float32      { return math32.Sqrt(v.Dot(v)) }
func (v Vec2) IsFinite() bool       { return finite(v.X) && finite(v.Y) }
func (v Vec2) Cross(o Vec2) float32 { return v.X*o.Y - v.Y*o.X }
func (v Vec2) Component(i int) float32 {
	if i == 0 {
		return v.X
	}
	return v.Y
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Neg() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float32   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Length() float32      { return math32.Sqrt(v.Dot(v)) }
func (v Vec3) IsFinite() bool       { return finite(v.X) && finite(v.Y) && finite(v.Z) }

// Cross returns the right-handed cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Component returns the i-th component (0=X, 1=Y, 2=Z).
func (v Vec3) Component(i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func (v *Vec3) setComponent(i int, f float32) {
	switch i {
	case 0:
		v.X = f
	case 1:
		v.Y = f
	default:
		v.Z = f
	}
}

// Color is an RGB color with components nominally in [0, 1]. There is no alpha channel.
type Color struct {
	R float32 `json:"r" yaml:"r" toml:"r"`
	G float32 `json:"g" yaml:"g" toml:"g"`
	B float32 `json:"b" yaml:"b" toml:"b"`
}

// RGB is shorthand for constructing a Color.
func RGB(r, g, b float32) Color { return Color{R: r, G: g, B: b} }

// Named palette.
var (
	Red     = Color{1, 0, 0}
	Green   = Color{0, 1, 0}
	Blue    = Color{0, 0, 1}
	Yellow  = Color{1, 1, 0}
	Orange  = Color{1, 0.5, 0}
	Purple  = Color{0.5, 0, 1}
	Cyan    = Color{0, 1, 1}
	Magenta = Color{1, 0, 1}
	Lime    = Color{0.5, 1, 0}
	Pink    = Color{1, 0.75, 0.79}
	Teal    = Color{0, 0.5, 0.5}
	Navy    = Color{0, 0, 0.5}
	Maroon  = Color{0.5, 0, 0}
	Olive   = Color{0.5, 0.5, 0}
	Brown   = Color{0.6, 0.4, 0.2}
	Black   = Color{0, 0, 0}
	Gray    = Color{0.5, 0.5, 0.5}
	White   = Color{1, 1, 1}
)

var palette = map[string]Color{
	"red": Red, "green": Green, "blue": Blue, "yellow": Yellow, "orange": Orange,
	"purple": Purple, "cyan": Cyan, "magenta": Magenta, "lime": Lime, "pink": Pink,
	"teal": Teal, "navy": Navy, "maroon": Maroon, "olive": Olive, "brown": Brown,
	"black": Black, "gray": Gray, "grey": Gray, "white": White,
}

// ColorByName looks up a palette color by case-insensitive name.
//
// Parameters:
//   - name: the palette name, e.g. "orange"
//
// Returns:
//   - Color: the palette color, or the zero Color if not found
//   - bool: true if the name is in the palette
func ColorByName(name string) (Color, bool) {
	c, ok := palette[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Array returns the color as a [3]float32 in r, g, b order.
func (c Color) Array() [3]float32 { return [3]float32{c.R, c.G, c.B} }

// IsFinite reports whether every component is a finite number.
func (c Color) IsFinite() bool { return finite(c.R) && finite(c.G) && finite(c.B) }

// CellType selects the topology a primitive is tessellated into and which of its two colors is drawn.
type CellType uint32

const (
	// CellTypeNone is the zero value and is never a valid topology for a stored entity.
	CellTypeNone CellType = iota
	// CellTypeLine tessellates into line segments, two indices per primitive, drawn with the line color.
	CellTypeLine
	// CellTypeTriangle tessellates into faces, three indices per primitive, drawn with the triangle color.
	CellTypeTriangle
)

func (c CellType) String() string {
	switch c {
	case CellTypeLine:
		return "line"
	case CellTypeTriangle:
		return "triangle"
	default:
		return "none"
	}
}

// IndicesPerPrimitive returns 2 for LINE, 3 for TRIANGLE and 0 otherwise.
func (c CellType) IndicesPerPrimitive() int {
	switch c {
	case CellTypeLine:
		return 2
	case CellTypeTriangle:
		return 3
	default:
		return 0
	}
}

// ParseCellType parses "none", "line" or "triangle" (case-insensitive).
func ParseCellType(s string) (CellType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CellTypeNone, nil
	case "line", "lines":
		return CellTypeLine, nil
	case "triangle", "triangles", "tri":
		return CellTypeTriangle, nil
	}
	return CellTypeNone, fmt.Errorf("unknown cell type %q", s)
}

func (c CellType) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts either the string name or the numeric value.
func (c *CellType) UnmarshalJSON(data []byte) error {
	var n uint32
	if err := json.Unmarshal(data, &n); err == nil {
		if n > uint32(CellTypeTriangle) {
			return fmt.Errorf("cell type %d out of range", n)
		}
		*c = CellType(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cell type must be a string or integer: %w", err)
	}
	parsed, err := ParseCellType(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func finite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}
