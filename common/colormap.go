package common

import "github.com/chewxy/math32"

// Colormap maps a scalar in [0, 1] to a color.
type Colormap interface {
	// Color returns the color for v. Values outside [0, 1] are clamped.
	Color(v float32) Color
}

// lutColormap is a Colormap backed by a fixed lookup table.
type lutColormap struct {
	table [256]Color
}

var _ Colormap = &lutColormap{}

func (c *lutColormap) Color(v float32) Color {
	if math32.IsNaN(v) {
		v = 0
	}
	v = math32.Max(0, math32.Min(1, v))
	return c.table[int(v*255)]
}

// viridisCoefficients is the degree-6 polynomial fit of matplotlib's viridis map,
// lowest order first, one row per channel (r, g, b).
var viridisCoefficients = [3][7]float32{
	{0.2777273272234177, 0.1050930431085774, -0.3308618287255563, -4.634230498983486, 6.228269936347081, 4.776384997670288, -5.435455855934631},
	{0.005407344544966578, 1.404613529898575, 0.214847559468213, -5.799100973351585, 14.17993336680509, -13.74514537774601, 4.645852612178535},
	{0.3340998053353061, 1.384590162594685, 0.09509516302823659, -19.33244095627987, 56.69055260068105, -65.35303263337234, 26.3124352495832},
}

// Viridis is the 256-entry perceptually uniform viridis colormap.
var Viridis Colormap = newViridis()

func newViridis() *lutColormap {
	c := &lutColormap{}
	for i := range c.table {
		t := float32(i) / 255
		var rgb [3]float32
		for ch, coeffs := range viridisCoefficients {
			acc := coeffs[6]
			for k := 5; k >= 0; k-- {
				acc = acc*t + coeffs[k]
			}
			rgb[ch] = math32.Max(0, math32.Min(1, acc))
		}
		c.table[i] = Color{R: rgb[0], G: rgb[1], B: rgb[2]}
	}
	return c
}

// Normalize rescales values linearly into [0, 1] using their min and max.
// A constant field maps to all zeros.
func Normalize(values []float32) []float32 {
	out := make([]float32, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math32.Min(lo, v)
		hi = math32.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}
