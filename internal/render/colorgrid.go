// Package render turns yield intensities into per-cell colours and, with the
// ebiten build tag, paints grids onto the screen.
package render

import (
	"image/color"
	"math"

	"farmgrid/internal/grid"
)

// Range is the span of valid values in a layer.
type Range struct {
	Min float64
	Max float64
}

// RangeOf scans m, skipping NaN and infinite cells. Without any valid cell
// the range is [0, 1].
func RangeOf(m *grid.Matrix[float64]) Range {
	r := Range{Min: math.Inf(1), Max: math.Inf(-1)}
	found := false
	m.Each(func(_ grid.Cell, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
		found = true
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	})
	if !found {
		return Range{Min: 0, Max: 1}
	}
	return r
}

// Span returns Max-Min.
func (r Range) Span() float64 { return r.Max - r.Min }

// Normalize maps v into [0, 1]. A zero-width range maps its single value to
// 1 and anything else to 0. NaN is coloured as the minimum.
func (r Range) Normalize(v float64) float64 {
	if math.IsNaN(v) {
		v = r.Min
	}
	span := r.Span()
	if span == 0 {
		if v == r.Min {
			return 1
		}
		return 0
	}
	return clamp01((v - r.Min) / span)
}

// Gradient interpolates from Worst at 0 to Best at 1.
type Gradient struct {
	Worst color.RGBA
	Best  color.RGBA
}

// DefaultGradient runs from red to green.
var DefaultGradient = Gradient{
	Worst: color.RGBA{R: 0xff, A: 0xff},
	Best:  color.RGBA{G: 0xff, A: 0xff},
}

// At returns the colour at t, clamped to [0, 1].
func (g Gradient) At(t float64) color.RGBA {
	return lerpRGBA(g.Worst, g.Best, t)
}

// Legend returns the anchor colours shown beside the grid.
func (g Gradient) Legend() (best, worst color.RGBA) {
	return g.Best, g.Worst
}

// ColorGrid is the colour of every cell plus the range it was normalised over.
type ColorGrid struct {
	Colors grid.Matrix[color.RGBA]
	Norm   grid.Matrix[float64]
	Range  Range
}

// Colorize computes the colour of every cell of values.
func Colorize(values *grid.Matrix[float64], g Gradient) ColorGrid {
	out := ColorGrid{Range: RangeOf(values)}
	values.Each(func(c grid.Cell, v float64) {
		t := out.Range.Normalize(v)
		out.Norm.Set(c, t)
		out.Colors.Set(c, g.At(t))
	})
	return out
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
