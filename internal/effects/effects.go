// Package effects classifies weather cells into cloud, rain and wind zones
// using per-metric percentile thresholds.
package effects

import (
	"math"
	"sort"

	"farmgrid/internal/grid"
	"farmgrid/internal/weather"
)

// Percentile is the sorted-rank fraction used for spread-out fields.
const Percentile = 0.95

// Thresholds are the per-metric cut-offs of one plan.
type Thresholds struct {
	Cloud         float64
	Precipitation float64
	Wind          float64
}

// Grid marks which cells show each effect. Rain implies Cloud.
type Grid struct {
	Cloud grid.Matrix[bool]
	Rain  grid.Matrix[bool]
	Wind  grid.Matrix[bool]

	Thresholds Thresholds
}

// Counts returns the number of cells marked for each effect.
func (g *Grid) Counts() (cloud, rain, wind int) {
	id := func(b bool) bool { return b }
	return grid.Count(&g.Cloud, id), grid.Count(&g.Rain, id), grid.Count(&g.Wind, id)
}

// Empty reports whether no cell carries any effect.
func (g *Grid) Empty() bool {
	c, r, w := g.Counts()
	return c == 0 && r == 0 && w == 0
}

// Threshold returns the effect cut-off for values. Only strictly positive
// values take part, +Inf included; NaN never does. Near-uniform fields, whose spread is under a tenth of
// the maximum, use 90% of the maximum; anything else uses the value at the
// 95th percentile rank. No positive values gives 0.
func Threshold(values []float64) float64 {
	pos := make([]float64, 0, len(values))
	for _, v := range values {
		if v > 0 {
			pos = append(pos, v)
		}
	}
	if len(pos) == 0 {
		return 0
	}
	sort.Float64s(pos)
	lo, hi := pos[0], pos[len(pos)-1]
	if hi-lo < 0.1*hi {
		return 0.9 * hi
	}
	return pos[int(math.Floor(Percentile*float64(len(pos))))]
}

func exceeds(v, threshold float64) bool { return v > 0 && v >= threshold }

// Plan derives the effect grid for w.
func Plan(w *weather.Grid) Grid {
	var out Grid
	out.Thresholds = Thresholds{
		Cloud:         Threshold(w.CloudCover.Values()),
		Precipitation: Threshold(w.Precipitation.Values()),
		Wind:          Threshold(w.WindSpeed.Values()),
	}
	t := out.Thresholds
	if t.Cloud <= 0 && t.Precipitation <= 0 && t.Wind <= 0 {
		return out
	}
	for r := 0; r < grid.Size; r++ {
		for c := 0; c < grid.Size; c++ {
			rain := exceeds(w.Precipitation[r][c], t.Precipitation)
			out.Rain[r][c] = rain
			out.Cloud[r][c] = rain || exceeds(w.CloudCover[r][c], t.Cloud)
			out.Wind[r][c] = exceeds(w.WindSpeed[r][c], t.Wind)
		}
	}
	return out
}
