package weather

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"farmgrid/internal/grid"
	"farmgrid/internal/logging"
)

// Grid is the per-cell weather of one refresh. All layers are rebuilt together.
type Grid struct {
	Temperature   grid.Matrix[float64]
	Humidity      grid.Matrix[float64]
	Precipitation grid.Matrix[float64]
	CloudCover    grid.Matrix[float64]
	WindSpeed     grid.Matrix[float64]

	// Fallback marks cells that hold the Fallback sample.
	Fallback  grid.Matrix[bool]
	Fallbacks int

	// Summary holds the mean of every metric over all cells.
	Summary Sample
}

// At returns the sample stored for cell.
func (g *Grid) At(c grid.Cell) Sample {
	return Sample{
		Temperature:   g.Temperature.At(c),
		Humidity:      g.Humidity.At(c),
		Precipitation: g.Precipitation.At(c),
		CloudCover:    g.CloudCover.At(c),
		WindSpeed:     g.WindSpeed.At(c),
	}
}

// Set stores s for cell.
func (g *Grid) Set(c grid.Cell, s Sample) {
	g.Temperature.Set(c, s.Temperature)
	g.Humidity.Set(c, s.Humidity)
	g.Precipitation.Set(c, s.Precipitation)
	g.CloudCover.Set(c, s.CloudCover)
	g.WindSpeed.Set(c, s.WindSpeed)
}

func (g *Grid) summarize() {
	g.Summary = Sample{
		Temperature:   stat.Mean(g.Temperature.Values(), nil),
		Humidity:      stat.Mean(g.Humidity.Values(), nil),
		Precipitation: stat.Mean(g.Precipitation.Values(), nil),
		CloudCover:    stat.Mean(g.CloudCover.Values(), nil),
		WindSpeed:     stat.Mean(g.WindSpeed.Values(), nil),
	}
	g.Fallbacks = grid.Count(&g.Fallback, func(b bool) bool { return b })
}

// Aggregator builds a Grid with one cache lookup per cell.
type Aggregator struct {
	Cache *Cache
	// Limit bounds the lookups issued at once. Zero means unbounded.
	Limit int
}

type cellResult struct {
	cell    grid.Cell
	reading Reading
}

// Aggregate looks up every cell of coords and returns the completed grid.
// Per-cell failures become Fallback; the batch itself never fails.
func (a *Aggregator) Aggregate(ctx context.Context, coords grid.CoordinateMatrix, gen uint64) Grid {
	log := logging.For("weather")

	results := make(chan cellResult, grid.Cells)
	var g errgroup.Group
	if a.Limit > 0 {
		g.SetLimit(a.Limit)
	}
	coords.Each(func(cell grid.Cell, c grid.Coord) {
		g.Go(func() error {
			results <- cellResult{cell: cell, reading: a.Cache.Lookup(ctx, gen, c)}
			return nil
		})
	})
	g.Wait()
	close(results)

	var out Grid
	for r := range results {
		out.Set(r.cell, r.reading.Sample)
		if r.reading.Err != nil {
			out.Fallback.Set(r.cell, true)
			c := coords.At(r.cell)
			log.WithError(r.reading.Err).WithFields(logrus.Fields{
				"row": r.cell.Row, "col": r.cell.Col, "lat": c.Lat, "lon": c.Lon,
			}).Warn("using fallback weather")
		}
	}
	out.summarize()
	log.WithFields(logrus.Fields{
		"generation": gen, "fallbacks": out.Fallbacks,
	}).Info("weather batch complete")
	return out
}
