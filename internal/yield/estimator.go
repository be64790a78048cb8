package yield

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"farmgrid/internal/grid"
	"farmgrid/internal/logging"
	"farmgrid/internal/weather"
)

// Status tracks whether a Grid holds resolved data.
type Status int

const (
	Empty Status = iota
	Loading
	Ready
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "empty"
	}
}

const (
	LoadingCrop  = "Loading..."
	LoadingValue = 10.0
)

// ErrorEntry is stored for cells whose prediction failed.
var ErrorEntry = Ranked{Crop: "Error", Value: 0}

// Grid is the best crop and its yield per cell.
type Grid struct {
	Crop     grid.Matrix[string]
	Value    grid.Matrix[float64]
	Failed   grid.Matrix[bool]
	Errors   int
	Nutrient Nutrient
	Status   Status
}

// LoadingGrid is shown while a batch for n is in flight.
func LoadingGrid(n Nutrient) Grid {
	return Grid{
		Crop:     grid.Filled(LoadingCrop),
		Value:    grid.Filled(LoadingValue),
		Nutrient: n,
		Status:   Loading,
	}
}

// Best returns the stored entry for cell.
func (g *Grid) Best(c grid.Cell) Ranked {
	return Ranked{Crop: g.Crop.At(c), Value: g.Value.At(c)}
}

func (g *Grid) set(c grid.Cell, r Ranked) {
	g.Crop.Set(c, r.Crop)
	g.Value.Set(c, r.Value)
}

// Estimator runs one prediction per cell, reading weather from the shared cache.
type Estimator struct {
	Weather   *weather.Cache
	Predictor Predictor
	// Limit bounds the cells processed at once. Zero means unbounded.
	Limit int
}

type cellResult struct {
	cell grid.Cell
	best Ranked
	err  error
}

// Estimate predicts every cell of coords for nutrient. A failed cell holds
// ErrorEntry; the batch itself never fails. A weather failure does not fail
// the cell: the fallback sample is submitted instead.
func (e *Estimator) Estimate(ctx context.Context, coords grid.CoordinateMatrix, n Nutrient, gen uint64) Grid {
	log := logging.For("yield")

	results := make(chan cellResult, grid.Cells)
	var g errgroup.Group
	if e.Limit > 0 {
		g.SetLimit(e.Limit)
	}
	coords.Each(func(cell grid.Cell, c grid.Coord) {
		g.Go(func() error {
			best, err := e.predictCell(ctx, gen, c, n)
			results <- cellResult{cell: cell, best: best, err: err}
			return nil
		})
	})
	g.Wait()
	close(results)

	out := Grid{Nutrient: n, Status: Ready}
	for r := range results {
		if r.err != nil {
			out.set(r.cell, ErrorEntry)
			out.Failed.Set(r.cell, true)
			c := coords.At(r.cell)
			log.WithError(r.err).WithFields(logrus.Fields{
				"row": r.cell.Row, "col": r.cell.Col, "lat": c.Lat, "lon": c.Lon,
			}).Warn("prediction failed")
			continue
		}
		out.set(r.cell, r.best)
	}
	out.Errors = grid.Count(&out.Failed, func(b bool) bool { return b })
	log.WithFields(logrus.Fields{
		"generation": gen, "nutrient": n, "errors": out.Errors,
	}).Info("yield batch complete")
	return out
}

func (e *Estimator) predictCell(ctx context.Context, gen uint64, c grid.Coord, n Nutrient) (Ranked, error) {
	if !c.Valid() {
		return Ranked{}, ErrInvalidCoordinate
	}
	w := e.Weather.Lookup(ctx, gen, c).Sample
	ranked, err := e.Predictor.Predict(ctx, Request{
		Humidity:    w.Humidity,
		Temperature: w.Temperature,
		Nutrient:    n,
	})
	if err != nil {
		return Ranked{}, err
	}
	if len(ranked) == 0 {
		return Ranked{}, ErrBadResponse
	}
	return ranked[0], nil
}
