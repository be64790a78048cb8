package weather

import (
	"context"
	"fmt"

	"github.com/ctessum/requestcache"

	"farmgrid/internal/grid"
)

// Reading is a cached lookup result. Err is set when Sample is the fallback.
type Reading struct {
	Sample Sample
	Err    error
}

type lookup struct {
	coord grid.Coord
}

// Cache shares per-cell forecasts between the weather and yield batches of
// one generation. Concurrent lookups for the same key are collapsed into a
// single upstream request, and failures are remembered for the generation.
type Cache struct {
	rc *requestcache.Cache
}

// NewCache returns a cache in front of f with at most workers requests in
// flight and entries results retained.
func NewCache(f Forecaster, workers, entries int) *Cache {
	if workers <= 0 {
		workers = 1
	}
	if entries <= 0 {
		entries = 1
	}
	// The process func never reports an error to requestcache: duplicate
	// waiters are only released on the success path, so the error travels
	// inside the Reading.
	process := func(ctx context.Context, payload interface{}) (interface{}, error) {
		l := payload.(lookup)
		s, err := f.Forecast(ctx, l.coord)
		if err != nil {
			return Reading{Sample: Fallback, Err: err}, nil
		}
		return Reading{Sample: s}, nil
	}
	return &Cache{
		rc: requestcache.NewCache(process, workers,
			requestcache.Deduplicate(), requestcache.Memory(entries)),
	}
}

// Lookup returns the reading for c in generation gen. Invalid coordinates
// resolve to the fallback without touching the forecaster.
func (c *Cache) Lookup(ctx context.Context, gen uint64, coord grid.Coord) Reading {
	if !coord.Valid() {
		return Reading{Sample: Fallback, Err: ErrInvalidCoordinate}
	}
	key := fmt.Sprintf("%d_%.6f_%.6f", gen, coord.Lat, coord.Lon)
	res, err := c.rc.NewRequest(ctx, lookup{coord: coord}, key).Result()
	if err != nil {
		return Reading{Sample: Fallback, Err: err}
	}
	return res.(Reading)
}

// Requests reports how many requests reached each cache layer. The last
// element counts requests that reached the forecaster.
func (c *Cache) Requests() []int { return c.rc.Requests() }
