package assets

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean earth radius used for parcel areas.
const EarthRadiusMeters = 6371008.8

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func validPolygon(poly geom.Polygon) error {
	if len(poly) == 0 || len(poly[0]) < 3 {
		return fmt.Errorf("%w: polygon needs an outer ring of at least 3 points", ErrGeometry)
	}
	for _, ring := range poly {
		for _, p := range ring {
			if !finite(p.X) || !finite(p.Y) {
				return fmt.Errorf("%w: non-finite vertex", ErrGeometry)
			}
		}
	}
	return nil
}

// GridCenters splits the bounding box of poly into n by n cells and returns
// the [lon, lat] centre of every cell whose centre lies inside or on the
// edge of poly. Cells are visited column by column: x outer, y inner.
func GridCenters(poly geom.Polygon, n int) ([][]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: grid size %d", ErrGeometry, n)
	}
	if err := validPolygon(poly); err != nil {
		return nil, err
	}
	b := poly.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty bounds", ErrGeometry)
	}
	w := (b.Max.X - b.Min.X) / float64(n)
	h := (b.Max.Y - b.Min.Y) / float64(n)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: degenerate bounds", ErrGeometry)
	}

	out := make([][]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			p := geom.Point{X: b.Min.X + w*(float64(i)+0.5), Y: b.Min.Y + h*(float64(j)+0.5)}
			if p.Within(poly) != geom.Outside {
				out = append(out, []float64{p.X, p.Y})
			}
		}
	}
	return out, nil
}

// AreaHectares returns the geodesic area enclosed by the outer ring of poly,
// whose points are [lon, lat] degrees. Holes are subtracted.
func AreaHectares(poly geom.Polygon) (float64, error) {
	if err := validPolygon(poly); err != nil {
		return 0, err
	}
	var steradians float64
	for i, ring := range poly {
		loop := ringLoop(ring)
		if loop == nil {
			continue
		}
		if i == 0 {
			steradians += loop.Area()
		} else {
			steradians -= loop.Area()
		}
	}
	if steradians < 0 {
		steradians = 0
	}
	return steradians * EarthRadiusMeters * EarthRadiusMeters / 10000, nil
}

func ringLoop(ring []geom.Point) *s2.Loop {
	if len(ring) > 1 && ring[0].Equals(ring[len(ring)-1]) {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return nil
	}
	pts := make([]s2.Point, len(ring))
	for i, p := range ring {
		pts[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(p.Y, p.X))
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop
}
