// Package weather fetches per-cell forecasts and reduces them into the
// five-layer weather grid that drives effects and the summary overlay.
package weather

import (
	"errors"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInvalidCoordinate is returned for non-finite coordinates. No request
	// is made for them.
	ErrInvalidCoordinate = errors.New("weather: invalid coordinate")
	// ErrBadResponse is returned when the forecast payload cannot be used.
	ErrBadResponse = errors.New("weather: bad forecast response")
)

// DefaultWindow is the number of leading hourly samples averaged per metric.
const DefaultWindow = 5

// Sample is the reduced weather for one cell.
type Sample struct {
	Temperature   float64
	Humidity      float64
	Precipitation float64
	CloudCover    float64
	WindSpeed     float64
}

// Fallback is substituted for cells whose forecast cannot be obtained.
var Fallback = Sample{
	Temperature:   20,
	Humidity:      50,
	Precipitation: 0,
	CloudCover:    25,
	WindSpeed:     0,
}

// leadingMean averages the first window entries of series. Nil entries count
// as zero. An empty series averages to zero.
func leadingMean(series []*float64, window int) float64 {
	if window > len(series) {
		window = len(series)
	}
	if window <= 0 {
		return 0
	}
	vals := make([]float64, window)
	for i, v := range series[:window] {
		if v != nil {
			vals[i] = *v
		}
	}
	return stat.Mean(vals, nil)
}
