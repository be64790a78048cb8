package engine

import (
	"fmt"
	"math"

	"farmgrid/internal/yield"
)

// NA marks tooltip values that are not known yet.
const NA = "N/A"

// Tooltip describes the hovered cell.
type Tooltip struct {
	Yield       string
	Crop        string
	Coordinate  string
	Temperature string
	Humidity    string
	Wind        string
}

// Lines renders the tooltip one field per line.
func (t Tooltip) Lines() []string {
	return []string{
		"Yield: " + t.Yield,
		"Best Plant: " + t.Crop,
		"Coord: " + t.Coordinate,
		"Temp: " + t.Temperature + "°C",
		"Humidity: " + t.Humidity + "%",
		"Wind: " + t.Wind + " m/s",
	}
}

func formatOne(v float64, known bool) string {
	if !known || math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return fmt.Sprintf("%.1f", v)
}

// Tooltip returns the tooltip for the hovered cell. ok is false when no
// cell is hovered.
func (e *Engine) Tooltip() (t Tooltip, ok bool) {
	s := &e.state
	if !s.Pick.HasHover {
		return Tooltip{}, false
	}
	c := s.Pick.Hovered

	t.Yield, t.Crop = NA, NA
	if s.Yield.Status != yield.Empty {
		best := s.Yield.Best(c)
		t.Crop = best.Crop
		if !math.IsNaN(best.Value) && !math.IsInf(best.Value, 0) {
			if s.HectaresPerCell > 0 {
				t.Yield = fmt.Sprintf("%.2f kcal/tonnes", best.Value*s.HectaresPerCell)
			} else {
				t.Yield = fmt.Sprintf("%.2f", best.Value)
			}
		}
	}

	t.Coordinate = NA
	if s.Loaded {
		coord := s.Coords.At(c)
		t.Coordinate = fmt.Sprintf("[%.4f, %.4f]", coord.Lat, coord.Lon)
	}

	w := s.Weather.At(c)
	t.Temperature = formatOne(w.Temperature, s.WeatherReady)
	t.Humidity = formatOne(w.Humidity, s.WeatherReady)
	t.Wind = formatOne(w.WindSpeed, s.WeatherReady)
	return t, true
}
