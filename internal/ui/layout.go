// Package ui draws the viewer overlay: the weather summary, the yield
// legend, the hover tooltip and the nutrient panel. Layout and text are
// computed here without ebiten so they can be tested headless.
package ui

import (
	"fmt"
	"image"

	"farmgrid/internal/engine"
	"farmgrid/internal/render"
	"farmgrid/internal/yield"
)

const (
	panelPadding   = 12
	panelWidth     = 220
	lineHeight     = 36
	buttonHeight   = 28
	headerBaseline = 18
	textLine       = 16
	controlsTop    = panelPadding + headerBaseline + 14
	legendWidth    = 16
	legendHeight   = 160
)

func one(v float64, ok bool) string {
	if !ok {
		return engine.NA
	}
	return fmt.Sprintf("%.1f", v)
}

// SummaryLines is the field-wide weather panel text.
func SummaryLines(s *engine.State) []string {
	name := s.AssetName
	if name == "" {
		name = s.AssetID
	}
	if !s.Loaded {
		name = "no asset loaded"
	}
	w := s.Weather.Summary
	ok := s.WeatherReady
	lines := []string{
		"Field: " + name,
		"Temperature: " + one(w.Temperature, ok) + "°C",
		"Humidity: " + one(w.Humidity, ok) + "%",
		"Precipitation: " + one(w.Precipitation, ok) + " mm",
		"Cloud Coverage: " + one(w.CloudCover, ok) + "%",
		"Wind Speed: " + one(w.WindSpeed, ok) + " m/s",
	}
	switch {
	case s.WeatherLoading:
		lines = append(lines, "Weather: loading")
	case ok && s.Weather.Fallbacks > 0:
		lines = append(lines, fmt.Sprintf("Weather: %d cells estimated", s.Weather.Fallbacks))
	}
	status := s.Yield.Status.String()
	if s.YieldLoading {
		status = "loading"
	}
	lines = append(lines, fmt.Sprintf("Yield (%s): %s", s.Nutrient, status))
	if s.Yield.Errors > 0 {
		lines = append(lines, fmt.Sprintf("Prediction errors: %d", s.Yield.Errors))
	}
	return lines
}

// LegendLabels returns the captions for the top (best) and bottom (worst)
// of the yield legend.
func LegendLabels(r render.Range) (best, worst string) {
	return fmt.Sprintf("High %.2f", r.Max), fmt.Sprintf("Low %.2f", r.Min)
}

// Button is one clickable panel row.
type Button struct {
	Nutrient yield.Nutrient
	Rect     image.Rectangle
}

// NutrientPanel lays out one button per nutrient in a column whose top-left
// corner is at (X, Y).
type NutrientPanel struct {
	X, Y    int
	buttons []Button
}

// NewNutrientPanel places the panel at (x, y).
func NewNutrientPanel(x, y int) *NutrientPanel {
	p := &NutrientPanel{X: x, Y: y}
	for i, n := range yield.Nutrients() {
		top := y + controlsTop + i*lineHeight
		p.buttons = append(p.buttons, Button{
			Nutrient: n,
			Rect:     image.Rect(x+panelPadding, top, x+panelWidth-panelPadding, top+buttonHeight),
		})
	}
	return p
}

// Bounds is the area the panel covers.
func (p *NutrientPanel) Bounds() image.Rectangle {
	h := controlsTop + len(p.buttons)*lineHeight + panelPadding
	return image.Rect(p.X, p.Y, p.X+panelWidth, p.Y+h)
}

// Buttons returns the laid out buttons in nutrient order.
func (p *NutrientPanel) Buttons() []Button { return p.buttons }

// Hit returns the nutrient whose button contains (x, y).
func (p *NutrientPanel) Hit(x, y int) (yield.Nutrient, bool) {
	pt := image.Pt(x, y)
	for _, b := range p.buttons {
		if pt.In(b.Rect) {
			return b.Nutrient, true
		}
	}
	return "", false
}
