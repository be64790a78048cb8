//go:build !ebiten

package ui

import (
	"farmgrid/internal/engine"
	"farmgrid/internal/render"
	"farmgrid/internal/scene"
)

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct {
	panel *NutrientPanel
}

// NewOverlay constructs a stub overlay. Only the panel layout is live.
func NewOverlay(_ *engine.Engine, _ *render.GridPainter, width int) *Overlay {
	return &Overlay{panel: NewNutrientPanel(width-panelWidth-panelPadding, panelPadding)}
}

// Panel returns the nutrient panel layout.
func (o *Overlay) Panel() *NutrientPanel { return o.panel }

// Update is a no-op in headless builds.
func (o *Overlay) Update() {}

// Draw is a no-op placeholder.
func (o *Overlay) Draw(any, render.Projector, []scene.Node, int, int) {}
