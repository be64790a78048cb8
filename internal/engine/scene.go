package engine

import (
	"fmt"
	"image/color"

	"farmgrid/internal/core"
	"farmgrid/internal/grid"
	"farmgrid/internal/picking"
	"farmgrid/internal/scene"
)

const (
	groundID    = "ground"
	structureID = "structure"
	highlightID = "highlight"

	tileHeight      = 0.01
	highlightHeight = 0.02
	tileOpacity     = 0.6
)

var (
	groundColor    = color.RGBA{R: 96, G: 72, B: 48, A: 255}
	structureColor = color.RGBA{R: 170, G: 170, B: 180, A: 255}
	highlightColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

var tileIDs = func() (ids [grid.Cells]string) {
	for i := range ids {
		c := grid.CellAt(i)
		ids[i] = fmt.Sprintf("tile-%d-%d", c.Row, c.Col)
	}
	return ids
}()

// Nodes returns the full desired scene for the current state.
func (e *Engine) Nodes() []scene.Node {
	s := &e.state
	out := make([]scene.Node, 0, 2+grid.Cells+1+len(e.markers))

	out = append(out, scene.Node{
		ID: groundID, Kind: scene.Ground,
		Scale:   core.V(grid.Size, 1, grid.Size),
		Opacity: 1,
		Color:   groundColor,
	})
	s.Colors.Colors.Each(func(c grid.Cell, col color.RGBA) {
		x, z := c.Center()
		out = append(out, scene.Node{
			ID: tileIDs[c.Index()], Kind: scene.Tile, Cell: c,
			Position: core.V(x, tileHeight, z),
			Scale:    core.V(1, 1, 1),
			Opacity:  tileOpacity,
			Color:    col,
			Label:    s.Yield.Crop.At(c),
		})
	})

	b := picking.DefaultStructure
	out = append(out, scene.Node{
		ID: structureID, Kind: scene.Structure,
		Position: b.Min.Add(b.Max).Scale(0.5),
		Scale:    b.Max.Sub(b.Min),
		Opacity:  1,
		Color:    structureColor,
	})

	if s.Pick.HasHover {
		pos := s.Pick.Anchor
		pos.Y = highlightHeight
		out = append(out, scene.Node{
			ID: highlightID, Kind: scene.Highlight, Cell: s.Pick.Hovered,
			Position: pos,
			Scale:    core.V(1, 1, 1),
			Opacity:  0.5,
			Color:    highlightColor,
		})
	}

	out = append(out, e.markers...)
	return append(out, e.particles.Nodes()...)
}

func (e *Engine) reconcile() {
	d, err := e.recon.Apply(Kinds, e.Nodes())
	if err != nil {
		e.log.WithError(err).Error("scene update failed")
		return
	}
	if d.Added+d.Removed > 0 {
		e.log.WithField("added", d.Added).WithField("removed", d.Removed).Trace("scene reconciled")
	}
}
