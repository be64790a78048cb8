//go:build ebiten

package app

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"farmgrid/internal/engine"
	"farmgrid/internal/picking"
	"farmgrid/internal/render"
	"farmgrid/internal/scene"
	"farmgrid/internal/ui"
)

var (
	skyColor = color.RGBA{R: 135, G: 180, B: 220, A: 255}

	_ render.Projector = picking.Viewport{}
)

// Game adapts the engine to the ebiten.Game interface.
type Game struct {
	eng     *engine.Engine
	graph   *scene.Memory
	painter *render.GridPainter
	overlay *ui.Overlay
	view    picking.Viewport
}

// New constructs a Game that draws eng. graph must be the graph the engine
// reconciles into.
func New(eng *engine.Engine, graph *scene.Memory) *Game {
	v := eng.Config().View
	painter := render.NewGridPainter()
	return &Game{
		eng:     eng,
		graph:   graph,
		painter: painter,
		overlay: ui.NewOverlay(eng, painter, v.Width),
		view:    picking.Viewport{Camera: eng.Camera(), Width: v.Width, Height: v.Height},
	}
}

// Update handles input and advances the engine by one frame.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.eng.Refresh()
	}
	g.overlay.Update()

	mx, my := ebiten.CursorPosition()
	if mx >= 0 && my >= 0 && mx < g.view.Width && my < g.view.Height {
		g.eng.Move(g.view.NDC(float64(mx), float64(my)))
	} else {
		g.eng.Leave()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if n, ok := g.overlay.Panel().Hit(mx, my); ok && g.eng.State().Pick.PanelOpen {
			g.eng.Choose(n)
		} else {
			g.eng.Press()
		}
	}

	g.eng.Tick()
	return nil
}

// Draw renders the ground tiles, the scene nodes and the overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(skyColor)
	g.painter.DrawGround(screen, g.view, &g.eng.State().Colors.Colors)
	mx, my := ebiten.CursorPosition()
	g.overlay.Draw(screen, g.view, g.graph.Nodes(), mx, my)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.view.Width, g.view.Height
}
