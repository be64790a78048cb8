//go:build ebiten

package ui

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"farmgrid/internal/core"
	"farmgrid/internal/engine"
	"farmgrid/internal/grid"
	"farmgrid/internal/render"
	"farmgrid/internal/scene"
)

var (
	textColor   = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	dimColor    = color.RGBA{R: 160, G: 160, B: 170, A: 255}
	panelColor  = color.RGBA{R: 16, G: 16, B: 20, A: 220}
	cloudTint   = color.RGBA{R: 235, G: 235, B: 240, A: 140}
	rainTint    = color.RGBA{R: 64, G: 164, B: 223, A: 160}
	windTint    = color.RGBA{R: 150, G: 200, B: 230, A: 140}
	markerLabel = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

const minimapScale = 8

// Overlay draws the particle nodes and the 2D interface on top of the
// projected ground.
type Overlay struct {
	eng     *engine.Engine
	painter *render.GridPainter
	panel   *NutrientPanel
	pixel   *ebiten.Image

	showMap   bool
	showCloud bool
	showRain  bool
	showWind  bool
}

// NewOverlay constructs an overlay for eng. The nutrient panel is anchored
// to the right edge of a view width pixels wide.
func NewOverlay(eng *engine.Engine, painter *render.GridPainter, width int) *Overlay {
	o := &Overlay{
		eng:       eng,
		painter:   painter,
		panel:     NewNutrientPanel(width-panelWidth-panelPadding, panelPadding),
		showMap:   true,
		showCloud: true,
		showRain:  true,
	}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Panel returns the nutrient panel layout.
func (o *Overlay) Panel() *NutrientPanel { return o.panel }

// Update toggles the minimap layers.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showCloud = !o.showCloud
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showRain = !o.showRain
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showWind = !o.showWind
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		o.showMap = !o.showMap
	}
}

// Draw renders nodes through proj and then the flat interface. The tooltip
// follows the cursor at (cx, cy).
func (o *Overlay) Draw(screen *ebiten.Image, proj render.Projector, nodes []scene.Node, cx, cy int) {
	for _, n := range nodes {
		o.drawNode(screen, proj, n)
	}
	s := o.eng.State()
	o.drawLines(screen, SummaryLines(s), panelPadding, panelPadding)
	o.drawLegend(screen, s)
	if o.showMap {
		o.drawMinimap(screen, s)
	}
	if tip, ok := o.eng.Tooltip(); ok {
		o.drawLines(screen, tip.Lines(), cx+18, cy+18)
	}
	if s.Pick.PanelOpen {
		o.drawPanel(screen, s)
	}
}

func (o *Overlay) drawNode(screen *ebiten.Image, proj render.Projector, n scene.Node) {
	p := n.Position
	switch n.Kind {
	case scene.Cloud:
		if sx, sy, ok := proj.Project(p.X, p.Y, p.Z); ok {
			o.drawPoint(screen, sx, sy, 22*n.Scale.X, fade(cloudTint, n.Opacity))
		}
	case scene.Wind:
		d := core.V(math.Cos(n.Yaw), 0, math.Sin(n.Yaw)).Scale(0.35 * n.Scale.X)
		o.drawSegment(screen, proj, p, p.Add(d), 1.5, fade(windTint, 0.5+n.Opacity))
	case scene.Rain:
		o.drawSegment(screen, proj, p, p.Sub(core.V(0, 0.2, 0)), 1, fade(rainTint, n.Opacity))
	case scene.Marker:
		if sx, sy, ok := proj.Project(p.X, p.Y, p.Z); ok {
			o.drawPoint(screen, sx, sy, 10, n.Color)
			text.Draw(screen, n.Label, basicfont.Face7x13, int(sx)+6, int(sy)-6, markerLabel)
		}
	case scene.Highlight:
		x0, z0 := p.X-0.5, p.Z-0.5
		c := [4]core.Vec3{
			core.V(x0, p.Y, z0), core.V(x0+1, p.Y, z0), core.V(x0+1, p.Y, z0+1), core.V(x0, p.Y, z0+1),
		}
		for i := range c {
			o.drawSegment(screen, proj, c[i], c[(i+1)%4], 2, n.Color)
		}
	case scene.Structure:
		o.drawBox(screen, proj, n.Position, n.Scale.Scale(0.5), n.Color)
	}
}

func (o *Overlay) drawBox(screen *ebiten.Image, proj render.Projector, c, half core.Vec3, col color.RGBA) {
	var corner [8]core.Vec3
	for i := range corner {
		sx, sy, sz := -1.0, -1.0, -1.0
		if i&1 != 0 {
			sx = 1
		}
		if i&2 != 0 {
			sy = 1
		}
		if i&4 != 0 {
			sz = 1
		}
		corner[i] = core.V(c.X+sx*half.X, c.Y+sy*half.Y, c.Z+sz*half.Z)
	}
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if j := i | bit; j != i {
				o.drawSegment(screen, proj, corner[i], corner[j], 1.5, col)
			}
		}
	}
}

func (o *Overlay) drawSegment(screen *ebiten.Image, proj render.Projector, a, b core.Vec3, thickness float64, col color.RGBA) {
	ax, ay, ok1 := proj.Project(a.X, a.Y, a.Z)
	bx, by, ok2 := proj.Project(b.X, b.Y, b.Z)
	if !ok1 || !ok2 {
		return
	}
	o.drawLine(screen, ax, ay, bx, by, thickness, col)
}

func (o *Overlay) drawLines(screen *ebiten.Image, lines []string, x, y int) {
	if len(lines) == 0 {
		return
	}
	w := 0
	for _, l := range lines {
		if d := text.BoundString(basicfont.Face7x13, l).Dx(); d > w {
			w = d
		}
	}
	o.fillRect(screen, image.Rect(x-6, y-4, x+w+6, y+len(lines)*textLine+4), panelColor)
	for i, l := range lines {
		text.Draw(screen, l, basicfont.Face7x13, x, y+(i+1)*textLine-4, textColor)
	}
}

func (o *Overlay) drawLegend(screen *ebiten.Image, s *engine.State) {
	g := o.eng.Gradient()
	x := panelPadding
	y := screen.Bounds().Dy() - legendHeight - 2*panelPadding
	for i := 0; i < legendHeight; i++ {
		t := 1 - float64(i)/float64(legendHeight-1)
		o.fillRect(screen, image.Rect(x, y+i, x+legendWidth, y+i+1), g.At(t))
	}
	best, worst := LegendLabels(s.Colors.Range)
	text.Draw(screen, best, basicfont.Face7x13, x+legendWidth+6, y+10, textColor)
	text.Draw(screen, worst, basicfont.Face7x13, x+legendWidth+6, y+legendHeight, textColor)
}

func (o *Overlay) drawMinimap(screen *ebiten.Image, s *engine.State) {
	size := grid.Size * minimapScale
	x := float64(screen.Bounds().Dx() - size - panelPadding)
	y := float64(screen.Bounds().Dy() - size - panelPadding)
	o.painter.Blit(screen, &s.Colors.Colors, x, y, minimapScale)
	if o.showCloud {
		o.painter.BlitMask(screen, &s.Effects.Cloud, cloudTint, x, y, minimapScale)
	}
	if o.showRain {
		o.painter.BlitMask(screen, &s.Effects.Rain, rainTint, x, y, minimapScale)
	}
	if o.showWind {
		o.painter.BlitMask(screen, &s.Effects.Wind, windTint, x, y, minimapScale)
	}
}

func (o *Overlay) drawPanel(screen *ebiten.Image, s *engine.State) {
	o.fillRect(screen, o.panel.Bounds(), panelColor)
	text.Draw(screen, "Optimise for", basicfont.Face7x13, o.panel.X+panelPadding, o.panel.Y+panelPadding+headerBaseline, textColor)
	face := basicfont.Face7x13
	for _, b := range o.panel.Buttons() {
		bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
		fg := textColor
		if b.Nutrient == s.Nutrient {
			bg = color.RGBA{R: 40, G: 110, B: 60, A: 255}
		} else if s.YieldLoading {
			fg = dimColor
		}
		o.fillRect(screen, b.Rect, bg)
		label := string(b.Nutrient)
		bounds := text.BoundString(face, label)
		tx := b.Rect.Min.X + (b.Rect.Dx()-bounds.Dx())/2
		ty := b.Rect.Min.Y + (b.Rect.Dy()-bounds.Dy())/2 + bounds.Dy()
		text.Draw(screen, label, face, tx, ty, fg)
	}
}

func (o *Overlay) fillRect(screen *ebiten.Image, r image.Rectangle, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(r.Dx()), float64(r.Dy()))
	op.GeoM.Translate(float64(r.Min.X), float64(r.Min.Y))
	tint(op, col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	tint(op, col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	tint(op, col)
	screen.DrawImage(o.pixel, op)
}

// tint scales the white pixel to the straight-alpha colour col.
func tint(op *ebiten.DrawImageOptions, col color.RGBA) {
	a := float32(col.A) / 255
	op.ColorScale.Scale(float32(col.R)/255*a, float32(col.G)/255*a, float32(col.B)/255*a, a)
}

func fade(col color.RGBA, opacity float64) color.RGBA {
	opacity = math.Max(0, math.Min(1, opacity))
	col.A = uint8(math.Round(float64(col.A) * opacity))
	return col
}
