//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"farmgrid/internal/grid"
)

// GridPainter draws the field grid, both as projected ground tiles and as a
// flat minimap built from a 16x16 RGBA image.
type GridPainter struct {
	img     *ebiten.Image
	buf     []byte
	maskImg *ebiten.Image
	maskBuf []byte
	white   *ebiten.Image

	verts []ebiten.Vertex
	idx   []uint16
}

// NewGridPainter allocates the painter images.
func NewGridPainter() *GridPainter {
	gp := &GridPainter{
		img:     ebiten.NewImage(grid.Size, grid.Size),
		buf:     make([]byte, PixelBufferLen),
		maskImg: ebiten.NewImage(grid.Size, grid.Size),
		maskBuf: make([]byte, PixelBufferLen),
		white:   ebiten.NewImage(1, 1),
		verts:   make([]ebiten.Vertex, 0, grid.Cells*4),
		idx:     make([]uint16, 0, grid.Cells*6),
	}
	gp.white.Fill(color.White)
	return gp
}

// Blit uploads colors and draws them at (x, y), scale pixels per cell.
func (gp *GridPainter) Blit(dst *ebiten.Image, colors *grid.Matrix[color.RGBA], x, y float64, scale int) {
	fillColorRGBA(gp.buf, colors)
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	op.GeoM.Translate(x, y)
	dst.DrawImage(gp.img, op)
}

// BlitMask draws marked cells of mask tinted over the minimap at (x, y).
func (gp *GridPainter) BlitMask(dst *ebiten.Image, mask *grid.Matrix[bool], tint color.RGBA, x, y float64, scale int) {
	fillMaskRGBA(gp.maskBuf, mask, tint, color.RGBA{})
	gp.maskImg.WritePixels(gp.maskBuf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	op.GeoM.Translate(x, y)
	dst.DrawImage(gp.maskImg, op)
}

// DrawGround draws every cell as a quad on the y=0 plane. Cells with a
// corner behind the camera are skipped.
func (gp *GridPainter) DrawGround(dst *ebiten.Image, proj Projector, colors *grid.Matrix[color.RGBA]) {
	gp.verts = gp.verts[:0]
	gp.idx = gp.idx[:0]
	colors.Each(func(c grid.Cell, col color.RGBA) {
		x0 := float64(c.Row) - grid.HalfExtent
		z0 := float64(c.Col) - grid.HalfExtent
		corners := [4][2]float64{{x0, z0}, {x0 + 1, z0}, {x0 + 1, z0 + 1}, {x0, z0 + 1}}

		var quad [4]ebiten.Vertex
		for i, k := range corners {
			sx, sy, ok := proj.Project(k[0], 0, k[1])
			if !ok {
				return
			}
			quad[i] = ebiten.Vertex{
				DstX: float32(sx), DstY: float32(sy),
				SrcX: 0.5, SrcY: 0.5,
				ColorR: float32(col.R) / 255,
				ColorG: float32(col.G) / 255,
				ColorB: float32(col.B) / 255,
				ColorA: float32(col.A) / 255,
			}
		}
		base := uint16(len(gp.verts))
		gp.verts = append(gp.verts, quad[:]...)
		gp.idx = append(gp.idx, base, base+1, base+2, base, base+2, base+3)
	})
	if len(gp.idx) == 0 {
		return
	}
	dst.DrawTriangles(gp.verts, gp.idx, gp.white, nil)
}
