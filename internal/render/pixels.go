package render

import (
	"image/color"

	"farmgrid/internal/grid"
)

// PixelBufferLen is the RGBA buffer size for one grid image.
const PixelBufferLen = grid.Cells * 4

// fillMaskRGBA writes on for marked cells and off elsewhere. Rows map to
// image x and columns to image y, matching the world layout.
func fillMaskRGBA(buf []byte, mask *grid.Matrix[bool], on, off color.RGBA) {
	mask.Each(func(c grid.Cell, v bool) {
		col := off
		if v {
			col = on
		}
		putPixel(buf, c, col)
	})
}

// fillColorRGBA writes every cell colour into buf.
func fillColorRGBA(buf []byte, colors *grid.Matrix[color.RGBA]) {
	colors.Each(func(c grid.Cell, col color.RGBA) {
		putPixel(buf, c, col)
	})
}

func putPixel(buf []byte, c grid.Cell, col color.RGBA) {
	base := (c.Col*grid.Size + c.Row) * 4
	buf[base+0] = col.R
	buf[base+1] = col.G
	buf[base+2] = col.B
	buf[base+3] = col.A
}
