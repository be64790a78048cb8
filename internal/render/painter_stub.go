//go:build !ebiten

package render

// GridPainter is a placeholder used when the ebiten build tag is absent.
type GridPainter struct{}

// NewGridPainter returns a stub painter.
func NewGridPainter() *GridPainter { return &GridPainter{} }
