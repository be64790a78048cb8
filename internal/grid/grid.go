// Package grid holds the fixed 16x16 field grid shared by every engine component.
package grid

import "math"

const (
	// Size is the number of rows (and columns) in a field grid.
	Size = 16
	// Cells is the total number of cells in a field grid.
	Cells = Size * Size
	// HalfExtent is half the world-space width of the grid; cell centres sit
	// at row-HalfExtent+0.5 on x and col-HalfExtent+0.5 on z.
	HalfExtent = Size / 2
)

// Cell addresses one grid square. Flattening is row-major.
type Cell struct {
	Row int
	Col int
}

// CellAt returns the cell for a row-major flat index.
func CellAt(i int) Cell { return Cell{Row: i / Size, Col: i % Size} }

// Valid reports whether both indices fall inside the grid.
func (c Cell) Valid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Index returns the row-major flat index of the cell.
func (c Cell) Index() int { return c.Row*Size + c.Col }

// Center returns the world-space (x, z) centre of the cell.
func (c Cell) Center() (x, z float64) {
	return float64(c.Row) - HalfExtent + 0.5, float64(c.Col) - HalfExtent + 0.5
}

// Matrix is a value-typed 16x16 layer. Copying a Matrix copies its cells.
type Matrix[T any] [Size][Size]T

// Filled returns a matrix with every cell set to v.
func Filled[T any](v T) Matrix[T] {
	var m Matrix[T]
	m.Fill(v)
	return m
}

// Fill sets every cell to v.
func (m *Matrix[T]) Fill(v T) {
	for r := range m {
		for c := range m[r] {
			m[r][c] = v
		}
	}
}

// At returns the value stored at cell. Out-of-range cells yield the zero value.
func (m *Matrix[T]) At(cell Cell) T {
	var zero T
	if !cell.Valid() {
		return zero
	}
	return m[cell.Row][cell.Col]
}

// Set stores v at cell; out-of-range cells are ignored.
func (m *Matrix[T]) Set(cell Cell, v T) {
	if !cell.Valid() {
		return
	}
	m[cell.Row][cell.Col] = v
}

// Each calls fn for every cell in row-major order.
func (m *Matrix[T]) Each(fn func(cell Cell, v T)) {
	for r := range m {
		for c := range m[r] {
			fn(Cell{Row: r, Col: c}, m[r][c])
		}
	}
}

// Values flattens the matrix in row-major order.
func (m *Matrix[T]) Values() []T {
	out := make([]T, 0, Cells)
	for r := range m {
		out = append(out, m[r][:]...)
	}
	return out
}

// Count returns how many cells satisfy pred.
func Count[T any](m *Matrix[T], pred func(T) bool) int {
	n := 0
	for r := range m {
		for c := range m[r] {
			if pred(m[r][c]) {
				n++
			}
		}
	}
	return n
}

// Coord is a geographic position in decimal degrees.
type Coord struct {
	Lat float64
	Lon float64
}

// Valid reports whether both components are finite numbers.
func (c Coord) Valid() bool { return finite(c.Lat) && finite(c.Lon) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// CoordinateMatrix maps every cell to the geographic centre of that cell.
// A matrix is built once per asset load and never mutated afterwards.
type CoordinateMatrix = Matrix[Coord]
