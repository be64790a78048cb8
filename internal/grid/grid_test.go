package grid

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullPairs() [][]float64 {
	pairs := make([][]float64, Cells)
	for i := range pairs {
		pairs[i] = []float64{100 + float64(i)*0.001, -30 - float64(i)*0.001}
	}
	return pairs
}

func TestMapCoordinatesRowMajor(t *testing.T) {
	pairs := fullPairs()
	m := MapCoordinates(pairs)

	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			i := row*Size + col
			want := Coord{Lat: pairs[i][1], Lon: pairs[i][0]}
			require.Equal(t, want, m[row][col], "cell (%d,%d)", row, col)
		}
	}
}

func TestMapCoordinatesShortAndInvalid(t *testing.T) {
	pairs := fullPairs()[:40]
	pairs[3] = []float64{math.NaN(), 12}
	pairs[7] = []float64{1}
	pairs[9] = nil
	pairs[11] = []float64{5, math.Inf(1)}

	m := MapCoordinates(pairs)

	for _, i := range []int{3, 7, 9, 11} {
		assert.Equal(t, Coord{}, m.At(CellAt(i)), "index %d", i)
	}
	for i := 40; i < Cells; i++ {
		assert.Equal(t, Coord{}, m.At(CellAt(i)), "index %d past input", i)
	}
	assert.Equal(t, Coord{Lat: pairs[0][1], Lon: pairs[0][0]}, m[0][0])
}

func TestMapCoordinatesIdempotent(t *testing.T) {
	pairs := fullPairs()
	a := MapCoordinates(pairs)
	b := MapCoordinates(pairs)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("mapping not deterministic (-a +b):\n%s", diff)
	}
}

func TestMapCoordinatesIgnoresExtraEntries(t *testing.T) {
	pairs := append(fullPairs(), []float64{9, 9}, []float64{8, 8})
	m := MapCoordinates(pairs)
	assert.Equal(t, Coord{Lat: pairs[Cells-1][1], Lon: pairs[Cells-1][0]}, m[Size-1][Size-1])
}

func TestCellHelpers(t *testing.T) {
	c := CellAt(37)
	assert.Equal(t, Cell{Row: 2, Col: 5}, c)
	assert.Equal(t, 37, c.Index())
	assert.True(t, c.Valid())
	assert.False(t, Cell{Row: 16}.Valid())
	assert.False(t, Cell{Col: -1}.Valid())

	x, z := Cell{}.Center()
	assert.Equal(t, -7.5, x)
	assert.Equal(t, -7.5, z)
}

func TestMatrixAccessors(t *testing.T) {
	m := Filled(3)
	m.Set(Cell{Row: 1, Col: 1}, 9)
	m.Set(Cell{Row: 99, Col: 1}, 7)

	assert.Equal(t, 9, m.At(Cell{Row: 1, Col: 1}))
	assert.Equal(t, 0, m.At(Cell{Row: -1}))
	assert.Len(t, m.Values(), Cells)
	assert.Equal(t, 1, Count(&m, func(v int) bool { return v == 9 }))

	visited := 0
	m.Each(func(Cell, int) { visited++ })
	assert.Equal(t, Cells, visited)
}
