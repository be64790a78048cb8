package main

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"farmgrid/internal/effects"
	"farmgrid/internal/grid"
	"farmgrid/internal/yield"
)

const effectLegend = "R rain, C cloud, w wind, * cloud and wind"

func writeRows[T any](m *grid.Matrix[T], cell func(T) string) string {
	var b strings.Builder
	for r := range m {
		for c := range m[r] {
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(cell(m[r][c]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func effectMap(g *effects.Grid) string {
	var marks grid.Matrix[byte]
	marks.Each(func(c grid.Cell, _ byte) {
		ch := byte('.')
		switch {
		case g.Rain.At(c):
			ch = 'R'
		case g.Cloud.At(c) && g.Wind.At(c):
			ch = '*'
		case g.Cloud.At(c):
			ch = 'C'
		case g.Wind.At(c):
			ch = 'w'
		}
		marks.Set(c, ch)
	})
	return writeRows(&marks, func(b byte) string { return string(b) })
}

func cropMap(m *grid.Matrix[string]) string {
	return writeRows(m, func(s string) string {
		if s == "" {
			s = "-"
		}
		if len(s) > 3 {
			s = s[:3]
		}
		return s + strings.Repeat(" ", 3-len(s))
	})
}

func rampMap(norm *grid.Matrix[float64]) string {
	return writeRows(norm, func(t float64) string {
		if math.IsNaN(t) {
			return "?"
		}
		d := int(math.Floor(t * 9.999))
		return string(rune('0' + max(0, min(9, d))))
	})
}

// dominant returns the most frequent crop and its cell count. Ties go to
// the name that sorts first.
func dominant(m *grid.Matrix[string]) (string, int) {
	counts := map[string]int{}
	m.Each(func(_ grid.Cell, s string) { counts[s]++ })
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	best, n := "", 0
	for _, name := range names {
		if counts[name] > n {
			best, n = name, counts[name]
		}
	}
	return best, n
}

func meanValue(g *yield.Grid) float64 {
	return stat.Mean(g.Value.Values(), nil)
}
