package grid

// MapCoordinates reshapes a flat, row-major list of [longitude, latitude]
// pairs into a CoordinateMatrix. Entries that are missing, not exactly two
// values long, or not finite are stored as (0,0); entries past Cells are
// ignored.
func MapCoordinates(pairs [][]float64) CoordinateMatrix {
	var m CoordinateMatrix
	for i := 0; i < Cells && i < len(pairs); i++ {
		p := pairs[i]
		if len(p) != 2 {
			continue
		}
		c := Coord{Lat: p[1], Lon: p[0]}
		if !c.Valid() {
			continue
		}
		m.Set(CellAt(i), c)
	}
	return m
}
