package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmgrid/internal/grid"
)

const recordJSON = `{
  "id": "north-field",
  "name": "North field",
  "geometry": {"type": "Polygon", "coordinates": [[[13.0, 52.0], [13.01, 52.0], [13.01, 52.01], [13.0, 52.01], [13.0, 52.0]]]},
  "gridCenters": [[13.001, 52.002], "oops", [1, 2, 3], null, [13.004, 52.005]],
  "areaHectares": 512,
  "imageUrl": "https://img.test/north.png"
}`

func TestDecodeRecord(t *testing.T) {
	a, err := Decode([]byte(recordJSON))
	require.NoError(t, err)

	assert.Equal(t, "north-field", a.ID)
	assert.Equal(t, 512.0, a.AreaHectares)
	assert.Equal(t, 2.0, a.HectaresPerCell())
	require.Len(t, a.GridCenters, 5)
	assert.Nil(t, a.GridCenters[1])
	assert.Nil(t, a.GridCenters[3])
	require.Len(t, a.Geometry, 1)
	assert.Len(t, a.Geometry[0], 5)

	m := a.Coordinates()
	assert.Equal(t, grid.Coord{Lat: 52.002, Lon: 13.001}, m.At(grid.Cell{Row: 0, Col: 0}))
	assert.Equal(t, grid.Coord{}, m.At(grid.Cell{Row: 0, Col: 2}))
	assert.Equal(t, grid.Coord{Lat: 52.005, Lon: 13.004}, m.At(grid.Cell{Row: 0, Col: 4}))
}

func TestDecodeFeatureAndBadGeometry(t *testing.T) {
	a, err := Decode([]byte(`{"geometry": {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}, "gridCenters": []}`))
	require.NoError(t, err)
	assert.Len(t, a.Geometry[0], 4)

	_, err = Decode([]byte(`{"geometry": {"type": "Point", "coordinates": [1, 2]}}`))
	assert.ErrorIs(t, err, ErrGeometry)

	_, err = Decode([]byte(`{"geometry": {"type": "Polygon", "coordinates": []}}`))
	assert.ErrorIs(t, err, ErrGeometry)

	a, err = Decode([]byte(`{"geometry": null, "gridCenters": []}`))
	require.NoError(t, err)
	assert.Nil(t, a.Geometry)
}

func TestHectaresPerCellUnknownArea(t *testing.T) {
	assert.Equal(t, 0.0, Asset{}.HectaresPerCell())
	assert.Equal(t, 0.0, Asset{AreaHectares: -3}.HectaresPerCell())
}

func square() geom.Polygon {
	return geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}}}
}

func TestGridCentersSquare(t *testing.T) {
	got, err := GridCenters(square(), 16)
	require.NoError(t, err)
	require.Len(t, got, grid.Cells)

	// x is the outer loop.
	assert.Equal(t, []float64{0.5 / 16, 0.5 / 16}, got[0])
	assert.Equal(t, []float64{0.5 / 16, 1.5 / 16}, got[1])
	assert.Equal(t, []float64{1.5 / 16, 0.5 / 16}, got[16])
	assert.Equal(t, []float64{15.5 / 16, 15.5 / 16}, got[255])
}

func TestGridCentersLShape(t *testing.T) {
	l := geom.Polygon{{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0.5}, {X: 0.5, Y: 0.5}, {X: 0.5, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0},
	}}
	got, err := GridCenters(l, 16)
	require.NoError(t, err)
	assert.Len(t, got, 192)
	for _, p := range got {
		assert.False(t, p[0] > 0.5 && p[1] > 0.5, "centre %v lies in the notch", p)
	}
}

func TestGridCentersInvalid(t *testing.T) {
	_, err := GridCenters(nil, 16)
	assert.ErrorIs(t, err, ErrGeometry)

	_, err = GridCenters(geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 1}}}, 16)
	assert.ErrorIs(t, err, ErrGeometry)

	flat := geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}}
	_, err = GridCenters(flat, 16)
	assert.ErrorIs(t, err, ErrGeometry)

	_, err = GridCenters(square(), 0)
	assert.ErrorIs(t, err, ErrGeometry)
}

func TestAreaHectares(t *testing.T) {
	// 0.01 degree square at the equator, roughly 1112m on a side.
	poly := geom.Polygon{{{X: 0, Y: 0}, {X: 0.01, Y: 0}, {X: 0.01, Y: 0.01}, {X: 0, Y: 0.01}, {X: 0, Y: 0}}}
	ha, err := AreaHectares(poly)
	require.NoError(t, err)
	assert.InEpsilon(t, 123.6, ha, 0.01)

	// Winding order does not matter.
	rev := geom.Polygon{{{X: 0, Y: 0}, {X: 0, Y: 0.01}, {X: 0.01, Y: 0.01}, {X: 0.01, Y: 0}, {X: 0, Y: 0}}}
	ha2, err := AreaHectares(rev)
	require.NoError(t, err)
	assert.InEpsilon(t, ha, ha2, 1e-6)
}

func TestCompleteDerivesMissingFields(t *testing.T) {
	a := Asset{Geometry: geom.Polygon{{{X: 0, Y: 0}, {X: 0.01, Y: 0}, {X: 0.01, Y: 0.01}, {X: 0, Y: 0.01}}}}
	require.NoError(t, a.Complete())
	assert.Len(t, a.GridCenters, grid.Cells)
	assert.Greater(t, a.AreaHectares, 100.0)

	bad := Asset{Geometry: geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 1}}}}
	assert.ErrorIs(t, bad.Complete(), ErrGeometry)
	assert.Nil(t, bad.GridCenters, "nothing is written on failure")
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "north.json"), []byte(recordJSON), 0o644))
	src := FileSource{Dir: dir}

	a, err := src.Load(context.Background(), "north")
	require.NoError(t, err)
	assert.Equal(t, "north-field", a.ID)

	_, err = src.Load(context.Background(), "south")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = src.Load(context.Background(), "../north")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteSourceRoundTrip(t *testing.T) {
	src, err := OpenSQLite(filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	defer src.Close()
	ctx := context.Background()

	in, err := Decode([]byte(recordJSON))
	require.NoError(t, err)
	require.NoError(t, src.Put(ctx, in))

	in.AreaHectares = 1024
	require.NoError(t, src.Put(ctx, in))

	out, err := src.Load(ctx, "north-field")
	require.NoError(t, err)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("asset mismatch (-want +got):\n%s", diff)
	}

	ids, err := src.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"north-field"}, ids)

	_, err = src.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, src.Put(ctx, Asset{}))
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "north.json")
	require.NoError(t, os.WriteFile(path, []byte(recordJSON), 0o644))
	db := filepath.Join(dir, "assets.db")

	a, err := Resolve(ctx, path, "", "")
	require.NoError(t, err)
	assert.Equal(t, "north-field", a.ID)

	a, err = Resolve(ctx, path, db, "")
	require.NoError(t, err)
	assert.Equal(t, "north-field", a.ID)

	// Seeded by the previous call.
	a, err = Resolve(ctx, "", db, "north-field")
	require.NoError(t, err)
	assert.Equal(t, 512.0, a.AreaHectares)

	_, err = Resolve(ctx, "", db, "south")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = Resolve(ctx, "", "", "")
	assert.Error(t, err)
}
