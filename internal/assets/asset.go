// Package assets loads land-parcel records: the parcel polygon, the
// flat list of grid-cell centres and the parcel area.
package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"

	"farmgrid/internal/grid"
)

var (
	// ErrGeometry is returned when a polygon cannot be subdivided.
	ErrGeometry = errors.New("assets: invalid geometry")
	// ErrNotFound is returned by sources for unknown ids.
	ErrNotFound = errors.New("assets: not found")
)

// Asset is one land parcel.
type Asset struct {
	ID           string
	Name         string
	Geometry     geom.Polygon
	GridCenters  [][]float64
	AreaHectares float64
	ImageURL     string
}

type record struct {
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name,omitempty"`
	Geometry     json.RawMessage   `json:"geometry,omitempty"`
	GridCenters  []json.RawMessage `json:"gridCenters"`
	AreaHectares float64           `json:"areaHectares"`
	ImageURL     string            `json:"imageUrl,omitempty"`
}

// HectaresPerCell splits the parcel area evenly over the grid. It is zero
// when the area is unknown.
func (a Asset) HectaresPerCell() float64 {
	if a.AreaHectares <= 0 || !finite(a.AreaHectares) {
		return 0
	}
	return a.AreaHectares / grid.Cells
}

// Coordinates maps the grid centres onto the cell grid.
func (a Asset) Coordinates() grid.CoordinateMatrix {
	return grid.MapCoordinates(a.GridCenters)
}

// Complete fills GridCenters and AreaHectares from the geometry when the
// record lacks them. On error a is left unchanged.
func (a *Asset) Complete() error {
	if len(a.GridCenters) > 0 && a.AreaHectares > 0 {
		return nil
	}
	if len(a.Geometry) == 0 {
		return nil
	}
	centers, err := GridCenters(a.Geometry, grid.Size)
	if err != nil {
		return err
	}
	area, err := AreaHectares(a.Geometry)
	if err != nil {
		return err
	}
	if len(a.GridCenters) == 0 {
		a.GridCenters = centers
	}
	if a.AreaHectares <= 0 {
		a.AreaHectares = area
	}
	return nil
}

// Decode parses an asset record. Grid centre entries that are not numeric
// arrays decode as nil and are left for the grid mapper to default.
func Decode(data []byte) (Asset, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return Asset{}, fmt.Errorf("failed to decode asset: %w", err)
	}
	a := Asset{
		ID:           r.ID,
		Name:         r.Name,
		AreaHectares: r.AreaHectares,
		ImageURL:     r.ImageURL,
		GridCenters:  make([][]float64, len(r.GridCenters)),
	}
	for i, raw := range r.GridCenters {
		var pair []float64
		if json.Unmarshal(raw, &pair) == nil {
			a.GridCenters[i] = pair
		}
	}
	if len(r.Geometry) > 0 && !bytes.Equal(bytes.TrimSpace(r.Geometry), []byte("null")) {
		poly, err := decodePolygon(r.Geometry)
		if err != nil {
			return Asset{}, err
		}
		a.Geometry = poly
	}
	return a, nil
}

// decodePolygon accepts a GeoJSON Polygon or a Feature wrapping one.
func decodePolygon(raw json.RawMessage) (geom.Polygon, error) {
	var probe struct {
		Type     string          `json:"type"`
		Geometry json.RawMessage `json:"geometry"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeometry, err)
	}
	if probe.Type == "Feature" {
		raw = probe.Geometry
	}
	g, err := geojson.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeometry, err)
	}
	poly, ok := g.(geom.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: geometry is %T, not a polygon", ErrGeometry, g)
	}
	return poly, nil
}

// Encode writes a in the record format read by Decode.
func Encode(a Asset) ([]byte, error) {
	r := record{
		ID:           a.ID,
		Name:         a.Name,
		AreaHectares: a.AreaHectares,
		ImageURL:     a.ImageURL,
		GridCenters:  make([]json.RawMessage, len(a.GridCenters)),
	}
	for i, p := range a.GridCenters {
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		r.GridCenters[i] = b
	}
	if len(a.Geometry) > 0 {
		g, err := geojson.Encode(a.Geometry)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGeometry, err)
		}
		r.Geometry = g
	}
	return json.Marshal(r)
}
