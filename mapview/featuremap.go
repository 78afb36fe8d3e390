// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/jcodagnone/transporte/spatial"
)

type layerKind int

const (
	kindTiles layerKind = iota
	kindMarker
	kindPolyline
)

type layer struct {
	id       LayerID
	kind     layerKind
	tiles    TileLayerSpec
	marker   MarkerSpec
	polyline PolylineSpec
}

// Viewport is the last fitted region.
type Viewport struct {
	Bounds  spatial.Bounds `json:"bounds"`
	Padding Padding        `json:"padding"`
}

// FeatureMap is an in-process map widget. It keeps its layers in memory and
// exports them as GeoJSON. It is both the Library and the Map.
type FeatureMap struct {
	mu sync.Mutex

	unavailable int
	created     bool
	center      spatial.Point
	zoom        int
	nextID      LayerID
	layers      []layer
	viewport    *Viewport
	fits        int
	calls       int
}

// NewFeatureMap returns an empty widget.
func NewFeatureMap() *FeatureMap {
	return &FeatureMap{}
}

// SetUnavailable makes the next n NewMap calls fail with
// ErrWidgetUnavailable.
func (f *FeatureMap) SetUnavailable(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.unavailable = n
}

// NewMap implements Library.
func (f *FeatureMap) NewMap(center spatial.Point, zoom int) (Map, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	if f.unavailable > 0 {
		f.unavailable--

		return nil, ErrWidgetUnavailable
	}

	f.created = true
	f.center = center
	f.zoom = zoom

	return f, nil
}

// NewMapCalls returns how many times NewMap was called.
func (f *FeatureMap) NewMapCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func (f *FeatureMap) add(l layer) LayerID {
	f.nextID++
	l.id = f.nextID
	f.layers = append(f.layers, l)

	return l.id
}

func (f *FeatureMap) AddTileLayer(spec TileLayerSpec) (LayerID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.add(layer{kind: kindTiles, tiles: spec}), nil
}

func (f *FeatureMap) AddMarker(spec MarkerSpec) (LayerID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.add(layer{kind: kindMarker, marker: spec}), nil
}

func (f *FeatureMap) AddPolyline(spec PolylineSpec) (LayerID, error) {
	if len(spec.Points) < 2 {
		return 0, fmt.Errorf("polyline needs at least two points, got %d", len(spec.Points))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.add(layer{kind: kindPolyline, polyline: spec}), nil
}

func (f *FeatureMap) RemoveLayer(id LayerID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, l := range f.layers {
		if l.id == id {
			f.layers = append(f.layers[:i], f.layers[i+1:]...)

			return nil
		}
	}

	return fmt.Errorf("layer %d not found", id)
}

func (f *FeatureMap) FitBounds(b spatial.Bounds, p Padding) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.viewport = &Viewport{Bounds: b, Padding: p}
	f.fits++

	return nil
}

// Markers returns the markers currently on the map.
func (f *FeatureMap) Markers() []MarkerSpec {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []MarkerSpec

	for _, l := range f.layers {
		if l.kind == kindMarker {
			out = append(out, l.marker)
		}
	}

	return out
}

// Polylines returns the lines currently on the map.
func (f *FeatureMap) Polylines() []PolylineSpec {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []PolylineSpec

	for _, l := range f.layers {
		if l.kind == kindPolyline {
			out = append(out, l.polyline)
		}
	}

	return out
}

// Tiles returns the base layers.
func (f *FeatureMap) Tiles() []TileLayerSpec {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []TileLayerSpec

	for _, l := range f.layers {
		if l.kind == kindTiles {
			out = append(out, l.tiles)
		}
	}

	return out
}

// Viewport returns the last fitted region and how many fits happened.
func (f *FeatureMap) Viewport() (*Viewport, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.viewport == nil {
		return nil, f.fits
	}

	v := *f.viewport

	return &v, f.fits
}

// FeatureCollection converts markers and lines into GeoJSON features. The
// collection bbox is the fitted viewport when there is one.
func (f *FeatureMap) FeatureCollection() (*gjson.FeatureCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fc := &gjson.FeatureCollection{Features: []*gjson.Feature{}}

	for _, l := range f.layers {
		switch l.kind {
		case kindMarker:
			feature, err := markerFeature(l.id, l.marker)
			if err != nil {
				return nil, err
			}

			fc.Features = append(fc.Features, feature)
		case kindPolyline:
			fc.Features = append(fc.Features, polylineFeature(l.id, l.polyline))
		case kindTiles:
		}
	}

	if f.viewport != nil {
		b := f.viewport.Bounds
		fc.BBox = geom.NewBounds(geom.XY).Set(b.SouthWest.Lng, b.SouthWest.Lat, b.NorthEast.Lng, b.NorthEast.Lat)
	}

	return fc, nil
}

// GeoJSON marshals FeatureCollection.
func (f *FeatureMap) GeoJSON() ([]byte, error) {
	fc, err := f.FeatureCollection()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("marshalling feature collection: %w", err)
	}

	return data, nil
}

func markerFeature(id LayerID, m MarkerSpec) (*gjson.Feature, error) {
	cell, err := m.Point.CellAt(spatial.MarkerCellResolution)
	if err != nil {
		return nil, err
	}

	return &gjson.Feature{
		ID:       fmt.Sprint(id),
		Geometry: geom.NewPointFlat(geom.XY, []float64{m.Point.Lng, m.Point.Lat}),
		Properties: map[string]any{
			"kind":       "marker",
			"route_id":   m.RouteID,
			"class_name": m.Icon.ClassName,
			"color":      m.Icon.Color,
			"size":       m.Icon.Size,
			"popup":      m.PopupHTML,
			"h3":         cell.String(),
		},
	}, nil
}

func polylineFeature(id LayerID, p PolylineSpec) *gjson.Feature {
	flat := make([]float64, 0, 2*len(p.Points))
	for _, pt := range p.Points {
		flat = append(flat, pt.Lng, pt.Lat)
	}

	return &gjson.Feature{
		ID:       fmt.Sprint(id),
		Geometry: geom.NewLineStringFlat(geom.XY, flat),
		Properties: map[string]any{
			"kind":       "polyline",
			"route_id":   p.RouteID,
			"color":      p.Style.Color,
			"weight":     p.Style.Weight,
			"opacity":    p.Style.Opacity,
			"dash_array": p.Style.DashArray,
		},
	}
}
