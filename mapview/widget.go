// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"errors"

	"github.com/jcodagnone/transporte/spatial"
)

// ErrWidgetUnavailable is returned by a Library that is not loaded yet.
var ErrWidgetUnavailable = errors.New("map widget library unavailable")

// LayerID identifies a layer added to a Map.
type LayerID int64

// TileLayerSpec describes the base map.
type TileLayerSpec struct {
	URLTemplate string `json:"url_template"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

// Icon is a round colored marker.
type Icon struct {
	ClassName string `json:"class_name"`
	Color     string `json:"color"`
	Size      int    `json:"size"`
}

// MarkerSpec is a marker with its popup.
type MarkerSpec struct {
	Point     spatial.Point `json:"point"`
	Icon      Icon          `json:"icon"`
	PopupHTML string        `json:"popup_html"`
	RouteID   string        `json:"route_id"`
}

// Style of a polyline.
type Style struct {
	Color     string  `json:"color"`
	Weight    int     `json:"weight"`
	Opacity   float64 `json:"opacity"`
	DashArray string  `json:"dash_array,omitempty"`
}

// PolylineSpec is a styled line.
type PolylineSpec struct {
	Points  []spatial.Point `json:"points"`
	Style   Style           `json:"style"`
	RouteID string          `json:"route_id"`
}

// Padding around fitted bounds, in pixels.
type Padding struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Library creates maps. It returns ErrWidgetUnavailable while it cannot.
type Library interface {
	NewMap(center spatial.Point, zoom int) (Map, error)
}

// Map is a single map widget.
type Map interface {
	AddTileLayer(TileLayerSpec) (LayerID, error)
	AddMarker(MarkerSpec) (LayerID, error)
	AddPolyline(PolylineSpec) (LayerID, error)
	RemoveLayer(LayerID) error
	FitBounds(spatial.Bounds, Padding) error
}

var (
	// BrazilCenter is the initial view.
	BrazilCenter = spatial.Point{Lat: -14.2350, Lng: -51.9253}

	// OpenStreetMapTiles is the default base layer.
	OpenStreetMapTiles = TileLayerSpec{
		URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
		MaxZoom:     19,
	}

	OriginIcon      = Icon{ClassName: "marker-origem", Color: "#3b82f6", Size: 20}
	DestinationIcon = Icon{ClassName: "marker-destino", Color: "#ef4444", Size: 20}

	RouteLineStyle = Style{Color: "#d4a620", Weight: 3, Opacity: 0.7, DashArray: "10, 5"}
)

const DefaultZoom = 5
