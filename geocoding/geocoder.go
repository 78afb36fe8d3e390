// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding converts address strings into coordinates.
//
// Providers implement Geocoder and report failures as errors. Callers that
// only care about "found or not" go through Client.Lookup, which logs and
// swallows every failure, and batches go through Pipeline, which keeps the
// requests sequential with a fixed pause between jobs.
package geocoding

import (
	"context"

	"github.com/uber/h3-go/v4"

	"github.com/jcodagnone/transporte/spatial"
)

const (
	ProviderNominatim  = "nominatim"
	ProviderGoogleMaps = "google_maps"
)

// GeocodedPoint is the outcome of a successful lookup. It is never stored.
type GeocodedPoint struct {
	Point          spatial.Point `json:"point"`
	DisplayAddress string        `json:"display_address"`
	Provider       string        `json:"provider"`
	Cell           h3.Cell       `json:"cell"`
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*GeocodedPoint, error)
}

// GeocoderFunc adapts a function to the Geocoder interface.
type GeocoderFunc func(ctx context.Context, query string) (*GeocodedPoint, error)

func (f GeocoderFunc) Geocode(ctx context.Context, query string) (*GeocodedPoint, error) {
	return f(ctx, query)
}

// newGeocodedPoint validates the coordinates against the country bounds and
// tags the point with its H3 cell.
func newGeocodedPoint(lat, lng float64, display, provider string, country Country) (*GeocodedPoint, error) {
	if err := validateCoordinates(lat, lng, country); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "candidate rejected", Err: err}
	}

	p := spatial.Point{Lat: lat, Lng: lng}

	cell, err := p.CellAt(spatial.MarkerCellResolution)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformed, Message: "candidate rejected", Err: err}
	}

	return &GeocodedPoint{Point: p, DisplayAddress: display, Provider: provider, Cell: cell}, nil
}
