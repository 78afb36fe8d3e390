// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"fmt"
	"strings"
)

// Country restricts lookups to a country code and a bounding box.
type Country struct {
	Code   string
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Brazil with roughly one degree of margin around the mainland and the
// Atlantic islands.
var Brazil = Country{
	Code:   "br",
	MinLat: -35.0,
	MaxLat: 6.5,
	MinLng: -75.0,
	MaxLng: -28.0,
}

// CountryByCode returns the known bounds for code. Unknown codes get a box
// covering the whole globe.
func CountryByCode(code string) Country {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == Brazil.Code || code == "" {
		return Brazil
	}

	return Country{Code: code, MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}
}

// validateCoordinates verifica que as coordenadas sejam válidas.
func validateCoordinates(lat, lng float64, c Country) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90 (got %f)", lat)
	}

	if lng < -180 || lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180 (got %f)", lng)
	}

	if lat < c.MinLat || lat > c.MaxLat {
		return fmt.Errorf("latitude outside %s bounds (%f to %f): %f", c.Code, c.MinLat, c.MaxLat, lat)
	}

	if lng < c.MinLng || lng > c.MaxLng {
		return fmt.Errorf("longitude outside %s bounds (%f to %f): %f", c.Code, c.MinLng, c.MaxLng, lng)
	}

	return nil
}

// MaxQueryLength is the longest query, in runes, sent to a provider.
const MaxQueryLength = 500

// sanitizeQuery collapses whitespace runs and cuts q to MaxQueryLength
// runes. The bool reports whether q was cut.
func sanitizeQuery(q string) (string, bool) {
	q = strings.Join(strings.Fields(q), " ")

	if r := []rune(q); len(r) > MaxQueryLength {
		return string(r[:MaxQueryLength]), true
	}

	return q, false
}
