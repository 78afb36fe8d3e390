// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jcodagnone/transporte/utils/httputils"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent identifies the application, as the Nominatim usage
	// policy requires.
	DefaultUserAgent = "TransporteEscolar/1.0"
)

// NominatimGeocoder uses the OpenStreetMap Nominatim search API.
type NominatimGeocoder struct {
	baseURL    string
	country    Country
	httpClient *http.Client
}

// NominatimOption configures a NominatimGeocoder.
type NominatimOption func(*NominatimGeocoder)

// WithBaseURL points the geocoder at another Nominatim instance.
func WithBaseURL(u string) NominatimOption {
	return func(g *NominatimGeocoder) {
		g.baseURL = strings.TrimRight(u, "/")
	}
}

// WithCountry restricts results to c.
func WithCountry(c Country) NominatimOption {
	return func(g *NominatimGeocoder) {
		g.country = c
	}
}

// WithHTTPClient replaces the default client. The caller is responsible for
// sending a User-Agent.
func WithHTTPClient(c *http.Client) NominatimOption {
	return func(g *NominatimGeocoder) {
		g.httpClient = c
	}
}

// NewNominatimGeocoder creates a new Nominatim geocoder.
func NewNominatimGeocoder(opts ...NominatimOption) *NominatimGeocoder {
	g := &NominatimGeocoder{
		baseURL: DefaultNominatimURL,
		country: Brazil,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.httpClient == nil {
		g.httpClient = httputils.NewClient(httputils.ClientOptions{UserAgent: DefaultUserAgent})
	}

	return g
}

type nominatimCandidate struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode implements Geocoder. Only the first candidate is considered.
func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (*GeocodedPoint, error) {
	q, _ := sanitizeQuery(query)
	if q == "" {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "empty query"}
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", q)
	params.Set("limit", "1")
	params.Set("countrycodes", g.country.Code)

	reqURL := g.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, ProviderNominatim)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ClassifyHTTPError(resp.StatusCode, ProviderNominatim)
	}

	var candidates []nominatimCandidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformed, Message: "decoding nominatim response", Err: err}
	}

	if len(candidates) == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no results found for %q", q),
		}
	}

	c := candidates[0]

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(c.Lat), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(c.Lon), 64)

	if err := errors.Join(latErr, lngErr); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformed, Message: "parsing nominatim coordinates", Err: err}
	}

	return newGeocodedPoint(lat, lng, c.DisplayName, ProviderNominatim, g.country)
}
