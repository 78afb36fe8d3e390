// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jcodagnone/transporte/utils/httputils"
)

// DefaultGoogleMapsURL is the Geocoding API endpoint.
const DefaultGoogleMapsURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	endpoint   string
	country    Country
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder. A nil client
// gets the default one.
func NewGoogleMapsGeocoder(apiKey string, country Country, httpClient *http.Client) *GoogleMapsGeocoder {
	if httpClient == nil {
		httpClient = httputils.NewClient(httputils.ClientOptions{UserAgent: DefaultUserAgent})
	}

	return &GoogleMapsGeocoder{
		apiKey:     apiKey,
		endpoint:   DefaultGoogleMapsURL,
		country:    country,
		httpClient: httpClient,
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// Geocode implements Geocoder.
func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, query string) (*GeocodedPoint, error) {
	q, _ := sanitizeQuery(query)
	if q == "" {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "empty query"}
	}

	if g.apiKey == "" {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "google maps API key is not configured"}
	}

	params := url.Values{}
	params.Set("address", q)
	params.Set("key", g.apiKey)
	params.Set("region", g.country.Code)
	params.Set("components", "country:"+strings.ToUpper(g.country.Code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodingError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, ProviderGoogleMaps)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, ProviderGoogleMaps)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, &GeocodingError{Type: ErrorTypeMalformed, Message: "decoding google maps response", Err: err}
	}

	switch gmResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: fmt.Sprintf("no results found for %q", q)}
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return nil, &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "google maps status: " + gmResp.Status}
	case "INVALID_REQUEST", "REQUEST_DENIED":
		return nil, &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: fmt.Sprintf("google maps status: %s %s", gmResp.Status, gmResp.ErrorMessage),
		}
	default:
		return nil, &GeocodingError{Type: ErrorTypeUnknown, Message: "google maps status: " + gmResp.Status}
	}

	if len(gmResp.Results) == 0 {
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: fmt.Sprintf("no results found for %q", q)}
	}

	result := gmResp.Results[0]

	return newGeocodedPoint(
		result.Geometry.Location.Lat,
		result.Geometry.Location.Lng,
		result.FormattedAddress,
		ProviderGoogleMaps,
		g.country,
	)
}
