// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcodagnone/transporte/spatial"
)

func newNominatimServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()

	var seen http.Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r.Clone(context.Background())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, &seen
}

func TestNominatimGeocode(t *testing.T) {
	srv, seen := newNominatimServer(t, http.StatusOK,
		`[{"lat":"-8.0476","lon":"-34.8770","display_name":"Rua X, Recife, Pernambuco, Brasil"}]`)

	g := NewNominatimGeocoder(WithBaseURL(srv.URL + "/"))

	p, err := g.Geocode(context.Background(), "  Rua X, 10,  Recife ")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, spatial.Point{Lat: -8.0476, Lng: -34.8770}, p.Point)
	assert.Equal(t, "Rua X, Recife, Pernambuco, Brasil", p.DisplayAddress)
	assert.Equal(t, ProviderNominatim, p.Provider)
	assert.True(t, p.Cell.IsValid())

	assert.Equal(t, "/search", seen.URL.Path)
	q := seen.URL.Query()
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "Rua X, 10, Recife", q.Get("q"))
	assert.Equal(t, "1", q.Get("limit"))
	assert.Equal(t, "br", q.Get("countrycodes"))
	assert.Equal(t, DefaultUserAgent, seen.Header.Get("User-Agent"))
}

func TestNominatimGeocodeFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType ErrorType
	}{
		{"zero candidates", http.StatusOK, `[]`, ErrorTypeNotFound},
		{"rate limited", http.StatusTooManyRequests, ``, ErrorTypeRateLimit},
		{"server error", http.StatusServiceUnavailable, ``, ErrorTypeNetworkError},
		{"malformed payload", http.StatusOK, `{"error":`, ErrorTypeMalformed},
		{"object instead of list", http.StatusOK, `{"lat":"1"}`, ErrorTypeMalformed},
		{"unparsable latitude", http.StatusOK, `[{"lat":"abc","lon":"-34.8"}]`, ErrorTypeMalformed},
		{"outside the country", http.StatusOK, `[{"lat":"38.72","lon":"-9.13"}]`, ErrorTypeInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newNominatimServer(t, tt.status, tt.body)
			g := NewNominatimGeocoder(WithBaseURL(srv.URL))

			p, err := g.Geocode(context.Background(), "Rua X")
			assert.Nil(t, p)
			require.Error(t, err)

			gotType, ok := errorType(err)
			require.True(t, ok, "expected a *GeocodingError, got %T", err)
			assert.Equal(t, tt.wantType, gotType, err.Error())
		})
	}
}

func TestNominatimTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewNominatimGeocoder(WithBaseURL(url))

	p, err := g.Geocode(context.Background(), "Rua X")
	assert.Nil(t, p)

	gotType, ok := errorType(err)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeNetworkError, gotType)
}

func TestNominatimEmptyQuery(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls++ }))
	defer srv.Close()

	_, err := NewNominatimGeocoder(WithBaseURL(srv.URL)).Geocode(context.Background(), " \t ")
	require.Error(t, err)
	assert.Zero(t, calls)
}
