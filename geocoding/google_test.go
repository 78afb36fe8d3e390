// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogleStub(t *testing.T, body string) (*GoogleMapsGeocoder, *url.Values) {
	t.Helper()

	var query url.Values

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	g := NewGoogleMapsGeocoder("test-key", Brazil, srv.Client())
	g.endpoint = srv.URL

	return g, &query
}

func TestGoogleMapsGeocode(t *testing.T) {
	g, query := newGoogleStub(t, `{
		"status": "OK",
		"results": [{
			"formatted_address": "Praça Y, Olinda - PE, Brasil",
			"geometry": {"location": {"lat": -8.0089, "lng": -34.8553}, "location_type": "GEOMETRIC_CENTER"}
		}]
	}`)

	p, err := g.Geocode(context.Background(), "Praça Y")
	require.NoError(t, err)

	assert.InDelta(t, -8.0089, p.Point.Lat, 1e-9)
	assert.InDelta(t, -34.8553, p.Point.Lng, 1e-9)
	assert.Equal(t, "Praça Y, Olinda - PE, Brasil", p.DisplayAddress)
	assert.Equal(t, ProviderGoogleMaps, p.Provider)

	assert.Equal(t, "Praça Y", query.Get("address"))
	assert.Equal(t, "test-key", query.Get("key"))
	assert.Equal(t, "br", query.Get("region"))
	assert.Equal(t, "country:BR", query.Get("components"))
}

func TestGoogleMapsStatuses(t *testing.T) {
	tests := []struct {
		status   string
		wantType ErrorType
	}{
		{"ZERO_RESULTS", ErrorTypeNotFound},
		{"OVER_QUERY_LIMIT", ErrorTypeQuotaExceeded},
		{"REQUEST_DENIED", ErrorTypeInvalidRequest},
		{"UNKNOWN_ERROR", ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			g, _ := newGoogleStub(t, `{"status":"`+tt.status+`","results":[]}`)

			_, err := g.Geocode(context.Background(), "Praça Y")
			gotType, ok := errorType(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, gotType)
		})
	}
}

func TestGoogleMapsWithoutKey(t *testing.T) {
	g := NewGoogleMapsGeocoder("", Brazil, nil)

	_, err := g.Geocode(context.Background(), "Praça Y")
	gotType, ok := errorType(err)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeInvalidRequest, gotType)
}
