// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"errors"
	"fmt"
	"testing"
)

type errorCheckTestCase struct {
	name string
	err  error
	want bool
}

func runErrorCheckTest(t *testing.T, tests []errorCheckTestCase, checkFunc func(error) bool) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkFunc(tt.err); got != tt.want {
				t.Errorf("checkFunc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "rate limit error type",
			err:  &GeocodingError{Type: ErrorTypeRateLimit, Message: "rate limit exceeded"},
			want: true,
		},
		{
			name: "wrapped rate limit error",
			err:  fmt.Errorf("route 3: %w", &GeocodingError{Type: ErrorTypeRateLimit, Message: "x"}),
			want: true,
		},
		{
			name: "error message contains too many requests",
			err:  errors.New("too many requests"),
			want: true,
		},
		{
			name: "error message contains 429",
			err:  errors.New("nominatim returned status 429"),
			want: true,
		},
		{
			name: "other error type",
			err:  &GeocodingError{Type: ErrorTypeNotFound, Message: "not found"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}, IsRateLimitError)
}

func TestIsQuotaExceededError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "quota exceeded error type",
			err:  &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "quota exceeded"},
			want: true,
		},
		{
			name: "error message contains over_query_limit",
			err:  errors.New("google maps status: OVER_QUERY_LIMIT"),
			want: true,
		},
		{
			name: "other error type",
			err:  &GeocodingError{Type: ErrorTypeRateLimit, Message: "rate limit"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}, IsQuotaExceededError)
}

func TestIsTimeoutError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "timeout error type",
			err:  &GeocodingError{Type: ErrorTypeTimeout, Message: "timeout"},
			want: true,
		},
		{
			name: "error message contains deadline exceeded",
			err:  errors.New("context deadline exceeded"),
			want: true,
		},
		{
			name: "network error wrapping a timeout",
			err:  &GeocodingError{Type: ErrorTypeNetworkError, Message: "x", Err: errors.New("i/o timeout")},
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}, IsTimeoutError)
}

func TestIsNotFoundError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "not found error type",
			err:  &GeocodingError{Type: ErrorTypeNotFound, Message: "not found"},
			want: true,
		},
		{
			name: "message alone is not enough",
			err:  errors.New("not found"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}, IsNotFoundError)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		statusCode int
		wantType   ErrorType
	}{
		{429, ErrorTypeRateLimit},
		{403, ErrorTypeQuotaExceeded},
		{400, ErrorTypeInvalidRequest},
		{404, ErrorTypeNotFound},
		{503, ErrorTypeNetworkError},
		{502, ErrorTypeNetworkError},
		{504, ErrorTypeNetworkError},
		{500, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.statusCode), func(t *testing.T) {
			got := ClassifyHTTPError(tt.statusCode, ProviderNominatim)
			if got.Type != tt.wantType {
				t.Errorf("ClassifyHTTPError() type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}
}

func TestGeocodingErrorUnwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	geoErr := &GeocodingError{
		Type:    ErrorTypeNotFound,
		Message: "location not found",
		Err:     innerErr,
	}

	if !errors.Is(geoErr, innerErr) {
		t.Error("errors.Is should find wrapped error")
	}

	if geoErr.Error() != "location not found: inner error" {
		t.Errorf("unexpected message %q", geoErr.Error())
	}
}
