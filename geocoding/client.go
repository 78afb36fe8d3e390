// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
)

// Client turns provider failures into an absent result.
type Client struct {
	geocoder Geocoder
	logger   log.FieldLogger
}

// NewClient wraps g. A nil logger uses the standard logrus logger.
func NewClient(g Geocoder, logger log.FieldLogger) *Client {
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &Client{geocoder: g, logger: logger}
}

// Lookup geocodes address and returns nil when it is blank, when the
// provider finds nothing, or when the request fails for any reason. The
// provider is not called for blank addresses.
//
// Whitespace runs inside address are collapsed to one space, and addresses
// longer than MaxQueryLength runes are cut to that length with a warning.
func (c *Client) Lookup(ctx context.Context, address string) *GeocodedPoint {
	q, truncated := sanitizeQuery(address)
	if q == "" {
		return nil
	}

	if truncated {
		c.logger.WithFields(log.Fields{
			"length": utf8.RuneCountInString(strings.TrimSpace(address)),
			"limit":  MaxQueryLength,
		}).Warn("address truncated")
	}

	p, err := c.geocoder.Geocode(ctx, q)
	if err != nil {
		entry := c.logger.WithError(err).WithField("address", q)

		switch {
		case errors.Is(err, context.Canceled):
			entry.Debug("geocoding cancelled")
		case IsNotFoundError(err):
			entry.Info("address not found")
		default:
			if t, ok := errorType(err); ok {
				entry = entry.WithField("type", t.String())
			}

			entry.Warn("geocoding failed")
		}

		return nil
	}

	if p == nil {
		c.logger.WithField("address", q).Info("address not found")
	}

	return p
}
