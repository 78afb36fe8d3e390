// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/jcodagnone/transporte/config"
	"github.com/jcodagnone/transporte/geocoding"
	"github.com/jcodagnone/transporte/mapview"
	"github.com/jcodagnone/transporte/registry"
	"github.com/jcodagnone/transporte/storage"
	"github.com/jcodagnone/transporte/utils/httputils"
)

const dbFile = "transporte.duckdb"

func dbFilePath() string {
	return filepath.Join(cfg.DBPath, dbFile)
}

// openStore opens the database, creating its directory when needed.
func openStore() (*storage.Store, error) {
	if err := os.MkdirAll(cfg.DBPath, 0o750); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	return storage.Open(dbFilePath())
}

// loadRegistry returns a registry holding the stored snapshot.
func loadRegistry(store *storage.Store) (*registry.Registry, error) {
	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading registry: %w", err)
	}

	reg := registry.New()
	reg.Restore(snap)

	return reg, nil
}

// newGeocoder builds the configured provider.
func newGeocoder(ctx context.Context) (geocoding.Geocoder, error) {
	httpClient := httputils.NewClient(httputils.ClientOptions{
		UserAgent: geocoding.DefaultUserAgent,
		Timeout:   cfg.HTTPTimeout,
		Trace:     cfg.LogLevel >= log.TraceLevel,
	})
	country := geocoding.CountryByCode(cfg.Country)

	switch cfg.Geocoder {
	case config.GeocoderGoogle:
		key := cfg.GoogleMapsAPIKey
		if key == "" {
			log.Info("GOOGLE_MAPS_API_KEY is not set, retrieving it via ADC")

			var err error

			key, err = geocoding.APIKeyFromADC(ctx, cfg.GoogleCloudProject)
			if err != nil {
				return nil, fmt.Errorf("retrieving api key: %w", err)
			}
		}

		return geocoding.NewGoogleMapsGeocoder(key, country, httpClient), nil
	default:
		opts := []geocoding.NominatimOption{
			geocoding.WithCountry(country),
			geocoding.WithHTTPClient(httpClient),
		}
		if cfg.NominatimURL != "" {
			opts = append(opts, geocoding.WithBaseURL(cfg.NominatimURL))
		}

		return geocoding.NewNominatimGeocoder(opts...), nil
	}
}

// newClient wraps the configured provider in the absent-on-failure client.
func newClient(ctx context.Context) (*geocoding.Client, error) {
	g, err := newGeocoder(ctx)
	if err != nil {
		return nil, err
	}

	return geocoding.NewClient(g, log.StandardLogger()), nil
}

func newPipeline(client *geocoding.Client) *geocoding.Pipeline {
	p := geocoding.NewPipeline(client)
	p.Delay = cfg.GeocodeDelay

	return p
}

func rendererConfig() mapview.Config {
	c := mapview.DefaultConfig()
	if cfg.TileURL != "" {
		c.Tiles.URLTemplate = cfg.TileURL
	}

	return c
}

// progressReporter draws a progress bar on a terminal and logs otherwise.
func progressReporter(description string) func(done, total int) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return func(done, total int) {
			log.WithFields(log.Fields{"done": done, "total": total}).Debug(description)
		}
	}

	var bar *progressbar.ProgressBar

	return func(done, total int) {
		if bar == nil || bar.GetMax() != total {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		if err := bar.Set(done); err != nil {
			log.WithError(err).Debug("updating progress bar")
		}
	}
}
