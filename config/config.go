// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads and validates application configuration from the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Geocoder providers.
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

// DefaultEnvFile is read when no env file is given and it exists.
const DefaultEnvFile = ".env"

// Config holds all configuration values.
type Config struct {
	// DBPath is the directory holding the DuckDB file. Defaults to "db".
	DBPath string

	// Listen is the HTTP address of the API server.
	Listen string

	// Geocoder is either "nominatim" or "google".
	Geocoder     string
	NominatimURL string
	Country      string

	// GeocodeDelay is the pause between routes during a map refresh.
	GeocodeDelay time.Duration
	HTTPTimeout  time.Duration

	// TileURL overrides the OpenStreetMap tile template when set.
	TileURL string

	// AutoRefresh schedules a map refresh after every mutation.
	AutoRefresh bool

	LogLevel log.Level
	LogFile  string

	GoogleMapsAPIKey   string
	GoogleCloudProject string
}

// Load reads envFile (or .env when envFile is empty and the file exists)
// and then the process environment. Variables already set in the
// environment win over the file. Every invalid value is reported in a
// single error.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:             getEnv("TRANSPORTE_DB_PATH", "db"),
		Listen:             getEnv("TRANSPORTE_LISTEN", "localhost:8080"),
		Geocoder:           strings.ToLower(getEnv("TRANSPORTE_GEOCODER", GeocoderNominatim)),
		NominatimURL:       os.Getenv("TRANSPORTE_NOMINATIM_URL"),
		Country:            strings.ToLower(getEnv("TRANSPORTE_COUNTRY", "br")),
		TileURL:            os.Getenv("TRANSPORTE_TILE_URL"),
		LogFile:            os.Getenv("TRANSPORTE_LOG_FILE"),
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		GoogleCloudProject: os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	var errs []error

	cfg.GeocodeDelay = parseDuration("TRANSPORTE_GEOCODE_DELAY", 500*time.Millisecond, &errs)
	cfg.HTTPTimeout = parseDuration("TRANSPORTE_HTTP_TIMEOUT", 10*time.Second, &errs)

	autoRefresh, err := strconv.ParseBool(getEnv("TRANSPORTE_AUTO_REFRESH", "true"))
	if err != nil {
		errs = append(errs, fmt.Errorf("TRANSPORTE_AUTO_REFRESH: %w", err))
	}

	cfg.AutoRefresh = autoRefresh

	level, err := log.ParseLevel(getEnv("TRANSPORTE_LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("TRANSPORTE_LOG_LEVEL: %w", err))
	}

	cfg.LogLevel = level

	errs = append(errs, cfg.check()...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	return cfg, nil
}

// Validate checks a Config that was modified after Load, typically by
// command line flags.
func (c *Config) Validate() error {
	if errs := c.check(); len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Config) check() []error {
	var errs []error

	switch c.Geocoder {
	case GeocoderNominatim:
	case GeocoderGoogle:
		if c.GoogleMapsAPIKey == "" && c.GoogleCloudProject == "" {
			errs = append(errs, errors.New("GOOGLE_MAPS_API_KEY or GOOGLE_CLOUD_PROJECT is required by the google geocoder"))
		}
	default:
		errs = append(errs, fmt.Errorf("TRANSPORTE_GEOCODER: unknown geocoder %q", c.Geocoder))
	}

	if len(c.Country) != 2 {
		errs = append(errs, fmt.Errorf("TRANSPORTE_COUNTRY: expected a two letter code, got %q", c.Country))
	}

	if c.GeocodeDelay < 0 {
		errs = append(errs, fmt.Errorf("TRANSPORTE_GEOCODE_DELAY: must not be negative (got %s)", c.GeocodeDelay))
	}

	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("TRANSPORTE_HTTP_TIMEOUT: must be positive (got %s)", c.HTTPTimeout))
	}

	if strings.TrimSpace(c.Listen) == "" {
		errs = append(errs, errors.New("TRANSPORTE_LISTEN: must not be empty"))
	}

	return errs
}

func loadEnvFile(envFile string) error {
	if envFile == "" {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}

		envFile = DefaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("env file %s not found", envFile)
		}

		return fmt.Errorf("loading env file %s: %w", envFile, err)
	}

	return nil
}

func parseDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))

		return fallback
	}

	return d
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return fallback
}
