// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/jcodagnone/transporte/registry"
)

// SeedVersion is written into exported seed files.
const SeedVersion = "1.0"

// SeedData represents the JSON seed file format.
type SeedData struct {
	Version     string             `json:"version"`
	LastUpdated time.Time          `json:"last_updated"`
	Snapshot    *registry.Snapshot `json:"dados"`
}

// ExportJSON writes the stored snapshot to a JSON file.
func ExportJSON(s *Store, filepath string) error {
	snap, err := s.Load()
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	seed := &SeedData{
		Version:     SeedVersion,
		LastUpdated: s.now(),
		Snapshot:    snap,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// ReadSeed parses a seed file.
func ReadSeed(filepath string) (*SeedData, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if seed.Snapshot == nil {
		seed.Snapshot = &registry.Snapshot{}
	}

	return &seed, nil
}

// ImportJSON replaces the stored snapshot with the one in filepath and
// returns it.
func ImportJSON(s *Store, filepath string) (*registry.Snapshot, error) {
	seed, err := ReadSeed(filepath)
	if err != nil {
		return nil, err
	}

	if err := s.Save(seed.Snapshot); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	return seed.Snapshot, nil
}

// SeedIfEmpty imports filepath when nothing was saved yet. A missing seed
// file is not an error.
func SeedIfEmpty(s *Store, filepath string) (bool, error) {
	empty, err := s.IsEmpty()
	if err != nil {
		return false, fmt.Errorf("counting collections: %w", err)
	}

	if !empty {
		return false, nil
	}

	if _, err := os.Stat(filepath); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if _, err := ImportJSON(s, filepath); err != nil {
		return false, err
	}

	return true, nil
}
