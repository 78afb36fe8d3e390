// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage persists registry snapshots in DuckDB, one row per
// entity collection.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// DuckDB driver.
	_ "github.com/duckdb/duckdb-go/v2"
	log "github.com/sirupsen/logrus"

	"github.com/jcodagnone/transporte/registry"
)

// Collection keys. They keep the names the browser version used for its
// local storage entries so exported data stays recognizable.
const (
	KeyDrivers   = "schoolBus_motoristas"
	KeyGuardians = "schoolBus_pais"
	KeyStudents  = "schoolBus_alunos"
	KeyRoutes    = "schoolBus_rotas"
	KeyRequests  = "schoolBus_solicitacoes"
	KeyUser      = "schoolBus_usuario"
)

// Keys lists every collection key in save order.
var Keys = []string{KeyDrivers, KeyGuardians, KeyStudents, KeyRoutes, KeyRequests, KeyUser}

// CollectionInfo describes one stored row.
type CollectionInfo struct {
	Key       string    `json:"key"`
	Bytes     int       `json:"bytes"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store reads and writes snapshots.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	logger log.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for load warnings.
func WithLogger(l log.FieldLogger) Option {
	return func(s *Store) { s.logger = l }
}

// New wraps an open database. Call CreateSchema before use.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now, logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Open opens (or creates) the DuckDB database at path and makes sure the
// schema exists. An empty path opens an in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}

	s := New(db, opts...)
	if err := s.CreateSchema(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema creates the collections table.
func (s *Store) CreateSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS collections (
			key VARCHAR PRIMARY KEY,
			data VARCHAR NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);
	`)

	return err
}

func encodeSnapshot(snap *registry.Snapshot) (map[string][]byte, error) {
	values := map[string]any{
		KeyDrivers:   snap.Drivers,
		KeyGuardians: snap.Guardians,
		KeyStudents:  snap.Students,
		KeyRoutes:    snap.Routes,
		KeyRequests:  snap.Requests,
		KeyUser:      snap.User,
	}

	out := make(map[string][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", key, err)
		}

		out[key] = data
	}

	return out, nil
}

// Save writes every collection of snap in a single transaction.
func (s *Store) Save(snap *registry.Snapshot) error {
	if snap == nil {
		snap = &registry.Snapshot{}
	}

	rows, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO collections (key, data, updated_at) VALUES (?, ?, ?)`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			return fmt.Errorf("preparing statement: %w (rollback: %w)", err, rErr)
		}

		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := s.now()
	for _, key := range Keys {
		if _, err := stmt.Exec(key, string(rows[key]), now); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				return fmt.Errorf("saving %s: %w (rollback: %w)", key, err, rErr)
			}

			return fmt.Errorf("saving %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// Load reads the stored snapshot. Missing collections come back empty; a
// row that cannot be decoded is logged and treated as missing.
func (s *Store) Load() (*registry.Snapshot, error) {
	rows, err := s.db.Query(`SELECT key, data FROM collections`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	snap := &registry.Snapshot{}
	targets := map[string]any{
		KeyDrivers:   &snap.Drivers,
		KeyGuardians: &snap.Guardians,
		KeyStudents:  &snap.Students,
		KeyRoutes:    &snap.Routes,
		KeyRequests:  &snap.Requests,
		KeyUser:      &snap.User,
	}

	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}

		target, ok := targets[key]
		if !ok {
			s.logger.WithField("key", key).Debug("ignoring unknown collection")

			continue
		}

		if err := json.Unmarshal([]byte(data), target); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("unreadable collection, using empty default")
			resetTarget(snap, key)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading collections: %w", err)
	}

	return snap, nil
}

// resetTarget drops whatever a failed decode left half-written.
func resetTarget(snap *registry.Snapshot, key string) {
	switch key {
	case KeyDrivers:
		snap.Drivers = nil
	case KeyGuardians:
		snap.Guardians = nil
	case KeyStudents:
		snap.Students = nil
	case KeyRoutes:
		snap.Routes = nil
	case KeyRequests:
		snap.Requests = nil
	case KeyUser:
		snap.User = nil
	}
}

// Info lists the stored rows ordered by key.
func (s *Store) Info() ([]CollectionInfo, error) {
	rows, err := s.db.Query(`SELECT key, length(data), updated_at FROM collections ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var out []CollectionInfo

	for rows.Next() {
		var info CollectionInfo
		if err := rows.Scan(&info.Key, &info.Bytes, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}

		out = append(out, info)
	}

	return out, rows.Err()
}

// IsEmpty reports whether nothing was ever saved.
func (s *Store) IsEmpty() (bool, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM collections`).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return true, nil
		}

		return false, err
	}

	return count == 0, nil
}

// Clear deletes every stored collection.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM collections`)

	return err
}
