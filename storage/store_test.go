// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcodagnone/transporte/address"
	"github.com/jcodagnone/transporte/registry"
)

var fixedNow = time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)

func setupTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)

	s, err := Open("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func sampleSnapshot(t *testing.T) *registry.Snapshot {
	t.Helper()

	n := 0
	reg := registry.New(
		registry.WithClock(func() time.Time { return fixedNow }),
		registry.WithIDGenerator(func() string {
			n++

			return fmt.Sprintf("id-%d", n)
		}),
	)

	d, err := reg.CreateDriver(registry.CreateDriverInput{Name: "Carlos Souza", CPF: "111", CNH: "222"})
	require.NoError(t, err)

	g, err := reg.CreateGuardian(registry.CreateGuardianInput{Name: "Maria", CPF: "333", Address: "Rua do Sol, 20", City: "Recife"})
	require.NoError(t, err)

	st, err := reg.CreateStudent(registry.CreateStudentInput{Name: "João", Age: 9, School: "Escola", GuardianID: g.ID})
	require.NoError(t, err)

	r, err := reg.CreateRoute(registry.CreateRouteInput{
		Name: "Linha A", DriverID: d.ID, Schedule: "07:00", SeatCount: 12,
		Origin:      address.Record{Street: "Rua X", Number: "10", City: "Recife", State: "PE"},
		Destination: address.Record{Legacy: "Praça Y"},
	})
	require.NoError(t, err)

	_, err = reg.Login(registry.LoginInput{Login: "ana", Password: "secret"})
	require.NoError(t, err)

	_, err = reg.RequestSeat(registry.RequestSeatInput{RouteID: r.ID, StudentID: st.ID})
	require.NoError(t, err)

	return reg.Snapshot()
}

func TestCreateSchema(t *testing.T) {
	s := setupTestStore(t)

	var tableName string

	err := s.DB().QueryRow("SELECT table_name FROM information_schema.tables WHERE table_name = 'collections'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "collections", tableName)

	// idempotent
	require.NoError(t, s.CreateSchema())
}

func TestSaveAndLoad(t *testing.T) {
	s := setupTestStore(t)
	want := sampleSnapshot(t)

	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	infos, err := s.Info()
	require.NoError(t, err)
	require.Len(t, infos, len(Keys))

	for _, info := range infos {
		assert.Positive(t, info.Bytes, info.Key)
		assert.True(t, fixedNow.Equal(info.UpdatedAt), info.Key)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Save(sampleSnapshot(t)))
	require.NoError(t, s.Save(&registry.Snapshot{}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Drivers)
	assert.Empty(t, got.Routes)
	assert.Nil(t, got.User)
}

func TestLoadEmptyStore(t *testing.T) {
	s := setupTestStore(t)

	empty, err := s.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Drivers)
	assert.Empty(t, got.Requests)
	assert.Nil(t, got.User)
}

func TestLoadCorruptRow(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := setupTestStore(t, WithLogger(logger))

	require.NoError(t, s.Save(sampleSnapshot(t)))

	_, err := s.DB().Exec(`UPDATE collections SET data = '{not json' WHERE key = ?`, KeyRoutes)
	require.NoError(t, err)

	got, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, got.Routes)
	assert.Len(t, got.Drivers, 1)
	assert.Len(t, got.Requests, 1)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, KeyRoutes, hook.LastEntry().Data["key"])
}

func TestLoadLegacyRouteRow(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.DB().Exec(`INSERT INTO collections VALUES (?, ?, ?)`, KeyRoutes,
		`[{"id":"r1","nome":"Linha B","motoristaId":"d1","horario":"06:45","vagas":"8","origem":" Rua Velha, 5 ","destino":"Escola Z"}]`,
		fixedNow)
	require.NoError(t, err)

	got, err := s.Load()
	require.NoError(t, err)
	require.Len(t, got.Routes, 1)

	r := got.Routes[0]
	assert.Equal(t, 8, r.SeatCount)
	assert.Equal(t, "Rua Velha, 5", registry.ResolveRouteAddress(&r, address.Origin))
	assert.Equal(t, "Escola Z", registry.ResolveRouteAddress(&r, address.Destination))
}

func TestClear(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.Save(sampleSnapshot(t)))
	require.NoError(t, s.Clear())

	empty, err := s.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestExportImportJSON(t *testing.T) {
	src := setupTestStore(t)
	want := sampleSnapshot(t)
	require.NoError(t, src.Save(want))

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, ExportJSON(src, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var seed map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &seed))
	assert.JSONEq(t, `"1.0"`, string(seed["version"]))
	assert.Contains(t, seed, "dados")

	dst := setupTestStore(t)
	got, err := ImportJSON(dst, path)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("ImportJSON() mismatch (-want +got):\n%s", diff)
	}

	loaded, err := dst.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(want, loaded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Load() after import mismatch (-want +got):\n%s", diff)
	}
}

func TestImportJSONErrors(t *testing.T) {
	s := setupTestStore(t)

	_, err := ImportJSON(s, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))

	_, err = ImportJSON(s, bad)
	assert.ErrorContains(t, err, "parsing JSON")
}

func TestSeedIfEmpty(t *testing.T) {
	src := setupTestStore(t)
	require.NoError(t, src.Save(sampleSnapshot(t)))

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, ExportJSON(src, path))

	dst := setupTestStore(t)

	seeded, err := SeedIfEmpty(dst, filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.False(t, seeded)

	seeded, err = SeedIfEmpty(dst, path)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = SeedIfEmpty(dst, path)
	require.NoError(t, err)
	assert.False(t, seeded)
}
