// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcodagnone/transporte/address"
)

var fixedNow = time.Date(2025, 3, 10, 7, 30, 0, 0, time.UTC)

// newTestRegistry returns a registry with sequential ids and a fixed clock.
func newTestRegistry() *Registry {
	n := 0

	return New(
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string {
			n++

			return fmt.Sprintf("id-%d", n)
		}),
	)
}

type fixture struct {
	reg      *Registry
	driver   Driver
	guardian Guardian
	student  Student
	route    Route
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reg := newTestRegistry()

	d, err := reg.CreateDriver(CreateDriverInput{Name: "Carlos Souza", CPF: "111.222.333-44", CNH: "987654", Phone: "81 9999-0000"})
	require.NoError(t, err)

	g, err := reg.CreateGuardian(CreateGuardianInput{
		Name: "Maria Conceição", CPF: "555.666.777-88", Email: "maria@example.com",
		Address: "Rua do Sol, 20", City: "Recife", PostalCode: "50000000",
	})
	require.NoError(t, err)

	s, err := reg.CreateStudent(CreateStudentInput{Name: "João", Age: 9, School: "Escola São Bento", GuardianID: g.ID})
	require.NoError(t, err)

	r, err := reg.CreateRoute(CreateRouteInput{
		Name: "Linha A", DriverID: d.ID, Schedule: "07:00", SeatCount: 12,
		Origin:      address.Record{Street: "Rua X", Number: "10", City: "Recife", State: "pe"},
		Destination: address.Record{Legacy: "Praça Y"},
	})
	require.NoError(t, err)

	return &fixture{reg: reg, driver: d, guardian: g, student: s, route: r}
}

func TestCreateCommands(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "id-1", f.driver.ID)
	assert.Equal(t, fixedNow, f.driver.CreatedAt)
	assert.Equal(t, "50000-000", f.guardian.PostalCode)
	assert.Equal(t, f.guardian.ID, f.student.GuardianID)

	want := Route{
		ID: "id-4", Name: "Linha A", DriverID: f.driver.ID, Schedule: "07:00", SeatCount: 12,
		Origin:      address.Record{Street: "Rua X", Number: "10", City: "Recife", State: "PE", Legacy: "Rua X, 10, Recife, PE"},
		Destination: address.Record{Legacy: "Praça Y"},
		CreatedAt:   fixedNow,
	}
	if diff := cmp.Diff(want, f.route); diff != "" {
		t.Errorf("CreateRoute() mismatch (-want +got):\n%s", diff)
	}
}

func TestLinhaAResolvesBothEnds(t *testing.T) {
	f := newFixture(t)

	route, ok := f.reg.Route(f.route.ID)
	require.True(t, ok)

	assert.Equal(t, "Rua X, 10, Recife, PE", ResolveRouteAddress(&route, address.Origin))
	assert.Equal(t, "Praça Y", ResolveRouteAddress(&route, address.Destination))
	assert.Equal(t, "", ResolveRouteAddress(nil, address.Origin))
	assert.Equal(t, "", ResolveRouteAddress(&route, address.Endpoint("meio")))
}

func TestCreateValidation(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.CreateDriver(CreateDriverInput{Name: "  ", CPF: "1", CNH: "2"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "nome")

	_, err = reg.CreateGuardian(CreateGuardianInput{Name: "A", CPF: "1", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = reg.CreateStudent(CreateStudentInput{Name: "A", School: "B", GuardianID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	d, err := reg.CreateDriver(CreateDriverInput{Name: "A", CPF: "1", CNH: "2"})
	require.NoError(t, err)

	_, err = reg.CreateRoute(CreateRouteInput{
		Name: "R", DriverID: d.ID, Schedule: "07:00", SeatCount: 0,
		Origin: address.Record{Legacy: "a"}, Destination: address.Record{Legacy: "b"},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = reg.CreateRoute(CreateRouteInput{
		Name: "R", DriverID: d.ID, Schedule: "07:00", SeatCount: 4,
		Origin: address.Record{Legacy: "a"}, Destination: address.Record{City: "Recife"},
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "destino")

	_, err = reg.CreateRoute(CreateRouteInput{
		Name: "R", DriverID: "ghost", Schedule: "07:00", SeatCount: 4,
		Origin: address.Record{Legacy: "a"}, Destination: address.Record{Legacy: "b"},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, len(reg.Routes()))
}

func TestRequestSeatStatusAndAuthor(t *testing.T) {
	f := newFixture(t)
	in := RequestSeatInput{RouteID: f.route.ID, StudentID: f.student.ID, Justification: "mora longe"}

	req, err := f.reg.RequestSeat(in)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, AnonymousAuthor, req.Author)

	_, err = f.reg.Login(LoginInput{Login: "pedro", Password: "abc"})
	require.NoError(t, err)

	req, err = f.reg.RequestSeat(in)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, "pedro", req.Author)

	_, err = f.reg.Login(LoginInput{Login: AdminLogin, Password: AdminPassword})
	require.NoError(t, err)

	req, err = f.reg.RequestSeat(in)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, req.Status)
	assert.Equal(t, AdminLogin, req.Author)

	_, err = f.reg.RequestSeat(RequestSeatInput{RouteID: "ghost", StudentID: f.student.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitions(t *testing.T) {
	f := newFixture(t)

	req, err := f.reg.RequestSeat(RequestSeatInput{RouteID: f.route.ID, StudentID: f.student.ID})
	require.NoError(t, err)

	confirmed, err := f.reg.ConfirmRequest(req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.True(t, confirmed.IsActive())

	_, err = f.reg.ConfirmRequest(req.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.reg.DenyRequest(req.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	other, err := f.reg.RequestSeat(RequestSeatInput{RouteID: f.route.ID, StudentID: f.student.ID})
	require.NoError(t, err)

	denied, err := f.reg.DenyRequest(other.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, denied.Status)
	assert.False(t, denied.IsActive())

	_, err = f.reg.ConfirmRequest("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.reg.RequestSeat(RequestSeatInput{RouteID: f.route.ID, StudentID: f.student.ID})
		require.NoError(t, err)

		counts, err := f.reg.DeleteDriver(f.driver.ID)
		require.NoError(t, err)
		assert.Equal(t, RemovedCounts{Drivers: 1, Routes: 1, Requests: 1}, counts)
		assert.Empty(t, f.reg.Routes())
		assert.Empty(t, f.reg.Requests())
		assert.Len(t, f.reg.Students(), 1)
	})

	t.Run("guardian", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.reg.RequestSeat(RequestSeatInput{RouteID: f.route.ID, StudentID: f.student.ID})
		require.NoError(t, err)

		counts, err := f.reg.DeleteGuardian(f.guardian.ID)
		require.NoError(t, err)
		assert.Equal(t, RemovedCounts{Guardians: 1, Students: 1, Requests: 1}, counts)
		assert.Empty(t, f.reg.Students())
		assert.Empty(t, f.reg.Requests())
		assert.Len(t, f.reg.Routes(), 1)
	})

	t.Run("student", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.reg.RequestSeat(RequestSeatInput{RouteID: f.route.ID, StudentID: f.student.ID})
		require.NoError(t, err)

		counts, err := f.reg.DeleteStudent(f.student.ID)
		require.NoError(t, err)
		assert.Equal(t, RemovedCounts{Students: 1, Requests: 1}, counts)
	})

	t.Run("route", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.reg.RequestSeat(RequestSeatInput{RouteID: f.route.ID, StudentID: f.student.ID})
		require.NoError(t, err)

		counts, err := f.reg.DeleteRoute(f.route.ID)
		require.NoError(t, err)
		assert.Equal(t, RemovedCounts{Routes: 1, Requests: 1}, counts)
		assert.Len(t, f.reg.Drivers(), 1)
	})

	t.Run("request", func(t *testing.T) {
		f := newFixture(t)
		req, err := f.reg.RequestSeat(RequestSeatInput{RouteID: f.route.ID, StudentID: f.student.ID})
		require.NoError(t, err)

		counts, err := f.reg.DeleteRequest(req.ID)
		require.NoError(t, err)
		assert.Equal(t, RemovedCounts{Requests: 1}, counts)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture(t)

		for _, del := range []func(string) (RemovedCounts, error){
			f.reg.DeleteDriver, f.reg.DeleteGuardian, f.reg.DeleteStudent, f.reg.DeleteRoute, f.reg.DeleteRequest,
		} {
			_, err := del("ghost")
			assert.ErrorIs(t, err, ErrNotFound)
		}
	})
}

func TestLogin(t *testing.T) {
	reg := newTestRegistry()

	_, err := reg.Login(LoginInput{Login: " ", Password: "abcdef"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = reg.Login(LoginInput{Login: "ana", Password: "ab"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, reg.CurrentUser())

	u, err := reg.Login(LoginInput{Login: "admin", Password: "wrong"})
	require.NoError(t, err)
	assert.Equal(t, User{Login: "admin"}, u)

	u, err = reg.Login(LoginInput{Login: "admin", Password: "admin1234"})
	require.NoError(t, err)
	assert.True(t, u.Admin)
	assert.Equal(t, &User{Login: "admin", Admin: true}, reg.CurrentUser())

	reg.Logout()
	assert.Nil(t, reg.CurrentUser())
}

func TestSnapshotRestore(t *testing.T) {
	f := newFixture(t)
	_, err := f.reg.Login(LoginInput{Login: "ana", Password: "123"})
	require.NoError(t, err)

	snap := f.reg.Snapshot()

	other := New()
	other.Restore(snap)

	if diff := cmp.Diff(snap, other.Snapshot()); diff != "" {
		t.Errorf("Restore() mismatch (-want +got):\n%s", diff)
	}

	other.Restore(nil)
	assert.Empty(t, other.Routes())
	assert.Nil(t, other.CurrentUser())
}
