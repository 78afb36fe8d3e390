// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry keeps drivers, guardians, students, routes and seat
// requests, and exposes the commands that change them.
//
// Each entity kind lives in its own Collection. Commands take input structs,
// validate them, check references and apply cascades; they are serialized by
// the registry lock so a cascade is never observed half done.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jcodagnone/transporte/address"
)

const (
	// AdminLogin and AdminPassword grant the admin flag.
	AdminLogin    = "admin"
	AdminPassword = "admin1234"
	// AnonymousAuthor signs requests made without a session.
	AnonymousAuthor = "anônimo"
)

// Registry owns the collections and the current session.
type Registry struct {
	mu sync.Mutex

	drivers   *Collection[Driver]
	guardians *Collection[Guardian]
	students  *Collection[Student]
	routes    *Collection[Route]
	requests  *Collection[SeatRequest]

	userMu sync.RWMutex
	user   *User

	validator *validator.Validate
	now       func() time.Time
	newID     func() string
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(r *Registry) { r.newID = gen }
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		drivers:   NewCollection[Driver](),
		guardians: NewCollection[Guardian](),
		students:  NewCollection[Student](),
		routes:    NewCollection[Route](),
		requests:  NewCollection[SeatRequest](),
		validator: newValidator(),
		now:       time.Now,
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

/////////////////////////////////////////
/// Snapshots

// Snapshot copies the whole state.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Snapshot{
		Drivers:   r.drivers.All(),
		Guardians: r.guardians.All(),
		Students:  r.students.All(),
		Routes:    r.routes.All(),
		Requests:  r.requests.All(),
	}

	s.User = r.CurrentUser()

	return s
}

// Restore replaces the whole state with s.
func (r *Registry) Restore(s *Snapshot) {
	if s == nil {
		s = &Snapshot{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.drivers.Replace(s.Drivers)
	r.guardians.Replace(s.Guardians)
	r.students.Replace(s.Students)
	r.routes.Replace(s.Routes)
	r.requests.Replace(s.Requests)
	r.setUser(s.User)
}

/////////////////////////////////////////
/// Queries

func (r *Registry) Drivers() []Driver { return r.drivers.All() }
func (r *Registry) Guardians() []Guardian { return r.guardians.All() }
func (r *Registry) Students() []Student { return r.students.All() }
func (r *Registry) Routes() []Route { return r.routes.All() }
func (r *Registry) Requests() []SeatRequest { return r.requests.All() }
func (r *Registry) Driver(id string) (Driver, bool) { return r.drivers.Find(id) }
func (r *Registry) Guardian(id string) (Guardian, bool) { return r.guardians.Find(id) }
func (r *Registry) Student(id string) (Student, bool) { return r.students.Find(id) }
func (r *Registry) Route(id string) (Route, bool) { return r.routes.Find(id) }
func (r *Registry) Request(id string) (SeatRequest, bool) { return r.requests.Find(id) }

// DriverName returns the name of the route's driver or "N/A".
func (r *Registry) DriverName(route *Route) string {
	if route != nil {
		if d, ok := r.drivers.Find(route.DriverID); ok && d.Name != "" {
			return d.Name
		}
	}

	return "N/A"
}

/////////////////////////////////////////
/// Create commands

// CreateDriver registers a driver.
func (r *Registry) CreateDriver(in CreateDriverInput) (Driver, error) {
	if err := r.validate(&in); err != nil {
		return Driver{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	d := Driver{
		ID:        r.newID(),
		Name:      in.Name,
		CPF:       in.CPF,
		CNH:       in.CNH,
		Phone:     in.Phone,
		CreatedAt: r.now(),
	}

	if err := r.drivers.Add(d); err != nil {
		return Driver{}, err
	}

	log.WithField("id", d.ID).Debug("driver created")

	return d, nil
}

// CreateGuardian registers a guardian.
func (r *Registry) CreateGuardian(in CreateGuardianInput) (Guardian, error) {
	if err := r.validate(&in); err != nil {
		return Guardian{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	g := Guardian{
		ID:         r.newID(),
		Name:       in.Name,
		CPF:        in.CPF,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		PostalCode: normalizePostalCode(in.PostalCode),
		CreatedAt:  r.now(),
	}

	if err := r.guardians.Add(g); err != nil {
		return Guardian{}, err
	}

	log.WithField("id", g.ID).Debug("guardian created")

	return g, nil
}

// CreateStudent registers a student.
func (r *Registry) CreateStudent(in CreateStudentInput) (Student, error) {
	if err := r.validate(&in); err != nil {
		return Student{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.guardians.Find(in.GuardianID); !ok {
		return Student{}, fmt.Errorf("%w: guardian %q", ErrNotFound, in.GuardianID)
	}

	s := Student{
		ID:         r.newID(),
		Name:       in.Name,
		Age:        in.Age,
		School:     in.School,
		GuardianID: in.GuardianID,
		CreatedAt:  r.now(),
	}

	if err := r.students.Add(s); err != nil {
		return Student{}, err
	}

	log.WithField("id", s.ID).Debug("student created")

	return s, nil
}

// CreateRoute registers a route. When an end has no legacy text it gets the
// composed structured address, so older readers still see it.
func (r *Registry) CreateRoute(in CreateRouteInput) (Route, error) {
	if err := r.validate(&in); err != nil {
		return Route{}, err
	}

	normalizeRecord(&in.Origin)
	normalizeRecord(&in.Destination)

	for _, end := range []struct {
		name address.Endpoint
		rec  *address.Record
	}{
		{address.Origin, &in.Origin},
		{address.Destination, &in.Destination},
	} {
		if address.ResolveRecord(end.rec) == "" {
			return Route{}, fmt.Errorf("%w: %s: address is required", ErrValidation, end.name)
		}

		if end.rec.Legacy == "" {
			end.rec.Legacy = address.ComposeRecord(*end.rec)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drivers.Find(in.DriverID); !ok {
		return Route{}, fmt.Errorf("%w: driver %q", ErrNotFound, in.DriverID)
	}

	route := Route{
		ID:          r.newID(),
		Name:        in.Name,
		DriverID:    in.DriverID,
		Schedule:    in.Schedule,
		SeatCount:   in.SeatCount,
		Origin:      in.Origin,
		Destination: in.Destination,
		CreatedAt:   r.now(),
	}

	if err := r.routes.Add(route); err != nil {
		return Route{}, err
	}

	log.WithField("id", route.ID).Debug("route created")

	return route, nil
}

// RequestSeat files a seat request. Admin requests are approved at once.
func (r *Registry) RequestSeat(in RequestSeatInput) (SeatRequest, error) {
	if err := r.validate(&in); err != nil {
		return SeatRequest{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes.Find(in.RouteID); !ok {
		return SeatRequest{}, fmt.Errorf("%w: route %q", ErrNotFound, in.RouteID)
	}

	if _, ok := r.students.Find(in.StudentID); !ok {
		return SeatRequest{}, fmt.Errorf("%w: student %q", ErrNotFound, in.StudentID)
	}

	req := SeatRequest{
		ID:            r.newID(),
		RouteID:       in.RouteID,
		StudentID:     in.StudentID,
		Status:        StatusPending,
		Justification: in.Justification,
		Author:        AnonymousAuthor,
		CreatedAt:     r.now(),
	}

	if u := r.CurrentUser(); u != nil {
		req.Author = u.Login
		if u.Admin {
			req.Status = StatusApproved
		}
	}

	if err := r.requests.Add(req); err != nil {
		return SeatRequest{}, err
	}

	log.WithFields(log.Fields{"id": req.ID, "status": req.Status}).Debug("seat requested")

	return req, nil
}

/////////////////////////////////////////
/// Transitions

// ConfirmRequest moves a pending request to confirmed.
func (r *Registry) ConfirmRequest(id string) (SeatRequest, error) {
	return r.transition(id, StatusConfirmed)
}

// DenyRequest moves a pending request to denied.
func (r *Registry) DenyRequest(id string) (SeatRequest, error) {
	return r.transition(id, StatusDenied)
}

func (r *Registry) transition(id string, to Status) (SeatRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.requests.Update(id, func(req *SeatRequest) error {
		if req.Status != StatusPending {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, req.Status, to)
		}

		req.Status = to

		return nil
	})
}

/////////////////////////////////////////
/// Delete commands

// DeleteDriver removes a driver, its routes and their seat requests.
func (r *Registry) DeleteDriver(id string) (RemovedCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.drivers.Remove(id) {
		return RemovedCounts{}, fmt.Errorf("%w: driver %q", ErrNotFound, id)
	}

	counts := RemovedCounts{Drivers: 1}

	for _, route := range r.routes.RemoveWhere(func(rt Route) bool { return rt.DriverID == id }) {
		counts.Routes++
		counts.Requests += len(r.requests.RemoveWhere(func(s SeatRequest) bool { return s.RouteID == route.ID }))
	}

	return counts, nil
}

// DeleteGuardian removes a guardian, its students and their seat requests.
func (r *Registry) DeleteGuardian(id string) (RemovedCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.guardians.Remove(id) {
		return RemovedCounts{}, fmt.Errorf("%w: guardian %q", ErrNotFound, id)
	}

	counts := RemovedCounts{Guardians: 1}

	for _, st := range r.students.RemoveWhere(func(s Student) bool { return s.GuardianID == id }) {
		counts.Students++
		counts.Requests += len(r.requests.RemoveWhere(func(s SeatRequest) bool { return s.StudentID == st.ID }))
	}

	return counts, nil
}

// DeleteStudent removes a student and its seat requests.
func (r *Registry) DeleteStudent(id string) (RemovedCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.students.Remove(id) {
		return RemovedCounts{}, fmt.Errorf("%w: student %q", ErrNotFound, id)
	}

	return RemovedCounts{
		Students: 1,
		Requests: len(r.requests.RemoveWhere(func(s SeatRequest) bool { return s.StudentID == id })),
	}, nil
}

// DeleteRoute removes a route and its seat requests.
func (r *Registry) DeleteRoute(id string) (RemovedCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.routes.Remove(id) {
		return RemovedCounts{}, fmt.Errorf("%w: route %q", ErrNotFound, id)
	}

	return RemovedCounts{
		Routes:   1,
		Requests: len(r.requests.RemoveWhere(func(s SeatRequest) bool { return s.RouteID == id })),
	}, nil
}

// DeleteRequest removes a seat request.
func (r *Registry) DeleteRequest(id string) (RemovedCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.requests.Remove(id) {
		return RemovedCounts{}, fmt.Errorf("%w: request %q", ErrNotFound, id)
	}

	return RemovedCounts{Requests: 1}, nil
}

/////////////////////////////////////////
/// Session

// Login starts a session. Any user with a password of three or more
// characters gets in; only admin/admin1234 is an admin.
func (r *Registry) Login(in LoginInput) (User, error) {
	if err := r.validate(&in); err != nil {
		return User{}, err
	}

	u := User{Login: in.Login}
	if in.Login == AdminLogin && in.Password == AdminPassword {
		u.Admin = true
	}

	r.setUser(&u)

	return u, nil
}

// Logout ends the session.
func (r *Registry) Logout() {
	r.setUser(nil)
}

// CurrentUser returns a copy of the session user, or nil.
func (r *Registry) CurrentUser() *User {
	r.userMu.RLock()
	defer r.userMu.RUnlock()

	if r.user == nil {
		return nil
	}

	u := *r.user

	return &u
}

func (r *Registry) setUser(u *User) {
	r.userMu.Lock()
	defer r.userMu.Unlock()

	if u == nil {
		r.user = nil

		return
	}

	cp := *u
	r.user = &cp
}
