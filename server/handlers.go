// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jcodagnone/transporte/address"
	"github.com/jcodagnone/transporte/registry"
)

// bind decodes the JSON body into in, answering 400 on malformed input.
func bind(c *gin.Context, in any) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid body: %v", err)})

		return false
	}

	return true
}

/////////////////////////////////////////
/// Session

func (s *Server) login(c *gin.Context) {
	var in registry.LoginInput
	if !bind(c, &in) {
		return
	}

	u, err := s.reg.Login(in)
	if err != nil {
		writeError(c, err)

		return
	}

	if s.persist(c) {
		c.JSON(http.StatusOK, u)
	}
}

func (s *Server) logout(c *gin.Context) {
	s.reg.Logout()

	if s.persist(c) {
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"usuario": s.reg.CurrentUser()})
}

// persist saves the snapshot without touching the map.
func (s *Server) persist(c *gin.Context) bool {
	if s.store == nil {
		return true
	}

	if err := s.store.Save(s.reg.Snapshot()); err != nil {
		s.logger.WithError(err).Error("persisting registry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist changes"})

		return false
	}

	return true
}

/////////////////////////////////////////
/// Drivers

func (s *Server) listDrivers(c *gin.Context) {
	c.JSON(http.StatusOK, s.reg.Drivers())
}

func (s *Server) createDriver(c *gin.Context) {
	var in registry.CreateDriverInput
	if !bind(c, &in) {
		return
	}

	d, err := s.reg.CreateDriver(in)
	if err != nil {
		writeError(c, err)

		return
	}

	if s.committed(c) {
		c.JSON(http.StatusCreated, d)
	}
}

func (s *Server) deleteDriver(c *gin.Context) {
	s.remove(c, s.reg.DeleteDriver)
}

// remove runs a delete command on the :id parameter.
func (s *Server) remove(c *gin.Context, del func(id string) (registry.RemovedCounts, error)) {
	counts, err := del(c.Param("id"))
	if err != nil {
		writeError(c, err)

		return
	}

	if s.committed(c) {
		c.JSON(http.StatusOK, counts)
	}
}

/////////////////////////////////////////
/// Guardians

func (s *Server) listGuardians(c *gin.Context) {
	c.JSON(http.StatusOK, s.reg.Guardians())
}

func (s *Server) createGuardian(c *gin.Context) {
	var in registry.CreateGuardianInput
	if !bind(c, &in) {
		return
	}

	g, err := s.reg.CreateGuardian(in)
	if err != nil {
		writeError(c, err)

		return
	}

	if s.committed(c) {
		c.JSON(http.StatusCreated, g)
	}
}

func (s *Server) deleteGuardian(c *gin.Context) {
	s.remove(c, s.reg.DeleteGuardian)
}

/////////////////////////////////////////
/// Students

// StudentView is a student with its effective address and guardian name.
type StudentView struct {
	registry.Student
	Address  string `json:"endereco"`
	Guardian string `json:"responsavel"`
}

func (s *Server) studentView(st registry.Student) StudentView {
	v := StudentView{
		Student:  st,
		Address:  s.reg.StudentAddressOrPlaceholder(st.ID),
		Guardian: "N/A",
	}

	if g, ok := s.reg.Guardian(st.GuardianID); ok {
		v.Guardian = g.Name
	}

	return v
}

func (s *Server) listStudents(c *gin.Context) {
	students := s.reg.Students()

	out := make([]StudentView, 0, len(students))
	for _, st := range students {
		out = append(out, s.studentView(st))
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) createStudent(c *gin.Context) {
	var in registry.CreateStudentInput
	if !bind(c, &in) {
		return
	}

	st, err := s.reg.CreateStudent(in)
	if err != nil {
		writeError(c, err)

		return
	}

	if s.committed(c) {
		c.JSON(http.StatusCreated, s.studentView(st))
	}
}

func (s *Server) deleteStudent(c *gin.Context) {
	s.remove(c, s.reg.DeleteStudent)
}

/////////////////////////////////////////
/// Routes

// RouteView is a route with both ends resolved and the driver name.
type RouteView struct {
	Route       registry.Route `json:"rota"`
	Origin      string         `json:"origem"`
	Destination string         `json:"destino"`
	Driver      string         `json:"motorista"`
}

func (s *Server) routeView(r registry.Route) RouteView {
	return RouteView{
		Route:       r,
		Origin:      registry.ResolveRouteAddress(&r, address.Origin),
		Destination: registry.ResolveRouteAddress(&r, address.Destination),
		Driver:      s.reg.DriverName(&r),
	}
}

func (s *Server) listRoutes(c *gin.Context) {
	routes := s.reg.Routes()

	out := make([]RouteView, 0, len(routes))
	for _, r := range routes {
		out = append(out, s.routeView(r))
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) createRoute(c *gin.Context) {
	var in registry.CreateRouteInput
	if !bind(c, &in) {
		return
	}

	r, err := s.reg.CreateRoute(in)
	if err != nil {
		writeError(c, err)

		return
	}

	if s.committed(c) {
		c.JSON(http.StatusCreated, s.routeView(r))
	}
}

func (s *Server) deleteRoute(c *gin.Context) {
	s.remove(c, s.reg.DeleteRoute)
}

/////////////////////////////////////////
/// Seat requests

func (s *Server) listRequests(c *gin.Context) {
	status := registry.Status(c.Query("status"))

	requests := s.reg.Requests()
	if status == "" {
		c.JSON(http.StatusOK, requests)

		return
	}

	out := make([]registry.SeatRequest, 0, len(requests))
	for _, r := range requests {
		if r.Status == status {
			out = append(out, r)
		}
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) requestSeat(c *gin.Context) {
	var in registry.RequestSeatInput
	if !bind(c, &in) {
		return
	}

	req, err := s.reg.RequestSeat(in)
	if err != nil {
		writeError(c, err)

		return
	}

	if s.committed(c) {
		c.JSON(http.StatusCreated, req)
	}
}

func (s *Server) confirmRequest(c *gin.Context) {
	s.transition(c, s.reg.ConfirmRequest)
}

func (s *Server) denyRequest(c *gin.Context) {
	s.transition(c, s.reg.DenyRequest)
}

func (s *Server) transition(c *gin.Context, fn func(id string) (registry.SeatRequest, error)) {
	req, err := fn(c.Param("id"))
	if err != nil {
		writeError(c, err)

		return
	}

	if s.committed(c) {
		c.JSON(http.StatusOK, req)
	}
}

func (s *Server) deleteRequest(c *gin.Context) {
	s.remove(c, s.reg.DeleteRequest)
}
