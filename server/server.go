// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the registry and the route map over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/jcodagnone/transporte/geocoding"
	"github.com/jcodagnone/transporte/mapview"
	"github.com/jcodagnone/transporte/registry"
)

// Persister stores registry snapshots. storage.Store implements it.
type Persister interface {
	Save(snap *registry.Snapshot) error
}

// Option configures a Server.
type Option func(*Server)

// WithAutoRefresh schedules a background map refresh after every mutation.
func WithAutoRefresh(on bool) Option {
	return func(s *Server) { s.autoRefresh = on }
}

// WithLogger sets the logger used by the request log and the handlers.
func WithLogger(l log.FieldLogger) Option {
	return func(s *Server) { s.logger = l }
}

type Server struct {
	reg      *registry.Registry
	store    Persister
	geocoder *geocoding.Client
	renderer *mapview.Renderer
	canvas   *mapview.FeatureMap

	autoRefresh bool
	logger      log.FieldLogger

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup
}

// NewServer wires the handlers. store may be nil, in which case nothing is
// persisted.
func NewServer(reg *registry.Registry, store Persister, geocoder *geocoding.Client,
	renderer *mapview.Renderer, canvas *mapview.FeatureMap, opts ...Option,
) *Server {
	s := &Server{
		reg:      reg,
		store:    store,
		geocoder: geocoder,
		renderer: renderer,
		canvas:   canvas,
		logger:   log.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.bgCtx, s.bgCancel = context.WithCancel(context.Background())

	return s
}

// Router builds the gin engine with every API route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	api := r.Group("/api")

	api.POST("/login", s.login)
	api.POST("/logout", s.logout)
	api.GET("/session", s.session)

	api.GET("/drivers", s.listDrivers)
	api.POST("/drivers", s.createDriver)
	api.DELETE("/drivers/:id", s.deleteDriver)

	api.GET("/guardians", s.listGuardians)
	api.POST("/guardians", s.createGuardian)
	api.DELETE("/guardians/:id", s.deleteGuardian)

	api.GET("/students", s.listStudents)
	api.POST("/students", s.createStudent)
	api.DELETE("/students/:id", s.deleteStudent)

	api.GET("/routes", s.listRoutes)
	api.POST("/routes", s.createRoute)
	api.DELETE("/routes/:id", s.deleteRoute)

	api.GET("/requests", s.listRequests)
	api.POST("/requests", s.requestSeat)
	api.POST("/requests/:id/confirm", s.confirmRequest)
	api.POST("/requests/:id/deny", s.denyRequest)
	api.DELETE("/requests/:id", s.deleteRequest)

	api.GET("/search", s.search)
	api.GET("/geocode", s.geocode)

	api.GET("/map", s.getMap)
	api.GET("/map/options", s.mapOptions)
	api.POST("/map/refresh", s.refreshMap)

	return r
}

// Run serves on addr until ctx ends, then shuts down gracefully and waits
// for background refreshes.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()

		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.Close()

	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}

// Close cancels pending background refreshes and waits for them.
func (s *Server) Close() {
	s.bgCancel()
	s.bg.Wait()
}

// Wait blocks until every scheduled background refresh has finished.
func (s *Server) Wait() {
	s.bg.Wait()
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	}
}

// writeError maps registry errors to status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, registry.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, registry.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, registry.ErrInvalidTransition):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// committed persists the snapshot after a successful mutation and
// schedules a refresh. It writes the error response and returns false when
// persisting fails.
func (s *Server) committed(c *gin.Context) bool {
	if !s.persist(c) {
		return false
	}

	if s.autoRefresh {
		s.scheduleRefresh()
	}

	return true
}

// scheduleRefresh redraws the map in the background with the current
// selection. Overlapping refreshes are resolved by the renderer: the latest
// one wins.
func (s *Server) scheduleRefresh() {
	if s.renderer == nil {
		return
	}

	selection := s.renderer.Selection()

	s.bg.Add(1)

	go func() {
		defer s.bg.Done()

		if _, err := s.refresh(s.bgCtx, selection); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.WithError(err).Warn("background map refresh")
		}
	}()
}

// refresh initializes the renderer on first use and redraws selection,
// falling back to every route when it names a route that is gone.
func (s *Server) refresh(ctx context.Context, selection string) (*mapview.RefreshReport, error) {
	selection = mapview.EffectiveSelection(s.reg.Routes(), selection)

	if s.renderer.State() != mapview.StateReady {
		s.renderer.Select(selection)

		report, err := s.renderer.Init(ctx)
		if err != nil {
			return nil, err
		}

		if report.Selection == selection {
			return report, nil
		}
	}

	return s.renderer.Refresh(ctx, selection)
}
