// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jcodagnone/transporte/mapview"
	"github.com/jcodagnone/transporte/registry"
)

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 10

func (s *Server) search(c *gin.Context) {
	limit := DefaultSearchLimit

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})

			return
		}

		limit = n
	}

	results := s.reg.Search(c.Query("q"), limit)
	if results == nil {
		results = []registry.SearchResult{}
	}

	c.JSON(http.StatusOK, results)
}

func (s *Server) geocode(c *gin.Context) {
	addr := strings.TrimSpace(c.Query("address"))
	if addr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter is required"})

		return
	}

	if s.geocoder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "geocoding is disabled"})

		return
	}

	p := s.geocoder.Lookup(c.Request.Context(), addr)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})

		return
	}

	c.JSON(http.StatusOK, p)
}

func (s *Server) getMap(c *gin.Context) {
	if s.canvas == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "map is disabled"})

		return
	}

	data, err := s.canvas.GeoJSON()
	if err != nil {
		s.logger.WithError(err).Error("encoding map")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode map"})

		return
	}

	c.Data(http.StatusOK, "application/geo+json", data)
}

func (s *Server) mapOptions(c *gin.Context) {
	selection := mapview.AllRoutes
	if s.renderer != nil {
		selection = mapview.EffectiveSelection(s.reg.Routes(), s.renderer.Selection())
	}

	c.JSON(http.StatusOK, gin.H{
		"selecionada": selection,
		"opcoes":      mapview.SelectorOptions(s.reg.Routes()),
	})
}

// RefreshResponse is the body of POST /api/map/refresh.
type RefreshResponse struct {
	Report  *mapview.RefreshReport `json:"report"`
	GeoJSON json.RawMessage        `json:"geojson,omitempty"`
}

func (s *Server) refreshMap(c *gin.Context) {
	if s.renderer == nil || s.canvas == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "map is disabled"})

		return
	}

	report, err := s.refresh(c.Request.Context(), c.Query("route"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mapview.ErrNotReady) || errors.Is(err, mapview.ErrWidgetUnavailable) {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{"error": err.Error()})

		return
	}

	resp := RefreshResponse{Report: report}

	if !report.Superseded {
		data, err := s.canvas.GeoJSON()
		if err != nil {
			s.logger.WithError(err).Error("encoding map")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to encode map"})

			return
		}

		resp.GeoJSON = data
	}

	c.JSON(http.StatusOK, resp)
}
