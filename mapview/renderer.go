// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapview draws routes on a map widget.
//
// A Renderer starts Uninitialized and becomes Ready once the widget library
// hands it a map. Every Refresh clears what the previous one drew, geocodes
// the selected routes through a geocoding.Pipeline and draws the routes whose
// both ends were found. Only the most recent refresh may touch the map: a
// newer call cancels the older one and any layer the older one would still
// add is dropped.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jcodagnone/transporte/address"
	"github.com/jcodagnone/transporte/geocoding"
	"github.com/jcodagnone/transporte/registry"
	"github.com/jcodagnone/transporte/spatial"
)

// ErrNotReady is returned by Refresh before Init succeeded.
var ErrNotReady = errors.New("map is not initialized")

// State of a Renderer.
type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}

	return "uninitialized"
}

// RouteSource provides the routes to draw.
type RouteSource interface {
	Routes() []registry.Route
	DriverName(route *registry.Route) string
}

// Config of a Renderer.
type Config struct {
	Center     spatial.Point
	Zoom       int
	Tiles      TileLayerSpec
	Padding    Padding
	RetryDelay time.Duration
}

// DefaultConfig centres the map on Brazil over OpenStreetMap tiles.
func DefaultConfig() Config {
	return Config{
		Center:     BrazilCenter,
		Zoom:       DefaultZoom,
		Tiles:      OpenStreetMapTiles,
		Padding:    Padding{X: 50, Y: 50},
		RetryDelay: 500 * time.Millisecond,
	}
}

// RefreshReport describes what a refresh did.
type RefreshReport struct {
	Token      uint64          `json:"token"`
	Selection  string          `json:"selection"`
	Requested  []string        `json:"requested"`
	Drawn      []string        `json:"drawn"`
	Skipped    []string        `json:"skipped"`
	Bounds     *spatial.Bounds `json:"bounds,omitempty"`
	Superseded bool            `json:"superseded"`
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) RendererOption {
	return func(r *Renderer) { r.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l log.FieldLogger) RendererOption {
	return func(r *Renderer) { r.logger = l }
}

// WithSleep replaces the wait between Init attempts.
func WithSleep(s geocoding.SleepFunc) RendererOption {
	return func(r *Renderer) { r.sleep = s }
}

// WithProgress registers a callback run after each route is processed.
func WithProgress(fn func(done, total int)) RendererOption {
	return func(r *Renderer) { r.progress = fn }
}

// Renderer draws routes on a map.
type Renderer struct {
	lib      Library
	source   RouteSource
	pipeline *geocoding.Pipeline
	cfg      Config
	logger   log.FieldLogger
	sleep    geocoding.SleepFunc
	progress func(done, total int)

	initMu sync.Mutex

	mu        sync.Mutex
	state     State
	widget    Map
	layers    []LayerID
	token     uint64
	cancel    context.CancelFunc
	selection string
}

// NewRenderer returns an uninitialized renderer.
func NewRenderer(lib Library, source RouteSource, pipeline *geocoding.Pipeline, opts ...RendererOption) *Renderer {
	r := &Renderer{
		lib:       lib,
		source:    source,
		pipeline:  pipeline,
		cfg:       DefaultConfig(),
		logger:    log.StandardLogger(),
		sleep:     geocoding.Sleep,
		selection: AllRoutes,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// State returns the current state.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// Selection returns the selection of the latest refresh.
func (r *Renderer) Selection() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.selection
}

// Select records selection, a route id or AllRoutes, as the one the next
// Init draws. It lets the first drawing target a single route without
// geocoding every route first.
func (r *Renderer) Select(selection string) {
	if selection == "" {
		selection = AllRoutes
	}

	r.mu.Lock()
	r.selection = selection
	r.mu.Unlock()
}

// Init creates the map and runs a first refresh. While the library is
// unavailable it retries every RetryDelay until ctx ends. On a Ready
// renderer it only refreshes with the current selection.
func (r *Renderer) Init(ctx context.Context) (*RefreshReport, error) {
	r.initMu.Lock()

	r.mu.Lock()
	ready, selection := r.state == StateReady, r.selection
	r.mu.Unlock()

	if ready {
		r.initMu.Unlock()

		return r.Refresh(ctx, selection)
	}

	widget, err := r.createMap(ctx)
	if err != nil {
		r.initMu.Unlock()

		return nil, err
	}

	r.mu.Lock()
	r.widget = widget
	r.state = StateReady
	r.mu.Unlock()
	r.initMu.Unlock()

	r.logger.Info("map initialized")

	return r.Refresh(ctx, selection)
}

func (r *Renderer) createMap(ctx context.Context) (Map, error) {
	for attempt := 1; ; attempt++ {
		widget, err := r.lib.NewMap(r.cfg.Center, r.cfg.Zoom)
		if err == nil {
			if _, err := widget.AddTileLayer(r.cfg.Tiles); err != nil {
				return nil, fmt.Errorf("adding tile layer: %w", err)
			}

			return widget, nil
		}

		if !errors.Is(err, ErrWidgetUnavailable) {
			return nil, fmt.Errorf("creating map: %w", err)
		}

		r.logger.WithField("attempt", attempt).Warn("map library not loaded, retrying")

		if err := r.sleep(ctx, r.cfg.RetryDelay); err != nil {
			return nil, err
		}
	}
}

// begin makes the caller the current refresh: it cancels the previous one,
// clears every drawn layer and returns the new token.
func (r *Renderer) begin(ctx context.Context, selection string) (context.Context, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateReady {
		return nil, 0, ErrNotReady
	}

	if r.cancel != nil {
		r.cancel()
	}

	r.token++

	rctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.selection = selection

	for _, id := range r.layers {
		if err := r.widget.RemoveLayer(id); err != nil {
			r.logger.WithError(err).WithField("layer", id).Warn("removing layer")
		}
	}

	r.layers = nil

	return rctx, r.token, nil
}

func (r *Renderer) end(token uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token == token && r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Refresh redraws the routes matching selection, a route id or AllRoutes.
// A refresh overtaken by a newer one reports Superseded and returns no
// error. The error is non-nil only when the renderer is not ready or ctx
// ends.
func (r *Renderer) Refresh(ctx context.Context, selection string) (*RefreshReport, error) {
	if selection == "" {
		selection = AllRoutes
	}

	rctx, token, err := r.begin(ctx, selection)
	if err != nil {
		return nil, err
	}
	defer r.end(token)

	report := &RefreshReport{Token: token, Selection: selection}

	routes := filterRoutes(r.source.Routes(), selection)
	if len(routes) == 0 {
		r.logger.WithField("selection", selection).Info("no routes to show")

		return report, nil
	}

	byID := make(map[string]*registry.Route, len(routes))
	jobs := make([]geocoding.Job, 0, len(routes))

	for i := range routes {
		route := &routes[i]
		byID[route.ID] = route
		report.Requested = append(report.Requested, route.ID)
		jobs = append(jobs, geocoding.Job{
			Key:         route.ID,
			Origin:      registry.ResolveRouteAddress(route, address.Origin),
			Destination: registry.ResolveRouteAddress(route, address.Destination),
		})
	}

	var bounds *spatial.Bounds

	done := 0
	runErr := r.pipeline.Run(rctx, jobs, func(res geocoding.PairResult) {
		done++

		if r.progress != nil {
			defer r.progress(done, len(jobs))
		}

		route := byID[res.Job.Key]
		if !res.Complete() {
			r.logger.WithFields(log.Fields{"route": route.ID, "name": route.Name}).Info("route skipped, address not geocoded")
			report.Skipped = append(report.Skipped, route.ID)

			return
		}

		drawn, err := r.draw(token, route, res)
		if err != nil {
			r.logger.WithError(err).WithField("route", route.ID).Warn("drawing route")
			report.Skipped = append(report.Skipped, route.ID)

			return
		}

		if !drawn {
			return
		}

		report.Drawn = append(report.Drawn, route.ID)

		if bounds == nil {
			bounds = spatial.NewBounds(res.Origin.Point, res.Destination.Point)
		} else {
			bounds.Extend(res.Origin.Point)
			bounds.Extend(res.Destination.Point)
		}
	})

	if runErr != nil {
		if r.isSuperseded(token) {
			report.Superseded = true

			return report, nil
		}

		return report, runErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != token {
		report.Superseded = true

		return report, nil
	}

	if bounds != nil {
		if err := r.widget.FitBounds(*bounds, r.cfg.Padding); err != nil {
			r.logger.WithError(err).Warn("fitting bounds")
		} else {
			report.Bounds = bounds
		}
	}

	return report, nil
}

func (r *Renderer) isSuperseded(token uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.token != token
}

// draw adds the two markers and the line of a route. It reports false
// without touching the map when token is no longer current. On error the
// layers already added for the route are removed.
func (r *Renderer) draw(token uint64, route *registry.Route, res geocoding.PairResult) (bool, error) {
	originAddr := registry.ResolveRouteAddress(route, address.Origin)
	destinationAddr := registry.ResolveRouteAddress(route, address.Destination)
	distance := res.Origin.Point.HaversineDistance(&res.Destination.Point)

	originHTML, err := originPopup(route, res.Origin.DisplayAddress, originAddr)
	if err != nil {
		return false, err
	}

	destinationHTML, err := destinationPopup(route, res.Destination.DisplayAddress, destinationAddr,
		r.source.DriverName(route), distance)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != token {
		return false, nil
	}

	var added []LayerID

	rollback := func() {
		for _, id := range added {
			_ = r.widget.RemoveLayer(id)
		}
	}

	steps := []func() (LayerID, error){
		func() (LayerID, error) {
			return r.widget.AddMarker(MarkerSpec{Point: res.Origin.Point, Icon: OriginIcon, PopupHTML: originHTML, RouteID: route.ID})
		},
		func() (LayerID, error) {
			return r.widget.AddMarker(MarkerSpec{Point: res.Destination.Point, Icon: DestinationIcon, PopupHTML: destinationHTML, RouteID: route.ID})
		},
		func() (LayerID, error) {
			return r.widget.AddPolyline(PolylineSpec{
				Points:  []spatial.Point{res.Origin.Point, res.Destination.Point},
				Style:   RouteLineStyle,
				RouteID: route.ID,
			})
		},
	}

	for _, step := range steps {
		id, err := step()
		if err != nil {
			rollback()

			return false, err
		}

		added = append(added, id)
	}

	r.layers = append(r.layers, added...)

	return true, nil
}
