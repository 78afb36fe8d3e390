// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jcodagnone/transporte/address"
)

// Route is a named trip between two addresses served by one driver.
type Route struct {
	ID          string
	Name        string
	DriverID    string
	Schedule    string
	SeatCount   int
	Origin      address.Record
	Destination address.Record
	CreatedAt   time.Time
}

func (r Route) EntityID() string { return r.ID }

// ResolveRouteAddress returns the resolved address of one end of the route,
// or "" when there is none.
func ResolveRouteAddress(r *Route, end address.Endpoint) string {
	if r == nil {
		return ""
	}

	switch end {
	case address.Origin:
		return address.ResolveRecord(&r.Origin)
	case address.Destination:
		return address.ResolveRecord(&r.Destination)
	default:
		return ""
	}
}

// routeJSON is the flat stored layout of a route.
type routeJSON struct {
	ID           string          `json:"id"`
	Name         string          `json:"nome"`
	DriverID     string          `json:"motoristaId"`
	Schedule     string          `json:"horario"`
	SeatCount    json.RawMessage `json:"vagas,omitempty"`
	OriginStreet string          `json:"origemRua,omitempty"`
	OriginNumber string          `json:"origemNumero,omitempty"`
	OriginHood   string          `json:"origemBairro,omitempty"`
	OriginCity   string          `json:"origemCidade,omitempty"`
	OriginState  string          `json:"origemEstado,omitempty"`
	OriginCEP    string          `json:"origemCEP,omitempty"`
	Origin       string          `json:"origem,omitempty"`
	DestStreet   string          `json:"destinoRua,omitempty"`
	DestNumber   string          `json:"destinoNumero,omitempty"`
	DestHood     string          `json:"destinoBairro,omitempty"`
	DestCity     string          `json:"destinoCidade,omitempty"`
	DestState    string          `json:"destinoEstado,omitempty"`
	DestCEP      string          `json:"destinoCEP,omitempty"`
	Destination  string          `json:"destino,omitempty"`
	CreatedAt    time.Time       `json:"criadoEm"`
}

// MarshalJSON writes the flat layout.
func (r Route) MarshalJSON() ([]byte, error) {
	return json.Marshal(routeJSON{
		ID:           r.ID,
		Name:         r.Name,
		DriverID:     r.DriverID,
		Schedule:     r.Schedule,
		SeatCount:    json.RawMessage(fmt.Sprint(r.SeatCount)),
		OriginStreet: r.Origin.Street,
		OriginNumber: r.Origin.Number,
		OriginHood:   r.Origin.Neighborhood,
		OriginCity:   r.Origin.City,
		OriginState:  r.Origin.State,
		OriginCEP:    r.Origin.PostalCode,
		Origin:       r.Origin.Legacy,
		DestStreet:   r.Destination.Street,
		DestNumber:   r.Destination.Number,
		DestHood:     r.Destination.Neighborhood,
		DestCity:     r.Destination.City,
		DestState:    r.Destination.State,
		DestCEP:      r.Destination.PostalCode,
		Destination:  r.Destination.Legacy,
		CreatedAt:    r.CreatedAt,
	})
}

// UnmarshalJSON reads the flat layout, including records that only carry
// the legacy origem/destino text.
func (r *Route) UnmarshalJSON(data []byte) error {
	var v routeJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	seats, err := parseLooseInt(v.SeatCount)
	if err != nil {
		return fmt.Errorf("route %s: vagas: %w", v.ID, err)
	}

	*r = Route{
		ID:        v.ID,
		Name:      v.Name,
		DriverID:  v.DriverID,
		Schedule:  v.Schedule,
		SeatCount: seats,
		Origin: address.Record{
			Street:       v.OriginStreet,
			Number:       v.OriginNumber,
			Neighborhood: v.OriginHood,
			City:         v.OriginCity,
			State:        v.OriginState,
			PostalCode:   v.OriginCEP,
			Legacy:       v.Origin,
		},
		Destination: address.Record{
			Street:       v.DestStreet,
			Number:       v.DestNumber,
			Neighborhood: v.DestHood,
			City:         v.DestCity,
			State:        v.DestState,
			PostalCode:   v.DestCEP,
			Legacy:       v.Destination,
		},
		CreatedAt: v.CreatedAt,
	}

	return nil
}
