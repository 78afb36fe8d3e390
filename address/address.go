// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

// Package address turns stored address records into the canonical strings
// sent to the geocoder and shown to users.
//
// Records come in two shapes: the structured one (street, number,
// neighborhood, city, state and postal code as separate fields) and the
// legacy one, a single free-text field kept for older records. Classify
// derives a tagged Address from a Record and Resolve renders it.
package address

import (
	"fmt"
	"strings"
)

// Endpoint selects one end of a route.
type Endpoint string

const (
	Origin      Endpoint = "origem"
	Destination Endpoint = "destino"
)

// ParseEndpoint accepts both the Portuguese and the English spelling.
func ParseEndpoint(s string) (Endpoint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "origem", "origin":
		return Origin, nil
	case "destino", "destination":
		return Destination, nil
	}

	return "", fmt.Errorf("unknown route endpoint %q", s)
}

// Record is the stored form of an address.
type Record struct {
	Street       string `json:"rua,omitempty"`
	Number       string `json:"numero,omitempty"`
	Neighborhood string `json:"bairro,omitempty"`
	City         string `json:"cidade,omitempty"`
	State        string `json:"estado,omitempty"`
	PostalCode   string `json:"cep,omitempty"`
	Legacy       string `json:"legado,omitempty"`
}

// Address is one of Structured, Legacy or Missing.
type Address interface {
	isAddress()
}

// Structured is an address with a non-blank street.
type Structured struct {
	Street       string
	Number       string
	Neighborhood string
	City         string
	State        string
	PostalCode   string
}

// Legacy is a single free-text address.
type Legacy struct {
	Text string
}

// Missing means there is nothing to resolve.
type Missing struct{}

func (Structured) isAddress() {}
func (Legacy) isAddress()     {}
func (Missing) isAddress()    {}

// Classify derives the Address variant of a record. The structured fields
// win whenever the street is set, the legacy text is ignored in that case.
func Classify(r Record) Address {
	if strings.TrimSpace(r.Street) != "" {
		return Structured{
			Street:       r.Street,
			Number:       r.Number,
			Neighborhood: r.Neighborhood,
			City:         r.City,
			State:        r.State,
			PostalCode:   r.PostalCode,
		}
	}

	if text := strings.TrimSpace(r.Legacy); text != "" {
		return Legacy{Text: text}
	}

	return Missing{}
}

// Resolve renders an Address as a single line. Missing and unknown values
// render as the empty string.
func Resolve(a Address) string {
	switch v := a.(type) {
	case Structured:
		return Compose(v.Street, v.Number, v.Neighborhood, v.City, v.State, v.PostalCode)
	case Legacy:
		return strings.TrimSpace(v.Text)
	default:
		return ""
	}
}

// ResolveRecord is Resolve(Classify(*r)) with a nil guard.
func ResolveRecord(r *Record) string {
	if r == nil {
		return ""
	}

	return Resolve(Classify(*r))
}

// Compose joins the non-blank parts with ", ". Without a street the number
// is written as "Nº <number>", and the postal code is always prefixed with
// "CEP: ".
func Compose(street, number, neighborhood, city, state, postalCode string) string {
	street = strings.TrimSpace(street)
	number = strings.TrimSpace(number)
	postalCode = strings.TrimSpace(postalCode)

	parts := make([]string, 0, 6)
	if street != "" {
		parts = append(parts, street)
	}

	if number != "" {
		if street == "" {
			number = "Nº " + number
		}

		parts = append(parts, number)
	}

	for _, p := range []string{neighborhood, city, state} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if postalCode != "" {
		parts = append(parts, "CEP: "+postalCode)
	}

	return strings.Join(parts, ", ")
}

// ComposeRecord composes the structured fields of r, ignoring Legacy.
func ComposeRecord(r Record) string {
	return Compose(r.Street, r.Number, r.Neighborhood, r.City, r.State, r.PostalCode)
}
