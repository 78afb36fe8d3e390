// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"strings"

	"github.com/jcodagnone/transporte/address"
)

// AddressPlaceholder is shown when a student has no known address.
const AddressPlaceholder = "Endereço não cadastrado"

// StudentAddress returns the effective address of a student: the origin of
// the route of its first active seat request, else the guardian's address,
// else "".
func (r *Registry) StudentAddress(studentID string) string {
	st, ok := r.students.Find(studentID)
	if !ok {
		return ""
	}

	active, ok := r.requests.FindFirst(func(s SeatRequest) bool {
		return s.StudentID == st.ID && s.IsActive()
	})
	if ok {
		if route, found := r.routes.Find(active.RouteID); found {
			if origin := ResolveRouteAddress(&route, address.Origin); origin != "" {
				return origin
			}
		}
	}

	if st.GuardianID == "" {
		return ""
	}

	g, ok := r.guardians.Find(st.GuardianID)
	if !ok || strings.TrimSpace(g.Address) == "" {
		return ""
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{g.Address, g.City, g.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	return strings.Join(parts, " - ")
}

// StudentAddressOrPlaceholder is StudentAddress with AddressPlaceholder for
// the empty case.
func (r *Registry) StudentAddressOrPlaceholder(studentID string) string {
	if a := r.StudentAddress(studentID); a != "" {
		return a
	}

	return AddressPlaceholder
}
