// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"unicode/utf8"

	"github.com/jcodagnone/transporte/address"
	"github.com/jcodagnone/transporte/utils/textutils"
)

// MinSearchLength is the shortest term Search accepts.
const MinSearchLength = 2

// Kind of a search result.
type Kind string

const (
	KindDriver   Kind = "Motorista"
	KindGuardian Kind = "Responsável"
	KindStudent  Kind = "Aluno"
	KindRoute    Kind = "Rota"
	KindRequest  Kind = "Solicitação"
)

// SearchResult is one hit.
type SearchResult struct {
	Kind     Kind   `json:"tipo"`
	Title    string `json:"titulo"`
	Subtitle string `json:"subtitulo"`
	ID       string `json:"id"`
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}

	return s
}

// Search looks term up across every collection, ignoring case and accents.
// Results come grouped by kind in the order drivers, guardians, students,
// routes, requests. limit <= 0 means no limit.
func (r *Registry) Search(term string, limit int) []SearchResult {
	needle := textutils.LowerASCIIFolding(term)
	if utf8.RuneCountInString(needle) < MinSearchLength {
		return nil
	}

	var out []SearchResult

	add := func(res SearchResult) bool {
		out = append(out, res)

		return limit > 0 && len(out) >= limit
	}

	for _, d := range r.drivers.All() {
		if textutils.ContainsFolded(needle, d.Name, d.CPF, d.CNH, d.Phone) {
			if add(SearchResult{KindDriver, d.Name, fmt.Sprintf("CPF: %s • CNH: %s", d.CPF, d.CNH), d.ID}) {
				return out
			}
		}
	}

	for _, g := range r.guardians.All() {
		if textutils.ContainsFolded(needle, g.Name, g.CPF, g.Email, g.Phone, g.Address, g.City) {
			contact := textutils.FirstNonBlank(g.Email, g.Phone)
			if add(SearchResult{KindGuardian, g.Name, fmt.Sprintf("CPF: %s • %s", g.CPF, contact), g.ID}) {
				return out
			}
		}
	}

	for _, s := range r.students.All() {
		var guardianName string
		if g, ok := r.guardians.Find(s.GuardianID); ok {
			guardianName = g.Name
		}

		if textutils.ContainsFolded(needle, s.Name, s.School, guardianName) {
			sub := fmt.Sprintf("Escola: %s • Responsável: %s", s.School, orNA(guardianName))
			if add(SearchResult{KindStudent, s.Name, sub, s.ID}) {
				return out
			}
		}
	}

	for _, route := range r.routes.All() {
		origin := ResolveRouteAddress(&route, address.Origin)
		destination := ResolveRouteAddress(&route, address.Destination)

		var driverName string
		if d, ok := r.drivers.Find(route.DriverID); ok {
			driverName = d.Name
		}

		if textutils.ContainsFolded(needle, route.Name, origin, destination, driverName) {
			sub := fmt.Sprintf("%s → %s • %s • Motorista: %s", origin, destination, route.Schedule, orNA(driverName))
			if add(SearchResult{KindRoute, route.Name, sub, route.ID}) {
				return out
			}
		}
	}

	for _, req := range r.requests.All() {
		var routeName, studentName string
		if route, ok := r.routes.Find(req.RouteID); ok {
			routeName = route.Name
		}

		if st, ok := r.students.Find(req.StudentID); ok {
			studentName = st.Name
		}

		if textutils.ContainsFolded(needle, routeName, studentName, req.Justification) {
			title := fmt.Sprintf("%s - %s", textutils.FirstNonBlank(routeName, "Rota"), textutils.FirstNonBlank(studentName, "Aluno"))
			sub := fmt.Sprintf("Status: %s • %s", req.Status, textutils.Truncate(req.Justification, 50))
			if add(SearchResult{KindRequest, title, sub, req.ID}) {
				return out
			}
		}
	}

	return out
}
