// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"strings"

	"github.com/jcodagnone/transporte/address"
	"github.com/jcodagnone/transporte/registry"
)

// AllRoutes selects every route.
const AllRoutes = "todas"

// Option is an entry of the route selector.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SelectorOptions lists AllRoutes followed by one entry per route.
func SelectorOptions(routes []registry.Route) []Option {
	opts := make([]Option, 0, len(routes)+1)
	opts = append(opts, Option{Value: AllRoutes, Label: "Todas as Rotas"})

	for _, r := range routes {
		opts = append(opts, Option{
			Value: r.ID,
			Label: r.Name + " - " + registry.ResolveRouteAddress(&r, address.Origin) +
				" → " + registry.ResolveRouteAddress(&r, address.Destination),
		})
	}

	return opts
}

// EffectiveSelection keeps selection when it names an existing route and
// falls back to AllRoutes otherwise.
func EffectiveSelection(routes []registry.Route, selection string) string {
	selection = strings.TrimSpace(selection)
	if selection == "" || selection == AllRoutes {
		return AllRoutes
	}

	for _, r := range routes {
		if r.ID == selection {
			return selection
		}
	}

	return AllRoutes
}

func filterRoutes(routes []registry.Route, selection string) []registry.Route {
	if selection == "" || selection == AllRoutes {
		return routes
	}

	var out []registry.Route

	for _, r := range routes {
		if r.ID == selection {
			out = append(out, r)
		}
	}

	return out
}
