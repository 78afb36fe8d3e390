// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jcodagnone/transporte/registry"
	"github.com/jcodagnone/transporte/utils/htmlutils"
	"github.com/jcodagnone/transporte/utils/textutils"
)

func small(s string) []*html.Node {
	return []*html.Node{htmlutils.Element(atom.Small, nil, htmlutils.Text(s))}
}

func originPopup(route *registry.Route, display, resolved string) (string, error) {
	return htmlutils.Render(htmlutils.Lines(
		[]*html.Node{htmlutils.Strong("Origem: " + route.Name)},
		small(textutils.FirstNonBlank(display, resolved)),
		small("Horário: "+route.Schedule),
	))
}

func destinationPopup(route *registry.Route, display, resolved, driver string, meters float64) (string, error) {
	return htmlutils.Render(htmlutils.Lines(
		[]*html.Node{htmlutils.Strong("Destino: " + route.Name)},
		small(textutils.FirstNonBlank(display, resolved)),
		small("Motorista: "+driver),
		small("Vagas: "+strconv.Itoa(route.SeatCount)),
		small("Distância: "+formatDistance(meters)),
	))
}

// formatDistance prints meters below one kilometer and kilometers with one
// decimal above.
func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}

	return fmt.Sprintf("%.1f km", meters/1000)
}
