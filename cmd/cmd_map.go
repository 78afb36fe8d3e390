// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jcodagnone/transporte/mapview"
)

var mapOptions struct {
	output string
}

var mapCmd = &cobra.Command{
	Use:   "map [rota]",
	Short: "Geocodifica as rotas e grava o mapa em GeoJSON",
	Long: `Geocodifica origem e destino de cada rota, uma rota por vez, e grava os
marcadores e as linhas resultantes em GeoJSON. Sem argumento desenha todas as
rotas; com o id de uma rota desenha somente ela.

$ transporte map --output rotas.geojson
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		reg, err := loadRegistry(store)
		if err != nil {
			return err
		}

		selection := mapview.AllRoutes
		if len(args) > 0 {
			if _, ok := reg.Route(args[0]); !ok {
				return fmt.Errorf("rota %q não encontrada", args[0])
			}

			selection = args[0]
		}

		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		canvas := mapview.NewFeatureMap()
		renderer := mapview.NewRenderer(canvas, reg, newPipeline(client),
			mapview.WithConfig(rendererConfig()),
			mapview.WithProgress(progressReporter("Geocodificando")),
		)

		renderer.Select(selection)

		report, err := renderer.Init(ctx)
		if err == nil && selection != report.Selection {
			report, err = renderer.Refresh(ctx, selection)
		}

		if err != nil {
			return err
		}

		data, err := canvas.GeoJSON()
		if err != nil {
			return fmt.Errorf("encoding map: %w", err)
		}

		if mapOptions.output == "" || mapOptions.output == "-" {
			fmt.Println(string(data))
		} else if err := os.WriteFile(mapOptions.output, data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", mapOptions.output, err)
		}

		log.WithFields(log.Fields{
			"selection": report.Selection,
			"drawn":     len(report.Drawn),
			"skipped":   len(report.Skipped),
		}).Info("map rendered")

		if len(report.Skipped) > 0 {
			fmt.Fprintf(os.Stderr, "⚠️  Rotas sem coordenadas: %s\n", strings.Join(report.Skipped, ", "))
		}

		return nil
	},
}

func init() {
	mapCmd.Flags().StringVarP(&mapOptions.output, "output", "o", "", "arquivo de saída (por padrão stdout)")
	rootCmd.AddCommand(mapCmd)
}
