// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jcodagnone/transporte/mapview"
	"github.com/jcodagnone/transporte/server"
	"github.com/jcodagnone/transporte/storage"
)

var serveOptions struct {
	listen   string
	seedFile string
	initMap  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inicia a API HTTP (somente local)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if serveOptions.seedFile != "" {
			seeded, err := storage.SeedIfEmpty(store, serveOptions.seedFile)
			if err != nil {
				return fmt.Errorf("seeding: %w", err)
			}

			if seeded {
				log.WithField("file", serveOptions.seedFile).Info("empty database seeded")
			}
		}

		reg, err := loadRegistry(store)
		if err != nil {
			return err
		}

		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		canvas := mapview.NewFeatureMap()
		renderer := mapview.NewRenderer(canvas, reg, newPipeline(client),
			mapview.WithConfig(rendererConfig()),
			mapview.WithLogger(log.StandardLogger()),
		)

		srv := server.NewServer(reg, store, client, renderer, canvas,
			server.WithAutoRefresh(cfg.AutoRefresh),
		)

		if serveOptions.initMap {
			go func() {
				report, err := renderer.Init(ctx)
				if err != nil {
					log.WithError(err).Warn("initial map refresh")

					return
				}

				log.WithFields(log.Fields{
					"drawn":   len(report.Drawn),
					"skipped": len(report.Skipped),
				}).Info("map ready")
			}()
		}

		listen := cfg.Listen
		if serveOptions.listen != "" {
			listen = serveOptions.listen
		}

		fmt.Printf("🚌 API em http://%s/api\n", listen)

		if err := srv.Run(ctx, listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOptions.listen, "listen", "", "endereço de escuta (por padrão TRANSPORTE_LISTEN)")
	serveCmd.Flags().StringVar(&serveOptions.seedFile, "seed", "", "arquivo JSON importado quando a base está vazia")
	serveCmd.Flags().BoolVar(&serveOptions.initMap, "init-map", true, "geocodifica as rotas ao iniciar")
	rootCmd.AddCommand(serveCmd)
}
