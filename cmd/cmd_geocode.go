// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jcodagnone/transporte/geocoding"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode [endereço...]",
	Short: "Geocodifica endereços",
	Long: `Geocodifica os endereços dados como argumento ou, sem argumentos, um
endereço por linha lido de stdin. Imprime o endereço seguido das coordenadas e
do endereço devolvido pelo provedor.

$ echo "Praça do Marco Zero, Recife" | transporte geocode
Praça do Marco Zero, Recife	-8.063169,-34.871139	Marco Zero, Recife, Pernambuco, Brasil
`,
	RunE: func(_ *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := newClient(ctx)
		if err != nil {
			return err
		}

		lookup := geocodeLoop(ctx, client, os.Stdout)

		if len(args) > 0 {
			for _, a := range args {
				if err := lookup(a); err != nil {
					return err
				}
			}

			return nil
		}

		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Digite os endereços, um por linha…")
		}

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := lookup(scanner.Text()); err != nil {
				return err
			}
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return nil
	},
}

// geocodeLoop returns a function printing one lookup per call, pausing the
// configured delay between provider calls.
func geocodeLoop(ctx context.Context, client *geocoding.Client, w io.Writer) func(string) error {
	first := true

	return func(addr string) error {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return nil
		}

		if !first {
			if err := geocoding.Sleep(ctx, cfg.GeocodeDelay); err != nil {
				return err
			}
		}

		first = false

		p := client.Lookup(ctx, addr)
		if p == nil {
			_, err := fmt.Fprintf(w, "%s\t\tnão encontrado\n", addr)

			return err
		}

		_, err := fmt.Fprintf(w, "%s\t%f,%f\t%s\n", addr, p.Point.Lat, p.Point.Lng, p.DisplayAddress)

		return err
	}
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
