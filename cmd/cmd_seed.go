// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jcodagnone/transporte/storage"
)

const defaultSeedFile = "cmd/testdata/seed.json"

func newSeedCmd() *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Recria a base de dados com os dados de cmd/testdata/seed.json",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := os.MkdirAll(cfg.DBPath, 0o750); err != nil {
				return fmt.Errorf("creating db directory: %w", err)
			}

			return seedDatabase(dbFilePath(), file)
		},
	}

	c.Flags().StringVar(&file, "file", defaultSeedFile, "arquivo de sementes")

	return c
}

func init() {
	rootCmd.AddCommand(newSeedCmd())
}

func seedDatabase(dbPath, seedFile string) error {
	// remove old db if it exists
	_ = os.Remove(dbPath)
	_ = os.Remove(dbPath + ".wal")

	store, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	snap, err := storage.ImportJSON(store, seedFile)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", seedFile, err)
	}

	fmt.Printf("✅ Base %s criada com %d rotas\n", dbPath, len(snap.Routes))

	return nil
}
