// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcodagnone/transporte/storage"
	"github.com/jcodagnone/transporte/utils/textutils"
)

const defaultExportFile = "transporte.json"

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Exporta, importa e inspeciona a base de dados",
}

var storeExportCmd = &cobra.Command{
	Use:   "export [arquivo]",
	Short: "Exporta todos os cadastros para um arquivo JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		file := defaultExportFile
		if len(args) > 0 {
			file = args[0]
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := storage.ExportJSON(store, file); err != nil {
			return err
		}

		fmt.Printf("✅ Cadastros exportados para %s\n", file)

		return nil
	},
}

var storeImportCmd = &cobra.Command{
	Use:   "import <arquivo>",
	Short: "Substitui todos os cadastros pelos de um arquivo JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := storage.ImportJSON(store, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("✅ Importados %s motoristas, %s responsáveis, %s alunos, %s rotas e %s solicitações\n",
			textutils.FormatInt(int64(len(snap.Drivers))),
			textutils.FormatInt(int64(len(snap.Guardians))),
			textutils.FormatInt(int64(len(snap.Students))),
			textutils.FormatInt(int64(len(snap.Routes))),
			textutils.FormatInt(int64(len(snap.Requests))))

		return nil
	},
}

var storeInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Mostra as coleções gravadas",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		infos, err := store.Info()
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(infos))
		for _, info := range infos {
			rows = append(rows, []string{
				info.Key,
				textutils.FormatInt(int64(info.Bytes)),
				info.UpdatedAt.Format(timestampFormat),
			})
		}

		fmt.Printf("Base: %s\n", dbFilePath())
		table{widths: []int{24, 10, 19}}.print([]string{"Coleção", "Bytes", "Atualizada"}, rows)

		return nil
	},
}

func init() {
	storeCmd.AddCommand(storeExportCmd, storeImportCmd, storeInfoCmd)
	rootCmd.AddCommand(storeCmd)
}
