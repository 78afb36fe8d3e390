// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jcodagnone/transporte/address"
	"github.com/jcodagnone/transporte/registry"
	"github.com/jcodagnone/transporte/utils/textutils"
)

// table prints rows in a box, truncating each cell to its column width.
type table struct {
	widths []int
}

func (t table) line(left, mid, right string) {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat("─", w+2)
	}

	fmt.Println(left + strings.Join(parts, mid) + right)
}

func (t table) row(cells ...string) {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		cell := ""
		if i < len(cells) {
			cell = textutils.Truncate(cells[i], w)
		}

		parts[i] = " " + cell + strings.Repeat(" ", w-len([]rune(cell))) + " "
	}

	fmt.Println("│" + strings.Join(parts, "│") + "│")
}

func (t table) print(header []string, rows [][]string) {
	t.line("╭", "┬", "╮")
	t.row(header...)
	t.line("├", "┼", "┤")

	for _, r := range rows {
		t.row(r...)
	}

	t.line("╰", "┴", "╯")
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Lista as rotas cadastradas",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		reg, err := loadRegistry(store)
		if err != nil {
			return err
		}

		routes := reg.Routes()
		rows := make([][]string, 0, len(routes))

		for _, r := range routes {
			rows = append(rows, []string{
				r.ID,
				r.Name,
				reg.DriverName(&r),
				r.Schedule,
				textutils.FormatInt(int64(r.SeatCount)),
				textutils.FirstNonBlank(registry.ResolveRouteAddress(&r, address.Origin), "-"),
				textutils.FirstNonBlank(registry.ResolveRouteAddress(&r, address.Destination), "-"),
			})
		}

		fmt.Printf("Rotas cadastradas: %s\n", textutils.FormatInt(int64(len(routes))))
		table{widths: []int{8, 16, 16, 7, 5, 36, 36}}.print(
			[]string{"Id", "Nome", "Motorista", "Horário", "Vagas", "Origem", "Destino"}, rows)

		return nil
	},
}

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Lista os alunos com o endereço efetivo",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		reg, err := loadRegistry(store)
		if err != nil {
			return err
		}

		students := reg.Students()
		rows := make([][]string, 0, len(students))

		for _, s := range students {
			guardian := "N/A"
			if g, ok := reg.Guardian(s.GuardianID); ok {
				guardian = g.Name
			}

			rows = append(rows, []string{
				s.ID,
				s.Name,
				textutils.FormatInt(int64(s.Age)),
				s.School,
				guardian,
				reg.StudentAddressOrPlaceholder(s.ID),
			})
		}

		fmt.Printf("Alunos cadastrados: %s\n", textutils.FormatInt(int64(len(students))))
		table{widths: []int{8, 20, 5, 20, 20, 44}}.print(
			[]string{"Id", "Nome", "Idade", "Escola", "Responsável", "Endereço"}, rows)

		return nil
	},
}

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <termo>",
	Short: "Busca em todos os cadastros",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		term := strings.Join(args, " ")
		if len([]rune(strings.TrimSpace(term))) < registry.MinSearchLength {
			return fmt.Errorf("o termo deve ter ao menos %d caracteres", registry.MinSearchLength)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		reg, err := loadRegistry(store)
		if err != nil {
			return err
		}

		results := reg.Search(term, searchLimit)
		if len(results) == 0 {
			fmt.Printf("Nenhum resultado para %q\n", term)

			return nil
		}

		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{string(r.Kind), r.Title, r.Subtitle, r.ID})
		}

		table{widths: []int{12, 24, 44, 8}}.print([]string{"Tipo", "Título", "Detalhe", "Id"}, rows)

		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "máximo de resultados (0 sem limite)")
	rootCmd.AddCommand(routesCmd, studentsCmd, searchCmd)
}
