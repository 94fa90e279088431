// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/jcodagnone/prospecta/discovery"
	"github.com/jcodagnone/prospecta/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var searchOptions struct {
	city   string
	state  string
	radius int
	terms  []string
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Busca potenciais clientes em torno de uma cidade",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		terms := searchOptions.terms
		if len(terms) == 0 {
			terms = discovery.DefaultTerms
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(terms),
				progressbar.OptionSetDescription("Buscando "+searchOptions.city),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			a.finder.Progress = func(done, _ int) {
				_ = bar.Set(done)
			}
		}

		summary, err := a.finder.Run(cmd.Context(), discovery.SearchRequest{
			City:     searchOptions.city,
			State:    searchOptions.state,
			RadiusKm: searchOptions.radius,
			Terms:    searchOptions.terms,
		})

		if bar != nil {
			_ = bar.Finish()
		}

		if err != nil {
			return err
		}

		printSummary(summary)

		return nil
	},
}

func printSummary(summary *discovery.Summary) {
	fmt.Printf("Busca em %s (raio %d km)\n", summary.SearchLocation, summary.RadiusKm)
	fmt.Printf("  encontrados: %s\n", textutils.FormatInt(int64(summary.TotalFound)))
	fmt.Printf("  novos:       %s\n", textutils.FormatInt(int64(summary.NewClients)))
	fmt.Printf("  conhecidos:  %s\n", textutils.FormatInt(int64(summary.ExistingClients)))

	types := make([]string, 0, len(summary.ClientsByType))
	for t := range summary.ClientsByType {
		types = append(types, t)
	}

	sort.Strings(types)

	for _, t := range types {
		fmt.Printf("  %-20s %s\n", t, textutils.FormatInt(int64(summary.ClientsByType[t])))
	}
}

func init() {
	searchCmd.Flags().StringVar(&searchOptions.city, "city", "", "cidade a pesquisar")
	searchCmd.Flags().StringVar(&searchOptions.state, "state", "", "estado (UF)")
	searchCmd.Flags().IntVar(&searchOptions.radius, "radius", discovery.DefaultRadiusKm, "raio de busca em km")
	searchCmd.Flags().StringArrayVar(&searchOptions.terms, "term", nil, "termo de busca (repetível; padrão embutido)")

	_ = searchCmd.MarkFlagRequired("city")
	_ = searchCmd.MarkFlagRequired("state")

	rootCmd.AddCommand(searchCmd)
}
