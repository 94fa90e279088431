// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"sort"

	"github.com/jcodagnone/prospecta/discovery"
	"github.com/jcodagnone/prospecta/utils/textutils"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Acesso à base de clientes",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista os clientes armazenados",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		clients, err := a.repo.GetAll(cmd.Context())
		if err != nil {
			return err
		}

		for _, c := range clients {
			fmt.Printf("%-36s  %-15s  %-14s  %-50s  %s\n",
				c.ID, c.Type, c.Status, c.Name, c.Address.Formatted())
		}

		fmt.Printf("%s clientes\n", textutils.FormatInt(int64(len(clients))))

		return nil
	},
}

var clientsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Mostra totais por status e tipo",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := discovery.ClientStatistics(cmd.Context(), a.repo)
		if err != nil {
			return err
		}

		fmt.Printf("Total: %s\n", textutils.FormatInt(int64(stats.TotalClients)))
		fmt.Printf("Conversão: %.1f%%\n", stats.ConversionRate*100)

		printCounts("Por status", stats.ByStatus)
		printCounts("Por tipo", stats.ByType)

		return nil
	},
}

func printCounts(title string, counts map[string]int) {
	fmt.Println(title + ":")

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("  %-20s %s\n", k, textutils.FormatInt(int64(counts[k])))
	}
}

func init() {
	clientsCmd.AddCommand(clientsListCmd)
	clientsCmd.AddCommand(clientsStatsCmd)
	rootCmd.AddCommand(clientsCmd)
}
