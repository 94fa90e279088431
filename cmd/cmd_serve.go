// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"

	"github.com/jcodagnone/prospecta/discovery"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inicia o servidor HTTP da API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		log.Printf("listening on %s", a.cfg.Server.Addr)

		server := discovery.NewServer(a.finder, a.repo, a.cfg.Server.Addr)

		return server.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
