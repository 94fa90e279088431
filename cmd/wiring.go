// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/prospecta/config"
	"github.com/jcodagnone/prospecta/discovery"
	"github.com/jcodagnone/prospecta/prospect"
	"github.com/jcodagnone/prospecta/utils/httputils"
)

// app bundles the wired components shared by the subcommands.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	repo   prospect.ClientRepository
	finder *discovery.Finder
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(cfg.Store.Path, "prospecta.duckdb"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	repo := prospect.NewClientRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, fmt.Errorf("creating schema: %w", err)
	}

	httpClient := newHTTPClient(cfg)

	geocoder, err := newGeocoder(ctx, cfg, httpClient)
	if err != nil {
		db.Close()

		return nil, err
	}

	providers := []discovery.Provider{
		discovery.NewHereProvider(cfg.Here.APIKey, httpClient),
		discovery.NewOSMProvider(httpClient),
	}

	return &app{
		cfg:    cfg,
		db:     db,
		repo:   repo,
		finder: discovery.NewFinder(geocoder, providers, repo),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func newHTTPClient(cfg *config.Config) *http.Client {
	userAgent := cfg.HTTP.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("prospecta/%s (+https://github.com/jcodagnone/prospecta)", Version)
	}

	var traceWriter io.Writer
	if cfg.HTTP.Trace {
		traceWriter = os.Stderr
	}

	return httputils.NewClient(userAgent, traceWriter, cfg.HTTP.TraceBody)
}

func newGeocoder(ctx context.Context, cfg *config.Config, httpClient *http.Client) (discovery.Geocoder, error) {
	switch cfg.Geocoding.Provider {
	case "google_maps":
		key, err := cfg.ResolveGoogleMapsKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolving google maps api key: %w", err)
		}

		return discovery.NewGoogleMapsGeocoder(key, httpClient), nil
	default:
		return discovery.NewNominatimGeocoder(httpClient), nil
	}
}
