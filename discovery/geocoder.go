// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

// Package discovery finds potential clients around a city by querying place
// providers, deduplicating and classifying the results, and reconciling them
// against the client store.
package discovery

import (
	"context"

	"github.com/jcodagnone/prospecta/spatial"
)

// Geocoder resolves a free-text location ("city, state") to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (*spatial.Point, error)
}
