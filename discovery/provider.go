// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"

	"github.com/jcodagnone/prospecta/spatial"
)

// Candidate is a raw place returned by a provider, before deduplication,
// classification and reconciliation.
type Candidate struct {
	Name    string
	Address string
	Point   spatial.Point
	Phone   string
	Website string
	Rating  *float64
	PlaceID string
}

// Query is one provider lookup: a search term around a resolved center.
type Query struct {
	// Text is the full search wording, e.g. "academia em Campinas SP".
	Text string

	Center       *spatial.Point
	RadiusMeters int

	// City and State give providers a fallback when a place carries no
	// usable address of its own.
	City  string
	State string
}

// Provider searches one upstream place source.
type Provider interface {
	// Search returns the candidates matching the query. Implementations
	// absorb per-item noise but return an error when the source as a whole
	// is unusable.
	Search(ctx context.Context, q Query) ([]Candidate, error)

	// Name identifies the provider in logs.
	Name() string
}
