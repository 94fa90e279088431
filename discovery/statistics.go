// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"

	"github.com/jcodagnone/prospecta/prospect"
)

// Statistics aggregates the state of the client store.
type Statistics struct {
	TotalClients   int            `json:"total_clients"`
	ByStatus       map[string]int `json:"by_status"`
	ByType         map[string]int `json:"by_type"`
	ConversionRate float64        `json:"conversion_rate"`
}

// ClientStatistics computes store-wide totals, per-status and per-type counts
// and the conversion rate (converted over total).
func ClientStatistics(ctx context.Context, repo prospect.ClientRepository) (*Statistics, error) {
	clients, err := repo.GetAll(ctx)
	if err != nil {
		return nil, &Error{Kind: KindPersistenceFailed, Message: "listing clients", Err: err}
	}

	stats := &Statistics{
		TotalClients: len(clients),
		ByStatus:     make(map[string]int),
		ByType:       make(map[string]int),
	}

	for _, client := range clients {
		stats.ByStatus[client.Status.String()]++
		stats.ByType[client.Type.String()]++
	}

	if stats.TotalClients > 0 {
		converted := stats.ByStatus[prospect.StatusConverted.String()]
		stats.ConversionRate = float64(converted) / float64(stats.TotalClients)
	}

	return stats, nil
}
