// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestOSMProvider(serverURL string) *OSMProvider {
	return &OSMProvider{
		baseURL:    serverURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func TestOSMSearchFiltersByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "br", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		fmt.Fprint(w, `[
			{"lat": "-22.9056", "lon": "-47.0608",
			 "display_name": "Escola Estadual Dom Pedro, Centro, Campinas, São Paulo, Brasil"},
			{"lat": "-22.9100", "lon": "-47.0700",
			 "display_name": "Padaria Pão Quente, Centro, Campinas, São Paulo, Brasil"},
			{"lat": "-22.9200", "lon": "-47.0800",
			 "display_name": "Condomínio das Flores, Taquaral, Campinas, São Paulo, Brasil"}
		]`)
	}))
	defer server.Close()

	provider := newTestOSMProvider(server.URL)

	candidates, err := provider.Search(context.Background(), hereQuery())
	require.NoError(t, err)

	// the bakery has no prospect keyword in its name
	require.Len(t, candidates, 2)
	assert.Equal(t, "Escola Estadual Dom Pedro", candidates[0].Name)
	assert.Equal(t, "Condomínio das Flores", candidates[1].Name)
	assert.InDelta(t, -22.9056, candidates[0].Point.Lat, 1e-9)

	// address keeps the full display_name
	assert.Contains(t, candidates[0].Address, "Campinas")
}

func TestOSMSearchFoldsAccentsInAllowList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[
			{"lat": "-22.9", "lon": "-47.06",
			 "display_name": "CONDOMÍNIO ALPHAVILLE, Campinas, Brasil"}
		]`)
	}))
	defer server.Close()

	provider := newTestOSMProvider(server.URL)

	candidates, err := provider.Search(context.Background(), hereQuery())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}

func TestOSMSearchSkipsUnparsableCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[
			{"lat": "not-a-number", "lon": "-47.06",
			 "display_name": "Escola Quebrada, Campinas, Brasil"}
		]`)
	}))
	defer server.Close()

	provider := newTestOSMProvider(server.URL)

	candidates, err := provider.Search(context.Background(), hereQuery())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestOSMSearchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := newTestOSMProvider(server.URL)

	_, err := provider.Search(context.Background(), hereQuery())
	require.Error(t, err)
	assert.True(t, IsProviderUnavailable(err))
}
