// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jcodagnone/prospecta/prospect"
	"github.com/jcodagnone/prospecta/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestHereProvider(serverURL string) *HereProvider {
	return &HereProvider{
		baseURL:    serverURL,
		apiKey:     "test-key",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func hereQuery() Query {
	return Query{
		Text:         "academia em Campinas SP",
		Center:       &spatial.Point{Lat: -22.9056, Lng: -47.0608},
		RadiusMeters: 50000,
		City:         "Campinas",
		State:        "SP",
	}
}

func TestHereSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/discover", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Contains(t, r.URL.Query().Get("in"), "circle:")

		// only the gym sub-query has content
		if !strings.Contains(r.URL.Query().Get("q"), "gym") {
			fmt.Fprint(w, `{"items":[]}`)

			return
		}

		fmt.Fprint(w, `{
			"items": [{
				"id": "here:pds:place:076jx7ps",
				"title": "Academia Corpo em Forma",
				"address": {
					"street": "Rua Barão de Jaguara",
					"houseNumber": "1200",
					"city": "Campinas",
					"stateCode": "SP",
					"postalCode": "13015-002"
				},
				"position": {"lat": -22.9064, "lng": -47.0616},
				"contacts": [{
					"phone": [{"value": "+551932310000"}],
					"www": [{"value": "https://corpoemforma.example"}]
				}]
			}]
		}`)
	}))
	defer server.Close()

	provider := newTestHereProvider(server.URL)

	candidates, err := provider.Search(context.Background(), hereQuery())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, "Academia Corpo em Forma", c.Name)
	assert.Equal(t, "Rua Barão de Jaguara, 1200, Campinas - SP, CEP: 13015-002, Brasil", c.Address)
	assert.Equal(t, "here:pds:place:076jx7ps", c.PlaceID)
	assert.Equal(t, "+551932310000", c.Phone)
	assert.Equal(t, "https://corpoemforma.example", c.Website)
	assert.InDelta(t, -22.9064, c.Point.Lat, 1e-9)
}

func TestHereSearchToleratesSubQueryFailures(t *testing.T) {
	var requests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		// the first two categories blow up, the rest answer
		if requests <= 2 {
			w.WriteHeader(http.StatusBadGateway)

			return
		}

		fmt.Fprint(w, `{"items":[{
			"title": "Hotel Vitória",
			"address": {"city": "Campinas", "stateCode": "SP"},
			"position": {"lat": -22.9, "lng": -47.06}
		}]}`)
	}))
	defer server.Close()

	provider := newTestHereProvider(server.URL)

	candidates, err := provider.Search(context.Background(), hereQuery())
	require.NoError(t, err)
	assert.Equal(t, len(hereCategories), requests)
	assert.Len(t, candidates, 3)
}

func TestHereSearchFailsWhenAllSubQueriesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := newTestHereProvider(server.URL)

	_, err := provider.Search(context.Background(), hereQuery())
	require.Error(t, err)
	assert.True(t, IsProviderUnavailable(err))
}

func TestHereSearchAddressFallsBackToQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"items":[{
			"title": "Quadra do Bairro",
			"address": {},
			"position": {"lat": -22.91, "lng": -47.07}
		}]}`)
	}))
	defer server.Close()

	provider := newTestHereProvider(server.URL)

	candidates, err := provider.Search(context.Background(), hereQuery())
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	// the title holds the street slot so the city/state keep their own
	// segment through the positional parse
	assert.Equal(t, "Quadra do Bairro, Campinas - SP, Brasil", candidates[0].Address)

	addr := prospect.ParseAddress(candidates[0].Address)
	assert.Equal(t, "Quadra do Bairro", addr.Street)
	assert.Equal(t, "Campinas", addr.City)
	assert.Equal(t, "SP", addr.State)
}

func TestHereSearchDistrictFillsStreetSlot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"items":[{
			"title": "Campo do Taquaral",
			"address": {"district": "Taquaral", "city": "Campinas", "stateCode": "SP"},
			"position": {"lat": -22.87, "lng": -47.05}
		}]}`)
	}))
	defer server.Close()

	provider := newTestHereProvider(server.URL)

	candidates, err := provider.Search(context.Background(), hereQuery())
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "Taquaral, Campinas - SP, Brasil", candidates[0].Address)

	addr := prospect.ParseAddress(candidates[0].Address)
	assert.Equal(t, "Campinas", addr.City)
	assert.Equal(t, "SP", addr.State)
}

func TestHereSearchTruncatesLongFields(t *testing.T) {
	longName := strings.Repeat("Academia ", 20) // 180 runes

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{"items":[{
			"title": %q,
			"address": {"city": "Campinas", "stateCode": "SP"},
			"position": {"lat": -22.9, "lng": -47.06}
		}]}`, longName)
	}))
	defer server.Close()

	provider := newTestHereProvider(server.URL)

	candidates, err := provider.Search(context.Background(), hereQuery())
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.LessOrEqual(t, len([]rune(candidates[0].Name)), maxNameLength)
}

func TestHereSearchRequiresAPIKey(t *testing.T) {
	provider := NewHereProvider("", &http.Client{})

	_, err := provider.Search(context.Background(), hereQuery())
	require.Error(t, err)
	assert.True(t, IsProviderUnavailable(err))
}
