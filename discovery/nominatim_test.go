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

func newTestNominatimGeocoder(serverURL string) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:    serverURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func TestNominatimGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Campinas, SP", r.URL.Query().Get("q"))
		assert.Equal(t, "br", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		fmt.Fprint(w, `[{"lat": "-22.9056391", "lon": "-47.0608788",
			"display_name": "Campinas, São Paulo, Brasil"}]`)
	}))
	defer server.Close()

	geocoder := newTestNominatimGeocoder(server.URL)

	point, err := geocoder.Geocode(context.Background(), "Campinas, SP")
	require.NoError(t, err)
	assert.InDelta(t, -22.9056391, point.Lat, 1e-9)
	assert.InDelta(t, -47.0608788, point.Lng, 1e-9)
}

func TestNominatimGeocodeNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	geocoder := newTestNominatimGeocoder(server.URL)

	_, err := geocoder.Geocode(context.Background(), "Xyzzy, ZZ")
	require.Error(t, err)
	assert.True(t, IsResolutionFailed(err))
}

func TestNominatimGeocodeRejectsOutOfRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"lat": "-122.0", "lon": "-47.06", "display_name": "bogus"}]`)
	}))
	defer server.Close()

	geocoder := newTestNominatimGeocoder(server.URL)

	_, err := geocoder.Geocode(context.Background(), "Campinas, SP")
	require.Error(t, err)
	assert.True(t, IsResolutionFailed(err))
}

func TestGoogleMapsGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "br", r.URL.Query().Get("region"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		fmt.Fprint(w, `{"status": "OK", "results": [
			{"geometry": {"location": {"lat": -22.9056, "lng": -47.0608}},
			 "formatted_address": "Campinas, SP, Brasil"}
		]}`)
	}))
	defer server.Close()

	geocoder := &GoogleMapsGeocoder{
		baseURL:    server.URL,
		apiKey:     "test-key",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	point, err := geocoder.Geocode(context.Background(), "Campinas, SP")
	require.NoError(t, err)
	assert.InDelta(t, -22.9056, point.Lat, 1e-9)
}

func TestGoogleMapsGeocodeZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer server.Close()

	geocoder := &GoogleMapsGeocoder{
		baseURL:    server.URL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}

	_, err := geocoder.Geocode(context.Background(), "Xyzzy, ZZ")
	require.Error(t, err)
	assert.True(t, IsResolutionFailed(err))
}
