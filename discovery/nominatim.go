// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jcodagnone/prospecta/spatial"
	"golang.org/x/time/rate"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder resolves locations through the OpenStreetMap Nominatim
// API. Usage policy caps us at one request per second.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewNominatimGeocoder creates a Nominatim geocoder on the public endpoint.
func NewNominatimGeocoder(httpClient *http.Client) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:    nominatimBaseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
}

// nominatim returns lat/lon as JSON strings
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, location string) (*spatial.Point, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "br")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindProviderUnavailable, Message: "nominatim request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPStatus("nominatim", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, &Error{Kind: KindProviderUnavailable, Message: "decoding nominatim response", Err: err}
	}

	if len(places) == 0 {
		return nil, &Error{
			Kind:    KindResolutionFailed,
			Message: fmt.Sprintf("no results found for location: %s", location),
		}
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, &Error{Kind: KindResolutionFailed, Message: "invalid latitude in nominatim response", Err: err}
	}

	lng, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, &Error{Kind: KindResolutionFailed, Message: "invalid longitude in nominatim response", Err: err}
	}

	point := &spatial.Point{Lat: lat, Lng: lng}
	if err := point.Validate(); err != nil {
		return nil, &Error{Kind: KindResolutionFailed, Message: "nominatim returned coordinates out of range", Err: err}
	}

	return point, nil
}
