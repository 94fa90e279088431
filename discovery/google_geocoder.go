// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jcodagnone/prospecta/spatial"
)

const googleMapsBaseURL = "https://maps.googleapis.com"

// GoogleMapsGeocoder uses the Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(apiKey string, httpClient *http.Client) *GoogleMapsGeocoder {
	return &GoogleMapsGeocoder{
		baseURL:    googleMapsBaseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"` // OK, ZERO_RESULTS, etc.
}

func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, location string) (*spatial.Point, error) {
	params := url.Values{}
	params.Set("address", location)
	params.Set("key", g.apiKey)
	params.Set("region", "br") // Bias to Brasil

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/maps/api/geocode/json?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindProviderUnavailable, Message: "geocoding request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPStatus("google maps", resp.StatusCode)
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, &Error{Kind: KindProviderUnavailable, Message: "decoding google maps response", Err: err}
	}

	switch gmResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, &Error{
			Kind:    KindResolutionFailed,
			Message: fmt.Sprintf("no results found for location: %s", location),
		}
	default:
		return nil, &Error{
			Kind:    KindProviderUnavailable,
			Message: fmt.Sprintf("google maps status: %s", gmResp.Status),
		}
	}

	if len(gmResp.Results) == 0 {
		return nil, &Error{
			Kind:    KindResolutionFailed,
			Message: fmt.Sprintf("no results found for location: %s", location),
		}
	}

	loc := gmResp.Results[0].Geometry.Location

	point := &spatial.Point{Lat: loc.Lat, Lng: loc.Lng}
	if err := point.Validate(); err != nil {
		return nil, &Error{Kind: KindResolutionFailed, Message: "google maps returned coordinates out of range", Err: err}
	}

	return point, nil
}
