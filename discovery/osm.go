// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jcodagnone/prospecta/spatial"
	"github.com/jcodagnone/prospecta/utils/textutils"
	"golang.org/x/time/rate"
)

// osmNameAllowList keeps only places whose name suggests a prospect. Nominatim
// free-text results carry no purpose tag, so the name is all we have.
var osmNameAllowList = []string{
	"escola",
	"academia",
	"hotel",
	"creche",
	"condominio",
	"clube",
	"centro",
}

// OSMProvider searches places through the OpenStreetMap Nominatim API. It is
// the backup source, consulted when the primary comes back thin.
type OSMProvider struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOSMProvider creates a Nominatim place provider. The public instance asks
// for at most one request every two seconds from bulk users.
func NewOSMProvider(httpClient *http.Client) *OSMProvider {
	return &OSMProvider{
		baseURL:    nominatimBaseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (p *OSMProvider) Name() string {
	return "osm"
}

func (p *OSMProvider) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "json")
	params.Set("limit", "10")
	params.Set("countrycodes", "br")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
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

	var candidates []Candidate

	for _, place := range places {
		candidate, ok := p.toCandidate(place)
		if ok {
			candidates = append(candidates, candidate)
		}
	}

	return candidates, nil
}

func (p *OSMProvider) toCandidate(place nominatimPlace) (Candidate, bool) {
	// display_name is "name, suburb, city, state, ..., country"
	name := place.DisplayName
	if i := strings.Index(name, ","); i >= 0 {
		name = name[:i]
	}

	name = strings.TrimSpace(name)
	if !nameSuggestsProspect(name) {
		return Candidate{}, false
	}

	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return Candidate{}, false
	}

	lng, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return Candidate{}, false
	}

	return Candidate{
		Name:    textutils.Truncate(name, maxNameLength),
		Address: textutils.Truncate(place.DisplayName, maxAddressLength),
		Point:   spatial.Point{Lat: lat, Lng: lng},
	}, true
}

func nameSuggestsProspect(name string) bool {
	folded := textutils.LowerASCIIFolding(name)

	for _, keyword := range osmNameAllowList {
		if strings.Contains(folded, keyword) {
			return true
		}
	}

	return false
}
