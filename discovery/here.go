// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jcodagnone/prospecta/spatial"
	"github.com/jcodagnone/prospecta/utils/textutils"
	"golang.org/x/time/rate"
)

const (
	hereBaseURL = "https://discover.search.hereapi.com"

	hereResultLimit = 10

	maxNameLength    = 50
	maxAddressLength = 200
)

// hereCategories is the battery of category hints issued per search term. The
// HERE free-text endpoint ranks much better when the query carries a category
// word, so each term is expanded into one sub-query per category.
var hereCategories = []string{"school", "gym", "fitness", "hotel", "sports"}

// HereProvider searches places through the HERE Discover API.
type HereProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHereProvider creates a HERE place provider.
func NewHereProvider(apiKey string, httpClient *http.Client) *HereProvider {
	return &HereProvider{
		baseURL:    hereBaseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		// 500ms between sub-queries keeps us well under the free-tier quota
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

func (p *HereProvider) Name() string {
	return "here"
}

type hereResponse struct {
	Items []hereItem `json:"items"`
}

type hereItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Address struct {
		Street      string `json:"street"`
		HouseNumber string `json:"houseNumber"`
		District    string `json:"district"`
		City        string `json:"city"`
		State       string `json:"state"`
		StateCode   string `json:"stateCode"`
		PostalCode  string `json:"postalCode"`
	} `json:"address"`
	Position struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"position"`
	Contacts []struct {
		Phone []struct {
			Value string `json:"value"`
		} `json:"phone"`
		WWW []struct {
			Value string `json:"value"`
		} `json:"www"`
	} `json:"contacts"`
}

// Search runs the category battery for one term. A failed sub-query is logged
// and skipped so a transient HERE hiccup doesn't sink the whole term.
func (p *HereProvider) Search(ctx context.Context, q Query) ([]Candidate, error) {
	if p.apiKey == "" {
		return nil, &Error{Kind: KindProviderUnavailable, Message: "here api key is not configured"}
	}

	var candidates []Candidate

	failures := 0

	for _, category := range hereCategories {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		items, err := p.discover(ctx, q, category)
		if err != nil {
			log.Printf("here sub-query %q for %q failed: %v", category, q.Text, err)

			failures++

			continue
		}

		for _, item := range items {
			candidates = append(candidates, p.toCandidate(item, q))
		}
	}

	if failures == len(hereCategories) {
		return nil, &Error{
			Kind:    KindProviderUnavailable,
			Message: fmt.Sprintf("all here sub-queries failed for %q", q.Text),
		}
	}

	return candidates, nil
}

func (p *HereProvider) discover(ctx context.Context, q Query, category string) ([]hereItem, error) {
	params := url.Values{}
	params.Set("q", q.Text+" "+category)
	params.Set("in", fmt.Sprintf("circle:%f,%f;r=%d", q.Center.Lat, q.Center.Lng, q.RadiusMeters))
	params.Set("limit", fmt.Sprintf("%d", hereResultLimit))
	params.Set("apiKey", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/discover?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPStatus("here", resp.StatusCode)
	}

	var hResp hereResponse
	if err := json.NewDecoder(resp.Body).Decode(&hResp); err != nil {
		return nil, fmt.Errorf("decoding here response: %w", err)
	}

	return hResp.Items, nil
}

func (p *HereProvider) toCandidate(item hereItem, q Query) Candidate {
	candidate := Candidate{
		Name:    textutils.Truncate(strings.TrimSpace(item.Title), maxNameLength),
		Address: textutils.Truncate(p.formatAddress(item, q), maxAddressLength),
		PlaceID: item.ID,
	}

	candidate.Point = spatial.Point{Lat: item.Position.Lat, Lng: item.Position.Lng}

	for _, contact := range item.Contacts {
		if candidate.Phone == "" && len(contact.Phone) > 0 {
			candidate.Phone = contact.Phone[0].Value
		}

		if candidate.Website == "" && len(contact.WWW) > 0 {
			candidate.Website = contact.WWW[0].Value
		}
	}

	return candidate
}

// formatAddress renders the structured HERE address in the single-line layout
// the rest of the pipeline parses. Places with no address of their own fall
// back to the city/state the query was issued for. The street slot is never
// left empty: the positional parser downstream would otherwise read the city
// segment as the street, so a street-less place carries its district or, as a
// last resort, its own title there.
func (p *HereProvider) formatAddress(item hereItem, q Query) string {
	addr := item.Address

	street := strings.TrimSpace(addr.Street)
	if addr.HouseNumber != "" {
		street = strings.TrimSpace(street + ", " + addr.HouseNumber)
	}

	if street == "" {
		street = strings.TrimSpace(addr.District)
	}

	if street == "" {
		street = strings.TrimSpace(item.Title)
	}

	city := addr.City
	if city == "" {
		city = q.City
	}

	state := addr.StateCode
	if state == "" {
		state = addr.State
	}

	if state == "" {
		state = q.State
	}

	var b strings.Builder

	if street != "" {
		b.WriteString(street)
		b.WriteString(", ")
	}

	b.WriteString(city)

	if state != "" {
		b.WriteString(" - ")
		b.WriteString(state)
	}

	if addr.PostalCode != "" {
		b.WriteString(", CEP: ")
		b.WriteString(addr.PostalCode)
	}

	b.WriteString(", Brasil")

	return b.String()
}
