// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"github.com/jcodagnone/prospecta/prospect"
	"github.com/jcodagnone/prospecta/spatial"
)

const (
	// MinRadiusKm and MaxRadiusKm bound a search request.
	MinRadiusKm = 1
	MaxRadiusKm = 100

	// DefaultRadiusKm is used when the caller doesn't pick one.
	DefaultRadiusKm = 50

	// backupThreshold is the primary-result count under which the backup
	// provider is consulted for a term.
	backupThreshold = 10
)

// DefaultTerms are the search terms used when the caller supplies none. They
// double as classification hints, so changes here ripple into the term table.
var DefaultTerms = []string{
	"campo de futebol",
	"quadra society",
	"escolinha de futebol",
	"condomínio com quadra",
	"academia",
	"clube esportivo",
}

// SearchRequest describes one discovery run.
type SearchRequest struct {
	City     string
	State    string
	RadiusKm int

	// Terms overrides DefaultTerms when non-empty.
	Terms []string
}

// Validate checks the request before any provider is contacted.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.City) == "" {
		return &Error{Kind: KindInvalidRequest, Message: "city is required"}
	}

	state := strings.TrimSpace(r.State)
	if state == "" {
		return &Error{Kind: KindInvalidRequest, Message: "state is required"}
	}

	if !isStateCode(state) {
		return &Error{Kind: KindInvalidRequest, Message: "state must be a 2-letter code"}
	}

	if r.RadiusKm == 0 {
		r.RadiusKm = DefaultRadiusKm
	}

	if r.RadiusKm < MinRadiusKm || r.RadiusKm > MaxRadiusKm {
		return &Error{
			Kind:    KindInvalidRequest,
			Message: fmt.Sprintf("radius must be between %d and %d km", MinRadiusKm, MaxRadiusKm),
		}
	}

	return nil
}

func isStateCode(s string) bool {
	r := []rune(s)
	if len(r) != 2 {
		return false
	}

	for _, c := range r {
		if !unicode.IsLetter(c) {
			return false
		}
	}

	return true
}

// Summary is the outcome of a discovery run.
type Summary struct {
	Clients         []*prospect.Client `json:"clients"`
	TotalFound      int                `json:"total_found"`
	NewClients      int                `json:"new_clients"`
	ExistingClients int                `json:"existing_clients"`
	SearchLocation  string             `json:"search_location"`
	RadiusKm        int                `json:"radius_km"`
	SearchedAt      time.Time          `json:"searched_at"`
	ClientsByType   map[string]int     `json:"clients_by_type"`
}

// Searcher runs discovery searches. It exists as an interface so the HTTP
// handlers and the CLI can be tested against a stub.
type Searcher interface {
	Run(ctx context.Context, req SearchRequest) (*Summary, error)
}

// Finder wires a geocoder, the place providers and the client store into the
// discovery pipeline.
type Finder struct {
	geocoder Geocoder

	// providers in priority order: earlier providers win merge-dedup ties,
	// and only the first is consulted unconditionally.
	providers []Provider

	repo prospect.ClientRepository

	// Progress, when set, is called after each term completes with the
	// number of terms done and the total.
	Progress func(done, total int)
}

// NewFinder creates a discovery Finder.
func NewFinder(geocoder Geocoder, providers []Provider, repo prospect.ClientRepository) *Finder {
	return &Finder{
		geocoder:  geocoder,
		providers: providers,
		repo:      repo,
	}
}

// Run performs one discovery run: resolve the city, query every term, dedup,
// classify, reconcile against the store and persist what is new.
func (f *Finder) Run(ctx context.Context, req SearchRequest) (*Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	center, err := f.geocoder.Geocode(ctx, req.City+", "+req.State)
	if err != nil {
		if IsResolutionFailed(err) {
			return nil, err
		}

		return nil, &Error{
			Kind:    KindResolutionFailed,
			Message: fmt.Sprintf("resolving %s, %s", req.City, req.State),
			Err:     err,
		}
	}

	terms := req.Terms
	if len(terms) == 0 {
		terms = DefaultTerms
	}

	var (
		pending  []*prospect.Client
		existing int
		found    int
	)

	for i, term := range terms {
		candidates := f.searchTerm(ctx, term, req, center)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found += len(candidates)

		for _, candidate := range candidates {
			client := buildClient(term, candidate)

			isNew, err := f.isNew(ctx, pending, client)
			if err != nil {
				return nil, err
			}

			if isNew {
				pending = append(pending, client)
			} else {
				existing++
			}
		}

		if f.Progress != nil {
			f.Progress(i+1, len(terms))
		}
	}

	if err := f.repo.AddMany(ctx, pending); err != nil {
		return nil, &Error{Kind: KindPersistenceFailed, Message: "storing discovered clients", Err: err}
	}

	stored, err := f.repo.GetByCity(ctx, req.City, req.State)
	if err != nil {
		return nil, &Error{Kind: KindPersistenceFailed, Message: "listing stored clients", Err: err}
	}

	union := unionByID(stored, pending)

	log.Printf("discovery for %s, %s done in %v: %d found, %d new, %d already known",
		req.City, req.State, time.Since(start).Round(time.Millisecond),
		found, len(pending), existing)

	return &Summary{
		Clients:         union,
		TotalFound:      len(union),
		NewClients:      len(pending),
		ExistingClients: existing,
		SearchLocation:  fmt.Sprintf("%s, %s", req.City, req.State),
		RadiusKm:        req.RadiusKm,
		SearchedAt:      time.Now().UTC(),
		ClientsByType:   countByType(union),
	}, nil
}

// searchTerm queries every provider for one term and merges the results. A
// provider failure contributes zero candidates but never aborts the run. The
// backup providers only kick in when the primary came back thin.
func (f *Finder) searchTerm(ctx context.Context, term string, req SearchRequest, center *spatial.Point) []Candidate {
	query := Query{
		Text:         term + " em " + req.City + " " + req.State,
		Center:       center,
		RadiusMeters: req.RadiusKm * 1000,
		City:         req.City,
		State:        req.State,
	}

	var all []Candidate

	for i, provider := range f.providers {
		if i > 0 && len(all) >= backupThreshold {
			break
		}

		candidates, err := provider.Search(ctx, query)
		if err != nil {
			log.Printf("provider %s failed for %q: %v", provider.Name(), query.Text, err)

			continue
		}

		all = append(all, candidates...)
	}

	return MergeDedup(all)
}

// isNew reports whether the client is absent from both the store and the
// batch accumulated so far in this run. Matching is by (name, street, city),
// case-insensitively; the same place spelled with a differently formatted
// address still slips through.
func (f *Finder) isNew(ctx context.Context, pending []*prospect.Client, client *prospect.Client) (bool, error) {
	for _, p := range pending {
		if strings.EqualFold(p.Name, client.Name) &&
			strings.EqualFold(p.Address.Street, client.Address.Street) &&
			strings.EqualFold(p.Address.City, client.Address.City) {
			return false, nil
		}
	}

	exists, err := f.repo.ExistsByNameAndAddress(ctx, client.Name, client.Address.Street, client.Address.City)
	if err != nil {
		return false, &Error{Kind: KindPersistenceFailed, Message: "checking for existing client", Err: err}
	}

	return !exists, nil
}

func buildClient(term string, candidate Candidate) *prospect.Client {
	point := candidate.Point

	client := prospect.NewClient(
		candidate.Name,
		prospect.ParseAddress(candidate.Address),
		Classify(term, candidate.Name),
		&point,
		candidate.PlaceID,
	)

	client.UpdateContactInfo(prospect.ContactInfo{
		Phone:   candidate.Phone,
		Website: candidate.Website,
	})

	if candidate.Rating != nil {
		client.UpdateRating(*candidate.Rating)
	}

	return client
}

func unionByID(stored, inserted []*prospect.Client) []*prospect.Client {
	seen := make(map[string]bool, len(stored)+len(inserted))
	union := make([]*prospect.Client, 0, len(stored)+len(inserted))

	for _, list := range [][]*prospect.Client{stored, inserted} {
		for _, client := range list {
			if !seen[client.ID] {
				seen[client.ID] = true

				union = append(union, client)
			}
		}
	}

	return union
}

func countByType(clients []*prospect.Client) map[string]int {
	counts := make(map[string]int)

	for _, client := range clients {
		counts[client.Type.String()]++
	}

	return counts
}
