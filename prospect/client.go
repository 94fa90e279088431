// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

// Package prospect holds the persisted client domain: the entities tracked
// across discovery runs and their DuckDB-backed repository.
package prospect

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/prospecta/spatial"
	"github.com/uber/h3-go/v4"
)

// ClientType is the business classification inferred for a client.
type ClientType int

// Known client types. The enumeration is closed: extending it means touching
// the classifier keyword table, not the logic.
const (
	TypeSoccerSchool ClientType = iota + 1
	TypeCondominium
	TypeSportsClub
	TypeCompany
	TypePublicFacility
	TypePrivateResidence
	TypeOther
)

var clientTypeNames = map[ClientType]string{
	TypeSoccerSchool:     "soccer_school",
	TypeCondominium:      "condominium",
	TypeSportsClub:       "sports_club",
	TypeCompany:          "company",
	TypePublicFacility:   "public_facility",
	TypePrivateResidence: "private_residence",
	TypeOther:            "other",
}

func (t ClientType) String() string {
	if s, ok := clientTypeNames[t]; ok {
		return s
	}

	return "other"
}

// ParseClientType maps a stored label back to its ClientType.
func ParseClientType(s string) (ClientType, error) {
	for t, name := range clientTypeNames {
		if name == s {
			return t, nil
		}
	}

	return 0, fmt.Errorf("unknown client type: %q", s)
}

// ClientStatus is the sales lifecycle state of a client. It is only ever
// changed by an explicit operator action, never by the discovery pipeline.
type ClientStatus int

const (
	StatusProspect ClientStatus = iota + 1
	StatusContacted
	StatusInterested
	StatusConverted
	StatusNotInterested
)

var clientStatusNames = map[ClientStatus]string{
	StatusProspect:      "prospect",
	StatusContacted:     "contacted",
	StatusInterested:    "interested",
	StatusConverted:     "converted",
	StatusNotInterested: "not_interested",
}

func (s ClientStatus) String() string {
	if name, ok := clientStatusNames[s]; ok {
		return name
	}

	return "prospect"
}

// ParseClientStatus maps a label to its ClientStatus.
func ParseClientStatus(s string) (ClientStatus, error) {
	for status, name := range clientStatusNames {
		if name == s {
			return status, nil
		}
	}

	return 0, fmt.Errorf("unknown client status: %q", s)
}

// Address is the structured postal address of a client.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Formatted renders the address in the single-line form used by responses.
func (a Address) Formatted() string {
	return fmt.Sprintf("%s, %s - %s, %s, %s", a.Street, a.City, a.State, a.PostalCode, a.Country)
}

// ParseAddress splits a provider-formatted address into its structured form.
// The layout is positional: "street[, number], city - ST[, CEP: postal],
// Brasil". Parts the provider omitted stay empty; the country is always
// Brasil for this market.
func ParseAddress(formatted string) Address {
	parts := strings.Split(formatted, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	addr := Address{Country: "Brasil"}

	if len(parts) > 0 {
		addr.Street = parts[0]
		parts = parts[1:]
	}

	// a purely numeric segment right after the street is the house number
	if len(parts) > 0 && isDigits(parts[0]) {
		addr.Street += ", " + parts[0]
		parts = parts[1:]
	}

	if len(parts) > 0 {
		cityState := strings.SplitN(parts[0], "-", 2)
		addr.City = strings.TrimSpace(cityState[0])

		if len(cityState) > 1 {
			addr.State = strings.TrimSpace(cityState[1])
		}

		parts = parts[1:]
	}

	if len(parts) > 0 && !strings.EqualFold(parts[0], "Brasil") {
		addr.PostalCode = strings.TrimSpace(strings.TrimPrefix(parts[0], "CEP:"))
	}

	return addr
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// ContactInfo groups the optional contact channels of a client.
type ContactInfo struct {
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
	SocialMedia string `json:"social_media,omitempty"`
}

// IsEmpty reports whether no contact channel is known.
func (c ContactInfo) IsEmpty() bool {
	return c.Phone == "" && c.Email == "" && c.Website == "" && c.SocialMedia == ""
}

// Client is a potential synthetic-grass customer tracked by the store.
type Client struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Address         Address        `json:"address"`
	Type            ClientType     `json:"type"`
	Point           *spatial.Point `json:"point"`
	Contact         *ContactInfo   `json:"contact,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	LastContactedAt *time.Time     `json:"last_contacted_at,omitempty"`
	Status          ClientStatus   `json:"status"`
	Rating          *float64       `json:"rating,omitempty"`
	PlaceID         string         `json:"place_id,omitempty"`

	H3Res5 int64 `json:"-"`
	H3Res6 int64 `json:"-"`
	H3Res7 int64 `json:"-"`
	H3Res8 int64 `json:"-"`
}

// NewClient creates a prospect with a fresh identity. The identity and the
// creation timestamp are assigned exactly once, here.
func NewClient(name string, address Address, clientType ClientType, point *spatial.Point, placeID string) *Client {
	return &Client{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   address,
		Type:      clientType,
		Point:     point,
		CreatedAt: time.Now().UTC(),
		Status:    StatusProspect,
		PlaceID:   placeID,
	}
}

// UpdateContactInfo attaches contact channels discovered alongside the client.
func (c *Client) UpdateContactInfo(contact ContactInfo) {
	if contact.IsEmpty() {
		return
	}

	c.Contact = &contact
}

// UpdateRating attaches a provider rating to the client. Ratings live on a
// 0..5 scale; anything outside it is provider noise and is dropped.
func (c *Client) UpdateRating(rating float64) {
	if rating < 0 || rating > 5 {
		return
	}

	c.Rating = &rating
}

// MarkAsContacted records an outreach attempt.
func (c *Client) MarkAsContacted() {
	now := time.Now().UTC()
	c.LastContactedAt = &now
	c.Status = StatusContacted
}

// MarkAsConverted records a closed sale.
func (c *Client) MarkAsConverted() {
	c.Status = StatusConverted
}

// MarkAsNotInterested records a declined prospect.
func (c *Client) MarkAsNotInterested() {
	c.Status = StatusNotInterested
}

func (c *Client) computeH3() error {
	if c.Point == nil {
		c.H3Res5, c.H3Res6, c.H3Res7, c.H3Res8 = 0, 0, 0, 0

		return nil
	}

	latLng := h3.NewLatLng(c.Point.Lat, c.Point.Lng)
	for res := 5; res <= 8; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		switch res {
		case 5:
			c.H3Res5 = int64(cell)
		case 6:
			c.H3Res6 = int64(cell)
		case 7:
			c.H3Res7 = int64(cell)
		case 8:
			c.H3Res8 = int64(cell)
		}
	}

	return nil
}
