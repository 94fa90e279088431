// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package prospect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jcodagnone/prospecta/spatial"
	"github.com/uber/h3-go/v4"
)

// ErrNotFound is returned when a client lookup by id matches nothing.
var ErrNotFound = errors.New("client not found")

// ClientRepository handles persistence of clients.
type ClientRepository interface {
	// CreateSchema creates the clients table
	CreateSchema() error

	// GetAll returns every stored client
	GetAll(ctx context.Context) ([]*Client, error)

	// GetByID returns a single client, or ErrNotFound
	GetByID(ctx context.Context, id string) (*Client, error)

	// GetByCity returns clients in a city/state, matched case-insensitively
	GetByCity(ctx context.Context, city, state string) ([]*Client, error)

	// GetByType returns clients with the given classification
	GetByType(ctx context.Context, t ClientType) ([]*Client, error)

	// GetByStatus returns clients in the given lifecycle state
	GetByStatus(ctx context.Context, s ClientStatus) ([]*Client, error)

	// GetByLocation returns clients within radiusKm of center
	GetByLocation(ctx context.Context, center *spatial.Point, radiusKm float64) ([]*Client, error)

	// ExistsByNameAndAddress reports whether a client with the same
	// (name, street, city), compared case-insensitively, is already stored
	ExistsByNameAndAddress(ctx context.Context, name, street, city string) (bool, error)

	// Add stores a single client
	Add(ctx context.Context, client *Client) error

	// AddMany stores a batch of clients in one transaction
	AddMany(ctx context.Context, clients []*Client) error

	// UpdateStatus applies a lifecycle transition to a stored client
	UpdateStatus(ctx context.Context, id string, status ClientStatus) error

	// CountByStatus returns the number of clients in the given state
	CountByStatus(ctx context.Context, status ClientStatus) (int, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlClientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a DuckDB-backed client repository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &sqlClientRepository{db: db}
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlClientRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlClientRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS clients (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			street VARCHAR NOT NULL,
			city VARCHAR NOT NULL,
			state VARCHAR NOT NULL,
			postal_code VARCHAR,
			country VARCHAR NOT NULL,
			type VARCHAR NOT NULL,
			point POINT_2D NOT NULL,
			phone VARCHAR,
			email VARCHAR,
			website VARCHAR,
			social_media VARCHAR,
			created_at TIMESTAMP NOT NULL,
			last_contacted_at TIMESTAMP,
			status VARCHAR NOT NULL,
			rating DOUBLE,
			place_id VARCHAR,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);
	`)

	return err
}

var baseSelect = `
	SELECT id, name, street, city, state, postal_code, country, type, point,
	       phone, email, website, social_media,
	       created_at, last_contacted_at, status, rating, place_id,
	       h3_res5, h3_res6, h3_res7, h3_res8
	FROM clients
`

func scanClient(scan func(dest ...any) error) (*Client, error) {
	client := &Client{Point: &spatial.Point{}}

	var (
		postalCode, phone, email, website, social, placeID sql.NullString
		typeName, statusName                               string
		lastContactedAt                                    sql.NullTime
		rating                                             sql.NullFloat64
		h3Res5, h3Res6, h3Res7, h3Res8                     sql.NullInt64
	)

	err := scan(
		&client.ID, &client.Name,
		&client.Address.Street, &client.Address.City, &client.Address.State,
		&postalCode, &client.Address.Country,
		&typeName, client.Point,
		&phone, &email, &website, &social,
		&client.CreatedAt, &lastContactedAt, &statusName, &rating, &placeID,
		&h3Res5, &h3Res6, &h3Res7, &h3Res8,
	)
	if err != nil {
		return nil, err
	}

	client.Address.PostalCode = postalCode.String
	client.PlaceID = placeID.String

	if client.Type, err = ParseClientType(typeName); err != nil {
		return nil, err
	}

	if client.Status, err = ParseClientStatus(statusName); err != nil {
		return nil, err
	}

	contact := ContactInfo{
		Phone:       phone.String,
		Email:       email.String,
		Website:     website.String,
		SocialMedia: social.String,
	}
	if !contact.IsEmpty() {
		client.Contact = &contact
	}

	if lastContactedAt.Valid {
		t := lastContactedAt.Time
		client.LastContactedAt = &t
	}

	if rating.Valid {
		v := rating.Float64
		client.Rating = &v
	}

	client.H3Res5 = h3Res5.Int64
	client.H3Res6 = h3Res6.Int64
	client.H3Res7 = h3Res7.Int64
	client.H3Res8 = h3Res8.Int64

	return client, nil
}

func (r *sqlClientRepository) list(ctx context.Context, query string, args []any) ([]*Client, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*Client

	for rows.Next() {
		client, err := scanClient(rows.Scan)
		if err != nil {
			return nil, err
		}

		clients = append(clients, client)
	}

	return clients, rows.Err()
}

func (r *sqlClientRepository) GetAll(ctx context.Context) ([]*Client, error) {
	return r.list(ctx, baseSelect+` ORDER BY created_at, name`, nil)
}

func (r *sqlClientRepository) GetByID(ctx context.Context, id string) (*Client, error) {
	row := r.db.QueryRowContext(ctx, baseSelect+` WHERE id = ?`, id)

	client, err := scanClient(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	return client, err
}

func (r *sqlClientRepository) GetByCity(ctx context.Context, city, state string) ([]*Client, error) {
	return r.list(
		ctx,
		baseSelect+` WHERE lower(city) = lower(?) AND upper(state) = upper(?) ORDER BY created_at, name`,
		[]any{city, state},
	)
}

func (r *sqlClientRepository) GetByType(ctx context.Context, t ClientType) ([]*Client, error) {
	return r.list(ctx, baseSelect+` WHERE type = ? ORDER BY created_at, name`, []any{t.String()})
}

func (r *sqlClientRepository) GetByStatus(ctx context.Context, s ClientStatus) ([]*Client, error) {
	return r.list(ctx, baseSelect+` WHERE status = ? ORDER BY created_at, name`, []any{s.String()})
}

// h3SearchResolutions maps a search radius to the H3 resolution used for the
// coarse filter, with the average hexagon edge length at that resolution.
var h3SearchResolutions = []struct {
	minRadiusKm float64
	resolution  int
	edgeKm      float64
}{
	{25, 5, 9.85},
	{10, 6, 3.72},
	{3, 7, 1.40},
	{0, 8, 0.53},
}

func (r *sqlClientRepository) GetByLocation(ctx context.Context, center *spatial.Point, radiusKm float64) ([]*Client, error) {
	if center == nil {
		return nil, errors.New("center can't be null")
	}

	resolution, edgeKm := 8, 0.53

	for _, candidate := range h3SearchResolutions {
		if radiusKm >= candidate.minRadiusKm {
			resolution, edgeKm = candidate.resolution, candidate.edgeKm

			break
		}
	}

	centerCell, err := h3.LatLngToCell(h3.NewLatLng(center.Lat, center.Lng), resolution)
	if err != nil {
		return nil, fmt.Errorf("converting center to h3 cell: %w", err)
	}

	k := int(math.Ceil(radiusKm / edgeKm))

	cells, err := h3.GridDisk(centerCell, k)
	if err != nil {
		return nil, fmt.Errorf("computing h3 grid disk: %w", err)
	}

	placeholders := make([]string, len(cells))
	args := make([]any, len(cells))

	for i, cell := range cells {
		placeholders[i] = "?"
		args[i] = int64(cell)
	}

	column := fmt.Sprintf("h3_res%d", resolution)
	query := baseSelect + fmt.Sprintf(" WHERE %s IN (%s)", column, strings.Join(placeholders, ", "))

	coarse, err := r.list(ctx, query, args)
	if err != nil {
		return nil, err
	}

	// The grid disk over-selects near the rim, refine with the exact distance.
	result := make([]*Client, 0, len(coarse))

	for _, client := range coarse {
		if client.Point != nil && center.HaversineDistance(client.Point) <= radiusKm*1000 {
			result = append(result, client)
		}
	}

	return result, nil
}

func (r *sqlClientRepository) ExistsByNameAndAddress(ctx context.Context, name, street, city string) (bool, error) {
	var count int

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM clients
		WHERE lower(name) = lower(?) AND lower(street) = lower(?) AND lower(city) = lower(?)
	`, name, street, city).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *sqlClientRepository) Add(ctx context.Context, client *Client) error {
	return r.AddMany(ctx, []*Client{client})
}

func (r *sqlClientRepository) AddMany(ctx context.Context, clients []*Client) error {
	if len(clients) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO clients(
			id,
			name,
			street,
			city,
			state,
			postal_code,
			country,
			type,
			point,
			phone,
			email,
			website,
			social_media,
			created_at,
			last_contacted_at,
			status,
			rating,
			place_id,
			h3_res5,
			h3_res6,
			h3_res7,
			h3_res8
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return err
	}
	defer stmt.Close()

	for _, c := range clients {
		if c.Point == nil {
			if rErr := tx.Rollback(); rErr != nil {
				return rErr
			}

			return errors.New("point can't be null")
		}

		if err = c.computeH3(); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				return rErr
			}

			return err
		}

		contact := ContactInfo{}
		if c.Contact != nil {
			contact = *c.Contact
		}

		_, err := stmt.ExecContext(ctx,
			c.ID,
			c.Name,
			c.Address.Street,
			c.Address.City,
			c.Address.State,
			nullIfEmpty(c.Address.PostalCode),
			c.Address.Country,
			c.Type.String(),
			c.Point.Lng,
			c.Point.Lat,
			nullIfEmpty(contact.Phone),
			nullIfEmpty(contact.Email),
			nullIfEmpty(contact.Website),
			nullIfEmpty(contact.SocialMedia),
			c.CreatedAt,
			c.LastContactedAt,
			c.Status.String(),
			c.Rating,
			nullIfEmpty(c.PlaceID),
			c.H3Res5,
			c.H3Res6,
			c.H3Res7,
			c.H3Res8,
		)
		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return err
		}
	}

	return tx.Commit()
}

func (r *sqlClientRepository) UpdateStatus(ctx context.Context, id string, status ClientStatus) error {
	client, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch status {
	case StatusContacted:
		client.MarkAsContacted()
	case StatusConverted:
		client.MarkAsConverted()
	case StatusNotInterested:
		client.MarkAsNotInterested()
	default:
		client.Status = status
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET status = ?, last_contacted_at = ?
		WHERE id = ?
	`, client.Status.String(), client.LastContactedAt, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *sqlClientRepository) CountByStatus(ctx context.Context, status ClientStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(
		ctx,
		"SELECT COUNT(*) FROM clients WHERE status = ?",
		status.String(),
	).Scan(&count)

	return count, err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}

	return s
}
