package party

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"foodsupply/internal/supply/models"
	id "foodsupply/pkg/domain"
	"foodsupply/pkg/platform/sentinel"
	txcontext "foodsupply/pkg/platform/tx"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// PostgresStore persists every role in the parties table. Columns that do
// not apply to a role keep their defaults.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// partyRow is the flattened column set shared by all roles.
type partyRow struct {
	Role               string
	ID                 string
	CountryID          string
	OrgID              string
	Location           string
	ExemptedOrgIDs     []string
	ExemptedProductIDs []string
	Products           []byte
	ReceivedListings   []string
	Version            int64
}

func toRow(p models.Party) (partyRow, error) {
	row := partyRow{
		Role:               string(p.Role()),
		ID:                 p.PartyID().String(),
		ExemptedOrgIDs:     []string{},
		ExemptedProductIDs: []string{},
		Products:           []byte("[]"),
		ReceivedListings:   []string{},
		Version:            p.PartyVersion(),
	}
	switch v := p.(type) {
	case *models.Supplier:
		row.CountryID = v.CountryID
		row.OrgID = v.OrgID
	case *models.Importer:
	case *models.Retailer:
		products, err := json.Marshal(v.Products)
		if err != nil {
			return partyRow{}, fmt.Errorf("marshal retailer products: %w", err)
		}
		row.Products = products
		for _, l := range v.ReceivedListings {
			row.ReceivedListings = append(row.ReceivedListings, l.String())
		}
	case *models.Regulator:
		row.Location = v.Location
		row.ExemptedOrgIDs = append(row.ExemptedOrgIDs, v.ExemptedOrgIDs...)
		row.ExemptedProductIDs = append(row.ExemptedProductIDs, v.ExemptedProductIDs...)
	}
	return row, nil
}

func fromRow(row partyRow) (models.Party, error) {
	record := models.PartyRecord{ID: id.PartyID(row.ID), Version: row.Version}
	switch models.Role(row.Role) {
	case models.RoleSupplier:
		return &models.Supplier{PartyRecord: record, CountryID: row.CountryID, OrgID: row.OrgID}, nil
	case models.RoleImporter:
		return &models.Importer{PartyRecord: record}, nil
	case models.RoleRetailer:
		r := &models.Retailer{PartyRecord: record}
		if len(row.Products) > 0 {
			if err := json.Unmarshal(row.Products, &r.Products); err != nil {
				return nil, fmt.Errorf("unmarshal retailer products: %w", err)
			}
		}
		for _, l := range row.ReceivedListings {
			r.ReceivedListings = append(r.ReceivedListings, id.ListingID(l))
		}
		return r, nil
	case models.RoleRegulator:
		return &models.Regulator{
			PartyRecord:        record,
			Location:           row.Location,
			ExemptedOrgIDs:     row.ExemptedOrgIDs,
			ExemptedProductIDs: row.ExemptedProductIDs,
		}, nil
	}
	return nil, fmt.Errorf("unknown party role %q", row.Role)
}

func (s *PostgresStore) Create(ctx context.Context, p models.Party) error {
	row, err := toRow(p)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO parties (role, id, country_id, org_id, location, exempted_org_ids,
			exempted_product_ids, products, received_listings, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		row.Role, row.ID, row.CountryID, row.OrgID, row.Location,
		pq.Array(row.ExemptedOrgIDs), pq.Array(row.ExemptedProductIDs),
		row.Products, pq.Array(row.ReceivedListings),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%s %s: %w", row.Role, row.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert party: %w", err)
	}
	p.SetPartyVersion(1)
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, role models.Role, partyID id.PartyID) (models.Party, error) {
	query := `
		SELECT role, id, country_id, org_id, location, exempted_org_ids,
			exempted_product_ids, products, received_listings, version
		FROM parties WHERE role = $1 AND id = $2
	`
	var row partyRow
	err := s.execer(ctx).QueryRowContext(ctx, query, string(role), partyID.String()).Scan(
		&row.Role, &row.ID, &row.CountryID, &row.OrgID, &row.Location,
		pq.Array(&row.ExemptedOrgIDs), pq.Array(&row.ExemptedProductIDs),
		&row.Products, pq.Array(&row.ReceivedListings), &row.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", role, partyID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find party: %w", err)
	}
	return fromRow(row)
}

func (s *PostgresStore) Exists(ctx context.Context, role models.Role, partyID id.PartyID) (bool, error) {
	var exists bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM parties WHERE role = $1 AND id = $2)`,
		string(role), partyID.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check party exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Update(ctx context.Context, p models.Party) error {
	row, err := toRow(p)
	if err != nil {
		return err
	}
	query := `
		UPDATE parties
		SET country_id = $3, org_id = $4, location = $5, exempted_org_ids = $6,
			exempted_product_ids = $7, products = $8, received_listings = $9,
			version = version + 1
		WHERE role = $1 AND id = $2 AND version = $10
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		row.Role, row.ID, row.CountryID, row.OrgID, row.Location,
		pq.Array(row.ExemptedOrgIDs), pq.Array(row.ExemptedProductIDs),
		row.Products, pq.Array(row.ReceivedListings), row.Version,
	)
	if err != nil {
		return fmt.Errorf("update party: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update party rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := s.Exists(ctx, p.Role(), p.PartyID())
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%s %s: %w", row.Role, row.ID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("%s %s version %d: %w", row.Role, row.ID, row.Version, sentinel.ErrConflict)
	}
	p.SetPartyVersion(p.PartyVersion() + 1)
	return nil
}
