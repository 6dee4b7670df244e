package listing

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
)

const uniqueViolation = "23505"

// PostgresStore persists listings in the listings table. Calls made inside a
// transaction opened by RunInTx join it through the context.
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

func (s *PostgresStore) Create(ctx context.Context, listing *models.Listing) error {
	products, err := json.Marshal(listing.Products)
	if err != nil {
		return fmt.Errorf("marshal listing products: %w", err)
	}
	query := `
		INSERT INTO listings (id, status, supplier_id, owner_id, owner_role, products, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $8)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		listing.ID.String(),
		string(listing.Status),
		listing.SupplierID.String(),
		listing.OwnerID.String(),
		string(listing.OwnerRole),
		products,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("listing %s: %w", listing.ID, sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert listing: %w", err)
	}
	listing.Version = 1
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	query := `
		SELECT id, status, supplier_id, owner_id, owner_role, products, version, created_at, updated_at
		FROM listings WHERE id = $1
	`
	var (
		row      models.Listing
		rawID    string
		status   string
		supplier string
		owner    string
		role     string
		products []byte
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, listingID.String()).Scan(
		&rawID, &status, &supplier, &owner, &role, &products, &row.Version, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("listing %s: %w", listingID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	row.ID = id.ListingID(rawID)
	row.SupplierID = id.PartyID(supplier)
	row.OwnerID = id.PartyID(owner)
	row.OwnerRole = models.Role(role)
	if row.Status, err = models.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("listing %s has corrupt status %q: %w", listingID, status, err)
	}
	if err := json.Unmarshal(products, &row.Products); err != nil {
		return nil, fmt.Errorf("unmarshal listing products: %w", err)
	}
	return &row, nil
}

// Update writes owner and status only; identity, supplier and products are
// immutable once inserted.
func (s *PostgresStore) Update(ctx context.Context, listing *models.Listing) error {
	query := `
		UPDATE listings
		SET status = $2, owner_id = $3, owner_role = $4, updated_at = $5, version = version + 1
		WHERE id = $1 AND version = $6
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		listing.ID.String(),
		string(listing.Status),
		listing.OwnerID.String(),
		string(listing.OwnerRole),
		listing.UpdatedAt,
		listing.Version,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update listing rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		err := s.execer(ctx).QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM listings WHERE id = $1)`, listing.ID.String()).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check listing exists: %w", err)
		}
		if !exists {
			return fmt.Errorf("listing %s: %w", listing.ID, sentinel.ErrNotFound)
		}
		return fmt.Errorf("listing %s version %d: %w", listing.ID, listing.Version, sentinel.ErrConflict)
	}
	listing.Version++
	return nil
}
