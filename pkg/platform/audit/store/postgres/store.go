package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	id "foodsupply/pkg/domain"
	audit "foodsupply/pkg/platform/audit"
	txcontext "foodsupply/pkg/platform/tx"

	"github.com/google/uuid"
)

// Store implements audit.Store and audit.Lister on the audit_events table.
// Appends are idempotent on event id so a retried publish never duplicates.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const selectColumns = `
	SELECT id, category, timestamp, action, listing_id, party_id,
		   role, status, decision, reason, request_id, actor_id
	FROM audit_events
`

// Append inserts an event. Events without an id are assigned one.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return errors.New("audit event requires Action")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	// Always derive category from action when unset
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, action, listing_id, party_id,
			role, status, decision, reason, request_id, actor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		string(event.Category),
		event.Timestamp,
		event.Action,
		event.ListingID.String(),
		event.PartyID.String(),
		event.Role,
		event.Status,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByListing returns a listing's trail, oldest first.
func (s *Store) ListByListing(ctx context.Context, listingID id.ListingID) ([]audit.Event, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, selectColumns+`
		WHERE listing_id = $1
		ORDER BY timestamp ASC, id ASC
	`, listingID.String())
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			category  string
			listingID string
			partyID   string
			event     audit.Event
		)
		err := rows.Scan(
			&event.ID,
			&category,
			&event.Timestamp,
			&event.Action,
			&listingID,
			&partyID,
			&event.Role,
			&event.Status,
			&event.Decision,
			&event.Reason,
			&event.RequestID,
			&event.ActorID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.ListingID = id.ListingID(listingID)
		event.PartyID = id.PartyID(partyID)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
