package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	audit "vouch/pkg/platform/audit"
)

// Store persists audit events in the audit_events table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit_events table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS audit_events (
			id UUID PRIMARY KEY,
			category TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			action TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			actor_id TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT '',
			attributes JSONB NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE INDEX IF NOT EXISTS audit_events_subject_idx ON audit_events (subject)`,
		`CREATE INDEX IF NOT EXISTS audit_events_timestamp_idx ON audit_events (timestamp DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate audit events: %w", err)
		}
	}
	return nil
}

// Append inserts an event. Re-delivery of the same ID is ignored.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID, err := uuid.Parse(event.ID)
	if err != nil {
		eventID = uuid.New()
	}
	attrs := event.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	attrBytes, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("marshal audit attributes: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, category, timestamp, action, subject, actor_id, request_id, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		eventID,
		string(event.Category),
		event.Timestamp,
		event.Action,
		event.Subject,
		event.ActorID,
		event.RequestID,
		attrBytes,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, category, timestamp, action, subject, actor_id, request_id, attributes
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e        audit.Event
			id       uuid.UUID
			category string
			attrs    []byte
		)
		if err := rows.Scan(&id, &category, &e.Timestamp, &e.Action, &e.Subject, &e.ActorID, &e.RequestID, &attrs); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ID = id.String()
		e.Category = audit.EventCategory(category)
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &e.Attributes); err != nil {
				return nil, fmt.Errorf("decode audit attributes: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
