package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists audit events in PostgreSQL for durable retention and
// the recent-events admin endpoint. It implements Sink, so it composes with
// the file sink through MultiSink.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit table when it does not exist yet. Called once
// at startup; there is no migration tooling in this service.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS loan_audit_events (
	id           UUID PRIMARY KEY,
	created_at   TIMESTAMPTZ NOT NULL,
	mode         TEXT NOT NULL,
	stage        TEXT NOT NULL,
	code         TEXT NOT NULL,
	applicant_id TEXT NOT NULL,
	detail       TEXT NOT NULL,
	request_id   TEXT NOT NULL DEFAULT '',
	client       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS loan_audit_events_created_at_idx ON loan_audit_events (created_at DESC);`

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Append writes one event row.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	eventID := event.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	const q = `
INSERT INTO loan_audit_events (id, created_at, mode, stage, code, applicant_id, detail, request_id, client)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, q,
		eventID, event.Timestamp, event.Mode, event.Stage, event.Code,
		event.ApplicantID, event.Detail, event.RequestID, event.Client,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListRecent returns the newest events, most recent first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}

	const q = `
SELECT id, created_at, mode, stage, code, applicant_id, detail, request_id, client
FROM loan_audit_events
ORDER BY created_at DESC
LIMIT $1`

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Mode, &e.Stage, &e.Code,
			&e.ApplicantID, &e.Detail, &e.RequestID, &e.Client); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
