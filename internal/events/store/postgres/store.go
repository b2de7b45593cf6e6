// Package postgres persists verification events for integrator audit.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"avelements/internal/events"
)

const schema = `
CREATE TABLE IF NOT EXISTS av_events (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	form_id    TEXT NOT NULL,
	code       INTEGER NOT NULL DEFAULT 0,
	type       TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS av_events_form_idx ON av_events (form_id, created_at);
`

// Store writes events to the av_events table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the events table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create av_events: %w", err)
	}
	return nil
}

// Append inserts an event. Re-appending the same event id is a no-op.
func (s *Store) Append(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	requestID := ""
	if event.Payload.Meta != nil {
		requestID = event.Payload.Meta.RequestID
	}

	query := `
		INSERT INTO av_events (id, name, form_id, code, type, request_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.Name,
		event.Payload.Form,
		event.Payload.Code,
		event.Payload.Type,
		requestID,
		payload,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListByForm returns the events of one form, oldest first, optionally
// restricted to the given event names.
func (s *Store) ListByForm(ctx context.Context, formID string, names ...string) ([]events.Event, error) {
	query := `
		SELECT id, name, payload, created_at
		FROM av_events
		WHERE form_id = $1 AND (cardinality($2::text[]) = 0 OR name = ANY($2))
		ORDER BY created_at ASC
	`
	if names == nil {
		names = []string{}
	}
	rows, err := s.db.QueryContext(ctx, query, formID, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []events.Event
	for rows.Next() {
		var (
			event   events.Event
			payload []byte
		)
		if err := rows.Scan(&event.ID, &event.Name, &payload, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal(payload, &event.Payload); err != nil {
			return nil, fmt.Errorf("decode event %s: %w", event.ID, err)
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return out, nil
}

// DeleteBefore prunes events older than the cutoff and returns the number removed.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM av_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete events: %w", err)
	}
	return res.RowsAffected()
}
