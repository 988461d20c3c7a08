// Package audit keeps an operator-facing trail of dialogue action runs,
// including the raw backend diagnostics that are never shown to customers.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded action run.
type Entry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	SenderID   string    `json:"sender_id"`
	Outcome    string    `json:"outcome"`
	StatusCode int       `json:"status_code,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store writes entries to the action_audit_events table.
type Store struct {
	db *sql.DB
}

// NewStore creates an audit store. A nil db yields a store whose Record is a no-op.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts e, filling ID and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if s == nil || s.db == nil {
		return nil
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO action_audit_events (
			id, action, sender_id, outcome, status_code, detail, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Action,
		e.SenderID,
		e.Outcome,
		nullInt(e.StatusCode),
		nullString(e.Detail),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: record %s: %w", e.Action, err)
	}
	return nil
}

// Recent returns the latest entries for a sender, newest first.
func (s *Store) Recent(ctx context.Context, senderID string, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, sender_id, outcome, status_code, detail, created_at
		FROM action_audit_events
		WHERE sender_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, senderID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			status sql.NullInt64
			detail sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Action, &e.SenderID, &e.Outcome, &status, &detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		e.StatusCode = int(status.Int64)
		e.Detail = detail.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: rows: %w", err)
	}
	return entries, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullInt(value int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(value), Valid: value != 0}
}
