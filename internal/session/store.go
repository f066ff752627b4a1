package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store owns session rows in Postgres. It is the single source of truth for
// session existence and validity; nothing caches session state across requests.
type Store struct {
	db *sql.DB
}

// NewStore creates a store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create sweeps expired rows, then inserts a fresh session valid for ttl.
// The sweep is amortized cleanup and is not part of the insert transaction.
func (s *Store) Create(ctx context.Context, ttl time.Duration) (Record, error) {
	if err := s.DeleteExpired(ctx); err != nil {
		return Record{}, fmt.Errorf("sweep expired sessions: %w", err)
	}

	now := time.Now().UTC()
	rec := Record{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	data, err := json.Marshal(Payload{
		SessionID:  rec.ID,
		IssuedAt:   rec.CreatedAt,
		ExpiryTime: rec.ExpiresAt,
	})
	if err != nil {
		return Record{}, fmt.Errorf("encode session payload: %w", err)
	}
	rec.Data = string(data)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, data, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, rec.ID, rec.Data, rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		return Record{}, fmt.Errorf("insert session: %w", err)
	}
	return rec, nil
}

// Get returns the session or nil when no row exists.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, data, created_at, expires_at
		FROM sessions WHERE session_id = $1
	`, id)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.Data, &rec.CreatedAt, &rec.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Validate reports whether the session is usable right now. An expired row is
// deleted as a side effect of the check.
func (s *Store) Validate(ctx context.Context, id string) (Status, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return StatusNotFound, err
	}
	status := Evaluate(rec, time.Now().UTC())
	if status == StatusExpired {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, id); err != nil {
			return StatusExpired, err
		}
	}
	return status, nil
}

// DeleteExpired removes every session whose expiry has passed.
func (s *Store) DeleteExpired(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, time.Now().UTC())
	return err
}

// AttachSubmission merges the attendance payload and a timestamp into the
// stored session blob. Returns false without an error when the session does
// not exist; a failed write rolls back.
func (s *Store) AttachSubmission(ctx context.Context, id string, attendance any) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT data FROM sessions WHERE session_id = $1 FOR UPDATE`, id)
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	var payload Payload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return false, fmt.Errorf("decode session payload: %w", err)
	}
	encoded, err := json.Marshal(attendance)
	if err != nil {
		return false, fmt.Errorf("encode attendance payload: %w", err)
	}
	now := time.Now().UTC()
	payload.Attendance = encoded
	payload.AttendanceAt = &now

	merged, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("encode session payload: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET data = $2 WHERE session_id = $1`, id, string(merged)); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
