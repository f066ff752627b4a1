package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Repository persists attendance rows in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new attendance row in a single statement. A failure leaves
// no partial row.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance
			(session_id, full_name, phone_number, email, branch, section,
			 roll_number, device_info, selfie_data, created_at, verified)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,false)
		RETURNING id
	`, rec.SessionID, rec.FullName, rec.PhoneNumber, rec.Email, rec.Branch,
		rec.Section, rec.RollNumber, rec.DeviceInfo, rec.SelfieData, rec.CreatedAt)
	if err := row.Scan(&rec.ID); err != nil {
		return Record{}, err
	}
	rec.Verified = false
	return rec, nil
}

// Get returns a single row by id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id int64) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, session_id, full_name, phone_number, email, branch, section,
		       roll_number, device_info, created_at, verified, verification_time, verified_by
		FROM attendance WHERE id = $1
	`, id)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.FullName, &rec.PhoneNumber,
		&rec.Email, &rec.Branch, &rec.Section, &rec.RollNumber, &rec.DeviceInfo,
		&rec.CreatedAt, &rec.Verified, &rec.VerificationTime, &rec.VerifiedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// List returns rows newest first. The selfie blob is omitted.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, full_name, phone_number, email, branch, section,
		       roll_number, device_info, created_at, verified, verification_time, verified_by
		FROM attendance
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.FullName, &rec.PhoneNumber,
			&rec.Email, &rec.Branch, &rec.Section, &rec.RollNumber, &rec.DeviceInfo,
			&rec.CreatedAt, &rec.Verified, &rec.VerificationTime, &rec.VerifiedBy); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Verify marks a row as reviewed. Returns false when no row matched.
func (r *Repository) Verify(ctx context.Context, id int64, verifiedBy string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance
		SET verified = true, verification_time = $2, verified_by = $3
		WHERE id = $1
	`, id, time.Now().UTC(), verifiedBy)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
