package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{Client: db}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id uuid PRIMARY KEY,
    data text NOT NULL,
    created_at timestamptz NOT NULL,
    expires_at timestamptz NOT NULL
);

CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);

CREATE TABLE IF NOT EXISTS attendance (
    id bigserial PRIMARY KEY,
    session_id uuid NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
    full_name varchar(100) NOT NULL,
    phone_number varchar(15) NOT NULL,
    email varchar(255) NOT NULL,
    branch varchar(50) NOT NULL,
    section varchar(10) NOT NULL,
    roll_number varchar(20) NOT NULL,
    device_info varchar(500),
    selfie_data text NOT NULL,
    created_at timestamptz NOT NULL,
    verified boolean NOT NULL DEFAULT false,
    verification_time timestamptz,
    verified_by varchar(100)
);

CREATE INDEX IF NOT EXISTS attendance_session_id_idx ON attendance (session_id);
`

// Migrate bootstraps the sessions and attendance tables. Idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, schema)
	return err
}
