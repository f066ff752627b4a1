package session

import (
	"encoding/json"
	"time"
)

// Record is a stored attendance session. All timestamps are UTC; expiry is
// compared against time.Now().UTC() everywhere.
type Record struct {
	ID        string
	Data      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Payload is the structured blob stored in Record.Data and encoded into the QR
// URL. Attendance and AttendanceAt are filled in when a submission is attached.
type Payload struct {
	SessionID    string          `json:"session_id"`
	IssuedAt     time.Time       `json:"issued_at"`
	ExpiryTime   time.Time       `json:"expiry_time"`
	Attendance   json.RawMessage `json:"attendance,omitempty"`
	AttendanceAt *time.Time      `json:"attendance_at,omitempty"`
}

// Status is the outcome of a validity check. Not-found and expired are normal
// outcomes, not errors.
type Status int

const (
	StatusValid Status = iota
	StatusExpired
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusExpired:
		return "expired"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Evaluate classifies a record against the given instant.
func Evaluate(rec *Record, now time.Time) Status {
	if rec == nil {
		return StatusNotFound
	}
	if now.After(rec.ExpiresAt) {
		return StatusExpired
	}
	return StatusValid
}
