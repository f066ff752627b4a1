// Package qr issues attendance sessions and renders them as scannable codes.
package qr

import (
	"context"
	"fmt"
	"net/url"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"qrattendance/internal/session"
)

const imageSize = 256

// Issuer creates a session and encodes its form URL as a PNG QR code. It
// keeps no state about previously issued sessions; everything the caller
// needs is in the return values.
type Issuer struct {
	sessions    *session.Store
	formBaseURL string
	ttl         time.Duration
}

// NewIssuer creates an issuer. ttl defaults to 3 minutes when not positive.
func NewIssuer(sessions *session.Store, formBaseURL string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 3 * time.Minute
	}
	return &Issuer{sessions: sessions, formBaseURL: formBaseURL, ttl: ttl}
}

// Issued is the result of one issuance.
type Issued struct {
	SessionID string
	ExpiresAt time.Time
	PNG       []byte
}

// Issue durably records a new session, then renders the attendance form URL
// (session id and expiry as query parameters) as a PNG. A storage failure
// aborts issuance; there are no retries.
func (i *Issuer) Issue(ctx context.Context) (Issued, error) {
	rec, err := i.sessions.Create(ctx, i.ttl)
	if err != nil {
		return Issued{}, fmt.Errorf("create session: %w", err)
	}

	target := FormURL(i.formBaseURL, rec.ID, rec.ExpiresAt)
	png, err := qrcode.Encode(target, qrcode.Medium, imageSize)
	if err != nil {
		return Issued{}, fmt.Errorf("render qr code: %w", err)
	}

	return Issued{SessionID: rec.ID, ExpiresAt: rec.ExpiresAt, PNG: png}, nil
}

// FormURL builds the attendance form URL with percent-encoded sessionId and
// expiryTime (RFC 3339, UTC) query parameters.
func FormURL(base, sessionID string, expiresAt time.Time) string {
	q := url.Values{}
	q.Set("sessionId", sessionID)
	q.Set("expiryTime", expiresAt.UTC().Format(time.RFC3339))
	return base + "/attendance?" + q.Encode()
}
