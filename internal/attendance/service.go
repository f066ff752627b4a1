package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"qrattendance/internal/geo"
	"qrattendance/internal/queue"
	"qrattendance/internal/security"
	"qrattendance/internal/session"
	"qrattendance/internal/sheets"
)

// RejectCode identifies why a submission was refused. Rejections are normal
// outcomes, distinct from storage faults.
type RejectCode string

const (
	RejectInvalidSession   RejectCode = "invalid_session"
	RejectExpiredSession   RejectCode = "expired_session"
	RejectMalformedPayload RejectCode = "malformed_payload"
	RejectLocation         RejectCode = "rejected_location"
	RejectSecurity         RejectCode = "rejected_security"
)

// Rejection is a domain refusal carrying the failing check. Distance is set
// for location rejections.
type Rejection struct {
	Code     RejectCode
	Detail   string
	Distance *float64
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Detail)
}

// SessionStore is the slice of the session store the pipeline uses.
type SessionStore interface {
	Validate(ctx context.Context, id string) (session.Status, error)
	AttachSubmission(ctx context.Context, id string, attendance any) (bool, error)
}

// RecordInserter persists accepted submissions.
type RecordInserter interface {
	Insert(ctx context.Context, rec Record) (Record, error)
}

// Service runs the submission pipeline: session check, payload validation,
// optional gating, persistence, then best-effort mirroring.
type Service struct {
	sessions SessionStore
	repo     RecordInserter
	geo      *geo.Validator
	sec      *security.Validator
	q        queue.Queue

	geoGate      bool
	securityGate bool
}

// NewService wires the pipeline. geoVal/secVal may be nil when the matching
// gate is disabled; q may be nil to disable mirroring.
func NewService(sessions SessionStore, repo RecordInserter, geoVal *geo.Validator,
	secVal *security.Validator, q queue.Queue, geoGate, securityGate bool) *Service {
	return &Service{
		sessions:     sessions,
		repo:         repo,
		geo:          geoVal,
		sec:          secVal,
		q:            q,
		geoGate:      geoGate && geoVal != nil,
		securityGate: securityGate && secVal != nil,
	}
}

// Submit processes one attendance attempt. Domain refusals come back as a
// *Rejection; anything else is a storage or infrastructure fault. Steps run
// strictly in order and none is skipped.
func (s *Service) Submit(ctx context.Context, sub Submission, meta Meta) (Record, error) {
	// Step 1: session check. A malformed id can never match a row; reject it
	// before the lookup so it is never mistaken for a storage fault.
	if _, err := uuid.Parse(sub.SessionID); err != nil {
		return Record{}, &Rejection{Code: RejectInvalidSession, Detail: "Invalid session"}
	}
	status, err := s.sessions.Validate(ctx, sub.SessionID)
	if err != nil {
		return Record{}, fmt.Errorf("validate session: %w", err)
	}
	switch status {
	case session.StatusNotFound:
		return Record{}, &Rejection{Code: RejectInvalidSession, Detail: "Invalid session"}
	case session.StatusExpired:
		return Record{}, &Rejection{Code: RejectExpiredSession, Detail: "Session expired"}
	}

	// Step 2: payload validation.
	if err := ValidatePayload(sub); err != nil {
		return Record{}, &Rejection{Code: RejectMalformedPayload, Detail: err.Error()}
	}

	// Step 3: optional gating.
	if s.geoGate {
		if meta.Latitude == nil || meta.Longitude == nil {
			return Record{}, &Rejection{Code: RejectLocation, Detail: "Location required"}
		}
		ok, distance := s.geo.Validate(*meta.Latitude, *meta.Longitude)
		if !ok {
			return Record{}, &Rejection{
				Code:     RejectLocation,
				Detail:   fmt.Sprintf("You are %.2f meters away from campus", distance),
				Distance: &distance,
			}
		}
	}
	if s.securityGate {
		if ok, reason := s.sec.ValidateRequest(ctx, http.Header(meta.Headers), meta.ClientIP); !ok {
			return Record{}, &Rejection{Code: RejectSecurity, Detail: reason}
		}
	}

	// Step 4: persistence. Single atomic insert.
	rec, err := s.repo.Insert(ctx, Record{
		SessionID:   sub.SessionID,
		FullName:    sub.FullName,
		PhoneNumber: sub.PhoneNumber,
		Email:       sub.Email,
		Branch:      sub.Branch,
		Section:     sub.Section,
		RollNumber:  sub.RollNumber,
		DeviceInfo:  sub.DeviceInfo,
		SelfieData:  sub.SelfieData,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Record{}, fmt.Errorf("insert attendance: %w", err)
	}

	// Attach the submission to the session blob. Best effort; the row is
	// already committed.
	if ok, err := s.sessions.AttachSubmission(ctx, sub.SessionID, rec); err != nil || !ok {
		log.Printf("attach submission to session %s failed (ok=%v): %v", sub.SessionID, ok, err)
	}

	// Step 5: enqueue the spreadsheet mirror job. Failures are logged and
	// never surfaced to the submitter.
	s.enqueueMirror(ctx, rec)

	return rec, nil
}

func (s *Service) enqueueMirror(ctx context.Context, rec Record) {
	if s.q == nil {
		return
	}
	body, err := json.Marshal(sheets.MirrorRow{
		Timestamp:   rec.CreatedAt,
		RollNumber:  rec.RollNumber,
		FullName:    rec.FullName,
		Email:       rec.Email,
		Branch:      rec.Branch,
		Section:     rec.Section,
		PhoneNumber: rec.PhoneNumber,
		DeviceInfo:  rec.DeviceInfo,
	})
	if err != nil {
		log.Printf("encode mirror job failed: %v", err)
		return
	}
	if err := s.q.Publish(ctx, queue.Message{Type: queue.TypeMirror, Body: body}); err != nil {
		log.Printf("mirror enqueue failed for attendance %d: %v", rec.ID, err)
	}
}
