package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEvaluate(t *testing.T) {
	now := time.Now().UTC()
	rec := &Record{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(3 * time.Minute),
	}

	if got := Evaluate(nil, now); got != StatusNotFound {
		t.Fatalf("Evaluate(nil) = %v, want not_found", got)
	}
	if got := Evaluate(rec, now); got != StatusValid {
		t.Fatalf("fresh session = %v, want valid", got)
	}
	if got := Evaluate(rec, rec.ExpiresAt); got != StatusValid {
		t.Fatalf("at exact expiry = %v, want valid", got)
	}
	if got := Evaluate(rec, rec.ExpiresAt.Add(time.Nanosecond)); got != StatusExpired {
		t.Fatalf("past expiry = %v, want expired", got)
	}
}

// A session transitions valid -> expired exactly once and never back.
func TestEvaluateMonotonic(t *testing.T) {
	created := time.Now().UTC()
	rec := &Record{ID: uuid.NewString(), CreatedAt: created, ExpiresAt: created.Add(time.Minute)}

	expiredSeen := false
	for i := 0; i <= 120; i++ {
		at := created.Add(time.Duration(i) * time.Second)
		switch Evaluate(rec, at) {
		case StatusExpired:
			expiredSeen = true
		case StatusValid:
			if expiredSeen {
				t.Fatalf("session went expired -> valid at +%ds", i)
			}
		}
	}
	if !expiredSeen {
		t.Fatalf("session never expired")
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusValid:    "valid",
		StatusExpired:  "expired",
		StatusNotFound: "not_found",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestSessionIDUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id := uuid.NewString()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate session id after %d creations: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}
