package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidateUserAgent(t *testing.T) {
	v := NewValidator(NewVPNClient("", "", true, true))
	cases := []struct {
		ua   string
		want bool
	}{
		{"Mozilla/5.0 (X11; Linux x86_64)", true},
		{"Chrome/120.0.0.0", true},
		{"Firefox/121.0", true},
		{"Safari/605.1.15", true},
		{"Edge/120.0", true},
		{"", false},
		{"curl/8.4.0", false},
		{"python-requests/2.31", false},
		{"totally Mozilla/5.0", false},
	}
	for _, tc := range cases {
		if got := v.ValidateUserAgent(tc.ua); got != tc.want {
			t.Errorf("ValidateUserAgent(%q) = %v, want %v", tc.ua, got, tc.want)
		}
	}
}

func TestValidateHeaders(t *testing.T) {
	v := NewValidator(NewVPNClient("", "", true, true))

	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0")
	h.Set("Origin", "http://localhost:5173")
	h.Set("Referer", "http://localhost:5173/attendance")
	if ok, reason := v.ValidateHeaders(h); !ok {
		t.Fatalf("complete headers rejected: %s", reason)
	}

	missing := http.Header{}
	missing.Set("User-Agent", "Mozilla/5.0")
	missing.Set("Referer", "http://localhost:5173/attendance")
	ok, reason := v.ValidateHeaders(missing)
	if ok {
		t.Fatalf("headers without origin accepted")
	}
	if reason != "Missing required header: Origin" {
		t.Fatalf("unexpected reason %q", reason)
	}

	badUA := http.Header{}
	badUA.Set("User-Agent", "curl/8.4.0")
	badUA.Set("Origin", "http://localhost:5173")
	badUA.Set("Referer", "http://localhost:5173/attendance")
	if ok, reason := v.ValidateHeaders(badUA); ok || reason != "Invalid user agent" {
		t.Fatalf("bad user agent got (%v, %q)", ok, reason)
	}
}

func TestCheckVPNSignals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hosting": false, "proxy": true, "tor": false, "vpn": false}`))
	}))
	defer srv.Close()

	c := NewVPNClient(srv.URL, "", false, true)
	isVPN, err := c.CheckVPN(context.Background(), "203.0.113.9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isVPN {
		t.Fatalf("proxy signal not treated as VPN")
	}
}

func TestCheckVPNCleanAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hosting": false, "proxy": false, "tor": false, "vpn": false}`))
	}))
	defer srv.Close()

	c := NewVPNClient(srv.URL, "", false, true)
	isVPN, err := c.CheckVPN(context.Background(), "203.0.113.9")
	if err != nil || isVPN {
		t.Fatalf("clean address got (%v, %v)", isVPN, err)
	}
}

func TestCheckVPNFailOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	open := NewVPNClient(srv.URL, "", false, true)
	isVPN, err := open.CheckVPN(context.Background(), "203.0.113.9")
	if err == nil {
		t.Fatalf("expected lookup error")
	}
	if isVPN {
		t.Fatalf("fail-open client blocked on lookup failure")
	}

	closed := NewVPNClient(srv.URL, "", false, false)
	isVPN, err = closed.CheckVPN(context.Background(), "203.0.113.9")
	if err == nil {
		t.Fatalf("expected lookup error")
	}
	if !isVPN {
		t.Fatalf("fail-closed client passed on lookup failure")
	}
}

func TestCheckVPNSkip(t *testing.T) {
	c := NewVPNClient("http://unreachable.invalid", "", true, true)
	isVPN, err := c.CheckVPN(context.Background(), "203.0.113.9")
	if err != nil || isVPN {
		t.Fatalf("skip client got (%v, %v)", isVPN, err)
	}
}

func TestValidateRequestShortCircuits(t *testing.T) {
	// Lookup server that would flag the IP; header failure must win first.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"vpn": true}`))
	}))
	defer srv.Close()

	v := NewValidator(NewVPNClient(srv.URL, "", false, true))

	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0")
	ok, reason := v.ValidateRequest(context.Background(), h, "203.0.113.9")
	if ok || reason != "Missing required header: Origin" {
		t.Fatalf("header failure did not win: (%v, %q)", ok, reason)
	}

	h.Set("Origin", "http://localhost:5173")
	h.Set("Referer", "http://localhost:5173/attendance")
	ok, reason = v.ValidateRequest(context.Background(), h, "203.0.113.9")
	if ok || reason != "VPN usage detected" {
		t.Fatalf("vpn detection missing: (%v, %q)", ok, reason)
	}
}
