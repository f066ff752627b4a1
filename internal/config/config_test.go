package config

import (
	"testing"
	"time"
)

func TestDurationEnv(t *testing.T) {
	t.Setenv("SESSION_TTL", "2m30s")
	if got := durationEnv("SESSION_TTL", time.Minute); got != 2*time.Minute+30*time.Second {
		t.Fatalf("durationEnv = %v", got)
	}
	t.Setenv("SESSION_TTL", "nonsense")
	if got := durationEnv("SESSION_TTL", time.Minute); got != time.Minute {
		t.Fatalf("invalid duration fallback = %v", got)
	}
}

func TestFloatEnv(t *testing.T) {
	t.Setenv("CAMPUS_LATITUDE", "40.7128")
	if got := floatEnv("CAMPUS_LATITUDE", 0); got != 40.7128 {
		t.Fatalf("floatEnv = %v", got)
	}
	t.Setenv("CAMPUS_LATITUDE", "")
	if got := floatEnv("CAMPUS_LATITUDE", 12.5); got != 12.5 {
		t.Fatalf("floatEnv fallback = %v", got)
	}
}

func TestListEnv(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://attendance.example.edu ,")
	got := listEnv("ALLOWED_ORIGINS", nil)
	if len(got) != 2 || got[0] != "http://localhost:5173" || got[1] != "https://attendance.example.edu" {
		t.Fatalf("listEnv = %v", got)
	}

	t.Setenv("ALLOWED_ORIGINS", "")
	fallback := []string{"http://localhost:5173"}
	got = listEnv("ALLOWED_ORIGINS", fallback)
	if len(got) != 1 || got[0] != fallback[0] {
		t.Fatalf("listEnv fallback = %v", got)
	}
}

func TestBoolEnv(t *testing.T) {
	t.Setenv("GEO_GATE", "true")
	if !boolEnv("GEO_GATE", false) {
		t.Fatalf("true not parsed")
	}
	t.Setenv("GEO_GATE", "0")
	if boolEnv("GEO_GATE", true) {
		t.Fatalf("0 not parsed as false")
	}
	t.Setenv("GEO_GATE", "maybe")
	if !boolEnv("GEO_GATE", true) {
		t.Fatalf("invalid bool did not fall back")
	}
}
