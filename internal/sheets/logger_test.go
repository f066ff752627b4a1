package sheets

import (
	"testing"
	"time"
)

func TestMirrorRowValues(t *testing.T) {
	row := MirrorRow{
		Timestamp:   time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC),
		RollNumber:  "21CS045",
		FullName:    "Asha Verma",
		Email:       "asha.verma@example.edu",
		Branch:      "CSE",
		Section:     "B",
		PhoneNumber: "9876543210",
		DeviceInfo:  "Android 14",
	}
	vals := row.values()
	if len(vals) != 8 {
		t.Fatalf("values length = %d, want 8 (A:H)", len(vals))
	}
	if vals[0] != "2025-11-03 09:30:00" {
		t.Fatalf("timestamp cell = %v", vals[0])
	}
	if vals[1] != "21CS045" || vals[2] != "Asha Verma" {
		t.Fatalf("roll/name order wrong: %v, %v", vals[1], vals[2])
	}
}

func TestParseRowPadsShortRows(t *testing.T) {
	row := parseRow([]interface{}{"2025-11-03 09:30:00", "21CS045", "Asha Verma"})
	if row.Timestamp != "2025-11-03 09:30:00" || row.RollNumber != "21CS045" {
		t.Fatalf("leading cells mismatched: %+v", row)
	}
	if row.Email != "" || row.DeviceInfo != "" {
		t.Fatalf("missing cells not empty: %+v", row)
	}
}

func TestParseRowIgnoresNonStrings(t *testing.T) {
	row := parseRow([]interface{}{nil, 42, "Asha Verma"})
	if row.Timestamp != "" || row.RollNumber != "" || row.FullName != "Asha Verma" {
		t.Fatalf("unexpected parse: %+v", row)
	}
}
