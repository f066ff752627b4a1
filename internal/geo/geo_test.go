package geo

import "testing"

const (
	campusLat = 40.7128
	campusLng = -74.0060
)

func TestDistanceAtCampusIsZero(t *testing.T) {
	v := NewValidator(campusLat, campusLng, 100)
	if d := v.Distance(campusLat, campusLng); d != 0 {
		t.Fatalf("distance at campus = %v, want 0", d)
	}
	valid, d := v.Validate(campusLat, campusLng)
	if !valid || d != 0 {
		t.Fatalf("Validate at campus = (%v, %v), want (true, 0)", valid, d)
	}
}

func TestDistanceAwayFromCampus(t *testing.T) {
	v := NewValidator(campusLat, campusLng, 100)
	valid, d := v.Validate(40.7228, -74.0160)
	if valid {
		t.Fatalf("point ~1.4km away reported within 100m radius")
	}
	if d < 1300 || d > 1500 {
		t.Fatalf("distance = %v, want roughly 1400m", d)
	}
}

func TestBoundaryDistanceIsWithinRadius(t *testing.T) {
	probe := NewValidator(campusLat, campusLng, 0)
	d := probe.Distance(40.7130, -74.0062)
	if d <= 0 {
		t.Fatalf("expected positive distance, got %v", d)
	}

	// A radius exactly equal to the distance counts as within.
	exact := NewValidator(campusLat, campusLng, d)
	if valid, _ := exact.Validate(40.7130, -74.0062); !valid {
		t.Fatalf("distance equal to radius should be within")
	}

	// Shrinking the radius by any amount flips the verdict.
	tight := NewValidator(campusLat, campusLng, d-0.001)
	if valid, _ := tight.Validate(40.7130, -74.0062); valid {
		t.Fatalf("distance beyond radius should be outside")
	}
}

func TestDistanceIsSymmetricInSign(t *testing.T) {
	v := NewValidator(10, 20, 50)
	d1 := v.Distance(10.001, 20.001)
	v2 := NewValidator(10.001, 20.001, 50)
	d2 := v2.Distance(10, 20)
	if diff := d1 - d2; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("distance not symmetric: %v vs %v", d1, d2)
	}
}
