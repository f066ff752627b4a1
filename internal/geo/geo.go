// Package geo decides whether a submitted coordinate lies within the allowed
// radius of the campus. Pure math, no I/O.
package geo

import "math"

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// Validator holds the campus coordinate (pre-converted to radians) and the
// allowed radius in meters.
type Validator struct {
	campusLat float64
	campusLng float64
	radiusM   float64
}

// NewValidator builds a validator for the given campus coordinate and radius.
func NewValidator(campusLat, campusLng, radiusM float64) *Validator {
	return &Validator{
		campusLat: campusLat * math.Pi / 180,
		campusLng: campusLng * math.Pi / 180,
		radiusM:   radiusM,
	}
}

// Distance returns the great-circle distance in meters between the campus and
// the given coordinate, using the haversine formula.
func (v *Validator) Distance(lat, lng float64) float64 {
	latRad := lat * math.Pi / 180
	lngRad := lng * math.Pi / 180

	dLat := latRad - v.campusLat
	dLng := lngRad - v.campusLng

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(v.campusLat)*math.Cos(latRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// Validate reports whether the coordinate is within the allowed radius and the
// computed distance. A distance exactly equal to the radius counts as within.
func (v *Validator) Validate(lat, lng float64) (bool, float64) {
	d := v.Distance(lat, lng)
	return d <= v.radiusM, d
}
