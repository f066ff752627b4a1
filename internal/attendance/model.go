package attendance

import "time"

// Submission is the payload a student sends after scanning a QR code.
type Submission struct {
	SessionID   string `json:"session_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Branch      string `json:"branch"`
	Section     string `json:"section"`
	RollNumber  string `json:"roll_number"`
	DeviceInfo  string `json:"device_info"`
	SelfieData  string `json:"selfie_data"`
}

// Record is a persisted attendance row. Verification fields are written later
// by the admin review endpoints, never at submission time.
type Record struct {
	ID               int64      `json:"id"`
	SessionID        string     `json:"session_id"`
	FullName         string     `json:"full_name"`
	PhoneNumber      string     `json:"phone_number"`
	Email            string     `json:"email"`
	Branch           string     `json:"branch"`
	Section          string     `json:"section"`
	RollNumber       string     `json:"roll_number"`
	DeviceInfo       string     `json:"device_info"`
	SelfieData       string     `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	Verified         bool       `json:"verified"`
	VerificationTime *time.Time `json:"verification_time,omitempty"`
	VerifiedBy       *string    `json:"verified_by,omitempty"`
}

// Meta carries request context used by the optional gates.
type Meta struct {
	ClientIP  string
	Headers   map[string][]string
	Latitude  *float64
	Longitude *float64
}
