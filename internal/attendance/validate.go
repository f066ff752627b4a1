package attendance

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// Column widths mirror the attendance table.
const (
	maxFullName   = 100
	maxPhone      = 15
	maxEmail      = 255
	maxBranch     = 50
	maxSection    = 10
	maxRollNumber = 20
	maxDeviceInfo = 500
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidatePayload runs the structural checks on every required field. The
// returned error names the first failing field.
func ValidatePayload(sub Submission) error {
	fields := []struct {
		name, value string
		max         int
	}{
		{"full_name", sub.FullName, maxFullName},
		{"phone_number", sub.PhoneNumber, maxPhone},
		{"email", sub.Email, maxEmail},
		{"branch", sub.Branch, maxBranch},
		{"section", sub.Section, maxSection},
		{"roll_number", sub.RollNumber, maxRollNumber},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is required", f.name)
		}
		if len(f.value) > f.max {
			return fmt.Errorf("%s exceeds %d characters", f.name, f.max)
		}
	}
	if len(sub.DeviceInfo) > maxDeviceInfo {
		return fmt.Errorf("device_info exceeds %d characters", maxDeviceInfo)
	}
	if !emailPattern.MatchString(sub.Email) {
		return fmt.Errorf("email is not a valid address")
	}
	return ValidateSelfieData(sub.SelfieData)
}

// ValidateSelfieData requires a base64 data URL carrying image data, e.g.
// "data:image/jpeg;base64,<payload>".
func ValidateSelfieData(data string) error {
	if !strings.HasPrefix(data, "data:image") {
		return fmt.Errorf("selfie_data must be a base64 encoded image")
	}
	idx := strings.Index(data, ",")
	if idx < 0 {
		return fmt.Errorf("selfie_data must be a base64 encoded image")
	}
	if _, err := base64.StdEncoding.DecodeString(data[idx+1:]); err != nil {
		return fmt.Errorf("selfie_data contains invalid base64 data")
	}
	return nil
}
