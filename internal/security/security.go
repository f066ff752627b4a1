// Package security classifies requests as legitimate before a submission is
// accepted: user-agent allow-listing, required-header checks and an external
// VPN/proxy signal.
package security

import (
	"context"
	"log"
	"net/http"
	"regexp"
)

// allowedUserAgents are prefix patterns for the browser families a submission
// may come from.
var allowedUserAgents = []*regexp.Regexp{
	regexp.MustCompile(`^Mozilla/.*`),
	regexp.MustCompile(`^Chrome/.*`),
	regexp.MustCompile(`^Safari/.*`),
	regexp.MustCompile(`^Edge/.*`),
	regexp.MustCompile(`^Firefox/.*`),
}

var requiredHeaders = []string{"User-Agent", "Origin", "Referer"}

// Validator gates requests on headers and an IP intelligence lookup.
type Validator struct {
	vpn *VPNClient
}

// NewValidator creates a validator using the given VPN lookup client.
func NewValidator(vpn *VPNClient) *Validator {
	return &Validator{vpn: vpn}
}

// ValidateUserAgent reports whether the string matches a known browser family.
// Empty strings are always invalid.
func (v *Validator) ValidateUserAgent(ua string) bool {
	if ua == "" {
		return false
	}
	for _, pattern := range allowedUserAgents {
		if pattern.MatchString(ua) {
			return true
		}
	}
	return false
}

// ValidateHeaders requires user-agent, origin and referer to be present, then
// checks the user-agent against the allow-list. Returns the first failing
// reason.
func (v *Validator) ValidateHeaders(headers http.Header) (bool, string) {
	for _, h := range requiredHeaders {
		if headers.Get(h) == "" {
			return false, "Missing required header: " + h
		}
	}
	if !v.ValidateUserAgent(headers.Get("User-Agent")) {
		return false, "Invalid user agent"
	}
	return true, "Valid headers"
}

// CheckVPN reports whether the address looks like a VPN/proxy exit. A lookup
// failure is logged and resolved by the client's fail-open policy.
func (v *Validator) CheckVPN(ctx context.Context, ip string) bool {
	isVPN, err := v.vpn.CheckVPN(ctx, ip)
	if err != nil {
		log.Printf("vpn check error for %s: %v", ip, err)
	}
	return isVPN
}

// ValidateRequest runs the header checks, then the VPN check. The first
// failing reason wins.
func (v *Validator) ValidateRequest(ctx context.Context, headers http.Header, ip string) (bool, string) {
	if ok, reason := v.ValidateHeaders(headers); !ok {
		return false, reason
	}
	if v.CheckVPN(ctx, ip) {
		return false, "VPN usage detected"
	}
	return true, "Request validated successfully"
}
