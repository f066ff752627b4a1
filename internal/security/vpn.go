package security

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// VPNClient calls an external IP intelligence service (ipapi.co response
// format). Skip short-circuits the lookup for dev environments.
type VPNClient struct {
	BaseURL  string
	APIKey   string
	Skip     bool
	FailOpen bool
	HTTP     *http.Client
}

// NewVPNClient creates a client with a short timeout.
func NewVPNClient(baseURL, apiKey string, skip, failOpen bool) *VPNClient {
	return &VPNClient{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Skip:     skip,
		FailOpen: failOpen,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
	}
}

// CheckVPN reports whether the address shows a hosting/proxy/tor/vpn signal.
// Lookup failures fail open when configured: the error is returned alongside
// a "not blocked" verdict so callers can log it without rejecting the request.
func (c *VPNClient) CheckVPN(ctx context.Context, ipAddress string) (bool, error) {
	if c.Skip {
		return false, nil
	}

	url := fmt.Sprintf("%s/%s/json/", c.BaseURL, ipAddress)
	if c.APIKey != "" {
		url += "?key=" + c.APIKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.failVerdict(err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return c.failVerdict(fmt.Errorf("vpn lookup request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.failVerdict(fmt.Errorf("vpn lookup error %s", resp.Status))
	}

	var out struct {
		Hosting bool `json:"hosting"`
		Proxy   bool `json:"proxy"`
		Tor     bool `json:"tor"`
		VPN     bool `json:"vpn"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return c.failVerdict(fmt.Errorf("decode vpn lookup response: %w", err))
	}

	return out.Hosting || out.Proxy || out.Tor || out.VPN, nil
}

// failVerdict applies the fail-open policy to a lookup failure.
func (c *VPNClient) failVerdict(err error) (bool, error) {
	if c.FailOpen {
		return false, err
	}
	return true, err
}
