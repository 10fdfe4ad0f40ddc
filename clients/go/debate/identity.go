package debate

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// DefaultIPLookupURL is the public what-is-my-IP service queried once
// per session.
const DefaultIPLookupURL = "https://api.ipify.org?format=json"

// IPResolver resolves the caller's public IP via an external lookup
// service and caches the first successful answer for the session.
// Failures are returned to the caller rather than degrading to an empty
// identifier.
type IPResolver struct {
	URL        string
	HTTPClient *http.Client

	mu     sync.Mutex
	cached string
}

// NewIPResolver creates a resolver against the default lookup service.
func NewIPResolver() *IPResolver {
	return &IPResolver{
		URL:        DefaultIPLookupURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve returns the session's public IP, querying the lookup service
// on first use.
func (r *IPResolver) Resolve(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != "" {
		return r.cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ip lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip lookup failed: status %d", resp.StatusCode)
	}

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("ip lookup failed: %w", err)
	}
	if net.ParseIP(body.IP) == nil {
		return "", fmt.Errorf("ip lookup returned invalid address %q", body.IP)
	}

	r.cached = body.IP
	return r.cached, nil
}

// StaticResolver returns a fixed IP, for tests and local setups.
type StaticResolver string

// Resolve returns the fixed IP.
func (s StaticResolver) Resolve(ctx context.Context) (string, error) {
	return string(s), nil
}
