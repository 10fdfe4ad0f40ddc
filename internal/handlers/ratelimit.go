package handlers

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/burakorkmez/debate-settled/internal/metrics"
)

// quotaNamespace prefixes quota identifiers so they never collide with
// other Redis key spaces.
const quotaNamespace = "ratelimit:"

// CheckRateLimitRequest is the send quota check request.
type CheckRateLimitRequest struct {
	ClientIP string `json:"client_ip"`
}

// CheckRateLimitResponse reports the window state for one identifier.
type CheckRateLimitResponse struct {
	IsAllowed       bool  `json:"is_allowed"`
	CurrentRequests int   `json:"current_requests"`
	MaxRequests     int   `json:"max_requests"`
	ResetMs         int64 `json:"reset_ms"`
}

// CheckRateLimit consumes one send quota slot for a client if capacity
// remains, and reports the window state either way. The decision is
// authoritative: callers must treat a rejection as final for that call.
func (h *Handler) CheckRateLimit(w http.ResponseWriter, r *http.Request) {
	var req CheckRateLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Refuse to key the quota on an empty or malformed identifier; a
	// client whose IP lookup failed must resolve it before sending.
	if net.ParseIP(req.ClientIP) == nil {
		h.Error(w, http.StatusBadRequest, "client_ip must be a valid IP address")
		return
	}

	decision, err := h.quota.Limit(r.Context(), quotaNamespace+req.ClientIP)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "quota check failed")
		return
	}

	outcome := "allowed"
	if !decision.Allowed {
		outcome = "rejected"
	}
	metrics.QuotaChecks.WithLabelValues(outcome).Inc()

	h.JSON(w, http.StatusOK, CheckRateLimitResponse{
		IsAllowed:       decision.Allowed,
		CurrentRequests: decision.Used,
		MaxRequests:     decision.Capacity,
		ResetMs:         decision.Reset.Milliseconds(),
	})
}
