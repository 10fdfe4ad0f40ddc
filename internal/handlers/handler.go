package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/burakorkmez/debate-settled/internal/models"
	"github.com/burakorkmez/debate-settled/internal/quota"
	"github.com/burakorkmez/debate-settled/internal/store"
)

// QuotaChecker is the send quota consulted before a message may be
// persisted. The Redis-backed quota.Limiter implements it.
type QuotaChecker interface {
	Limit(ctx context.Context, identifier string) (quota.Decision, error)
}

// CounterStore keeps the running supporter counters. The Redis store
// implements it.
type CounterStore interface {
	Ping(ctx context.Context) error
	IncrementSupporterCount(ctx context.Context, side models.Side) error
	SupporterCount(ctx context.Context, side models.Side) (int64, bool, error)
	PrimeSupporterCount(ctx context.Context, side models.Side, count int64) error
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db       store.DataStore
	counters CounterStore
	quota    QuotaChecker
	logger   zerolog.Logger
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(db store.DataStore, counters CounterStore, quota QuotaChecker, logger zerolog.Logger) *Handler {
	return &Handler{db: db, counters: counters, quota: quota, logger: logger}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// sanitizeSender trims and limits a display name to 100 characters,
// removing control characters.
func sanitizeSender(name string) string {
	name = strings.TrimSpace(name)

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	if len(name) > 100 {
		name = name[:100]
	}

	return name
}
