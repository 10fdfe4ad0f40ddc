package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/burakorkmez/debate-settled/internal/metrics"
	"github.com/burakorkmez/debate-settled/internal/models"
	"github.com/burakorkmez/debate-settled/internal/store"
)

// ListMessagesResponse is a page of one feed, newest first.
type ListMessagesResponse struct {
	Messages   []models.Message `json:"messages"`
	NextCursor string           `json:"next_cursor"`
	HasMore    bool             `json:"has_more"`
}

// PostMessageRequest is the message send request.
type PostMessageRequest struct {
	Text   string      `json:"text"`
	Sender string      `json:"sender"`
	Side   models.Side `json:"side"`
}

// PostMessageResponse is the message send response.
type PostMessageResponse struct {
	ID           string `json:"id"`
	CreationTime int64  `json:"creation_time"`
}

// ListMessages handles fetching a page of one feed.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	side, ok := models.ParseSide(r.URL.Query().Get("side"))
	if !ok {
		h.Error(w, http.StatusBadRequest, "side must be prisma or drizzle")
		return
	}

	cursor, err := store.ParseCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid cursor")
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > 100 {
		limit = 100
	}

	// Fetch one extra row to decide has_more
	start := time.Now()
	messages, err := h.db.ListMessages(r.Context(), side, cursor, limit+1)
	metrics.StoreLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	nextCursor := ""
	if hasMore && len(messages) > 0 {
		nextCursor = store.CursorFor(messages[len(messages)-1]).String()
	}

	h.JSON(w, http.StatusOK, ListMessagesResponse{
		Messages:   messages,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	})
}

// PostMessage handles persisting a new message.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		h.Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > models.MaxTextBytes {
		h.Error(w, http.StatusUnprocessableEntity, "text too long (max 500 bytes)")
		return
	}
	if !req.Side.Valid() {
		h.Error(w, http.StatusBadRequest, "side must be prisma or drizzle")
		return
	}

	msg := &models.Message{
		Text:      req.Text,
		Sender:    sanitizeSender(req.Sender),
		Side:      req.Side,
		CreatedAt: time.Now().UnixMilli(),
	}

	// Store assigns ID and creation time
	start := time.Now()
	err := h.db.InsertMessage(r.Context(), msg)
	metrics.StoreLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	// A missed increment self-heals on the next /supporters re-prime
	if err := h.counters.IncrementSupporterCount(r.Context(), msg.Side); err != nil {
		h.logger.Warn().Err(err).Str("side", string(msg.Side)).Msg("supporter counter increment failed")
	}

	metrics.MessagesPosted.WithLabelValues(string(msg.Side)).Inc()

	h.JSON(w, http.StatusCreated, PostMessageResponse{
		ID:           msg.ID,
		CreationTime: msg.CreationTime,
	})
}
