package handlers

import (
	"net/http"
	"time"

	"github.com/burakorkmez/debate-settled/internal/metrics"
	"github.com/burakorkmez/debate-settled/internal/models"
)

// SupportersResponse holds the total confirmed message count per feed.
type SupportersResponse struct {
	Prisma  int64 `json:"prisma"`
	Drizzle int64 `json:"drizzle"`
}

// Supporters returns the running message counts for both feeds. Counters
// that have never been primed (fresh Redis) are seeded from a durable
// store scan once, then incremented on every send.
func (h *Handler) Supporters(w http.ResponseWriter, r *http.Request) {
	counts := make(map[models.Side]int64, len(models.Sides))

	for _, side := range models.Sides {
		count, found, err := h.counters.SupporterCount(r.Context(), side)
		if err == nil && found {
			counts[side] = count
			continue
		}

		// Fallback: scan the durable store and re-prime the counter
		start := time.Now()
		count, err = h.db.CountMessages(r.Context(), side)
		metrics.StoreLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			h.Error(w, http.StatusInternalServerError, "failed to count messages")
			return
		}
		counts[side] = count

		if err := h.counters.PrimeSupporterCount(r.Context(), side, count); err != nil {
			h.logger.Warn().Err(err).Str("side", string(side)).Msg("supporter counter prime failed")
		}
	}

	h.JSON(w, http.StatusOK, SupportersResponse{
		Prisma:  counts[models.SidePrisma],
		Drizzle: counts[models.SideDrizzle],
	})
}
