package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// MarketDepth serves the aggregated order book for the configured
// collection. The error body is fixed: the dashboard matches on it.
func (h *Handlers) MarketDepth(w http.ResponseWriter, r *http.Request) {
	snap, err := h.depth.MarketDepth(r.Context())
	if err != nil {
		log.Error().Err(err).Str("collection", h.collectionID).Msg("market depth request failed")
		h.writeJSON(w, http.StatusInternalServerError,
			map[string]string{"error": "Failed to fetch market depth"})
		return
	}

	h.writeJSON(w, http.StatusOK, snap)
}
