package handlers

import (
	"net/http"
	"time"
)

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Collection: h.collectionID,
		Timestamp:  time.Now().UTC(),
		UptimeSecs: time.Since(h.started).Seconds(),
	})
}
