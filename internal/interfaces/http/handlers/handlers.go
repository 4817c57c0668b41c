package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/marketlens/nftdepth/internal/depth"
)

// DepthService produces market-depth snapshots on demand.
type DepthService interface {
	MarketDepth(ctx context.Context) (depth.Snapshot, error)
}

// Handlers manages all HTTP endpoint handlers
type Handlers struct {
	depth         DepthService
	collectionID  string
	streamRefresh time.Duration
	started       time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(svc DepthService, collectionID string, streamRefresh time.Duration) *Handlers {
	if streamRefresh == 0 {
		streamRefresh = 30 * time.Second
	}
	return &Handlers{
		depth:         svc,
		collectionID:  collectionID,
		streamRefresh: streamRefresh,
		started:       time.Now(),
	}
}

// writeJSON writes JSON response with proper error handling
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

// writeError writes standardized error response
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value("request_id").(string)

	errorResp := ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	}

	h.writeJSON(w, status, errorResp)
}

// NotFound handles 404 responses
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}
