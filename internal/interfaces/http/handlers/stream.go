package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
	},
}

// DepthStream pushes depth snapshots over a WebSocket: one on connect,
// then one per refresh interval. Snapshots come through the same
// cache-backed service as the REST endpoint, so stream clients see the
// same 120s-TTL data, not a faster feed.
func (h *Handlers) DepthStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("depth stream upgrade failed")
		return
	}
	defer conn.Close()

	ctx := r.Context()

	// Drain client frames so close handshakes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.pushSnapshot(conn) {
		return
	}

	ticker := time.NewTicker(h.streamRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if !h.pushSnapshot(conn) {
				return
			}
		}
	}
}

func (h *Handlers) pushSnapshot(conn *websocket.Conn) bool {
	ctx, cancel := context.WithTimeout(context.Background(), h.streamRefresh)
	defer cancel()

	snap, err := h.depth.MarketDepth(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("depth stream snapshot failed")
		// Keep the connection; the next tick may succeed.
		return true
	}

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(snap); err != nil {
		log.Debug().Err(err).Msg("depth stream write failed")
		return false
	}
	return true
}
