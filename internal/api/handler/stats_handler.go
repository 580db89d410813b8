package handler

import (
	"net/http"

	"github.com/canteenlab/jukebox/internal/hub"
	"github.com/canteenlab/jukebox/internal/service"
)

// StatsHandler serves a human-readable JSON snapshot of queue and
// broadcast state. Raw Prometheus metrics are available at /metrics via
// promhttp and are separate from this endpoint.
type StatsHandler struct {
	svc *service.QueueService
	hub *hub.Hub
}

func NewStatsHandler(svc *service.QueueService, h *hub.Hub) *StatsHandler {
	return &StatsHandler{svc: svc, hub: h}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.svc.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", "failed to read queue")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"queue_length":     len(tracks),
		"live_connections": h.hub.Len(),
	})
}
