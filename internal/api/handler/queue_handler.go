package handler

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/canteenlab/jukebox/internal/api/middleware"
	"github.com/canteenlab/jukebox/internal/domain"
	"github.com/canteenlab/jukebox/internal/service"
)

// QueueHandler handles the song-queue HTTP endpoints: submit, list,
// delete, playback advance and search.
type QueueHandler struct {
	svc    *service.QueueService
	logger *zap.Logger
}

func NewQueueHandler(svc *service.QueueService, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{svc: svc, logger: logger}
}

// Submit handles POST /api/v1/songs
func (h *QueueHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	// Anonymous submitters are rate-limited by caller address, the same
	// keying the queue originally used for unauthenticated patrons.
	if req.AddedBy == "" {
		req.AddedBy = remoteHost(r)
	}

	track, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		h.logger.Warn("submit rejected",
			zap.String("video_id", req.VideoID),
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, track)
}

// List handles GET /api/v1/queue
func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("list queue failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal", "failed to list queue")
		return
	}
	if tracks == nil {
		tracks = []*domain.Track{}
	}
	respondJSON(w, http.StatusOK, tracks)
}

// Delete handles DELETE /api/v1/songs/{videoId}
func (h *QueueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	track, err := h.svc.Remove(r.Context(), videoID)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// Finished handles POST /api/v1/songs/{videoId}/finished
// The finished track is dropped from the queue and the next entry, if any,
// is returned so all clients agree on what plays next.
func (h *QueueHandler) Finished(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoId")
	next, err := h.svc.AdvancePlayback(r.Context(), videoID)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"next": next})
}

// Search handles GET /api/v1/search?q=...
func (h *QueueHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "query parameter q is required")
		return
	}

	candidates, err := h.svc.Search(r.Context(), query)
	if err != nil {
		h.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, candidates)
}

// remoteHost returns the caller's address without the port. RealIP
// middleware has already resolved X-Forwarded-For into RemoteAddr.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
