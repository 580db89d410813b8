package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canteenlab/jukebox/internal/domain"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes the error envelope. kind is a stable machine-readable
// string for client-side messaging; message stays coarse so store and
// platform internals never leak to callers.
func respondError(w http.ResponseWriter, status int, kind, msg string) {
	respondJSON(w, status, map[string]string{"kind": kind, "error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes and
// stable kinds. All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingVideoID):
		respondError(w, http.StatusBadRequest, "invalid_track", err.Error())
	case errors.Is(err, domain.ErrInvalidTrack):
		respondError(w, http.StatusNotFound, "invalid_track", err.Error())
	case errors.Is(err, domain.ErrDurationExceeded):
		respondError(w, http.StatusUnprocessableEntity, "duration_exceeded", err.Error())
	case errors.Is(err, domain.ErrDuplicateTrack), errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusConflict, "duplicate_track", err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.Is(err, domain.ErrTrackNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUpstream):
		respondError(w, http.StatusBadGateway, "upstream_error", "video platform is temporarily unavailable")
	case errors.Is(err, domain.ErrHubFull):
		respondError(w, http.StatusServiceUnavailable, "hub_full", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
