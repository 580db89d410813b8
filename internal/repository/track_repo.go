package repository

import (
	"context"

	"github.com/canteenlab/jukebox/internal/domain"
)

// TrackRepository defines all persistence operations for the song queue.
// The pgx implementation is in pg_track_repo.go.
// Tests use a hand-written in-memory mock (mock_track_repo.go).
//
// All operations are atomic with respect to each other; the uniqueness
// constraint on video_id is the final arbiter under concurrent inserts.
type TrackRepository interface {
	// Insert persists a track. Returns domain.ErrConflict when an active
	// entry with the same videoId already exists.
	Insert(ctx context.Context, t *domain.Track) error

	// Exists reports whether a track with the given videoId is queued.
	// Used as a cheap pre-flight so known duplicates skip the metadata
	// lookup; Insert remains the authoritative check.
	Exists(ctx context.Context, videoID string) (bool, error)

	// List returns the queue in play order: created_at ascending.
	List(ctx context.Context) ([]*domain.Track, error)

	// Delete removes a track by videoId and returns the removed row.
	// Returns domain.ErrTrackNotFound when no such track is queued.
	Delete(ctx context.Context, videoID string) (*domain.Track, error)
}
