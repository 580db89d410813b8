package domain

import "time"

// Track is the core domain entity: one queued song with metadata resolved
// from the video platform. Tracks are immutable once queued; the only
// transitions are insertion and removal.
type Track struct {
	ID              string    `json:"id"`
	VideoID         string    `json:"videoId"`
	Title           string    `json:"title"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	DurationSeconds int       `json:"durationSeconds"`
	AddedBy         string    `json:"addedBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SubmitRequest is the inbound payload for queueing a song.
// AddedBy is an opaque submitter identity; the gateway fills in the
// caller's remote address when the client sends none.
type SubmitRequest struct {
	VideoID string `json:"videoId"`
	AddedBy string `json:"addedBy"`
}

func (r *SubmitRequest) Validate() error {
	if r.VideoID == "" {
		return ErrMissingVideoID
	}
	return nil
}

// SearchCandidate is one entry of a video search result. Candidates are
// not persisted; the client submits the chosen videoId separately.
type SearchCandidate struct {
	VideoID         string `json:"videoId"`
	Title           string `json:"title"`
	ThumbnailURL    string `json:"thumbnail"`
	DurationSeconds int    `json:"durationSeconds"`
}

// EventType names a queue-change event pushed to live connections.
type EventType string

const (
	EventTrackAdded   EventType = "added"
	EventTrackDeleted EventType = "deleted"
)

// Event is the frame broadcast to every live connection after a queue
// mutation commits.
type Event struct {
	Type  EventType `json:"type"`
	Track *Track    `json:"track"`
}
