package domain

import "errors"

// Sentinel errors used throughout the application.
// The gateway translates these to HTTP status codes via a single mapError
// function; the stable kind strings live there too.
var (
	// ErrMissingVideoID rejects a submission with no video identifier.
	ErrMissingVideoID = errors.New("videoId must not be empty")

	// ErrVideoNotFound is returned by the metadata client when the video
	// platform reports zero matching items for an id.
	ErrVideoNotFound = errors.New("video not found on the platform")

	// ErrInvalidTrack is the service-level form of an unresolvable id.
	ErrInvalidTrack = errors.New("video does not exist or cannot be resolved")

	// ErrDurationExceeded rejects videos over the configured ceiling, or
	// videos whose duration the platform did not report in a usable form.
	ErrDurationExceeded = errors.New("video duration exceeds the queue limit")

	// ErrDuplicateTrack rejects a videoId already present in the queue.
	ErrDuplicateTrack = errors.New("video is already in the queue")

	// ErrConflict is the store-level uniqueness violation. The service
	// absorbs it into ErrDuplicateTrack before it reaches a caller.
	ErrConflict = errors.New("conflict: videoId already queued")

	// ErrRateLimited rejects a submitter over the sliding-window budget.
	ErrRateLimited = errors.New("too many submissions in a short time")

	// ErrTrackNotFound is returned when deleting an absent track.
	// Deletes are deliberately not idempotent: a double-delete is a client
	// bug worth reporting, not masking.
	ErrTrackNotFound = errors.New("track not found in queue")

	// ErrUpstream covers network failures and error responses from the
	// video platform. Callers may retry manually; the service never does.
	ErrUpstream = errors.New("video platform request failed")

	// ErrHubFull rejects a new live connection at the configured cap.
	ErrHubFull = errors.New("too many live connections")
)
