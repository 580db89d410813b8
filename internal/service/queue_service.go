package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/canteenlab/jukebox/internal/domain"
	"github.com/canteenlab/jukebox/internal/ratelimiter"
	"github.com/canteenlab/jukebox/internal/repository"
	"github.com/canteenlab/jukebox/internal/youtube"
)

// Publisher is the broadcast side the service needs: fire an event at all
// live connections. Satisfied by hub.Hub.
type Publisher interface {
	Publish(event domain.Event)
}

// MetricHooks bridges submission outcomes into the metrics package.
type MetricHooks struct {
	OnSubmit func(result string)
}

// QueueService coordinates validation, dedup, rate limiting, persistence
// and event emission. It is the sole publisher of queue events: transport
// handlers never publish directly, so every mutation broadcasts exactly
// once, strictly after its store write commits.
type QueueService struct {
	repo        repository.TrackRepository
	meta        youtube.MetadataClient
	limiter     *ratelimiter.SlidingWindow
	publisher   Publisher
	maxDuration int
	logger      *zap.Logger
	hooks       MetricHooks
}

func NewQueueService(
	repo repository.TrackRepository,
	meta youtube.MetadataClient,
	limiter *ratelimiter.SlidingWindow,
	publisher Publisher,
	maxDurationSeconds int,
	logger *zap.Logger,
	hooks MetricHooks,
) *QueueService {
	if hooks.OnSubmit == nil {
		hooks.OnSubmit = func(string) {}
	}
	return &QueueService{
		repo:        repo,
		meta:        meta,
		limiter:     limiter,
		publisher:   publisher,
		maxDuration: maxDurationSeconds,
		logger:      logger,
		hooks:       hooks,
	}
}

// Submit validates, enriches and persists one candidate track, then
// broadcasts the change.
//
// Ordering is deliberate: all validation (resolvability, duration ceiling,
// duplicates) happens before the rate-limit check, so a failed submission
// never consumes the submitter's budget; the budget is consumed only after
// the insert commits.
func (s *QueueService) Submit(ctx context.Context, req domain.SubmitRequest) (*domain.Track, error) {
	if err := req.Validate(); err != nil {
		s.hooks.OnSubmit("invalid")
		return nil, err
	}

	// Cheap pre-flight so a known duplicate skips the metadata lookup.
	// The insert's uniqueness constraint stays the final arbiter.
	exists, err := s.repo.Exists(ctx, req.VideoID)
	if err != nil {
		return nil, fmt.Errorf("duplicate pre-check: %w", err)
	}
	if exists {
		s.hooks.OnSubmit("duplicate")
		return nil, domain.ErrDuplicateTrack
	}

	meta, err := s.meta.Resolve(ctx, req.VideoID)
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			s.hooks.OnSubmit("invalid")
			return nil, domain.ErrInvalidTrack
		}
		s.hooks.OnSubmit("upstream_error")
		return nil, err
	}

	if meta.DurationSeconds < 0 || meta.DurationSeconds > s.maxDuration {
		s.hooks.OnSubmit("duration_exceeded")
		return nil, domain.ErrDurationExceeded
	}

	if !s.limiter.Allow(req.AddedBy) {
		s.hooks.OnSubmit("rate_limited")
		return nil, domain.ErrRateLimited
	}

	track := &domain.Track{
		ID:              uuid.New().String(),
		VideoID:         req.VideoID,
		Title:           meta.Title,
		ThumbnailURL:    meta.ThumbnailURL,
		DurationSeconds: meta.DurationSeconds,
		AddedBy:         req.AddedBy,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, track); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost a race against a concurrent submit of the same video.
			s.hooks.OnSubmit("duplicate")
			return nil, domain.ErrDuplicateTrack
		}
		return nil, fmt.Errorf("persist track: %w", err)
	}

	s.limiter.Record(req.AddedBy)
	s.publisher.Publish(domain.Event{Type: domain.EventTrackAdded, Track: track})
	s.hooks.OnSubmit("accepted")

	s.logger.Info("track queued",
		zap.String("video_id", track.VideoID),
		zap.String("added_by", track.AddedBy),
		zap.Int("duration_seconds", track.DurationSeconds),
	)
	return track, nil
}

// Remove deletes a track by videoId and broadcasts the removal.
// Removing an absent track returns domain.ErrTrackNotFound.
func (s *QueueService) Remove(ctx context.Context, videoID string) (*domain.Track, error) {
	removed, err := s.repo.Delete(ctx, videoID)
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(domain.Event{Type: domain.EventTrackDeleted, Track: removed})
	s.logger.Info("track removed", zap.String("video_id", removed.VideoID))
	return removed, nil
}

// List returns the queue in play order.
func (s *QueueService) List(ctx context.Context) ([]*domain.Track, error) {
	return s.repo.List(ctx)
}

// Search passes the query through to the video platform. No persistence
// side effects.
func (s *QueueService) Search(ctx context.Context, query string) ([]domain.SearchCandidate, error) {
	metas, err := s.meta.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.SearchCandidate, 0, len(metas))
	for _, m := range metas {
		candidates = append(candidates, domain.SearchCandidate{
			VideoID:         m.VideoID,
			Title:           m.Title,
			ThumbnailURL:    m.ThumbnailURL,
			DurationSeconds: m.DurationSeconds,
		})
	}
	return candidates, nil
}

// AdvancePlayback models "song ends, auto-advance, drop from queue": the
// finished track is removed (broadcast as a deletion) and the entry that
// followed it in the pre-removal order is returned, or nil if it was last.
// There is no persisted "playing" state; the head of the list plus this
// operation is how server and clients agree on what plays next.
func (s *QueueService) AdvancePlayback(ctx context.Context, finishedVideoID string) (*domain.Track, error) {
	tracks, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}

	idx := -1
	for i, t := range tracks {
		if t.VideoID == finishedVideoID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, domain.ErrTrackNotFound
	}

	removed, err := s.repo.Delete(ctx, finishedVideoID)
	if err != nil {
		// Raced with an explicit delete; the track is gone either way.
		return nil, err
	}
	s.publisher.Publish(domain.Event{Type: domain.EventTrackDeleted, Track: removed})
	s.logger.Info("playback advanced", zap.String("finished_video_id", finishedVideoID))

	if idx+1 < len(tracks) {
		return tracks[idx+1], nil
	}
	return nil, nil
}
