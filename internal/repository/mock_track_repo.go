package repository

import (
	"context"
	"sync"

	"github.com/canteenlab/jukebox/internal/domain"
)

// MockTrackRepository is a hand-written, in-memory implementation of
// TrackRepository used in unit tests. No mock-generation library needed.
// Insertion order is preserved so List matches the created_at ordering
// the real store provides.
type MockTrackRepository struct {
	mu     sync.RWMutex
	tracks []*domain.Track

	// Optional error overrides, set in tests to simulate failure paths.
	InsertErr error
	ExistsErr error
	ListErr   error
	DeleteErr error
}

func NewMockTrackRepository() *MockTrackRepository {
	return &MockTrackRepository{}
}

func (m *MockTrackRepository) Insert(_ context.Context, t *domain.Track) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tracks {
		if existing.VideoID == t.VideoID {
			return domain.ErrConflict
		}
	}
	clone := *t
	m.tracks = append(m.tracks, &clone)
	return nil
}

func (m *MockTrackRepository) Exists(_ context.Context, videoID string) (bool, error) {
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tracks {
		if t.VideoID == videoID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockTrackRepository) List(_ context.Context) ([]*domain.Track, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Track, 0, len(m.tracks))
	for _, t := range m.tracks {
		clone := *t
		result = append(result, &clone)
	}
	return result, nil
}

func (m *MockTrackRepository) Delete(_ context.Context, videoID string) (*domain.Track, error) {
	if m.DeleteErr != nil {
		return nil, m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.tracks {
		if t.VideoID == videoID {
			removed := *t
			m.tracks = append(m.tracks[:i], m.tracks[i+1:]...)
			return &removed, nil
		}
	}
	return nil, domain.ErrTrackNotFound
}
