package hub_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/canteenlab/jukebox/internal/domain"
	"github.com/canteenlab/jukebox/internal/hub"
)

// chanSender buffers delivered events so tests can assert on them.
type chanSender struct {
	events chan domain.Event
	closed chan struct{}
}

func newChanSender() *chanSender {
	return &chanSender{
		events: make(chan domain.Event, 16),
		closed: make(chan struct{}),
	}
}

func (s *chanSender) Send(_ context.Context, event domain.Event) error {
	s.events <- event
	return nil
}

func (s *chanSender) Close() error {
	close(s.closed)
	return nil
}

// stuckSender blocks until the delivery deadline expires.
type stuckSender struct{}

func (s *stuckSender) Send(ctx context.Context, _ domain.Event) error {
	<-ctx.Done()
	return ctx.Err()
}

func (s *stuckSender) Close() error { return nil }

func newHub(maxConns int, timeout time.Duration) *hub.Hub {
	return hub.New(maxConns, timeout, zap.NewNop(), hub.MetricHooks{})
}

func track(videoID string) *domain.Track {
	return &domain.Track{ID: "id-" + videoID, VideoID: videoID, Title: "t"}
}

func recvOne(t *testing.T, s *chanSender) domain.Event {
	t.Helper()
	select {
	case e := <-s.events:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return domain.Event{}
	}
}

func assertNoEvent(t *testing.T, s *chanSender) {
	t.Helper()
	select {
	case e := <-s.events:
		t.Fatalf("unexpected event %q", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestHub_FanOutToAllConnections(t *testing.T) {
	h := newHub(0, time.Second)

	senders := []*chanSender{newChanSender(), newChanSender(), newChanSender()}
	for _, s := range senders {
		if _, err := h.Subscribe(s); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	h.Publish(domain.Event{Type: domain.EventTrackAdded, Track: track("abc123")})

	for i, s := range senders {
		e := recvOne(t, s)
		if e.Type != domain.EventTrackAdded {
			t.Fatalf("connection %d: expected added event, got %q", i, e.Type)
		}
		if e.Track.VideoID != "abc123" {
			t.Fatalf("connection %d: expected abc123, got %s", i, e.Track.VideoID)
		}
		// Exactly one event per publish.
		assertNoEvent(t, s)
	}
}

func TestHub_UnsubscribedConnectionReceivesNothing(t *testing.T) {
	h := newHub(0, time.Second)

	gone := newChanSender()
	staying := newChanSender()

	c, _ := h.Subscribe(gone)
	if _, err := h.Subscribe(staying); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	h.Unsubscribe(c)
	h.Publish(domain.Event{Type: domain.EventTrackAdded, Track: track("x")})

	recvOne(t, staying)
	assertNoEvent(t, gone)

	select {
	case <-gone.closed:
	default:
		t.Fatal("expected unsubscribed sender to be closed")
	}
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	h := newHub(0, time.Second)

	s := newChanSender()
	c, _ := h.Subscribe(s)

	h.Unsubscribe(c)
	h.Unsubscribe(c) // second removal must be a no-op, not a double close
	h.Unsubscribe(nil)

	if h.Len() != 0 {
		t.Fatalf("expected 0 connections, got %d", h.Len())
	}
}

func TestHub_SlowConnectionIsIsolatedAndDropped(t *testing.T) {
	h := newHub(0, 50*time.Millisecond)

	healthy := newChanSender()
	if _, err := h.Subscribe(healthy); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := h.Subscribe(&stuckSender{}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	h.Publish(domain.Event{Type: domain.EventTrackDeleted, Track: track("y")})

	// The healthy connection is served regardless of the stuck one.
	e := recvOne(t, healthy)
	if e.Type != domain.EventTrackDeleted {
		t.Fatalf("expected deleted event, got %q", e.Type)
	}

	// The stuck connection is dropped once its delivery times out.
	waitFor(t, func() bool { return h.Len() == 1 })
}

func TestHub_CapacityCap(t *testing.T) {
	h := newHub(2, time.Second)

	if _, err := h.Subscribe(newChanSender()); err != nil {
		t.Fatalf("subscribe 1: %v", err)
	}
	if _, err := h.Subscribe(newChanSender()); err != nil {
		t.Fatalf("subscribe 2: %v", err)
	}
	if _, err := h.Subscribe(newChanSender()); err != domain.ErrHubFull {
		t.Fatalf("expected ErrHubFull, got %v", err)
	}
}

func TestHub_CapacityFreedOnUnsubscribe(t *testing.T) {
	h := newHub(1, time.Second)

	c, err := h.Subscribe(newChanSender())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := h.Subscribe(newChanSender()); err != domain.ErrHubFull {
		t.Fatalf("expected ErrHubFull, got %v", err)
	}

	h.Unsubscribe(c)

	if _, err := h.Subscribe(newChanSender()); err != nil {
		t.Fatalf("expected subscribe to succeed after capacity freed, got %v", err)
	}
}

func TestHub_CloseTearsDownAllConnections(t *testing.T) {
	h := newHub(0, time.Second)

	senders := []*chanSender{newChanSender(), newChanSender()}
	for _, s := range senders {
		if _, err := h.Subscribe(s); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}

	h.Close()

	if h.Len() != 0 {
		t.Fatalf("expected 0 connections after Close, got %d", h.Len())
	}
	for i, s := range senders {
		select {
		case <-s.closed:
		default:
			t.Fatalf("sender %d not closed", i)
		}
	}
}
