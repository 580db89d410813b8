package hub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/canteenlab/jukebox/internal/domain"
)

// Sender is the transport half of a live connection. The websocket
// adapter lives in the api package; tests use in-memory senders.
type Sender interface {
	// Send delivers one event. The context carries the per-connection
	// delivery deadline; implementations must respect it.
	Send(ctx context.Context, event domain.Event) error
	Close() error
}

// Connection is one live subscriber, owned exclusively by the Hub.
type Connection struct {
	ID           string
	SubscribedAt time.Time
	sender       Sender
}

// MetricHooks bridges hub activity into the metrics package without the
// hub importing it.
type MetricHooks struct {
	OnDelivered func(eventType string)
	OnDropped   func()
	OnLive      func(count int)
}

// Hub is the single process-wide broadcast registry. It is created at
// startup, injected into the gateway, and torn down at shutdown; handlers
// never construct their own.
//
// Delivery is best-effort and at-most-once per connection per Publish:
// there is no event log and no replay. A connection that fails or exceeds
// the per-connection timeout is logged, unsubscribed and closed; it never
// blocks delivery to others and never surfaces an error to the publisher.
type Hub struct {
	mu       sync.RWMutex
	conns    map[string]*Connection
	maxConns int
	timeout  time.Duration
	logger   *zap.Logger
	hooks    MetricHooks
}

func New(maxConns int, timeout time.Duration, logger *zap.Logger, hooks MetricHooks) *Hub {
	if hooks.OnDelivered == nil {
		hooks.OnDelivered = func(string) {}
	}
	if hooks.OnDropped == nil {
		hooks.OnDropped = func() {}
	}
	if hooks.OnLive == nil {
		hooks.OnLive = func(int) {}
	}
	return &Hub{
		conns:    make(map[string]*Connection),
		maxConns: maxConns,
		timeout:  timeout,
		logger:   logger,
		hooks:    hooks,
	}
}

// Subscribe registers a new live connection. The new subscriber receives
// no snapshot push; clients pull the current queue over the list endpoint
// first and then rely on deltas, which avoids receiving both a snapshot
// and a delta for the same change.
func (h *Hub) Subscribe(s Sender) (*Connection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxConns > 0 && len(h.conns) >= h.maxConns {
		return nil, domain.ErrHubFull
	}

	c := &Connection{
		ID:           uuid.New().String(),
		SubscribedAt: time.Now().UTC(),
		sender:       s,
	}
	h.conns[c.ID] = c
	h.hooks.OnLive(len(h.conns))
	return c, nil
}

// Unsubscribe removes a connection and closes its sender. Removing an
// already-removed connection is a no-op.
func (h *Hub) Unsubscribe(c *Connection) {
	if c == nil {
		return
	}

	h.mu.Lock()
	_, ok := h.conns[c.ID]
	if ok {
		delete(h.conns, c.ID)
	}
	live := len(h.conns)
	h.mu.Unlock()

	if !ok {
		return
	}
	h.hooks.OnLive(live)
	if err := c.sender.Close(); err != nil {
		h.logger.Debug("close live connection", zap.String("connection_id", c.ID), zap.Error(err))
	}
}

// Publish fans the event out to every currently registered connection.
// Each delivery runs in its own goroutine bounded by the per-connection
// timeout, so one slow client cannot stall the rest or the caller.
func (h *Hub) Publish(event domain.Event) {
	h.mu.RLock()
	snapshot := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		snapshot = append(snapshot, c)
	}
	h.mu.RUnlock()

	for _, c := range snapshot {
		go h.deliver(c, event)
	}
}

func (h *Hub) deliver(c *Connection, event domain.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := c.sender.Send(ctx, event); err != nil {
		h.logger.Warn("dropping live connection after failed delivery",
			zap.String("connection_id", c.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		h.hooks.OnDropped()
		h.Unsubscribe(c)
		return
	}
	h.hooks.OnDelivered(string(event.Type))
}

// Len returns the number of currently live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close unsubscribes every connection. Called once at shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		h.Unsubscribe(c)
	}
}
