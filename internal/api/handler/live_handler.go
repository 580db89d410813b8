package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/canteenlab/jukebox/internal/domain"
	"github.com/canteenlab/jukebox/internal/hub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The queue is an open communal surface; browsers on the venue network
	// connect from arbitrary origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// LiveHandler upgrades HTTP requests to websocket connections and
// registers them with the broadcast hub. The live channel is push-only:
// clients pull the initial snapshot over GET /api/v1/queue and then
// receive {type, track} delta frames here. Inbound frames are ignored;
// all mutations go through the HTTP endpoints and the service.
type LiveHandler struct {
	hub    *hub.Hub
	logger *zap.Logger
}

func NewLiveHandler(h *hub.Hub, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{hub: h, logger: logger}
}

// Subscribe handles GET /api/v1/queue/live
func (h *LiveHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c, err := h.hub.Subscribe(newWSSender(conn))
	if err != nil {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many live connections"),
			time.Now().Add(time.Second),
		)
		_ = conn.Close()
		return
	}

	h.logger.Info("live connection opened",
		zap.String("connection_id", c.ID),
		zap.String("remote_addr", r.RemoteAddr),
	)

	// Read loop exists only to observe the close; it unregisters the
	// connection as soon as the peer goes away.
	go func() {
		defer func() {
			h.hub.Unsubscribe(c)
			h.logger.Info("live connection closed", zap.String("connection_id", c.ID))
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// wsSender adapts a gorilla websocket connection to the hub.Sender
// interface. Writes are serialized; gorilla allows at most one
// concurrent writer per connection.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSSender(conn *websocket.Conn) *wsSender {
	return &wsSender{conn: conn}
}

func (s *wsSender) Send(ctx context.Context, event domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		if err := s.conn.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}
	return s.conn.WriteJSON(event)
}

func (s *wsSender) Close() error {
	return s.conn.Close()
}
