package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/trogers1052/portfolio-tracker/internal/models"
	"github.com/trogers1052/portfolio-tracker/internal/valuation"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 8
)

// Snapshot is the full portfolio state pushed to stream subscribers
type Snapshot struct {
	Type      string                 `json:"type"`
	Holdings  []*models.Holding      `json:"holdings"`
	Cash      []*models.CashPosition `json:"cash"`
	Summary   *valuation.Summary     `json:"summary,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// SnapshotSource loads the current state of one user's portfolio
type SnapshotSource interface {
	ListHoldings(userID string) ([]*models.Holding, error)
	GetCash(userID string) ([]*models.CashPosition, error)
	Summary(ctx context.Context, userID string) (*valuation.Summary, error)
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans portfolio snapshots out to websocket subscribers. Every
// subscriber gets a snapshot on connect and again after each change to
// its user's portfolio. Slow subscribers are dropped.
type Hub struct {
	source   SnapshotSource
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

// NewHub creates a stream hub
func NewHub(source SnapshotSource, logger zerolog.Logger) *Hub {
	return &Hub{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With().Str("component", "stream").Logger(),
		subs:   make(map[string]map[*subscriber]struct{}),
	}
}

// PortfolioChanged pushes a fresh snapshot to the user's subscribers
func (h *Hub) PortfolioChanged(userID string) {
	if h.Subscribers(userID) == 0 {
		return
	}
	go h.broadcast(userID)
}

// Subscribers returns the number of open streams for a user
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// ServeWS handles GET /stream
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	user := userID(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", user).Msg("Websocket upgrade failed")
		return
	}

	sub := &subscriber{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(user, sub)

	go h.writePump(user, sub)

	if msg, err := h.snapshot(context.Background(), user); err == nil {
		h.deliver(user, sub, msg)
	}
	h.readPump(user, sub)
}

func (h *Hub) register(userID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.logger.Debug().Str("user_id", userID).Int("subscribers", len(h.subs[userID])).Msg("Stream subscribed")
}

func (h *Hub) unregister(userID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[userID][sub]; !ok {
		return
	}
	delete(h.subs[userID], sub)
	if len(h.subs[userID]) == 0 {
		delete(h.subs, userID)
	}
	close(sub.send)
}

func (h *Hub) snapshot(ctx context.Context, userID string) ([]byte, error) {
	snap := Snapshot{Type: "snapshot", Timestamp: time.Now()}

	var err error
	if snap.Holdings, err = h.source.ListHoldings(userID); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load holdings for stream")
		return nil, err
	}
	if snap.Cash, err = h.source.GetCash(userID); err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load cash for stream")
		return nil, err
	}
	if snap.Summary, err = h.source.Summary(ctx, userID); err != nil {
		h.logger.Warn().Err(err).Str("user_id", userID).Msg("Streaming snapshot without summary")
	}
	return json.Marshal(snap)
}

func (h *Hub) broadcast(userID string) {
	msg, err := h.snapshot(context.Background(), userID)
	if err != nil {
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs[userID]))
	for sub := range h.subs[userID] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		h.deliver(userID, sub, msg)
	}
}

// deliver queues msg without blocking; a full queue disconnects the subscriber
func (h *Hub) deliver(userID string, sub *subscriber, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[userID][sub]; !ok {
		return
	}
	select {
	case sub.send <- msg:
	default:
		h.logger.Warn().Str("user_id", userID).Msg("Stream subscriber too slow, dropping")
		delete(h.subs[userID], sub)
		close(sub.send)
	}
}

func (h *Hub) writePump(userID string, sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Debug().Err(err).Str("user_id", userID).Msg("Stream write failed")
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and unregisters on disconnect
func (h *Hub) readPump(userID string, sub *subscriber) {
	defer h.unregister(userID, sub)

	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug().Err(err).Str("user_id", userID).Msg("Stream closed unexpectedly")
			}
			return
		}
	}
}
