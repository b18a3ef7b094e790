package status

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/logging"
)

// WebSocket message types.
const (
	WSTypePing  = "ping"
	WSTypePong  = "pong"
	WSTypeEvent = "event"
	WSTypeError = "error"

	// ChannelCycleCompleted carries a Snapshot after every reporting cycle.
	ChannelCycleCompleted = "cycle.completed"
)

// Buffer sizes for the hub and per-client queues.
const (
	hubBroadcastBuffer = 16
	clientSendBuffer   = 16
)

// WSMessage is the envelope for every frame sent or received.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// Hub fans cycle events out to WebSocket clients.
//
// Client membership is owned by the Run goroutine; other goroutines talk to
// it over channels. Until Run is started, broadcasts are buffered and then
// dropped.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	done       chan struct{}

	clients map[*wsClient]struct{}
	count   atomic.Int64
}

type wsClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Read-only feed bound to a trusted interface.
		return true
	},
}

// NewHub creates a hub. Call Run to start delivering. Non-positive
// settings fall back to the defaults.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	defaults := config.Default().Status.WebSocket
	if cfg.PingInterval < 1 {
		cfg.PingInterval = defaults.PingInterval
	}
	if cfg.PongTimeout < 1 {
		cfg.PongTimeout = defaults.PongTimeout
	}
	if cfg.MaxMessageSize < 1 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	return &Hub{
		cfg:        cfg,
		logger:     logger,
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, hubBroadcastBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*wsClient]struct{}),
	}
}

// Run delivers broadcasts until ctx is cancelled, then disconnects every
// client. It must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
			c.conn.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			h.logger.Debug("websocket client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.logger.Debug("websocket client disconnected", "clients", len(h.clients))
			}

		case data := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// slow consumer
					h.logger.Warn("dropping slow websocket client")
					h.drop(c)
					c.conn.Close()
				}
			}
		}
	}
}

// drop removes c and closes its queue. Only called from Run.
func (h *Hub) drop(c *wsClient) {
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
}

// Broadcast queues an event for every connected client. It never blocks;
// when the queue is full the event is discarded.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: channel,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("websocket broadcast queue full, event dropped", "channel", channel)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// handleWebSocket upgrades the request and hands the client to the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &wsClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}

	select {
	case s.hub.register <- c:
	case <-s.hub.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump answers pings and notices when the peer goes away.
func (c *wsClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	cfg := c.hub.cfg
	keepAlive := time.Duration(cfg.PingInterval+cfg.PongTimeout) * time.Second

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	//nolint:errcheck // Best-effort deadline on connection setup
	c.conn.SetReadDeadline(time.Now().Add(keepAlive))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(keepAlive))
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		//nolint:errcheck // Best-effort deadline reset
		c.conn.SetReadDeadline(time.Now().Add(keepAlive))

		reply := WSMessage{ID: msg.ID, Timestamp: time.Now().UTC().Format(time.RFC3339)}
		if msg.Type == WSTypePing {
			reply.Type = WSTypePong
		} else {
			reply.Type = WSTypeError
			reply.Payload = map[string]string{"message": "unsupported message type: " + msg.Type}
		}
		c.enqueue(reply)
	}
}

// enqueue sends a direct reply through the hub-owned queue. The queue may
// already be closed by the hub, in which case the reply is discarded.
func (c *wsClient) enqueue(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	defer func() {
		recover() //nolint:errcheck // queue closed by hub during shutdown
	}()
	select {
	case c.send <- data:
	default:
	}
}

// writePump drains the send queue and keeps the connection alive with pings.
func (c *wsClient) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(time.Duration(cfg.PingInterval) * time.Second)
	writeWait := time.Duration(cfg.PongTimeout) * time.Second
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
