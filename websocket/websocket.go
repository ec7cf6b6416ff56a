package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cameroncuttingedge/tictactoe-arena/events"
	"github.com/cameroncuttingedge/tictactoe-arena/utils"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrSendBufferFull    = errors.New("send buffer full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Allow connections from any origin
}

// Inbound receives everything a connection produces.
type Inbound interface {
	Handle(connID string, data []byte) error
	Disconnect(connID string)
}

// Client is one live websocket connection.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks live connections by id and delivers outbound events to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Send queues msg for connID without blocking.
func (h *Hub) Send(connID string, msg events.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", msg.Event, err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[connID]
	if !ok {
		return ErrUnknownConnection
	}
	select {
	case client.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and pumps frames between the socket and in
// until either side goes away.
func (h *Hub) ServeWS(in Inbound) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Msg("WebSocket upgrade error")
			return
		}

		client := &Client{
			id:   utils.GenerateUUIDString(),
			conn: conn,
			send: make(chan []byte, sendBuffer),
		}
		h.register(client)

		go h.writePump(client)
		go h.readPump(client, in)
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("connID", c.id).Int("connectionsCount", count).Msg("WebSocket connection registered")
}

func (h *Hub) deregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	count := len(h.clients)
	h.mu.Unlock()

	log.Info().Str("connID", c.id).Int("remainingConnections", count).Msg("WebSocket connection deregistered")
}

func (h *Hub) readPump(c *Client, in Inbound) {
	defer func() {
		h.deregister(c)
		c.conn.Close()
		in.Disconnect(c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("connID", c.id).Msg("WebSocket closed unexpectedly")
			}
			return
		}
		in.Handle(c.id, data)
	}
}

func (h *Hub) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("connID", c.id).Msg("Failed to write to connection")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
