package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the envelope for every event pushed to observers
type Message struct {
	Event     string      `json:"event"`
	SessionID string      `json:"sessionId"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// client is one websocket connection subscribed to a session
type client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
}

// Hub fans interview events out to connections grouped by session ID.
// It implements service.Broadcaster.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*client]bool
}

func NewHub() *Hub {
	return &Hub{sessions: make(map[string]map[*client]bool)}
}

// BroadcastToSession sends one event to every observer of the session.
// Slow consumers are dropped rather than blocking the caller.
func (h *Hub) BroadcastToSession(sessionID, event string, payload interface{}) {
	msg := Message{
		Event:     event,
		SessionID: sessionID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] Marshal failed for event %s: %v", event, err)
		return
	}

	h.mu.RLock()
	clients := h.sessions[sessionID]
	var stale []*client
	for c := range clients {
		select {
		case c.send <- data:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.unregister(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	if h.sessions[c.sessionID] == nil {
		h.sessions[c.sessionID] = make(map[*client]bool)
	}
	h.sessions[c.sessionID][c] = true
	count := len(h.sessions[c.sessionID])
	h.mu.Unlock()
	log.Printf("[WS] Session %s: observer connected (%d total)", c.sessionID, count)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	clients, ok := h.sessions[c.sessionID]
	if ok && clients[c] {
		delete(clients, c)
		close(c.send)
		if len(clients) == 0 {
			delete(h.sessions, c.sessionID)
		}
	}
	h.mu.Unlock()
	if ok {
		log.Printf("[WS] Session %s: observer disconnected", c.sessionID)
	}
}

// readPump drains and discards inbound frames; the channel is
// broadcast-only. It exists to process control frames and detect
// disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Session %s: read error: %v", c.sessionID, err)
			}
			return
		}
	}
}

func (c *client) writePump() {
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
