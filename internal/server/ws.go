package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/app"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is the number of snapshots queued per client
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FeedSource provides snapshots to the feed.
type FeedSource interface {
	Snapshot() app.Snapshot
	Subscribe(fn func(app.Snapshot)) func()
}

// FeedHandler pushes app snapshots to browsers over WebSocket.
type FeedHandler struct {
	source      FeedSource
	unsubscribe func()
	clients     map[*feedClient]struct{}
	mu          sync.RWMutex
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewFeedHandler creates a FeedHandler subscribed to source.
func NewFeedHandler(source FeedSource) *FeedHandler {
	h := &FeedHandler{
		source:  source,
		clients: make(map[*feedClient]struct{}),
	}
	h.unsubscribe = source.Subscribe(h.Broadcast)
	return h
}

// ServeHTTP handles WebSocket upgrade requests. The client receives the
// current snapshot immediately and every change afterwards.
func (h *FeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	client := &feedClient{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	if msg, err := json.Marshal(h.source.Snapshot()); err == nil {
		h.enqueue(client, msg)
	}

	go client.writePump()
	client.readPump()

	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

// Broadcast sends snap to every connected client. Slow clients drop
// snapshots rather than block the feed; each snapshot is complete state.
func (h *FeedHandler) Broadcast(snap app.Snapshot) {
	msg, err := json.Marshal(snap)
	if err != nil {
		log.Printf("feed marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
		}
	}
}

// enqueue delivers msg to a single client if it is still registered.
func (h *FeedHandler) enqueue(client *feedClient, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	select {
	case client.send <- msg:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *FeedHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unsubscribes from the source and disconnects all clients.
func (h *FeedHandler) Close() {
	h.unsubscribe()

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

// readPump discards client messages and returns when the connection drops.
func (c *feedClient) readPump() {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump is the only goroutine that writes to the connection.
func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
