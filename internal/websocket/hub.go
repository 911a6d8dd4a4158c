// Package websocket pushes freshly persisted admin alerts to connected
// dashboard clients, in addition to the gateway fan-out. One audience:
// every connected client holds an elevated role (enforced at upgrade).
package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"shoplink-push/internal/models"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event is the wire envelope sent to dashboard clients
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Hub tracks connected clients and fans events out to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.RWMutex
	log        *logrus.Entry
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
		log:        logrus.WithField("component", "ws_hub"),
	}
}

// Run processes registrations and broadcasts until Shutdown
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.WithField("user_id", client.userID).Debug("dashboard client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.log.WithField("user_id", client.userID).Debug("dashboard client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// NotifyAlert pushes a persisted admin alert to every connected client.
// Implements the alert dispatcher's notifier capability.
func (h *Hub) NotifyAlert(record *models.AdminAlertRecord) {
	h.publish(Event{Type: "admin_alert", Data: record})
}

// Publish sends an arbitrary event to every connected client
func (h *Hub) Publish(event Event) {
	h.publish(event)
}

func (h *Hub) publish(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Warn("failed to serialize hub event")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn("hub broadcast queue full, event dropped")
	}
}

// ConnectionsCount returns the number of connected clients
func (h *Hub) ConnectionsCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Shutdown disconnects all clients and stops the run loop
func (h *Hub) Shutdown() {
	close(h.done)
}

// Client is one connected dashboard socket
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

// NewClient wraps an upgraded connection and registers it with the hub.
// During shutdown the run loop is gone, so the registration send must not
// block forever.
func (h *Hub) NewClient(conn *websocket.Conn, userID string) *Client {
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 16),
		userID: userID,
	}
	select {
	case h.register <- client:
	case <-h.done:
	}
	return client
}

// WritePump forwards hub events to the socket and keeps it alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// ReadPump drains inbound frames (the feed is one-way) and unregisters on
// close
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
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
