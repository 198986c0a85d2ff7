package websocket

import (
	"encoding/json"
	"sync"
	"time"

	fiberws "github.com/gofiber/websocket/v2"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Hub maintains the set of active clients and pushes messages to them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	quit chan struct{}

	mutex sync.RWMutex
}

// Client is one websocket connection of a logged-in user.
type Client struct {
	hub *Hub

	// Buffered channel of outbound messages.
	send chan []byte

	userID string
	role   string
}

// Message is the envelope of every pushed event.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Time time.Time   `json:"time"`
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run serves register and unregister requests until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			logrus.WithFields(logrus.Fields{"user_id": client.userID, "role": client.role}).Info("WebSocket client connected")

		case client := <-h.unregister:
			h.removeClient(client)
			logrus.WithField("user_id", client.userID).Info("WebSocket client disconnected")

		case <-h.quit:
			h.mutex.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Close stops Run and disconnects every client.
func (h *Hub) Close() {
	close(h.quit)
}

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mutex.Unlock()
}

// NotifyUser pushes an event to every connection of userID.
func (h *Hub) NotifyUser(userID string, event string, payload interface{}) {
	h.deliver(event, payload, func(c *Client) bool { return c.userID == userID })
}

// NotifyRole pushes an event to every connection of users with role.
func (h *Hub) NotifyRole(role string, event string, payload interface{}) {
	h.deliver(event, payload, func(c *Client) bool { return c.role == role })
}

func (h *Hub) deliver(event string, payload interface{}, match func(*Client) bool) {
	data, err := json.Marshal(Message{Type: event, Data: payload, Time: time.Now().UTC()})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Error marshaling WebSocket message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	sent, dropped := 0, 0
	for client := range h.clients {
		if !match(client) {
			continue
		}
		select {
		case client.send <- data:
			sent++
		default:
			// slow consumer
			dropped++
			close(client.send)
			delete(h.clients, client)
		}
	}
	logrus.WithFields(logrus.Fields{"event": event, "sent": sent, "dropped": dropped}).Debug("WebSocket event delivered")
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeFiberWS registers the connection and blocks until it closes.
func (h *Hub) ServeFiberWS(c *fiberws.Conn, userID, role string) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).WithField("user_id", userID).Error("ServeFiberWS panic")
		}
	}()

	client := &Client{
		hub:    h,
		send:   make(chan []byte, 256),
		userID: userID,
		role:   role,
	}
	h.register <- client

	go h.fiberWritePump(client, c)
	// the read pump runs inline so the Fiber connection stays on its handler goroutine
	h.fiberReadPump(client, c)
}

func (h *Hub) fiberWritePump(client *Client, c *fiberws.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).WithField("user_id", client.userID).Error("fiberWritePump panic")
		}
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithError(err).WithField("user_id", client.userID).Warn("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) fiberReadPump(client *Client, c *fiberws.Conn) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).WithField("user_id", client.userID).Error("fiberReadPump panic")
		}
		select {
		case h.unregister <- client:
		case <-h.quit:
		}
		c.Close()
	}()

	c.SetReadLimit(maxMessageSize)
	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// clients only listen; inbound frames are read to keep pongs flowing
		if _, _, err := c.ReadMessage(); err != nil {
			if fiberws.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("user_id", client.userID).Warn("WebSocket unexpected close")
			}
			return
		}
	}
}
