package host

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Message types. Template and error messages go out; clients send action
// messages whose data is the action ID.
const (
	MsgTypeTemplate = "template"
	MsgTypeError    = "error"
	MsgTypeAction   = "action"
)

// Message is the websocket envelope.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// reply is a message for a single client.
type reply struct {
	client  *Client
	payload []byte
}

// Client is one websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans template updates out to every connected websocket client.
type Hub struct {
	logger     *logrus.Logger
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	replies    chan reply
	mu         sync.RWMutex
	done       chan struct{}

	// initial message for newly registered clients
	initial func() interface{}
	// handles action messages from clients
	onAction func(id string) error
}

// NewHub creates a hub. initial, if non-nil, supplies the payload sent to a
// client right after it connects. onAction, if non-nil, receives the IDs of
// action messages; its errors are sent back to the requesting client.
func NewHub(initial func() interface{}, onAction func(id string) error, logger *logrus.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		replies:    make(chan reply, 16),
		done:       make(chan struct{}),
		initial:    initial,
		onAction:   onAction,
	}
}

// Run services registrations and broadcasts until ctx is done. All clients
// are dropped on return.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.WithField("total_clients", total).Info("WebSocket client connected")
			h.sendInitial(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.WithField("total_clients", total).Info("WebSocket client disconnected")

		case r := <-h.replies:
			h.mu.Lock()
			if h.clients[r.client] {
				select {
				case r.client.send <- r.payload:
				default:
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow consumer
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) sendInitial(client *Client) {
	if h.initial == nil {
		return
	}
	data, err := json.Marshal(Message{Type: MsgTypeTemplate, Data: h.initial()})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal initial template")
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("Failed to send initial template, client buffer full")
	}
}

// BroadcastMessage queues a typed message for every client. It drops the
// message if the broadcast queue is full.
func (h *Hub) BroadcastMessage(msgType string, data interface{}) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal broadcast message")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("Broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{hub: hub, conn: conn, send: make(chan []byte, 16)}
}

// handleInbound dispatches an action message. Anything else is ignored.
func (c *Client) handleInbound(raw []byte) {
	var msg struct {
		Type string `json:"type"`
		Data string `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Type != MsgTypeAction || c.hub.onAction == nil {
		return
	}
	err := c.hub.onAction(msg.Data)
	if err == nil {
		return
	}
	c.hub.logger.WithError(err).WithField("action", msg.Data).Warn("WebSocket action failed")
	payload, merr := json.Marshal(Message{Type: MsgTypeError, Data: err.Error()})
	if merr != nil {
		return
	}
	select {
	case c.hub.replies <- reply{client: c, payload: payload}:
	case <-c.hub.done:
	}
}

// readPump dispatches inbound action messages and unregisters on close.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleInbound(raw)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
