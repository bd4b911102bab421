package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Dashboard may be served from a different origin
	},
}

// Client represents a connected WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Debug("WebSocket client registered")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Debug("WebSocket client unregistered")
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (h *Hub) BroadcastEvent(eventType string, data interface{}) {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logger.Error("Error marshaling WS event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		// Drop rather than block a send loop when nobody is draining.
	}
}

// NotifySendProgress reports one order's outcome during a bulk send run.
func (h *Hub) NotifySendProgress(orderID, state string) {
	h.BroadcastEvent("send_progress", map[string]string{"order_id": orderID, "state": state})
}

// NotifySendComplete reports the aggregate result of a bulk send run.
func (h *Hub) NotifySendComplete(attempted, succeeded, failed int) {
	h.BroadcastEvent("send_complete", map[string]int{
		"attempted": attempted,
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// NotifyOrderUpdate pushes a mutated order to connected dashboards.
func (h *Hub) NotifyOrderUpdate(order models.Order) {
	h.BroadcastEvent("order_update", order)
}

// NotifySweeperFlagged reports an order re-labelled Not Responding.
func (h *Hub) NotifySweeperFlagged(order models.Order) {
	h.BroadcastEvent("sweeper_flagged", order)
}

func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade error", zap.Error(err))
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		// We don't expect messages FROM the client, just heartbeats or nothing.
	}
}

func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
