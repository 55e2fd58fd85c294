package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/revista/internal/logger"
	"github.com/abrezinsky/revista/internal/models"
	"github.com/abrezinsky/revista/internal/services"
	"github.com/abrezinsky/revista/pkg/scoring"
)

// Message types pushed to dashboard clients
const (
	MsgStats            = "stats"
	MsgInspectionScored = "inspection_scored"
	MsgInspectionStatus = "inspection_status"
	MsgCatalogSynced    = "catalog_synced"
	MsgSchemaReloaded   = "schema_reloaded"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from the same host
	},
}

// StatsSource provides the dashboard counters sent to new clients
type StatsSource interface {
	Stats(ctx context.Context) (map[string]interface{}, error)
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	stats      StatsSource
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, stats StatsSource) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stats:      stats,
	}
}

// Ensure Hub implements services.Broadcaster
var _ services.Broadcaster = (*Hub)(nil)

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)

			// Greet the new client with the current counters
			go func() {
				stats, err := h.stats.Stats(context.Background())
				if err != nil {
					h.log.Warn("Could not load stats for new client", "error", err)
					return
				}
				select {
				case client.send <- models.WSMessage{Type: MsgStats, Payload: stats}:
				default:
				}
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- models.WSMessage{
		Type:    msgType,
		Payload: payload,
	}
}

// BroadcastInspectionScored implements services.Broadcaster
func (h *Hub) BroadcastInspectionScored(id int, folio string, result scoring.Result) {
	h.BroadcastMessage(MsgInspectionScored, map[string]interface{}{
		"id":                   id,
		"folio":                folio,
		"result":               result,
		"classification_label": result.Classification.Label(),
		"normalized":           result.Normalized(),
	})
}

// BroadcastInspectionStatus implements services.Broadcaster
func (h *Hub) BroadcastInspectionStatus(id int, folio, status string) {
	h.BroadcastMessage(MsgInspectionStatus, map[string]interface{}{
		"id":     id,
		"folio":  folio,
		"status": status,
	})
}

// BroadcastCatalogSynced implements services.Broadcaster
func (h *Hub) BroadcastCatalogSynced(characteristics int) {
	h.BroadcastMessage(MsgCatalogSynced, map[string]interface{}{
		"characteristics": characteristics,
	})
}

// BroadcastSchemaReloaded tells open inspection forms to refetch the schema
func (h *Hub) BroadcastSchemaReloaded(name string, version int) {
	h.BroadcastMessage(MsgSchemaReloaded, map[string]interface{}{
		"name":    name,
		"version": version,
	})
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// StartStatsTicker pushes fresh dashboard counters every interval while clients
// are connected, until ctx is cancelled.
func (h *Hub) StartStatsTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Stats ticker stopped")
			return
		case <-ticker.C:
			if h.ClientCount() == 0 {
				continue
			}
			stats, err := h.stats.Stats(ctx)
			if err != nil {
				h.log.Warn("Could not refresh stats", "error", err)
				continue
			}
			h.BroadcastMessage(MsgStats, stats)
		}
	}
}
