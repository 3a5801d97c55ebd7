package websocket

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/metrics"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// Hub maintains the set of connected panel clients and broadcasts messages
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	logger     *logrus.Logger
	metrics    *metrics.Metrics

	mu    sync.RWMutex
	stats HubStats
}

// HubStats contains hub statistics
type HubStats struct {
	ConnectedClients int       `json:"connected_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessagesSent     int64     `json:"messages_sent"`
	MessagesReceived int64     `json:"messages_received"`
	LastActivity     time.Time `json:"last_activity"`
}

// NewHub creates a new websocket hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
		stats:      HubStats{LastActivity: time.Now()},
	}
}

// SetMetrics attaches Prometheus collectors; call before Run
func (h *Hub) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// Run handles registration, unregistration and broadcasting until the
// process exits
func (h *Hub) Run() {
	h.logger.Info("WebSocket hub started")

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.stats.TotalConnections++
	h.stats.ConnectedClients = len(h.clients)
	h.stats.LastActivity = time.Now()
	connected := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSConnections.Set(float64(connected))
	}
	h.logger.WithFields(logrus.Fields{
		"client_id":         client.ID,
		"connected_clients": connected,
	}).Info("Panel client connected")

	welcome := Message{
		Type: MessageTypeConnection,
		Data: map[string]interface{}{
			"status":    "connected",
			"client_id": client.ID,
		},
	}
	client.send <- welcome.ToJSON()
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.stats.ConnectedClients = len(h.clients)
	h.stats.LastActivity = time.Now()
	connected := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSConnections.Set(float64(connected))
	}
	client.closeSession()
	h.logger.WithFields(logrus.Fields{
		"client_id":         client.ID,
		"connected_clients": connected,
	}).Info("Panel client disconnected")
}

func (h *Hub) broadcastMessage(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			h.mu.Lock()
			h.stats.MessagesSent++
			h.mu.Unlock()
			if h.metrics != nil {
				h.metrics.WSMessagesSent.Inc()
			}
		default:
			slow = append(slow, client)
		}
	}

	// Drop slow clients inline: this runs on the hub goroutine, so sending
	// on h.unregister here would block against our own Run loop.
	for _, client := range slow {
		h.unregisterClient(client)
	}
}

// BroadcastToAll queues a message for every connected client
func (h *Hub) BroadcastToAll(message Message) {
	select {
	case h.broadcast <- message.ToJSON():
	default:
		h.logger.Warn("Broadcast queue full, message dropped")
	}
}

// BroadcastEntityChanges pushes one entity_state_changed frame per changed
// entity and routes the change list into every client's popup session
func (h *Hub) BroadcastEntityChanges(changed []types.EntityID, lookup func(types.EntityID) *types.EntityState) {
	for _, id := range changed {
		data := map[string]interface{}{"entity_id": string(id)}
		if st := lookup(id); st != nil {
			data["state"] = st.State
			data["attributes"] = st.Attributes
			data["last_changed"] = st.LastChanged
		}
		h.BroadcastToAll(Message{Type: MessageTypeEntityStateChanged, Data: data})
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.onEntityChanged(changed)
	}
}

// GetStats returns a copy of the hub statistics
func (h *Hub) GetStats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) messageReceived() {
	h.mu.Lock()
	h.stats.MessagesReceived++
	h.stats.LastActivity = time.Now()
	h.mu.Unlock()
}
