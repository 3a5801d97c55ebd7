package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/popup"
	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionFactory builds the per-client popup session. The client is handed
// in as the fragment sink and transition observer.
type SessionFactory func(sink popup.FragmentSink, onTransition popup.TransitionFunc) *popup.Manager

// Client is one connected panel. Each client owns its popup session: two
// panels can look at different rooms at the same time.
type Client struct {
	ID     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *logrus.Logger
	popups *popup.Manager
}

// HandleWebSocket upgrades an HTTP request into a panel client connection
func HandleWebSocket(hub *Hub, sessions SessionFactory, logger *logrus.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	client := &Client{
		ID:     uuid.New().String(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: logger,
	}
	if sessions != nil {
		client.popups = sessions(client, client.onPopupTransition)
	}

	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// SendMessage queues a message for this client only
func (c *Client) SendMessage(message Message) {
	select {
	case c.send <- message.ToJSON():
	default:
		c.logger.WithField("client_id", c.ID).Warn("Client send queue full, message dropped")
	}
}

// SendFragment implements popup.FragmentSink
func (c *Client) SendFragment(popupID, widget string, payload interface{}) {
	c.SendMessage(Message{
		Type: MessageTypePopupFragment,
		Data: map[string]interface{}{
			"popup_id": popupID,
			"widget":   widget,
			"payload":  payload,
		},
	})
}

func (c *Client) onPopupTransition(popupID string, state popup.State) {
	c.SendMessage(Message{
		Type: MessageTypePopupState,
		Data: map[string]interface{}{
			"popup_id": popupID,
			"state":    string(state),
		},
	})
}

func (c *Client) onEntityChanged(changed []types.EntityID) {
	if c.popups != nil {
		c.popups.OnEntityChanged(changed)
	}
}

func (c *Client) closeSession() {
	if c.popups != nil {
		c.popups.Close()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Error("WebSocket connection error")
			}
			break
		}
		c.hub.messageReceived()
		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
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

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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

func (c *Client) handleMessage(message []byte) {
	var msg Message
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.WithError(err).Error("Failed to unmarshal WebSocket message")
		return
	}

	switch msg.Type {
	case MessageTypeNavigate:
		target, _ := msg.Data["target"].(string)
		if c.popups == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.popups.Navigate(ctx, target); err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"client_id": c.ID,
				"target":    target,
			}).Error("Popup navigation failed")
		}
	case "ping":
		c.SendMessage(Message{
			Type: "pong",
			Data: map[string]interface{}{},
		})
	default:
		c.logger.WithField("message_type", msg.Type).Warn("Unknown WebSocket message type")
	}
}
