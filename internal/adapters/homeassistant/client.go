package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/dashview-backend-go/internal/core/types"
)

// SnapshotSink receives full-state snapshots as they evolve
type SnapshotSink interface {
	Submit(snapshot map[types.EntityID]*types.EntityState)
}

// Client talks to Home Assistant over REST and its websocket event stream.
// It mirrors the platform's full state map locally and pushes a snapshot to
// the sink on every state_changed event; the diff engine downstream decides
// what actually changed.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
	sink       SnapshotSink

	mu     sync.RWMutex
	states map[types.EntityID]*types.EntityState

	connMu sync.Mutex
	conn   *websocket.Conn

	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a Home Assistant client
func NewClient(baseURL, token string, sink SnapshotSink, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:     logger,
		sink:       sink,
		states:     make(map[types.EntityID]*types.EntityState),
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// GetStates fetches the full entity state list
func (c *Client) GetStates(ctx context.Context) ([]HAState, error) {
	data, err := c.DoRequest(ctx, http.MethodGet, "/api/states", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get states: %w", err)
	}

	var states []HAState
	if err := json.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("failed to parse states response: %w", err)
	}
	return states, nil
}

// CallService issues a service call against the platform
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]interface{}) error {
	path := fmt.Sprintf("/api/services/%s/%s", domain, service)
	if _, err := c.DoRequest(ctx, http.MethodPost, path, data); err != nil {
		return fmt.Errorf("service call %s.%s failed: %w", domain, service, err)
	}
	c.logger.WithFields(logrus.Fields{
		"domain":  domain,
		"service": service,
	}).Debug("Service call completed")
	return nil
}

// DoRequest performs one authenticated REST request with retries on
// transient failures
func (c *Client) DoRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		lastErr = &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// Resync replaces the local state mirror from a full REST fetch and submits
// the fresh snapshot
func (c *Client) Resync(ctx context.Context) error {
	states, err := c.GetStates(ctx)
	if err != nil {
		return err
	}

	fresh := make(map[types.EntityID]*types.EntityState, len(states))
	for i := range states {
		st := states[i].ToEntityState()
		fresh[st.EntityID] = st
	}

	c.mu.Lock()
	c.states = fresh
	c.mu.Unlock()

	c.logger.WithField("entities", len(fresh)).Info("Full state resync completed")
	c.submitSnapshot()
	return nil
}

// Run maintains the websocket subscription until the context ends,
// reconnecting with backoff and resyncing after every reconnect
func (c *Client) Run(ctx context.Context) {
	backoff := time.Second
	for {
		if err := c.connectAndStream(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.WithError(err).Warn("Event stream disconnected, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Client) connectAndStream(ctx context.Context) error {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/websocket"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial failed: %w", err)
	}
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	defer func() {
		conn.Close()
		c.connMu.Lock()
		c.conn = nil
		c.connMu.Unlock()
	}()

	if err := c.authenticate(conn); err != nil {
		return err
	}

	if err := conn.WriteJSON(wsMessage{ID: 1, Type: "subscribe_events", EventType: "state_changed"}); err != nil {
		return fmt.Errorf("failed to subscribe to state changes: %w", err)
	}
	c.logger.Info("Subscribed to state_changed events")

	// the mirror may be stale after a reconnect gap
	if err := c.Resync(ctx); err != nil {
		c.logger.WithError(err).Warn("Post-connect resync failed")
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		c.handleMessage(&msg)
	}
}

func (c *Client) authenticate(conn *websocket.Conn) error {
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("failed to read auth challenge: %w", err)
	}
	if msg.Type != "auth_required" {
		return fmt.Errorf("unexpected handshake message %q", msg.Type)
	}

	if err := conn.WriteJSON(wsMessage{Type: "auth", AccessToken: c.token}); err != nil {
		return fmt.Errorf("failed to send auth: %w", err)
	}

	if err := conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}
	if msg.Type != "auth_ok" {
		return fmt.Errorf("authentication rejected: %s", msg.Type)
	}
	return nil
}

func (c *Client) handleMessage(msg *wsMessage) {
	switch msg.Type {
	case "event":
		if msg.Event == nil || msg.Event.EventType != "state_changed" {
			return
		}
		c.applyStateChange(&msg.Event.Data)
	case "result":
		if msg.Success != nil && !*msg.Success && msg.Error != nil {
			c.logger.WithFields(logrus.Fields{
				"code":    msg.Error.Code,
				"message": msg.Error.Message,
			}).Warn("Websocket command rejected")
		}
	}
}

func (c *Client) applyStateChange(data *wsEventData) {
	id := types.EntityID(data.EntityID)
	if id == "" {
		return
	}

	c.mu.Lock()
	if data.NewState == nil {
		delete(c.states, id)
	} else {
		c.states[id] = data.NewState.ToEntityState()
	}
	c.mu.Unlock()

	c.submitSnapshot()
}

func (c *Client) submitSnapshot() {
	if c.sink == nil {
		return
	}
	c.mu.RLock()
	snapshot := make(map[types.EntityID]*types.EntityState, len(c.states))
	for id, st := range c.states {
		snapshot[id] = st
	}
	c.mu.RUnlock()
	c.sink.Submit(snapshot)
}

// Connected reports whether the event stream is currently up
func (c *Client) Connected() bool {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn != nil
}
