// Package websocket pushes vector store build notifications to the browser tabs of the user
// whose documents were ingested. With Redis configured, every API instance receives every
// notification and delivers it to its own connections.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/PinsaraPerera/intellihack-backend/internal/pkg/logger"
	"github.com/PinsaraPerera/intellihack-backend/pkg/events"

	"github.com/redis/go-redis/v9"
)

const (
	hubModule = "WS_HUB"
	// ClusterChannel is the Redis channel instances relay notifications through.
	ClusterChannel = "vectorstore_notifications"
)

// Notification is what a client receives.
type Notification struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type clusterMessage struct {
	User    string          `json:"user"`
	Message json.RawMessage `json:"message"`
}

type Hub struct {
	// username -> live connections (multi-tab)
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	rdb    *redis.Client
	logger logger.ILogger
}

var _ events.Publisher = (*Hub)(nil)

// NewHub creates a hub. rdb may be nil for a single-instance deployment.
func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		logger:     log,
	}
}

// Start subscribes to the cluster channel (when Redis is configured) and runs the registration
// loop until ctx is cancelled. The subscription is confirmed before Start returns.
func (h *Hub) Start(ctx context.Context) error {
	if h.rdb != nil {
		sub := h.rdb.Subscribe(ctx, ClusterChannel)
		if _, err := sub.Receive(ctx); err != nil {
			_ = sub.Close()
			return fmt.Errorf("subscribe %s: %w", ClusterChannel, err)
		}
		go h.relay(ctx, sub)
	}
	go h.run(ctx)
	return nil
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			if h.clients[c.username] == nil {
				h.clients[c.username] = make(map[*Client]struct{})
			}
			h.clients[c.username][c] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug(hubModule, "Client registered", map[string]interface{}{"username": c.username})
		case c := <-h.unregister:
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[c.username]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	close(c.send)
	if len(conns) == 0 {
		delete(h.clients, c.username)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for user, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
		delete(h.clients, user)
	}
}

// Register adds a client. A client registered after shutdown gets a closed send buffer.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Unregister removes a client and closes its send buffer.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Connections reports how many clients the user has on this instance.
func (h *Hub) Connections(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[username])
}

// Publish delivers a vector store event to the user named in its payload. With Redis the message
// goes through the cluster channel only, so this instance receives it like every other one.
func (h *Hub) Publish(ctx context.Context, event events.Event) error {
	user, _ := event.Payload()["user"].(string)
	if user == "" {
		return nil
	}
	data, err := json.Marshal(Notification{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	})
	if err != nil {
		return err
	}

	if h.rdb == nil {
		h.deliver(user, data)
		return nil
	}
	payload, err := json.Marshal(clusterMessage{User: user, Message: data})
	if err != nil {
		return err
	}
	return h.rdb.Publish(ctx, ClusterChannel, payload).Err()
}

func (h *Hub) relay(ctx context.Context, sub *redis.PubSub) {
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var cm clusterMessage
			if err := json.Unmarshal([]byte(msg.Payload), &cm); err != nil {
				h.logger.Warn(hubModule, "Dropping malformed cluster message", map[string]interface{}{"error": err.Error()})
				continue
			}
			h.deliver(cm.User, cm.Message)
		}
	}
}

// deliver never blocks: a client whose buffer is full is dropped.
func (h *Hub) deliver(user string, data []byte) {
	var slow []*Client
	h.mu.RLock()
	for c := range h.clients[user] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn(hubModule, "Client send buffer full, dropping connection", map[string]interface{}{"username": user})
		h.remove(c)
	}
}
