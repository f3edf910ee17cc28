package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"voice-meditation-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisChannel = "call_events"

// Hub fans provider call events out to connected browsers. Connections are
// keyed by user id so a user can watch from several devices.
type Hub struct {
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fanout; nil means single instance.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// redisFrame carries an event between instances, keeping the owner so the
// receiving side can scope delivery.
type redisFrame struct {
	UserID    uuid.UUID       `json:"user_id"`
	EventType string          `json:"type"`
	Data      json.RawMessage `json:"data"`
}

// BroadcastEventTo sends a call event to the owning user's connections
// only. With Redis configured the event goes through the channel so every
// instance (this one included) delivers it once; without Redis it is
// delivered directly.
func (h *Hub) BroadcastEventTo(userID uuid.UUID, eventType string, data json.RawMessage) {
	if h.rdb != nil {
		fanout, _ := json.Marshal(redisFrame{UserID: userID, EventType: eventType, Data: data})
		h.rdb.Publish(context.Background(), redisChannel, fanout)
		return
	}

	h.deliverLocal(userID, clientFrame(eventType, data))
}

func clientFrame(eventType string, data json.RawMessage) []byte {
	payload, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
	})
	return payload
}

func (h *Hub) deliverLocal(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping connection", map[string]interface{}{"user_id": client.UserID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var frame redisFrame
		if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
			h.logger.Warn("Hub", "Dropping malformed fanout frame", map[string]interface{}{"error": err.Error()})
			continue
		}
		h.deliverLocal(frame.UserID, clientFrame(frame.EventType, frame.Data))
	}
	log.Printf("Redis subscription for %s closed", redisChannel)
}
