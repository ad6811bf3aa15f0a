package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-coursebuilder-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Hub tracks live websocket clients keyed by workflow session so step
// events reach every device watching that session. Cross-instance
// delivery rides a redis pub/sub channel.
type Hub struct {
	// SessionID -> connected clients (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
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
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"session_id": client.SessionID,
				"user_id":    client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Session has no more clients", map[string]interface{}{
						"session_id": client.SessionID,
					})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToSession delivers a payload to every client watching one
// session, locally and across instances.
func (h *Hub) SendToSession(sessionID string, data []byte) {
	h.mu.RLock()
	clients, localFound := h.clients[sessionID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
					"session_id": sessionID,
				})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_session_id": sessionID,
			"message":           json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// BroadcastEvent pushes a domain event (course published, session
// ended) to every connected client. Implements the event relay's
// delivery interface.
func (h *Hub) BroadcastEvent(eventType string, payload map[string]interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
	h.mu.RUnlock()

	if h.rdb != nil {
		wrapped := map[string]interface{}{
			"target_session_id": "*",
			"message":           json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(wrapped)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// subscribeToRedis receives fan-out messages published by other
// instances and delivers them to local clients. Messages this instance
// published come back too; duplicate progress events are acceptable,
// deduplicating would need instance ids.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetSessionID string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetSessionID == "*" {
			h.mu.RLock()
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						close(client.Send)
						h.unregister <- client
					}
				}
			}
			h.mu.RUnlock()
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetSessionID]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
