package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-blueprint-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Hub routes live progress updates to websocket clients. Clients are keyed
// by the generation request id they are watching; several clients (tabs,
// devices) may watch the same request.
type Hub struct {
	// Registered clients map: RequestID -> watchers
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance relay: the pipeline goroutine
	// may run on another instance than the one holding the socket.
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

const clusterChannel = "progress_events"

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
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.RequestID] = append(h.clients[client.RequestID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"request_id": client.RequestID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.RequestID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.RequestID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.RequestID]) == 0 {
					delete(h.clients, client.RequestID)
					h.logger.Info("Hub", "Last watcher unregistered", map[string]interface{}{"request_id": client.RequestID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastProgress (service.ProgressDelivery interface implementation)
// sends a progress payload to every local watcher of requestId and relays
// it to other instances through Redis.
func (h *Hub) BroadcastProgress(requestId string, payload []byte) {
	h.deliverLocal(requestId, payload)

	if h.rdb != nil {
		relay, _ := json.Marshal(map[string]interface{}{
			"target_request_id": requestId,
			"message":           json.RawMessage(payload),
		})
		h.rdb.Publish(context.Background(), clusterChannel, relay)
	}
}

func (h *Hub) deliverLocal(requestId string, payload []byte) {
	var slow []*Client

	// The read lock stays held across the sends: Run closes Send under the
	// write lock, so a channel can never be closed mid-broadcast.
	h.mu.RLock()
	for _, client := range h.clients[requestId] {
		select {
		case client.Send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// Unregister after releasing the lock; Run needs the write lock to
	// process it. Re-queuing an already removed client is a no-op there.
	for _, client := range slow {
		h.logger.Warn("Hub", "Client Send buffer full, dropping watcher", map[string]interface{}{"request_id": requestId})
		h.unregister <- client
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the shared progress channel and
	// delivers to whichever watchers it holds locally.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetRequestID string          `json:"target_request_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.deliverLocal(payload.TargetRequestID, payload.Message)
	}
}
