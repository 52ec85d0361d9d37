package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"browser-connector-be/internal/pkg/logger"
	"browser-connector-be/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// VizStatus is the frame streamed to extension clients while a long-running
// job works through a recording.
type VizStatus struct {
	Type    string `json:"type"`
	Phase   string `json:"phase"`
	Message string `json:"message"`
}

func NewVizStatus(phase, message string) VizStatus {
	return VizStatus{Type: "viz-status", Phase: phase, Message: message}
}

// CaptureEvent relays a bus event to extension clients. Clients that only
// understand viz-status frames ignore it by type.
type CaptureEvent struct {
	Type  string                 `json:"type"`
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

const redisChannel = "connector_status_events"

type Hub struct {
	// Registered clients map: ClientID -> Client. Extension clients are
	// anonymous; every connected one gets every status frame.
	clients map[uuid.UUID]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance broadcast
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]*Client),
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
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ID})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"client_id": client.ID})
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastStatus sends a viz-status frame to every connected client and
// mirrors it to Redis for other instances.
func (h *Hub) BroadcastStatus(status VizStatus) {
	data, _ := json.Marshal(status)

	h.deliver(data)

	if h.rdb != nil {
		h.rdb.Publish(context.Background(), redisChannel, data)
	}
}

// BroadcastEvent relays a capture bus event to every connected client and
// mirrors it to Redis for other instances.
func (h *Hub) BroadcastEvent(event events.Event) {
	frame := CaptureEvent{Type: "capture-event", Event: event.EventType(), Data: event.Payload()}
	data, _ := json.Marshal(frame)

	h.deliver(data)

	if h.rdb != nil {
		h.rdb.Publish(context.Background(), redisChannel, data)
	}
}

// ClientCount reports how many extension clients are attached.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.deliver([]byte(msg.Payload))
	}
	log.Println("Redis status subscription closed")
}

// deliver fans a frame out to local clients. Clients with a full send buffer
// are queued for unregistration instead of blocking the broadcast.
func (h *Hub) deliver(data []byte) {
	var stale []*Client

	h.mu.RLock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping", map[string]interface{}{"client_id": client.ID})
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		go func(c *Client) { h.unregister <- c }(client)
	}
}
