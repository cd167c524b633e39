package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"legal-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "legalchat:cluster_events"

type Hub struct {
	// Registered clients map: ClientID -> connections (several tabs share one client id)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	// Closed when Run returns so pumps never block on a stopped hub
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out, nil on a single instance
	rdb *redis.Client

	// Stamped on published messages so the subscriber can skip its own
	instanceID string

	logger logger.ILogger
}

type clusterMessage struct {
	Origin         string          `json:"origin"`
	TargetClientID string          `json:"target_client_id"`
	Message        json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		instanceID: uuid.NewString(),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ClientID] = append(h.clients[client.ClientID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ClientID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// Register attaches a connection; it is a no-op once the hub has stopped
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister detaches a connection; it never blocks after the hub has stopped
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops a connection and closes its send channel exactly once.
// The caller holds the write lock.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.ClientID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.ClientID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.ClientID]) == 0 {
		delete(h.clients, client.ClientID)
		h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"client_id": client.ClientID})
	}
}

// SendToClient pushes a typed payload to every connection of the client, here and on other instances
func (h *Hub) SendToClient(clientID, messageType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": messageType,
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode message", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(clientID, data)

	if h.rdb != nil {
		jsonPayload, _ := json.Marshal(clusterMessage{Origin: h.instanceID, TargetClientID: clientID, Message: data})
		if err := h.rdb.Publish(context.Background(), clusterChannel, jsonPayload).Err(); err != nil {
			h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// ConnectionCount is the number of live connections for a client
func (h *Hub) ConnectionCount(clientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[clientID])
}

// deliverLocal sends under the write lock so no channel is closed mid-send
func (h *Hub) deliverLocal(clientID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var slow []*Client
	for _, client := range h.clients[clientID] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	for _, client := range slow {
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"client_id": clientID})
		h.removeLocked(client)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleClusterMessage([]byte(msg.Payload))
	}
}

// handleClusterMessage delivers a message published by another instance.
// Messages from this hub were already delivered by SendToClient.
func (h *Hub) handleClusterMessage(raw []byte) {
	var payload clusterMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.instanceID {
		return
	}
	h.deliverLocal(payload.TargetClientID, payload.Message)
}
