// internal/websocket/hub.go
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StageChangeEvent is pushed to connected dashboards after a transition has
// committed. The transition engine itself never pushes; the HTTP handler
// publishes here once the write is durable.
type StageChangeEvent struct {
	LeadID    string    `json:"lead_id"`
	FromStage string    `json:"from_stage"`
	ToStage   string    `json:"to_stage"`
	ActorID   int64     `json:"actor_id"`
	At        time.Time `json:"at"`
}

type envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub fans committed pipeline events out to connected board clients, scoped
// per organization.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}

	logger *zap.Logger
}

type outbound struct {
	orgID int64
	data  []byte
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the client registry until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			// Unblocks pumps still waiting in add/drop.
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.orgID] == nil {
				h.clients[client.orgID] = make(map[*Client]bool)
			}
			h.clients[client.orgID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.orgID]; ok {
				if set[client] {
					delete(set, client)
					close(client.send)
				}
				if len(set) == 0 {
					delete(h.clients, client.orgID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients[msg.orgID] {
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer; drop rather than block the hub.
				}
			}
			h.mu.RUnlock()
		}
	}
}

// add registers a client; a no-op once the hub has shut down.
func (h *Hub) add(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// drop deregisters a client; safe to call after the hub has shut down.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// BroadcastStageChange notifies every board client of the organization.
func (h *Hub) BroadcastStageChange(orgID int64, ev StageChangeEvent) {
	data, err := json.Marshal(envelope{Type: "stage_change", Payload: ev})
	if err != nil {
		h.logger.Error("failed to encode stage change event", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- outbound{orgID: orgID, data: data}:
	default:
		h.logger.Warn("broadcast queue full, dropping stage change event",
			zap.String("lead_id", ev.LeadID),
		)
	}
}

// Stats reports connected client counts per organization.
func (h *Hub) Stats() map[int64]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[int64]int, len(h.clients))
	for orgID, set := range h.clients {
		stats[orgID] = len(set)
	}
	return stats
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, set := range h.clients {
		for client := range set {
			close(client.send)
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}
