package hub

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"linkhub/internal/app/presence"
	"linkhub/internal/pkg/logx"
)

// Hub tracks every open connection, logged in or not, and fans broadcasts out to them.
// Registration and removal are serialized through its Run loop.
type Hub struct {
	// clients holds every open connection.
	clients map[*Client]struct{}

	// mu protects access to the clients map.
	mu sync.RWMutex

	// a channel for connections joining the hub.
	register chan *Client

	// a channel for connections leaving the hub.
	unregister chan *Client

	// used to signal the Hub to stop its Run loop immediately.
	stopChan chan struct{}
	stopOnce sync.Once

	// wg is used to wait for the Run goroutine to finish during shutdown.
	wg sync.WaitGroup

	// structured logger with Hub context.
	logger zerolog.Logger
}

// NewHub constructs a Hub and starts its Run loop.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopChan:   make(chan struct{}),
		logger:     logx.Component("Hub"),
	}

	h.wg.Add(1)
	go h.run()

	return h
}

func (h *Hub) run() {
	defer h.wg.Done()

	h.logger.Info().Msg("Hub loop started.")

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()

			client.logger.Debug().Int("total_connections", total).Msg("Client joined hub.")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.logger.Debug().Int("total_connections", len(h.clients)).Msg("Client left hub.")
			} else {
				h.logger.Debug().Str("conn", client.id).Msg("Ignoring unregister for unknown connection.")
			}
			h.mu.Unlock()

		case <-h.stopChan:
			h.mu.Lock()
			for client := range h.clients {
				client.close()
			}
			h.clients = make(map[*Client]struct{})
			h.mu.Unlock()

			h.logger.Info().Msg("Hub loop stopped.")
			return
		}
	}
}

// Register adds a connection. It reports false once the hub is shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.stopChan:
		return false
	}
}

// Unregister removes a connection. It never blocks after shutdown.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopChan:
	}
}

// BroadcastExcept queues an event on every connection except the given one and returns how
// many accepted it. Connections with a full queue are skipped.
func (h *Hub) BroadcastExcept(except presence.Session, event string, payload any) int {
	messageBytes, err := json.Marshal(NewMessage(event, payload))
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Error marshaling message for broadcast.")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	reached := 0
	for client := range h.clients {
		if presence.Session(client) == except {
			continue
		}
		if client.enqueue(messageBytes) == nil {
			reached++
		}
	}

	return reached
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

// Shutdown closes every connection and stops the Run loop.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down Hub...")

	h.stopOnce.Do(func() { close(h.stopChan) })
	h.wg.Wait()

	h.logger.Info().Msg("Hub shutdown complete.")
}
