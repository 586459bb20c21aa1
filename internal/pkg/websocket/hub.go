package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// broadcastBuffer bounds the queue between vote handlers and the hub.
const broadcastBuffer = 256

// Hub maintains the set of active clients per poll and fans tallies out to them
type Hub struct {
	// Registered clients organized by poll ID
	clients map[int64]map[*Client]bool

	// Encoded messages waiting to be sent to a poll's clients
	broadcast chan pollMessage

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed once Run has returned
	done chan struct{}

	// Guards clients for ClientCount; the Run goroutine is the only writer
	mu sync.RWMutex

	logger zerolog.Logger
}

type pollMessage struct {
	pollID int64
	data   []byte
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan pollMessage, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles registrations and broadcasts until ctx is cancelled, then
// disconnects every client. Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// join hands client to the Run loop. It reports false once the hub has
// stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave hands client back to the Run loop. After shutdown closeAll has
// already released it.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.pollID]; !ok {
		h.clients[client.pollID] = make(map[*Client]bool)
	}
	h.clients[client.pollID][client] = true

	h.logger.Debug().
		Int64("pollID", client.pollID).
		Int64("userID", client.userID).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.pollID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.pollID)
	}

	h.logger.Debug().
		Int64("pollID", client.pollID).
		Int64("userID", client.userID).
		Msg("Client unregistered")
}

// broadcastMessage sends msg to every client of its poll. A client whose
// buffer is full is dropped on the spot.
func (h *Hub) broadcastMessage(msg pollMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.clients[msg.pollID]
	for client := range clients {
		select {
		case client.send <- msg.data:
		default:
			h.logger.Warn().
				Int64("pollID", msg.pollID).
				Int64("userID", client.userID).
				Msg("Dropping slow websocket client")
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Broadcast queues payload for the clients watching pollID. It never blocks:
// when the queue is full the message is dropped and a warning logged.
func (h *Hub) Broadcast(pollID int64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Int64("pollID", pollID).Msg("Failed to marshal message for broadcast")
		return
	}

	select {
	case h.broadcast <- pollMessage{pollID: pollID, data: data}:
	default:
		h.logger.Warn().Int64("pollID", pollID).Msg("Broadcast queue full, dropping tally")
	}
}

// ClientCount returns the number of connected clients for a poll
func (h *Hub) ClientCount(pollID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[pollID])
}
