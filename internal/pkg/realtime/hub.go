package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Hub maintains the set of active clients and fans events out to the
// clients subscribed to each community channel
type Hub struct {
	// Registered clients organized by community ID
	clients map[int64]map[*Client]bool

	// Channel for events to fan out
	broadcast chan *Event

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Logger for Hub operations
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[int64]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub, handling client registrations and event fan-out
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

// Publish enqueues an event for fan-out to the community channel. It never
// blocks; when the broadcast buffer is full the event is dropped and an
// error is returned for the caller to log.
func (h *Hub) Publish(event *Event) error {
	if event.Channel == "" {
		event.Channel = ChannelForCommunity(event.CommunityID)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case h.broadcast <- event:
		return nil
	default:
		return ErrHubBackpressure
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	communityID := client.communityID
	if _, ok := h.clients[communityID]; !ok {
		h.clients[communityID] = make(map[*Client]bool)
	}
	h.clients[communityID][client] = true

	h.logger.Info().
		Int64("communityID", communityID).
		Int64("profileID", client.profileID).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	communityID := client.communityID
	if _, ok := h.clients[communityID]; ok {
		if _, ok := h.clients[communityID][client]; ok {
			delete(h.clients[communityID], client)
			close(client.send)

			// If no more clients in this community, clean up
			if len(h.clients[communityID]) == 0 {
				delete(h.clients, communityID)
			}

			h.logger.Info().
				Int64("communityID", communityID).
				Int64("profileID", client.profileID).
				Msg("Client unregistered")
		}
	}
}

// fanOut delivers an event to all clients subscribed to its community
func (h *Hub) fanOut(event *Event) {
	h.mu.RLock()

	clients, ok := h.clients[event.CommunityID]
	if !ok {
		h.mu.RUnlock()
		h.logger.Debug().
			Int64("communityID", event.CommunityID).
			Str("type", event.Type).
			Msg("No subscribers for event")
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.mu.RUnlock()
		h.logger.Error().
			Err(err).
			Int64("communityID", event.CommunityID).
			Str("type", event.Type).
			Msg("Failed to marshal event")
		return
	}

	var slow []*Client
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Client's send buffer is full, they might be slow or
			// disconnected. Drop them.
			slow = append(slow, client)
		}
	}
	count := len(clients)
	h.mu.RUnlock()

	for _, client := range slow {
		h.unregisterClient(client)
	}

	h.logger.Debug().
		Int64("communityID", event.CommunityID).
		Str("type", event.Type).
		Int("clientCount", count).
		Msg("Event fanned out")
}

// SubscriberCount returns the number of connected clients for a community
func (h *Hub) SubscriberCount(communityID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.clients[communityID]; ok {
		return len(clients)
	}
	return 0
}
