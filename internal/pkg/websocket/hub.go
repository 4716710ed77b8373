package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/volunteerhub/internal/pkg/email"
)

// Event types pushed to connected users
const (
	EventApplicationDecided = "application.decided"
)

// Event is a message sent over WebSocket to one user
type Event struct {
	Type             string    `json:"type"`
	ApplicationID    int64     `json:"applicationId,omitempty"`
	OpportunityID    int64     `json:"opportunityId,omitempty"`
	OpportunityTitle string    `json:"opportunityTitle,omitempty"`
	Status           string    `json:"status,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

type delivery struct {
	userID int64
	data   []byte
}

// Hub keeps the live connections of each user and delivers events to them
type Hub struct {
	// Registered clients organized by user ID. One user may have several tabs open.
	clients map[int64]map[*Client]bool

	deliver    chan delivery
	register   chan *Client
	unregister chan *Client
	// closed when Run returns
	done chan struct{}

	// guards clients for ClientCount
	mu sync.RWMutex

	logger zerolog.Logger
	now    func() time.Time
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		deliver:    make(chan delivery, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "websocket").Logger(),
		now:        time.Now,
	}
}

// Run handles registrations and deliveries until ctx is cancelled, then
// closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case d := <-h.deliver:
			h.deliverToUser(d)

		case <-ctx.Done():
			h.closeAll()
			return
		}
	}
}

// attach hands client to Run. It reports false once the hub has stopped.
func (h *Hub) attach(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// detach hands client back to Run for removal
func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug().Int64("userID", client.userID).Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Debug().Int64("userID", client.userID).Msg("Client unregistered")
}

func (h *Hub) deliverToUser(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[d.userID]
	if !ok {
		h.logger.Debug().Int64("userID", d.userID).Msg("No live connection for user")
		return
	}

	for client := range clients {
		select {
		case client.send <- d.data:
		default:
			// slow consumer, drop the connection
			delete(clients, client)
			close(client.send)
		}
	}
	if len(clients) == 0 {
		delete(h.clients, d.userID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for client := range clients {
			close(client.send)
		}
		delete(h.clients, userID)
	}
}

// Publish queues event for every live connection of userID. It never blocks
// the caller: when the queue is full the event is dropped.
func (h *Hub) Publish(userID int64, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = h.now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event")
		return
	}

	select {
	case h.deliver <- delivery{userID: userID, data: data}:
	default:
		h.logger.Warn().Int64("userID", userID).Str("type", event.Type).Msg("Event queue full, dropping event")
	}
}

// ClientCount returns the number of live connections of a user
func (h *Hub) ClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SendApplicationDecision pushes the decision to the volunteer's open sessions
func (h *Hub) SendApplicationDecision(_ context.Context, msg email.DecisionMessage) error {
	status := "rejected"
	if msg.Approved {
		status = "approved"
	}
	h.Publish(msg.VolunteerID, Event{
		Type:             EventApplicationDecided,
		ApplicationID:    msg.ApplicationID,
		OpportunityID:    msg.OpportunityID,
		OpportunityTitle: msg.OpportunityTitle,
		Status:           status,
	})
	return nil
}

var _ email.Notifier = (*Hub)(nil)
