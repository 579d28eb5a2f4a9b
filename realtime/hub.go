package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Hub tracks live WebSocket connections and their room memberships, and
// fans persisted-mutation updates out to the subscribers of an event's room.
//
// Rooms are implicit: a room springs into existence on the first join and
// vanishes when its last subscriber leaves or disconnects. Registry state is
// in-memory and process-local; after a restart clients are expected to
// reconnect and rejoin. There is no replay of updates missed while
// disconnected; a reconnecting client resumes from whatever state it has
// cached.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	mu      sync.RWMutex

	logger *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

var _ Broadcaster = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger.With(slog.String("component", "realtime_hub")),
		done:       make(chan struct{}),
	}
}

// RoomKey derives the broadcast room key for an event.
func RoomKey(eventID int) string {
	return fmt.Sprintf("event-%d", eventID)
}

// Run processes connection lifecycle events. Must be started as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		case <-h.done:
			h.closeAllClients()
			return
		}
	}
}

// Shutdown stops the run loop and closes every connected client. Safe to
// call more than once.
func (h *Hub) Shutdown() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

// Emit delivers an UpdateEvent to every connection currently subscribed to
// the event's room. The subscriber set is snapshotted at emission time; a
// connection joining afterwards does not receive the message. Sends are
// fire-and-forget: a subscriber with a full buffer is skipped, never waited
// on, so a stalled client degrades only its own delivery.
func (h *Hub) Emit(eventID int, kind UpdateKind, payload interface{}) {
	message := UpdateEvent{
		Type:      kind,
		EventID:   eventID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal update event",
			slog.String("kind", string(kind)),
			slog.Int("event_id", eventID),
			slog.Any("error", err),
		)
		return
	}

	h.mu.RLock()
	room := h.rooms[RoomKey(eventID)]
	subscribers := make([]*Client, 0, len(room))
	for client := range room {
		subscribers = append(subscribers, client)
	}
	h.mu.RUnlock()

	for _, client := range subscribers {
		if !client.trySend(data) {
			h.logger.Warn("subscriber unreachable, dropping update",
				slog.String("room", RoomKey(eventID)),
				slog.String("kind", string(kind)),
			)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected", slog.Int("total_clients", total))
}

// unregisterClient removes the client and all its subscriptions. Idempotent:
// a second unregister of the same client is a no-op.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)

	for key, room := range h.rooms {
		if room[client] {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, key)
			}
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	client.closeSend()
	h.logger.Info("client disconnected", slog.Int("total_clients", total))
}

// joinRoom subscribes the client to an event's room and acknowledges the
// join to that client. Joining an already-joined room is a no-op beyond the
// acknowledgment.
func (h *Hub) joinRoom(client *Client, eventID int) {
	key := RoomKey(eventID)

	h.mu.Lock()
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*Client]bool)
	}
	h.rooms[key][client] = true
	subscribers := len(h.rooms[key])
	h.mu.Unlock()

	if ack, err := json.Marshal(joinedEvent{Type: msgJoinedEvent, EventID: eventID, Room: key}); err == nil {
		client.trySend(ack)
	}

	h.logger.Debug("client joined room",
		slog.String("room", key),
		slog.Int("subscribers", subscribers),
	)
}

// leaveRoom unsubscribes the client from an event's room; leaving a room
// the client never joined is a no-op.
func (h *Hub) leaveRoom(client *Client, eventID int) {
	key := RoomKey(eventID)

	h.mu.Lock()
	if room, ok := h.rooms[key]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, key)
		}
	}
	h.mu.Unlock()

	h.logger.Debug("client left room", slog.String("room", key))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)
	h.mu.Unlock()

	for _, client := range clients {
		client.closeSend()
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSubscribers reports the number of connections subscribed to an
// event's room. A missing room counts as zero.
func (h *Hub) RoomSubscribers(eventID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[RoomKey(eventID)])
}
