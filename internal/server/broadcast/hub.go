// Package broadcast implements the live push channel: a hub of websocket
// clients grouped into rooms, with fan-out that can exclude the sender so
// a device never echoes its own actions back to itself.
package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/hlf20010508/transfery/internal/logging"
)

// Room names. Every connected client is in the public room; the private
// room additionally requires a valid certificate.
const (
	RoomPublic  = "public"
	RoomPrivate = "private"
)

// Push event names, mirrored by the web client.
const (
	EventNewItem          = "newItem"
	EventCompleteItem     = "completeItem"
	EventRemoveItem       = "removeItem"
	EventRemoveAll        = "removeAll"
	EventProgress         = "progress"
	EventLeaveRoom        = "leaveRoom"
	EventDevice           = "device"
	EventConnectionNumber = "connectionNumber"
)

// Envelope is the wire frame for push events.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Hub tracks connected clients and their room membership. All methods are
// safe for concurrent use.
type Hub struct {
	log logging.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]struct{}
}

func NewHub(log logging.Logger) *Hub {
	return &Hub{
		log:     log,
		clients: make(map[string]*Client),
		rooms: map[string]map[string]struct{}{
			RoomPublic:  make(map[string]struct{}),
			RoomPrivate: make(map[string]struct{}),
		},
	}
}

// register adds a client to the hub and the public room, then announces the
// new connection count to everyone.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.sid] = c
	h.rooms[RoomPublic][c.sid] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Info(context.Background(), "client connected", "sid", c.sid, "connections", count)
	h.Emit(EventConnectionNumber, count, RoomPublic, "")
}

// unregister removes a client from the hub and every room, then announces
// the new connection count to the remaining clients.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.sid]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.sid)
	for _, members := range h.rooms {
		delete(members, c.sid)
	}
	count := len(h.clients)
	close(c.send)
	h.mu.Unlock()

	h.log.Info(context.Background(), "client disconnected", "sid", c.sid, "connections", count)
	h.Emit(EventConnectionNumber, count, RoomPublic, "")
}

// JoinRoom adds the client with the given sid to a room. Unknown sids and
// rooms are ignored.
func (h *Hub) JoinRoom(sid, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}
	if _, ok := h.clients[sid]; !ok {
		return
	}
	members[sid] = struct{}{}
}

// LeaveRoom removes the client with the given sid from a room.
func (h *Hub) LeaveRoom(sid, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[room]; ok {
		delete(members, sid)
	}
}

// InRoom reports whether the sid is currently a member of the room.
func (h *Hub) InRoom(sid, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[room]
	if !ok {
		return false
	}
	_, ok = members[sid]
	return ok
}

// ConnectionCount returns the number of connected clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Emit sends an event to every member of room except excludeSID. A slow
// client whose send buffer is full is skipped rather than blocking the
// broadcast.
func (h *Hub) Emit(event string, data any, room, excludeSID string) {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.log.Error(context.Background(), "failed to marshal push event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sid := range h.rooms[room] {
		if sid == excludeSID {
			continue
		}
		c, ok := h.clients[sid]
		if !ok {
			continue
		}
		select {
		case c.send <- frame:
		default:
			h.log.Warn(context.Background(), "dropping push event for slow client", "sid", c.sid, "event", event)
		}
	}
}

// newSID returns a fresh socket session id.
func newSID() string {
	return uuid.NewString()
}
