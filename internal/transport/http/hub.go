package http

import (
	"sync"

	"livecoder-service/internal/app"
)

// Hub routes outbound events to the websocket connections of a room's
// participants. It implements app.Notifier; delivery is best-effort and
// never blocks the orchestrator.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]chan app.Event
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[string]chan app.Event)}
}

// Register attaches a participant connection and returns its send channel.
func (h *Hub) Register(roomID, userID string) <-chan app.Event {
	ch := make(chan app.Event, 16)
	h.mu.Lock()
	room, ok := h.rooms[roomID]
	if !ok {
		room = make(map[string]chan app.Event)
		h.rooms[roomID] = room
	}
	if prev, ok := room[userID]; ok {
		close(prev)
	}
	room[userID] = ch
	h.mu.Unlock()
	return ch
}

// Unregister detaches a participant connection, closing its channel.
func (h *Hub) Unregister(roomID, userID string, ch <-chan app.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	// A reconnect may already have replaced the channel; only drop our own.
	if cur, ok := room[userID]; ok && (<-chan app.Event)(cur) == ch {
		close(cur)
		delete(room, userID)
	}
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) ToRoom(roomID string, event app.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.rooms[roomID] {
		deliver(ch, event)
	}
}

func (h *Hub) ToParticipant(roomID, userID string, event app.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if ch, ok := h.rooms[roomID][userID]; ok {
		deliver(ch, event)
	}
}

// ToRoomExcept fans an event out to everyone in the room but the sender.
// Used for relays like editor code sync, which never echo to the origin.
func (h *Hub) ToRoomExcept(roomID, exceptUserID string, event app.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID, ch := range h.rooms[roomID] {
		if userID == exceptUserID {
			continue
		}
		deliver(ch, event)
	}
}

// deliver drops the oldest queued event when a slow client fills its buffer
// so broadcasts never block the room's event handling.
func deliver(ch chan app.Event, event app.Event) {
	select {
	case ch <- event:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- event:
		default:
		}
	}
}
