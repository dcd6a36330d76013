package redis

import (
	"context"
	"sync"
	"time"

	"livecoder-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// RoomRegistry is a Redis-aware implementation of app.RoomRegistry.
// Notes:
//   - Rooms stay in a local in-memory map because the aggregate carries the
//     per-room mutex and live timers, which cannot cross processes.
//   - Redis marks room liveness so sibling services (and the existence
//     check) can observe which room ids are taken.
//   - True multi-instance routing would pair this with a pub/sub projector.
type RoomRegistry struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	rooms  map[string]*app.Room
}

func NewRoomRegistry(client *redis.Client, ttl time.Duration) *RoomRegistry {
	return &RoomRegistry{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
	}
}

func (s *RoomRegistry) Create(roomID string) *app.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[roomID]; ok {
		return room
	}
	room := app.NewRoom(roomID)
	s.rooms[roomID] = room
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(roomID), "1", s.ttl).Err()
	return room
}

func (s *RoomRegistry) Get(roomID string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

func (s *RoomRegistry) DeleteIfEmpty(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return
	}
	if room.IsEmpty() {
		delete(s.rooms, roomID)
		_ = s.client.Del(context.Background(), s.key(roomID)).Err()
	}
}

func (s *RoomRegistry) key(roomID string) string {
	return "room:live:" + roomID
}
