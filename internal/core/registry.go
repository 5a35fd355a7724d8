package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dokojong/server/internal/domain"
)

// Registry lazily creates rooms and keeps them for the process lifetime.
// Rooms are never evicted.
type Registry struct {
	mu        sync.RWMutex
	rooms     map[domain.RoomID]*Room
	seatCount int
}

func NewRegistry(seatCount int) *Registry {
	return &Registry{
		rooms:     make(map[domain.RoomID]*Room),
		seatCount: seatCount,
	}
}

// GetOrCreate is idempotent: a construction race between first-access
// connections yields exactly one surviving room per identifier.
func (g *Registry) GetOrCreate(id domain.RoomID) *Room {
	g.mu.RLock()
	room, ok := g.rooms[id]
	g.mu.RUnlock()
	if ok {
		return room
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if room, ok = g.rooms[id]; ok {
		return room
	}
	room = NewRoom(id, g.seatCount)
	g.rooms[id] = room
	log.Info().Str("module", "core.registry").Str("room", string(id)).
		Int("total", len(g.rooms)).Msg("room created")
	return room
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
