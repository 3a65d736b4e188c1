package store

import (
	"sync"

	"link-cable/internal/room"
)

// MemoryStore keeps rooms in process memory, listed in the order their codes were first saved.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: map[string]*room.Room{},
	}
}

func (m *MemoryStore) GetRoom(code string) (*room.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	return r, ok
}

// SaveRoom stores r under its code, replacing any room already holding that code.
func (m *MemoryStore) SaveRoom(r *room.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rooms[r.Code]; !exists {
		m.order = append(m.order, r.Code)
	}
	m.rooms[r.Code] = r
}

func (m *MemoryStore) ListRooms() []*room.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*room.Room, 0, len(m.order))
	for _, code := range m.order {
		out = append(out, m.rooms[code])
	}
	return out
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
