package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Phantasm0009/search-party/internal/domain"
)

// Rooms is the process-wide room registry. It is constructed once at startup
// and injected into the event router and the REST handlers; there is no
// package-level room table.
//
// Rooms and their history live in memory only. Instead of growing without
// bound, the registry enforces a capacity and evicts rooms that have been
// idle past the expiry, skipping rooms that still have connected members.
type Rooms struct {
	rooms      map[string]*domain.Room
	lastAccess map[string]time.Time
	capacity   uint
	idleExpiry time.Duration
	mu         sync.RWMutex
}

func NewRooms(capacity uint, idleExpiry time.Duration) *Rooms {
	if capacity == 0 {
		capacity = 500
	}
	if idleExpiry == 0 {
		idleExpiry = 12 * time.Hour
	}

	return &Rooms{
		rooms:      make(map[string]*domain.Room),
		lastAccess: make(map[string]time.Time),
		capacity:   capacity,
		idleExpiry: idleExpiry,
	}
}

func (r *Rooms) touch(roomID string) {
	r.lastAccess[roomID] = time.Now()
}

func (r *Rooms) evictIdle() {
	cutoff := time.Now().Add(-r.idleExpiry)
	for id, last := range r.lastAccess {
		if !last.Before(cutoff) {
			continue
		}
		if room, exists := r.rooms[id]; exists && room.ParticipantCount() > 0 {
			continue
		}
		delete(r.rooms, id)
		delete(r.lastAccess, id)
	}
}

// enforceCapacity drops the oldest-accessed empty rooms until the registry
// fits.
func (r *Rooms) enforceCapacity() {
	for uint(len(r.rooms)) > r.capacity {
		var oldestID string
		var oldest time.Time
		for id, last := range r.lastAccess {
			if room, exists := r.rooms[id]; exists && room.ParticipantCount() > 0 {
				continue
			}
			if oldestID == "" || last.Before(oldest) {
				oldestID = id
				oldest = last
			}
		}
		if oldestID == "" {
			return
		}
		delete(r.rooms, oldestID)
		delete(r.lastAccess, oldestID)
	}
}

func (r *Rooms) Create(ctx context.Context, room *domain.Room) error {
	if room == nil || room.ID == "" {
		return domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictIdle()

	if _, exists := r.rooms[room.ID]; exists {
		return domain.ErrRoomAlreadyExists
	}

	r.rooms[room.ID] = room
	r.touch(room.ID)
	r.enforceCapacity()

	return nil
}

// GetByID returns a room and refreshes its access time.
func (r *Rooms) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	// One lock for lookup and touch; releasing in between would let a
	// concurrent Create evict the room before the touch lands.
	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[id]
	if !exists {
		return nil, domain.ErrRoomNotFound
	}
	r.touch(id)

	return room, nil
}

func (r *Rooms) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}
