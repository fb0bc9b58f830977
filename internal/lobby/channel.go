package lobby

import (
	"sort"
	"sync"

	"github.com/kongor-lobby/masterserver/internal/codec"
)

// Channel holds the rooms created under one channel. Room IDs are
// allocated from a single monotonic counter per channel so they stay
// small and collision-free without needing a global allocator.
type Channel struct {
	Index uint16
	Name  string

	mu         sync.Mutex
	rooms      map[uint32]*Room
	nextRoomID uint32
}

func NewChannel(index uint16, name string) *Channel {
	return &Channel{
		Index:      index,
		Name:       name,
		rooms:      make(map[uint32]*Room),
		nextRoomID: 1,
	}
}

// CreateRoom allocates a fresh room ID and registers the room under it.
func (c *Channel) CreateRoom(name string, settings codec.RoomSettings) *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextRoomID
	c.nextRoomID++
	room := NewRoom(id, uint32(c.Index), name, settings)
	c.rooms[id] = room
	return room
}

func (c *Channel) GetRoom(roomID uint32) (*Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[roomID]
	return r, ok
}

// RemoveRoomIfEmpty garbage-collects a room once its last member leaves.
// It re-checks emptiness under the channel's lock so a join racing a
// departure can never be dropped on the floor.
func (c *Channel) RemoveRoomIfEmpty(roomID uint32) (removed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms[roomID]
	if !ok {
		return false
	}
	if r.MemberCount() > 0 {
		return false
	}
	delete(c.rooms, roomID)
	return true
}

// RoomCount returns the number of open rooms, for the channel-list
// enumeration browsers use to pick a channel.
func (c *Channel) RoomCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rooms)
}

// ListRooms returns a summary of every open room in join order (by ID,
// which is allocation order).
func (c *Channel) ListRooms() []codec.RoomSummary {
	rooms := c.Rooms()
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	out := make([]codec.RoomSummary, len(rooms))
	for i, r := range rooms {
		out[i] = r.Summary()
	}
	return out
}

// Rooms returns a snapshot of every open *Room, for callers (the CLI's
// channel-wide broadcast) that need to act on the rooms themselves rather
// than their summaries.
func (c *Channel) Rooms() []*Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		out = append(out, r)
	}
	return out
}
