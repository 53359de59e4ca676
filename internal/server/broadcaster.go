package server

import (
	"sync"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
)

// Broadcaster fans events out to named rooms: one per table, one per
// tournament, one per matchmaking queue. Within a room, messages published by
// a single actor keep their order because delivery goes straight onto each
// socket's FIFO send queue with no intermediate goroutine.
type Broadcaster struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]bool // room -> userIDs
	registry *ConnectionRegistry
}

// NewBroadcaster creates a broadcaster over the registry
func NewBroadcaster(registry *ConnectionRegistry) *Broadcaster {
	return &Broadcaster{
		rooms:    make(map[string]map[string]bool),
		registry: registry,
	}
}

// JoinRoom subscribes userID to room. Joining twice is a no-op.
func (b *Broadcaster) JoinRoom(userID, room string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rooms[room] == nil {
		b.rooms[room] = make(map[string]bool)
	}
	b.rooms[room][userID] = true
}

// LeaveRoom unsubscribes userID from room
func (b *Broadcaster) LeaveRoom(userID, room string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if members, ok := b.rooms[room]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(b.rooms, room)
		}
	}
}

// LeaveAll unsubscribes userID everywhere, e.g. when presence ends
func (b *Broadcaster) LeaveAll(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for room, members := range b.rooms {
		delete(members, userID)
		if len(members) == 0 {
			delete(b.rooms, room)
		}
	}
}

// CloseRoom drops the room and all its memberships
func (b *Broadcaster) CloseRoom(room string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.rooms, room)
}

// Publish delivers msg to every member of room
func (b *Broadcaster) Publish(room string, msg *protocol.Message) {
	b.mu.RLock()
	members := make([]string, 0, len(b.rooms[room]))
	for userID := range b.rooms[room] {
		members = append(members, userID)
	}
	b.mu.RUnlock()
	for _, userID := range members {
		b.registry.Send(userID, msg)
	}
}

// PublishTo delivers msg to one user's sockets
func (b *Broadcaster) PublishTo(userID string, msg *protocol.Message) {
	b.registry.Send(userID, msg)
}
