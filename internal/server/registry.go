package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
)

// ConnectionRegistry tracks which sockets belong to which user. A user may
// hold several sockets (tabs); presence ends only when the last one closes.
type ConnectionRegistry struct {
	mu       sync.RWMutex
	byUser   map[string]map[*Connection]bool
	lastSeen map[string]time.Time
	logger   *log.Logger

	// onLastClosed fires outside the registry lock when a user's final
	// socket disappears
	onLastClosed func(userID string)
}

// NewConnectionRegistry creates an empty registry
func NewConnectionRegistry(logger *log.Logger) *ConnectionRegistry {
	return &ConnectionRegistry{
		byUser:   make(map[string]map[*Connection]bool),
		lastSeen: make(map[string]time.Time),
		logger:   logger.WithPrefix("registry"),
	}
}

// OnLastSocketClosed registers the disconnect callback
func (r *ConnectionRegistry) OnLastSocketClosed(fn func(userID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onLastClosed = fn
}

// Add registers a socket for userID
func (r *ConnectionRegistry) Add(userID string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byUser[userID] == nil {
		r.byUser[userID] = make(map[*Connection]bool)
	}
	r.byUser[userID][conn] = true
	r.lastSeen[userID] = time.Now()
	r.logger.Debug("socket registered", "userId", userID, "sockets", len(r.byUser[userID]))
}

// Remove deregisters a socket; closing a user's last socket triggers the
// disconnect callback.
func (r *ConnectionRegistry) Remove(userID string, conn *Connection) {
	r.mu.Lock()
	sockets, ok := r.byUser[userID]
	if ok {
		delete(sockets, conn)
		if len(sockets) == 0 {
			delete(r.byUser, userID)
		}
	}
	last := ok && len(sockets) == 0
	r.lastSeen[userID] = time.Now()
	fn := r.onLastClosed
	r.mu.Unlock()

	if last {
		r.logger.Debug("last socket closed", "userId", userID)
		if fn != nil {
			fn(userID)
		}
	}
}

// Online reports whether userID has at least one open socket
func (r *ConnectionRegistry) Online(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

// LastSeen returns the time of userID's most recent register/deregister
func (r *ConnectionRegistry) LastSeen(userID string) (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.lastSeen[userID]
	return t, ok
}

// Send delivers a message to every socket userID holds
func (r *ConnectionRegistry) Send(userID string, msg *protocol.Message) {
	r.mu.RLock()
	sockets := make([]*Connection, 0, len(r.byUser[userID]))
	for conn := range r.byUser[userID] {
		sockets = append(sockets, conn)
	}
	r.mu.RUnlock()
	for _, conn := range sockets {
		_ = conn.SendMessage(msg)
	}
}
