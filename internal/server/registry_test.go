package server

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
)

// newIdleConn builds a connection whose pumps never run; SendMessage only
// enqueues, so tests read deliveries straight off the send channel.
func newIdleConn(userID string) *Connection {
	return NewConnection(nil, userID, nil, log.New(io.Discard), nil)
}

func drainTypes(conn *Connection) []protocol.MessageType {
	var types []protocol.MessageType
	for {
		select {
		case msg := <-conn.send:
			types = append(types, msg.Type)
		default:
			return types
		}
	}
}

func TestRegistryTracksPresence(t *testing.T) {
	reg := NewConnectionRegistry(log.New(io.Discard))
	assert.False(t, reg.Online("alice"))

	c1 := newIdleConn("alice")
	reg.Add("alice", c1)
	assert.True(t, reg.Online("alice"))

	_, seen := reg.LastSeen("alice")
	assert.True(t, seen)
	_, seen = reg.LastSeen("bob")
	assert.False(t, seen)

	reg.Remove("alice", c1)
	assert.False(t, reg.Online("alice"))
}

func TestRegistryCallbackFiresOnLastSocketOnly(t *testing.T) {
	reg := NewConnectionRegistry(log.New(io.Discard))
	var gone []string
	reg.OnLastSocketClosed(func(userID string) { gone = append(gone, userID) })

	c1 := newIdleConn("alice")
	c2 := newIdleConn("alice")
	reg.Add("alice", c1)
	reg.Add("alice", c2)

	reg.Remove("alice", c1)
	assert.Empty(t, gone, "one tab left open")

	reg.Remove("alice", c2)
	assert.Equal(t, []string{"alice"}, gone)

	// Removing an unknown socket must not fire again
	reg.Remove("alice", c1)
	assert.Len(t, gone, 1)
}

func TestRegistrySendReachesEverySocket(t *testing.T) {
	reg := NewConnectionRegistry(log.New(io.Discard))
	c1 := newIdleConn("alice")
	c2 := newIdleConn("alice")
	other := newIdleConn("bob")
	reg.Add("alice", c1)
	reg.Add("alice", c2)
	reg.Add("bob", other)

	msg := protocol.MustMessage(protocol.TypeSessionStatus, protocol.SessionStatusData{})
	reg.Send("alice", msg)

	require.Equal(t, []protocol.MessageType{protocol.TypeSessionStatus}, drainTypes(c1))
	require.Equal(t, []protocol.MessageType{protocol.TypeSessionStatus}, drainTypes(c2))
	assert.Empty(t, drainTypes(other))

	// Sending to an unknown user is a quiet no-op
	reg.Send("carol", msg)
}
