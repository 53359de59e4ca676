package server

import (
	"io"
	"math/rand"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
)

func newTestRouter(t *testing.T) (*SessionRouter, *ConnectionRegistry) {
	t.Helper()
	logger := log.New(io.Discard)
	registry := NewConnectionRegistry(logger)
	broadcast := NewBroadcaster(registry)
	svc := NewService(DefaultConfig().Variants, registry, broadcast, nil,
		quartz.NewMock(t), rand.New(rand.NewSource(42)), logger)
	t.Cleanup(svc.Shutdown)
	return NewSessionRouter(svc, broadcast, logger), registry
}

func TestRejectedQueueJoinStaysOutOfRoom(t *testing.T) {
	router, registry := newTestRouter(t)
	alice := newIdleConn("alice")
	registry.Add("alice", alice)
	bob := newIdleConn("bob")
	registry.Add("bob", bob)

	joinQueue := func(conn *Connection, queue string) {
		router.Dispatch(conn, protocol.MustMessage(protocol.TypeJoinQueue,
			protocol.JoinQueueData{QueueType: queue}))
	}

	joinQueue(alice, "six_max")
	require.Contains(t, drainTypes(alice), protocol.TypeQueueUpdate)

	// One queue at a time: the second join is rejected and must not
	// subscribe alice to the other queue's room
	joinQueue(alice, "heads_up")
	assert.Contains(t, drainTypes(alice), protocol.TypeError)

	joinQueue(bob, "heads_up")
	require.Contains(t, drainTypes(bob), protocol.TypeQueueUpdate)
	assert.Empty(t, drainTypes(alice), "rejected joiner must not watch heads_up")
}

func TestUnknownCommandReportsError(t *testing.T) {
	router, registry := newTestRouter(t)
	conn := newIdleConn("alice")
	registry.Add("alice", conn)

	router.Dispatch(conn, protocol.MustMessage("make_coffee", nil))
	types := drainTypes(conn)
	require.Len(t, types, 1)
	assert.Equal(t, protocol.TypeError, types[0])
}
