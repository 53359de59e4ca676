package server

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
)

func newBroadcastFixture(t *testing.T, users ...string) (*Broadcaster, map[string]*Connection) {
	t.Helper()
	reg := NewConnectionRegistry(log.New(io.Discard))
	conns := make(map[string]*Connection, len(users))
	for _, id := range users {
		conn := newIdleConn(id)
		reg.Add(id, conn)
		conns[id] = conn
	}
	return NewBroadcaster(reg), conns
}

func TestPublishReachesRoomMembersOnly(t *testing.T) {
	b, conns := newBroadcastFixture(t, "alice", "bob", "carol")
	b.JoinRoom("alice", "tbl_1")
	b.JoinRoom("bob", "tbl_1")
	b.JoinRoom("carol", "tbl_2")

	b.Publish("tbl_1", protocol.MustMessage(protocol.TypeSessionStatus, protocol.SessionStatusData{}))

	assert.Len(t, drainTypes(conns["alice"]), 1)
	assert.Len(t, drainTypes(conns["bob"]), 1)
	assert.Empty(t, drainTypes(conns["carol"]))
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	b, conns := newBroadcastFixture(t, "alice", "bob")
	b.JoinRoom("alice", "tbl_1")
	b.JoinRoom("bob", "tbl_1")
	b.LeaveRoom("alice", "tbl_1")

	b.Publish("tbl_1", protocol.MustMessage(protocol.TypeSessionStatus, protocol.SessionStatusData{}))

	assert.Empty(t, drainTypes(conns["alice"]))
	assert.Len(t, drainTypes(conns["bob"]), 1)
}

func TestLeaveAllClearsEveryMembership(t *testing.T) {
	b, conns := newBroadcastFixture(t, "alice", "bob")
	b.JoinRoom("alice", "tbl_1")
	b.JoinRoom("alice", "trn_1")
	b.JoinRoom("bob", "tbl_1")
	b.LeaveAll("alice")

	b.Publish("tbl_1", protocol.MustMessage(protocol.TypeSessionStatus, protocol.SessionStatusData{}))
	b.Publish("trn_1", protocol.MustMessage(protocol.TypeSessionStatus, protocol.SessionStatusData{}))

	assert.Empty(t, drainTypes(conns["alice"]))
	assert.Len(t, drainTypes(conns["bob"]), 1)
}

func TestCloseRoomDropsAllMembers(t *testing.T) {
	b, conns := newBroadcastFixture(t, "alice", "bob")
	b.JoinRoom("alice", "tbl_1")
	b.JoinRoom("bob", "tbl_1")
	b.CloseRoom("tbl_1")

	b.Publish("tbl_1", protocol.MustMessage(protocol.TypeSessionStatus, protocol.SessionStatusData{}))

	assert.Empty(t, drainTypes(conns["alice"]))
	assert.Empty(t, drainTypes(conns["bob"]))
}

func TestPublishToSkipsRooms(t *testing.T) {
	b, conns := newBroadcastFixture(t, "alice", "bob")

	b.PublishTo("alice", protocol.MustMessage(protocol.TypeSessionStatus, protocol.SessionStatusData{}))

	assert.Len(t, drainTypes(conns["alice"]), 1)
	assert.Empty(t, drainTypes(conns["bob"]))
}

func TestJoinRoomTwiceDeliversOnce(t *testing.T) {
	b, conns := newBroadcastFixture(t, "alice")
	b.JoinRoom("alice", "tbl_1")
	b.JoinRoom("alice", "tbl_1")

	b.Publish("tbl_1", protocol.MustMessage(protocol.TypeSessionStatus, protocol.SessionStatusData{}))

	assert.Len(t, drainTypes(conns["alice"]), 1)
}
