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
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/tournament"
)

func newTestService(t *testing.T) (*Service, *ConnectionRegistry) {
	t.Helper()
	logger := log.New(io.Discard)
	registry := NewConnectionRegistry(logger)
	broadcast := NewBroadcaster(registry)
	svc := NewService(DefaultConfig().Variants, registry, broadcast, nil,
		quartz.NewMock(t), rand.New(rand.NewSource(42)), logger)
	t.Cleanup(svc.Shutdown)
	return svc, registry
}

func startTestTournament(t *testing.T, svc *Service, users ...string) *tournament.Supervisor {
	t.Helper()
	sup, err := svc.CreateTournament("host", tournament.DefaultSettings())
	require.NoError(t, err)
	require.NoError(t, sup.Admin("host", protocol.TournamentAdminActionData{
		TournamentID: sup.ID(), Type: tournament.AdminOpenRegistration,
	}))
	for _, id := range users {
		require.NoError(t, sup.Register(id))
	}
	require.NoError(t, sup.Admin("host", protocol.TournamentAdminActionData{
		TournamentID: sup.ID(), Type: tournament.AdminStart,
	}))
	return sup
}

func TestQueueRejectsTournamentSeatedPlayer(t *testing.T) {
	svc, _ := newTestService(t)
	startTestTournament(t, svc, "p1", "p2")

	err := svc.Matchmaker().Join("p1", "six_max")
	require.Error(t, err, "a tournament seat is an active game")
	assert.Contains(t, err.Error(), "active game")

	// A bystander still queues fine
	require.NoError(t, svc.Matchmaker().Join("p3", "six_max"))
}

func TestActiveSessionSeesTournamentTables(t *testing.T) {
	svc, _ := newTestService(t)
	sup := startTestTournament(t, svc, "p1", "p2")

	session := svc.ActiveSession("p1")
	require.True(t, session.InGame)
	tbl, ok := sup.TableOf("p1")
	require.True(t, ok)
	assert.Equal(t, tbl.ID(), session.GameID)
}

func TestMintTableTearsDownOnFailure(t *testing.T) {
	svc, _ := newTestService(t)

	// A heads-up table seats two; the third seat must fail and unwind the mint
	variant, ok := svc.match.Variant("heads_up")
	require.True(t, ok)
	_, err := svc.mintTable(variant, []string{"p1", "p2", "p3"})
	require.Error(t, err)

	assert.Empty(t, svc.ListTables().Tables, "half-built table must not stay addressable")
	for _, id := range []string{"p1", "p2", "p3"} {
		assert.False(t, svc.inActiveGame(id), "%s is free to requeue", id)
	}
	require.NoError(t, svc.Matchmaker().Join("p1", "six_max"))
}
