package server

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/gameid"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/history"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/lobby"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/table"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/tournament"
)

// Service owns the live tables, tournaments and the matchmaker, and maps
// user commands onto them. It holds no game state itself; tables and
// supervisors are the single writers of theirs.
type Service struct {
	logger    *log.Logger
	clock     quartz.Clock
	rng       *rand.Rand
	registry  *ConnectionRegistry
	broadcast *Broadcaster
	store     *history.Store // may be nil
	match     *lobby.Matchmaker

	mu          sync.RWMutex
	tables      map[string]*table.Table
	byCode      map[string]string // join code -> table id
	tournaments map[string]*tournament.Supervisor
}

// NewService wires the service together
func NewService(variants []table.Variant, registry *ConnectionRegistry, broadcast *Broadcaster, store *history.Store, clock quartz.Clock, rng *rand.Rand, logger *log.Logger) *Service {
	s := &Service{
		logger:      logger.WithPrefix("service"),
		clock:       clock,
		rng:         rng,
		registry:    registry,
		broadcast:   broadcast,
		store:       store,
		tables:      make(map[string]*table.Table),
		byCode:      make(map[string]string),
		tournaments: make(map[string]*tournament.Supervisor),
	}
	s.match = lobby.New(variants, s.mintTable, broadcast, s.inActiveGame, logger)
	registry.OnLastSocketClosed(s.userDisconnected)
	return s
}

// Matchmaker exposes the lobby for the router
func (s *Service) Matchmaker() *lobby.Matchmaker {
	return s.match
}

func (s *Service) recorder() table.HandRecorder {
	if s.store == nil {
		return nil
	}
	return s.store
}

// mintTable creates and launches a table for a full matchmaking queue
func (s *Service) mintTable(variant table.Variant, userIDs []string) (string, error) {
	tbl := table.New(table.Config{
		Variant:     variant,
		Clock:       s.clock,
		Logger:      s.logger,
		Broadcaster: s.broadcast,
		Recorder:    s.recorder(),
		Rand:        rand.New(rand.NewSource(s.rng.Int63())),
		Hooks: table.Hooks{
			OnGameFinished: func(tableID, winnerID string) {
				go s.removeTable(tableID)
			},
		},
	})
	s.mu.Lock()
	s.tables[tbl.ID()] = tbl
	s.mu.Unlock()

	for _, userID := range userIDs {
		if _, err := tbl.SeatPlayer(userID, variant.StartingStack); err != nil {
			s.abortMint(tbl)
			return "", err
		}
		s.broadcast.JoinRoom(userID, tbl.ID())
	}
	if err := tbl.StartGame(); err != nil {
		s.abortMint(tbl)
		return "", err
	}
	return tbl.ID(), nil
}

// abortMint unwinds a table that failed mid-construction so its users are
// free to requeue
func (s *Service) abortMint(tbl *table.Table) {
	tbl.Shutdown("mint_failed")
	s.removeTable(tbl.ID())
}

func (s *Service) removeTable(tableID string) {
	s.mu.Lock()
	tbl, ok := s.tables[tableID]
	if ok {
		delete(s.tables, tableID)
		if code := tbl.JoinCode(); code != "" {
			delete(s.byCode, code)
		}
	}
	s.mu.Unlock()
	if ok {
		s.broadcast.CloseRoom(tableID)
	}
}

// Table looks up a live table, including tournament-owned ones
func (s *Service) Table(gameID string) (*table.Table, bool) {
	s.mu.RLock()
	tbl, ok := s.tables[gameID]
	tournaments := make([]*tournament.Supervisor, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		tournaments = append(tournaments, t)
	}
	s.mu.RUnlock()
	if ok {
		return tbl, true
	}
	for _, t := range tournaments {
		if tbl, found := t.TableByID(gameID); found {
			return tbl, true
		}
	}
	return nil, false
}

// Tournament looks up a live tournament
func (s *Service) Tournament(tournamentID string) (*tournament.Supervisor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[tournamentID]
	return t, ok
}

// inActiveGame reports whether userID currently holds a seat anywhere,
// cash or tournament; queueing requires not playing.
func (s *Service) inActiveGame(userID string) bool {
	_, _, seated := s.activeTable(userID)
	return seated
}

// activeTable finds the table userID is seated at, cash or tournament
func (s *Service) activeTable(userID string) (*table.Table, table.Status, bool) {
	s.mu.RLock()
	tables := make([]*table.Table, 0, len(s.tables))
	for _, tbl := range s.tables {
		tables = append(tables, tbl)
	}
	tournaments := make([]*tournament.Supervisor, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		tournaments = append(tournaments, t)
	}
	s.mu.RUnlock()
	for _, tbl := range tables {
		if status, seated := tbl.PlayerStatus(userID); seated {
			return tbl, status, true
		}
	}
	for _, t := range tournaments {
		if tbl, ok := t.TableOf(userID); ok {
			if status, seated := tbl.PlayerStatus(userID); seated {
				return tbl, status, true
			}
		}
	}
	return nil, "", false
}

// userDisconnected propagates the loss of a user's last socket: they drop
// out of any queue and go into the ghost state at their table.
func (s *Service) userDisconnected(userID string) {
	s.match.Remove(userID)
	if tbl, _, ok := s.activeTable(userID); ok {
		tbl.Disconnected(userID)
	}
	s.broadcast.LeaveAll(userID)
}

// JoinGame subscribes userID to the table room and returns the snapshot
func (s *Service) JoinGame(userID, gameID string) (protocol.GameStateData, error) {
	tbl, ok := s.Table(gameID)
	if !ok {
		return protocol.GameStateData{}, fmt.Errorf("game not found")
	}
	s.broadcast.JoinRoom(userID, gameID)
	return tbl.Join(userID), nil
}

// CreatePrivateGame mints a host-controlled table for the given variant
func (s *Service) CreatePrivateGame(hostID, variantSlug string) (*table.Table, error) {
	variant, ok := s.match.Variant(variantSlug)
	if !ok {
		return nil, fmt.Errorf("unknown variant %q", variantSlug)
	}
	tbl := table.New(table.Config{
		Variant:     variant,
		HostID:      hostID,
		Clock:       s.clock,
		Logger:      s.logger,
		Broadcaster: s.broadcast,
		Recorder:    s.recorder(),
		Rand:        rand.New(rand.NewSource(s.rng.Int63())),
		Hooks: table.Hooks{
			OnGameFinished: func(tableID, winnerID string) {
				go s.removeTable(tableID)
			},
		},
	})
	s.mu.Lock()
	s.tables[tbl.ID()] = tbl
	s.byCode[tbl.JoinCode()] = tbl.ID()
	s.mu.Unlock()
	s.broadcast.JoinRoom(hostID, tbl.ID())
	s.logger.Info("private game created", "gameId", tbl.ID(), "hostId", hostID)
	return tbl, nil
}

// ResolveJoinCode maps a join code to its table id, case-insensitively
func (s *Service) ResolveJoinCode(code string) (string, error) {
	normalized, err := gameid.NormalizeJoinCode(code)
	if err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	tableID, ok := s.byCode[normalized]
	if !ok {
		return "", fmt.Errorf("game not found")
	}
	return tableID, nil
}

// ListTables summarizes every live table
func (s *Service) ListTables() protocol.TableListData {
	s.mu.RLock()
	tables := make([]*table.Table, 0, len(s.tables))
	for _, tbl := range s.tables {
		tables = append(tables, tbl)
	}
	s.mu.RUnlock()

	out := protocol.TableListData{Tables: []protocol.TableInfo{}}
	for _, tbl := range tables {
		out.Tables = append(out.Tables, tbl.Info())
	}
	return out
}

// ActiveSession reports whether userID is seated in a live game
func (s *Service) ActiveSession(userID string) protocol.SessionStatusData {
	if tbl, status, ok := s.activeTable(userID); ok {
		return protocol.SessionStatusData{
			InGame: true, GameID: tbl.ID(), Status: string(status),
		}
	}
	return protocol.SessionStatusData{InGame: false}
}

// ActiveStatus consolidates a user's game, tournament and queue attachments
func (s *Service) ActiveStatus(userID string) protocol.ActiveStatusData {
	var out protocol.ActiveStatusData
	if session := s.ActiveSession(userID); session.InGame {
		out.Game = &session
	}
	s.mu.RLock()
	tournaments := make([]*tournament.Supervisor, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		tournaments = append(tournaments, t)
	}
	s.mu.RUnlock()
	for _, t := range tournaments {
		if _, registered := t.ParticipantOf(userID); registered {
			out.Tournament = &protocol.TournamentRef{
				TournamentID: t.ID(), Status: string(t.Status()),
			}
			break
		}
	}
	if queue := s.match.Status(userID); queue.InQueue {
		out.Queue = &queue
	}
	return out
}

// CreateTournament opens a tournament in setup state under hostID
func (s *Service) CreateTournament(hostID string, settings tournament.Settings) (*tournament.Supervisor, error) {
	if settings.MaxPlayersPerTable == 0 {
		settings = tournament.DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	var recorder tournament.ParticipantRecorder
	if s.store != nil {
		recorder = s.store
	}
	sup := tournament.New(tournament.Config{
		HostID:      hostID,
		Settings:    settings,
		Clock:       s.clock,
		Logger:      s.logger,
		Broadcaster: s.broadcast,
		Rooms:       s.broadcast,
		Recorder:    recorder,
		HandStore:   s.recorder(),
		Rand:        rand.New(rand.NewSource(s.rng.Int63())),
	})
	s.mu.Lock()
	s.tournaments[sup.ID()] = sup
	s.mu.Unlock()
	s.broadcast.JoinRoom(hostID, sup.ID())
	s.logger.Info("tournament created", "tournamentId", sup.ID(), "hostId", hostID)
	return sup, nil
}

// Shutdown stops every table and tournament
func (s *Service) Shutdown() {
	s.mu.Lock()
	tables := s.tables
	tournaments := s.tournaments
	s.tables = make(map[string]*table.Table)
	s.tournaments = make(map[string]*tournament.Supervisor)
	s.mu.Unlock()

	for _, tbl := range tables {
		tbl.Shutdown("server_shutdown")
	}
	for _, t := range tournaments {
		t.Shutdown()
	}
	// Give queued events a moment to drain onto sockets
	time.Sleep(50 * time.Millisecond)
}
