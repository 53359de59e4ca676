// Package tournament implements the multi-table tournament supervisor: the
// status machine, registration, the blind clock, eliminations, table
// balancing and merging. Like a table, a supervisor is a single-writer actor.
package tournament

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/gameid"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/history"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/table"
)

// Status is the tournament lifecycle state
type Status string

const (
	StatusSetup        Status = "setup"
	StatusRegistration Status = "registration"
	StatusActive       Status = "active"
	StatusPaused       Status = "paused"
	StatusCompleted    Status = "completed"
	StatusCancelled    Status = "cancelled"
)

// Terminal reports whether no further transitions are possible
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Participant status values
const (
	ParticipantRegistered = "registered"
	ParticipantActive     = "active"
	ParticipantEliminated = "eliminated"
	ParticipantFinished   = "finished"
	ParticipantLeft       = "left"
	ParticipantBanned     = "banned"
)

// Participant is one tournament entrant. The supervisor owns every record.
type Participant struct {
	UserID         string
	Status         string
	Chips          int
	TableID        string
	Seat           int
	FinishPosition int
}

// Admin action type strings accepted from the tournament host
const (
	AdminUpdateSettings   = "UPDATE_SETTINGS"
	AdminOpenRegistration = "OPEN_REGISTRATION"
	AdminStart            = "START_TOURNAMENT"
	AdminPause            = "PAUSE_TOURNAMENT"
	AdminResume           = "RESUME_TOURNAMENT"
	AdminCancel           = "CANCEL_TOURNAMENT"
	AdminBanPlayer        = "BAN_PLAYER"
	AdminRegisterPlayer   = "REGISTER_PLAYER"
	AdminTransferPlayer   = "TRANSFER_PLAYER"
)

// Broadcaster delivers tournament events to the tournament room and users
type Broadcaster interface {
	Publish(room string, msg *protocol.Message)
	PublishTo(userID string, msg *protocol.Message)
}

// RoomJoiner moves a user's sockets into a broadcast room, used when a
// transfer lands a player on a new table
type RoomJoiner interface {
	JoinRoom(userID, room string)
}

// ParticipantRecorder persists participant status transitions
type ParticipantRecorder interface {
	RecordParticipant(rec history.ParticipantRecord)
}

// Config assembles a supervisor's collaborators
type Config struct {
	ID          string
	HostID      string
	Settings    Settings
	Clock       quartz.Clock
	Logger      *log.Logger
	Broadcaster Broadcaster
	Rooms       RoomJoiner
	Recorder    ParticipantRecorder // may be nil
	HandStore   table.HandRecorder  // passed through to tournament tables
	Rand        *rand.Rand
}

const levelWarningLead = 30 * time.Second

// Supervisor runs one tournament
type Supervisor struct {
	id     string
	hostID string

	clock     quartz.Clock
	logger    *log.Logger
	broadcast Broadcaster
	rooms     RoomJoiner
	recorder  ParticipantRecorder
	handStore table.HandRecorder
	rng       *rand.Rand

	mailbox   chan func()
	closed    chan struct{}
	closeOnce sync.Once

	status       Status
	settings     Settings
	participants map[string]*Participant
	order        []string // registration order
	banned       map[string]bool
	tables       map[string]*table.Table

	level       int
	levelEndsAt time.Time
	remaining   time.Duration // of the current level, valid while paused
	levelTimer  *quartz.Timer
	warnTimer   *quartz.Timer
	clockGen    int
}

// New creates the supervisor in setup state and starts its actor goroutine
func New(cfg Config) *Supervisor {
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.ID == "" {
		cfg.ID = gameid.NewTournament()
	}
	s := &Supervisor{
		id:           cfg.ID,
		hostID:       cfg.HostID,
		clock:        cfg.Clock,
		logger:       cfg.Logger.WithPrefix("tournament").With("tournamentId", cfg.ID),
		broadcast:    cfg.Broadcaster,
		rooms:        cfg.Rooms,
		recorder:     cfg.Recorder,
		handStore:    cfg.HandStore,
		rng:          cfg.Rand,
		mailbox:      make(chan func(), 256),
		closed:       make(chan struct{}),
		status:       StatusSetup,
		settings:     cfg.Settings,
		participants: make(map[string]*Participant),
		banned:       make(map[string]bool),
		tables:       make(map[string]*table.Table),
	}
	go s.run()
	return s
}

func (s *Supervisor) run() {
	for {
		select {
		case fn := <-s.mailbox:
			s.safely(fn)
		case <-s.closed:
			return
		}
	}
}

func (s *Supervisor) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("supervisor failure", "panic", r)
		}
	}()
	fn()
}

// post queues fn without ever blocking the caller; table hook callbacks rely
// on this to avoid a deadlock with synchronous supervisor-to-table calls.
func (s *Supervisor) post(fn func()) {
	select {
	case s.mailbox <- fn:
	case <-s.closed:
	default:
		go func() {
			select {
			case s.mailbox <- fn:
			case <-s.closed:
			}
		}()
	}
}

func (s *Supervisor) call(fn func()) {
	done := make(chan struct{})
	select {
	case s.mailbox <- func() {
		defer close(done)
		fn()
	}:
		select {
		case <-done:
		case <-s.closed:
		}
	case <-s.closed:
	}
}

// ID returns the tournament id, which is also its broadcast room name
func (s *Supervisor) ID() string { return s.id }

// HostID returns the organizing user's id
func (s *Supervisor) HostID() string { return s.hostID }

// Status returns the current lifecycle state
func (s *Supervisor) Status() Status {
	var st Status
	s.call(func() { st = s.status })
	return st
}

// HasTable reports whether tableID belongs to this tournament
func (s *Supervisor) HasTable(tableID string) bool {
	_, ok := s.TableByID(tableID)
	return ok
}

// TableByID returns one of the tournament's live tables
func (s *Supervisor) TableByID(tableID string) (*table.Table, bool) {
	var tbl *table.Table
	var ok bool
	s.call(func() { tbl, ok = s.tables[tableID] })
	return tbl, ok
}

// TableOf returns the table a participant currently plays at
func (s *Supervisor) TableOf(userID string) (*table.Table, bool) {
	var tbl *table.Table
	var ok bool
	s.call(func() {
		p, found := s.participants[userID]
		if !found || p.Status != ParticipantActive {
			return
		}
		tbl, ok = s.tables[p.TableID]
	})
	return tbl, ok
}

// ParticipantOf returns the participant record for userID, if registered
func (s *Supervisor) ParticipantOf(userID string) (Participant, bool) {
	var p Participant
	var ok bool
	s.call(func() {
		if rec, found := s.participants[userID]; found {
			p, ok = *rec, true
		}
	})
	return p, ok
}

// Register enters userID into the tournament during registration
func (s *Supervisor) Register(userID string) error {
	var err error
	s.call(func() { err = s.register(userID) })
	return err
}

func (s *Supervisor) register(userID string) error {
	if s.status != StatusRegistration {
		return fmt.Errorf("registration is not open")
	}
	if s.banned[userID] {
		return fmt.Errorf("not allowed to register")
	}
	if _, ok := s.participants[userID]; ok {
		return fmt.Errorf("already registered")
	}
	s.participants[userID] = &Participant{UserID: userID, Status: ParticipantRegistered}
	s.order = append(s.order, userID)
	s.persist(s.participants[userID])
	s.send(protocol.TypeTournamentRegistered, protocol.TournamentRegistrationData{
		TournamentID: s.id, PlayerID: userID, ParticipantCount: len(s.participants),
	})
	s.send(protocol.TypeTournamentCountChanged, protocol.TournamentRegistrationData{
		TournamentID: s.id, ParticipantCount: len(s.participants),
	})
	return nil
}

// Unregister withdraws userID. Before the start it removes the registration;
// once play began an active participant resigns and takes a finish position.
func (s *Supervisor) Unregister(userID string) error {
	var err error
	s.call(func() {
		p, ok := s.participants[userID]
		if !ok {
			err = fmt.Errorf("not registered")
			return
		}
		switch {
		case s.status == StatusRegistration:
			delete(s.participants, userID)
			for i, id := range s.order {
				if id == userID {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
			s.send(protocol.TypeTournamentUnregistered, protocol.TournamentRegistrationData{
				TournamentID: s.id, PlayerID: userID, ParticipantCount: len(s.participants),
			})
			s.send(protocol.TypeTournamentCountChanged, protocol.TournamentRegistrationData{
				TournamentID: s.id, ParticipantCount: len(s.participants),
			})
		case s.status == StatusActive && p.Status == ParticipantActive:
			s.resign(p)
		default:
			err = fmt.Errorf("cannot leave tournament now")
		}
	})
	return err
}

// resign forfeits an active participant's remaining chips. The finish
// position is assigned the same way an elimination would.
func (s *Supervisor) resign(p *Participant) {
	if tbl, ok := s.tables[p.TableID]; ok {
		if err := tbl.Remove(p.UserID); err != nil {
			s.logger.Warn("resign removal", "userId", p.UserID, "error", err)
		}
	}
	remaining := s.activeCount() - 1
	p.Status = ParticipantLeft
	p.Chips = 0
	p.FinishPosition = remaining + 1
	s.persist(p)

	s.send(protocol.TypeTournamentPlayerLeft, protocol.TournamentEliminationData{
		TournamentID:   s.id,
		PlayerID:       p.UserID,
		FinishPosition: p.FinishPosition,
		Remaining:      remaining,
	})
	s.sendTo(p.UserID, protocol.TypeTournamentPosition, protocol.TournamentFinishPositionData{
		TournamentID: s.id, FinishPosition: p.FinishPosition,
	})
	s.logger.Info("player left tournament", "userId", p.UserID, "finishPosition", p.FinishPosition)

	if remaining <= 1 {
		s.complete()
	}
}

// Admin executes a host-only tournament operation
func (s *Supervisor) Admin(userID string, data protocol.TournamentAdminActionData) error {
	var err error
	s.call(func() { err = s.admin(userID, data) })
	return err
}

func (s *Supervisor) admin(userID string, data protocol.TournamentAdminActionData) error {
	if userID != s.hostID {
		return fmt.Errorf("host only")
	}
	if s.status.Terminal() {
		return fmt.Errorf("tournament is over")
	}

	switch data.Type {
	case AdminUpdateSettings:
		if s.status != StatusSetup {
			return fmt.Errorf("settings are frozen after setup")
		}
		var next Settings
		if err := json.Unmarshal(data.Settings, &next); err != nil {
			return fmt.Errorf("invalid settings payload")
		}
		if err := next.Validate(); err != nil {
			return err
		}
		s.settings = next

	case AdminOpenRegistration:
		if s.status != StatusSetup {
			return fmt.Errorf("registration already open")
		}
		if err := s.settings.Validate(); err != nil {
			return err
		}
		s.setStatus(StatusRegistration)

	case AdminStart:
		return s.start()

	case AdminPause:
		if s.status != StatusActive {
			return fmt.Errorf("tournament is not running")
		}
		s.pauseClock()
		s.setStatus(StatusPaused)
		for _, tbl := range s.tables {
			tbl.Pause()
		}

	case AdminResume:
		if s.status != StatusPaused {
			return fmt.Errorf("tournament is not paused")
		}
		s.setStatus(StatusActive)
		s.resumeClock()
		for _, tbl := range s.tables {
			tbl.Resume()
		}

	case AdminCancel:
		s.cancel()

	case AdminBanPlayer:
		return s.banPlayer(data.TargetID)

	case AdminRegisterPlayer:
		return s.register(data.TargetID)

	case AdminTransferPlayer:
		return s.manualTransfer(data.TargetID)

	default:
		return fmt.Errorf("unknown admin action %q", data.Type)
	}
	return nil
}

// start snapshots the field, allocates ceil(N/maxPerTable) tables, seats a
// reproducible shuffle of the participants and opens play at level 0.
func (s *Supervisor) start() error {
	if s.status != StatusRegistration {
		return fmt.Errorf("registration is not open")
	}
	if len(s.participants) < 2 {
		return fmt.Errorf("need at least 2 participants")
	}

	ids := append([]string(nil), s.order...)
	sort.Strings(ids)
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	numTables := int(math.Ceil(float64(len(ids)) / float64(s.settings.MaxPlayersPerTable)))
	level := s.settings.Level(0)
	var tableIDs []string
	for i := 0; i < numTables; i++ {
		tbl := s.newTable(level)
		s.tables[tbl.ID()] = tbl
		tableIDs = append(tableIDs, tbl.ID())
	}

	for i, userID := range ids {
		tbl := s.tables[tableIDs[i%numTables]]
		seat, err := tbl.SeatPlayer(userID, s.settings.StartingStack)
		if err != nil {
			return fmt.Errorf("seat %s: %w", userID, err)
		}
		p := s.participants[userID]
		p.Status = ParticipantActive
		p.Chips = s.settings.StartingStack
		p.TableID = tbl.ID()
		p.Seat = seat
		s.persist(p)
		if s.rooms != nil {
			s.rooms.JoinRoom(userID, tbl.ID())
		}
		s.sendTo(userID, protocol.TypeMatchFound, protocol.MatchFoundData{
			GameID: tbl.ID(), TournamentID: s.id,
		})
	}

	s.setStatus(StatusActive)
	s.level = 0
	s.startLevelClock(s.settings.LevelDuration())
	for _, tbl := range s.tables {
		if err := tbl.StartGame(); err != nil {
			s.logger.Error("start table", "tableId", tbl.ID(), "error", err)
		}
	}
	s.logger.Info("tournament started", "participants", len(ids), "tables", numTables)
	return nil
}

func (s *Supervisor) newTable(level BlindLevel) *table.Table {
	variant := table.Variant{
		Slug:              "tournament",
		Name:              s.settings.Name,
		MaxPlayers:        s.settings.MaxPlayersPerTable,
		SmallBlind:        level.SmallBlind,
		BigBlind:          level.BigBlind,
		StartingStack:     s.settings.StartingStack,
		Category:          table.CategoryTournament,
		TurnTimeoutMillis: s.settings.TurnTimeoutMillis,
	}
	return table.New(table.Config{
		TournamentID: s.id,
		Variant:      variant,
		Clock:        s.clock,
		Logger:       s.logger,
		Broadcaster:  s.broadcast,
		Recorder:     s.handStore,
		Rand:         rand.New(rand.NewSource(s.rng.Int63())),
		Hooks: table.Hooks{
			OnHandSettled: func(tableID string) {
				s.post(func() { s.afterSettlement(tableID) })
			},
			OnPlayerBusted: func(tableID, userID string) {
				s.post(func() { s.eliminate(userID) })
			},
		},
	})
}

// Blind clock

func (s *Supervisor) startLevelClock(remaining time.Duration) {
	s.stopClock()
	s.levelEndsAt = s.clock.Now().Add(remaining)
	gen := s.clockGen
	if remaining > levelWarningLead {
		s.warnTimer = s.clock.AfterFunc(remaining-levelWarningLead, func() {
			s.post(func() { s.levelWarning(gen) })
		})
	}
	s.levelTimer = s.clock.AfterFunc(remaining, func() {
		s.post(func() { s.advanceLevel(gen) })
	})
}

// stopClock invalidates any scheduled level callbacks; a fired-but-unprocessed
// callback sees a stale generation and does nothing.
func (s *Supervisor) stopClock() {
	s.clockGen++
	if s.warnTimer != nil {
		s.warnTimer.Stop()
		s.warnTimer = nil
	}
	if s.levelTimer != nil {
		s.levelTimer.Stop()
		s.levelTimer = nil
	}
}

// pauseClock records the exact remaining level time so that N pause/resume
// cycles never drift
func (s *Supervisor) pauseClock() {
	s.remaining = s.levelEndsAt.Sub(s.clock.Now())
	if s.remaining < 0 {
		s.remaining = 0
	}
	s.stopClock()
}

func (s *Supervisor) resumeClock() {
	s.startLevelClock(s.remaining)
	s.remaining = 0
}

func (s *Supervisor) levelWarning(gen int) {
	if gen != s.clockGen || s.status != StatusActive {
		return
	}
	s.send(protocol.TypeTournamentLevelWarning, protocol.TournamentLevelWarningData{
		TournamentID:    s.id,
		TimeRemainingMs: levelWarningLead.Milliseconds(),
		CurrentLevel:    s.level + 1,
	})
}

func (s *Supervisor) advanceLevel(gen int) {
	if gen != s.clockGen || s.status != StatusActive {
		return
	}
	if s.settings.LastLevel(s.level) {
		// Blinds stay at the final level for the rest of the tournament
		return
	}
	s.level++
	next := s.settings.Level(s.level)
	s.startLevelClock(s.settings.LevelDuration())
	for _, tbl := range s.tables {
		tbl.SetBlinds(next.SmallBlind, next.BigBlind)
	}
	s.send(protocol.TypeTournamentBlindsAdvanced, protocol.TournamentBlindsData{
		TournamentID: s.id,
		Level:        s.level + 1,
		SmallBlind:   next.SmallBlind,
		BigBlind:     next.BigBlind,
		LevelEndsAt:  s.levelEndsAt.UnixMilli(),
	})
	s.logger.Info("blind level advanced", "level", s.level+1,
		"smallBlind", next.SmallBlind, "bigBlind", next.BigBlind)
}

// Elimination and completion

func (s *Supervisor) activeCount() int {
	n := 0
	for _, p := range s.participants {
		if p.Status == ParticipantActive {
			n++
		}
	}
	return n
}

// eliminate records a bust-out: the finish position is one past the count of
// players still alive afterwards, so the first player out of a ten-runner
// field finishes tenth.
func (s *Supervisor) eliminate(userID string) {
	p, ok := s.participants[userID]
	if !ok || p.Status != ParticipantActive {
		return
	}
	p.Status = ParticipantEliminated
	p.Chips = 0
	remaining := s.activeCount()
	p.FinishPosition = remaining + 1
	s.persist(p)

	s.send(protocol.TypeTournamentEliminated, protocol.TournamentEliminationData{
		TournamentID:   s.id,
		PlayerID:       userID,
		FinishPosition: p.FinishPosition,
		Remaining:      remaining,
	})
	s.sendTo(userID, protocol.TypeTournamentPosition, protocol.TournamentFinishPositionData{
		TournamentID: s.id, FinishPosition: p.FinishPosition,
	})
	s.logger.Info("player eliminated", "userId", userID, "finishPosition", p.FinishPosition)

	if remaining <= 1 {
		s.complete()
	}
}

func (s *Supervisor) complete() {
	var winner *Participant
	for _, p := range s.participants {
		if p.Status == ParticipantActive {
			winner = p
		}
	}
	if winner == nil {
		return
	}
	winner.Status = ParticipantFinished
	winner.FinishPosition = 1
	s.persist(winner)
	s.setStatus(StatusCompleted)
	s.stopClock()

	for id, tbl := range s.tables {
		tbl.Shutdown("tournament_completed")
		delete(s.tables, id)
	}

	results := s.standings()
	s.send(protocol.TypeTournamentCompleted, protocol.TournamentCompletedData{
		TournamentID: s.id,
		WinnerID:     winner.UserID,
		Results:      results,
		Timestamp:    s.clock.Now().UnixMilli(),
	})
	s.logger.Info("tournament completed", "winnerId", winner.UserID)
}

func (s *Supervisor) standings() []protocol.TournamentResult {
	var results []protocol.TournamentResult
	for _, p := range s.participants {
		if p.FinishPosition > 0 {
			results = append(results, protocol.TournamentResult{
				UserID:         p.UserID,
				FinishPosition: p.FinishPosition,
				Chips:          p.Chips,
			})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].FinishPosition < results[j].FinishPosition
	})
	return results
}

func (s *Supervisor) cancel() {
	s.stopClock()
	s.setStatus(StatusCancelled)
	for id, tbl := range s.tables {
		tbl.Shutdown("tournament_cancelled")
		delete(s.tables, id)
	}
	s.send(protocol.TypeTournamentCancelled, protocol.TournamentStatusData{
		TournamentID: s.id, Status: string(StatusCancelled),
		Timestamp: s.clock.Now().UnixMilli(),
	})
	s.logger.Info("tournament cancelled")
}

func (s *Supervisor) banPlayer(userID string) error {
	s.banned[userID] = true
	p, ok := s.participants[userID]
	if !ok {
		return nil
	}
	switch p.Status {
	case ParticipantRegistered:
		p.Status = ParticipantBanned
		s.persist(p)
		delete(s.participants, userID)
	case ParticipantActive:
		if tbl, ok := s.tables[p.TableID]; ok {
			if err := tbl.Remove(userID); err != nil {
				s.logger.Warn("ban removal", "userId", userID, "error", err)
			}
		}
		remaining := s.activeCount() - 1
		p.Status = ParticipantBanned
		p.FinishPosition = remaining + 1
		s.persist(p)
		if remaining <= 1 {
			s.complete()
		}
	}
	s.send(protocol.TypeTournamentPlayerBanned, protocol.TournamentRegistrationData{
		TournamentID: s.id, PlayerID: userID, ParticipantCount: len(s.participants),
	})
	return nil
}

func (s *Supervisor) setStatus(status Status) {
	s.status = status
	s.send(protocol.TypeTournamentStatusChanged, protocol.TournamentStatusData{
		TournamentID: s.id, Status: string(status),
		Timestamp: s.clock.Now().UnixMilli(),
	})
}

func (s *Supervisor) persist(p *Participant) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordParticipant(history.ParticipantRecord{
		TournamentID:   s.id,
		UserID:         p.UserID,
		Status:         p.Status,
		Chips:          p.Chips,
		FinishPosition: p.FinishPosition,
		UpdatedAt:      s.clock.Now(),
	})
}

func (s *Supervisor) send(messageType protocol.MessageType, data interface{}) {
	s.broadcast.Publish(s.id, protocol.MustMessage(messageType, data))
}

func (s *Supervisor) sendTo(userID string, messageType protocol.MessageType, data interface{}) {
	s.broadcast.PublishTo(userID, protocol.MustMessage(messageType, data))
}

// State builds the authoritative tournament snapshot
func (s *Supervisor) State() protocol.TournamentStateData {
	var out protocol.TournamentStateData
	s.call(func() {
		level := s.settings.Level(s.level)
		out = protocol.TournamentStateData{
			TournamentID:     s.id,
			HostID:           s.hostID,
			Status:           string(s.status),
			CurrentLevel:     s.level + 1,
			SmallBlind:       level.SmallBlind,
			BigBlind:         level.BigBlind,
			ParticipantCount: len(s.participants),
			ActiveCount:      s.activeCount(),
		}
		if s.status == StatusActive {
			out.LevelEndsAt = s.levelEndsAt.UnixMilli()
		}
		for _, userID := range s.order {
			p, ok := s.participants[userID]
			if !ok {
				continue
			}
			out.Participants = append(out.Participants, protocol.TournamentParticipantView{
				UserID:         p.UserID,
				Status:         p.Status,
				Chips:          p.Chips,
				TableID:        p.TableID,
				Seat:           p.Seat,
				FinishPosition: p.FinishPosition,
			})
		}
		for id := range s.tables {
			out.TableIDs = append(out.TableIDs, id)
		}
		sort.Strings(out.TableIDs)
	})
	return out
}

// Shutdown cancels the tournament if still running and stops the actor
func (s *Supervisor) Shutdown() {
	s.call(func() {
		if !s.status.Terminal() {
			s.cancel()
		}
	})
	s.closeOnce.Do(func() { close(s.closed) })
}
