// Package table implements the single-writer table actor: seating, the hand
// lifecycle, the turn timer, the disconnect ghost model and private-host
// controls. Every mutation runs on the table's own goroutine; commands, timer
// callbacks and connection events are posted to a mailbox and processed in
// FIFO order.
package table

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/game"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/gameid"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/history"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
)

// Broadcaster publishes events to the table's room and to individual users
type Broadcaster interface {
	Publish(room string, msg *protocol.Message)
	PublishTo(userID string, msg *protocol.Message)
}

// HandRecorder persists settled hands without blocking the caller
type HandRecorder interface {
	RecordHand(rec history.HandRecord)
}

// TransferredPlayer is a player pulled off a table during tournament
// balancing or merging
type TransferredPlayer struct {
	UserID string
	Chips  int
}

// Hooks connect a tournament supervisor to table outcomes. Callbacks run on
// the table goroutine and must not call back into the table synchronously.
type Hooks struct {
	OnHandSettled  func(tableID string)
	OnPlayerBusted func(tableID, userID string)
	OnGameFinished func(tableID, winnerID string)
}

// Config assembles a table's collaborators
type Config struct {
	ID           string
	TournamentID string
	Variant      Variant
	HostID       string // non-empty marks a private host-controlled table
	Clock        quartz.Clock
	Logger       *log.Logger
	Broadcaster  Broadcaster
	Recorder     HandRecorder // may be nil
	Rand         *rand.Rand
	Hooks        Hooks
}

type seatRequest struct {
	UserID string
	At     time.Time
}

type blindLevel struct {
	smallBlind int
	bigBlind   int
}

// Table owns one hand machine plus seating, timers and host state
type Table struct {
	id           string
	tournamentID string
	variant      Variant
	hostID       string
	joinCode     string

	clock     quartz.Clock
	logger    *log.Logger
	broadcast Broadcaster
	recorder  HandRecorder
	rng       *rand.Rand
	hooks     Hooks

	mailbox   chan func()
	closed    chan struct{}
	closeOnce sync.Once

	ring          *game.SeatRing
	players       map[string]*Player
	banned        map[string]bool
	pendingSeats  []seatRequest
	pendingBlinds *blindLevel
	pendingStacks map[string]int

	eval        game.Evaluator
	hand        *game.Hand
	handID      string
	handCounter uint64
	buttonSeat  int
	smallBlind  int
	bigBlind    int

	started  bool
	paused   bool
	finished bool

	timerGen    int
	turnTimer   *quartz.Timer
	graceTimers map[string]*quartz.Timer

	startingStacks map[string]int
}

// New creates the table and starts its actor goroutine
func New(cfg Config) *Table {
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.ID == "" {
		cfg.ID = gameid.NewTable()
	}
	t := &Table{
		id:             cfg.ID,
		tournamentID:   cfg.TournamentID,
		variant:        cfg.Variant,
		hostID:         cfg.HostID,
		clock:          cfg.Clock,
		logger:         cfg.Logger.WithPrefix("table").With("tableId", cfg.ID),
		broadcast:      cfg.Broadcaster,
		recorder:       cfg.Recorder,
		rng:            cfg.Rand,
		hooks:          cfg.Hooks,
		mailbox:        make(chan func(), 64),
		closed:         make(chan struct{}),
		ring:           game.NewSeatRing(cfg.Variant.MaxPlayers),
		players:        make(map[string]*Player),
		banned:         make(map[string]bool),
		pendingStacks:  make(map[string]int),
		eval:           game.NewEvaluator(),
		graceTimers:    make(map[string]*quartz.Timer),
		startingStacks: make(map[string]int),
		smallBlind:     cfg.Variant.SmallBlind,
		bigBlind:       cfg.Variant.BigBlind,
	}
	if t.hostID != "" {
		t.joinCode = gameid.NewJoinCode()
	}
	go t.run()
	return t
}

func (t *Table) run() {
	for {
		select {
		case fn := <-t.mailbox:
			t.safely(fn)
		case <-t.closed:
			return
		}
	}
}

// safely contains a panic within this one table: the table is torn down and
// every player notified, but the process and all other tables keep running.
func (t *Table) safely(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("table failure, shutting down", "panic", r)
			t.finishGame("internal", "")
			t.close()
		}
	}()
	fn()
}

func (t *Table) close() {
	t.closeOnce.Do(func() { close(t.closed) })
}

// post queues fn on the actor; it is dropped if the table is closed
func (t *Table) post(fn func()) {
	select {
	case t.mailbox <- fn:
	case <-t.closed:
	}
}

// call runs fn on the actor and waits for completion. After close the fn may
// never run; callers see zero values.
func (t *Table) call(fn func()) {
	done := make(chan struct{})
	select {
	case t.mailbox <- func() {
		defer close(done)
		fn()
	}:
		select {
		case <-done:
		case <-t.closed:
		}
	case <-t.closed:
	}
}

// ID returns the table's id, which is also its broadcast room name
func (t *Table) ID() string { return t.id }

// TournamentID returns the owning tournament's id, or ""
func (t *Table) TournamentID() string { return t.tournamentID }

// JoinCode returns the private-table join code, or ""
func (t *Table) JoinCode() string { return t.joinCode }

// Variant returns the table's immutable variant
func (t *Table) Variant() Variant { return t.variant }

// HostID returns the private host's user id, or ""
func (t *Table) HostID() string { return t.hostID }

// Info summarizes the table for listings
func (t *Table) Info() protocol.TableInfo {
	var info protocol.TableInfo
	t.call(func() {
		status := "waiting"
		switch {
		case t.finished:
			status = "finished"
		case t.paused:
			status = "paused"
		case t.hand != nil && t.hand.Phase != game.Settled:
			status = "playing"
		}
		info = protocol.TableInfo{
			ID:          t.id,
			Variant:     t.variant.Slug,
			PlayerCount: t.seatedCount(),
			MaxPlayers:  t.variant.MaxPlayers,
			Stakes:      fmt.Sprintf("%d/%d", t.smallBlind, t.bigBlind),
			Status:      status,
			Private:     t.hostID != "",
		}
	})
	return info
}

// Finished reports whether the table has shut down its game
func (t *Table) Finished() bool {
	select {
	case <-t.closed:
		return true
	default:
	}
	var f bool
	t.call(func() { f = t.finished })
	return f
}

func (t *Table) seatedCount() int {
	n := 0
	for _, p := range t.players {
		if !p.Departed() {
			n++
		}
	}
	return n
}

// SeatPlayer seats userID at the first free seat with the given stack
func (t *Table) SeatPlayer(userID string, chips int) (int, error) {
	var seat int
	var err error
	t.call(func() { seat, err = t.seat(userID, 0, chips) })
	return seat, err
}

// SeatPlayerAt seats userID at a specific seat
func (t *Table) SeatPlayerAt(userID string, seatNumber, chips int) error {
	var err error
	t.call(func() { _, err = t.seat(userID, seatNumber, chips) })
	return err
}

func (t *Table) seat(userID string, seatNumber, chips int) (int, error) {
	if t.finished {
		return 0, fmt.Errorf("game is finished")
	}
	if t.banned[userID] {
		return 0, fmt.Errorf("not allowed to join this game")
	}
	if p, ok := t.players[userID]; ok && !p.Departed() {
		return 0, fmt.Errorf("already seated")
	}
	if seatNumber == 0 {
		seatNumber = t.ring.FirstFree()
		if seatNumber == 0 {
			return 0, fmt.Errorf("table is full")
		}
	}
	if err := t.ring.Seat(userID, seatNumber); err != nil {
		return 0, err
	}
	status := StatusWaiting
	if !t.started {
		status = StatusActive
	}
	t.players[userID] = &Player{
		UserID: userID,
		Seat:   seatNumber,
		Chips:  chips,
		Status: status,
		IsHost: userID == t.hostID,
	}
	if _, ok := t.startingStacks[userID]; !ok {
		t.startingStacks[userID] = chips
	}
	t.publishStatus(userID, status, "")
	t.publishState()
	return seatNumber, nil
}

// StartGame begins dealing; it requires two or more dealable players
func (t *Table) StartGame() error {
	var err error
	t.call(func() {
		if t.finished {
			err = fmt.Errorf("game is finished")
			return
		}
		if t.dealableCount() < 2 {
			err = fmt.Errorf("need at least 2 players")
			return
		}
		t.started = true
		t.maybeStartHand()
	})
	return err
}

// Join subscribes userID to the table. A disconnected player reconnects:
// their grace timer is cancelled and a SYNC_GAME snapshot is delivered.
// Repeated joins are idempotent.
func (t *Table) Join(userID string) protocol.GameStateData {
	var snap protocol.GameStateData
	t.call(func() {
		if p, ok := t.players[userID]; ok && p.Status == StatusDisconnected {
			t.cancelGrace(userID)
			p.Status = StatusActive
			t.publishStatus(userID, StatusActive, "reconnected")
			t.sendTo(userID, protocol.TypeSyncGame, t.snapshot(userID))
			t.sendTo(userID, protocol.TypeGameReconnected, protocol.SessionStatusData{
				InGame: true, GameID: t.id, Status: string(StatusActive),
			})
		}
		snap = t.snapshot(userID)
	})
	return snap
}

// Disconnected marks userID's last socket as closed and starts the grace
// timer. Their turn, when it arrives, is folded; if the timer is already
// running for them the fold lands at the deadline.
func (t *Table) Disconnected(userID string) {
	t.post(func() {
		p, ok := t.players[userID]
		if !ok || p.Departed() || t.finished {
			return
		}
		p.Status = StatusDisconnected
		t.publishStatus(userID, StatusDisconnected, "")
		t.cancelGrace(userID)
		grace := t.variant.DisconnectGrace()
		t.graceTimers[userID] = t.clock.AfterFunc(grace, func() {
			t.post(func() { t.graceExpired(userID) })
		})
	})
}

func (t *Table) graceExpired(userID string) {
	p, ok := t.players[userID]
	if !ok || p.Status != StatusDisconnected {
		return
	}
	delete(t.graceTimers, userID)
	p.Status = StatusLeft
	t.publishStatus(userID, StatusLeft, "grace_expired")
	t.send(protocol.TypePlayerMovedSpectator, protocol.PlayerStatusUpdateData{
		GameID: t.id, PlayerID: userID, Status: string(StatusLeft),
	})
	if t.handLive() {
		if hp := t.hand.Player(p.Seat); hp != nil && !hp.Folded {
			t.applyStep(t.hand.ForceFold(p.Seat))
			return
		}
	} else {
		t.vacate(p)
		t.maybeStartHand()
	}
	t.publishState()
}

func (t *Table) cancelGrace(userID string) {
	if timer, ok := t.graceTimers[userID]; ok {
		timer.Stop()
		delete(t.graceTimers, userID)
	}
}

// Leave removes userID voluntarily. Mid-hand the player is folded and the
// seat is vacated at the hand boundary; between hands the seat frees
// immediately.
func (t *Table) Leave(userID string) error {
	var err error
	t.call(func() {
		p, ok := t.players[userID]
		if !ok || p.Departed() {
			err = fmt.Errorf("not a player in this game")
			return
		}
		t.cancelGrace(userID)
		p.Status = StatusLeft
		t.publishStatus(userID, StatusLeft, "left")
		if t.handLive() {
			if hp := t.hand.Player(p.Seat); hp != nil && !hp.Folded {
				t.applyStep(t.hand.ForceFold(p.Seat))
				return
			}
		} else {
			t.vacate(p)
		}
		t.publishState()
	})
	return err
}

// HandleAction validates and applies a player action. Errors are returned to
// the calling socket and never mutate state.
func (t *Table) HandleAction(userID string, data protocol.ActionData) error {
	var err error
	t.call(func() { err = t.action(userID, data) })
	return err
}

func (t *Table) action(userID string, data protocol.ActionData) error {
	p, ok := t.players[userID]
	if !ok || p.Departed() {
		return fmt.Errorf("not a player in this game")
	}
	if data.Seat != 0 && data.Seat != p.Seat {
		return fmt.Errorf("seat mismatch")
	}

	if data.Type == "reveal" {
		if t.hand == nil {
			return fmt.Errorf("no hand in progress")
		}
		if data.Index == nil {
			return fmt.Errorf("reveal requires a card index")
		}
		if err := t.hand.Reveal(p.Seat, *data.Index); err != nil {
			return fmt.Errorf("cannot reveal now")
		}
		t.publishState()
		return nil
	}

	if !t.handLive() {
		return fmt.Errorf("no hand in progress")
	}
	action, ok := game.ParseAction(data.Type)
	if !ok {
		return fmt.Errorf("unknown action %q", data.Type)
	}
	res, err := t.hand.Apply(p.Seat, action, data.Amount)
	if err != nil {
		return err
	}
	t.logger.Debug("action applied", "userId", userID, "seat", p.Seat,
		"action", action.String(), "amount", data.Amount)
	t.applyStep(res)
	return nil
}

// handLive reports whether a hand is accepting actions or awaiting settlement
func (t *Table) handLive() bool {
	return t.hand != nil && t.hand.Phase >= game.Preflop && t.hand.Phase <= game.River
}

func (t *Table) dealableCount() int {
	n := 0
	for _, p := range t.players {
		if p.CanBeDealt() {
			n++
		}
	}
	return n
}

// maybeStartHand starts a new hand when the table is started, unpaused and
// two or more players can be dealt. On a cash table a lone survivor wins the
// game outright.
func (t *Table) maybeStartHand() {
	if t.finished || t.paused || !t.started || t.handLive() {
		return
	}
	if t.dealableCount() < 2 {
		if t.tournamentID == "" && t.started {
			if winner := t.soleSurvivor(); winner != "" {
				t.finishGame("completed", winner)
			}
		}
		return
	}
	t.startHand()
}

func (t *Table) soleSurvivor() string {
	var winner string
	n := 0
	for _, p := range t.players {
		if !p.Departed() && p.Chips > 0 {
			winner = p.UserID
			n++
		}
	}
	if n == 1 {
		return winner
	}
	return ""
}

func (t *Table) startHand() {
	t.applyBoundaryChanges()
	if t.dealableCount() < 2 {
		t.maybeStartHand()
		return
	}

	dealable := func(seat int, userID string) bool {
		p := t.players[userID]
		return p != nil && p.CanBeDealt()
	}
	t.buttonSeat = t.ring.NextOccupied(t.buttonSeat, dealable)

	var hps []*game.HandPlayer
	for _, p := range t.players {
		if !p.CanBeDealt() {
			continue
		}
		if p.Status == StatusWaiting {
			p.Status = StatusActive
		}
		hps = append(hps, &game.HandPlayer{UserID: p.UserID, Seat: p.Seat, Chips: p.Chips})
	}

	deck := game.NewDeck(t.rng)
	hand, res, err := game.NewHand(t.handCounter+1, hps, t.ring.Size(), t.buttonSeat,
		t.smallBlind, t.bigBlind, deck)
	if err != nil {
		t.logger.Error("start hand", "error", err)
		return
	}
	t.handCounter++
	t.hand = hand
	t.handID = gameid.NewHand()
	t.logger.Info("hand started", "handId", t.handID, "handNumber", t.handCounter,
		"players", len(hps), "button", t.buttonSeat)

	t.publishState()
	t.applyStep(res)
}

// applyBoundaryChanges runs the hand-boundary bookkeeping: departed seats are
// vacated and deferred host changes (blinds, stack adjustments) land.
func (t *Table) applyBoundaryChanges() {
	for _, p := range t.players {
		if p.Departed() && t.ring.Occupant(p.Seat) == p.UserID {
			t.vacate(p)
		}
	}
	if t.pendingBlinds != nil {
		t.smallBlind = t.pendingBlinds.smallBlind
		t.bigBlind = t.pendingBlinds.bigBlind
		t.pendingBlinds = nil
	}
	for userID, chips := range t.pendingStacks {
		if p, ok := t.players[userID]; ok && !p.Departed() {
			p.Chips = chips
		}
		delete(t.pendingStacks, userID)
	}
}

func (t *Table) vacate(p *Player) {
	if t.ring.Occupant(p.Seat) != p.UserID {
		return
	}
	t.ring.Vacate(p.Seat)
	t.send(protocol.TypeSeatVacated, protocol.SeatVacatedData{
		GameID: t.id, SeatIndex: p.Seat, PlayerID: p.UserID,
	})
}

// applyStep propagates a hand-machine step: dealt streets, the snapshot, and
// either settlement or the next turn.
func (t *Table) applyStep(res *game.StepResult) {
	for _, street := range res.Streets {
		t.send(protocol.TypeDealStreet, protocol.DealStreetData{
			GameID:         t.id,
			Round:          street.Phase.String(),
			Cards:          game.CardStrings(street.Cards),
			CommunityCards: game.CardStrings(t.hand.Board),
		})
	}
	t.publishState()
	if res.HandOver {
		t.settleHand()
		return
	}
	t.scheduleTurn()
}

// scheduleTurn arms the turn timer for the current actor. A seat whose
// player has already disconnected or departed is folded on the spot.
func (t *Table) scheduleTurn() {
	t.stopTurnTimer()
	if !t.handLive() {
		return
	}
	seat := t.hand.ActorSeat
	if seat == 0 {
		return
	}
	occupant := t.ring.Occupant(seat)
	p := t.players[occupant]
	if p == nil || p.Departed() || p.Status == StatusDisconnected {
		if p != nil {
			t.publishStatus(occupant, p.Status, "auto_fold")
		}
		t.applyStep(t.hand.ForceFold(seat))
		return
	}

	duration := t.variant.TurnTimeout()
	deadline := t.clock.Now().Add(duration)
	t.send(protocol.TypeTurnTimerStarted, protocol.TurnTimerStartedData{
		GameID:     t.id,
		Deadline:   deadline.UnixMilli(),
		Duration:   duration.Milliseconds(),
		ActiveSeat: seat,
	})
	gen := t.timerGen
	handNumber := t.hand.Number
	t.turnTimer = t.clock.AfterFunc(duration, func() {
		t.post(func() { t.turnTimeout(gen, handNumber, seat) })
	})
}

// stopTurnTimer cancels the pending turn timer; bumping the generation makes
// an already-fired callback a no-op.
func (t *Table) stopTurnTimer() {
	t.timerGen++
	if t.turnTimer != nil {
		t.turnTimer.Stop()
		t.turnTimer = nil
	}
}

// turnTimeout fires the auto-action: check when legal, fold otherwise
func (t *Table) turnTimeout(gen int, handNumber uint64, seat int) {
	if gen != t.timerGen {
		return
	}
	if !t.handLive() || t.hand.Number != handNumber || t.hand.ActorSeat != seat {
		return
	}
	userID := t.ring.Occupant(seat)
	var res *game.StepResult
	if p := t.players[userID]; p != nil && p.Status == StatusDisconnected {
		// A disconnected actor always folds, even when a check would be free
		res = t.hand.ForceFold(seat)
		t.publishStatus(userID, StatusDisconnected, "timeout_fold")
	} else if t.hand.CanCheck(seat) {
		res, _ = t.hand.Apply(seat, game.Check, 0)
		t.publishStatus(userID, t.players[userID].Status, "timeout_check")
	} else {
		res = t.hand.ForceFold(seat)
		t.publishStatus(userID, t.players[userID].Status, "timeout_fold")
	}
	t.logger.Info("turn timed out", "seat", seat, "userId", userID)
	t.applyStep(res)
}

// settleHand runs settlement, credits winners, records history, handles
// eliminations and schedules the next hand.
func (t *Table) settleHand() {
	t.stopTurnTimer()
	settlement := t.hand.Settle(t.eval)

	payouts := make(map[string]int, len(settlement.Payouts))
	for _, hp := range t.hand.Players() {
		if p, ok := t.players[hp.UserID]; ok {
			p.Chips = hp.Chips
		}
		if won, ok := settlement.Payouts[hp.Seat]; ok {
			payouts[hp.UserID] = won
		}
	}
	winnerID := ""
	if w := t.hand.Player(settlement.WinnerSeat); w != nil {
		winnerID = w.UserID
	}

	t.publishState()
	t.send(protocol.TypeHandRunout, protocol.HandRunoutData{
		GameID:     t.id,
		HandNumber: t.hand.Number,
		WinnerID:   winnerID,
		Board:      game.CardStrings(settlement.Board),
	})

	if t.recorder != nil {
		t.recorder.RecordHand(history.HandRecord{
			HandID:       t.handID,
			TableID:      t.id,
			TournamentID: t.tournamentID,
			HandNumber:   t.hand.Number,
			Board:        game.CardStrings(settlement.Board),
			WinnerID:     winnerID,
			PotTotal:     total(payouts),
			Payouts:      payouts,
			FoldedOut:    settlement.FoldedOut,
			SettledAt:    t.clock.Now(),
		})
	}

	for _, hp := range t.hand.Players() {
		p, ok := t.players[hp.UserID]
		if !ok || p.Chips > 0 || p.Departed() {
			continue
		}
		p.Status = StatusEliminated
		t.publishStatus(p.UserID, StatusEliminated, "busted")
		t.send(protocol.TypePlayerEliminated, protocol.PlayerStatusUpdateData{
			GameID: t.id, PlayerID: p.UserID, Status: string(StatusEliminated),
			Timestamp: t.clock.Now().UnixMilli(),
		})
		if t.hooks.OnPlayerBusted != nil {
			t.hooks.OnPlayerBusted(t.id, p.UserID)
		}
	}
	if t.hooks.OnHandSettled != nil {
		t.hooks.OnHandSettled(t.id)
	}

	if t.finished {
		return
	}
	if t.paused {
		t.publishState()
		return
	}
	gen := t.timerGen
	t.clock.AfterFunc(t.variant.InterHandDelay(), func() {
		t.post(func() {
			if gen == t.timerGen {
				t.maybeStartHand()
			}
		})
	})
}

// finishGame ends the table's game and publishes final statistics
func (t *Table) finishGame(reason, winnerID string) {
	if t.finished {
		return
	}
	t.finished = true
	t.stopTurnTimer()
	for userID := range t.graceTimers {
		t.cancelGrace(userID)
	}

	if reason == "internal" && t.handLive() {
		// The hand is abandoned, so every contribution comes back
		for _, hp := range t.hand.Players() {
			if p, ok := t.players[hp.UserID]; ok {
				p.Chips = hp.Chips + hp.TotalBet
			}
		}
		t.hand = nil
	}

	final := make(map[string]int, len(t.players))
	changes := make(map[string]int, len(t.players))
	for _, p := range t.players {
		final[p.UserID] = p.Chips
		changes[p.UserID] = p.Chips - t.startingStacks[p.UserID]
	}
	t.send(protocol.TypeGameFinished, protocol.GameFinishedData{
		GameID:    t.id,
		Reason:    reason,
		WinnerID:  winnerID,
		Timestamp: t.clock.Now().UnixMilli(),
		Stats: &protocol.GameStats{
			TotalHands:     t.handCounter,
			StartingStacks: t.startingStacks,
			FinalStacks:    final,
			ChipChanges:    changes,
		},
	})
	t.logger.Info("game finished", "reason", reason, "winnerId", winnerID,
		"hands", t.handCounter)
	if t.hooks.OnGameFinished != nil {
		t.hooks.OnGameFinished(t.id, winnerID)
	}
}

// Shutdown ends the game (if still running) and stops the actor
func (t *Table) Shutdown(reason string) {
	t.call(func() { t.finishGame(reason, "") })
	t.close()
}

// PlayerStatus reports userID's seat status, if they occupy a seat
func (t *Table) PlayerStatus(userID string) (Status, bool) {
	var status Status
	var ok bool
	t.call(func() {
		if p, found := t.players[userID]; found && !p.Departed() {
			status, ok = p.Status, true
		}
	})
	return status, ok
}

// Stacks returns live players' chip counts, for tournament supervision
func (t *Table) Stacks() map[string]int {
	out := make(map[string]int)
	t.call(func() {
		for _, p := range t.players {
			if !p.Departed() {
				out[p.UserID] = p.Chips
			}
		}
	})
	return out
}

// HandInProgress reports whether a hand is between deal and settlement
func (t *Table) HandInProgress() bool {
	var live bool
	t.call(func() { live = t.handLive() })
	return live
}

// TransferOut removes up to count players for tournament balancing, choosing
// seats farthest clockwise from the button so the moved players miss the
// fewest blinds. It refuses mid-hand.
func (t *Table) TransferOut(count int) ([]TransferredPlayer, error) {
	var out []TransferredPlayer
	var err error
	t.call(func() {
		if t.handLive() {
			err = fmt.Errorf("hand in progress")
			return
		}
		type cand struct {
			p    *Player
			dist int
		}
		var cands []cand
		for _, p := range t.players {
			if !p.Departed() && p.Chips > 0 {
				cands = append(cands, cand{p, t.ring.ClockwiseDistance(t.buttonSeat, p.Seat)})
			}
		}
		sort.Slice(cands, func(i, j int) bool {
			if cands[i].dist != cands[j].dist {
				return cands[i].dist > cands[j].dist
			}
			return cands[i].p.Seat < cands[j].p.Seat
		})
		for i := 0; i < count && i < len(cands); i++ {
			p := cands[i].p
			p.Status = StatusLeft
			t.vacate(p)
			t.cancelGrace(p.UserID)
			out = append(out, TransferredPlayer{UserID: p.UserID, Chips: p.Chips})
			delete(t.players, p.UserID)
		}
		t.publishState()
	})
	return out, err
}

// ExtractAll removes every live player, used when a tournament table closes
// during a merge
func (t *Table) ExtractAll() ([]TransferredPlayer, error) {
	var out []TransferredPlayer
	var err error
	t.call(func() {
		if t.handLive() {
			err = fmt.Errorf("hand in progress")
			return
		}
		for _, p := range t.players {
			if p.Departed() || p.Chips <= 0 {
				continue
			}
			p.Status = StatusLeft
			t.vacate(p)
			t.cancelGrace(p.UserID)
			out = append(out, TransferredPlayer{UserID: p.UserID, Chips: p.Chips})
			delete(t.players, p.UserID)
		}
	})
	return out, err
}

// TransferUser removes one named player for a manual tournament transfer.
// Like TransferOut it refuses mid-hand.
func (t *Table) TransferUser(userID string) (TransferredPlayer, error) {
	var out TransferredPlayer
	var err error
	t.call(func() {
		if t.handLive() {
			err = fmt.Errorf("hand in progress")
			return
		}
		p, ok := t.players[userID]
		if !ok || p.Departed() || p.Chips <= 0 {
			err = fmt.Errorf("player not found")
			return
		}
		p.Status = StatusLeft
		t.vacate(p)
		t.cancelGrace(p.UserID)
		out = TransferredPlayer{UserID: p.UserID, Chips: p.Chips}
		delete(t.players, p.UserID)
		t.publishState()
	})
	return out, err
}

// SetBlinds stages a blind change that takes effect at the next hand
func (t *Table) SetBlinds(smallBlind, bigBlind int) {
	t.post(func() {
		t.pendingBlinds = &blindLevel{smallBlind: smallBlind, bigBlind: bigBlind}
	})
}

// Pause suspends dealing at the next hand boundary
func (t *Table) Pause() {
	t.post(func() { t.pause() })
}

// Resume lifts a pause and deals the next hand if possible
func (t *Table) Resume() {
	t.post(func() { t.resume() })
}

func (t *Table) pause() {
	if t.paused || t.finished {
		return
	}
	t.paused = true
	t.publishState()
}

func (t *Table) resume() {
	if !t.paused || t.finished {
		return
	}
	t.paused = false
	t.publishState()
	t.maybeStartHand()
}

func (t *Table) send(messageType protocol.MessageType, data interface{}) {
	t.broadcast.Publish(t.id, protocol.MustMessage(messageType, data))
}

func (t *Table) sendTo(userID string, messageType protocol.MessageType, data interface{}) {
	t.broadcast.PublishTo(userID, protocol.MustMessage(messageType, data))
}

func (t *Table) publishStatus(userID string, status Status, action string) {
	t.send(protocol.TypePlayerStatusUpdate, protocol.PlayerStatusUpdateData{
		GameID:    t.id,
		PlayerID:  userID,
		Status:    string(status),
		Timestamp: t.clock.Now().UnixMilli(),
		Action:    action,
	})
}

// publishState broadcasts the authoritative snapshot. Hole cards are masked
// per recipient, so the room gets the spectator view and each seated player
// additionally gets their own.
func (t *Table) publishState() {
	t.send(protocol.TypeGameState, t.snapshot(""))
	for userID := range t.players {
		if !t.players[userID].Departed() {
			t.sendTo(userID, protocol.TypeGameState, t.snapshot(userID))
		}
	}
}

func total(m map[string]int) int {
	sum := 0
	for _, v := range m {
		sum += v
	}
	return sum
}
