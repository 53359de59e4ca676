package table

import (
	"fmt"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
)

// Admin action type strings accepted from private-table hosts
const (
	AdminPause     = "ADMIN_PAUSE"
	AdminResume    = "ADMIN_RESUME"
	AdminStartGame = "ADMIN_START_GAME"
	AdminKick      = "ADMIN_KICK"
	AdminBan       = "ADMIN_BAN"
	AdminApprove   = "ADMIN_APPROVE"
	AdminReject    = "ADMIN_REJECT"
	AdminSetStack  = "ADMIN_SET_STACK"
	AdminSetBlinds = "ADMIN_SET_BLINDS"
)

// Admin executes a host-only operation. Non-hosts are rejected without any
// state change.
func (t *Table) Admin(userID string, data protocol.AdminActionData) error {
	var err error
	t.call(func() { err = t.admin(userID, data) })
	return err
}

func (t *Table) admin(userID string, data protocol.AdminActionData) error {
	if t.hostID == "" || userID != t.hostID {
		return fmt.Errorf("host only")
	}
	if t.finished {
		return fmt.Errorf("game is finished")
	}

	switch data.Type {
	case AdminPause:
		t.pause()
	case AdminResume:
		t.resume()

	case AdminStartGame:
		if t.dealableCount() < 2 {
			return fmt.Errorf("need at least 2 players")
		}
		t.started = true
		t.maybeStartHand()

	case AdminKick:
		return t.removePlayer(data.TargetID, false)
	case AdminBan:
		return t.removePlayer(data.TargetID, true)

	case AdminApprove:
		return t.approveSeat(data.TargetID, data.Amount)
	case AdminReject:
		return t.rejectSeat(data.TargetID)

	case AdminSetStack:
		p, ok := t.players[data.TargetID]
		if !ok || p.Departed() {
			return fmt.Errorf("player not found")
		}
		if data.Amount < 0 {
			return fmt.Errorf("invalid stack amount")
		}
		if t.handLive() && t.hand.Player(p.Seat) != nil {
			// Mid-hand stack edits would corrupt pot accounting; defer
			t.pendingStacks[p.UserID] = data.Amount
		} else {
			p.Chips = data.Amount
			t.publishState()
		}

	case AdminSetBlinds:
		if data.SmallBlind <= 0 || data.BigBlind <= 0 || data.BigBlind < data.SmallBlind {
			return fmt.Errorf("invalid blinds")
		}
		t.pendingBlinds = &blindLevel{smallBlind: data.SmallBlind, bigBlind: data.BigBlind}

	default:
		return fmt.Errorf("unknown admin action %q", data.Type)
	}
	return nil
}

// removePlayer kicks (and optionally bans) a player: force-folded out of any
// live hand, chips already in the pot stay forfeited, seat vacated at the
// hand boundary.
func (t *Table) removePlayer(targetID string, ban bool) error {
	p, ok := t.players[targetID]
	if !ok || p.Departed() {
		return fmt.Errorf("player not found")
	}
	if targetID == t.hostID {
		return fmt.Errorf("cannot remove the host")
	}
	if ban {
		t.banned[targetID] = true
	}
	t.cancelGrace(targetID)
	p.Status = StatusRemoved
	t.publishStatus(targetID, StatusRemoved, "")
	if t.handLive() {
		if hp := t.hand.Player(p.Seat); hp != nil && !hp.Folded {
			t.applyStep(t.hand.ForceFold(p.Seat))
			return nil
		}
	} else {
		t.vacate(p)
	}
	t.publishState()
	return nil
}

// RequestSeat enqueues a non-seated user's request to join a private table.
// The host sees a seat_request event and approves or rejects it.
func (t *Table) RequestSeat(userID string) error {
	var err error
	t.call(func() {
		if t.hostID == "" {
			err = fmt.Errorf("not a private game")
			return
		}
		if t.banned[userID] {
			err = fmt.Errorf("not allowed to join this game")
			return
		}
		if p, ok := t.players[userID]; ok && !p.Departed() {
			err = fmt.Errorf("already seated")
			return
		}
		for _, req := range t.pendingSeats {
			if req.UserID == userID {
				return // idempotent
			}
		}
		t.pendingSeats = append(t.pendingSeats, seatRequest{UserID: userID, At: t.clock.Now()})
		t.sendTo(t.hostID, protocol.TypeSeatRequest, protocol.SeatRequestData{
			GameID: t.id, UserID: userID,
		})
	})
	return err
}

func (t *Table) approveSeat(targetID string, chips int) error {
	idx := -1
	for i, req := range t.pendingSeats {
		if req.UserID == targetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("no pending request")
	}
	t.pendingSeats = append(t.pendingSeats[:idx], t.pendingSeats[idx+1:]...)
	if chips <= 0 {
		chips = t.variant.StartingStack
	}
	_, err := t.seat(targetID, 0, chips)
	return err
}

func (t *Table) rejectSeat(targetID string) error {
	for i, req := range t.pendingSeats {
		if req.UserID == targetID {
			t.pendingSeats = append(t.pendingSeats[:i], t.pendingSeats[i+1:]...)
			t.sendTo(targetID, protocol.TypeError, protocol.ErrorData{
				Error: "seat_rejected", Message: "Seat request rejected",
			})
			return nil
		}
	}
	return fmt.Errorf("no pending request")
}

// Remove kicks userID out on behalf of the table's owner; tournament
// supervisors use this for bans on host-less tables. The removal also bars
// re-seating.
func (t *Table) Remove(userID string) error {
	var err error
	t.call(func() { err = t.removePlayer(userID, true) })
	return err
}

// HostSelfSeat seats the host, optionally at a chosen seat
func (t *Table) HostSelfSeat(userID string, seatIndex *int) error {
	var err error
	t.call(func() {
		if t.hostID == "" || userID != t.hostID {
			err = fmt.Errorf("host only")
			return
		}
		seat := 0
		if seatIndex != nil {
			seat = *seatIndex
		}
		_, err = t.seat(userID, seat, t.variant.StartingStack)
	})
	return err
}
