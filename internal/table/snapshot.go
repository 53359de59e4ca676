package table

import (
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/game"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
)

// snapshot builds the self-contained gameState for one recipient. forUser ""
// produces the spectator view: all hole cards masked except showdown and
// voluntary reveals. Clients replace their state with a snapshot wholesale.
func (t *Table) snapshot(forUser string) protocol.GameStateData {
	snap := protocol.GameStateData{
		GameID:       t.id,
		TournamentID: t.tournamentID,
		Players:      t.playerViews(forUser),
		SmallBlind:   t.smallBlind,
		BigBlind:     t.bigBlind,
		HandNumber:   t.handCounter,
		CurrentPhase: game.Waiting.String(),
		Paused:       t.paused,
	}
	// The join code is host-only; everyone else locates the table through it
	if forUser != "" && forUser == t.hostID {
		snap.JoinCode = t.joinCode
	}
	if t.hand == nil {
		return snap
	}

	h := t.hand
	snap.CommunityCards = game.CardStrings(h.Board)
	snap.ButtonSeat = h.ButtonSeat
	snap.SBSeat = h.SBSeat
	snap.BBSeat = h.BBSeat
	snap.CurrentPhase = h.Phase.String()
	snap.CurrentActorSeat = h.ActorSeat
	snap.MinRaise = h.MinRaise
	snap.LastRaiseAmount = h.LastRaiseAmount
	snap.HandNumber = h.Number
	snap.HighBet = h.HighBet
	for _, pot := range h.Pots() {
		snap.Pots = append(snap.Pots, protocol.PotView{
			Amount: pot.Amount, Eligible: pot.Eligible,
		})
	}
	return snap
}

func (t *Table) playerViews(forUser string) []protocol.PlayerView {
	views := make([]protocol.PlayerView, 0, len(t.players))
	for _, seat := range t.ring.Occupants() {
		p := t.players[t.ring.Occupant(seat)]
		if p == nil {
			continue
		}
		view := protocol.PlayerView{
			UserID: p.UserID,
			Seat:   p.Seat,
			Chips:  p.Chips,
			Status: string(p.Status),
			IsHost: p.IsHost,
		}
		if t.hand != nil {
			if hp := t.hand.Player(p.Seat); hp != nil {
				view.Chips = hp.Chips
				view.CurrentBet = hp.CurrentBet
				view.TotalBet = hp.TotalBet
				view.Folded = hp.Folded
				view.AllIn = hp.AllIn
				view.HoleCards = t.maskedHoleCards(hp, forUser)
			}
		}
		views = append(views, view)
	}
	return views
}

// maskedHoleCards decides card visibility: owners always see their own; at
// showdown every unfolded hand is open (a player must show to claim a pot);
// otherwise only voluntarily revealed indices are visible.
func (t *Table) maskedHoleCards(hp *game.HandPlayer, forUser string) []*string {
	if len(hp.HoleCards) == 0 {
		return nil
	}
	showAll := hp.UserID == forUser ||
		(t.hand.Phase >= game.Showdown && !hp.Folded && !t.hand.FoldedOut())
	out := make([]*string, len(hp.HoleCards))
	any := false
	for i, c := range hp.HoleCards {
		if showAll || revealed(hp.Revealed, i) {
			s := c.String()
			out[i] = &s
			any = true
		}
	}
	if !any {
		return nil
	}
	return out
}

func revealed(indices []int, i int) bool {
	for _, r := range indices {
		if r == i {
			return true
		}
	}
	return false
}
