package tournament

import (
	"fmt"
	"sort"

	"github.com/POKROnlineGit/Pokerv3-sub002/internal/protocol"
	"github.com/POKROnlineGit/Pokerv3-sub002/internal/table"
)

// afterSettlement runs once per hand settlement on any tournament table:
// refresh chip counts, then rebalance or merge. Tables mid-hand are left
// alone; the next settlement retries.
func (s *Supervisor) afterSettlement(tableID string) {
	if s.status != StatusActive && s.status != StatusPaused {
		return
	}
	tbl, ok := s.tables[tableID]
	if !ok {
		return
	}
	for userID, chips := range tbl.Stacks() {
		if p, found := s.participants[userID]; found && p.Status == ParticipantActive {
			p.Chips = chips
		}
	}
	if s.status == StatusActive {
		s.rebalance()
	}
}

// tableSizes counts active participants per table
func (s *Supervisor) tableSizes() map[string]int {
	sizes := make(map[string]int, len(s.tables))
	for id := range s.tables {
		sizes[id] = 0
	}
	for _, p := range s.participants {
		if p.Status == ParticipantActive {
			sizes[p.TableID]++
		}
	}
	return sizes
}

func (s *Supervisor) tableIDsSorted() []string {
	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// rebalance enforces the two field-shape rules: merge a table away whenever
// the remaining tables can hold everyone, otherwise move one player when the
// size spread reaches 2.
func (s *Supervisor) rebalance() {
	sizes := s.tableSizes()
	if len(sizes) == 0 {
		return
	}
	totalActive := s.activeCount()
	maxPer := s.settings.MaxPlayersPerTable

	if len(sizes) > 1 && totalActive <= (len(sizes)-1)*maxPer {
		if s.mergeSmallest(sizes) {
			s.rebalance()
		}
		return
	}

	if len(sizes) < 2 {
		return
	}
	var bigID, smallID string
	for _, id := range s.tableIDsSorted() {
		if bigID == "" || sizes[id] > sizes[bigID] {
			bigID = id
		}
		if smallID == "" || sizes[id] < sizes[smallID] {
			smallID = id
		}
	}
	if sizes[bigID]-sizes[smallID] < 2 {
		return
	}

	big := s.tables[bigID]
	if big.HandInProgress() {
		return
	}
	moved, err := big.TransferOut(1)
	if err != nil || len(moved) == 0 {
		return
	}
	s.placePlayer(moved[0], bigID, smallID)
	s.send(protocol.TypeTournamentTablesBalanced, protocol.TournamentBalanceData{
		TournamentID: s.id, TableIDs: s.tableIDsSorted(),
	})
	s.rebalance()
}

// mergeSmallest closes the smallest table and spreads its players across the
// rest. Returns false when the merge must wait for a hand to finish.
func (s *Supervisor) mergeSmallest(sizes map[string]int) bool {
	var smallID string
	for _, id := range s.tableIDsSorted() {
		if smallID == "" || sizes[id] < sizes[smallID] {
			smallID = id
		}
	}
	small := s.tables[smallID]
	if small.HandInProgress() {
		return false
	}
	players, err := small.ExtractAll()
	if err != nil {
		return false
	}
	delete(s.tables, smallID)
	small.Shutdown("table_merged")

	for _, tp := range players {
		destSizes := s.tableSizes()
		var destID string
		for _, id := range s.tableIDsSorted() {
			if destSizes[id] >= s.settings.MaxPlayersPerTable {
				continue
			}
			if destID == "" || destSizes[id] < destSizes[destID] {
				destID = id
			}
		}
		if destID == "" {
			s.logger.Error("merge found no destination seat", "userId", tp.UserID)
			continue
		}
		s.placePlayer(tp, smallID, destID)
	}

	s.send(protocol.TypeTournamentTablesMerged, protocol.TournamentBalanceData{
		TournamentID: s.id,
		TableIDs:     s.tableIDsSorted(),
		ClosedTables: []string{smallID},
	})
	s.logger.Info("tables merged", "closed", smallID, "remaining", len(s.tables))
	return true
}

// placePlayer seats a transferred player at their destination and wires up
// their room subscription and participant record
func (s *Supervisor) placePlayer(tp table.TransferredPlayer, fromID, destID string) {
	dest := s.tables[destID]
	seat, err := dest.SeatPlayer(tp.UserID, tp.Chips)
	if err != nil {
		s.logger.Error("transfer seat", "userId", tp.UserID, "tableId", destID, "error", err)
		return
	}
	if p, ok := s.participants[tp.UserID]; ok {
		p.TableID = destID
		p.Seat = seat
		p.Chips = tp.Chips
		s.persist(p)
	}
	if s.rooms != nil {
		s.rooms.JoinRoom(tp.UserID, destID)
	}
	transfer := protocol.TournamentTransferData{
		TournamentID:  s.id,
		PlayerID:      tp.UserID,
		SourceTableID: fromID,
		TargetTableID: destID,
		TargetSeat:    seat,
		Chips:         tp.Chips,
	}
	s.sendTo(tp.UserID, protocol.TypeTournamentTransferred, transfer)
	s.send(protocol.TypeTournamentTransferred, transfer)
	s.logger.Info("player transferred", "userId", tp.UserID,
		"from", fromID, "to", destID, "seat", seat)
}

// manualTransfer moves one named player off their current table to the table
// with the most open seats
func (s *Supervisor) manualTransfer(userID string) error {
	p, ok := s.participants[userID]
	if !ok || p.Status != ParticipantActive {
		return fmt.Errorf("player is not active")
	}
	src, ok := s.tables[p.TableID]
	if !ok {
		return fmt.Errorf("player has no table")
	}
	if len(s.tables) < 2 {
		return fmt.Errorf("no other table")
	}
	sizes := s.tableSizes()
	var destID string
	for _, id := range s.tableIDsSorted() {
		if id == p.TableID || sizes[id] >= s.settings.MaxPlayersPerTable {
			continue
		}
		if destID == "" || sizes[id] < sizes[destID] {
			destID = id
		}
	}
	if destID == "" {
		return fmt.Errorf("no seat available")
	}
	moved, err := src.TransferUser(userID)
	if err != nil {
		return err
	}
	s.placePlayer(moved, p.TableID, destID)
	return nil
}
