package table

// Status tracks a seated player's connection and participation state
type Status string

const (
	// StatusActive plays the current hand
	StatusActive Status = "ACTIVE"
	// StatusWaiting joined mid-hand and is dealt in at the next hand boundary
	StatusWaiting Status = "WAITING_FOR_NEXT_HAND"
	// StatusDisconnected has no open socket but holds the seat until the
	// grace deadline
	StatusDisconnected Status = "DISCONNECTED"
	// StatusLeft exhausted the grace window or left voluntarily; the seat is
	// vacated at the next hand boundary
	StatusLeft Status = "LEFT"
	// StatusRemoved was kicked or banned by the host
	StatusRemoved Status = "REMOVED"
	// StatusEliminated busted to zero chips
	StatusEliminated Status = "ELIMINATED"
)

// Player is a seated participant at a table. All mutation happens on the
// table's actor goroutine.
type Player struct {
	UserID string
	Seat   int
	Chips  int
	Status Status
	IsHost bool
}

// CanBeDealt reports whether the player takes part in the next hand
func (p *Player) CanBeDealt() bool {
	if p.Chips <= 0 {
		return false
	}
	switch p.Status {
	case StatusActive, StatusWaiting, StatusDisconnected:
		return true
	}
	return false
}

// Departed reports whether the seat should be vacated at the hand boundary
func (p *Player) Departed() bool {
	switch p.Status {
	case StatusLeft, StatusRemoved, StatusEliminated:
		return true
	}
	return false
}
