package game

import "fmt"

// SeatRing is a fixed-size ring of seats numbered 1..N. Empty seats are
// retained; traversal helpers advance modulo N in increasing seat order.
type SeatRing struct {
	occupants []string // index 0 holds seat 1
}

// NewSeatRing creates a ring with n seats, all empty
func NewSeatRing(n int) *SeatRing {
	return &SeatRing{occupants: make([]string, n)}
}

// Size returns the number of seats in the ring
func (r *SeatRing) Size() int {
	return len(r.occupants)
}

// Seat places userID at seatNumber. The seat must be empty and the user must
// not already occupy another seat.
func (r *SeatRing) Seat(userID string, seatNumber int) error {
	if seatNumber < 1 || seatNumber > len(r.occupants) {
		return fmt.Errorf("seat %d out of range 1..%d", seatNumber, len(r.occupants))
	}
	if r.occupants[seatNumber-1] != "" {
		return fmt.Errorf("seat %d is taken", seatNumber)
	}
	if s := r.SeatOf(userID); s != 0 {
		return fmt.Errorf("user already seated at %d", s)
	}
	r.occupants[seatNumber-1] = userID
	return nil
}

// Vacate empties seatNumber and returns the previous occupant, if any
func (r *SeatRing) Vacate(seatNumber int) string {
	if seatNumber < 1 || seatNumber > len(r.occupants) {
		return ""
	}
	prev := r.occupants[seatNumber-1]
	r.occupants[seatNumber-1] = ""
	return prev
}

// Occupant returns the userID at seatNumber, or "" if empty
func (r *SeatRing) Occupant(seatNumber int) string {
	if seatNumber < 1 || seatNumber > len(r.occupants) {
		return ""
	}
	return r.occupants[seatNumber-1]
}

// SeatOf returns the seat number of userID, or 0 if not seated
func (r *SeatRing) SeatOf(userID string) int {
	for i, occ := range r.occupants {
		if occ != "" && occ == userID {
			return i + 1
		}
	}
	return 0
}

// Occupants returns occupied seat numbers in ascending order
func (r *SeatRing) Occupants() []int {
	var seats []int
	for i, occ := range r.occupants {
		if occ != "" {
			seats = append(seats, i+1)
		}
	}
	return seats
}

// Count returns the number of occupied seats
func (r *SeatRing) Count() int {
	n := 0
	for _, occ := range r.occupants {
		if occ != "" {
			n++
		}
	}
	return n
}

// FirstFree returns the lowest empty seat number, or 0 if the ring is full
func (r *SeatRing) FirstFree() int {
	for i, occ := range r.occupants {
		if occ == "" {
			return i + 1
		}
	}
	return 0
}

// NextOccupied returns the first occupied seat strictly after from (modulo
// the ring) whose occupant passes filter. Returns 0 if no seat qualifies.
// A nil filter accepts every occupant.
func (r *SeatRing) NextOccupied(from int, filter func(seat int, userID string) bool) int {
	n := len(r.occupants)
	for i := 1; i <= n; i++ {
		seat := (from-1+i)%n + 1
		occ := r.occupants[seat-1]
		if occ == "" {
			continue
		}
		if filter == nil || filter(seat, occ) {
			return seat
		}
	}
	return 0
}

// AssignPositions derives the small and big blind seats for a hand with the
// given button seat. Heads-up the button is the small blind; otherwise the
// blinds are the next two qualifying seats clockwise from the button.
func (r *SeatRing) AssignPositions(buttonSeat int, filter func(seat int, userID string) bool) (sb, bb int) {
	count := 0
	for i, occ := range r.occupants {
		if occ != "" && (filter == nil || filter(i+1, occ)) {
			count++
		}
	}
	if count == 2 {
		sb = buttonSeat
		bb = r.NextOccupied(buttonSeat, filter)
		return sb, bb
	}
	sb = r.NextOccupied(buttonSeat, filter)
	bb = r.NextOccupied(sb, filter)
	return sb, bb
}

// ClockwiseDistance returns the number of steps from seat a to seat b moving
// clockwise (increasing seat numbers, wrapping at the ring size).
func (r *SeatRing) ClockwiseDistance(a, b int) int {
	n := len(r.occupants)
	return ((b - a) % n + n) % n
}
