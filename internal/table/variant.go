package table

import (
	"fmt"
	"time"
)

// Variant category values
const (
	CategoryCash       = "cash"
	CategoryCasual     = "casual"
	CategoryTournament = "tournament"
)

// Variant describes a game configuration players can queue for or host
// privately. It is immutable once loaded; stakes and sizing are fixed for
// the lifetime of a table.
type Variant struct {
	Slug                  string `hcl:"slug,label"`
	Name                  string `hcl:"name"`
	MaxPlayers            int    `hcl:"max_players"`
	SmallBlind            int    `hcl:"small_blind"`
	BigBlind              int    `hcl:"big_blind"`
	StartingStack         int    `hcl:"starting_stack"`
	BuyIn                 int    `hcl:"buy_in,optional"`
	Category              string `hcl:"category"`
	TurnTimeoutMillis     int64  `hcl:"turn_timeout_millis,optional"`
	DisconnectGraceMillis int64  `hcl:"disconnect_grace_millis,optional"`
	InterHandDelayMillis  int64  `hcl:"inter_hand_delay_millis,optional"`
}

// Validate rejects configurations that cannot produce a playable table
func (v Variant) Validate() error {
	if v.Slug == "" {
		return fmt.Errorf("variant slug required")
	}
	if v.MaxPlayers < 2 || v.MaxPlayers > 10 {
		return fmt.Errorf("variant %s: max_players must be 2..10", v.Slug)
	}
	if v.SmallBlind <= 0 || v.BigBlind <= 0 || v.BigBlind < v.SmallBlind {
		return fmt.Errorf("variant %s: invalid blinds", v.Slug)
	}
	if v.StartingStack < v.BigBlind {
		return fmt.Errorf("variant %s: starting stack below big blind", v.Slug)
	}
	switch v.Category {
	case CategoryCash, CategoryCasual, CategoryTournament:
	default:
		return fmt.Errorf("variant %s: unknown category %q", v.Slug, v.Category)
	}
	return nil
}

// TurnTimeout returns the per-action clock duration, defaulting to 30s
func (v Variant) TurnTimeout() time.Duration {
	if v.TurnTimeoutMillis <= 0 {
		return 30 * time.Second
	}
	return time.Duration(v.TurnTimeoutMillis) * time.Millisecond
}

// DisconnectGrace returns the reconnect window, defaulting to 60s
func (v Variant) DisconnectGrace() time.Duration {
	if v.DisconnectGraceMillis <= 0 {
		return 60 * time.Second
	}
	return time.Duration(v.DisconnectGraceMillis) * time.Millisecond
}

// InterHandDelay returns the pause between settlement and the next hand,
// defaulting to 3s
func (v Variant) InterHandDelay() time.Duration {
	if v.InterHandDelayMillis <= 0 {
		return 3 * time.Second
	}
	return time.Duration(v.InterHandDelayMillis) * time.Millisecond
}

// QueueTarget is the matchmaker fill size: tables launch full
func (v Variant) QueueTarget() int {
	return v.MaxPlayers
}

// Stakes renders the blind structure for table listings
func (v Variant) Stakes() string {
	return fmt.Sprintf("%d/%d", v.SmallBlind, v.BigBlind)
}
