package tournament

import (
	"fmt"
	"time"
)

// BlindLevel is one step of the blind structure
type BlindLevel struct {
	SmallBlind int `json:"smallBlind" hcl:"small_blind"`
	BigBlind   int `json:"bigBlind" hcl:"big_blind"`
}

// Settings configure a tournament. They may only change during setup.
type Settings struct {
	Name                     string       `json:"name"`
	MaxPlayersPerTable       int          `json:"maxPlayersPerTable"`
	StartingStack            int          `json:"startingStack"`
	BlindLevels              []BlindLevel `json:"blindLevels"`
	BlindLevelDurationMillis int64        `json:"blindLevelDurationMillis"`
	TurnTimeoutMillis        int64        `json:"turnTimeoutMillis,omitempty"`
}

// DefaultSettings is a playable baseline a host can start from
func DefaultSettings() Settings {
	return Settings{
		Name:               "Tournament",
		MaxPlayersPerTable: 9,
		StartingStack:      1500,
		BlindLevels: []BlindLevel{
			{SmallBlind: 10, BigBlind: 20},
			{SmallBlind: 15, BigBlind: 30},
			{SmallBlind: 25, BigBlind: 50},
			{SmallBlind: 50, BigBlind: 100},
			{SmallBlind: 75, BigBlind: 150},
			{SmallBlind: 100, BigBlind: 200},
		},
		BlindLevelDurationMillis: 600_000,
	}
}

// Validate enforces the structural rules on tournament settings
func (s Settings) Validate() error {
	if s.MaxPlayersPerTable < 2 || s.MaxPlayersPerTable > 10 {
		return fmt.Errorf("maxPlayersPerTable must be 2..10")
	}
	if s.StartingStack <= 0 {
		return fmt.Errorf("starting stack must be positive")
	}
	if len(s.BlindLevels) == 0 {
		return fmt.Errorf("blind structure must not be empty")
	}
	if s.BlindLevelDurationMillis <= 0 {
		return fmt.Errorf("blind level duration must be positive")
	}
	prev := BlindLevel{}
	for i, lvl := range s.BlindLevels {
		if lvl.SmallBlind <= 0 || lvl.BigBlind <= lvl.SmallBlind {
			return fmt.Errorf("level %d: big blind must exceed small blind", i+1)
		}
		if lvl.SmallBlind < prev.SmallBlind || lvl.BigBlind < prev.BigBlind {
			return fmt.Errorf("level %d: blinds must not decrease", i+1)
		}
		prev = lvl
	}
	return nil
}

// LevelDuration returns the blind level length
func (s Settings) LevelDuration() time.Duration {
	return time.Duration(s.BlindLevelDurationMillis) * time.Millisecond
}

// Level returns the blind level for index, clamping past the last level
func (s Settings) Level(index int) BlindLevel {
	if index >= len(s.BlindLevels) {
		index = len(s.BlindLevels) - 1
	}
	return s.BlindLevels[index]
}

// LastLevel reports whether index is at or past the final blind level
func (s Settings) LastLevel(index int) bool {
	return index >= len(s.BlindLevels)-1
}
