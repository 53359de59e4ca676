package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

func TestSettingsValidate(t *testing.T) {
	base := DefaultSettings()

	s := base
	s.MaxPlayersPerTable = 1
	assert.Error(t, s.Validate())

	s = base
	s.MaxPlayersPerTable = 11
	assert.Error(t, s.Validate())

	s = base
	s.StartingStack = 0
	assert.Error(t, s.Validate())

	s = base
	s.BlindLevels = nil
	assert.Error(t, s.Validate())

	s = base
	s.BlindLevelDurationMillis = 0
	assert.Error(t, s.Validate())

	s = base
	s.BlindLevels = []BlindLevel{{SmallBlind: 10, BigBlind: 10}}
	assert.Error(t, s.Validate(), "big blind must exceed small blind")

	s = base
	s.BlindLevels = []BlindLevel{
		{SmallBlind: 20, BigBlind: 40},
		{SmallBlind: 10, BigBlind: 20},
	}
	assert.Error(t, s.Validate(), "blinds must not decrease")
}

func TestSettingsLevelClamps(t *testing.T) {
	s := DefaultSettings()
	last := s.BlindLevels[len(s.BlindLevels)-1]

	assert.Equal(t, s.BlindLevels[0], s.Level(0))
	assert.Equal(t, last, s.Level(len(s.BlindLevels)))
	assert.Equal(t, last, s.Level(100))

	assert.False(t, s.LastLevel(0))
	assert.True(t, s.LastLevel(len(s.BlindLevels)-1))
	assert.True(t, s.LastLevel(100))
}
