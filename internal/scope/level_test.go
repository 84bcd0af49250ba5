package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected Level
		ok       bool
	}{
		{"ALL", LevelAll, true},
		{"STATE", LevelAll, true},
		{"RANGE", LevelRange, true},
		{"DISTRICT", LevelDistrict, true},
		{"SUBDIVISION", LevelSubDivision, true},
		{"SUB_DIVISION", LevelSubDivision, true},
		{"POLICE_STATION", LevelPoliceStation, true},
		{"BEAT", LevelBeat, true},
		{"NONE", LevelNone, true},
		{"", "", false},
		{"GALAXY", "", false},
		{"all", "", false}, // levels are stored upper case, no folding
	}

	for _, tc := range testCases {
		t.Run("input "+tc.input, func(t *testing.T) {
			level, ok := ParseLevel(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, level)
		})
	}
}
