package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchValidate(t *testing.T) {
	start := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		m       Match
		wantErr string
	}{
		{"ok", Match{TeamA: "CSK", TeamB: "MI", ScheduledStart: start}, ""},
		{"missing team", Match{TeamA: "CSK", ScheduledStart: start}, "both team names are required"},
		{"same team", Match{TeamA: "CSK", TeamB: "csk", ScheduledStart: start}, "team names must be different"},
		{"same team padded", Match{TeamA: " CSK ", TeamB: "CSK", ScheduledStart: start}, "team names must be different"},
		{"no start", Match{TeamA: "CSK", TeamB: "MI"}, "a valid start time is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.m.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.wantErr, ve.Error())
		})
	}
}

func TestMatchNormalize(t *testing.T) {
	m := Match{ID: "m1", Status: "live", Winner: "CSK"}
	m.Normalize()
	assert.Equal(t, StatusUpcoming, m.Status)
	assert.Empty(t, m.Winner)
	assert.Equal(t, "TBD", m.TeamA)
	assert.Equal(t, "TBD", m.TeamB)

	done := Match{ID: "m2", TeamA: "CSK", TeamB: "MI", Status: StatusCompleted, Winner: "CSK"}
	done.Normalize()
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, "CSK", done.Winner)
}

func TestMatchHelpers(t *testing.T) {
	m := Match{TeamA: "CSK", TeamB: "MI"}
	assert.True(t, m.HasTeam("CSK"))
	assert.True(t, m.HasTeam("MI"))
	assert.False(t, m.HasTeam("RCB"))
	assert.False(t, m.HasTeam(""))

	assert.False(t, Match{Status: StatusUpcoming}.Terminal())
	assert.True(t, Match{Status: StatusCompleted}.Terminal())
	assert.True(t, Match{Status: StatusNoResult}.Terminal())
}

func TestPredictionID(t *testing.T) {
	assert.Equal(t, "m1_u1", PredictionID("m1", "u1"))
}
