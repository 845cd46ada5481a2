package projection

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchday-backend/internal/models"
)

// statsBuilder assembles a chronological run of terminal matches with the
// user's picks, oldest first.
type statsBuilder struct {
	matches []models.Match
	preds   []models.Prediction
}

func (b *statsBuilder) add(teamA, teamB, winner, pick string, abandoned bool) {
	id := fmt.Sprintf("m%d", len(b.matches)+1)
	m := models.Match{
		ID: id, TeamA: teamA, TeamB: teamB,
		ScheduledStart: projNow.Add(time.Duration(len(b.matches)-100) * time.Hour),
		Status:         models.StatusCompleted,
		Winner:         winner,
		Scored:         true,
	}
	if abandoned {
		m.Status = models.StatusNoResult
		m.Winner = ""
	}
	b.matches = append(b.matches, m)
	if pick != "" {
		b.preds = append(b.preds, models.Prediction{
			ID: models.PredictionID(id, "u1"), MatchID: id, UserID: "u1", Team: pick,
		})
	}
}

func (b *statsBuilder) load(p *Projector) {
	p.ReplaceMatches(b.matches)
	p.ReplacePredictions(b.preds)
}

func TestStatsEmpty(t *testing.T) {
	p, _ := newTestProjector()
	s := p.Stats("u1")
	assert.Zero(t, s.TotalCompleted)
	assert.Empty(t, s.History)
}

func TestStatsStreaksAndRates(t *testing.T) {
	p, _ := newTestProjector()
	b := &statsBuilder{}
	b.add("CSK", "MI", "CSK", "CSK", false)  // win, streak 1
	b.add("CSK", "RCB", "CSK", "CSK", false) // win, streak 2
	b.add("MI", "KKR", "MI", "KKR", false)   // loss, streak resets
	b.add("CSK", "GT", "CSK", "CSK", false)  // win, streak 1
	b.add("SRH", "DC", "SRH", "", false)     // missed pick, streak resets
	b.add("CSK", "LSG", "CSK", "CSK", false) // win, streak 1
	b.add("MI", "GT", "", "MI", true)        // abandoned, streak resets
	b.add("CSK", "MI", "CSK", "CSK", false)  // win, streak 1
	b.load(p)

	s := p.Stats("u1")
	assert.Equal(t, 8, s.TotalCompleted)
	assert.Equal(t, 7, s.Voted)
	assert.Equal(t, 5, s.Correct)
	assert.Equal(t, 1, s.CurrentStreak)
	assert.Equal(t, 2, s.LongestStreak)
	assert.Equal(t, 71, s.WinRatePct)       // 5/7
	assert.Equal(t, 88, s.ParticipationPct) // 7/8
}

func TestStatsFavoriteAndNemesis(t *testing.T) {
	p, _ := newTestProjector()
	b := &statsBuilder{}
	b.add("CSK", "MI", "CSK", "CSK", false) // favorite pick, win
	b.add("CSK", "MI", "MI", "CSK", false)  // favorite pick, MI beats us
	b.add("CSK", "KKR", "KKR", "CSK", false)
	b.add("RCB", "MI", "MI", "RCB", false) // MI beats us again
	b.add("KKR", "GT", "KKR", "GT", false) // KKR beats us again
	b.load(p)

	s := p.Stats("u1")
	assert.Equal(t, "CSK", s.FavoriteTeam)
	assert.Equal(t, 33, s.FavoriteSuccessPct) // 1 win of 3 CSK picks
	// MI and KKR both won against us twice; first seen wins the tie
	assert.Equal(t, "MI", s.NemesisTeam)
}

func TestStatsFavoriteTieKeepsFirstSeen(t *testing.T) {
	p, _ := newTestProjector()
	b := &statsBuilder{}
	b.add("MI", "CSK", "MI", "MI", false)
	b.add("CSK", "KKR", "CSK", "CSK", false)
	b.add("MI", "GT", "MI", "MI", false)
	b.add("CSK", "RCB", "CSK", "CSK", false)
	b.load(p)

	s := p.Stats("u1")
	assert.Equal(t, "MI", s.FavoriteTeam)
}

func TestStatsHistoryBoundedNewestFirst(t *testing.T) {
	p, _ := newTestProjector()
	b := &statsBuilder{}
	for i := 0; i < 14; i++ {
		b.add("CSK", "MI", "CSK", "CSK", false)
	}
	b.load(p)

	s := p.Stats("u1")
	assert.Equal(t, 14, s.TotalCompleted)
	require.Len(t, s.History, 10)
	assert.Equal(t, "m14", s.History[0].Match.ID, "newest first")
	assert.Equal(t, "m5", s.History[9].Match.ID, "oldest entries fall off")
	assert.True(t, s.History[0].Won)
	assert.Equal(t, "CSK", s.History[0].Pick)
}

func TestStatsAbandonedMatchNeitherWonNorLost(t *testing.T) {
	p, _ := newTestProjector()
	b := &statsBuilder{}
	b.add("CSK", "MI", "", "CSK", true)
	b.load(p)

	s := p.Stats("u1")
	require.Len(t, s.History, 1)
	assert.False(t, s.History[0].Won)
	assert.False(t, s.History[0].Lost)
	assert.Equal(t, "CSK", s.History[0].Pick)
}
