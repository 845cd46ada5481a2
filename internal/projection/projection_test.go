package projection

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchday-backend/internal/models"
	"matchday-backend/internal/status"
)

var projNow = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func newTestProjector() (*Projector, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(projNow)
	return New(clock), clock
}

func member(id, name string, points int64) models.User {
	return models.User{ID: id, DisplayName: name, Role: models.RoleMember, Points: points}
}

func TestLeaderboardOrderAndRanks(t *testing.T) {
	p, _ := newTestProjector()
	p.ReplaceUsers([]models.User{
		member("u1", "bob", 5),
		member("u2", "alice", 5),
		member("u3", "carol", 9),
		member("u4", "dave", 0),
		{ID: "u5", DisplayName: "root", Role: models.RoleAdmin, Points: 99},
		{ID: "u6", DisplayName: "ghost", Role: models.RoleMember, Points: 7, Deleted: true},
	})

	rows := p.Leaderboard()
	require.Len(t, rows, 4, "admins and removed accounts never rank")

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.User.DisplayName
		assert.Equal(t, i+1, r.Rank)
	}
	// equal points break ties by display name ascending
	assert.Equal(t, []string{"carol", "alice", "bob", "dave"}, names)
}

func TestReplaceUsersNormalizesMalformedDocuments(t *testing.T) {
	p, _ := newTestProjector()
	p.ReplaceUsers([]models.User{
		{ID: "", DisplayName: "dropped"},
		{ID: "u1", DisplayName: "", Role: "moderator", Points: -3},
	})

	u, ok := p.UserByID("u1")
	require.True(t, ok)
	assert.Equal(t, "Unknown", u.DisplayName)
	assert.Equal(t, models.RoleMember, u.Role)
	assert.EqualValues(t, 0, u.Points)

	_, ok = p.UserByID("")
	assert.False(t, ok, "documents without an id are skipped")
}

func TestMatchesPartitionAndOrder(t *testing.T) {
	p, _ := newTestProjector()
	p.ReplaceMatches([]models.Match{
		{ID: "done", TeamA: "CSK", TeamB: "MI", ScheduledStart: projNow.Add(-48 * time.Hour), Status: models.StatusCompleted, Winner: "CSK"},
		{ID: "later", TeamA: "RCB", TeamB: "KKR", ScheduledStart: projNow.Add(2 * time.Hour), Status: models.StatusUpcoming},
		{ID: "running", TeamA: "SRH", TeamB: "GT", ScheduledStart: projNow.Add(-time.Hour), Status: models.StatusUpcoming},
		{ID: "void", TeamA: "LSG", TeamB: "DC", ScheduledStart: projNow.Add(-24 * time.Hour), Status: models.StatusNoResult},
	})

	active, history := p.Matches()

	require.Len(t, active, 2)
	assert.Equal(t, "running", active[0].ID)
	assert.Equal(t, status.Live, active[0].EffectiveStatus)
	assert.Equal(t, "later", active[1].ID)
	assert.Equal(t, status.Upcoming, active[1].EffectiveStatus)

	require.Len(t, history, 2)
	assert.Equal(t, "done", history[0].ID)
	assert.Equal(t, models.StatusCompleted, history[0].EffectiveStatus)
	assert.Equal(t, "void", history[1].ID)
	assert.Equal(t, models.StatusNoResult, history[1].EffectiveStatus)
}

func TestMatchesPartitionFollowsClock(t *testing.T) {
	p, clock := newTestProjector()
	p.ReplaceMatches([]models.Match{
		{ID: "m1", TeamA: "CSK", TeamB: "MI", ScheduledStart: projNow.Add(time.Minute), Status: models.StatusUpcoming},
	})

	active, _ := p.Matches()
	require.Len(t, active, 1)
	assert.Equal(t, status.Upcoming, active[0].EffectiveStatus)

	// nothing was rewritten in the store, only the clock moved
	clock.Advance(2 * time.Minute)
	active, _ = p.Matches()
	require.Len(t, active, 1)
	assert.Equal(t, status.Live, active[0].EffectiveStatus)
}

func TestReplaceMatchesNormalizesStoredLive(t *testing.T) {
	p, _ := newTestProjector()
	p.ReplaceMatches([]models.Match{
		{ID: "m1", TeamA: "CSK", TeamB: "MI", ScheduledStart: projNow.Add(time.Hour), Status: "live", Winner: "CSK"},
	})

	v, ok := p.MatchByID("m1")
	require.True(t, ok)
	assert.Equal(t, models.StatusUpcoming, v.Status, "a stored live is never trusted")
	assert.Empty(t, v.Winner, "winner only survives on completed matches")
	assert.Equal(t, status.Upcoming, v.EffectiveStatus)
}

func TestVoteTally(t *testing.T) {
	p, _ := newTestProjector()
	p.ReplaceUsers([]models.User{
		member("u1", "carol", 0),
		member("u2", "alice", 0),
		member("u3", "bob", 0),
		{ID: "u4", DisplayName: "root", Role: models.RoleAdmin},
	})
	p.ReplaceMatches([]models.Match{
		{ID: "m1", TeamA: "CSK", TeamB: "MI", ScheduledStart: projNow.Add(time.Hour), Status: models.StatusUpcoming},
	})
	p.ReplacePredictions([]models.Prediction{
		{ID: "m1_u1", MatchID: "m1", UserID: "u1", Team: "CSK"},
		{ID: "m1_u2", MatchID: "m1", UserID: "u2", Team: "CSK"},
		{ID: "m1_u3", MatchID: "m1", UserID: "u3", Team: "MI"},
		{ID: "m1_u4", MatchID: "m1", UserID: "u4", Team: "CSK"},
	})

	a, b, ok := p.VoteTally("m1")
	require.True(t, ok)

	assert.Equal(t, "CSK", a.Team)
	assert.Equal(t, 2, a.Count, "admin votes do not count")
	require.Len(t, a.Voters, 2)
	assert.Equal(t, "alice", a.Voters[0].DisplayName)
	assert.Equal(t, "carol", a.Voters[1].DisplayName)

	assert.Equal(t, "MI", b.Team)
	assert.Equal(t, 1, b.Count)

	_, _, ok = p.VoteTally("gone")
	assert.False(t, ok)
}

func TestRemovableUsers(t *testing.T) {
	p, _ := newTestProjector()
	p.ReplaceUsers([]models.User{
		member("u1", "carol", 0),
		member("u2", "alice", 0),
		{ID: "u3", DisplayName: "root", Role: models.RoleAdmin},
		{ID: "u4", DisplayName: "ghost", Role: models.RoleMember, Deleted: true},
	})

	out := p.RemovableUsers()
	require.Len(t, out, 2)
	assert.Equal(t, "alice", out[0].DisplayName)
	assert.Equal(t, "carol", out[1].DisplayName)
}

func TestCurrentPick(t *testing.T) {
	p, _ := newTestProjector()
	p.ReplacePredictions([]models.Prediction{
		{ID: "m1_u1", MatchID: "m1", UserID: "u1", Team: "CSK"},
		{ID: "bad", MatchID: "", UserID: "u9", Team: "MI"},
	})

	assert.Equal(t, "CSK", p.CurrentPick("m1", "u1"))
	assert.Empty(t, p.CurrentPick("m1", "u2"))
	assert.Empty(t, p.CurrentPick("", "u9"), "orphan predictions are skipped")
}
