// Package projection holds the in-memory view of the three collections.
// The store is the single source of truth: every change notification swaps
// in a full fresh document set and all aggregates are re-derived from it,
// so a rebuild is always safe to run again.
package projection

import (
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"

	"matchday-backend/internal/metrics"
	"matchday-backend/internal/models"
	"matchday-backend/internal/status"
)

type Projector struct {
	clock clockwork.Clock

	mu      sync.RWMutex
	users   []models.User
	matches []models.Match
	// matchID -> userID -> team
	picks map[string]map[string]string
}

func New(clock clockwork.Clock) *Projector {
	return &Projector{
		clock: clock,
		picks: map[string]map[string]string{},
	}
}

func (p *Projector) ReplaceUsers(users []models.User) {
	clean := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.ID == "" {
			continue
		}
		u.Normalize()
		clean = append(clean, u)
	}

	p.mu.Lock()
	p.users = clean
	p.mu.Unlock()
	metrics.ProjectionRebuilds.WithLabelValues("users").Inc()
}

func (p *Projector) ReplaceMatches(matches []models.Match) {
	clean := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.ID == "" {
			continue
		}
		m.Normalize()
		clean = append(clean, m)
	}
	sort.SliceStable(clean, func(i, j int) bool {
		return clean[i].ScheduledStart.Before(clean[j].ScheduledStart)
	})

	p.mu.Lock()
	p.matches = clean
	p.mu.Unlock()
	metrics.ProjectionRebuilds.WithLabelValues("matches").Inc()
}

func (p *Projector) ReplacePredictions(preds []models.Prediction) {
	picks := map[string]map[string]string{}
	for _, pr := range preds {
		if pr.MatchID == "" || pr.UserID == "" {
			continue
		}
		if picks[pr.MatchID] == nil {
			picks[pr.MatchID] = map[string]string{}
		}
		picks[pr.MatchID][pr.UserID] = pr.Team
	}

	p.mu.Lock()
	p.picks = picks
	p.mu.Unlock()
	metrics.ProjectionRebuilds.WithLabelValues("predictions").Inc()
}

// CurrentPick returns the team a user picked for a match, or "".
func (p *Projector) CurrentPick(matchID, userID string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.picks[matchID][userID]
}

type MatchView struct {
	models.Match
	EffectiveStatus string `json:"effective_status"`
}

// Matches partitions fixtures into active (upcoming or live) and history
// (terminal), both ordered by scheduled start ascending.
func (p *Projector) Matches() (active, history []MatchView) {
	now := p.clock.Now()

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, m := range p.matches {
		v := MatchView{Match: m, EffectiveStatus: status.Effective(m, now)}
		if m.Terminal() {
			history = append(history, v)
		} else {
			active = append(active, v)
		}
	}
	return active, history
}

func (p *Projector) MatchByID(id string) (MatchView, bool) {
	now := p.clock.Now()

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, m := range p.matches {
		if m.ID == id {
			return MatchView{Match: m, EffectiveStatus: status.Effective(m, now)}, true
		}
	}
	return MatchView{}, false
}

type LeaderboardRow struct {
	Rank int         `json:"rank"`
	User models.User `json:"user"`
}

// Leaderboard ranks members by points descending, display name ascending on
// ties, rank 1-based.
func (p *Projector) Leaderboard() []LeaderboardRow {
	members := p.members()
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Points != members[j].Points {
			return members[i].Points > members[j].Points
		}
		return members[i].DisplayName < members[j].DisplayName
	})

	rows := make([]LeaderboardRow, len(members))
	for i, u := range members {
		rows[i] = LeaderboardRow{Rank: i + 1, User: u}
	}
	return rows
}

type TeamTally struct {
	Team   string        `json:"team"`
	Count  int           `json:"count"`
	Voters []models.User `json:"voters"`
}

// VoteTally splits a match's lobby by picked team. Voters are ordered
// alphabetically by display name so "+N more" truncation is stable across
// rebuilds.
func (p *Projector) VoteTally(matchID string) (a, b TeamTally, ok bool) {
	m, found := p.MatchByID(matchID)
	if !found {
		return TeamTally{}, TeamTally{}, false
	}

	members := p.members()
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].DisplayName < members[j].DisplayName
	})

	a = TeamTally{Team: m.TeamA}
	b = TeamTally{Team: m.TeamB}

	p.mu.RLock()
	byUser := p.picks[matchID]
	for _, u := range members {
		switch byUser[u.ID] {
		case m.TeamA:
			a.Voters = append(a.Voters, u)
		case m.TeamB:
			b.Voters = append(b.Voters, u)
		}
	}
	p.mu.RUnlock()

	a.Count = len(a.Voters)
	b.Count = len(b.Voters)
	return a, b, true
}

func (p *Projector) UserByID(id string) (models.User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// RemovableUsers lists non-deleted member accounts, name ascending. Used by
// the admin account screen.
func (p *Projector) RemovableUsers() []models.User {
	members := p.members()
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].DisplayName < members[j].DisplayName
	})
	return members
}

// members returns a copy of the users holding member capability.
func (p *Projector) members() []models.User {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []models.User
	for _, u := range p.users {
		if u.IsMember() {
			out = append(out, u)
		}
	}
	return out
}
