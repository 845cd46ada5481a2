package models

import (
	"strings"
	"time"
)

// Persisted match statuses. "live" is never stored: it is derived from
// scheduled_start and the reader's clock (see internal/status).
const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusNoResult  = "completed_no_result"
)

type Match struct {
	ID             string     `json:"id"`
	TeamA          string     `json:"team_a"`
	TeamB          string     `json:"team_b"`
	ScheduledStart time.Time  `json:"scheduled_start"`
	Status         string     `json:"status"`
	Winner         string     `json:"winner,omitempty"`
	Scored         bool       `json:"scored"`
	CreatedBy      string     `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// Terminal reports whether a final outcome has been recorded.
func (m Match) Terminal() bool {
	return m.Status == StatusCompleted || m.Status == StatusNoResult
}

// HasTeam reports whether team names one of the two sides.
func (m Match) HasTeam(team string) bool {
	return team != "" && (team == m.TeamA || team == m.TeamB)
}

// Normalize substitutes safe defaults for malformed documents. Any status
// outside the persisted set collapses to upcoming; in particular a stored
// "live" from an old client is never trusted, the deriver recomputes it.
func (m *Match) Normalize() {
	if m.TeamA == "" {
		m.TeamA = "TBD"
	}
	if m.TeamB == "" {
		m.TeamB = "TBD"
	}
	if m.Status != StatusCompleted && m.Status != StatusNoResult {
		m.Status = StatusUpcoming
	}
	if m.Status != StatusCompleted {
		m.Winner = ""
	}
}

// Validate checks a match at creation time.
func (m Match) Validate() error {
	if strings.TrimSpace(m.TeamA) == "" || strings.TrimSpace(m.TeamB) == "" {
		return ValidationError("both team names are required")
	}
	if strings.EqualFold(strings.TrimSpace(m.TeamA), strings.TrimSpace(m.TeamB)) {
		return ValidationError("team names must be different")
	}
	if m.ScheduledStart.IsZero() {
		return ValidationError("a valid start time is required")
	}
	return nil
}
