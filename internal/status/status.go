// Package status derives a match's effective lifecycle state. Every reader
// and writer computes this locally from two stored fields and its own clock;
// "live" is never persisted, so clients cannot disagree through stale writes.
package status

import (
	"time"

	"matchday-backend/internal/models"
)

const (
	Upcoming  = models.StatusUpcoming
	Live      = "live"
	Completed = models.StatusCompleted
	NoResult  = models.StatusNoResult
)

// Effective turns stored match fields plus the current time into the
// lifecycle state. Pure and total: it never fails, and a missing start time
// fails open to upcoming rather than silently going live.
func Effective(m models.Match, now time.Time) string {
	switch m.Status {
	case models.StatusCompleted:
		return Completed
	case models.StatusNoResult:
		return NoResult
	}
	if m.ScheduledStart.IsZero() {
		return Upcoming
	}
	if now.Before(m.ScheduledStart) {
		return Upcoming
	}
	return Live
}
