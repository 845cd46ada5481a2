package repository

import (
	"time"

	"matchday-backend/internal/models"
	"matchday-backend/internal/status"
)

// Finalizable is the guard every scoring transaction re-checks against a
// freshly read match snapshot, inside the same atomicity boundary as its
// write. The scored flag is the idempotence key: at most one finalize or
// abandon ever observes it false.
func Finalizable(m models.Match, now time.Time) error {
	if m.Scored || m.Terminal() {
		return ErrAlreadyFinalized
	}
	if status.Effective(m, now) != status.Live {
		return ErrNotLive
	}
	return nil
}
