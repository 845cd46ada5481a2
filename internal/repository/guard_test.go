package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"matchday-backend/internal/models"
)

func TestFinalizable(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	live := models.Match{ID: "m1", TeamA: "CSK", TeamB: "MI", ScheduledStart: now.Add(-time.Hour), Status: models.StatusUpcoming}

	require.NoError(t, Finalizable(live, now))

	upcoming := live
	upcoming.ScheduledStart = now.Add(time.Hour)
	require.ErrorIs(t, Finalizable(upcoming, now), ErrNotLive)

	scored := live
	scored.Scored = true
	require.ErrorIs(t, Finalizable(scored, now), ErrAlreadyFinalized)

	completed := live
	completed.Status = models.StatusCompleted
	require.ErrorIs(t, Finalizable(completed, now), ErrAlreadyFinalized)

	abandoned := live
	abandoned.Status = models.StatusNoResult
	require.ErrorIs(t, Finalizable(abandoned, now), ErrAlreadyFinalized)

	// the already-finalized answer wins even when the match would also fail
	// the live check
	doneEarly := upcoming
	doneEarly.Scored = true
	require.ErrorIs(t, Finalizable(doneEarly, now), ErrAlreadyFinalized)
}
