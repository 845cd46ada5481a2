package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"matchday-backend/internal/metrics"
	"matchday-backend/internal/models"
	"matchday-backend/internal/projection"
	repo "matchday-backend/internal/repository"
	"matchday-backend/internal/status"
)

// PredictionService enforces one pick per (match, user) and the
// lock-at-start-time rule. The store key does the first half; this writer
// does the second, since the store itself knows nothing about time.
type PredictionService struct {
	users   repo.Users
	matches repo.Matches
	preds   repo.Predictions
	proj    *projection.Projector
	clock   clockwork.Clock
	log     *slog.Logger
}

func NewPredictionService(users repo.Users, matches repo.Matches, preds repo.Predictions,
	proj *projection.Projector, clock clockwork.Clock, log *slog.Logger) *PredictionService {
	return &PredictionService{users: users, matches: matches, preds: preds, proj: proj, clock: clock, log: log}
}

// SubmitPick upserts the caller's pick while the match is still upcoming.
// The expected races (match gone, already locked, caller lost member
// capability) are silent no-ops: the UI may offer the button a moment
// before lock, and that must not read as an error.
func (s *PredictionService) SubmitPick(ctx context.Context, matchID, userID, team string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if !user.IsMember() {
		return nil
	}

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repo.ErrMatchNotFound) {
			return nil
		}
		return err
	}
	if status.Effective(m, s.clock.Now()) != status.Upcoming {
		s.log.Debug("pick refused, match locked", "match_id", matchID, "user_id", userID)
		return nil
	}
	if !m.HasTeam(team) {
		return ErrUnknownTeam
	}

	p := models.Prediction{
		ID:      models.PredictionID(matchID, userID),
		MatchID: matchID,
		UserID:  userID,
		Team:    team,
	}
	if err := s.preds.Upsert(ctx, p); err != nil {
		return err
	}
	metrics.PicksSubmitted.Inc()
	return nil
}

// CurrentPick reads from the in-memory index, O(1) by match then user.
func (s *PredictionService) CurrentPick(matchID, userID string) string {
	return s.proj.CurrentPick(matchID, userID)
}
