package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"matchday-backend/internal/metrics"
	"matchday-backend/internal/models"
	repo "matchday-backend/internal/repository"
	"matchday-backend/internal/worker"
)

// ScoringService owns the admin side of the fixture lifecycle: creation,
// finalization, abandonment, deletion and account removal. Everything that
// moves points goes through the store's atomic transaction.
type ScoringService struct {
	scoring repo.Scoring
	users   repo.Users
	matches repo.Matches
	preds   repo.Predictions
	audit   repo.AuditLogs
	wp      *worker.Pool
	clock   clockwork.Clock
	log     *slog.Logger
}

func NewScoringService(scoring repo.Scoring, users repo.Users, matches repo.Matches,
	preds repo.Predictions, audit repo.AuditLogs, wp *worker.Pool,
	clock clockwork.Clock, log *slog.Logger) *ScoringService {
	return &ScoringService{
		scoring: scoring, users: users, matches: matches, preds: preds,
		audit: audit, wp: wp, clock: clock, log: log,
	}
}

// CreateFixture records a new match. Stored status is always upcoming;
// whether it is already live is derived by every reader.
func (s *ScoringService) CreateFixture(ctx context.Context, createdBy, teamA, teamB string, start time.Time) (models.Match, error) {
	m := models.Match{
		ID:             uuid.NewString(),
		TeamA:          teamA,
		TeamB:          teamB,
		ScheduledStart: start,
		Status:         models.StatusUpcoming,
		CreatedBy:      createdBy,
	}
	if err := m.Validate(); err != nil {
		return models.Match{}, err
	}
	created, err := s.matches.Create(ctx, m)
	if err != nil {
		return models.Match{}, err
	}
	s.auditAsync("match", created.ID, "created", map[string]any{"team_a": teamA, "team_b": teamB})
	return created, nil
}

// FinalizeWinner records the real result and credits one point to every
// member whose pick matched. The winning set is computed outside the
// transaction — predictions are immutable once the match left upcoming, so
// they are stable here — while the live+unscored guard is re-checked inside
// it against a fresh snapshot.
func (s *ScoringService) FinalizeWinner(ctx context.Context, matchID, winningTeam string) (models.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return models.Match{}, err
	}
	if !m.HasTeam(winningTeam) {
		return models.Match{}, ErrUnknownTeam
	}

	winnerIDs, err := s.winningMembers(ctx, matchID, winningTeam, false)
	if err != nil {
		return models.Match{}, err
	}

	out, err := s.scoring.FinalizeWinner(ctx, matchID, winningTeam, winnerIDs, s.clock.Now())
	if err != nil {
		return models.Match{}, err
	}

	metrics.Finalizations.WithLabelValues(models.StatusCompleted).Inc()
	metrics.PointsAwarded.Add(float64(len(winnerIDs)))
	s.auditAsync("match", matchID, "finalized", map[string]any{"winner": winningTeam, "credited": len(winnerIDs)})
	s.log.Info("match finalized", "match_id", matchID, "winner", winningTeam, "credited", len(winnerIDs))
	return out, nil
}

// MarkAbandoned closes a match with no winner and no points. Mutually
// exclusive with FinalizeWinner: whichever transaction commits first wins.
func (s *ScoringService) MarkAbandoned(ctx context.Context, matchID string) (models.Match, error) {
	out, err := s.scoring.MarkAbandoned(ctx, matchID, s.clock.Now())
	if err != nil {
		return models.Match{}, err
	}

	metrics.Finalizations.WithLabelValues(models.StatusNoResult).Inc()
	s.auditAsync("match", matchID, "abandoned", nil)
	s.log.Info("match abandoned", "match_id", matchID)
	return out, nil
}

// DeleteFixture removes a match and its predictions. If the match had been
// finalized with a winner, the points it granted are reversed first: one
// debit per winning member who still has a positive balance. The reversal
// is best-effort — it does not reconstruct whether that point still
// originates from this match if the balance was adjusted independently in
// between. That asymmetry is an accepted limitation of the design.
func (s *ScoringService) DeleteFixture(ctx context.Context, matchID string, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}

	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repo.ErrMatchNotFound) {
			return nil
		}
		return err
	}

	preds, err := s.preds.ListByMatch(ctx, matchID)
	if err != nil {
		return err
	}

	if m.Status == models.StatusCompleted && m.Scored && m.Winner != "" {
		loserIDs, err := s.winningMembers(ctx, matchID, m.Winner, true)
		if err != nil {
			return err
		}
		reversed := 0
		for _, uid := range loserIDs {
			if _, err := s.users.AdjustPoints(ctx, uid, -1); err != nil {
				s.log.Warn("point reversal failed", "user_id", uid, "match_id", matchID, "err", err)
				continue
			}
			reversed++
		}
		metrics.PointsReversed.Add(float64(reversed))
		s.auditAsync("match", matchID, "points_reversed", map[string]any{"debited": reversed})
	}

	ids := make([]string, 0, len(preds))
	for _, p := range preds {
		ids = append(ids, p.ID)
	}
	if err := s.preds.DeleteBatch(ctx, ids); err != nil {
		return err
	}
	if err := s.matches.Delete(ctx, matchID); err != nil {
		return err
	}

	s.auditAsync("match", matchID, "deleted", map[string]any{"predictions": len(ids)})
	s.log.Info("fixture deleted", "match_id", matchID, "predictions", len(ids))
	return nil
}

// RemoveUserAccount soft-deletes a member: the tombstone keeps historical
// picks attributable while points and avatar are cleared. The account's
// remaining predictions are swept in the background.
func (s *ScoringService) RemoveUserAccount(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrSelfRemoval
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if target.Deleted {
		return nil
	}
	if target.Role == models.RoleAdmin {
		return ErrAdminRemoval
	}

	if err := s.users.SoftDelete(ctx, targetID, actorID); err != nil {
		return err
	}
	s.auditAsync("user", targetID, "removed", map[string]any{"by": actorID})

	s.wp.Submit(func() {
		ctx := context.Background()
		preds, err := s.preds.ListByUser(ctx, targetID)
		if err != nil {
			s.log.Warn("prediction sweep read failed", "user_id", targetID, "err", err)
			return
		}
		ids := make([]string, 0, len(preds))
		for _, p := range preds {
			ids = append(ids, p.ID)
		}
		if err := s.preds.DeleteBatch(ctx, ids); err != nil {
			s.log.Warn("prediction sweep delete failed", "user_id", targetID, "err", err)
		}
	})
	return nil
}

// winningMembers returns the users whose pick equals team and who hold
// member capability right now; with requirePositive, only those whose
// balance can absorb a debit.
func (s *ScoringService) winningMembers(ctx context.Context, matchID, team string, requirePositive bool) ([]string, error) {
	preds, err := s.preds.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	members := make(map[string]models.User, len(users))
	for _, u := range users {
		if u.IsMember() {
			members[u.ID] = u
		}
	}

	var ids []string
	for _, p := range preds {
		if p.Team != team {
			continue
		}
		u, ok := members[p.UserID]
		if !ok {
			continue
		}
		if requirePositive && u.Points <= 0 {
			continue
		}
		ids = append(ids, p.UserID)
	}
	return ids, nil
}

func (s *ScoringService) auditAsync(entityType, entityID, action string, details map[string]any) {
	id := entityID
	s.wp.Submit(func() {
		err := s.audit.Create(context.Background(), models.AuditLog{
			EntityType: entityType,
			EntityID:   &id,
			Action:     action,
			Details:    details,
		})
		if err != nil {
			s.log.Warn("audit write failed", "action", action, "err", err)
		}
	})
}
