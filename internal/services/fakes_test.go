package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"matchday-backend/internal/models"
	repo "matchday-backend/internal/repository"
)

// memStore is a single-lock in-memory stand-in for the document store. The
// lock gives the scoring operations the same atomicity the real store's
// transactions provide, and the shared Finalizable guard keeps the
// precondition semantics identical.
type memStore struct {
	mu      sync.Mutex
	users   map[string]models.User
	matches map[string]models.Match
	preds   map[string]models.Prediction
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]models.User{},
		matches: map[string]models.Match{},
		preds:   map[string]models.Prediction{},
	}
}

func (s *memStore) Users() repo.Users             { return &memUsers{s} }
func (s *memStore) Matches() repo.Matches         { return &memMatches{s} }
func (s *memStore) Predictions() repo.Predictions { return &memPreds{s} }
func (s *memStore) Scoring() repo.Scoring         { return &memScoring{s} }

type memUsers struct{ s *memStore }

func (r *memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.users {
		if strings.EqualFold(other.DisplayName, u.DisplayName) {
			return models.User{}, repo.ErrNameTaken
		}
	}
	r.s.users[u.ID] = u
	return u, nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repo.ErrUserNotFound
	}
	return u, nil
}

func (r *memUsers) GetByDisplayName(_ context.Context, nameLower string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.ToLower(u.DisplayName) == nameLower {
			return u, nil
		}
	}
	return models.User{}, repo.ErrUserNotFound
}

func (r *memUsers) List(_ context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUsers) UpdateProfile(_ context.Context, id string, avatar, passwordHash *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok || u.Deleted {
		return repo.ErrUserNotFound
	}
	if avatar != nil {
		u.Avatar = *avatar
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	r.s.users[id] = u
	return nil
}

func (r *memUsers) AdjustPoints(_ context.Context, id string, delta int64) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, repo.ErrUserNotFound
	}
	u.Points += delta
	r.s.users[id] = u
	return u, nil
}

func (r *memUsers) SoftDelete(_ context.Context, id, deletedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return repo.ErrUserNotFound
	}
	u.Deleted = true
	u.Points = 0
	u.Avatar = ""
	u.DeletedBy = deletedBy
	r.s.users[id] = u
	return nil
}

type memMatches struct{ s *memStore }

func (r *memMatches) Create(_ context.Context, m models.Match) (models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.matches[m.ID] = m
	return m, nil
}

func (r *memMatches) GetByID(_ context.Context, id string) (models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return models.Match{}, repo.ErrMatchNotFound
	}
	return m, nil
}

func (r *memMatches) List(_ context.Context) ([]models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Match, 0, len(r.s.matches))
	for _, m := range r.s.matches {
		out = append(out, m)
	}
	return out, nil
}

func (r *memMatches) Touch(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return repo.ErrMatchNotFound
	}
	m.UpdatedAt = time.Now()
	r.s.matches[id] = m
	return nil
}

func (r *memMatches) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.matches, id)
	return nil
}

type memPreds struct{ s *memStore }

func (r *memPreds) Upsert(_ context.Context, p models.Prediction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.preds[p.ID] = p
	return nil
}

func (r *memPreds) List(_ context.Context) ([]models.Prediction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Prediction, 0, len(r.s.preds))
	for _, p := range r.s.preds {
		out = append(out, p)
	}
	return out, nil
}

func (r *memPreds) ListByMatch(_ context.Context, matchID string) ([]models.Prediction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Prediction
	for _, p := range r.s.preds {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPreds) ListByUser(_ context.Context, userID string) ([]models.Prediction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Prediction
	for _, p := range r.s.preds {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPreds) DeleteBatch(_ context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.preds, id)
	}
	return nil
}

type memScoring struct{ s *memStore }

func (r *memScoring) FinalizeWinner(_ context.Context, matchID, winningTeam string, winnerIDs []string, now time.Time) (models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[matchID]
	if !ok {
		return models.Match{}, repo.ErrMatchNotFound
	}
	if err := repo.Finalizable(m, now); err != nil {
		return models.Match{}, err
	}
	m.Status = models.StatusCompleted
	m.Winner = winningTeam
	m.Scored = true
	m.CompletedAt = &now
	r.s.matches[matchID] = m
	for _, uid := range winnerIDs {
		u := r.s.users[uid]
		u.Points++
		r.s.users[uid] = u
	}
	return m, nil
}

func (r *memScoring) MarkAbandoned(_ context.Context, matchID string, now time.Time) (models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[matchID]
	if !ok {
		return models.Match{}, repo.ErrMatchNotFound
	}
	if err := repo.Finalizable(m, now); err != nil {
		return models.Match{}, err
	}
	m.Status = models.StatusNoResult
	m.Winner = ""
	m.Scored = true
	m.CompletedAt = &now
	r.s.matches[matchID] = m
	return m, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (r *memAudit) Create(_ context.Context, l models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, l)
	return nil
}
