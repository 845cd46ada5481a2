package repository

import (
	"context"
	"errors"
	"time"

	"matchday-backend/internal/models"
)

// Errors shared between the store implementations and the service layer.
// Precondition violations are expected races between admin sessions and are
// reported as short human-readable messages, never retried.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrNotLive          = errors.New("result can only be set while the match is live")
	ErrAlreadyFinalized = errors.New("this match is already finalized")
	ErrNameTaken        = errors.New("that name is already taken")
)

// DeleteBatchSize bounds a single batched delete statement, mirroring the
// store's write-batch limit. Batches run sequentially and commit
// independently; the whole delete is not atomic across batches.
const DeleteBatchSize = 400

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByDisplayName(ctx context.Context, nameLower string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, avatar, passwordHash *string) error
	// AdjustPoints applies a relative delta. Points are never written as an
	// absolute value outside of account removal, so unrelated concurrent
	// adjustments compose.
	AdjustPoints(ctx context.Context, id string, delta int64) (models.User, error)
	SoftDelete(ctx context.Context, id, deletedBy string) error
}

type Matches interface {
	Create(ctx context.Context, m models.Match) (models.Match, error)
	GetByID(ctx context.Context, id string) (models.Match, error)
	List(ctx context.Context) ([]models.Match, error)
	// Touch bumps updated_at only, to nudge change notifications once a
	// start time has passed. Status is never written here.
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type Predictions interface {
	Upsert(ctx context.Context, p models.Prediction) error
	List(ctx context.Context) ([]models.Prediction, error)
	ListByMatch(ctx context.Context, matchID string) ([]models.Prediction, error)
	ListByUser(ctx context.Context, userID string) ([]models.Prediction, error)
	// DeleteBatch removes documents in sequential chunks of DeleteBatchSize.
	DeleteBatch(ctx context.Context, ids []string) error
}

// Scoring is the atomic half of the store contract: each operation re-reads
// the match and re-checks Finalizable inside one transaction, so two racing
// admin sessions cannot both transition the same match out of live.
type Scoring interface {
	FinalizeWinner(ctx context.Context, matchID, winningTeam string, winnerIDs []string, now time.Time) (models.Match, error)
	MarkAbandoned(ctx context.Context, matchID string, now time.Time) (models.Match, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
