package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchday-backend/internal/models"
	repo "matchday-backend/internal/repository"
)

// scoringRepo runs the point-bearing writes. Every operation re-reads the
// match row and re-checks the guard inside one serializable transaction;
// gating a scoring write on anything read earlier is unsafe under
// concurrent admin sessions.
type scoringRepo struct{ pool *pgxpool.Pool }

const txAttempts = 3

func (r *scoringRepo) FinalizeWinner(ctx context.Context, matchID, winningTeam string, winnerIDs []string, now time.Time) (models.Match, error) {
	var out models.Match
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		m, err := lockMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if err := repo.Finalizable(m, now); err != nil {
			return err
		}

		row := tx.QueryRow(ctx,
			`UPDATE matches
			    SET status=$2, winner=$3, scored=true, completed_at=$4, updated_at=now()
			  WHERE id=$1
			  RETURNING `+matchCols,
			matchID, models.StatusCompleted, winningTeam, now,
		)
		if out, err = scanMatch(row); err != nil {
			return err
		}

		// Relative increments only, so two matches finalizing concurrently
		// and crediting the same user both land.
		for _, uid := range winnerIDs {
			if _, err := tx.Exec(ctx,
				`UPDATE users SET points = points + 1, updated_at = now() WHERE id=$1`, uid); err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

func (r *scoringRepo) MarkAbandoned(ctx context.Context, matchID string, now time.Time) (models.Match, error) {
	var out models.Match
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		m, err := lockMatch(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if err := repo.Finalizable(m, now); err != nil {
			return err
		}

		row := tx.QueryRow(ctx,
			`UPDATE matches
			    SET status=$2, winner='', scored=true, completed_at=$3, updated_at=now()
			  WHERE id=$1
			  RETURNING `+matchCols,
			matchID, models.StatusNoResult, now,
		)
		out, err = scanMatch(row)
		return err
	})
	return out, err
}

func lockMatch(ctx context.Context, tx pgx.Tx, id string) (models.Match, error) {
	return scanMatch(tx.QueryRow(ctx, `SELECT `+matchCols+` FROM matches WHERE id=$1 FOR UPDATE`, id))
}

// withTx runs fn in a serializable transaction, retrying a bounded number
// of times on serialization failure before surfacing the error.
func (r *scoringRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (r *scoringRepo) runOnce(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}
