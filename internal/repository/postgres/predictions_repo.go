package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchday-backend/internal/models"
	repo "matchday-backend/internal/repository"
)

type predictionsRepo struct{ pool *pgxpool.Pool }

const predictionCols = `id, match_id, user_id, team, updated_at`

func scanPrediction(row pgx.Row) (models.Prediction, error) {
	var p models.Prediction
	err := row.Scan(&p.ID, &p.MatchID, &p.UserID, &p.Team, &p.UpdatedAt)
	return p, err
}

func (r *predictionsRepo) Upsert(ctx context.Context, p models.Prediction) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO predictions(id, match_id, user_id, team, updated_at)
		 VALUES($1,$2,$3,$4,now())
		 ON CONFLICT (id) DO UPDATE
		 SET team = EXCLUDED.team, updated_at = now()`,
		p.ID, p.MatchID, p.UserID, p.Team,
	)
	return err
}

func (r *predictionsRepo) List(ctx context.Context) ([]models.Prediction, error) {
	return r.query(ctx, `SELECT `+predictionCols+` FROM predictions`)
}

func (r *predictionsRepo) ListByMatch(ctx context.Context, matchID string) ([]models.Prediction, error) {
	return r.query(ctx, `SELECT `+predictionCols+` FROM predictions WHERE match_id=$1`, matchID)
}

func (r *predictionsRepo) ListByUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	return r.query(ctx, `SELECT `+predictionCols+` FROM predictions WHERE user_id=$1`, userID)
}

// DeleteBatch removes documents in sequential chunks bounded by the store's
// batch limit. Each chunk commits on its own; a failure partway through
// leaves earlier chunks deleted, which is safe because orphaned predictions
// reference a missing match and are filtered out by readers.
func (r *predictionsRepo) DeleteBatch(ctx context.Context, ids []string) error {
	for len(ids) > 0 {
		n := len(ids)
		if n > repo.DeleteBatchSize {
			n = repo.DeleteBatchSize
		}
		if _, err := r.pool.Exec(ctx, `DELETE FROM predictions WHERE id = ANY($1)`, ids[:n]); err != nil {
			return err
		}
		ids = ids[n:]
	}
	return nil
}

func (r *predictionsRepo) query(ctx context.Context, sql string, args ...any) ([]models.Prediction, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
