package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchday-backend/internal/models"
	repo "matchday-backend/internal/repository"
)

type matchesRepo struct{ pool *pgxpool.Pool }

const matchCols = `id, team_a, team_b, scheduled_start, status, winner, scored, created_by, created_at, updated_at, completed_at`

func scanMatch(row pgx.Row) (models.Match, error) {
	var m models.Match
	err := row.Scan(&m.ID, &m.TeamA, &m.TeamB, &m.ScheduledStart, &m.Status,
		&m.Winner, &m.Scored, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt, &m.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Match{}, repo.ErrMatchNotFound
	}
	return m, err
}

func (r *matchesRepo) Create(ctx context.Context, m models.Match) (models.Match, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO matches(id, team_a, team_b, scheduled_start, status, winner, scored, created_by)
		 VALUES($1,$2,$3,$4,$5,'',false,$6)`,
		m.ID, m.TeamA, m.TeamB, m.ScheduledStart, models.StatusUpcoming, m.CreatedBy,
	)
	if err != nil {
		return models.Match{}, err
	}
	return r.GetByID(ctx, m.ID)
}

func (r *matchesRepo) GetByID(ctx context.Context, id string) (models.Match, error) {
	return scanMatch(r.pool.QueryRow(ctx, `SELECT `+matchCols+` FROM matches WHERE id=$1`, id))
}

func (r *matchesRepo) List(ctx context.Context) ([]models.Match, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+matchCols+` FROM matches ORDER BY scheduled_start`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *matchesRepo) Touch(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE matches SET updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrMatchNotFound
	}
	return nil
}

func (r *matchesRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM matches WHERE id=$1`, id)
	return err
}
