package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchday-backend/internal/models"
	repo "matchday-backend/internal/repository"
)

type usersRepo struct{ pool *pgxpool.Pool }

const userCols = `id, display_name, password_hash, role, deleted, points, avatar, created_at, updated_at, deleted_at, deleted_by`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	var deletedBy *string
	err := row.Scan(&u.ID, &u.DisplayName, &u.PasswordHash, &u.Role, &u.Deleted,
		&u.Points, &u.Avatar, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt, &deletedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, repo.ErrUserNotFound
	}
	if deletedBy != nil {
		u.DeletedBy = *deletedBy
	}
	return u, err
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users(id, display_name, display_name_lower, password_hash, role, deleted, points, avatar)
		 VALUES($1,$2,$3,$4,$5,false,0,$6)`,
		u.ID, u.DisplayName, strings.ToLower(u.DisplayName), u.PasswordHash, u.Role, u.Avatar,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, repo.ErrNameTaken
		}
		return models.User{}, err
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (r *usersRepo) GetByDisplayName(ctx context.Context, nameLower string) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE display_name_lower=$1`, nameLower))
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *usersRepo) UpdateProfile(ctx context.Context, id string, avatar, passwordHash *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		    SET avatar        = COALESCE($2, avatar),
		        password_hash = COALESCE($3, password_hash),
		        updated_at    = now()
		  WHERE id=$1 AND NOT deleted`,
		id, avatar, passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrUserNotFound
	}
	return nil
}

func (r *usersRepo) AdjustPoints(ctx context.Context, id string, delta int64) (models.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		    SET points = points + $2,
		        updated_at = now()
		  WHERE id=$1
		  RETURNING `+userCols,
		id, delta,
	))
}

func (r *usersRepo) SoftDelete(ctx context.Context, id, deletedBy string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		    SET deleted    = true,
		        points     = 0,
		        avatar     = '',
		        deleted_at = now(),
		        deleted_by = $2,
		        updated_at = now()
		  WHERE id=$1`,
		id, deletedBy,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrUserNotFound
	}
	return nil
}
