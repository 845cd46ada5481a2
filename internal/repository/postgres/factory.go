package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "matchday-backend/internal/repository"
)

type Repositories struct {
	Users       repo.Users
	Matches     repo.Matches
	Predictions repo.Predictions
	Scoring     repo.Scoring
	AuditLogs   repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:       &usersRepo{pool},
		Matches:     &matchesRepo{pool},
		Predictions: &predictionsRepo{pool},
		Scoring:     &scoringRepo{pool},
		AuditLogs:   &auditLogsRepo{pool},
	}
}
