package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/riskprofile-backend/internal/model"
)

// ResultRepository is the durable sink for scored assessments in PostgreSQL.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert stores a result. A zero ID is replaced with a fresh UUID.
func (r *ResultRepository) Insert(ctx context.Context, res *model.AssessmentResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO assessment_results (id, user_id, answers, raw_score, standard_score, risk_group)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		res.ID, res.UserID, res.Answers, res.RawScore, res.StandardScore, res.RiskGroup,
	).Scan(&res.CreatedAt)
}

// ListByUser returns a user's results, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.AssessmentResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, answers, raw_score, standard_score, risk_group, created_at
		 FROM assessment_results
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.AssessmentResult
	for rows.Next() {
		var res model.AssessmentResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.Answers, &res.RawScore, &res.StandardScore, &res.RiskGroup, &res.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
