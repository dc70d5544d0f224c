package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/riskprofile-backend/internal/model"
)

// Store is the durable backend for accounts and recorded results.
// SQLiteStore and PostgresStore implement it.
type Store interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
	Insert(ctx context.Context, res *model.AssessmentResult) error
	ListByUser(ctx context.Context, userID, limit int) ([]model.AssessmentResult, error)
}

// PostgresStore joins the pgx user and result repositories.
type PostgresStore struct {
	*UserRepository
	*ResultRepository
}

// NewPostgresStore creates a PostgresStore on one pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		UserRepository:   NewUserRepository(pool),
		ResultRepository: NewResultRepository(pool),
	}
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
