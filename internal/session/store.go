// Package session persists in-progress questionnaires between requests.
package session

import (
	"context"
	"errors"

	"github.com/stemsi/riskprofile-backend/internal/model"
)

// ErrNotFound is returned by Get when the user has no in-progress session.
var ErrNotFound = errors.New("assessment session not found")

// Store is a key-value store of assessment sessions keyed by user id.
type Store interface {
	Get(ctx context.Context, userID int) (*model.AssessmentSession, error)
	Put(ctx context.Context, s *model.AssessmentSession) error
	Clear(ctx context.Context, userID int) error
}
