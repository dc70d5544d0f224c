package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/riskprofile-backend/internal/model"
)

// sqliteTimeLayout is fixed-width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assessment_results (
	id             TEXT PRIMARY KEY,
	user_id        INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	answers        TEXT NOT NULL,
	raw_score      INTEGER NOT NULL,
	standard_score REAL NOT NULL,
	risk_group     TEXT NOT NULL,
	created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessment_results_user
	ON assessment_results (user_id, created_at DESC);
`

// SQLiteStore keeps users and results in an embedded SQLite database. It
// serves both as the user repository and the durable result sink.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates the schema if needed and returns the store.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(v string) (time.Time, error) {
	return time.ParseInLocation(sqliteTimeLayout, v, time.UTC)
}

// ─── Users ──────────────────────────────────────────────────────────

func (s *SQLiteStore) scanUser(row *sql.Row) (*model.User, error) {
	var (
		u                    model.User
		createdAt, updatedAt string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE id = ?`, id))
}

// GetByEmail retrieves a user by email, case-insensitively.
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, created_at, updated_at FROM users WHERE email = ?`,
		strings.ToLower(email)))
}

// Create inserts a new user and fills its ID and timestamps.
func (s *SQLiteStore) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(u.Email)
	ts := s.timestamp()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.Name, u.PasswordHash, ts, ts)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = int(id)
	u.CreatedAt, _ = parseSQLiteTime(ts)
	u.UpdatedAt = u.CreatedAt
	return nil
}

// ─── Results ────────────────────────────────────────────────────────

// Insert stores a result. A zero ID is replaced with a fresh UUID.
func (s *SQLiteStore) Insert(ctx context.Context, res *model.AssessmentResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	ts := s.timestamp()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessment_results (id, user_id, answers, raw_score, standard_score, risk_group, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.ID.String(), res.UserID, string(answers), res.RawScore, res.StandardScore, res.RiskGroup, ts)
	if err != nil {
		return err
	}
	res.CreatedAt, _ = parseSQLiteTime(ts)
	return nil
}

// ListByUser returns a user's results, newest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID, limit int) ([]model.AssessmentResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, answers, raw_score, standard_score, risk_group, created_at
		 FROM assessment_results
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.AssessmentResult
	for rows.Next() {
		var (
			res             model.AssessmentResult
			id, answers, ts string
		)
		if err := rows.Scan(&id, &res.UserID, &answers, &res.RawScore, &res.StandardScore, &res.RiskGroup, &ts); err != nil {
			return nil, err
		}
		if res.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("result id: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &res.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		if res.CreatedAt, err = parseSQLiteTime(ts); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
