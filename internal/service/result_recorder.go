package service

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/riskprofile-backend/internal/model"
	"github.com/stemsi/riskprofile-backend/internal/scoring"
)

// ResultSink is the durable store for scored assessments.
type ResultSink interface {
	Insert(ctx context.Context, res *model.AssessmentResult) error
	ListByUser(ctx context.Context, userID, limit int) ([]model.AssessmentResult, error)
}

// ResultRecorder packages a scored answer set into a durable record.
type ResultRecorder struct {
	sink ResultSink
	log  zerolog.Logger
}

// NewResultRecorder creates a new ResultRecorder.
func NewResultRecorder(sink ResultSink, log zerolog.Logger) *ResultRecorder {
	return &ResultRecorder{
		sink: sink,
		log:  log.With().Str("component", "result_recorder").Logger(),
	}
}

// Record inserts one result and returns the stored record. The answers map
// is copied so later session edits cannot reach the record.
func (r *ResultRecorder) Record(ctx context.Context, userID int, answers map[string]string, res scoring.Result) (*model.AssessmentResult, error) {
	rec := &model.AssessmentResult{
		ID:            uuid.New(),
		UserID:        userID,
		Answers:       maps.Clone(answers),
		RawScore:      res.RawScore,
		StandardScore: res.StandardScore,
		RiskGroup:     string(res.RiskGroup),
	}
	if err := r.sink.Insert(ctx, rec); err != nil {
		r.log.Error().Err(err).Int("user_id", userID).Msg("Failed to record assessment result")
		return nil, fmt.Errorf("insert result: %w", err)
	}

	r.log.Info().
		Int("user_id", userID).
		Str("record_id", rec.ID.String()).
		Str("risk_group", rec.RiskGroup).
		Msg("Assessment result recorded")

	return rec, nil
}

// History returns up to limit past results of a user, newest first.
func (r *ResultRecorder) History(ctx context.Context, userID, limit int) ([]model.AssessmentResult, error) {
	results, err := r.sink.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	if results == nil {
		results = []model.AssessmentResult{}
	}
	return results, nil
}
