package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/riskprofile-backend/internal/assessment"
	"github.com/stemsi/riskprofile-backend/internal/catalog"
	"github.com/stemsi/riskprofile-backend/internal/model"
	"github.com/stemsi/riskprofile-backend/internal/scoring"
	"github.com/stemsi/riskprofile-backend/internal/session"
)

// Assessment orchestration errors.
var (
	ErrAssessmentNotFinished = errors.New("no finished assessment to score")
	ErrResultNotSaved        = errors.New("assessment result could not be saved")
)

// ResultsLocation is where a finished step points the client.
const ResultsLocation = "/api/v1/assessment/results"

// StepState is the kind of step returned by NextStep.
type StepState string

const (
	StepQuestion StepState = "question"
	StepFinished StepState = "finished"
)

// Step is what the presentation layer renders next.
type Step struct {
	State             StepState         `json:"state"`
	Question          *catalog.Question `json:"question,omitempty"`
	Progress          int               `json:"progress"`
	Total             int               `json:"total"`
	PrefilledChoice   string            `json:"prefilled_choice,omitempty"`
	RedirectToResults string            `json:"redirect_to_results,omitempty"`
}

// AnswerDetail pairs an answered question with the chosen option.
type AnswerDetail struct {
	QuestionID int    `json:"question_id"`
	Question   string `json:"question"`
	Choice     string `json:"choice"`
	ChoiceText string `json:"choice_text"`
}

// Results is the outcome of a finished assessment.
type Results struct {
	RecordID      uuid.UUID         `json:"record_id"`
	RecordedAt    time.Time         `json:"recorded_at"`
	Answers       map[string]string `json:"answers"`
	RawScore      int               `json:"raw_score"`
	StandardScore float64           `json:"standard_score"`
	RiskGroup     scoring.RiskGroup `json:"risk_group"`
	Description   string            `json:"description"`
	Breakdown     []AnswerDetail    `json:"breakdown"`
}

// AssessmentService drives the questionnaire for one user at a time.
type AssessmentService struct {
	nav      *assessment.Navigator
	pipeline *scoring.Pipeline
	store    session.Store
	recorder *ResultRecorder
	locks    userLocks
	log      zerolog.Logger
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(
	nav *assessment.Navigator,
	pipeline *scoring.Pipeline,
	store session.Store,
	recorder *ResultRecorder,
	log zerolog.Logger,
) *AssessmentService {
	return &AssessmentService{
		nav:      nav,
		pipeline: pipeline,
		store:    store,
		recorder: recorder,
		log:      log.With().Str("component", "assessment").Logger(),
	}
}

// CurrentStep starts or resumes the user's assessment and returns the step
// to show.
func (s *AssessmentService) CurrentStep(ctx context.Context, userID int) (*Step, error) {
	return s.NextStep(ctx, userID, "", "")
}

// NextStep applies at most one navigation action and returns the resulting
// step. navigate == "back" takes precedence over choice. On ErrInvalidChoice
// the unchanged step is returned together with the error so the caller can
// re-prompt.
func (s *AssessmentService) NextStep(ctx context.Context, userID int, choice, navigate string) (*Step, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	sess, created, err := s.startOrResume(ctx, userID)
	if err != nil {
		return nil, err
	}
	dirty := created

	switch {
	case navigate == model.NavigateBack:
		if s.nav.Retreat(sess) {
			dirty = true
		}

	case choice != "":
		if _, err := s.nav.Submit(sess, choice); err != nil {
			if errors.Is(err, assessment.ErrAssessmentComplete) {
				s.log.Error().Err(err).Int("user_id", userID).Msg("Answer submitted to a finished assessment")
				return s.step(sess), err
			}
			if errors.Is(err, assessment.ErrInvalidChoice) {
				if dirty {
					if perr := s.store.Put(ctx, sess); perr != nil {
						return nil, perr
					}
				}
				return s.step(sess), err
			}
			return nil, err
		}
		dirty = true
	}

	if dirty {
		if err := s.store.Put(ctx, sess); err != nil {
			return nil, err
		}
	}

	return s.step(sess), nil
}

// GetResults scores the finished assessment, clears the session and records
// the result. The session is restored when the record fails so the call can
// be retried; once recorded, a second call finds nothing to score.
func (s *AssessmentService) GetResults(ctx context.Context, userID int) (*Results, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	sess, err := s.load(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrAssessmentNotFinished
		}
		return nil, err
	}
	if !s.nav.IsComplete(sess) {
		return nil, ErrAssessmentNotFinished
	}

	result, err := s.pipeline.Score(sess.Answers)
	if err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Scoring failed on a completed session")
		return nil, fmt.Errorf("score assessment: %w", err)
	}

	// A completed session is recorded at most once: clear first, put it
	// back if the record fails.
	if err := s.store.Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("close assessment: %w", err)
	}

	rec, err := s.recorder.Record(ctx, userID, sess.Answers, result)
	if err != nil {
		if perr := s.store.Put(ctx, sess); perr != nil {
			s.log.Error().Err(perr).Int("user_id", userID).Interface("answers", sess.Answers).
				Msg("Result not saved and session could not be restored")
		}
		return nil, fmt.Errorf("%w: %w", ErrResultNotSaved, err)
	}

	out := &Results{
		RecordID:      rec.ID,
		RecordedAt:    rec.CreatedAt,
		Answers:       rec.Answers,
		RawScore:      result.RawScore,
		StandardScore: result.StandardScore,
		RiskGroup:     result.RiskGroup,
		Breakdown:     s.breakdown(sess.Answers),
	}
	if band, ok := s.pipeline.Describe(result.RiskGroup); ok {
		out.Description = band.Description
	}
	return out, nil
}

// Reset discards the user's in-progress assessment.
func (s *AssessmentService) Reset(ctx context.Context, userID int) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	if err := s.store.Clear(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Int("user_id", userID).Msg("Assessment reset")
	return nil
}

// History returns the user's recorded results, newest first.
func (s *AssessmentService) History(ctx context.Context, userID, limit int) ([]model.AssessmentResult, error) {
	return s.recorder.History(ctx, userID, limit)
}

// ─── Internal helpers ───────────────────────────────────────────────

// startOrResume returns the stored session or a new one. created reports
// whether the session still has to be persisted.
func (s *AssessmentService) startOrResume(ctx context.Context, userID int) (*model.AssessmentSession, bool, error) {
	sess, err := s.load(ctx, userID)
	if err == nil {
		return sess, false, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, false, err
	}
	s.log.Debug().Int("user_id", userID).Msg("Starting new assessment")
	return s.nav.NewSession(userID), true, nil
}

// load reads and validates a session. A session that no longer fits the
// catalog is dropped and reported as not found.
func (s *AssessmentService) load(ctx context.Context, userID int) (*model.AssessmentSession, error) {
	sess, err := s.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.nav.Validate(sess); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("Discarding corrupt assessment session")
		if cerr := s.store.Clear(ctx, userID); cerr != nil {
			return nil, cerr
		}
		return nil, session.ErrNotFound
	}
	return sess, nil
}

func (s *AssessmentService) step(sess *model.AssessmentSession) *Step {
	total := s.nav.Catalog().Len()
	q, prefilled, err := s.nav.CurrentQuestion(sess)
	if err != nil {
		return &Step{
			State:             StepFinished,
			Progress:          total,
			Total:             total,
			RedirectToResults: ResultsLocation,
		}
	}
	return &Step{
		State:           StepQuestion,
		Question:        &q,
		Progress:        sess.CurrentIndex,
		Total:           total,
		PrefilledChoice: prefilled,
	}
}

func (s *AssessmentService) breakdown(answers map[string]string) []AnswerDetail {
	questions := s.nav.Catalog().Questions()
	out := make([]AnswerDetail, 0, len(questions))
	for _, q := range questions {
		label := answers[q.Key()]
		opt, _ := q.Option(label)
		out = append(out, AnswerDetail{
			QuestionID: q.ID,
			Question:   q.Text,
			Choice:     label,
			ChoiceText: opt.Text,
		})
	}
	return out
}
