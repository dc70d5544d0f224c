// Package assessment implements the single-step navigation rules of the
// questionnaire. Answers always cover every question before CurrentIndex.
package assessment

import (
	"errors"
	"fmt"
	"time"

	"github.com/stemsi/riskprofile-backend/internal/catalog"
	"github.com/stemsi/riskprofile-backend/internal/model"
)

var (
	ErrInvalidChoice      = errors.New("choice is not an option of the current question")
	ErrAssessmentComplete = errors.New("assessment is already complete")
	ErrCorruptSession     = errors.New("assessment session violates navigation invariants")
)

// State is the navigation state of a session.
type State string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Navigator applies navigation operations against one catalog.
type Navigator struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewNavigator creates a Navigator for cat.
func NewNavigator(cat *catalog.Catalog) *Navigator {
	return &Navigator{catalog: cat, now: time.Now}
}

// Catalog returns the catalog the navigator walks.
func (n *Navigator) Catalog() *catalog.Catalog {
	return n.catalog
}

// NewSession returns a fresh session positioned at the first question.
func (n *Navigator) NewSession(userID int) *model.AssessmentSession {
	now := n.now().UTC()
	return &model.AssessmentSession{
		UserID:       userID,
		CurrentIndex: 0,
		Answers:      map[string]string{},
		StartedAt:    now,
		UpdatedAt:    now,
	}
}

// IsComplete reports whether every question has been answered.
func (n *Navigator) IsComplete(s *model.AssessmentSession) bool {
	return s.CurrentIndex == n.catalog.Len()
}

// State returns the session's navigation state.
func (n *Navigator) State(s *model.AssessmentSession) State {
	if n.IsComplete(s) {
		return StateCompleted
	}
	return StateInProgress
}

// CurrentQuestion returns the question at the session's index and the label
// previously chosen for it, if the user came back to it.
func (n *Navigator) CurrentQuestion(s *model.AssessmentSession) (catalog.Question, string, error) {
	if s.CurrentIndex >= n.catalog.Len() {
		return catalog.Question{}, "", ErrAssessmentComplete
	}
	q, err := n.catalog.Get(s.CurrentIndex)
	if err != nil {
		return catalog.Question{}, "", err
	}
	return q, s.Answers[q.Key()], nil
}

// Submit records label for the current question and advances by one.
// On error the session is left untouched.
func (n *Navigator) Submit(s *model.AssessmentSession, label string) (State, error) {
	q, _, err := n.CurrentQuestion(s)
	if err != nil {
		return n.State(s), err
	}
	if _, ok := q.Option(label); !ok {
		return n.State(s), fmt.Errorf("%w: %q for question %d", ErrInvalidChoice, label, q.ID)
	}

	if s.Answers == nil {
		s.Answers = map[string]string{}
	}
	s.Answers[q.Key()] = label
	s.CurrentIndex++
	s.UpdatedAt = n.now().UTC()

	return n.State(s), nil
}

// Retreat steps back one question, keeping the answer of the question being
// left. At the first question it is a no-op and returns false.
func (n *Navigator) Retreat(s *model.AssessmentSession) bool {
	if s.CurrentIndex <= 0 {
		return false
	}
	s.CurrentIndex--
	s.UpdatedAt = n.now().UTC()
	return true
}

// Validate checks a session loaded from storage against the catalog: the
// index is within [0, len], every passed question has a valid answer and no
// answer refers to a question outside the catalog.
func (n *Navigator) Validate(s *model.AssessmentSession) error {
	if s.CurrentIndex < 0 || s.CurrentIndex > n.catalog.Len() {
		return fmt.Errorf("%w: index %d outside [0, %d]", ErrCorruptSession, s.CurrentIndex, n.catalog.Len())
	}
	for i := range s.CurrentIndex {
		q, err := n.catalog.Get(i)
		if err != nil {
			return err
		}
		if _, ok := s.Answers[q.Key()]; !ok {
			return fmt.Errorf("%w: question %d passed without an answer", ErrCorruptSession, q.ID)
		}
	}
	for key, label := range s.Answers {
		q, ok := n.catalog.ByKey(key)
		if !ok {
			return fmt.Errorf("%w: answer for unknown question %q", ErrCorruptSession, key)
		}
		if _, ok := q.Option(label); !ok {
			return fmt.Errorf("%w: answer %q is not an option of question %d", ErrCorruptSession, label, q.ID)
		}
	}
	return nil
}
