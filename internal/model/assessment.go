package model

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentSession is a user's in-progress questionnaire. Answers are keyed
// by the decimal question id.
type AssessmentSession struct {
	UserID       int               `json:"user_id"`
	CurrentIndex int               `json:"current_index"`
	Answers      map[string]string `json:"answers"`
	StartedAt    time.Time         `json:"started_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// AssessmentResult is the durable record of a scored questionnaire.
type AssessmentResult struct {
	ID            uuid.UUID         `json:"id"`
	UserID        int               `json:"user_id"`
	Answers       map[string]string `json:"answers"`
	RawScore      int               `json:"raw_score"`
	StandardScore float64           `json:"standard_score"`
	RiskGroup     string            `json:"risk_group"`
	CreatedAt     time.Time         `json:"created_at"`
}

// Navigate values accepted by StepRequest.
const NavigateBack = "back"

// StepRequest drives one step of the questionnaire. An empty body just
// returns the current step. Choice is checked against the current question
// by the navigator, not by the binder.
type StepRequest struct {
	Choice   string `json:"choice"`
	Navigate string `json:"navigate" binding:"omitempty,oneof=back"`
}
