package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/riskprofile-backend/internal/assessment"
	"github.com/stemsi/riskprofile-backend/internal/middleware"
	"github.com/stemsi/riskprofile-backend/internal/model"
	"github.com/stemsi/riskprofile-backend/internal/response"
	"github.com/stemsi/riskprofile-backend/internal/service"
	"github.com/stemsi/riskprofile-backend/internal/validator"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// AssessmentHandler exposes the questionnaire flow.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
	log               zerolog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService *service.AssessmentService, log zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		log:               log.With().Str("component", "assessment_handler").Logger(),
	}
}

// GetStep godoc
// GET /api/v1/assessment
// Starts or resumes the assessment and returns the current step.
func (h *AssessmentHandler) GetStep(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	step, err := h.assessmentService.CurrentStep(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, claims.UserID, err, nil)
		return
	}
	response.Success(c, http.StatusOK, step)
}

// PostStep godoc
// POST /api/v1/assessment/step
// Body: {"choice": "b"} to answer, {"navigate": "back"} to go back.
func (h *AssessmentHandler) PostStep(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StepRequest
	if fields := validator.BindOptional(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	step, err := h.assessmentService.NextStep(c.Request.Context(), claims.UserID, req.Choice, req.Navigate)
	if err != nil {
		h.fail(c, claims.UserID, err, step)
		return
	}
	response.Success(c, http.StatusOK, step)
}

// GetResults godoc
// GET /api/v1/assessment/results
// Scores and records the finished assessment, then clears it.
func (h *AssessmentHandler) GetResults(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.assessmentService.GetResults(c.Request.Context(), claims.UserID)
	if err != nil {
		h.fail(c, claims.UserID, err, nil)
		return
	}
	response.Success(c, http.StatusOK, results)
}

// Reset godoc
// DELETE /api/v1/assessment
// Discards the in-progress assessment.
func (h *AssessmentHandler) Reset(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.assessmentService.Reset(c.Request.Context(), claims.UserID); err != nil {
		h.fail(c, claims.UserID, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// History godoc
// GET /api/v1/assessment/history?limit=20
// Lists recorded results, newest first.
func (h *AssessmentHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"limit": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	results, err := h.assessmentService.History(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		h.fail(c, claims.UserID, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

func (h *AssessmentHandler) fail(c *gin.Context, userID int, err error, step *service.Step) {
	status, code := assessmentError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Int("user_id", userID).Msg("Assessment request failed")
	}

	// A rejected or late answer re-prompts with the current step.
	if step != nil && (errors.Is(err, assessment.ErrInvalidChoice) || errors.Is(err, assessment.ErrAssessmentComplete)) {
		response.FailWithData(c, status, code, step)
		return
	}
	response.Fail(c, status, code)
}
