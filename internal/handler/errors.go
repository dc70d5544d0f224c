package handler

import (
	"errors"
	"net/http"

	"github.com/stemsi/riskprofile-backend/internal/assessment"
	"github.com/stemsi/riskprofile-backend/internal/response"
	"github.com/stemsi/riskprofile-backend/internal/service"
)

// assessmentError maps an assessment service error to its HTTP status and
// API code. Unknown errors are internal.
func assessmentError(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, assessment.ErrInvalidChoice):
		return http.StatusUnprocessableEntity, response.ErrInvalidChoice
	case errors.Is(err, assessment.ErrAssessmentComplete):
		return http.StatusConflict, response.ErrAssessmentComplete
	case errors.Is(err, service.ErrAssessmentNotFinished):
		return http.StatusConflict, response.ErrAssessmentNotFinished
	case errors.Is(err, service.ErrResultNotSaved):
		return http.StatusServiceUnavailable, response.ErrResultNotSaved
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}
