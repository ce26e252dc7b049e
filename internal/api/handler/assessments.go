package handler

import (
	"context"
	"encoding/json"
	"net/http"

	mw "github.com/kiranshivaraju/riskdesk/internal/api/middleware"
	"github.com/kiranshivaraju/riskdesk/internal/api/response"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// AssessmentManager registers and lists assessments for the calling user.
type AssessmentManager interface {
	CreateAssessment(ctx context.Context, caller models.CallerContext, name, assessmentType string) (*models.Assessment, error)
	ListAssessments(ctx context.Context, caller models.CallerContext) ([]*models.Assessment, error)
}

// NewCreateAssessmentHandler returns an http.HandlerFunc for POST /api/v1/assessments.
func NewCreateAssessmentHandler(svc AssessmentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := mw.Caller(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		var req struct {
			Name           string `json:"name"`
			AssessmentType string `json:"assessment_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		a, err := svc.CreateAssessment(r.Context(), caller, req.Name, req.AssessmentType)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Created(w, a)
	}
}

// NewListAssessmentsHandler returns an http.HandlerFunc for GET /api/v1/assessments.
func NewListAssessmentsHandler(svc AssessmentManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := mw.Caller(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		list, err := svc.ListAssessments(r.Context(), caller)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if list == nil {
			list = []*models.Assessment{}
		}
		response.JSON(w, list)
	}
}
