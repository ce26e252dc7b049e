package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/riskdesk/internal/api/middleware"
	"github.com/kiranshivaraju/riskdesk/internal/api/response"
	"github.com/kiranshivaraju/riskdesk/internal/store"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportReader reads stored reports.
type ReportReader interface {
	GetReport(ctx context.Context, caller models.CallerContext, id uuid.UUID) (*models.AnalysisReport, error)
	ListReports(ctx context.Context, caller models.CallerContext, filter store.ReportFilter) ([]*models.ReportSummary, int, error)
}

// NewGetReportHandler returns an http.HandlerFunc for GET /api/v1/reports/{reportID}.
func NewGetReportHandler(svc ReportReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := mw.Caller(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "reportID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REPORT_ID", "Invalid report ID", nil)
			return
		}

		report, err := svc.GetReport(r.Context(), caller, id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, report)
	}
}

// NewListReportsHandler returns an http.HandlerFunc for GET /api/v1/reports.
func NewListReportsHandler(svc ReportReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := mw.Caller(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		q := r.URL.Query()
		filter := store.ReportFilter{
			UserID: q.Get("userId"),
			Page:   queryInt(q.Get("page"), 1),
			Limit:  queryInt(q.Get("limit"), defaultPageSize),
		}
		if filter.Page < 1 {
			filter.Page = 1
		}
		if filter.Limit < 1 {
			filter.Limit = defaultPageSize
		}
		if filter.Limit > maxPageSize {
			filter.Limit = maxPageSize
		}
		if raw := q.Get("assessmentId"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "assessmentId must be a UUID", nil)
				return
			}
			filter.AssessmentID = &id
		}

		reports, total, err := svc.ListReports(r.Context(), caller, filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if reports == nil {
			reports = []*models.ReportSummary{}
		}

		response.Collection(w, reports, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: total > filter.Page*filter.Limit,
		})
	}
}

func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
