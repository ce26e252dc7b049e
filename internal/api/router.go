package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/riskdesk/internal/api/middleware"
	"github.com/kiranshivaraju/riskdesk/internal/api/response"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth        *mw.Auth
	RateLimit   *mw.RateLimit
	CORSOrigins []string

	HealthHandler    http.HandlerFunc
	ProvidersHandler http.HandlerFunc
	FormatsHandler   http.HandlerFunc

	AnalyzeHandler          http.HandlerFunc
	CreateAssessmentHandler http.HandlerFunc
	ListAssessmentsHandler  http.HandlerFunc
	ListReportsHandler      http.HandlerFunc
	GetReportHandler        http.HandlerFunc
	ProviderTestHandler     http.HandlerFunc

	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	if len(deps.CORSOrigins) > 0 {
		r.Use(mw.CORS(deps.CORSOrigins))
	}

	// Public routes
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimit.Limit)

		r.Get("/api/v1/debug/providers", orNotImplemented(deps.ProvidersHandler))
		r.Get("/api/v1/debug/formats", orNotImplemented(deps.FormatsHandler))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.With(deps.Auth.RequireScope(models.ScopeAnalyze, models.ScopeDemo)).
			Post("/api/v1/assessments/analyze", orNotImplemented(deps.AnalyzeHandler))
		r.With(deps.Auth.RequireScope(models.ScopeAnalyze, models.ScopeDemo)).
			Post("/api/v1/providers/test", orNotImplemented(deps.ProviderTestHandler))

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeAnalyze))

			r.Post("/api/v1/assessments", orNotImplemented(deps.CreateAssessmentHandler))
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeRead, models.ScopeAnalyze))

			r.Get("/api/v1/assessments", orNotImplemented(deps.ListAssessmentsHandler))
			r.Get("/api/v1/reports", orNotImplemented(deps.ListReportsHandler))
			r.Get("/api/v1/reports/{reportID}", orNotImplemented(deps.GetReportHandler))
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope(models.ScopeAdmin))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
