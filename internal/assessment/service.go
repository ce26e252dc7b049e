// Package assessment runs the document-assessment pipeline: extraction,
// prompt building, one provider call, evidence verification, scoring and
// report assembly.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/riskdesk/internal/ai"
	"github.com/kiranshivaraju/riskdesk/internal/blob"
	"github.com/kiranshivaraju/riskdesk/internal/cache"
	"github.com/kiranshivaraju/riskdesk/internal/evidence"
	"github.com/kiranshivaraju/riskdesk/internal/extract"
	"github.com/kiranshivaraju/riskdesk/internal/prompt"
	"github.com/kiranshivaraju/riskdesk/internal/report"
	"github.com/kiranshivaraju/riskdesk/internal/scoring"
	"github.com/kiranshivaraju/riskdesk/internal/store"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// Options configures a Service. Archive may be nil.
type Options struct {
	Extractor *extract.Extractor
	Prompts   *prompt.Builder
	Gateway   *ai.Gateway
	Scorer    *scoring.Engine
	Store     store.Store
	Cache     cache.Cache
	Archive   blob.Archive
	ReportTTL time.Duration
	MaxFiles  int
}

// Service orchestrates one analysis per call. It holds no per-request state.
type Service struct {
	extractor *extract.Extractor
	prompts   *prompt.Builder
	gateway   *ai.Gateway
	scorer    *scoring.Engine
	store     store.Store
	cache     cache.Cache
	archive   blob.Archive
	reportTTL time.Duration
	maxFiles  int
	now       func() time.Time
}

// NewService creates a new Service.
func NewService(opts Options) *Service {
	s := &Service{
		extractor: opts.Extractor,
		prompts:   opts.Prompts,
		gateway:   opts.Gateway,
		scorer:    opts.Scorer,
		store:     opts.Store,
		cache:     opts.Cache,
		archive:   opts.Archive,
		reportTTL: opts.ReportTTL,
		maxFiles:  opts.MaxFiles,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if s.prompts == nil {
		s.prompts = prompt.NewBuilder(0)
	}
	if s.scorer == nil {
		s.scorer = scoring.NewEngine(scoring.DefaultRules())
	}
	if s.reportTTL <= 0 {
		s.reportTTL = 15 * time.Minute
	}
	return s
}

// Analyze runs the full pipeline for caller. Authorization and provider
// readiness are checked before any document is read. Per-document failures
// are recorded in the report; provider and authorization failures are
// returned as errors.
func (s *Service) Analyze(ctx context.Context, caller models.CallerContext, req AnalyzeRequest) (*models.AnalysisReport, error) {
	log := slog.With("tenant_id", caller.TenantID, "user_id", caller.UserID, "demo", caller.IsDemo)

	if err := s.authorize(ctx, caller, req); err != nil {
		return nil, err
	}
	if err := req.validate(s.maxFiles); err != nil {
		return nil, err
	}
	if err := s.gateway.Ready(req.CallerKey); err != nil {
		return nil, err
	}

	start := s.now()
	extractions, err := s.extractor.ExtractAll(ctx, req.Documents)
	if err != nil {
		return nil, err
	}
	notes := extractionNotes(extractions)

	provReq := s.prompts.Build(extractions, req.Questions, req.AssessmentType)
	provReq.CallerKey = req.CallerKey
	if provReq.NoUsableText {
		log.Warn("no document produced usable text", "documents", len(req.Documents))
	}

	resp, err := s.gateway.Analyze(ctx, provReq)
	if err != nil {
		log.Error("provider analysis failed", "error", err)
		return nil, err
	}

	answers, verifyNotes := evidence.Verify(resp.Answers, extractions, req.Questions)
	notes = append(notes, verifyNotes...)

	score, breakdown := s.scorer.Explain(req.Questions, answers)

	in := report.Input{
		Caller:         caller,
		AssessmentID:   req.AssessmentID,
		AssessmentType: req.AssessmentType,
		Extractions:    extractions,
		Response:       resp,
		Answers:        answers,
		Score:          score,
		Breakdown:      breakdown,
		Notes:          append(provReq.Notes, notes...),

		DocumentsIncluded: len(provReq.DocumentsIncluded),
		Now:               s.now(),
	}

	reportID := uuid.New()
	if !caller.IsDemo && req.StoreDocuments && s.archive != nil {
		in.ArchiveKeys = s.archiveDocuments(ctx, caller.TenantID, reportID, req.Documents)
	}

	rep := report.Assemble(in)
	rep.ID = reportID

	if !caller.IsDemo {
		if err := s.store.CreateReport(ctx, &rep); err != nil {
			return nil, fmt.Errorf("storing report: %w", err)
		}
		if s.cache != nil {
			if err := cache.SetJSON(ctx, s.cache, cache.ReportKey(rep.TenantID, rep.ID), rep, s.reportTTL); err != nil {
				log.Warn("caching report failed", "report_id", rep.ID, "error", err)
			}
		}
	}

	log.Info("assessment analyzed",
		"report_id", rep.ID,
		"documents", len(req.Documents),
		"documents_analyzed", rep.DocumentsAnalyzed,
		"score", rep.RiskScore.Value,
		"level", rep.RiskScore.Level,
		"provider", rep.AIProvider,
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return &rep, nil
}

// GetReport returns a stored report of the caller's tenant, serving from
// the cache when possible.
func (s *Service) GetReport(ctx context.Context, caller models.CallerContext, id uuid.UUID) (*models.AnalysisReport, error) {
	key := cache.ReportKey(caller.TenantID, id)
	if s.cache != nil {
		var cached models.AnalysisReport
		if found, err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	rep, err := s.store.GetReport(ctx, id, caller.TenantID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := cache.SetJSON(ctx, s.cache, key, rep, s.reportTTL); err != nil {
			slog.Warn("caching report failed", "report_id", id, "error", err)
		}
	}
	return rep, nil
}

// ListReports lists the caller tenant's reports, newest first.
func (s *Service) ListReports(ctx context.Context, caller models.CallerContext, filter store.ReportFilter) ([]*models.ReportSummary, int, error) {
	filter.TenantID = caller.TenantID
	if filter.AssessmentID != nil {
		if _, err := s.ownedAssessment(ctx, caller, *filter.AssessmentID); err != nil {
			return nil, 0, err
		}
	}
	return s.store.ListReports(ctx, filter)
}

// CreateAssessment registers a new assessment owned by the caller.
func (s *Service) CreateAssessment(ctx context.Context, caller models.CallerContext, name, assessmentType string) (*models.Assessment, error) {
	if name == "" || assessmentType == "" {
		return nil, invalid("name and assessment_type are required")
	}
	if caller.UserID == "" {
		return nil, fmt.Errorf("%w: assessments need an identified user", models.ErrUnauthorized)
	}
	now := s.now()
	a := &models.Assessment{
		ID:             uuid.New(),
		TenantID:       caller.TenantID,
		OwnerID:        caller.UserID,
		Name:           name,
		AssessmentType: assessmentType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("creating assessment: %w", err)
	}
	return a, nil
}

// ListAssessments lists assessments owned by the caller.
func (s *Service) ListAssessments(ctx context.Context, caller models.CallerContext) ([]*models.Assessment, error) {
	return s.store.ListAssessments(ctx, caller.TenantID, caller.UserID)
}

func (s *Service) authorize(ctx context.Context, caller models.CallerContext, req AnalyzeRequest) error {
	if req.UserID != "" && req.UserID != caller.UserID {
		return fmt.Errorf("%w: request is for user %q but the API key belongs to %q", models.ErrUnauthorized, req.UserID, caller.UserID)
	}
	if req.AssessmentID != nil {
		if _, err := s.ownedAssessment(ctx, caller, *req.AssessmentID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ownedAssessment(ctx context.Context, caller models.CallerContext, id uuid.UUID) (*models.Assessment, error) {
	a, err := s.store.GetAssessment(ctx, id, caller.TenantID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: assessment %s not found for this tenant", models.ErrUnauthorized, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading assessment: %w", err)
	}
	if a.OwnerID != caller.UserID {
		return nil, fmt.Errorf("%w: assessment %s belongs to another user", models.ErrUnauthorized, id)
	}
	return a, nil
}

// archiveDocuments uploads raw files and returns their keys by upload
// position. Archive failures are logged and leave that key empty.
func (s *Service) archiveDocuments(ctx context.Context, tenantID, reportID uuid.UUID, docs []models.UploadedDocument) []string {
	keys := make([]string, len(docs))
	for i, d := range docs {
		key := blob.DocumentKey(tenantID, reportID, i, d.FileName)
		if err := s.archive.Put(ctx, key, d.Raw, d.MIMEType); err != nil {
			slog.Warn("archiving document failed", "file", d.FileName, "error", err)
			continue
		}
		keys[i] = key
	}
	return keys
}

func extractionNotes(extractions []models.ExtractionResult) []string {
	var notes []string
	for _, ex := range extractions {
		if ex.Success {
			continue
		}
		msg := fmt.Sprintf("%s was excluded from the analysis", ex.Document.FileName)
		if len(ex.Issues) > 0 {
			msg += ": " + ex.Issues[0]
		}
		notes = append(notes, msg)
	}
	return notes
}
