package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	GetDefaultTenant(ctx context.Context) (*models.Tenant, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateAssessment(ctx context.Context, a *models.Assessment) error
	GetAssessment(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Assessment, error)
	ListAssessments(ctx context.Context, tenantID uuid.UUID, ownerID string) ([]*models.Assessment, error)

	CreateReport(ctx context.Context, report *models.AnalysisReport) error
	GetReport(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.AnalysisReport, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]*models.ReportSummary, int, error)
}

// ReportFilter narrows ListReports. TenantID is required.
type ReportFilter struct {
	TenantID     uuid.UUID
	UserID       string
	AssessmentID *uuid.UUID
	Page         int
	Limit        int
}
