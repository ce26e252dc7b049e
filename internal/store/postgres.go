package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Tenants ---

func (s *PostgresStore) GetDefaultTenant(ctx context.Context) (*models.Tenant, error) {
	var t models.Tenant
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM tenants WHERE name = 'default' LIMIT 1`,
	).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default tenant: %w", err)
	}
	return &t, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, user_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, tenant_id, user_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		key.ID, key.TenantID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, user_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`, id, tenantID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Assessments ---

func (s *PostgresStore) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assessments (id, tenant_id, owner_id, name, assessment_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.TenantID, a.OwnerID, a.Name, a.AssessmentType, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAssessment(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Assessment, error) {
	var a models.Assessment
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, owner_id, name, assessment_type, created_at, updated_at
		 FROM assessments WHERE id = $1 AND tenant_id = $2`, id, tenantID,
	).Scan(&a.ID, &a.TenantID, &a.OwnerID, &a.Name, &a.AssessmentType, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) ListAssessments(ctx context.Context, tenantID uuid.UUID, ownerID string) ([]*models.Assessment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, owner_id, name, assessment_type, created_at, updated_at
		 FROM assessments WHERE tenant_id = $1 AND owner_id = $2 ORDER BY created_at DESC`, tenantID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var out []*models.Assessment
	for rows.Next() {
		var a models.Assessment
		if err := rows.Scan(&a.ID, &a.TenantID, &a.OwnerID, &a.Name, &a.AssessmentType, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// --- Reports ---

// CreateReport stores the report and its document summaries in one transaction.
func (s *PostgresStore) CreateReport(ctx context.Context, r *models.AnalysisReport) error {
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	riskFactors, err := json.Marshal(nonNil(r.RiskFactors))
	if err != nil {
		return fmt.Errorf("marshal risk factors: %w", err)
	}
	recommendations, err := json.Marshal(nonNil(r.Recommendations))
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	breakdown, err := json.Marshal(r.ScoreBreakdown)
	if err != nil {
		return fmt.Errorf("marshal score breakdown: %w", err)
	}
	notes, err := json.Marshal(nonNil(r.Notes))
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin report transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO analysis_reports (id, tenant_id, user_id, assessment_id, assessment_type, risk_score, risk_level,
		   documents_analyzed, ai_provider, model, overall_analysis, answers, risk_factors, recommendations,
		   score_breakdown, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		r.ID, r.TenantID, r.UserID, r.AssessmentID, r.AssessmentType, r.RiskScore.Value, string(r.RiskScore.Level),
		r.DocumentsAnalyzed, r.AIProvider, r.Model, r.OverallAnalysis, answers, riskFactors, recommendations,
		breakdown, notes, r.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create report: %w", err)
	}

	for i, d := range r.Documents {
		issues, err := json.Marshal(nonNil(d.Issues))
		if err != nil {
			return fmt.Errorf("marshal document issues: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO report_documents (report_id, position, file_name, role, relationship_label, size_bytes,
			   method, confidence, page_count, char_count, issues, success, archive_key)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			r.ID, i, d.FileName, string(d.Role), d.RelationshipLabel, d.SizeBytes,
			string(d.Method), d.Confidence, d.PageCount, d.CharCount, issues, d.Success, d.ArchiveKey)
		if err != nil {
			return fmt.Errorf("create report document: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetReport(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.AnalysisReport, error) {
	var r models.AnalysisReport
	var level string
	var answers, riskFactors, recommendations, breakdown, notes []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, user_id, assessment_id, assessment_type, risk_score, risk_level, documents_analyzed,
		   ai_provider, model, overall_analysis, answers, risk_factors, recommendations, score_breakdown, notes, created_at
		 FROM analysis_reports WHERE id = $1 AND tenant_id = $2`, id, tenantID,
	).Scan(&r.ID, &r.TenantID, &r.UserID, &r.AssessmentID, &r.AssessmentType, &r.RiskScore.Value, &level,
		&r.DocumentsAnalyzed, &r.AIProvider, &r.Model, &r.OverallAnalysis, &answers, &riskFactors,
		&recommendations, &breakdown, &notes, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	r.RiskScore.Level = models.RiskLevel(level)

	for _, col := range []struct {
		name string
		data []byte
		dst  any
	}{
		{"answers", answers, &r.Answers},
		{"risk_factors", riskFactors, &r.RiskFactors},
		{"recommendations", recommendations, &r.Recommendations},
		{"score_breakdown", breakdown, &r.ScoreBreakdown},
		{"notes", notes, &r.Notes},
	} {
		if err := json.Unmarshal(col.data, col.dst); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", col.name, err)
		}
	}

	docs, err := s.reportDocuments(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	r.Documents = docs
	return &r, nil
}

func (s *PostgresStore) reportDocuments(ctx context.Context, reportID uuid.UUID) ([]models.DocumentSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT file_name, role, relationship_label, size_bytes, method, confidence, page_count, char_count,
		   issues, success, archive_key
		 FROM report_documents WHERE report_id = $1 ORDER BY position`, reportID)
	if err != nil {
		return nil, fmt.Errorf("list report documents: %w", err)
	}
	defer rows.Close()

	docs := []models.DocumentSummary{}
	for rows.Next() {
		var (
			d            models.DocumentSummary
			role, method string
			issues       []byte
		)
		if err := rows.Scan(&d.FileName, &role, &d.RelationshipLabel, &d.SizeBytes, &method, &d.Confidence,
			&d.PageCount, &d.CharCount, &issues, &d.Success, &d.ArchiveKey); err != nil {
			return nil, fmt.Errorf("scan report document: %w", err)
		}
		d.Role = models.DocumentRole(role)
		d.Method = models.ExtractionMethod(method)
		if err := json.Unmarshal(issues, &d.Issues); err != nil {
			return nil, fmt.Errorf("decode document issues: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) ListReports(ctx context.Context, filter ReportFilter) ([]*models.ReportSummary, int, error) {
	conditions := []string{"tenant_id = $1"}
	args := []any{filter.TenantID}
	argIdx := 2

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.AssessmentID != nil {
		conditions = append(conditions, fmt.Sprintf("assessment_id = $%d", argIdx))
		args = append(args, *filter.AssessmentID)
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM analysis_reports WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	dataQuery := fmt.Sprintf(
		`SELECT id, assessment_id, assessment_type, user_id, risk_score, risk_level, documents_analyzed, ai_provider, created_at
		 FROM analysis_reports WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []*models.ReportSummary
	for rows.Next() {
		var (
			r     models.ReportSummary
			level string
		)
		if err := rows.Scan(&r.ID, &r.AssessmentID, &r.AssessmentType, &r.UserID, &r.RiskScore.Value, &level,
			&r.DocumentsAnalyzed, &r.AIProvider, &r.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan report: %w", err)
		}
		r.RiskScore.Level = models.RiskLevel(level)
		out = append(out, &r)
	}
	return out, total, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
