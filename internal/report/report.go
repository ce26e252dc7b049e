// Package report assembles the final analysis report from the pipeline's
// intermediate results.
package report

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

const (
	maxAnalysisBytes = 20000
	maxListItemBytes = 1000
	maxListItems     = 25
)

// Input is everything Assemble needs.
type Input struct {
	Caller         models.CallerContext
	AssessmentID   *uuid.UUID
	AssessmentType string
	Extractions    []models.ExtractionResult
	Response       models.ProviderResponse
	Answers        []models.AnalysisAnswer
	Score          models.RiskScore
	Breakdown      []models.ScoreAdjustment
	Notes          []string
	// DocumentsIncluded is how many documents reached the model.
	DocumentsIncluded int
	// ArchiveKeys holds each document's archive key by upload position.
	ArchiveKeys []string
	Now         time.Time
}

// Assemble builds the report. It does not alter evidence quotes.
func Assemble(in Input) models.AnalysisReport {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	docs := make([]models.DocumentSummary, 0, len(in.Extractions))
	for i, ex := range in.Extractions {
		var archiveKey string
		if i < len(in.ArchiveKeys) {
			archiveKey = in.ArchiveKeys[i]
		}
		docs = append(docs, models.DocumentSummary{
			FileName:          ex.Document.FileName,
			Role:              ex.Document.Role,
			RelationshipLabel: ex.Document.RelationshipLabel,
			SizeBytes:         ex.Document.SizeBytes,
			Method:            ex.Method,
			Confidence:        ex.Confidence,
			PageCount:         ex.PageCount,
			CharCount:         utf8.RuneCountInString(ex.Text),
			Issues:            ex.Issues,
			Success:           ex.Success,
			ArchiveKey:        archiveKey,
		})
	}

	answers := in.Answers
	if answers == nil {
		answers = []models.AnalysisAnswer{}
	}
	breakdown := in.Breakdown
	if breakdown == nil {
		breakdown = []models.ScoreAdjustment{}
	}

	notes := append([]string{}, in.Response.Notes...)
	notes = append(notes, in.Notes...)

	return models.AnalysisReport{
		ID:                uuid.New(),
		TenantID:          in.Caller.TenantID,
		UserID:            in.Caller.UserID,
		AssessmentID:      in.AssessmentID,
		AssessmentType:    in.AssessmentType,
		Answers:           answers,
		OverallAnalysis:   truncateString(strings.TrimSpace(in.Response.OverallAnalysis), maxAnalysisBytes),
		RiskFactors:       cleanList(in.Response.RiskFactors),
		Recommendations:   cleanList(in.Response.Recommendations),
		DocumentsAnalyzed: in.DocumentsIncluded,
		Documents:         docs,
		RiskScore:         in.Score,
		ScoreBreakdown:    breakdown,
		AIProvider:        in.Response.Provider,
		Model:             in.Response.Model,
		Notes:             notes,
		Demo:              in.Caller.IsDemo,
		CreatedAt:         now,
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, truncateString(s, maxListItemBytes))
		if len(out) == maxListItems {
			break
		}
	}
	return out
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
