package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	pages := 4
	tenant := uuid.New()
	assessment := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	in := Input{
		Caller:         models.CallerContext{TenantID: tenant, UserID: "user-1"},
		AssessmentID:   &assessment,
		AssessmentType: "cyber",
		Extractions: []models.ExtractionResult{
			{Document: models.DocumentMeta{FileName: "a.pdf", Role: models.RolePrimary}, Text: "hello", Method: models.MethodPrimary, Confidence: 0.9, PageCount: &pages, Success: true},
			{Document: models.DocumentMeta{FileName: "b.pdf", Role: models.RoleFourthParty, RelationshipLabel: "cloud"}, Method: models.MethodFailed, Issues: []string{"no text"}},
		},
		Response: models.ProviderResponse{
			OverallAnalysis: "  Strong program.  ",
			RiskFactors:     []string{"", " vendor concentration "},
			Recommendations: []string{"Request SOC 2 bridge letter"},
			Provider:        "openai",
			Model:           "gpt-4o",
			Notes:           []string{"q9: answer missing"},
		},
		Answers: []models.AnalysisAnswer{{
			QuestionID: "enc",
			Value:      models.BoolValue(true),
			Evidence:   []models.EvidenceExcerpt{{Quote: "  exact  quote ", SourceFileName: "a.pdf"}},
		}},
		Score:             models.RiskScore{Value: 85, Level: models.RiskLow},
		Notes:             []string{"b.pdf excluded"},
		DocumentsIncluded: 1,
		ArchiveKeys:       []string{"tenant/report/a.pdf", ""},
		Now:               now,
	}

	r := Assemble(in)

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, tenant, r.TenantID)
	assert.Equal(t, "user-1", r.UserID)
	assert.Equal(t, &assessment, r.AssessmentID)
	assert.Equal(t, 1, r.DocumentsAnalyzed)
	require.Len(t, r.Documents, 2)
	assert.Equal(t, 5, r.Documents[0].CharCount)
	assert.Equal(t, "tenant/report/a.pdf", r.Documents[0].ArchiveKey)
	assert.Equal(t, "cloud", r.Documents[1].RelationshipLabel)
	assert.Equal(t, "Strong program.", r.OverallAnalysis)
	assert.Equal(t, []string{"vendor concentration"}, r.RiskFactors)
	assert.Equal(t, "  exact  quote ", r.Answers[0].Evidence[0].Quote)
	assert.Equal(t, []string{"q9: answer missing", "b.pdf excluded"}, r.Notes)
	assert.Equal(t, "openai", r.AIProvider)
	assert.Equal(t, now, r.CreatedAt)
	assert.NotNil(t, r.ScoreBreakdown)
}

func TestAssemble_SameFileNameKeepsEachArchiveKey(t *testing.T) {
	doc := models.DocumentMeta{FileName: "policy.pdf", Role: models.RolePrimary}
	in := Input{
		Extractions: []models.ExtractionResult{
			{Document: doc, Text: "first", Success: true},
			{Document: doc, Text: "second", Success: true},
		},
		DocumentsIncluded: 2,
		ArchiveKeys:       []string{"t/r/0-policy.pdf", "t/r/1-policy.pdf"},
	}

	r := Assemble(in)
	require.Len(t, r.Documents, 2)
	assert.Equal(t, "t/r/0-policy.pdf", r.Documents[0].ArchiveKey)
	assert.Equal(t, "t/r/1-policy.pdf", r.Documents[1].ArchiveKey)
}

func TestAssemble_AnalyzedCountsDocumentsSentToModel(t *testing.T) {
	in := Input{
		Extractions: []models.ExtractionResult{
			{Document: models.DocumentMeta{FileName: "a.txt"}, Text: "a", Success: true},
			{Document: models.DocumentMeta{FileName: "b.txt"}, Text: "b", Success: true},
			{Document: models.DocumentMeta{FileName: "c.txt"}, Text: "c", Success: true},
		},
		DocumentsIncluded: 1,
	}

	r := Assemble(in)
	assert.Equal(t, 1, r.DocumentsAnalyzed)
	for _, d := range r.Documents {
		assert.Empty(t, d.ArchiveKey)
	}
}

func TestAssemble_EmptyInputs(t *testing.T) {
	r := Assemble(Input{})
	assert.Equal(t, 0, r.DocumentsAnalyzed)
	assert.NotNil(t, r.Answers)
	assert.NotNil(t, r.RiskFactors)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestCleanList_Limits(t *testing.T) {
	in := make([]string, 40)
	for i := range in {
		in[i] = strings.Repeat("x", 2000)
	}
	out := cleanList(in)
	assert.Len(t, out, maxListItems)
	assert.Len(t, out[0], maxListItemBytes)
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxBytes int
		expected string
	}{
		{"short string", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncated ascii", "hello world", 5, "hello"},
		{"utf8 boundary", "héllo", 2, "h"},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncateString(tt.input, tt.maxBytes)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxBytes, result, tt.expected)
			}
		})
	}
}
