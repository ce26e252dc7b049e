package evidence_test

import (
	"strings"
	"testing"

	"github.com/kiranshivaraju/riskdesk/internal/evidence"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var docs = []models.ExtractionResult{
	{
		Document: models.DocumentMeta{FileName: "policy.txt", Role: models.RolePrimary},
		Label:    "primary vendor",
		Text:     "All customer data is encrypted at rest using AES-256.\nMFA is required for admins.",
		Method:   models.MethodPrimary,
		Success:  true,
	},
	{
		Document: models.DocumentMeta{FileName: "host-soc2.txt", Role: models.RoleFourthParty},
		Label:    "fourth-party: hosting",
		Text:     "Backups are replicated to a second region every hour.",
		Method:   models.MethodPrimary,
		Success:  true,
	},
}

func question(id string) models.AssessmentQuestion {
	return models.AssessmentQuestion{ID: id, Type: models.QuestionBoolean, Category: models.CategoryCyber}
}

func TestVerify_KeepsVerbatimQuote(t *testing.T) {
	answers := []models.AnalysisAnswer{{
		QuestionID: "enc",
		Value:      models.BoolValue(true),
		Confidence: 0.9,
		Evidence:   []models.EvidenceExcerpt{{Quote: "encrypted at rest using AES-256", SourceFileName: "policy.txt"}},
	}}

	out, notes := evidence.Verify(answers, docs, []models.AssessmentQuestion{question("enc")})
	require.Len(t, out, 1)
	require.Len(t, out[0].Evidence, 1)
	assert.Equal(t, "policy.txt", out[0].Evidence[0].SourceFileName)
	assert.Equal(t, "primary vendor", out[0].Evidence[0].SourceLabel)
	assert.Equal(t, 0.9, out[0].Confidence)
	assert.Empty(t, notes)
}

func TestVerify_ReattributesQuoteFoundElsewhere(t *testing.T) {
	answers := []models.AnalysisAnswer{{
		QuestionID: "backup",
		Value:      models.BoolValue(true),
		Evidence:   []models.EvidenceExcerpt{{Quote: "replicated to a second region", SourceFileName: "policy.txt"}},
	}}

	out, notes := evidence.Verify(answers, docs, []models.AssessmentQuestion{question("backup")})
	require.Len(t, out[0].Evidence, 1)
	assert.Equal(t, "host-soc2.txt", out[0].Evidence[0].SourceFileName)
	assert.Equal(t, "fourth-party: hosting", out[0].Evidence[0].SourceLabel)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0], "host-soc2.txt")
}

func TestVerify_DropsParaphraseAndDowngrades(t *testing.T) {
	answers := []models.AnalysisAnswer{{
		QuestionID: "enc",
		Value:      models.BoolValue(true),
		Confidence: 0.95,
		Evidence:   []models.EvidenceExcerpt{{Quote: "data is encrypted with strong AES", SourceFileName: "policy.txt"}},
	}}

	out, notes := evidence.Verify(answers, docs, []models.AssessmentQuestion{question("enc")})
	assert.True(t, out[0].NotDeterminable)
	assert.Equal(t, 0.0, out[0].Confidence)
	assert.Empty(t, out[0].Evidence)
	assert.Len(t, notes, 2)
}

func TestVerify_EvidenceOptionalQuestionKeepsAnswer(t *testing.T) {
	no := false
	q := models.AssessmentQuestion{ID: "summary", Type: models.QuestionFreeText, RequiresEvidence: &no}
	answers := []models.AnalysisAnswer{{QuestionID: "summary", Value: models.TextValue("Mature program"), Confidence: 0.6}}

	out, _ := evidence.Verify(answers, docs, []models.AssessmentQuestion{q})
	assert.False(t, out[0].NotDeterminable)
	assert.Equal(t, "Mature program", out[0].Value.Text)
	assert.Equal(t, 0.6, out[0].Confidence)
}

func TestVerify_IgnoresFailedExtractions(t *testing.T) {
	failed := models.ExtractionResult{Document: models.DocumentMeta{FileName: "x.pdf"}, Text: "secret quote", Success: false}
	answers := []models.AnalysisAnswer{{
		QuestionID: "q",
		Value:      models.BoolValue(true),
		Evidence:   []models.EvidenceExcerpt{{Quote: "secret quote", SourceFileName: "x.pdf"}},
	}}
	out, _ := evidence.Verify(answers, []models.ExtractionResult{failed}, []models.AssessmentQuestion{question("q")})
	assert.True(t, out[0].NotDeterminable)
}

func TestVerify_StripsWrappingQuoteMarks(t *testing.T) {
	answers := []models.AnalysisAnswer{{
		QuestionID: "mfa",
		Value:      models.BoolValue(true),
		Evidence:   []models.EvidenceExcerpt{{Quote: "  \"MFA is required for admins.\" ", SourceFileName: "policy.txt"}},
	}}
	out, _ := evidence.Verify(answers, docs, []models.AssessmentQuestion{question("mfa")})
	require.Len(t, out[0].Evidence, 1)
	assert.Equal(t, "MFA is required for admins.", out[0].Evidence[0].Quote)
}

func TestVerify_EveryKeptQuoteIsSubstring(t *testing.T) {
	answers := []models.AnalysisAnswer{
		{QuestionID: "a", Value: models.BoolValue(true), Evidence: []models.EvidenceExcerpt{
			{Quote: "AES-256", SourceFileName: "policy.txt"},
			{Quote: "invented sentence", SourceFileName: "policy.txt"},
			{Quote: "every hour", SourceFileName: "unknown.txt"},
		}},
		{QuestionID: "b", Value: models.BoolValue(false), Evidence: []models.EvidenceExcerpt{{Quote: ""}}},
	}
	out, _ := evidence.Verify(answers, docs, []models.AssessmentQuestion{question("a"), question("b")})

	texts := map[string]string{}
	for _, d := range docs {
		texts[d.Document.FileName] = d.Text
	}
	for _, a := range out {
		for _, ex := range a.Evidence {
			assert.True(t, strings.Contains(texts[ex.SourceFileName], ex.Quote), "quote %q not in %s", ex.Quote, ex.SourceFileName)
		}
	}
	assert.Len(t, out[0].Evidence, 2)
	assert.True(t, out[1].NotDeterminable)
}
