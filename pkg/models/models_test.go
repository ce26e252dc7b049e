package models_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kiranshivaraju/riskdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  models.RiskLevel
	}{
		{100, models.RiskLow},
		{80, models.RiskLow},
		{79, models.RiskMedium},
		{60, models.RiskMedium},
		{59, models.RiskHigh},
		{40, models.RiskHigh},
		{39, models.RiskCritical},
		{0, models.RiskCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.LevelForScore(tt.score), "score %d", tt.score)
	}
}

func TestAnswerValue_UnmarshalShapes(t *testing.T) {
	var answer models.AnalysisAnswer
	require.NoError(t, json.Unmarshal([]byte(`{"question_id":"q1","value":false}`), &answer))
	require.True(t, answer.Value.IsBool())
	assert.False(t, *answer.Value.Bool)

	require.NoError(t, json.Unmarshal([]byte(`{"question_id":"q2","value":["MFA","SSO"]}`), &answer))
	assert.Equal(t, []string{"MFA", "SSO"}, answer.Value.Choices)

	require.NoError(t, json.Unmarshal([]byte(`{"question_id":"q3","value":"Annual"}`), &answer))
	assert.Equal(t, "Annual", answer.Value.Text)

	require.NoError(t, json.Unmarshal([]byte(`{"question_id":"q4","value":42}`), &answer))
	assert.Equal(t, "42", answer.Value.Text)
}

func TestAnswerValue_MarshalBareValue(t *testing.T) {
	b, err := json.Marshal(models.BoolValue(true))
	require.NoError(t, err)
	assert.Equal(t, "true", string(b))

	b, err = json.Marshal(models.ChoicesValue("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(b))
}

func TestMarkNotDeterminable(t *testing.T) {
	a := models.AnalysisAnswer{
		QuestionID: "q1",
		Value:      models.BoolValue(true),
		Confidence: 0.9,
		Evidence:   []models.EvidenceExcerpt{{Quote: "x"}},
	}
	a.MarkNotDeterminable("no verifiable evidence")

	assert.True(t, a.NotDeterminable)
	assert.Equal(t, 0.0, a.Confidence)
	assert.Empty(t, a.Evidence)
	assert.Equal(t, models.NotDeterminable, a.Value.Text)
	assert.Equal(t, "no verifiable evidence", a.Note)
}

func TestQuestionDefaults(t *testing.T) {
	q := models.AssessmentQuestion{ID: "q1"}
	assert.Equal(t, 1.0, q.EffectiveWeight())
	assert.Equal(t, models.CategoryGeneral, q.EffectiveCategory())
	assert.True(t, q.NeedsEvidence())

	no := false
	q.RequiresEvidence = &no
	q.Category = models.CategoryCyber
	assert.False(t, q.NeedsEvidence())
	assert.Equal(t, models.CategoryCyber, q.EffectiveCategory())
}

func TestTypedErrorsUnwrap(t *testing.T) {
	var err error = &models.FormatError{FileName: "a.docx", Reason: "unsupported"}
	assert.True(t, errors.Is(err, models.ErrUnsupportedFormat))

	err = &models.ContractViolationError{Provider: "openai", Reason: "bad json", Raw: "{"}
	assert.True(t, errors.Is(err, models.ErrProviderContractViolation))

	err = &models.UnavailableError{Provider: "openai", Reason: "no key"}
	assert.True(t, errors.Is(err, models.ErrProviderUnavailable))
}

func TestDocumentLabel(t *testing.T) {
	d := models.UploadedDocument{Role: models.RoleFourthParty, RelationshipLabel: "cloud host"}
	assert.Equal(t, "fourth-party: cloud host", d.Label())
	assert.Equal(t, "primary vendor", models.UploadedDocument{Role: models.RolePrimary}.Label())
}
