package ai

import (
	"errors"
	"testing"

	"github.com/kiranshivaraju/riskdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRequest() models.ProviderRequest {
	return models.ProviderRequest{
		Questions: []models.AssessmentQuestion{
			{ID: "enc", Type: models.QuestionBoolean},
			{ID: "controls", Type: models.QuestionMultipleChoice, Options: []string{"MFA", "SSO", "EDR"}},
			{ID: "notify", Type: models.QuestionFreeText},
		},
	}
}

func TestParseResponse_Valid(t *testing.T) {
	raw := `{
	  "answers": [
	    {"question_id": "enc", "value": true, "confidence": 0.9, "evidence": [{"quote": "AES-256", "source_file": "a.pdf"}]},
	    {"question_id": "controls", "value": ["MFA", "SSO"], "confidence": 0.7},
	    {"question_id": "notify", "value": "72 hours", "confidence": 0.8}
	  ],
	  "overall_analysis": "Solid.",
	  "risk_factors": ["x"],
	  "recommendations": ["y"]
	}`
	resp, err := ParseResponse("mock", raw, parseRequest())
	require.NoError(t, err)
	require.Len(t, resp.Answers, 3)

	assert.True(t, *resp.Answers[0].Value.Bool)
	assert.Equal(t, "a.pdf", resp.Answers[0].Evidence[0].SourceFileName)
	assert.Equal(t, []string{"MFA", "SSO"}, resp.Answers[1].Value.Choices)
	assert.Equal(t, "72 hours", resp.Answers[2].Value.Text)
	assert.Equal(t, "Solid.", resp.OverallAnalysis)
	assert.Empty(t, resp.Notes)
}

func TestParseResponse_ChoicesOutsideOptionsAreDropped(t *testing.T) {
	req := models.ProviderRequest{
		Questions: []models.AssessmentQuestion{
			{ID: "controls", Type: models.QuestionMultipleChoice, Options: []string{"MFA", "EDR"}},
		},
	}
	raw := `{
	  "answers": [
	    {"question_id": "controls", "value": ["SOC2", "ISO27001", "HSM", "Zero Trust", "Quantum Vault"]}
	  ],
	  "overall_analysis": "x"
	}`
	resp, err := ParseResponse("mock", raw, req)
	require.NoError(t, err)
	require.Len(t, resp.Answers, 1)

	a := resp.Answers[0]
	require.True(t, a.Value.IsChoices())
	assert.Empty(t, a.Value.Choices)
	assert.False(t, a.NotDeterminable)
	require.Len(t, resp.Notes, 5)
	assert.Contains(t, resp.Notes[0], `dropped choice "SOC2"`)
	assert.Contains(t, resp.Notes[4], `dropped choice "Quantum Vault"`)
}

func TestParseResponse_ChoicesUseDeclaredSpelling(t *testing.T) {
	raw := `{
	  "answers": [
	    {"question_id": "controls", "value": ["mfa", " Edr ", "MFA", "Biometrics"]}
	  ],
	  "overall_analysis": "x"
	}`
	resp, err := ParseResponse("mock", raw, parseRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"MFA", "EDR"}, resp.Answers[1].Value.Choices)
	assert.Contains(t, resp.Notes, `controls: dropped choice "Biometrics" not among the options`)
}

func TestParseResponse_CodeFencesAndChatter(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"answers\": [], \"overall_analysis\": \"ok\"}\n```"
	resp, err := ParseResponse("mock", raw, models.ProviderRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.OverallAnalysis)
}

func TestParseResponse_Violations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "I cannot help with that."},
		{"broken json", `{"answers": [`},
		{"missing analysis", `{"answers": []}`},
		{"missing answers", `{"overall_analysis": "x"}`},
		{"object value", `{"answers": [{"question_id": "enc", "value": {"a": 1}}], "overall_analysis": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse("mock", tt.raw, parseRequest())
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrProviderContractViolation))

			var cv *models.ContractViolationError
			require.True(t, errors.As(err, &cv))
			assert.Equal(t, "mock", cv.Provider)
		})
	}
}

func TestParseResponse_FillsMissingAndIgnoresUnknown(t *testing.T) {
	raw := `{"answers": [
	  {"question_id": "enc", "value": false, "confidence": 0.6},
	  {"question_id": "enc", "value": true, "confidence": 0.9},
	  {"question_id": "ghost", "value": true}
	], "overall_analysis": "x"}`
	resp, err := ParseResponse("mock", raw, parseRequest())
	require.NoError(t, err)
	require.Len(t, resp.Answers, 3)

	assert.False(t, *resp.Answers[0].Value.Bool, "first answer wins")
	assert.True(t, resp.Answers[1].NotDeterminable)
	assert.True(t, resp.Answers[2].NotDeterminable)
	assert.Equal(t, models.NotDeterminable, resp.Answers[2].Value.Text)
	assert.Len(t, resp.Notes, 4)
}

func TestParseResponse_NotDeterminableForms(t *testing.T) {
	raw := `{"answers": [
	  {"question_id": "enc", "value": null, "confidence": 0.5},
	  {"question_id": "controls", "value": "Not determinable from provided documents"},
	  {"question_id": "notify", "value": "something", "not_determinable": true, "evidence": [{"quote": "q"}]}
	], "overall_analysis": "x"}`
	resp, err := ParseResponse("mock", raw, parseRequest())
	require.NoError(t, err)
	for _, a := range resp.Answers {
		assert.True(t, a.NotDeterminable, a.QuestionID)
		assert.Equal(t, 0.0, a.Confidence)
		assert.Empty(t, a.Evidence)
	}
}

func TestParseResponse_NoUsableTextForcesNotDeterminable(t *testing.T) {
	req := parseRequest()
	req.NoUsableText = true
	raw := `{"answers": [{"question_id": "enc", "value": true, "confidence": 0.9}], "overall_analysis": "x"}`
	resp, err := ParseResponse("mock", raw, req)
	require.NoError(t, err)
	for _, a := range resp.Answers {
		assert.True(t, a.NotDeterminable)
	}
}

func TestParseResponse_ClampsConfidence(t *testing.T) {
	raw := `{"answers": [
	  {"question_id": "enc", "value": true, "confidence": 1.7},
	  {"question_id": "notify", "value": "x", "confidence": -2}
	], "overall_analysis": "x"}`
	resp, err := ParseResponse("mock", raw, parseRequest())
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Answers[0].Confidence)
	assert.Equal(t, 0.0, resp.Answers[2].Confidence)
}

func TestCoerce(t *testing.T) {
	yes := coerce(models.QuestionBoolean, models.TextValue("Yes, all data is encrypted"))
	require.True(t, yes.IsBool())
	assert.True(t, *yes.Bool)

	no := coerce(models.QuestionBoolean, models.TextValue("no."))
	require.True(t, no.IsBool())
	assert.False(t, *no.Bool)

	unclear := coerce(models.QuestionBoolean, models.TextValue("Partially"))
	assert.Equal(t, "Partially", unclear.Text)

	single := coerce(models.QuestionMultipleChoice, models.TextValue("MFA"))
	assert.Equal(t, []string{"MFA"}, single.Choices)

	text := coerce(models.QuestionFreeText, models.BoolValue(true))
	assert.Equal(t, "Yes", text.Text)

	joined := coerce(models.QuestionFreeText, models.ChoicesValue("a", "b"))
	assert.Equal(t, "a, b", joined.Text)
}
