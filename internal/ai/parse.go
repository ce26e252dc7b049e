package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kiranshivaraju/riskdesk/internal/prompt"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// ParseResponse interprets raw model output against the questions that were
// asked. Every question gets exactly one answer, in question order; answers
// the model omitted are filled in as not determinable. Output that cannot be
// read as the response contract yields a *models.ContractViolationError.
func ParseResponse(provider, raw string, req models.ProviderRequest) (models.ProviderResponse, error) {
	violation := func(reason string) error {
		return &models.ContractViolationError{Provider: provider, Reason: reason, Raw: truncateString(raw, 4000)}
	}

	body := extractJSONObject(raw)
	if body == "" {
		return models.ProviderResponse{}, violation("no JSON object in response")
	}

	var resp prompt.Response
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&resp); err != nil {
		return models.ProviderResponse{}, violation(fmt.Sprintf("decoding response: %v", err))
	}
	if strings.TrimSpace(resp.OverallAnalysis) == "" {
		return models.ProviderResponse{}, violation("overall_analysis is missing")
	}
	if len(req.Questions) > 0 && resp.Answers == nil {
		return models.ProviderResponse{}, violation("answers are missing")
	}

	byID := make(map[string]models.AssessmentQuestion, len(req.Questions))
	for _, q := range req.Questions {
		byID[q.ID] = q
	}

	var notes []string
	parsed := make(map[string]models.AnalysisAnswer, len(resp.Answers))
	for _, ra := range resp.Answers {
		q, ok := byID[ra.QuestionID]
		if !ok {
			notes = append(notes, fmt.Sprintf("ignored answer for unknown question %q", ra.QuestionID))
			continue
		}
		if _, dup := parsed[ra.QuestionID]; dup {
			notes = append(notes, fmt.Sprintf("%s: ignored duplicate answer", ra.QuestionID))
			continue
		}
		a, dropped, err := convertAnswer(q, ra)
		if err != nil {
			return models.ProviderResponse{}, violation(err.Error())
		}
		notes = append(notes, dropped...)
		parsed[ra.QuestionID] = a
	}

	answers := make([]models.AnalysisAnswer, 0, len(req.Questions))
	for _, q := range req.Questions {
		a, ok := parsed[q.ID]
		if !ok {
			a = models.AnalysisAnswer{QuestionID: q.ID}
			a.MarkNotDeterminable("the model did not answer this question")
			notes = append(notes, fmt.Sprintf("%s: no answer returned, marked not determinable", q.ID))
		}
		if req.NoUsableText && !a.NotDeterminable {
			a.MarkNotDeterminable("no document text was available")
		}
		answers = append(answers, a)
	}

	return models.ProviderResponse{
		Answers:         answers,
		OverallAnalysis: resp.OverallAnalysis,
		RiskFactors:     resp.RiskFactors,
		Recommendations: resp.Recommendations,
		Notes:           notes,
	}, nil
}

// convertAnswer decodes one model answer. The returned notes name the
// choices dropped for not being among the question's options.
func convertAnswer(q models.AssessmentQuestion, ra prompt.ResponseAnswer) (models.AnalysisAnswer, []string, error) {
	a := models.AnalysisAnswer{QuestionID: q.ID}
	if ra.Confidence != nil {
		a.Confidence = clamp01(*ra.Confidence)
	}
	for _, ev := range ra.Evidence {
		a.Evidence = append(a.Evidence, models.EvidenceExcerpt{Quote: ev.Quote, SourceFileName: ev.SourceFile})
	}

	raw := bytes.TrimSpace(ra.Value)
	if ra.NotDeterminable || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		a.MarkNotDeterminable("")
		return a, nil, nil
	}
	if raw[0] == '{' {
		return a, nil, fmt.Errorf("%s: value must not be an object", q.ID)
	}

	var v models.AnswerValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return a, nil, fmt.Errorf("%s: unreadable value: %v", q.ID, err)
	}
	if !v.IsBool() && !v.IsChoices() && strings.TrimSpace(v.Text) == models.NotDeterminable {
		a.MarkNotDeterminable("")
		return a, nil, nil
	}
	a.Value = coerce(q.Type, v)

	var notes []string
	if q.Type == models.QuestionMultipleChoice && a.Value.IsChoices() {
		a.Value, notes = restrictToOptions(q, a.Value)
	}
	return a, notes, nil
}

// restrictToOptions keeps the choices that name one of q's options,
// matched case-insensitively and spelled as declared. Repeats collapse.
func restrictToOptions(q models.AssessmentQuestion, v models.AnswerValue) (models.AnswerValue, []string) {
	declared := make(map[string]string, len(q.Options))
	for _, o := range q.Options {
		declared[strings.ToLower(strings.TrimSpace(o))] = o
	}

	var notes []string
	kept := []string{}
	seen := make(map[string]bool, len(v.Choices))
	for _, c := range v.Choices {
		o, ok := declared[strings.ToLower(strings.TrimSpace(c))]
		if !ok {
			notes = append(notes, fmt.Sprintf("%s: dropped choice %q not among the options", q.ID, c))
			continue
		}
		if seen[o] {
			continue
		}
		seen[o] = true
		kept = append(kept, o)
	}
	return models.AnswerValue{Choices: kept}, notes
}

// coerce reshapes a decoded value to the question type where the intent is
// unambiguous. Values that cannot be reshaped are kept as they are.
func coerce(t models.QuestionType, v models.AnswerValue) models.AnswerValue {
	switch t {
	case models.QuestionBoolean:
		if v.IsBool() || v.IsChoices() {
			return v
		}
		switch leadingWord(v.Text) {
		case "yes", "true":
			return models.BoolValue(true)
		case "no", "false":
			return models.BoolValue(false)
		}
		return v
	case models.QuestionMultipleChoice:
		if v.IsChoices() {
			return v
		}
		if v.IsBool() {
			return models.ChoicesValue(v.String())
		}
		if s := strings.TrimSpace(v.Text); s != "" {
			return models.ChoicesValue(s)
		}
		return models.AnswerValue{Choices: []string{}}
	default:
		if v.IsBool() || v.IsChoices() {
			return models.TextValue(v.String())
		}
		return v
	}
}

func leadingWord(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';' || r == ':' || r == '!' || r == '\n' || r == '\t'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// extractJSONObject strips markdown fences and surrounding chatter from a
// model reply and returns the outermost JSON object.
func extractJSONObject(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
