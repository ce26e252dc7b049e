// Package scoring turns verified answers into a risk score. The heuristic is
// deterministic: the same questions and answers always give the same score.
package scoring

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

const scoreRange = 100

// Engine applies a rule table to answer sets.
type Engine struct {
	rules Rules
}

// NewEngine creates an Engine. Categories missing from rules use the
// default rule for that category.
func NewEngine(rules Rules) *Engine {
	defaults := DefaultRules()
	merged := make(map[models.Category]CategoryRule, len(defaults.Categories))
	for cat, rule := range defaults.Categories {
		merged[cat] = rule
	}
	for cat, rule := range rules.Categories {
		merged[cat] = rule
	}
	rules.Categories = merged
	return &Engine{rules: rules}
}

// Score computes the risk score for answers. Zero answers yield the
// configured neutral score (50, medium by default).
func (e *Engine) Score(questions []models.AssessmentQuestion, answers []models.AnalysisAnswer) models.RiskScore {
	score, _ := e.Explain(questions, answers)
	return score
}

// Explain returns the score together with every non-zero adjustment that
// produced it, in answer order.
func (e *Engine) Explain(questions []models.AssessmentQuestion, answers []models.AnalysisAnswer) (models.RiskScore, []models.ScoreAdjustment) {
	if len(answers) == 0 {
		return models.RiskScore{Value: e.rules.EmptyScore, Level: models.LevelForScore(e.rules.EmptyScore)}, []models.ScoreAdjustment{}
	}

	byID := make(map[string]models.AssessmentQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	value := e.rules.Baseline
	adjustments := []models.ScoreAdjustment{}
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			q = models.AssessmentQuestion{ID: a.QuestionID}
		}
		cat := q.EffectiveCategory()
		base, reason := e.adjust(q, cat, a)
		if base == 0 {
			continue
		}
		delta := weightedDelta(base, q.EffectiveWeight())
		if delta == 0 {
			continue
		}
		value += delta
		adjustments = append(adjustments, models.ScoreAdjustment{
			QuestionID: a.QuestionID,
			Category:   cat,
			Reason:     reason,
			Delta:      delta,
		})
	}

	value = clamp(value, 0, 100)
	return models.RiskScore{Value: value, Level: models.LevelForScore(value)}, adjustments
}

// adjust returns the unweighted score change for one answer.
func (e *Engine) adjust(q models.AssessmentQuestion, cat models.Category, a models.AnalysisAnswer) (int, string) {
	rule := e.rules.Categories[cat]

	if a.NotDeterminable {
		return -e.rules.UndeterminedPenalty, "not determinable from documents"
	}

	switch {
	case a.Value.IsBool():
		if !*a.Value.Bool {
			return -rule.NegativePenalty, "control absent"
		}
		return 0, ""

	case a.Value.IsChoices() || q.Type == models.QuestionMultipleChoice:
		n := len(a.Value.Choices)
		if !a.Value.IsChoices() && strings.TrimSpace(a.Value.Text) != "" {
			n = 1
		}
		if rule.MinSelections > 0 && n < rule.MinSelections {
			return -rule.SparsePenalty, fmt.Sprintf("%d selections, fewer than %d", n, rule.MinSelections)
		}
		if rule.RichSelections > 0 && n >= rule.RichSelections {
			return rule.RichBonus, fmt.Sprintf("%d selections, at least %d", n, rule.RichSelections)
		}
		return 0, ""

	default:
		text := strings.ToLower(strings.TrimSpace(a.Value.Text))
		if text == "" {
			return 0, ""
		}
		if word := firstWord(text); containsString(e.rules.NegativeLeadingWords, word) {
			return -rule.NegativePenalty, fmt.Sprintf("answer starts with %q", word)
		}
		for _, kw := range e.rules.StrongControlKeywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				return rule.PositiveBonus, fmt.Sprintf("strong control %q", kw)
			}
		}
		return 0, ""
	}
}

// weightedDelta scales base by weight. The result never moves the score by
// more than its full range, so oversized weights saturate instead of
// overflowing the integer conversion.
func weightedDelta(base int, weight float64) int {
	d := math.Round(float64(base) * weight)
	switch {
	case math.IsNaN(d):
		return 0
	case d > scoreRange:
		return scoreRange
	case d < -scoreRange:
		return -scoreRange
	}
	return int(d)
}

func firstWord(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
