package models

// QuestionType controls how an answer value is interpreted.
type QuestionType string

const (
	QuestionBoolean        QuestionType = "boolean"
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionFreeText       QuestionType = "free-text"
)

// Category groups questions for scoring. Scoring rules are keyed by category.
type Category string

const (
	CategoryCyber       Category = "cyber"
	CategoryPrivacy     Category = "privacy"
	CategoryOperational Category = "operational"
	CategoryFinancial   Category = "financial"
	CategoryCompliance  Category = "compliance"
	CategoryGeneral     Category = "general"
)

// Categories lists every known category.
var Categories = []Category{
	CategoryCyber,
	CategoryPrivacy,
	CategoryOperational,
	CategoryFinancial,
	CategoryCompliance,
	CategoryGeneral,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// AssessmentQuestion is one question the model must answer from the documents.
type AssessmentQuestion struct {
	ID               string       `json:"id"`
	Text             string       `json:"text"`
	Type             QuestionType `json:"type"`
	Options          []string     `json:"options,omitempty"`
	Weight           float64      `json:"weight,omitempty"`
	Category         Category     `json:"category,omitempty"`
	RequiresEvidence *bool        `json:"requires_evidence,omitempty"`
}

// MaxQuestionWeight bounds AssessmentQuestion.Weight.
const MaxQuestionWeight = 100.0

// EffectiveWeight returns the question weight, defaulting to 1.
func (q AssessmentQuestion) EffectiveWeight() float64 {
	if q.Weight <= 0 {
		return 1
	}
	return q.Weight
}

// EffectiveCategory returns the question category, defaulting to general.
func (q AssessmentQuestion) EffectiveCategory() Category {
	if q.Category.Valid() {
		return q.Category
	}
	return CategoryGeneral
}

// NeedsEvidence reports whether an answer must be backed by a verified excerpt.
func (q AssessmentQuestion) NeedsEvidence() bool {
	return q.RequiresEvidence == nil || *q.RequiresEvidence
}
