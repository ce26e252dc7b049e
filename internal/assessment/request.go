package assessment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// AnalyzeRequest is one submission of documents and questions.
type AnalyzeRequest struct {
	Documents      []models.UploadedDocument
	Questions      []models.AssessmentQuestion
	AssessmentType string
	// AssessmentID links the report to an existing assessment owned by the caller.
	AssessmentID *uuid.UUID
	// UserID is the identity the client claims to act for. When set it must
	// match the authenticated caller.
	UserID string
	// CallerKey is a bring-your-own provider key. It is never persisted.
	CallerKey      string
	StoreDocuments bool
}

func (r AnalyzeRequest) validate(maxFiles int) error {
	if len(r.Documents) == 0 {
		return invalid("at least one document is required")
	}
	if maxFiles > 0 && len(r.Documents) > maxFiles {
		return invalid("too many documents: %d (max %d)", len(r.Documents), maxFiles)
	}
	for _, d := range r.Documents {
		if strings.TrimSpace(d.FileName) == "" {
			return invalid("every document needs a file name")
		}
		if !d.Role.Valid() {
			return invalid("%s: role must be %q or %q", d.FileName, models.RolePrimary, models.RoleFourthParty)
		}
	}

	if len(r.Questions) == 0 {
		return invalid("at least one question is required")
	}
	seen := make(map[string]bool, len(r.Questions))
	for _, q := range r.Questions {
		if strings.TrimSpace(q.ID) == "" {
			return invalid("every question needs an id")
		}
		if seen[q.ID] {
			return invalid("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true

		switch q.Type {
		case models.QuestionBoolean, models.QuestionFreeText:
		case models.QuestionMultipleChoice:
			if len(q.Options) == 0 {
				return invalid("question %q: multiple-choice questions need options", q.ID)
			}
		default:
			return invalid("question %q: unknown type %q", q.ID, q.Type)
		}
		if q.Weight < 0 {
			return invalid("question %q: weight must be positive", q.ID)
		}
		if !(q.Weight <= models.MaxQuestionWeight) {
			return invalid("question %q: weight must not exceed %g", q.ID, models.MaxQuestionWeight)
		}
		if q.Category != "" && !q.Category.Valid() {
			return invalid("question %q: unknown category %q", q.ID, q.Category)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrInvalidRequest, fmt.Sprintf(format, args...))
}
