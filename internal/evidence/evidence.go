// Package evidence enforces that every quote kept in a report appears
// verbatim in the text extracted for the same run.
package evidence

import (
	"fmt"
	"strings"

	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// Verify checks every excerpt against the extracted texts. An excerpt is
// kept when its quote is a literal substring of the document it names, or
// of any other document, in which case it is re-attributed to the document
// that contains it. Answers to evidence-required questions that are left
// without excerpts are downgraded to not determinable. Returned notes
// describe every change.
func Verify(answers []models.AnalysisAnswer, extractions []models.ExtractionResult, questions []models.AssessmentQuestion) ([]models.AnalysisAnswer, []string) {
	docs := make([]models.ExtractionResult, 0, len(extractions))
	for _, ex := range extractions {
		if ex.Success && ex.Text != "" {
			docs = append(docs, ex)
		}
	}

	byID := make(map[string]models.AssessmentQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var notes []string
	out := make([]models.AnalysisAnswer, 0, len(answers))
	for _, a := range answers {
		kept := make([]models.EvidenceExcerpt, 0, len(a.Evidence))
		dropped := 0
		for _, ex := range a.Evidence {
			verified, ok := locate(ex, docs)
			if !ok {
				dropped++
				continue
			}
			if verified.SourceFileName != ex.SourceFileName && ex.SourceFileName != "" {
				notes = append(notes, fmt.Sprintf("%s: quote attributed to %s was found in %s",
					a.QuestionID, ex.SourceFileName, verified.SourceFileName))
			}
			kept = append(kept, verified)
		}
		if dropped > 0 {
			notes = append(notes, fmt.Sprintf("%s: dropped %d quote(s) not found verbatim in any document", a.QuestionID, dropped))
		}
		a.Evidence = kept

		q, known := byID[a.QuestionID]
		needsEvidence := !known || q.NeedsEvidence()
		if needsEvidence && len(kept) == 0 && !a.NotDeterminable {
			a.MarkNotDeterminable("no verifiable evidence in the provided documents")
			notes = append(notes, fmt.Sprintf("%s: downgraded to not determinable, no verifiable evidence", a.QuestionID))
		}
		out = append(out, a)
	}
	return out, notes
}

// locate finds the document containing the quote, preferring the one the
// model named. Quotes are compared exactly after trimming surrounding
// whitespace and quote marks the model may have added.
func locate(ex models.EvidenceExcerpt, docs []models.ExtractionResult) (models.EvidenceExcerpt, bool) {
	quote := strings.Trim(strings.TrimSpace(ex.Quote), "\"“”")
	quote = strings.TrimSpace(quote)
	if quote == "" {
		return models.EvidenceExcerpt{}, false
	}

	for _, d := range docs {
		if d.Document.FileName == ex.SourceFileName && strings.Contains(d.Text, quote) {
			return excerptFrom(quote, d), true
		}
	}
	for _, d := range docs {
		if strings.Contains(d.Text, quote) {
			return excerptFrom(quote, d), true
		}
	}
	return models.EvidenceExcerpt{}, false
}

func excerptFrom(quote string, d models.ExtractionResult) models.EvidenceExcerpt {
	return models.EvidenceExcerpt{
		Quote:          quote,
		SourceFileName: d.Document.FileName,
		SourceLabel:    d.Label,
	}
}
