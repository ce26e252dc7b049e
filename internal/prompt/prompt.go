// Package prompt builds the analysis request sent to the AI provider and
// defines the JSON contract the provider must answer with.
package prompt

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

const defaultMaxChars = 400_000

// Builder assembles provider requests. It is stateless apart from its budget.
type Builder struct {
	maxChars int
}

// NewBuilder creates a Builder that sends at most maxChars characters of
// document text. A non-positive value uses the default budget.
func NewBuilder(maxChars int) *Builder {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	return &Builder{maxChars: maxChars}
}

// Build combines successful extractions and questions into a single request.
// Primary-method documents are placed before fallback documents, whatever
// their confidence. When no document produced text the request still goes
// out and tells the model to answer every question as not determinable.
func (b *Builder) Build(extractions []models.ExtractionResult, questions []models.AssessmentQuestion, assessmentType string) models.ProviderRequest {
	req := models.ProviderRequest{
		SystemPrompt:   SystemPrompt,
		Questions:      questions,
		AssessmentType: assessmentType,
	}

	usable := orderForPrompt(extractions)
	req.NoUsableText = len(usable) == 0

	var u strings.Builder
	fmt.Fprintf(&u, "ASSESSMENT TYPE: %s\n\n", orDefault(assessmentType, "general vendor risk"))

	if req.NoUsableText {
		u.WriteString("DOCUMENTS: none of the uploaded documents contained readable text.\n")
		fmt.Fprintf(&u, "Answer every question with value %q, not_determinable true, confidence 0 and an empty evidence array.\n\n", models.NotDeterminable)
	} else {
		u.WriteString("DOCUMENTS:\n")
		remaining := b.maxChars
		for _, ex := range usable {
			if remaining <= 0 {
				req.Notes = append(req.Notes, fmt.Sprintf("%s was not sent to the model: document budget exhausted", ex.Document.FileName))
				continue
			}
			text := ex.Text
			if n := utf8.RuneCountInString(text); n > remaining {
				text = truncateRunes(text, remaining)
				req.Notes = append(req.Notes, fmt.Sprintf("%s was truncated to %d of %d characters", ex.Document.FileName, remaining, n))
			}
			remaining -= utf8.RuneCountInString(text)

			fmt.Fprintf(&u, "=== BEGIN DOCUMENT file=%q source=%q extraction=%s ===\n", ex.Document.FileName, ex.Label, ex.Method)
			u.WriteString(text)
			if !strings.HasSuffix(text, "\n") {
				u.WriteString("\n")
			}
			fmt.Fprintf(&u, "=== END DOCUMENT file=%q ===\n\n", ex.Document.FileName)
			req.DocumentsIncluded = append(req.DocumentsIncluded, ex.Document.FileName)
		}
	}

	u.WriteString("QUESTIONS:\n")
	for _, q := range questions {
		writeQuestion(&u, q)
	}
	u.WriteString("\nRespond with the JSON object only.")

	req.UserPrompt = u.String()
	return req
}

// orderForPrompt keeps successful extractions, primary before fallback,
// otherwise in upload order.
func orderForPrompt(extractions []models.ExtractionResult) []models.ExtractionResult {
	var usable []models.ExtractionResult
	for _, ex := range extractions {
		if ex.Success && strings.TrimSpace(ex.Text) != "" {
			usable = append(usable, ex)
		}
	}
	sort.SliceStable(usable, func(i, j int) bool {
		return methodRank(usable[i].Method) < methodRank(usable[j].Method)
	})
	return usable
}

func methodRank(m models.ExtractionMethod) int {
	if m == models.MethodPrimary {
		return 0
	}
	return 1
}

func writeQuestion(b *strings.Builder, q models.AssessmentQuestion) {
	fmt.Fprintf(b, "- id=%q type=%s", q.ID, q.Type)
	if q.NeedsEvidence() {
		b.WriteString(" evidence=required")
	}
	fmt.Fprintf(b, "\n  %s\n", q.Text)
	if len(q.Options) > 0 {
		fmt.Fprintf(b, "  options: %s\n", strings.Join(quoteAll(q.Options), ", "))
	}
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
