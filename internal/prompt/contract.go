package prompt

import (
	"encoding/json"

	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// SystemPrompt carries the rules every analysis runs under.
const SystemPrompt = `You are a vendor risk analyst at a regulated financial institution.
You review vendor documents and answer assessment questions about them.

Rules:
1. Answer ONLY from the text between BEGIN DOCUMENT and END DOCUMENT markers. Do not use outside knowledge about the vendor.
2. If the documents do not answer a question, set "not_determinable" to true, use the value "` + models.NotDeterminable + `", confidence 0 and an empty evidence array. Say so plainly; never guess.
3. Every evidence quote must be copied VERBATIM from one document: same words, same punctuation, no ellipses, no paraphrase. Keep quotes short (one or two sentences).
4. Set "source_file" to the file name of the document the quote was copied from.
5. Give a confidence between 0 and 1 for every answer.
6. Never invent controls, certifications, dates, percentages or other numbers that are not in the text.
7. Boolean questions take true or false. Multiple-choice questions take an array of the listed options that apply. Free-text questions take a short string.
8. Documents marked source="fourth-party: ..." describe the vendor's own suppliers. Attribute findings to them, not to the primary vendor.

Respond with a single JSON object matching this schema and nothing else:
` + ResponseSchema

// ResponseSchema is the output contract the gateway parser expects.
const ResponseSchema = `{
  "answers": [
    {
      "question_id": "string",
      "value": "boolean | string | array of strings",
      "confidence": 0.0,
      "not_determinable": false,
      "evidence": [
        {"quote": "verbatim text", "source_file": "file name"}
      ]
    }
  ],
  "overall_analysis": "string",
  "risk_factors": ["string"],
  "recommendations": ["string"]
}`

// Response mirrors ResponseSchema.
type Response struct {
	Answers         []ResponseAnswer `json:"answers"`
	OverallAnalysis string           `json:"overall_analysis"`
	RiskFactors     []string         `json:"risk_factors"`
	Recommendations []string         `json:"recommendations"`
}

// ResponseAnswer is one entry of Response.Answers. Value is kept raw so the
// parser can interpret it against the question type.
type ResponseAnswer struct {
	QuestionID      string             `json:"question_id"`
	Value           json.RawMessage    `json:"value"`
	Confidence      *float64           `json:"confidence"`
	NotDeterminable bool               `json:"not_determinable"`
	Evidence        []ResponseEvidence `json:"evidence"`
}

type ResponseEvidence struct {
	Quote      string `json:"quote"`
	SourceFile string `json:"source_file"`
}

// SamplePolicy is the plain-text security policy used to smoke test providers.
const SamplePolicy = `Northwind Payments Information Security Policy (v3.2)

1. Encryption. All customer data is encrypted at rest using AES-256 and in transit using TLS 1.2 or higher.
2. Access control. Multi-factor authentication is required for all administrative and remote access.
3. Testing. An independent firm performs penetration testing annually; critical findings are remediated within 30 days.
4. Incident response. The incident response plan is reviewed and tested every year. Customers are notified of confirmed breaches within 72 hours.
5. Business continuity. Backups are taken daily and restores are tested quarterly.
`

// SampleQuestions is the question set paired with SamplePolicy.
func SampleQuestions() []models.AssessmentQuestion {
	return []models.AssessmentQuestion{
		{ID: "encryption_at_rest", Text: "Is customer data encrypted at rest?", Type: models.QuestionBoolean, Weight: 1, Category: models.CategoryCyber},
		{ID: "mfa", Text: "Is multi-factor authentication enforced for administrative access?", Type: models.QuestionBoolean, Weight: 1, Category: models.CategoryCyber},
		{ID: "breach_notification", Text: "How quickly are customers notified of a breach?", Type: models.QuestionFreeText, Weight: 1, Category: models.CategoryCompliance},
	}
}

// SmokeTest returns a minimal request used to check that a provider answers
// in the expected shape.
func SmokeTest() models.ProviderRequest {
	doc := models.ExtractionResult{
		Document:   models.DocumentMeta{FileName: "sample-security-policy.txt", Role: models.RolePrimary},
		Label:      "primary vendor",
		Text:       SamplePolicy,
		Method:     models.MethodPrimary,
		Confidence: 1,
		Success:    true,
	}
	qs := SampleQuestions()[:1]
	return NewBuilder(0).Build([]models.ExtractionResult{doc}, qs, "provider smoke test")
}
