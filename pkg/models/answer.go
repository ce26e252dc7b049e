package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NotDeterminable is the text value of an answer the documents cannot support.
const NotDeterminable = "Not determinable from provided documents"

// EvidenceExcerpt is a verbatim quote supporting an answer.
type EvidenceExcerpt struct {
	Quote          string `json:"quote"`
	SourceFileName string `json:"source_file_name"`
	SourceLabel    string `json:"source_label,omitempty"`
}

// AnswerValue holds exactly one of a boolean, a free-text string or a list of
// selected options. It marshals to the bare JSON value.
type AnswerValue struct {
	Bool    *bool
	Text    string
	Choices []string
}

func BoolValue(b bool) AnswerValue         { return AnswerValue{Bool: &b} }
func TextValue(s string) AnswerValue       { return AnswerValue{Text: s} }
func ChoicesValue(c ...string) AnswerValue { return AnswerValue{Choices: c} }
func (v AnswerValue) IsBool() bool         { return v.Bool != nil }
func (v AnswerValue) IsChoices() bool      { return v.Choices != nil }
func (v AnswerValue) IsZero() bool         { return v.Bool == nil && v.Choices == nil && v.Text == "" }

// String renders the value for prompts and logs.
func (v AnswerValue) String() string {
	switch {
	case v.Bool != nil:
		if *v.Bool {
			return "Yes"
		}
		return "No"
	case v.Choices != nil:
		return strings.Join(v.Choices, ", ")
	default:
		return v.Text
	}
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Bool != nil:
		return json.Marshal(*v.Bool)
	case v.Choices != nil:
		return json.Marshal(v.Choices)
	default:
		return json.Marshal(v.Text)
	}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	*v = AnswerValue{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		v.Bool = &b
	case '"':
		return json.Unmarshal(data, &v.Text)
	case '[':
		var raw []any
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v.Choices = make([]string, 0, len(raw))
		for _, item := range raw {
			v.Choices = append(v.Choices, fmt.Sprint(item))
		}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported answer value %s", string(data))
		}
		v.Text = n.String()
	}
	return nil
}

// AnalysisAnswer is the model's answer to one question after verification.
type AnalysisAnswer struct {
	QuestionID      string            `json:"question_id"`
	Value           AnswerValue       `json:"value"`
	Confidence      float64           `json:"confidence"`
	Evidence        []EvidenceExcerpt `json:"evidence"`
	NotDeterminable bool              `json:"not_determinable"`
	Note            string            `json:"note,omitempty"`
}

// MarkNotDeterminable downgrades a to an unsupported answer.
func (a *AnalysisAnswer) MarkNotDeterminable(note string) {
	a.Value = TextValue(NotDeterminable)
	a.Confidence = 0
	a.Evidence = []EvidenceExcerpt{}
	a.NotDeterminable = true
	if note != "" {
		a.Note = note
	}
}
