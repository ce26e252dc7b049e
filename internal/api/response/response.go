package response

import (
	"encoding/json"
	"net/http"
	"time"
)

type envelope struct {
	Data any `json:"data"`
}

type collectionEnvelope struct {
	Data any            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    any    `json:"details,omitempty"`
	Timestamp  string `json:"timestamp"`
}

type PaginationMeta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

func JSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

func Created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, envelope{Data: data})
}

func Collection(w http.ResponseWriter, data any, meta PaginationMeta) {
	writeJSON(w, http.StatusOK, collectionEnvelope{Data: data, Meta: meta})
}

func Error(w http.ResponseWriter, status int, code, message string, details any) {
	ErrorDetail(w, status, code, message, "", details)
}

// ErrorWithSuggestion writes an error envelope that tells the caller how to
// fix the request.
func ErrorWithSuggestion(w http.ResponseWriter, status int, code, message, suggestion string) {
	ErrorDetail(w, status, code, message, suggestion, nil)
}

// ErrorDetail writes the full error envelope. Empty suggestion and nil
// details are omitted.
func ErrorDetail(w http.ResponseWriter, status int, code, message, suggestion string, details any) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Details:    details,
		Timestamp:  now().Format(time.RFC3339),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
