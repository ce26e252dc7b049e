// Package models contains shared data models used across the riskdesk codebase.
package models

import "context"

// AIProvider is the capability every generative-AI integration implements.
// Handlers and services depend on this interface, never on a concrete provider.
type AIProvider interface {
	// Name returns the provider identifier (e.g., "openai", "vertex").
	Name() string
	// Model returns the model the provider sends requests to.
	Model() string
	// HasCredentials reports whether a request could be sent with the
	// caller-supplied key or, when it is empty, the server default.
	HasCredentials(callerKey string) bool
	// Complete sends one prompt and returns the raw model output.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is a single prompt sent to a provider.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	// CallerKey overrides the server default credentials when non-empty.
	CallerKey string
	MaxTokens int
	// JSONOutput asks the provider to constrain output to a JSON object
	// where it supports it.
	JSONOutput bool
}

// ProviderRequest is the fully built analysis prompt plus what the response
// parser needs to interpret the answer.
type ProviderRequest struct {
	SystemPrompt      string
	UserPrompt        string
	Questions         []AssessmentQuestion
	AssessmentType    string
	DocumentsIncluded []string
	// NoUsableText is set when no document produced text; the model is
	// instructed to answer every question as not determinable.
	NoUsableText bool
	CallerKey    string
	// Notes records documents dropped or truncated to fit the prompt budget.
	Notes []string
}

// ProviderResponse is the parsed model output before evidence verification.
type ProviderResponse struct {
	Answers         []AnalysisAnswer
	OverallAnalysis string
	RiskFactors     []string
	Recommendations []string
	Provider        string
	Model           string
	Notes           []string
}
