package mock

import (
	"context"
	"sync/atomic"

	"github.com/kiranshivaraju/riskdesk/internal/ai"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// DefaultResponse answers the built-in sample questions with quotes taken
// verbatim from the sample policy.
const DefaultResponse = `{
  "answers": [
    {
      "question_id": "encryption_at_rest",
      "value": true,
      "confidence": 0.92,
      "not_determinable": false,
      "evidence": [{"quote": "All customer data is encrypted at rest using AES-256", "source_file": "sample-security-policy.txt"}]
    },
    {
      "question_id": "mfa",
      "value": true,
      "confidence": 0.9,
      "not_determinable": false,
      "evidence": [{"quote": "Multi-factor authentication is required for all administrative and remote access.", "source_file": "sample-security-policy.txt"}]
    },
    {
      "question_id": "breach_notification",
      "value": "Within 72 hours of a confirmed breach",
      "confidence": 0.85,
      "not_determinable": false,
      "evidence": [{"quote": "Customers are notified of confirmed breaches within 72 hours.", "source_file": "sample-security-policy.txt"}]
    }
  ],
  "overall_analysis": "The vendor documents a mature security program with encryption, MFA and a defined breach notification window.",
  "risk_factors": ["Penetration testing is only performed annually"],
  "recommendations": ["Request the most recent penetration test summary"]
}`

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_              string
	Model_             string
	CompleteFunc       func(ctx context.Context, req models.CompletionRequest) (string, error)
	HasCredentialsFunc func(callerKey string) bool

	calls atomic.Int64
}

func (m *MockProvider) Name() string  { return m.Name_ }
func (m *MockProvider) Model() string { return m.Model_ }

func (m *MockProvider) HasCredentials(callerKey string) bool {
	if m.HasCredentialsFunc != nil {
		return m.HasCredentialsFunc(callerKey)
	}
	return true
}

func (m *MockProvider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	m.calls.Add(1)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// Calls returns how many times Complete has been invoked.
func (m *MockProvider) Calls() int { return int(m.calls.Load()) }

// NewMockProvider returns a MockProvider that always replies with DefaultResponse.
func NewMockProvider() *MockProvider {
	return NewStaticProvider(DefaultResponse)
}

// NewStaticProvider returns a MockProvider that always replies with raw.
func NewStaticProvider(raw string) *MockProvider {
	return &MockProvider{
		Name_:  "mock",
		Model_: "mock-v1",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return raw, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_:  "mock-failing",
		Model_: "mock-v1",
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_:  "mock-timeout",
		Model_: "mock-v1",
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
	}
}

// NewUnconfiguredProvider returns a MockProvider with no server credentials.
// Only a non-empty caller key makes it usable.
func NewUnconfiguredProvider() *MockProvider {
	p := NewMockProvider()
	p.Name_ = "mock-unconfigured"
	p.HasCredentialsFunc = func(callerKey string) bool { return callerKey != "" }
	return p
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
