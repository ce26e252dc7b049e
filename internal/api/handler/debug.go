package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kiranshivaraju/riskdesk/internal/api/response"
	"github.com/kiranshivaraju/riskdesk/internal/config"
	"github.com/kiranshivaraju/riskdesk/internal/extract"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// ProviderTester runs the provider smoke test.
type ProviderTester interface {
	Provider() models.AIProvider
	TestProvider(ctx context.Context, callerKey string) bool
}

type providerStatus struct {
	Name             string `json:"name"`
	Model            string `json:"model"`
	Configured       bool   `json:"configured"`
	Selected         bool   `json:"selected"`
	AcceptsCallerKey bool   `json:"accepts_caller_key"`
}

// NewProvidersHandler returns an http.HandlerFunc for GET /api/v1/debug/providers.
// It reports which providers have server-side credentials. Key values are
// never included.
func NewProvidersHandler(cfg config.AIConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		statuses := []providerStatus{
			{Name: "openai", Model: cfg.OpenAI.Model, Configured: cfg.OpenAI.APIKey != "", AcceptsCallerKey: true},
			{Name: "anthropic", Model: cfg.Anthropic.Model, Configured: cfg.Anthropic.APIKey != "", AcceptsCallerKey: true},
			{Name: "vertex", Model: cfg.Vertex.Model, Configured: cfg.Vertex.ProjectID != "" && cfg.Vertex.Location != ""},
			{Name: "ollama", Model: cfg.Ollama.Model, Configured: cfg.Ollama.BaseURL != "" && cfg.Ollama.Model != ""},
			{Name: "vllm", Model: cfg.VLLM.Model, Configured: cfg.VLLM.BaseURL != "" && cfg.VLLM.Model != ""},
		}
		for i := range statuses {
			statuses[i].Selected = strings.EqualFold(statuses[i].Name, cfg.Provider)
		}

		response.JSON(w, map[string]any{
			"selected":  cfg.Provider,
			"providers": statuses,
		})
	}
}

// NewFormatsHandler returns an http.HandlerFunc for GET /api/v1/debug/formats.
func NewFormatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, map[string]any{
			"formats": extract.SupportedFormats(),
		})
	}
}

// NewProviderTestHandler returns an http.HandlerFunc for POST /api/v1/providers/test.
func NewProviderTestHandler(tester ProviderTester) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := tester.Provider()
		ok := tester.TestProvider(r.Context(), strings.TrimSpace(r.Header.Get(CallerKeyHeader)))
		response.JSON(w, map[string]any{
			"provider":   p.Name(),
			"model":      p.Model(),
			"ok":         ok,
			"checked_at": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
