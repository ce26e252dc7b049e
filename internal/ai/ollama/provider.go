package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kiranshivaraju/riskdesk/internal/config"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
	"github.com/ollama/ollama/api"
)

// Provider implements models.AIProvider using a local Ollama server.
type Provider struct {
	cfg    config.OllamaConfig
	client *api.Client
}

// NewProvider creates a Provider. An unparsable base URL leaves the
// provider without credentials rather than failing startup.
func NewProvider(cfg config.OllamaConfig) *Provider {
	p := &Provider{cfg: cfg}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return p
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return p
	}
	p.client = api.NewClient(u, &http.Client{})
	return p
}

func (p *Provider) Name() string  { return "ollama" }
func (p *Provider) Model() string { return p.cfg.Model }

// HasCredentials ignores callerKey; Ollama has no authentication.
func (p *Provider) HasCredentials(_ string) bool {
	return p.client != nil && p.cfg.Model != ""
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	if p.client == nil {
		return "", &models.UnavailableError{Provider: p.Name(), Reason: "no base URL configured"}
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model: p.cfg.Model,
		Messages: []api.Message{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": 0},
	}
	if req.MaxTokens > 0 {
		chatReq.Options["num_predict"] = req.MaxTokens
	}
	if req.JSONOutput {
		chatReq.Format = json.RawMessage(`"json"`)
	}

	var out strings.Builder
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
				return "", &models.UnavailableError{Provider: p.Name(), Reason: "request rejected: " + statusErr.Error()}
			}
			return "", fmt.Errorf("ollama chat API error: %w", err)
		}
		return "", fmt.Errorf("call ollama chat API: %w", err)
	}
	return out.String(), nil
}

var _ models.AIProvider = (*Provider)(nil)
