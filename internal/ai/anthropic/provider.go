package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kiranshivaraju/riskdesk/internal/config"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// Provider implements models.AIProvider using the Anthropic Messages API.
type Provider struct {
	cfg config.AnthropicConfig
}

func NewProvider(cfg config.AnthropicConfig) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string  { return "anthropic" }
func (p *Provider) Model() string { return p.cfg.Model }

func (p *Provider) HasCredentials(callerKey string) bool {
	return callerKey != "" || p.cfg.APIKey != ""
}

// client builds a Messages client for key. Retries are left to the caller's
// deadline, so the SDK does not retry on its own.
func (p *Provider) client(key string) anthropic.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if p.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(p.cfg.BaseURL, "/")+"/"))
	}
	return anthropic.NewClient(opts...)
}

// Complete sends one user turn. The prompt already asks for JSON when
// req.JSONOutput is set; Anthropic has no separate response format switch.
func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	key := req.CallerKey
	if key == "" {
		key = p.cfg.APIKey
	}
	if key == "" {
		return "", &models.UnavailableError{Provider: p.Name(), Reason: "no API key"}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.cfg.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		Temperature: anthropic.Float(0),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	client := p.client(key)
	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
				return "", &models.UnavailableError{Provider: p.Name(), Reason: "API key rejected: " + apiErr.Error()}
			}
			return "", fmt.Errorf("anthropic error status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("call anthropic: %w", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", &models.ContractViolationError{Provider: p.Name(), Reason: "response has no text content", Raw: msg.RawJSON()}
	}
	return out.String(), nil
}

var _ models.AIProvider = (*Provider)(nil)
