package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kiranshivaraju/riskdesk/internal/config"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// Provider implements models.AIProvider using the OpenAI Chat Completions API.
type Provider struct {
	cfg config.OpenAIConfig
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string  { return "openai" }
func (p *Provider) Model() string { return p.cfg.Model }

// HasCredentials reports whether either the caller or the server supplies a key.
func (p *Provider) HasCredentials(callerKey string) bool {
	return callerKey != "" || p.cfg.APIKey != ""
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	key := req.CallerKey
	if key == "" {
		key = p.cfg.APIKey
	}
	if key == "" {
		return "", &models.UnavailableError{Provider: p.Name(), Reason: "no API key"}
	}
	clientCfg := goopenai.DefaultConfig(key)
	if p.cfg.BaseURL != "" {
		clientCfg.BaseURL = p.cfg.BaseURL
	}
	return ChatCompletion(ctx, goopenai.NewClientWithConfig(clientCfg), p.Name(), p.cfg.Model, req)
}

// ChatCompletion sends req as a system and user message pair to any
// OpenAI-compatible endpoint and returns the first choice. provider names
// the caller in returned errors.
func ChatCompletion(ctx context.Context, client *goopenai.Client, provider, model string, req models.CompletionRequest) (string, error) {
	chat := goopenai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	}
	if req.JSONOutput {
		chat.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// Reasoning models (o1/o3/o4/gpt-5*) reject MaxTokens.
	if isReasoningModel(model) {
		chat.MaxCompletionTokens = req.MaxTokens
	} else {
		chat.MaxTokens = req.MaxTokens
	}

	resp, err := client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
			return "", &models.UnavailableError{Provider: provider, Reason: "API key rejected: " + apiErr.Message}
		}
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", &models.ContractViolationError{Provider: provider, Reason: "response has no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

var _ models.AIProvider = (*Provider)(nil)
