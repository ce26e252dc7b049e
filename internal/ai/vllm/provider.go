package vllm

import (
	"context"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kiranshivaraju/riskdesk/internal/ai/openai"
	"github.com/kiranshivaraju/riskdesk/internal/config"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// Provider implements models.AIProvider against a self-hosted vLLM server
// through its OpenAI-compatible API.
type Provider struct {
	cfg config.VLLMConfig
}

func NewProvider(cfg config.VLLMConfig) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string  { return "vllm" }
func (p *Provider) Model() string { return p.cfg.Model }

// HasCredentials ignores callerKey; a self-hosted server needs only an
// address and a served model.
func (p *Provider) HasCredentials(_ string) bool {
	return p.cfg.BaseURL != "" && p.cfg.Model != ""
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	clientCfg := goopenai.DefaultConfig(p.cfg.APIKey)
	clientCfg.BaseURL = p.cfg.BaseURL
	return openai.ChatCompletion(ctx, goopenai.NewClientWithConfig(clientCfg), p.Name(), p.cfg.Model, req)
}

var _ models.AIProvider = (*Provider)(nil)
