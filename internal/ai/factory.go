package ai

import (
	"fmt"

	"github.com/kiranshivaraju/riskdesk/internal/ai/anthropic"
	"github.com/kiranshivaraju/riskdesk/internal/ai/ollama"
	"github.com/kiranshivaraju/riskdesk/internal/ai/openai"
	"github.com/kiranshivaraju/riskdesk/internal/ai/vertex"
	"github.com/kiranshivaraju/riskdesk/internal/ai/vllm"
	"github.com/kiranshivaraju/riskdesk/internal/config"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup. Construction never contacts the provider.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "anthropic":
		return anthropic.NewProvider(cfg.Anthropic), nil
	case "vertex":
		return vertex.NewProvider(cfg.Vertex), nil
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of openai, anthropic, vertex, ollama, vllm", cfg.Provider)
	}
}

// SupportedProviders lists the names NewProvider accepts.
func SupportedProviders() []string {
	return []string{"openai", "anthropic", "vertex", "ollama", "vllm"}
}
