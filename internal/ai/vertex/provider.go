// Package vertex implements models.AIProvider on Gemini models served by
// Google Cloud Vertex AI.
package vertex

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/vertexai/genai"

	"github.com/kiranshivaraju/riskdesk/internal/config"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

// Provider authenticates with application default credentials. The client
// is created on first use so that startup does not depend on GCP.
type Provider struct {
	cfg config.VertexConfig

	mu     sync.Mutex
	client *genai.Client
}

func NewProvider(cfg config.VertexConfig) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string  { return "vertex" }
func (p *Provider) Model() string { return p.cfg.Model }

// HasCredentials ignores callerKey. Vertex uses the server's service
// account, so only a project is required.
func (p *Provider) HasCredentials(_ string) bool {
	return p.cfg.ProjectID != "" && p.cfg.Location != ""
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return "", &models.UnavailableError{Provider: p.Name(), Reason: err.Error()}
	}

	model := client.GenerativeModel(p.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(req.SystemPrompt)},
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if req.MaxTokens > 0 {
		model.GenerationConfig.MaxOutputTokens = genai.Ptr(int32(req.MaxTokens))
	}
	if req.JSONOutput {
		model.GenerationConfig.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.UserPrompt))
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", &models.ContractViolationError{Provider: p.Name(), Reason: "response has no text candidates"}
	}
	return text, nil
}

// Close releases the underlying client if one was created.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

func (p *Provider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	if p.cfg.ProjectID == "" || p.cfg.Location == "" {
		return nil, fmt.Errorf("VERTEX_PROJECT_ID and VERTEX_LOCATION are required")
	}
	client, err := genai.NewClient(ctx, p.cfg.ProjectID, p.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	p.client = client
	return client, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

var _ models.AIProvider = (*Provider)(nil)
