package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/kiranshivaraju/riskdesk/internal/cache"
	"github.com/kiranshivaraju/riskdesk/internal/prompt"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
)

const (
	defaultTimeout   = 120 * time.Second
	defaultMaxTokens = 4096
	defaultStatusTTL = 5 * time.Minute
)

// GatewayOptions tunes a Gateway. Zero values fall back to defaults.
type GatewayOptions struct {
	Timeout   time.Duration
	MaxTokens int
	StatusTTL time.Duration
}

// Gateway sends analysis prompts to the configured provider and turns the
// raw output into a ProviderResponse.
type Gateway struct {
	provider  models.AIProvider
	cache     cache.Cache
	timeout   time.Duration
	maxTokens int
	statusTTL time.Duration
}

// NewGateway creates a Gateway. cache may be nil, in which case provider
// smoke tests are never cached.
func NewGateway(provider models.AIProvider, c cache.Cache, opts GatewayOptions) *Gateway {
	g := &Gateway{
		provider:  provider,
		cache:     c,
		timeout:   opts.Timeout,
		maxTokens: opts.MaxTokens,
		statusTTL: opts.StatusTTL,
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	if g.statusTTL <= 0 {
		g.statusTTL = defaultStatusTTL
	}
	return g
}

// Provider returns the provider behind the gateway.
func (g *Gateway) Provider() models.AIProvider { return g.provider }

// Ready reports whether a request could be sent with callerKey. No network
// call is made.
func (g *Gateway) Ready(callerKey string) error {
	if g.provider.HasCredentials(callerKey) {
		return nil
	}
	return &models.UnavailableError{
		Provider: g.provider.Name(),
		Reason:   "no credentials configured; supply an API key with the request or configure one on the server",
	}
}

// Analyze sends req to the provider and parses the reply.
func (g *Gateway) Analyze(ctx context.Context, req models.ProviderRequest) (models.ProviderResponse, error) {
	if err := g.Ready(req.CallerKey); err != nil {
		return models.ProviderResponse{}, err
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	raw, err := g.provider.Complete(analyzeCtx, models.CompletionRequest{
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		CallerKey:    req.CallerKey,
		MaxTokens:    g.maxTokens,
		JSONOutput:   true,
	})
	if err != nil {
		return models.ProviderResponse{}, g.classify(analyzeCtx, err)
	}

	resp, err := ParseResponse(g.provider.Name(), raw, req)
	if err != nil {
		slog.Warn("provider response rejected",
			"provider", g.provider.Name(),
			"model", g.provider.Model(),
			"error", err,
		)
		return models.ProviderResponse{}, err
	}
	resp.Provider = g.provider.Name()
	resp.Model = g.provider.Model()

	slog.Info("provider analysis completed",
		"provider", resp.Provider,
		"model", resp.Model,
		"answers", len(resp.Answers),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// TestProvider runs the built-in smoke test against the provider and
// reports whether it answered in the expected shape. Results are cached per
// credential for the configured status TTL.
func (g *Gateway) TestProvider(ctx context.Context, callerKey string) bool {
	key := cache.ProviderStatusKey(g.provider.Name(), keyDigest(callerKey))
	if g.cache != nil {
		if val, found, err := g.cache.Get(ctx, key); err == nil && found {
			return string(val) == "ok"
		}
	}

	req := prompt.SmokeTest()
	req.CallerKey = callerKey
	_, err := g.Analyze(ctx, req)
	ok := err == nil
	if !ok {
		slog.Warn("provider smoke test failed", "provider", g.provider.Name(), "error", err)
	}

	if g.cache != nil {
		status := "failed"
		if ok {
			status = "ok"
		}
		if err := g.cache.Set(ctx, key, []byte(status), g.statusTTL); err != nil {
			slog.Warn("caching provider status failed", "error", err)
		}
	}
	return ok
}

func (g *Gateway) classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrInferenceTimeout),
		errors.Is(err, ErrProviderUnavailable),
		errors.Is(err, ErrProviderContractViolation):
		return err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s did not answer within %s", ErrInferenceTimeout, g.provider.Name(), g.timeout)
	default:
		return fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, g.provider.Name(), err)
	}
}

func keyDigest(key string) string {
	if key == "" {
		return "default"
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// truncateString truncates s to maxBytes without splitting UTF-8 runes.
func truncateString(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
