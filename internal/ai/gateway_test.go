package ai_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kiranshivaraju/riskdesk/internal/ai"
	"github.com/kiranshivaraju/riskdesk/internal/ai/mock"
	"github.com/kiranshivaraju/riskdesk/internal/prompt"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (c *mockCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mockCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mockCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mockCache) Ping(_ context.Context) error { return nil }

func (c *mockCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}

func sampleRequest() models.ProviderRequest {
	return prompt.SmokeTest()
}

// --- Analyze ---

func TestAnalyze_Success(t *testing.T) {
	p := mock.NewMockProvider()
	gw := ai.NewGateway(p, nil, ai.GatewayOptions{Timeout: time.Second})

	resp, err := gw.Analyze(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, "mock", resp.Provider)
	assert.Equal(t, "mock-v1", resp.Model)
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, "encryption_at_rest", resp.Answers[0].QuestionID)
	assert.True(t, *resp.Answers[0].Value.Bool)
}

func TestAnalyze_SendsJSONModeAndMaxTokens(t *testing.T) {
	var got models.CompletionRequest
	p := mock.NewMockProvider()
	p.CompleteFunc = func(_ context.Context, req models.CompletionRequest) (string, error) {
		got = req
		return mock.DefaultResponse, nil
	}
	gw := ai.NewGateway(p, nil, ai.GatewayOptions{MaxTokens: 2048})

	req := sampleRequest()
	req.CallerKey = "sk-caller"
	_, err := gw.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, got.JSONOutput)
	assert.Equal(t, 2048, got.MaxTokens)
	assert.Equal(t, "sk-caller", got.CallerKey)
	assert.Equal(t, req.SystemPrompt, got.SystemPrompt)
}

func TestAnalyze_NoCredentialsMakesNoCall(t *testing.T) {
	p := mock.NewUnconfiguredProvider()
	gw := ai.NewGateway(p, nil, ai.GatewayOptions{})

	_, err := gw.Analyze(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
	assert.Equal(t, 0, p.Calls())

	req := sampleRequest()
	req.CallerKey = "sk-caller"
	_, err = gw.Analyze(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, 1, p.Calls())
}

func TestAnalyze_Timeout(t *testing.T) {
	gw := ai.NewGateway(mock.NewTimeoutProvider(), nil, ai.GatewayOptions{Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := gw.Analyze(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAnalyze_DeadlineFromProviderIsTimeout(t *testing.T) {
	p := &mock.MockProvider{
		Name_: "slow",
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	gw := ai.NewGateway(p, nil, ai.GatewayOptions{Timeout: 20 * time.Millisecond})
	_, err := gw.Analyze(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
}

func TestAnalyze_TransportErrorIsUnavailable(t *testing.T) {
	gw := ai.NewGateway(mock.NewFailingProvider(errors.New("connection refused")), nil, ai.GatewayOptions{})

	_, err := gw.Analyze(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAnalyze_MalformedOutputIsContractViolation(t *testing.T) {
	gw := ai.NewGateway(mock.NewStaticProvider("Sure! The vendor looks fine."), nil, ai.GatewayOptions{})

	_, err := gw.Analyze(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, ai.ErrProviderContractViolation)

	var cv *models.ContractViolationError
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, "Sure! The vendor looks fine.", cv.Raw)
}

// --- TestProvider ---

func TestTestProvider_CachesResult(t *testing.T) {
	p := mock.NewMockProvider()
	c := newMockCache()
	gw := ai.NewGateway(p, c, ai.GatewayOptions{})

	assert.True(t, gw.TestProvider(context.Background(), ""))
	assert.True(t, gw.TestProvider(context.Background(), ""))
	assert.Equal(t, 1, p.Calls(), "second call served from cache")

	for k := range c.data {
		assert.NotContains(t, k, "sk-")
	}
}

func TestTestProvider_CachesPerKey(t *testing.T) {
	p := mock.NewMockProvider()
	gw := ai.NewGateway(p, newMockCache(), ai.GatewayOptions{})

	assert.True(t, gw.TestProvider(context.Background(), "sk-one"))
	assert.True(t, gw.TestProvider(context.Background(), "sk-two"))
	assert.Equal(t, 2, p.Calls())
}

func TestTestProvider_Failure(t *testing.T) {
	gw := ai.NewGateway(mock.NewFailingProvider(errors.New("401")), newMockCache(), ai.GatewayOptions{})
	assert.False(t, gw.TestProvider(context.Background(), "sk-bad"))
}

func TestTestProvider_NoCache(t *testing.T) {
	p := mock.NewStaticProvider("not json")
	gw := ai.NewGateway(p, nil, ai.GatewayOptions{})
	assert.False(t, gw.TestProvider(context.Background(), ""))
	assert.False(t, gw.TestProvider(context.Background(), ""))
	assert.Equal(t, 2, p.Calls())
}

func TestReady(t *testing.T) {
	gw := ai.NewGateway(mock.NewUnconfiguredProvider(), nil, ai.GatewayOptions{})
	assert.ErrorIs(t, gw.Ready(""), ai.ErrProviderUnavailable)
	assert.NoError(t, gw.Ready("sk-caller"))
}
