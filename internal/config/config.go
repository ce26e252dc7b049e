package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the riskdesk server.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	AI         AIConfig
	Extraction ExtractionConfig
	Scoring    ScoringConfig
	Archive    ArchiveConfig
}

type ServerConfig struct {
	Port               int
	Env                string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	DemoModeEnabled    bool
	// BootstrapAdminKey, when set, is installed as an admin key for the
	// default tenant at startup.
	BootstrapAdminKey string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrationsDir   string
}

type RedisConfig struct {
	URL       string
	ReportTTL time.Duration
}

type AIConfig struct {
	Provider          string
	InferenceTimeout  time.Duration
	MaxTokens         int
	ProviderStatusTTL time.Duration
	Ollama            OllamaConfig
	VLLM              VLLMConfig
	OpenAI            OpenAIConfig
	Anthropic         AnthropicConfig
	Vertex            VertexConfig
}

type OllamaConfig struct {
	BaseURL string
	Model   string
}

type VLLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type AnthropicConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type VertexConfig struct {
	ProjectID string
	Location  string
	Model     string
}

// ExtractionConfig bounds document handling.
type ExtractionConfig struct {
	MinContentChars int
	MaxFileBytes    int64
	MaxFiles        int
	Concurrency     int
	MaxPromptChars  int
}

// ScoringConfig points at an optional YAML rule table overriding the defaults.
type ScoringConfig struct {
	RulesPath string
}

// ArchiveConfig configures the optional S3-compatible raw-document archive.
// An empty Endpoint disables archiving.
type ArchiveConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Enabled reports whether uploaded documents should be archived.
func (a ArchiveConfig) Enabled() bool { return a.Endpoint != "" }

var validProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"vertex":    true,
	"ollama":    true,
	"vllm":      true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
// Missing AI credentials are not a configuration error; they surface per request.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               envInt("RISKDESK_PORT", 8080),
			Env:                envString("RISKDESK_ENV", "development"),
			CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 60),
			DemoModeEnabled:    envBool("DEMO_MODE_ENABLED", false),
			BootstrapAdminKey:  os.Getenv("BOOTSTRAP_ADMIN_KEY"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsDir:   envString("DATABASE_MIGRATIONS_DIR", "migrations"),
		},
		Redis: RedisConfig{
			URL:       os.Getenv("REDIS_URL"),
			ReportTTL: envDuration("REPORT_CACHE_TTL", 15*time.Minute),
		},
		AI: AIConfig{
			Provider:          envString("AI_PROVIDER", "openai"),
			InferenceTimeout:  envDurationSecs("AI_INFERENCE_TIMEOUT_SECS", 120*time.Second),
			MaxTokens:         envInt("AI_MAX_TOKENS", 4096),
			ProviderStatusTTL: envDuration("AI_PROVIDER_STATUS_TTL", 5*time.Minute),
			Ollama: OllamaConfig{
				BaseURL: envString("OLLAMA_BASE_URL", "http://localhost:11434"),
				Model:   envString("OLLAMA_MODEL", "llama3"),
			},
			VLLM: VLLMConfig{
				BaseURL: envString("VLLM_BASE_URL", "http://localhost:8000/v1"),
				APIKey:  os.Getenv("VLLM_API_KEY"),
				Model:   envString("VLLM_MODEL", ""),
			},
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
				Model:   envString("OPENAI_MODEL", "gpt-4o"),
			},
			Anthropic: AnthropicConfig{
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				BaseURL: envString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
				Model:   envString("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
			},
			Vertex: VertexConfig{
				ProjectID: os.Getenv("VERTEX_PROJECT_ID"),
				Location:  envString("VERTEX_LOCATION", "us-central1"),
				Model:     envString("VERTEX_MODEL", "gemini-2.5-pro"),
			},
		},
		Extraction: ExtractionConfig{
			MinContentChars: envInt("EXTRACTION_MIN_CONTENT_CHARS", 100),
			MaxFileBytes:    int64(envInt("EXTRACTION_MAX_FILE_BYTES", 25<<20)),
			MaxFiles:        envInt("EXTRACTION_MAX_FILES", 20),
			Concurrency:     envInt("EXTRACTION_CONCURRENCY", 4),
			MaxPromptChars:  envInt("PROMPT_MAX_CHARS", 400_000),
		},
		Scoring: ScoringConfig{
			RulesPath: os.Getenv("SCORING_RULES_PATH"),
		},
		Archive: ArchiveConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    envString("MINIO_BUCKET", "riskdesk-documents"),
			Region:    envString("MINIO_REGION", "us-east-1"),
			UseSSL:    envBool("MINIO_USE_SSL", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if k := c.Server.BootstrapAdminKey; k != "" && len(k) < 16 {
		return fmt.Errorf("BOOTSTRAP_ADMIN_KEY must be at least 16 characters")
	}

	if !validProviders[c.AI.Provider] {
		return fmt.Errorf("AI_PROVIDER must be one of openai, anthropic, vertex, ollama, vllm; got %q", c.AI.Provider)
	}
	if c.AI.Provider == "vllm" && c.AI.VLLM.Model == "" {
		return fmt.Errorf("VLLM_MODEL is required when AI_PROVIDER is vllm")
	}
	if c.AI.InferenceTimeout <= 0 {
		return fmt.Errorf("AI_INFERENCE_TIMEOUT_SECS must be positive")
	}

	if c.Extraction.MinContentChars < 0 {
		return fmt.Errorf("EXTRACTION_MIN_CONTENT_CHARS must not be negative, got %d", c.Extraction.MinContentChars)
	}
	if c.Extraction.MaxFileBytes <= 0 {
		return fmt.Errorf("EXTRACTION_MAX_FILE_BYTES must be positive, got %d", c.Extraction.MaxFileBytes)
	}
	if c.Extraction.MaxFiles <= 0 {
		return fmt.Errorf("EXTRACTION_MAX_FILES must be positive, got %d", c.Extraction.MaxFiles)
	}
	if c.Extraction.Concurrency <= 0 {
		return fmt.Errorf("EXTRACTION_CONCURRENCY must be positive, got %d", c.Extraction.Concurrency)
	}

	if c.Archive.Enabled() {
		if c.Archive.AccessKey == "" || c.Archive.SecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
		}
		if strings.Contains(c.Archive.Endpoint, "://") {
			return fmt.Errorf("MINIO_ENDPOINT must be host[:port] without a scheme, got %q", c.Archive.Endpoint)
		}
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
