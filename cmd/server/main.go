// Package main is the entrypoint for the riskdesk API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/riskdesk/internal/ai"
	"github.com/kiranshivaraju/riskdesk/internal/api"
	"github.com/kiranshivaraju/riskdesk/internal/api/handler"
	mw "github.com/kiranshivaraju/riskdesk/internal/api/middleware"
	"github.com/kiranshivaraju/riskdesk/internal/api/response"
	"github.com/kiranshivaraju/riskdesk/internal/assessment"
	"github.com/kiranshivaraju/riskdesk/internal/blob"
	"github.com/kiranshivaraju/riskdesk/internal/cache"
	"github.com/kiranshivaraju/riskdesk/internal/config"
	"github.com/kiranshivaraju/riskdesk/internal/extract"
	"github.com/kiranshivaraju/riskdesk/internal/prompt"
	"github.com/kiranshivaraju/riskdesk/internal/scoring"
	"github.com/kiranshivaraju/riskdesk/internal/store"
	"github.com/kiranshivaraju/riskdesk/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	shutdownTimeout = 30 * time.Second
	// multipart framing on top of the raw file bytes
	formOverheadBytes = 1 << 20
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "env", cfg.Server.Env,
		"demo_mode", cfg.Server.DemoModeEnabled, "archive", cfg.Archive.Enabled())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	pgStore := store.NewPostgresStore(pool)

	if cfg.Server.BootstrapAdminKey != "" {
		if err := bootstrapAdminKey(ctx, pgStore, cfg.Server.BootstrapAdminKey); err != nil {
			return fmt.Errorf("bootstrap admin key: %w", err)
		}
	}

	// 5. Create AI provider. Missing credentials are reported per request.
	aiProvider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	if closer, ok := aiProvider.(io.Closer); ok {
		defer closer.Close()
	}
	slog.Info("AI provider initialized", "provider", aiProvider.Name(),
		"model", aiProvider.Model(), "configured", aiProvider.HasCredentials(""))

	gateway := ai.NewGateway(aiProvider, redisCache, ai.GatewayOptions{
		Timeout:   cfg.AI.InferenceTimeout,
		MaxTokens: cfg.AI.MaxTokens,
		StatusTTL: cfg.AI.ProviderStatusTTL,
	})

	// 6. Scoring rules
	rules := scoring.DefaultRules()
	if cfg.Scoring.RulesPath != "" {
		rules, err = scoring.LoadRules(cfg.Scoring.RulesPath)
		if err != nil {
			return fmt.Errorf("load scoring rules: %w", err)
		}
		slog.Info("scoring rules loaded", "path", cfg.Scoring.RulesPath)
	}

	// 7. Optional document archive
	var archive blob.Archive
	if cfg.Archive.Enabled() {
		minioArchive, err := blob.NewMinioArchive(ctx, cfg.Archive)
		if err != nil {
			return fmt.Errorf("create document archive: %w", err)
		}
		archive = minioArchive
		slog.Info("document archive enabled", "endpoint", cfg.Archive.Endpoint, "bucket", cfg.Archive.Bucket)
	}

	svc := assessment.NewService(assessment.Options{
		Extractor: extract.New(extract.Options{
			MinContentChars: cfg.Extraction.MinContentChars,
			MaxFileBytes:    cfg.Extraction.MaxFileBytes,
			Concurrency:     cfg.Extraction.Concurrency,
		}),
		Prompts:   prompt.NewBuilder(cfg.Extraction.MaxPromptChars),
		Gateway:   gateway,
		Scorer:    scoring.NewEngine(rules),
		Store:     pgStore,
		Cache:     redisCache,
		Archive:   archive,
		ReportTTL: cfg.Redis.ReportTTL,
		MaxFiles:  cfg.Extraction.MaxFiles,
	})

	// 8. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute)

	deps := api.Dependencies{
		Auth:        auth,
		RateLimit:   rateLimit,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,

		HealthHandler:    healthHandler(pgStore, redisCache),
		ProvidersHandler: handler.NewProvidersHandler(cfg.AI),
		FormatsHandler:   handler.NewFormatsHandler(),

		AnalyzeHandler: handler.NewAnalyzeHandler(svc, handler.AnalyzeOptions{
			MaxRequestBytes: cfg.Extraction.MaxFileBytes*int64(cfg.Extraction.MaxFiles) + formOverheadBytes,
			DemoModeEnabled: cfg.Server.DemoModeEnabled,
		}),
		CreateAssessmentHandler: handler.NewCreateAssessmentHandler(svc),
		ListAssessmentsHandler:  handler.NewListAssessmentsHandler(svc),
		ListReportsHandler:      handler.NewListReportsHandler(svc),
		GetReportHandler:        handler.NewGetReportHandler(svc),
		ProviderTestHandler:     handler.NewProviderTestHandler(gateway),

		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 9. Start HTTP server. Analysis calls can run for the whole inference
	// timeout, so the write deadline follows it.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: cfg.AI.InferenceTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// bootstrapAdminKey installs rawKey as an admin key of the default tenant
// unless a key with the same value already exists.
func bootstrapAdminKey(ctx context.Context, s store.Store, rawKey string) error {
	tenant, err := s.GetDefaultTenant(ctx)
	if err != nil {
		return fmt.Errorf("default tenant: %w", err)
	}

	prefix := rawKey[:8]
	existing, err := s.GetAPIKeyByPrefix(ctx, prefix)
	if err != nil {
		return err
	}
	for _, k := range existing {
		if bcrypt.CompareHashAndPassword([]byte(k.KeyHash), []byte(rawKey)) == nil {
			slog.Info("bootstrap admin key already present", "key_prefix", prefix)
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	key := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		UserID:    "admin",
		Name:      "bootstrap",
		KeyHash:   string(hash),
		KeyPrefix: prefix,
		Scopes:    []string{models.ScopeAdmin},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateAPIKey(ctx, key); err != nil {
		return err
	}
	slog.Info("bootstrap admin key created", "tenant_id", tenant.ID, "key_prefix", prefix)
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
