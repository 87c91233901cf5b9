package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/longregen/slovo-agent/internal/adapters/crypto"
	"github.com/longregen/slovo-agent/internal/adapters/embedding"
	agenthttp "github.com/longregen/slovo-agent/internal/adapters/http"
	"github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/adapters/postgres"
	"github.com/longregen/slovo-agent/internal/adapters/redisstore"
	"github.com/longregen/slovo-agent/internal/adapters/sandbox"
	"github.com/longregen/slovo-agent/internal/application/agents"
	"github.com/longregen/slovo-agent/internal/application/memory"
	"github.com/longregen/slovo-agent/internal/application/orchestrator"
	"github.com/longregen/slovo-agent/internal/application/tools"
	"github.com/longregen/slovo-agent/internal/config"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/llm"
	"github.com/longregen/slovo-agent/internal/ports"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const (
	ephemeralTurnTTL       = redisstore.DefaultTTL
	openAIBaseURL          = "https://api.openai.com/v1"
	anthropicBaseURL       = "https://api.anthropic.com/v1"
	defaultEmbeddingModel  = "text-embedding-3-small"
	defaultEmbeddingDims   = 1536
	sandboxInitTimeout     = 15 * time.Second
	serverShutdownDeadline = 30 * time.Second
)

// serveCmd starts the HTTP API server.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the slovo-agent HTTP API server.

Required configuration:
  - PostgreSQL database (DATABASE_URL)
  - Redis (REDIS_URL)
  - An LLM API key matching LLM_PROVIDER (OPENAI_API_KEY or ANTHROPIC_API_KEY)

Optional:
  - QDRANT_URL is accepted but not used; the vector store is always the
    Postgres pgvector extension
  - SLOVO_ENCRYPTION_KEY for memory-at-rest encryption`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// maskDatabaseURL masks the password in a database URL for safe logging.
func maskDatabaseURL(dbURL string) string {
	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[invalid URL]"
	}
	if parsed.User != nil {
		if _, hasPassword := parsed.User.Password(); hasPassword {
			parsed.User = url.UserPassword(parsed.User.Username(), "****")
		}
	}
	return parsed.String()
}

// llmBaseURL returns the fixed upstream endpoint for a resolved provider.
// The wire format of the LLM is opaque (spec §1); these are the two
// OpenAI-compatible/Anthropic-compatible endpoints the client understands.
func llmBaseURL(p config.LLMProvider) string {
	if p == config.ProviderAnthropic {
		return anthropicBaseURL
	}
	return openAIBaseURL
}

// llmAPIKey returns the credential matching the resolved provider.
func llmAPIKey(cfg *config.Config, p config.LLMProvider) string {
	if p == config.ProviderAnthropic {
		return cfg.LLM.AnthropicAPIKey
	}
	return cfg.LLM.OpenAIAPIKey
}

// newEncryptionService builds the C1 encryption service from the
// configured key material, falling back to a KDF-derived key from the
// agent secret when no raw encryption key is set (spec: encryption key
// may be absent, in which case a passphrase-derived key stands in).
func newEncryptionService(cfg *config.Config) (ports.EncryptionService, error) {
	if cfg.Security.EncryptionKey != "" {
		return crypto.NewServiceFromRawKey([]byte(cfg.Security.EncryptionKey))
	}
	if cfg.Agent.SecretKey != "" {
		return crypto.NewServiceFromPassphrase(cfg.Agent.SecretKey)
	}
	return crypto.NewServiceFromPassphrase("slovo-agent-default-passphrase")
}

// newEmbeddingService builds the C3/C5/C6 embedding collaborator. The
// embedding function is an opaque external service with its own wire
// format (spec §1); since spec §6 defines no dedicated EMBEDDING_*
// variables, it reuses the resolved LLM provider's API key against the
// provider's OpenAI-compatible embeddings endpoint. Anthropic has no
// embeddings API, so embeddings stay unconfigured when that's the
// resolved provider; semantic retrieval/writes degrade gracefully (the
// retrieval pipeline and writer both check EmbeddingService.Configured()).
func newEmbeddingService(cfg *config.Config) ports.EmbeddingService {
	if cfg.LLM.Resolve() != config.ProviderOpenAI || cfg.LLM.OpenAIAPIKey == "" {
		return nil
	}
	return embedding.NewClient(openAIBaseURL, cfg.LLM.OpenAIAPIKey, defaultEmbeddingModel, defaultEmbeddingDims)
}

// newRedisClient parses REDIS_URL into a go-redis client.
func newRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// runServer initializes and starts the HTTP API server.
func runServer(ctx context.Context) error {
	log.Println("Starting slovo-agent API server...")
	log.Printf("  HTTP:     http://%s:%d", cfg.Agent.Host, cfg.Agent.Port)
	log.Printf("  Postgres: %s", maskDatabaseURL(cfg.Storage.DatabaseURL))
	resolvedProvider := cfg.LLM.Resolve()
	log.Printf("  LLM:      %s (%s)", resolvedProvider, cfg.LLM.Model)
	log.Println()

	log.Println("Connecting to PostgreSQL...")
	poolConfig, err := pgxpool.ParseConfig(cfg.Storage.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established")

	log.Println("Applying migrations...")
	if err := postgres.RunMigrations(cfg.Storage.DatabaseURL); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	log.Println("Migrations applied")

	idGen := id.New()

	encSvc, err := newEncryptionService(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize encryption service: %w", err)
	}
	log.Println("Encryption service initialized")

	redisClient, err := newRedisClient(cfg.Storage.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to initialize redis client: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	ephemeralStore := redisstore.New(redisClient, ephemeralTurnTTL)
	log.Println("Ephemeral store (Redis) connected")

	vectorStore := postgres.NewVectorStore(pool, encSvc)
	log.Println("Vector store (pgvector) initialized")

	durableStore := postgres.NewDurableStore(pool)
	log.Println("Durable store initialized")

	embeddingService := newEmbeddingService(cfg)
	if embeddingService != nil {
		log.Println("Embedding client initialized")
	} else {
		log.Println("Embedding client not configured - semantic memory retrieval/writes disabled")
	}

	memoryManager := memory.NewManager(ephemeralStore, vectorStore, durableStore, embeddingService)
	log.Println("Memory manager initialized")

	llmClient := llm.NewClient(
		llmBaseURL(resolvedProvider),
		llmAPIKey(cfg, resolvedProvider),
		cfg.LLM.Model,
		cfg.LLM.MaxTokens,
		cfg.LLM.Temperature,
	)
	llmService := llm.NewService(llmClient)
	log.Println("LLM service initialized")

	toolRepoSvc := tools.NewRepositoryService(durableStore)
	discoverySvc := tools.NewDiscoveryService(durableStore, llmService)
	log.Println("Tool lifecycle services initialized")

	var sandboxExecutor ports.SandboxExecutor
	sandboxCtx, sandboxCancel := context.WithTimeout(ctx, sandboxInitTimeout)
	sbx, err := sandbox.NewExecutor(sandboxCtx)
	sandboxCancel()
	if err != nil {
		log.Printf("Warning: sandbox executor unavailable: %v", err)
		log.Println("Tool execution will be unavailable")
	} else {
		sandboxExecutor = sbx
		log.Println("Sandbox executor initialized")
	}

	intentAgent := agents.NewIntentAgent(llmService)
	plannerAgent := agents.NewPlannerAgent(llmService)
	executorAgent := agents.NewExecutorAgent(llmService)
	verifierAgent := agents.NewVerifierAgent(llmService)
	explainerAgent := agents.NewExplainerAgent(llmService)

	orch := orchestrator.New(intentAgent, plannerAgent, executorAgent, verifierAgent, explainerAgent, orchestrator.Deps{
		Memory:     memoryManager,
		Tools:      toolRepoSvc,
		Sandbox:    sandboxExecutor,
		Discovery:  discoverySvc,
		MaxRetries: cfg.Agent.MaxRetries,
	})

	registerActiveTools(ctx, orch, toolRepoSvc)
	log.Println("Orchestrator initialized")

	server := agenthttp.NewServer(cfg, orch, memoryManager, idGen)

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s:%d", cfg.Agent.Host, cfg.Agent.Port)
		serverErrors <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(serverCtx, serverShutdownDeadline)
		defer shutdownCancel()

		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		log.Println("Server stopped")
		return nil
	}
}

// registerActiveTools seeds the orchestrator's in-memory registered-tools
// set from every manifest already in the active lifecycle state, so tools
// approved and activated in a previous run are available immediately.
func registerActiveTools(ctx context.Context, orch *orchestrator.Orchestrator, toolRepoSvc ports.ToolRepositoryService) {
	const pageSize = 100
	manifests, err := toolRepoSvc.ListManifests(ctx, models.ManifestActive, pageSize, 0)
	if err != nil {
		log.Printf("Warning: failed to list active tool manifests: %v", err)
		return
	}
	for _, m := range manifests {
		orch.RegisterTool(m.Name)
	}
	log.Printf("Registered %d active tool(s)", len(manifests))
}
