package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/longregen/slovo-agent/internal/adapters/id"
	"github.com/longregen/slovo-agent/internal/adapters/postgres"
	"github.com/longregen/slovo-agent/internal/adapters/redisstore"
	"github.com/longregen/slovo-agent/internal/adapters/sandbox"
	"github.com/longregen/slovo-agent/internal/application/agents"
	"github.com/longregen/slovo-agent/internal/application/memory"
	"github.com/longregen/slovo-agent/internal/application/orchestrator"
	"github.com/longregen/slovo-agent/internal/application/tools"
	"github.com/longregen/slovo-agent/internal/domain/models"
	"github.com/longregen/slovo-agent/internal/llm"
	"github.com/longregen/slovo-agent/internal/ports"
	"github.com/spf13/cobra"
)

const replHelpText = `Commands:
  /help              show this message
  /exit, /quit       end the session
  /new               start a fresh conversation id
  /clear             clear the screen
  /id                print the current conversation id
  /tools [pending]   list active tools, or pending-approval manifests
  /tool import <path>      register a local tool manifest file
  /tool openapi <url>      discover tools from a remote OpenAPI document
  /tool approve <id>       approve a pending manifest
  /tool revoke <id>        revoke a manifest
  /tool logs <id> [n]      show the last n execution logs for a manifest (default 10)
`

// replDeps bundles the console REPL's backing services, built the same
// way serve's runServer assembles them so the CLI and HTTP paths share
// identical orchestrator wiring.
type replDeps struct {
	pool         *pgxpool.Pool
	orchestrator *orchestrator.Orchestrator
	toolRepo     ports.ToolRepositoryService
	discovery    ports.ToolDiscoveryService
	ids          ports.IDGenerator
}

func buildREPLDeps(ctx context.Context) (*replDeps, error) {
	pool, err := initDB(ctx)
	if err != nil {
		return nil, err
	}

	if err := postgres.RunMigrations(cfg.Storage.DatabaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	encSvc, err := newEncryptionService(cfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize encryption service: %w", err)
	}

	redisClient, err := newRedisClient(cfg.Storage.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize redis client: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	ephemeralStore := redisstore.New(redisClient, ephemeralTurnTTL)

	vectorStore := postgres.NewVectorStore(pool, encSvc)
	durableStore := postgres.NewDurableStore(pool)
	embeddingService := newEmbeddingService(cfg)
	memoryManager := memory.NewManager(ephemeralStore, vectorStore, durableStore, embeddingService)

	resolvedProvider := cfg.LLM.Resolve()
	llmClient := llm.NewClient(
		llmBaseURL(resolvedProvider),
		llmAPIKey(cfg, resolvedProvider),
		cfg.LLM.Model,
		cfg.LLM.MaxTokens,
		cfg.LLM.Temperature,
	)
	llmService := llm.NewService(llmClient)

	toolRepoSvc := tools.NewRepositoryService(durableStore)
	discoverySvc := tools.NewDiscoveryService(durableStore, llmService)

	var sandboxExecutor ports.SandboxExecutor
	sandboxCtx, sandboxCancel := context.WithTimeout(ctx, sandboxInitTimeout)
	sbx, sbxErr := sandbox.NewExecutor(sandboxCtx)
	sandboxCancel()
	if sbxErr == nil {
		sandboxExecutor = sbx
	}

	orch := orchestrator.New(
		agents.NewIntentAgent(llmService),
		agents.NewPlannerAgent(llmService),
		agents.NewExecutorAgent(llmService),
		agents.NewVerifierAgent(llmService),
		agents.NewExplainerAgent(llmService),
		orchestrator.Deps{
			Memory:     memoryManager,
			Tools:      toolRepoSvc,
			Sandbox:    sandboxExecutor,
			Discovery:  discoverySvc,
			MaxRetries: cfg.Agent.MaxRetries,
		},
	)
	registerActiveTools(ctx, orch, toolRepoSvc)

	return &replDeps{
		pool:         pool,
		orchestrator: orch,
		toolRepo:     toolRepoSvc,
		discovery:    discoverySvc,
		ids:          id.New(),
	}, nil
}

// chatCmd creates the console REPL, the CLI path spec §6 names alongside
// the HTTP surface.
func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [conversation-id]",
		Short: "Interactive console REPL",
		Long:  `Start an interactive conversation. Provide a conversation id to continue one, or omit it to mint a fresh one.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			deps, err := buildREPLDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.pool.Close()

			conversationID := deps.ids.GenerateConversationID()
			if len(args) > 0 {
				conversationID = args[0]
			}

			fmt.Printf("conversation id: %s\n", conversationID)
			fmt.Println("type /help for commands")
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				if strings.HasPrefix(line, "/") {
					done := deps.handleSlashCommand(ctx, line, &conversationID)
					if done {
						break
					}
					continue
				}

				result, err := deps.orchestrator.ProcessMessage(ctx, line, conversationID)
				if err != nil {
					fmt.Printf("error: %v\n", err)
					continue
				}
				fmt.Println(result.Response)
				fmt.Println()
			}

			return nil
		},
	}
}

// handleSlashCommand dispatches one /-prefixed REPL command. It returns
// true when the REPL should exit.
func (d *replDeps) handleSlashCommand(ctx context.Context, line string, conversationID *string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/help":
		fmt.Print(replHelpText)
	case "/exit", "/quit":
		fmt.Println("goodbye")
		return true
	case "/new":
		*conversationID = d.ids.GenerateConversationID()
		fmt.Printf("new conversation id: %s\n", *conversationID)
	case "/clear":
		fmt.Print("\033[H\033[2J")
	case "/id":
		fmt.Println(*conversationID)
	case "/tools":
		d.listTools(ctx, args)
	case "/tool":
		d.handleToolCommand(ctx, args)
	default:
		fmt.Printf("unknown command: %s (try /help)\n", cmd)
	}
	return false
}

func (d *replDeps) listTools(ctx context.Context, args []string) {
	status := models.ManifestActive
	if len(args) > 0 && args[0] == "pending" {
		status = models.ManifestPendingApproval
	}

	manifests, err := d.toolRepo.ListManifests(ctx, status, 100, 0)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if len(manifests) == 0 {
		fmt.Println("(none)")
		return
	}
	for _, m := range manifests {
		fmt.Printf("%-24s %-10s %s\n", m.Name, m.Status, m.ID)
	}
}

func (d *replDeps) handleToolCommand(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Println("usage: /tool import|openapi|approve|revoke|logs <arg> [n]")
		return
	}
	sub, arg := args[0], args[1]

	switch sub {
	case "import":
		m, err := d.discovery.DiscoverFromFile(ctx, arg)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("registered pending manifest %s (%s)\n", m.Name, m.ID)
	case "openapi":
		m, err := d.discovery.DiscoverFromOpenAPI(ctx, arg)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Printf("registered pending manifest %s (%s)\n", m.Name, m.ID)
	case "approve":
		m, err := d.toolRepo.Approve(ctx, arg)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		d.orchestrator.RegisterTool(m.Name)
		fmt.Printf("approved %s\n", m.Name)
	case "revoke":
		m, err := d.toolRepo.Revoke(ctx, arg)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		d.orchestrator.UnregisterTool(m.Name)
		fmt.Printf("revoked %s\n", m.Name)
	case "logs":
		n := 10
		if len(args) > 2 {
			if parsed, err := strconv.Atoi(args[2]); err == nil {
				n = parsed
			}
		}
		logs, err := d.toolRepo.ListExecutions(ctx, arg, n)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		if len(logs) == 0 {
			fmt.Println("(none)")
			return
		}
		for _, l := range logs {
			fmt.Printf("[%s] %s status=%s duration=%dms\n", l.StartedAt.Format("15:04:05"), l.ID, l.Status, l.DurationMs)
			if l.Error != "" {
				fmt.Printf("  error: %s\n", l.Error)
			}
		}
	default:
		fmt.Printf("unknown /tool subcommand: %s\n", sub)
	}
}
