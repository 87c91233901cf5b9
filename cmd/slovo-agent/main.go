package main

import (
	"fmt"
	"os"

	"github.com/longregen/slovo-agent/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "slovo-agent",
		Short: "slovo-agent - self-hosted personal assistant runtime",
		Long: `slovo-agent is a self-hosted personal assistant runtime:
a five-stage agent pipeline over a layered memory store and a
sandboxed tool lifecycle.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		chatCmd(),
		serveCmd(),
		configCmd(),
		versionCmd(),
		benchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configCmd shows the resolved configuration, secrets masked.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Agent:")
			fmt.Printf("  Host:        %s\n", cfg.Agent.Host)
			fmt.Printf("  Port:        %d\n", cfg.Agent.Port)
			fmt.Printf("  Max Retries: %d\n", cfg.Agent.MaxRetries)
			fmt.Printf("  Timeout:     %s\n", cfg.Agent.Timeout)
			fmt.Println()

			fmt.Println("LLM:")
			fmt.Printf("  Provider (resolved): %s\n", cfg.LLM.Resolve())
			fmt.Printf("  Model:               %s\n", cfg.LLM.Model)
			fmt.Printf("  Temperature:         %.2f\n", cfg.LLM.Temperature)
			fmt.Printf("  Max Tokens:          %d\n", cfg.LLM.MaxTokens)
			fmt.Printf("  OpenAI key:          %s\n", maskSecret(cfg.LLM.OpenAIAPIKey))
			fmt.Printf("  Anthropic key:       %s\n", maskSecret(cfg.LLM.AnthropicAPIKey))
			fmt.Println()

			fmt.Println("Storage:")
			fmt.Printf("  Database: %s\n", maskSecret(cfg.Storage.DatabaseURL))
			fmt.Printf("  Redis:    %s\n", maskSecret(cfg.Storage.RedisURL))
			fmt.Printf("  Qdrant:   %s\n", boolStatus(cfg.Storage.QdrantURL != ""))
			fmt.Println()

			fmt.Println("Security:")
			fmt.Printf("  Encryption key: %s\n", boolStatus(cfg.Security.EncryptionKey != ""))
			fmt.Println()

			fmt.Println("Environment variables:")
			fmt.Println("  AGENT_HOST, AGENT_PORT, AGENT_SECRET_KEY, AGENT_MAX_RETRIES, AGENT_TIMEOUT")
			fmt.Println("  LLM_PROVIDER, LLM_MODEL, LLM_TEMPERATURE, LLM_MAX_TOKENS")
			fmt.Println("  OPENAI_API_KEY, ANTHROPIC_API_KEY")
			fmt.Println("  REDIS_URL, QDRANT_URL, DATABASE_URL, SLOVO_ENCRYPTION_KEY, LOG_LEVEL")

			return nil
		},
	}
}

// versionCmd shows version information.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("slovo-agent %s\n", version)
			fmt.Printf("  Commit:     %s\n", commit)
			fmt.Printf("  Build Date: %s\n", buildDate)
		},
	}
}
