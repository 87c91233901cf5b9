package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the agent runtime.
type Config struct {
	Agent    AgentConfig    `json:"agent"`
	LLM      LLMConfig      `json:"llm"`
	Storage  StorageConfig  `json:"storage"`
	Security SecurityConfig `json:"security"`
	Log      LogConfig      `json:"log"`
}

// AgentConfig holds the HTTP server and retry/timeout knobs for the orchestrator.
type AgentConfig struct {
	Host        string        `json:"host"`
	Port        int           `json:"port"`
	SecretKey   string        `json:"secret_key"`
	MaxRetries  int           `json:"max_retries"`
	Timeout     time.Duration `json:"timeout"`
	CORSOrigins []string      `json:"cors_origins"`
}

// LLMProvider enumerates the supported LLM backends.
type LLMProvider string

const (
	ProviderOpenAI    LLMProvider = "openai"
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderAuto      LLMProvider = "auto"
)

// LLMConfig holds LLM API configuration.
type LLMConfig struct {
	Provider       LLMProvider `json:"provider"`
	OpenAIAPIKey   string      `json:"openai_api_key"`
	AnthropicAPIKey string     `json:"anthropic_api_key"`
	Model          string      `json:"model"`
	Temperature    float64     `json:"temperature"`
	MaxTokens      int         `json:"max_tokens"`
}

// Resolve returns the provider to actually dial, breaking "auto" by key presence.
func (l LLMConfig) Resolve() LLMProvider {
	if l.Provider != ProviderAuto {
		return l.Provider
	}
	if l.AnthropicAPIKey != "" {
		return ProviderAnthropic
	}
	return ProviderOpenAI
}

// StorageConfig holds connection strings for the memory subsystem's backing stores.
type StorageConfig struct {
	RedisURL    string `json:"redis_url"`
	QdrantURL   string `json:"qdrant_url"`
	DatabaseURL string `json:"database_url"`
}

// SecurityConfig holds the encryption key used for memory-at-rest protection.
type SecurityConfig struct {
	EncryptionKey string `json:"encryption_key"`
}

// LogConfig holds logging verbosity.
type LogConfig struct {
	Level string `json:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			MaxRetries:  2,
			Timeout:     30 * time.Second,
			CORSOrigins: []string{"http://localhost:3000"},
		},
		LLM: LLMConfig{
			Provider:    ProviderAuto,
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   2048,
		},
		Storage: StorageConfig{
			RedisURL:    "redis://localhost:6379/0",
			QdrantURL:   "http://localhost:6333",
			DatabaseURL: "postgres://localhost:5432/slovo_agent",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func envString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*target = i
		}
	}
}

func envFloat(key string, target *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*target = f
		}
	}
}

func envDurationSeconds(key string, target *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*target = time.Duration(i) * time.Second
		}
	}
}

func envStringSlice(key string, target *[]string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			*target = result
		}
	}
}

// Load loads configuration from an optional config file overlaid with environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := getConfigPath()
	if data, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to parse config file %s: %v\n", configPath, err)
		}
	}

	envString("AGENT_HOST", &cfg.Agent.Host)
	envInt("AGENT_PORT", &cfg.Agent.Port)
	envString("AGENT_SECRET_KEY", &cfg.Agent.SecretKey)
	envInt("AGENT_MAX_RETRIES", &cfg.Agent.MaxRetries)
	envDurationSeconds("AGENT_TIMEOUT", &cfg.Agent.Timeout)
	envStringSlice("AGENT_CORS_ORIGINS", &cfg.Agent.CORSOrigins)

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = LLMProvider(v)
	}
	envString("OPENAI_API_KEY", &cfg.LLM.OpenAIAPIKey)
	envString("ANTHROPIC_API_KEY", &cfg.LLM.AnthropicAPIKey)
	envString("LLM_MODEL", &cfg.LLM.Model)
	envFloat("LLM_TEMPERATURE", &cfg.LLM.Temperature)
	envInt("LLM_MAX_TOKENS", &cfg.LLM.MaxTokens)

	envString("REDIS_URL", &cfg.Storage.RedisURL)
	envString("QDRANT_URL", &cfg.Storage.QdrantURL)
	envString("DATABASE_URL", &cfg.Storage.DatabaseURL)

	envString("SLOVO_ENCRYPTION_KEY", &cfg.Security.EncryptionKey)

	envString("LOG_LEVEL", &cfg.Log.Level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func isValidURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Validate checks that the configuration has valid values, per §6's bounds.
func (c *Config) Validate() error {
	var errs []string

	if c.Agent.Port < 1 || c.Agent.Port > 65535 {
		errs = append(errs, "AGENT_PORT must be between 1 and 65535")
	}
	if c.Agent.MaxRetries < 0 || c.Agent.MaxRetries > 5 {
		errs = append(errs, "AGENT_MAX_RETRIES must be between 0 and 5")
	}
	if c.Agent.Timeout <= 0 {
		errs = append(errs, "AGENT_TIMEOUT must be positive")
	}

	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderAuto:
	default:
		errs = append(errs, "LLM_PROVIDER must be one of openai, anthropic, auto")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, "LLM_TEMPERATURE must be between 0 and 2")
	}
	if c.LLM.MaxTokens < 1 {
		errs = append(errs, "LLM_MAX_TOKENS must be positive")
	}
	switch c.LLM.Resolve() {
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required when LLM_PROVIDER resolves to openai")
		}
	case ProviderAnthropic:
		if c.LLM.AnthropicAPIKey == "" {
			errs = append(errs, "ANTHROPIC_API_KEY is required when LLM_PROVIDER resolves to anthropic")
		}
	}

	if c.Storage.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	} else if !isValidURL(c.Storage.DatabaseURL) {
		errs = append(errs, "DATABASE_URL must be a valid URL")
	}
	if c.Storage.RedisURL == "" {
		errs = append(errs, "REDIS_URL is required")
	} else if !isValidURL(c.Storage.RedisURL) {
		errs = append(errs, "REDIS_URL must be a valid URL")
	}
	if c.Storage.QdrantURL != "" && !isValidURL(c.Storage.QdrantURL) {
		errs = append(errs, "QDRANT_URL must be a valid URL")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func getConfigPath() string {
	if path := os.Getenv("AGENT_CONFIG"); path != "" {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "config.json"
	}

	configDir := filepath.Join(homeDir, ".config", "slovo-agent")
	configPath := filepath.Join(configDir, "config.json")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	altPath := filepath.Join(homeDir, ".slovo-agent", "config.json")
	if _, err := os.Stat(altPath); err == nil {
		return altPath
	}

	return configPath
}
