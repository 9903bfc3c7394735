package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

// Default values for tunables that are not overridden via environment.
const (
	DefaultParentLabel    = "Smart"
	DefaultSampleSize     = 500
	DefaultPageSize       = 500
	DefaultWorkers        = 4
	DefaultMaxAttempts    = 4
	DefaultRequestTimeout = 30 * time.Second

	DefaultCompletionsURL = "https://api.openai.com/v1/chat/completions"
	DefaultModel          = "gpt-4o"

	// DefaultGenerationRate caps text-generation requests per second.
	DefaultGenerationRate = 2.0

	taxonomyFile = "categories.yaml"
	statsFile    = "stats.yaml"
	tokenFile    = "google.token"
)

// Config holds all runtime configuration for the labeler.
// Values come from environment variables with sensible defaults;
// file state lives under the user config directory.
type Config struct {
	// ConfigDir is the directory holding the taxonomy document, the
	// run-stats document and the cached OAuth token.
	ConfigDir string

	// ParentLabel is the top-level label under which category labels
	// are created (e.g. "Smart" -> "Smart/Orders").
	ParentLabel string

	// SampleSize bounds the number of messages fetched during inbox
	// pattern analysis.
	SampleSize int

	// PageSize is the maximum mailbox list page size. The Gmail API
	// caps this at 500.
	PageSize int

	// Workers bounds the number of concurrent per-message pipelines
	// during a labeling run.
	Workers int

	// MaxAttempts bounds retries for a single remote call.
	MaxAttempts int

	// RequestTimeout bounds every individual remote call.
	RequestTimeout time.Duration

	// APIKey authenticates against the text-generation service.
	APIKey string

	// CompletionsURL is the chat-completions endpoint of the
	// text-generation service.
	CompletionsURL string

	// Model is the generation model used for both taxonomy discovery
	// and per-message classification.
	Model string

	// GenerationRate caps generation requests per second.
	GenerationRate float64
}

// Load builds a Config from the environment. It does not verify
// credentials; call RequireAPIKey before issuing generation requests.
func Load() (*Config, error) {
	dir := os.Getenv("SMARTLABEL_CONFIG_DIR")
	if dir == "" {
		dir = filepath.Join(userConfigDir(), "smartlabel")
	}

	cfg := &Config{
		ConfigDir:      dir,
		ParentLabel:    getEnvOrDefault("SMARTLABEL_PARENT_LABEL", DefaultParentLabel),
		SampleSize:     getEnvIntOrDefault("SMARTLABEL_SAMPLE_SIZE", DefaultSampleSize),
		PageSize:       getEnvIntOrDefault("SMARTLABEL_PAGE_SIZE", DefaultPageSize),
		Workers:        getEnvIntOrDefault("SMARTLABEL_WORKERS", DefaultWorkers),
		MaxAttempts:    getEnvIntOrDefault("SMARTLABEL_MAX_ATTEMPTS", DefaultMaxAttempts),
		RequestTimeout: DefaultRequestTimeout,
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		CompletionsURL: getEnvOrDefault("OPENAI_BASE_URL", DefaultCompletionsURL),
		Model:          getEnvOrDefault("SMARTLABEL_MODEL", DefaultModel),
		GenerationRate: DefaultGenerationRate,
	}

	if cfg.PageSize <= 0 || cfg.PageSize > 500 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	if err := os.MkdirAll(cfg.ConfigDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory %s: %w", cfg.ConfigDir, err)
	}

	return cfg, nil
}

// RequireAPIKey fails if no generation-service credential is configured.
// This is checked before any remote call is made.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY not found in environment")
	}
	return nil
}

// TaxonomyPath returns the path of the persisted taxonomy document.
func (c *Config) TaxonomyPath() string {
	return filepath.Join(c.ConfigDir, taxonomyFile)
}

// StatsPath returns the path of the persisted run-stats document.
func (c *Config) StatsPath() string {
	return filepath.Join(c.ConfigDir, statsFile)
}

// TokenPath returns the path of the cached Google OAuth token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.ConfigDir, tokenFile)
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the environment variable parsed as int or a default.
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return appData
		}
	}
	return filepath.Join(homeDir(), ".config")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
