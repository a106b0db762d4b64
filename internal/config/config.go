package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort         = 5001
	defaultEnv          = "development"
	defaultDatabasePath = "papers.db"

	defaultMineruEndpoint = "https://mineru.net"
	defaultMineruModel    = "vlm"
	defaultPollInterval   = 3
	defaultPollAttempts   = 60

	defaultArxivEndpoint   = "http://export.arxiv.org"
	defaultScholarEndpoint = "https://api.semanticscholar.org"

	// EnvMineruToken overrides mineru.token when set.
	EnvMineruToken = "MINERU_TOKEN"
)

// AppConfig holds runtime startup configuration loaded from YAML. It is
// resolved once in main and injected into every component that needs it;
// nothing re-reads credential state after startup.
type AppConfig struct {
	Port           int           `yaml:"port"`
	Env            string        `yaml:"env"` // "development" | "production"
	DatabasePath   string        `yaml:"database_path"`
	RedisURL       string        `yaml:"redis_url"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Mineru         MineruConfig  `yaml:"mineru"`
	AI             AIConfig      `yaml:"ai"`
	Arxiv          ArxivConfig   `yaml:"arxiv"`
	Scholar        ScholarConfig `yaml:"scholar"`
}

// MineruConfig configures the external document parse service.
type MineruConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Token           string `yaml:"token"`
	ModelVersion    string `yaml:"model_version"`
	PollIntervalSec int    `yaml:"poll_interval_seconds"`
	PollMaxAttempts int    `yaml:"poll_max_attempts"`
}

// AIConfig configures completion providers.
type AIConfig struct {
	Providers []AIProvider `yaml:"providers"`
	MaxTokens int          `yaml:"max_tokens"`
}

// AIProvider describes a single completion service endpoint.
type AIProvider struct {
	ID           string `yaml:"id"`
	Type         string `yaml:"type"` // "openai" | "anthropic" | "openai-compatible"
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// ArxivConfig configures the bibliographic lookup service.
type ArxivConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// ScholarConfig configures the academic search index service.
type ScholarConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// Load reads the YAML config file, applies defaults and environment
// fallbacks, and returns the resolved configuration. A missing file is not
// an error; defaults apply.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Port <= 0 {
		c.Port = defaultPort
	}
	if strings.TrimSpace(c.Env) == "" {
		c.Env = defaultEnv
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		c.DatabasePath = defaultDatabasePath
	}
	if strings.TrimSpace(c.Mineru.Endpoint) == "" {
		c.Mineru.Endpoint = defaultMineruEndpoint
	}
	if strings.TrimSpace(c.Mineru.ModelVersion) == "" {
		c.Mineru.ModelVersion = defaultMineruModel
	}
	if c.Mineru.PollIntervalSec <= 0 {
		c.Mineru.PollIntervalSec = defaultPollInterval
	}
	if c.Mineru.PollMaxAttempts <= 0 {
		c.Mineru.PollMaxAttempts = defaultPollAttempts
	}
	if strings.TrimSpace(c.Mineru.Token) == "" {
		c.Mineru.Token = strings.TrimSpace(os.Getenv(EnvMineruToken))
	}
	if strings.TrimSpace(c.Arxiv.Endpoint) == "" {
		c.Arxiv.Endpoint = defaultArxivEndpoint
	}
	if strings.TrimSpace(c.Scholar.Endpoint) == "" {
		c.Scholar.Endpoint = defaultScholarEndpoint
	}
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "development")
}

// ActiveAIProvider returns the first enabled completion provider, or nil
// when none is configured.
func (c *AppConfig) ActiveAIProvider() *AIProvider {
	for i := range c.AI.Providers {
		if c.AI.Providers[i].Enabled {
			return &c.AI.Providers[i]
		}
	}
	return nil
}
