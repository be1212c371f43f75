// Package config loads application configuration from aisle.toml and
// the environment.
package config

import (
	"time"

	"github.com/custodia-labs/aisle/internal/core/domain"
	"github.com/custodia-labs/aisle/internal/core/services"
)

// Config is the full application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	Search        SearchConfig        `mapstructure:"search"`
	Assistant     AssistantConfig     `mapstructure:"assistant"`
	Prompts       PromptsConfig       `mapstructure:"prompts"`
	MCP           MCPConfig           `mapstructure:"mcp"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`

	// BodyLimit caps request bodies in bytes, audio uploads included.
	BodyLimit int `mapstructure:"body_limit"`
}

type DatabaseConfig struct {
	// Path is the SQLite file. Empty means ~/.aisle/aisle.db.
	Path string `mapstructure:"path"`
}

type LLMConfig struct {
	Provider string        `mapstructure:"provider"`
	Model    string        `mapstructure:"model"`
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`

	RatePerSecond   float64       `mapstructure:"rate_per_second"`
	Burst           int           `mapstructure:"burst"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

type TranscriptionConfig struct {
	Provider      string        `mapstructure:"provider"`
	Model         string        `mapstructure:"model"`
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	Language      string        `mapstructure:"language"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MinConfidence float64       `mapstructure:"min_confidence"`
}

// SearchConfig holds defaults for the /search endpoint and CLI.
type SearchConfig struct {
	Limit    int     `mapstructure:"limit"`
	MinScore float64 `mapstructure:"min_score"`
}

// AssistantConfig tunes reply matching and routing.
type AssistantConfig struct {
	TopK         int     `mapstructure:"top_k"`
	MinScore     float64 `mapstructure:"min_score"`
	RouteTargets int     `mapstructure:"route_targets"`
}

type PromptsConfig struct {
	// Dir holds the editable prompt files. Empty means ~/.aisle/prompts.
	Dir string `mapstructure:"dir"`

	// Watch reloads prompts when files change while serving.
	Watch bool `mapstructure:"watch"`
}

type MCPConfig struct {
	// Port serves MCP over streamable HTTP alongside the API. Zero disables it.
	Port int `mapstructure:"port"`
}

// LLMSettings converts the [llm] section to domain settings.
func (c *Config) LLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider:        domain.AIProvider(c.LLM.Provider),
		Model:           c.LLM.Model,
		BaseURL:         c.LLM.BaseURL,
		APIKey:          c.LLM.APIKey,
		Timeout:         c.LLM.Timeout,
		RatePerSecond:   c.LLM.RatePerSecond,
		Burst:           c.LLM.Burst,
		BreakerFailures: c.LLM.BreakerFailures,
		BreakerCooldown: c.LLM.BreakerCooldown,
	}
}

// TranscriptionSettings converts the [transcription] section to domain settings.
func (c *Config) TranscriptionSettings() *domain.TranscriptionSettings {
	return &domain.TranscriptionSettings{
		Provider:      domain.AIProvider(c.Transcription.Provider),
		Model:         c.Transcription.Model,
		BaseURL:       c.Transcription.BaseURL,
		APIKey:        c.Transcription.APIKey,
		Language:      c.Transcription.Language,
		Timeout:       c.Transcription.Timeout,
		MinConfidence: c.Transcription.MinConfidence,
	}
}

// AssistantConfig builds the engine configuration.
func (c *Config) AssistantConfig() services.AssistantConfig {
	cfg := services.DefaultAssistantConfig()
	if c.LLM.Timeout > 0 {
		cfg.LLMTimeout = c.LLM.Timeout
	}
	if c.Transcription.Timeout > 0 {
		cfg.TranscriptionTimeout = c.Transcription.Timeout
	}
	cfg.MinConfidence = c.Transcription.MinConfidence
	if c.Assistant.TopK > 0 {
		cfg.TopK = c.Assistant.TopK
	}
	if c.Assistant.MinScore > 0 {
		cfg.MinScore = c.Assistant.MinScore
	}
	if c.Assistant.RouteTargets > 0 {
		cfg.RouteTargets = c.Assistant.RouteTargets
	}
	return cfg
}
