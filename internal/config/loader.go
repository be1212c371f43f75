package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AISLE_SERVER_PORT.
const EnvPrefix = "AISLE"

// Load reads configuration. An explicit path must exist; otherwise
// aisle.toml is looked up in ., ./configs and ~/.aisle, and a missing
// file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("aisle")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".aisle"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Provider keys under their usual names. The first one set wins.
	_ = v.BindEnv("llm.api_key", "AISLE_LLM_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("transcription.api_key", "AISLE_TRANSCRIPTION_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.body_limit", 10<<20)

	v.SetDefault("database.path", "")

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.timeout", 8*time.Second)
	v.SetDefault("llm.rate_per_second", 0)
	v.SetDefault("llm.burst", 0)
	v.SetDefault("llm.breaker_failures", 3)
	v.SetDefault("llm.breaker_cooldown", 30*time.Second)

	v.SetDefault("transcription.provider", "none")
	v.SetDefault("transcription.model", "")
	v.SetDefault("transcription.base_url", "")
	v.SetDefault("transcription.api_key", "")
	v.SetDefault("transcription.language", "en")
	v.SetDefault("transcription.timeout", 15*time.Second)
	v.SetDefault("transcription.min_confidence", 0.4)

	v.SetDefault("search.limit", 5)
	v.SetDefault("search.min_score", 50)

	v.SetDefault("assistant.top_k", 3)
	v.SetDefault("assistant.min_score", 60)
	v.SetDefault("assistant.route_targets", 1)

	v.SetDefault("prompts.dir", "")
	v.SetDefault("prompts.watch", true)

	v.SetDefault("mcp.port", 0)
}
