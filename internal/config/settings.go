package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/llm"
	"github.com/Veraticus/pulse/internal/scoring"
)

// SetDefaults registers the default value of every non-scoring key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("owner", "")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.ollama_url", "")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.rate_limit", 60)
	v.SetDefault("llm.cache_ttl", 15*time.Minute)
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.timeout", 30*time.Second)

	v.SetDefault("digest.from", "pulse@localhost")
	v.SetDefault("digest.to", "")
}

// LoadScoring overlays the keys set under "scoring" on scoring.DefaultConfig and
// validates the result.
func LoadScoring(v *viper.Viper) (scoring.Config, error) {
	cfg := scoring.DefaultConfig()
	if v.IsSet("scoring") {
		if err := v.UnmarshalKey("scoring", &cfg); err != nil {
			return scoring.Config{}, fmt.Errorf("%w: scoring: %w", common.ErrInvalidConfig, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return scoring.Config{}, err
	}
	return cfg, nil
}

// LoadLLM builds the provider configuration. An explicit llm.provider wins; otherwise
// the provider is detected from available credentials.
func LoadLLM(v *viper.Viper, creds *Credentials) (llm.Config, error) {
	ollamaURL := v.GetString("llm.ollama_url")
	if ollamaURL == "" {
		ollamaURL = creds.getenv("OLLAMA_URL")
	}

	provider := strings.ToLower(strings.TrimSpace(v.GetString("llm.provider")))
	if provider == "" {
		provider = llm.DetectProvider(creds.APIKey, ollamaURL)
	}

	cfg := llm.Config{
		Provider:    provider,
		Model:       v.GetString("llm.model"),
		BaseURL:     v.GetString("llm.base_url"),
		Temperature: v.GetFloat64("llm.temperature"),
		MaxTokens:   v.GetInt("llm.max_tokens"),
		RateLimit:   v.GetInt("llm.rate_limit"),
		CacheTTL:    v.GetDuration("llm.cache_ttl"),
		MaxRetries:  v.GetInt("llm.max_retries"),
		RetryDelay:  v.GetDuration("llm.retry_delay"),
		Timeout:     v.GetDuration("llm.timeout"),
	}

	switch {
	case provider == llm.ProviderOllama && cfg.BaseURL == "":
		cfg.BaseURL = ollamaURL
	case llm.RequiresKey(provider):
		cfg.APIKey = creds.APIKey(provider)
		if cfg.APIKey == "" {
			return llm.Config{}, fmt.Errorf("%w: no API key for %s (set %s or run 'pulse auth set-key %s')",
				common.ErrMissingConfig, provider, EnvVar(provider), provider)
		}
	}

	return cfg, nil
}
