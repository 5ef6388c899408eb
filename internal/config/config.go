package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ProviderConfig is the static description of one upstream provider.
type ProviderConfig struct {
	// ID is the registry key (e.g. "groq"). Unique.
	ID string `mapstructure:"id"`
	// Name is the human-readable label used in status views.
	Name string `mapstructure:"name"`
	// Kind selects the adapter family: groq, openai, anthropic, ollama, google.
	Kind string `mapstructure:"kind"`

	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`

	// Priority orders fallback. Lower is tried first.
	Priority int `mapstructure:"priority"`
	// RateLimit is the maximum requests allowed per trailing 60s window.
	RateLimit int `mapstructure:"rate_limit"`
}

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Redis     RedisConfig      `mapstructure:"redis"`
	RateLimit RateLimitConfig  `mapstructure:"rate_limit"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

// RateLimitConfig governs the per-client HTTP throttle, not the
// per-provider dispatch windows.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type ServerConfig struct {
	Port    string   `mapstructure:"port"`
	Env     string   `mapstructure:"env"`
	APIKeys []string `mapstructure:"api_keys"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	// Default Values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("database.path", "broker.db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Resolve API Keys declared as ENV:VAR_NAME references
	for i, p := range cfg.Providers {
		if strings.HasPrefix(p.APIKey, "ENV:") {
			envVar := strings.TrimPrefix(p.APIKey, "ENV:")
			val := os.Getenv(envVar)
			if val == "" {
				val = v.GetString(envVar)
			}
			cfg.Providers[i].APIKey = val
		}
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}

	return &cfg, nil
}

// DefaultProviders builds the standard five-provider roster from the
// conventional environment variables. Providers without credentials are
// still returned; the registry decides enablement.
func DefaultProviders() []ProviderConfig {
	ollamaURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}

	return []ProviderConfig{
		{ID: "groq", Name: "Groq", Kind: "groq", APIKey: os.Getenv("GROQ_API_KEY"), Priority: 1, RateLimit: 30},
		{ID: "openai", Name: "OpenAI", Kind: "openai", APIKey: os.Getenv("OPENAI_API_KEY"), Priority: 2, RateLimit: 60},
		{ID: "anthropic", Name: "Anthropic", Kind: "anthropic", APIKey: os.Getenv("ANTHROPIC_API_KEY"), Priority: 3, RateLimit: 50},
		{ID: "ollama", Name: "Ollama", Kind: "ollama", BaseURL: ollamaURL, Priority: 4, RateLimit: 100},
		{ID: "google", Name: "Google", Kind: "google", APIKey: os.Getenv("GOOGLE_API_KEY"), Priority: 6, RateLimit: 60},
	}
}
