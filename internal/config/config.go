package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port           string
		AllowedOrigins []string
	}
	Corpus struct {
		Source string
	}
	Database struct {
		Driver string
		URL    string
	}
	Redis struct {
		URL string
	}
	Narration struct {
		Provider  string
		Model     string
		BaseURL   string
		APIKey    string
		MaxTokens int
		Timeout   time.Duration
		CacheTTL  time.Duration
	}
	Session struct {
		Limit  int
		Window time.Duration
	}
	Health struct {
		Schedule string
	}
	Log struct {
		Level string
	}
}

// Load reads config.yaml when present; every key can be overridden from the
// environment, e.g. NARRATION_PROVIDER or SESSION_LIMIT.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("corpus.source", "data/results.json")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("narration.provider", "anthropic")
	v.SetDefault("narration.model", "")
	v.SetDefault("narration.base_url", "")
	v.SetDefault("narration.max_tokens", 300)
	v.SetDefault("narration.timeout", "30s")
	v.SetDefault("narration.cache_ttl", "1h")
	v.SetDefault("session.limit", 20)
	v.SetDefault("session.window", "1h")
	v.SetDefault("health.schedule", "@every 30s")
	v.SetDefault("log.level", "info")
}

func fromViper(v *viper.Viper) (*Config, error) {
	var config Config

	config.Server.Port = v.GetString("server.port")
	config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	config.Corpus.Source = v.GetString("corpus.source")
	config.Database.Driver = v.GetString("database.driver")
	config.Database.URL = v.GetString("database.url")
	config.Redis.URL = v.GetString("redis.url")
	config.Narration.Provider = strings.ToLower(v.GetString("narration.provider"))
	config.Narration.Model = v.GetString("narration.model")
	config.Narration.BaseURL = v.GetString("narration.base_url")
	config.Narration.MaxTokens = v.GetInt("narration.max_tokens")
	config.Narration.Timeout = v.GetDuration("narration.timeout")
	config.Narration.CacheTTL = v.GetDuration("narration.cache_ttl")
	config.Session.Limit = v.GetInt("session.limit")
	config.Session.Window = v.GetDuration("session.window")
	config.Health.Schedule = v.GetString("health.schedule")
	config.Log.Level = v.GetString("log.level")

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		config.Log.Level = lvl
	}

	switch config.Narration.Provider {
	case "anthropic":
		config.Narration.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "openai":
		config.Narration.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	if c.Corpus.Source == "" {
		return fmt.Errorf("corpus.source is required")
	}
	switch c.Narration.Provider {
	case "anthropic", "openai", "none":
	default:
		return fmt.Errorf("unknown narration provider %q", c.Narration.Provider)
	}
	if c.Session.Limit <= 0 {
		return fmt.Errorf("session.limit must be positive, got %d", c.Session.Limit)
	}
	if c.Session.Window <= 0 {
		return fmt.Errorf("session.window must be positive, got %s", c.Session.Window)
	}
	if c.Narration.Timeout <= 0 {
		return fmt.Errorf("narration.timeout must be positive, got %s", c.Narration.Timeout)
	}
	return nil
}

// NarrationEnabled reports whether a provider has credentials to call.
func (c *Config) NarrationEnabled() bool {
	return c.Narration.Provider != "none" && c.Narration.APIKey != ""
}
