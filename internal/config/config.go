// Package config resolves settings from flags, MCQPREP_* environment
// variables and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/abhisek/mcqprep/internal/llm"
	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/sampler"
	"github.com/abhisek/mcqprep/internal/session"
	"github.com/abhisek/mcqprep/internal/store"
)

// EnvPrefix is prepended to every environment variable, so the key
// explain.openai.api_key is read from MCQPREP_EXPLAIN_OPENAI_API_KEY.
const EnvPrefix = "MCQPREP"

// Config is the resolved application configuration.
type Config struct {
	DataDir        string     `mapstructure:"data_dir"`
	BankURL        string     `mapstructure:"bank_url"`
	DB             string     `mapstructure:"db"`
	Store          string     `mapstructure:"store"`
	RedisAddr      string     `mapstructure:"redis_addr"`
	RedisNamespace string     `mapstructure:"redis_namespace"`
	LogFile        string     `mapstructure:"log_file"`
	LogLevel       string     `mapstructure:"log_level"`
	MixedCount     int        `mapstructure:"mixed_count"`
	ReviewCount    int        `mapstructure:"review_count"`
	ReviewModule   int        `mapstructure:"review_module"`
	Explain        llm.Config `mapstructure:"explain"`

	// File is the config file that was read, empty if none.
	File string `mapstructure:"-"`
}

// New returns a viper instance with defaults and environment binding set
// up. Callers bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := DataHome(); err == nil {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	llmDefaults := llm.DefaultConfig()
	defaults := map[string]any{
		"data_dir":        "",
		"bank_url":        "",
		"db":              "",
		"store":           store.BackendSQLite,
		"redis_addr":      "localhost:6379",
		"redis_namespace": store.DefaultRedisNamespace,
		"log_file":        "",
		"log_level":       "info",
		"mixed_count":     quiz.DefaultMixedCount,
		"review_count":    25,
		"review_module":   0,

		"explain.provider":            llmDefaults.Provider,
		"explain.timeout":             llmDefaults.Timeout,
		"explain.anthropic.api_key":   "",
		"explain.anthropic.model":     llmDefaults.Anthropic.Model,
		"explain.anthropic.base_url":  "",
		"explain.openai.api_key":      "",
		"explain.openai.model":        llmDefaults.OpenAI.Model,
		"explain.openai.base_url":     "",
		"explain.gemini.api_key":      "",
		"explain.gemini.model":        llmDefaults.Gemini.Model,
		"explain.openrouter.api_key":  "",
		"explain.openrouter.model":    llmDefaults.OpenRouter.Model,
		"explain.openrouter.base_url": "",
		"explain.retry.max_attempts":  llmDefaults.Retry.MaxAttempts,
		"explain.retry.initial_wait":  llmDefaults.Retry.InitialWait,
		"explain.retry.max_wait":      llmDefaults.Retry.MaxWait,
		"explain.retry.multiplier":    llmDefaults.Retry.Multiplier,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	return v
}

// Load reads the config file if one exists and resolves derived paths.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.Explain = cfg.Explain.Discover()

	if cfg.Store == store.BackendSQLite && cfg.DB == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DB = p
	}
	if cfg.LogFile == "" {
		dir, err := DataHome()
		if err != nil {
			return nil, err
		}
		cfg.LogFile = filepath.Join(dir, "mcqprep.log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Store {
	case store.BackendSQLite, store.BackendMemory:
	case store.BackendRedis:
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store %q (want sqlite, redis or memory)", c.Store)
	}
	if c.MixedCount < 1 {
		return fmt.Errorf("mixed_count must be positive, got %d", c.MixedCount)
	}
	if c.ReviewModule < 0 || c.ReviewModule > session.ModuleCount {
		return fmt.Errorf("review_module must be 0-%d, got %d", session.ModuleCount, c.ReviewModule)
	}
	return c.Explain.Validate()
}

// Backend returns the session store settings.
func (c *Config) Backend() store.BackendConfig {
	return store.BackendConfig{
		Kind:      c.Store,
		DBPath:    c.DB,
		RedisAddr: c.RedisAddr,
		Namespace: c.RedisNamespace,
	}
}

// Quiz returns the controller defaults. A review_count below 1 means all.
func (c *Config) Quiz() quiz.Config {
	return quiz.Config{
		MixedCount:   c.MixedCount,
		ReviewCount:  sampler.Of(c.ReviewCount),
		ReviewModule: c.ReviewModule,
	}
}

// DataHome returns the per-user data directory, $XDG_DATA_HOME/mcqprep or
// ~/.local/share/mcqprep.
func DataHome() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "mcqprep"), nil
}
