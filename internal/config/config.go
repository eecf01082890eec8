// Package config loads Cognitio settings from defaults, a YAML file, a
// .env file, COGNITIO_* environment variables and command-line overrides,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/cognitio-libera/cognitio/internal/llm"
)

// EnvPrefix is prepended to every environment variable, with dots in the
// key replaced by underscores: llm.provider is COGNITIO_LLM_PROVIDER.
const EnvPrefix = "COGNITIO"

// Config holds all application configuration.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Practice PracticeConfig `mapstructure:"practice" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`

	// DB is the diagnostics database path. Empty means the default
	// location.
	DB string `mapstructure:"db"`

	// Trace prints OpenTelemetry spans to stderr.
	Trace bool `mapstructure:"trace"`

	// ReportDir is where progress reports are written.
	ReportDir string `mapstructure:"report_dir" validate:"required"`
}

// LLMConfig selects and tunes the model provider.
type LLMConfig struct {
	// Provider is empty when not configured; the first provider with a
	// standard API key variable is then used.
	Provider         string        `mapstructure:"provider" validate:"omitempty,oneof=gemini anthropic openai openrouter mock"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxTokens        int           `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature      float64       `mapstructure:"temperature" validate:"gte=0,lte=1"`
	MaxAttempts      int           `mapstructure:"max_attempts" validate:"gte=1,lte=5"`
	StructuredOutput bool          `mapstructure:"structured_output"`

	Gemini     ProviderConfig `mapstructure:"gemini"`
	Anthropic  ProviderConfig `mapstructure:"anthropic"`
	OpenAI     ProviderConfig `mapstructure:"openai"`
	OpenRouter ProviderConfig `mapstructure:"openrouter"`

	Retry RetryConfig `mapstructure:"retry"`
}

// ProviderConfig holds one provider's credentials and model.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model" validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
}

// RetryConfig mirrors llm.RetryConfig.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gte=1"`
	InitialWait time.Duration `mapstructure:"initial_wait" validate:"gte=0"`
	MaxWait     time.Duration `mapstructure:"max_wait" validate:"gtefield=InitialWait"`
	Multiplier  float64       `mapstructure:"multiplier" validate:"gte=1"`
}

// PracticeConfig holds the session defaults.
type PracticeConfig struct {
	Language   string `mapstructure:"language" validate:"required"`
	Difficulty string `mapstructure:"difficulty" validate:"required"`
	Mode       string `mapstructure:"mode" validate:"oneof=coding quiz"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=pretty json"`
}

// Options controls where Load looks.
type Options struct {
	// File is an explicit YAML config file. It must exist when set.
	// When empty, DefaultFile is read if present.
	File string

	// EnvFile is a dotenv file loaded into the process environment without
	// overriding variables already set. Missing files are ignored.
	EnvFile string

	// Overrides are applied last, keyed by dotted config key.
	Overrides map[string]any
}

func defaults() map[string]any {
	d := llm.DefaultConfig()
	return map[string]any{
		"llm.timeout":           d.Timeout,
		"llm.max_tokens":        2048,
		"llm.temperature":       0.7,
		"llm.max_attempts":      2,
		"llm.structured_output": false,

		"llm.gemini.model":        d.Gemini.Model,
		"llm.anthropic.model":     d.Anthropic.Model,
		"llm.openai.model":        d.OpenAI.Model,
		"llm.openrouter.model":    d.OpenRouter.Model,
		"llm.openrouter.base_url": "https://openrouter.ai/api/v1",

		"llm.retry.max_attempts": d.Retry.MaxAttempts,
		"llm.retry.initial_wait": d.Retry.InitialWait,
		"llm.retry.max_wait":     d.Retry.MaxWait,
		"llm.retry.multiplier":   d.Retry.Multiplier,

		"practice.language":   "Python",
		"practice.difficulty": "Easy",
		"practice.mode":       "coding",

		"log.level":  "warn",
		"log.format": "pretty",

		"db":         "",
		"trace":      false,
		"report_dir": ".",
	}
}

// Keys without a default that must still be read from the environment.
var envOnly = []string{
	"llm.provider",
	"llm.gemini.api_key",
	"llm.anthropic.api_key",
	"llm.openai.api_key",
	"llm.openai.base_url",
	"llm.openrouter.api_key",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates the configuration.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envOnly {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	file := opts.File
	if file == "" {
		if def, err := DefaultFile(); err == nil {
			if _, err := os.Stat(def); err == nil {
				file = def
			}
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// DefaultFile returns $XDG_CONFIG_HOME/cognitio/config.yaml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultFile() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "cognitio", "config.yaml"), nil
}

// Provider maps the configuration onto llm.Config. With no provider
// configured, llm.DiscoverConfig picks the first provider with a standard
// key variable; with none found the default provider is kept. A configured
// provider without a key falls back to its own standard variable.
func (c *Config) Provider() llm.Config {
	lc := llm.DefaultConfig()
	lc.Timeout = c.LLM.Timeout
	lc.Gemini = llm.GeminiConfig{APIKey: c.LLM.Gemini.APIKey, Model: c.LLM.Gemini.Model}
	lc.Anthropic = llm.AnthropicConfig{APIKey: c.LLM.Anthropic.APIKey, Model: c.LLM.Anthropic.Model}
	lc.OpenAI = llm.OpenAIConfig{APIKey: c.LLM.OpenAI.APIKey, Model: c.LLM.OpenAI.Model, BaseURL: c.LLM.OpenAI.BaseURL}
	lc.OpenRouter = llm.OpenRouterConfig{APIKey: c.LLM.OpenRouter.APIKey, Model: c.LLM.OpenRouter.Model, BaseURL: c.LLM.OpenRouter.BaseURL}
	lc.Retry = llm.RetryConfig{
		MaxAttempts: c.LLM.Retry.MaxAttempts,
		InitialWait: c.LLM.Retry.InitialWait,
		MaxWait:     c.LLM.Retry.MaxWait,
		Multiplier:  c.LLM.Retry.Multiplier,
	}

	if c.LLM.Provider == "" {
		if lc.HasKey() {
			return lc
		}
		if found, ok := llm.DiscoverConfig(lc); ok {
			return found
		}
		return lc
	}

	lc.Provider = c.LLM.Provider
	if lc.HasKey() {
		return lc
	}
	key := firstEnv(standardKeys[lc.Provider]...)
	switch lc.Provider {
	case "gemini":
		lc.Gemini.APIKey = key
	case "openai":
		lc.OpenAI.APIKey = key
	case "anthropic":
		lc.Anthropic.APIKey = key
	case "openrouter":
		lc.OpenRouter.APIKey = key
	}
	return lc
}

var standardKeys = map[string][]string{
	"gemini":     {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"openai":     {"OPENAI_API_KEY"},
	"anthropic":  {"ANTHROPIC_API_KEY"},
	"openrouter": {"OPENROUTER_API_KEY"},
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
