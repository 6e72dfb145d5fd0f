package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Logging  LoggingConfig `mapstructure:"logging"`
	Prompt   PromptConfig  `mapstructure:"prompt"`
	Provider string        `mapstructure:"provider"` // Selected provider: ollama, openai
	Ollama   OllamaConfig  `mapstructure:"ollama"`
	OpenAI   OpenAIConfig  `mapstructure:"openai"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	File     string `mapstructure:"file"`
	Preserve bool   `mapstructure:"preserve"`
	Level    string `mapstructure:"level"`
}

// PromptConfig holds prompt composition configuration
type PromptConfig struct {
	Locale      string `mapstructure:"locale"`
	DefaultRole string `mapstructure:"default_role"`
	TemplateDir string `mapstructure:"template_dir"` // Extra YAML definitions loaded after the built-in catalog
	Placeholder string `mapstructure:"placeholder"`  // Chain preview stand-in for step results
}

// OllamaConfig holds Ollama-specific configuration
type OllamaConfig struct {
	URL        string        `mapstructure:"url"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"-"`
	TimeoutStr string        `mapstructure:"timeout"` // For parsing string duration
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base_url"` // For Azure or custom endpoints
	Timeout    time.Duration `mapstructure:"-"`
	TimeoutStr string        `mapstructure:"timeout"`
}

// Load loads configuration from file and environment
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome == "" {
			xdgConfigHome = filepath.Join(home, ".config")
		}

		viper.AddConfigPath("./.stagewise") // Check project directory first
		viper.AddConfigPath(filepath.Join(xdgConfigHome, "stagewise"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
	}

	viper.SetEnvPrefix("STAGEWISE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnvironmentVariables()

	// A missing config file is fine; a malformed one is not
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Post-process durations (viper doesn't handle time.Duration directly)
	if err := processDurations(loaded); err != nil {
		return nil, fmt.Errorf("failed to process durations: %w", err)
	}

	return loaded, nil
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("provider", "ollama")

	viper.SetDefault("prompt.locale", "en")
	viper.SetDefault("prompt.default_role", "non-researcher")
	viper.SetDefault("prompt.template_dir", "")
	viper.SetDefault("prompt.placeholder", "[OUTPUT FROM PREVIOUS STEP]")

	viper.SetDefault("ollama.url", "http://localhost:11434")
	viper.SetDefault("ollama.model", "qwen3:latest")
	viper.SetDefault("ollama.timeout", "90s")

	viper.SetDefault("openai.api_key", "")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.base_url", "")
	viper.SetDefault("openai.timeout", "60s")

	viper.SetDefault("logging.file", "./.stagewise/system.log")
	viper.SetDefault("logging.preserve", false)
	viper.SetDefault("logging.level", "info")
}

// bindEnvironmentVariables binds specific environment variables to Viper keys
func bindEnvironmentVariables() {
	viper.BindEnv("openai.api_key", "STAGEWISE_OPENAI_API_KEY", "OPENAI_API_KEY")
	viper.BindEnv("ollama.url", "STAGEWISE_OLLAMA_URL", "OLLAMA_HOST")
}

// processDurations converts string durations to time.Duration
func processDurations(c *Config) error {
	if c.Ollama.TimeoutStr != "" {
		d, err := time.ParseDuration(c.Ollama.TimeoutStr)
		if err != nil {
			return fmt.Errorf("invalid ollama.timeout: %w", err)
		}
		c.Ollama.Timeout = d
	}

	if c.OpenAI.TimeoutStr != "" {
		d, err := time.ParseDuration(c.OpenAI.TimeoutStr)
		if err != nil {
			return fmt.Errorf("invalid openai.timeout: %w", err)
		}
		c.OpenAI.Timeout = d
	}

	return nil
}

// WriteDefaultConfig writes the current configuration (defaults included) to path
func WriteDefaultConfig(path string) error {
	if path == "" {
		return fmt.Errorf("config file path not set")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	return nil
}
