package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config models planline.yml plus the credential read from the environment.
// It is built once at process start and passed by reference; nothing mutates
// it afterwards.
type Config struct {
	API struct {
		// Key is never read from YAML; it comes from GEMINI_API_KEY.
		Key     string `yaml:"-"`
		BaseURL string `yaml:"base_url"`
		// TimeoutSeconds bounds each generation attempt.
		TimeoutSeconds int `yaml:"timeout_seconds"`
		// RatePerSecond limits outbound calls when > 0; 0 disables limiting.
		RatePerSecond float64 `yaml:"rate_per_second"`
	} `yaml:"api"`
	// Models is the candidate list in priority order. Order is meaningful
	// and is never re-sorted.
	Models     []string `yaml:"models"`
	Generation struct {
		Temperature     float64 `yaml:"temperature"`
		MaxOutputTokens int     `yaml:"max_output_tokens"`
		TopP            float64 `yaml:"top_p"`
		TopK            int     `yaml:"top_k"`
	} `yaml:"generation"`
	Fallback struct {
		// DefaultBudgetHours is used when no timeframe is supplied.
		DefaultBudgetHours int `yaml:"default_budget_hours"`
	} `yaml:"fallback"`
}

// Timeout returns the per-attempt timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config.api.base_url is required")
	}
	if c.API.TimeoutSeconds <= 0 {
		return fmt.Errorf("config.api.timeout_seconds must be positive")
	}
	if c.API.RatePerSecond < 0 {
		return fmt.Errorf("config.api.rate_per_second must not be negative")
	}
	if len(c.Models) == 0 {
		return fmt.Errorf("config.models must list at least one candidate")
	}
	for i, m := range c.Models {
		if m == "" {
			return fmt.Errorf("config.models[%d] is empty", i)
		}
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("config.generation.temperature must be in [0,2]")
	}
	if c.Generation.MaxOutputTokens <= 0 {
		return fmt.Errorf("config.generation.max_output_tokens must be positive")
	}
	if c.Generation.TopP <= 0 || c.Generation.TopP > 1 {
		return fmt.Errorf("config.generation.top_p must be in (0,1]")
	}
	if c.Generation.TopK <= 0 {
		return fmt.Errorf("config.generation.top_k must be positive")
	}
	if c.Fallback.DefaultBudgetHours <= 0 {
		return fmt.Errorf("config.fallback.default_budget_hours must be positive")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "planline.yml")
}

// Default returns the built-in config. The model list mirrors the currently
// published generateContent endpoints in reliability order.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Omitted sections
// keep their defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the defaults if the workspace has no planline.yml.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `api:
  base_url: https://generativelanguage.googleapis.com/v1beta/models
  timeout_seconds: 30
  rate_per_second: 0

models:
  - gemini-2.0-flash
  - gemini-2.0-flash-001
  - gemini-2.0-flash-lite
  - gemini-2.0-flash-lite-001
  - gemini-pro-latest
  - gemini-2.5-flash
  - gemini-2.5-pro

generation:
  temperature: 0.7
  max_output_tokens: 800
  top_p: 0.8
  top_k: 40

fallback:
  default_budget_hours: 8
`
