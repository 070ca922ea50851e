package internal

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type SourcesConfig struct {
	// WorkspaceStorage is the editor's workspace storage root, scanned
	// for per-workspace state databases. Empty disables the scan.
	WorkspaceStorage string `yaml:"workspace_storage,omitempty"`
	// ChatDir overrides the default chat directory inside the scope.
	ChatDir string `yaml:"chat_dir,omitempty"`
}

type BudgetConfig struct {
	MaxTotalTokens int `yaml:"max_total_tokens"`
	TokenBuffer    int `yaml:"token_buffer"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type Config struct {
	Sources              SourcesConfig `yaml:"sources"`
	Budget               BudgetConfig  `yaml:"budget"`
	Watch                WatchConfig   `yaml:"watch"`
	CompressionThreshold int           `yaml:"compression_threshold"`
	History              bool          `yaml:"history"`
}

func DefaultConfig() *Config {
	limits := DefaultLimits()
	return &Config{
		Budget: BudgetConfig{
			MaxTotalTokens: limits.MaxTotalTokens,
			TokenBuffer:    limits.TokenBuffer,
		},
		Watch:                WatchConfig{Debounce: 500 * time.Millisecond},
		CompressionThreshold: DefaultCompressionThreshold,
	}
}

func LoadConfig(scope Scope) (*Config, error) {
	path := scope.ConfigPath()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Budget.MaxTotalTokens <= 0 {
		cfg.Budget.MaxTotalTokens = DefaultLimits().MaxTotalTokens
	}
	if cfg.Budget.TokenBuffer < 0 {
		cfg.Budget.TokenBuffer = 0
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	return cfg, nil
}

func SaveConfig(scope Scope, cfg *Config) error {
	path := scope.ConfigPath()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Limits derives composer limits from the configured budget.
func (c *Config) Limits() Limits {
	limits := DefaultLimits()
	limits.MaxTotalTokens = c.Budget.MaxTotalTokens
	limits.TokenBuffer = c.Budget.TokenBuffer
	return limits
}
