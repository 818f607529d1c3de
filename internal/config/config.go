// Package config provides configuration management for hive with
// layered precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (HIVE_* prefix)
//  3. Project config (.hive/config.yaml)
//  4. Global config (~/.hive/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same
// key.
//
// IMPORTANT: This package may import internal/constants and
// internal/errors, but MUST NOT import internal/domain or other
// internal packages.
package config

import "time"

// Config is the root configuration structure for hive.
type Config struct {
	// Workspace contains settings for the on-disk state store.
	Workspace WorkspaceConfig `yaml:"workspace" mapstructure:"workspace"`

	// AI contains settings for model calls.
	AI AIConfig `yaml:"ai" mapstructure:"ai"`

	// Budget contains spend-based admission control settings.
	Budget BudgetConfig `yaml:"budget" mapstructure:"budget"`

	// Queue contains worker pool settings.
	Queue QueueConfig `yaml:"queue" mapstructure:"queue"`

	// Webhook contains HTTP ingestion settings.
	Webhook WebhookConfig `yaml:"webhook" mapstructure:"webhook"`

	// Scheduler contains cron scheduling settings.
	Scheduler SchedulerConfig `yaml:"scheduler" mapstructure:"scheduler"`

	// Logging contains log output settings.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// WorkspaceConfig contains settings for the on-disk state store.
type WorkspaceConfig struct {
	// BaseDir is the workspace root. Empty means ~/.hive.
	BaseDir string `yaml:"base_dir" mapstructure:"base_dir"`

	// CatalogPath optionally points at a YAML skill catalog that
	// replaces the compiled-in defaults.
	CatalogPath string `yaml:"catalog_path" mapstructure:"catalog_path"`
}

// AIConfig contains settings for model calls.
type AIConfig struct {
	// APIKeyEnvVar names the environment variable holding the Anthropic
	// API key.
	// Default: "ANTHROPIC_API_KEY"
	APIKeyEnvVar string `yaml:"api_key_env_var" mapstructure:"api_key_env_var"`

	// Timeout is the maximum duration of one model call.
	// Default: 2 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxTokens bounds model responses.
	// Default: 4096, valid range 1-64000
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// BudgetConfig contains spend-based admission control settings.
type BudgetConfig struct {
	// TotalUSD is the spend ceiling driving the budget levels. Zero
	// means unlimited (the budget state stays at 0%).
	TotalUSD float64 `yaml:"total_usd" mapstructure:"total_usd"`
}

// QueueConfig contains worker pool settings.
type QueueConfig struct {
	// Workers is the number of parallel agent executions.
	// Default: 3, valid range 1-32
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// WebhookConfig contains HTTP ingestion settings.
type WebhookConfig struct {
	// Enabled turns the webhook listener on.
	// Default: false
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Addr is the listen address.
	// Default: ":8600"
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// SchedulerConfig contains cron scheduling settings.
type SchedulerConfig struct {
	// Enabled turns scheduled pipeline templates on.
	// Default: false
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	// Level is the minimum level written (trace, debug, info, warn,
	// error).
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// File is the log file path. Empty disables file logging.
	File string `yaml:"file" mapstructure:"file"`

	// Console enables human-readable console output on stderr.
	// Default: true
	Console bool `yaml:"console" mapstructure:"console"`

	// MaxSizeMB is the log file size that triggers rotation.
	// Default: 10
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb"`

	// MaxBackups is the number of rotated files kept.
	// Default: 3
	MaxBackups int `yaml:"max_backups" mapstructure:"max_backups"`
}
