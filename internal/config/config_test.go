package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiveworks/hive/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.AI.APIKeyEnvVar)
	assert.Equal(t, 2*time.Minute, cfg.AI.Timeout)
	assert.Equal(t, 3, cfg.Queue.Workers)
	assert.Equal(t, ":8600", cfg.Webhook.Addr)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromPaths_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFromPaths("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromPaths_GlobalConfig(t *testing.T) {
	t.Parallel()

	global := writeConfig(t, `
budget:
  total_usd: 500
queue:
  workers: 8
ai:
  timeout: 5m
`)

	cfg, err := LoadFromPaths("", global)
	require.NoError(t, err)
	assert.InDelta(t, 500.0, cfg.Budget.TotalUSD, 1e-9)
	assert.Equal(t, 8, cfg.Queue.Workers)
	assert.Equal(t, 5*time.Minute, cfg.AI.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level, "untouched keys keep defaults")
}

func TestLoadFromPaths_ProjectOverridesGlobal(t *testing.T) {
	t.Parallel()

	global := writeConfig(t, "queue:\n  workers: 8\nbudget:\n  total_usd: 500\n")
	project := writeConfig(t, "queue:\n  workers: 2\n")

	cfg, err := LoadFromPaths(project, global)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Queue.Workers, "project wins")
	assert.InDelta(t, 500.0, cfg.Budget.TotalUSD, 1e-9, "global survives where project is silent")
}

func TestLoadFromPaths_InvalidValues(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "queue:\n  workers: 99\n")

	_, err := LoadFromPaths(path, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "queue.workers")
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HIVE_QUEUE_WORKERS", "5")
	t.Setenv("HIVE_LOGGING_LEVEL", "debug")

	cfg, err := LoadFromPaths("", "")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Queue.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadWithOverrides(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	applyOverrides(cfg, &Config{
		Workspace: WorkspaceConfig{BaseDir: "/var/lib/hive"},
		Budget:    BudgetConfig{TotalUSD: 1000},
		Queue:     QueueConfig{Workers: 6},
	})

	assert.Equal(t, "/var/lib/hive", cfg.Workspace.BaseDir)
	assert.InDelta(t, 1000.0, cfg.Budget.TotalUSD, 1e-9)
	assert.Equal(t, 6, cfg.Queue.Workers)
	assert.Equal(t, "info", cfg.Logging.Level, "zero-valued overrides are ignored")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"nil timeout", func(c *Config) { c.AI.Timeout = 0 }, "ai.timeout"},
		{"max tokens too large", func(c *Config) { c.AI.MaxTokens = 100000 }, "ai.max_tokens"},
		{"negative budget", func(c *Config) { c.Budget.TotalUSD = -1 }, "budget.total_usd"},
		{"zero workers", func(c *Config) { c.Queue.Workers = 0 }, "queue.workers"},
		{"webhook enabled without addr", func(c *Config) { c.Webhook.Enabled = true; c.Webhook.Addr = "" }, "webhook.addr"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrConfigInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.ErrorIs(t, Validate(nil), errors.ErrConfigInvalid)
}
