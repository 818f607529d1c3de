package config

import "time"

// DefaultConfig returns the built-in configuration defaults. These
// values must stay in sync with setDefaults in load.go.
func DefaultConfig() *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			BaseDir:     "",
			CatalogPath: "",
		},
		AI: AIConfig{
			APIKeyEnvVar: "ANTHROPIC_API_KEY",
			Timeout:      2 * time.Minute,
			MaxTokens:    4096,
		},
		Budget: BudgetConfig{
			TotalUSD: 0,
		},
		Queue: QueueConfig{
			Workers: 3,
		},
		Webhook: WebhookConfig{
			Enabled: false,
			Addr:    ":8600",
		},
		Scheduler: SchedulerConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			Console:    true,
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
