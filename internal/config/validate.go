package config

import (
	"github.com/hiveworks/hive/internal/errors"
)

// validLogLevels are the accepted logging.level values.
//
//nolint:gochecknoglobals // Read-only lookup table
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for invalid or inconsistent
// values. It returns an error describing the first failure found.
//
// Validation rules:
//   - AI timeout must be positive
//   - AI max tokens must be between 1 and 64000
//   - Budget total must not be negative
//   - Queue workers must be between 1 and 32
//   - Webhook addr must not be empty when enabled
//   - Logging level must be a known level
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.Wrap(errors.ErrConfigInvalid, "config is nil")
	}

	if cfg.AI.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"ai.timeout must be positive, got %s", cfg.AI.Timeout)
	}
	if cfg.AI.MaxTokens < 1 || cfg.AI.MaxTokens > 64000 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"ai.max_tokens must be between 1 and 64000, got %d", cfg.AI.MaxTokens)
	}

	if cfg.Budget.TotalUSD < 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"budget.total_usd must not be negative, got %.2f", cfg.Budget.TotalUSD)
	}

	if cfg.Queue.Workers < 1 || cfg.Queue.Workers > 32 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"queue.workers must be between 1 and 32, got %d", cfg.Queue.Workers)
	}

	if cfg.Webhook.Enabled && cfg.Webhook.Addr == "" {
		return errors.Wrap(errors.ErrConfigInvalid,
			"webhook.addr must be set when webhook.enabled is true")
	}

	if !validLogLevels[cfg.Logging.Level] {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"logging.level must be one of trace, debug, info, warn, error; got %q", cfg.Logging.Level)
	}

	return nil
}
