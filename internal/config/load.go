package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/hiveworks/hive/internal/constants"
	"github.com/hiveworks/hive/internal/errors"
)

// newViperInstance creates a Viper instance with standard hive
// configuration: env prefix, key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("HIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults configures all default values on the Viper instance.
// These must match DefaultConfig(); keys match the YAML tag names.
func setDefaults(v *viper.Viper) {
	v.SetDefault("workspace.base_dir", "")
	v.SetDefault("workspace.catalog_path", "")

	v.SetDefault("ai.api_key_env_var", "ANTHROPIC_API_KEY")
	v.SetDefault("ai.timeout", "2m")
	v.SetDefault("ai.max_tokens", 4096)

	v.SetDefault("budget.total_usd", 0.0)

	v.SetDefault("queue.workers", 3)

	v.SetDefault("webhook.enabled", false)
	v.SetDefault("webhook.addr", ":8600")

	v.SetDefault("scheduler.enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
}

// isConfigNotFoundError returns true for viper's missing-file error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// GlobalConfigPath returns the global configuration file path,
// typically ~/.hive/config.yaml.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.HiveHome, "config.yaml"), nil
}

// ProjectConfigPath returns the project configuration file path,
// .hive/config.yaml relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.HiveHome, "config.yaml")
}

// Load reads configuration from all available sources with proper
// precedence. Missing config files are not errors.
func Load() (*Config, error) {
	v := newViperInstance()

	if globalPath, err := GlobalConfigPath(); err == nil && fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read global config file")
		}
	}

	if projectPath := ProjectConfigPath(); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrap(err, "failed to read project config file")
		}
	}

	return unmarshalAndValidate(v)
}

// LoadFromPaths loads configuration from specific file paths. Either
// path can be empty to skip that level. Used by tests and the --config
// flag.
func LoadFromPaths(projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// LoadWithOverrides loads configuration and applies CLI flag overrides,
// which have the highest precedence. Only non-zero override values are
// applied, so partial overrides work; boolean flags need explicit
// Changed() handling in the CLI layer.
func LoadWithOverrides(overrides *Config) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}
	return cfg, nil
}

func applyOverrides(cfg, overrides *Config) {
	if overrides.Workspace.BaseDir != "" {
		cfg.Workspace.BaseDir = overrides.Workspace.BaseDir
	}
	if overrides.Workspace.CatalogPath != "" {
		cfg.Workspace.CatalogPath = overrides.Workspace.CatalogPath
	}

	if overrides.AI.APIKeyEnvVar != "" {
		cfg.AI.APIKeyEnvVar = overrides.AI.APIKeyEnvVar
	}
	if overrides.AI.Timeout != 0 {
		cfg.AI.Timeout = overrides.AI.Timeout
	}
	if overrides.AI.MaxTokens != 0 {
		cfg.AI.MaxTokens = overrides.AI.MaxTokens
	}

	if overrides.Budget.TotalUSD != 0 {
		cfg.Budget.TotalUSD = overrides.Budget.TotalUSD
	}

	if overrides.Queue.Workers != 0 {
		cfg.Queue.Workers = overrides.Queue.Workers
	}

	if overrides.Webhook.Addr != "" {
		cfg.Webhook.Addr = overrides.Webhook.Addr
	}

	if overrides.Logging.Level != "" {
		cfg.Logging.Level = overrides.Logging.Level
	}
	if overrides.Logging.File != "" {
		cfg.Logging.File = overrides.Logging.File
	}
}

func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// viperDecoderOption configures mapstructure to convert duration
// strings like "2m" into time.Duration.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
