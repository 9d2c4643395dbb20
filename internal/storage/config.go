package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Lin-Jiong-HDU/aishell/internal/core/security"
)

const (
	ConfigFileName = "config"
	ConfigFileType = "yaml"
	AppDirName     = ".aishell"
	EnvPrefix      = "AISHELL"

	DefaultProvider = "openrouter"
	DefaultModel    = "openai/gpt-4o-mini"
)

var apiKeyEnv = []string{EnvPrefix + "_AI_API_KEY", "OPENROUTER_API_KEY"}

// Config holds the application configuration
type Config struct {
	AI       AIConfig                `mapstructure:"ai"`
	Security security.SecurityPolicy `mapstructure:"security"`
	Shell    ShellConfig             `mapstructure:"shell"`
	Log      LogConfig               `mapstructure:"log"`
	REPL     REPLConfig              `mapstructure:"repl"`
}

// AIConfig holds AI-related configuration
type AIConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	BaseURL      string `mapstructure:"base_url"`
	Timeout      int    `mapstructure:"timeout"`
	SystemPrompt string `mapstructure:"system_prompt"`

	// envKey is the key supplied by the environment. It is never saved.
	envKey string
	// storedKey is the key held in the config file.
	storedKey string
}

// keyToSave returns the key that belongs in the config file: the effective
// key, unless it only came from the environment.
func (c AIConfig) keyToSave() string {
	if c.envKey != "" && c.APIKey == c.envKey {
		return c.storedKey
	}
	return c.APIKey
}

// envAPIKey mirrors the precedence of the api key env bindings.
func envAPIKey() string {
	for _, name := range apiKeyEnv {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return ""
}

// ShellConfig holds settings for locally executed commands.
type ShellConfig struct {
	// Timeout in seconds; 0 lets commands run to completion.
	Timeout int `mapstructure:"timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// REPLConfig holds settings for the interactive prompt.
type REPLConfig struct {
	History bool `mapstructure:"history"`
}

// GetConfigDir returns the aishell config directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, AppDirName), nil
}

// InitConfig loads the configuration from the default directory.
func InitConfig() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadConfig(configDir)
}

func newViper(configDir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileType)
	v.AddConfigPath(configDir)
	return v
}

// LoadConfig reads config.yaml from configDir, applies defaults and
// AISHELL_* environment overrides. A missing file is not an error.
func LoadConfig(configDir string) (*Config, error) {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configDir)

	v.SetDefault("ai.provider", DefaultProvider)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", DefaultModel)
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.timeout", 60)
	v.SetDefault("ai.system_prompt", "")

	v.SetDefault("security.command_level", string(security.ConfirmVerdict))
	v.SetDefault("security.restricted_paths", []string{})
	v.SetDefault("security.readonly_paths", []string{})

	v.SetDefault("shell.timeout", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("repl.history", true)

	// AISHELL_AI_MODEL overrides ai.model and so on.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(append([]string{"ai.api_key"}, apiKeyEnv...)...); err != nil {
		return nil, fmt.Errorf("failed to bind api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	level, err := security.ParseConfirmLevel(string(cfg.Security.CommandLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid security config: %w", err)
	}
	cfg.Security.CommandLevel = level

	cfg.AI.storedKey = cfg.AI.APIKey
	if cfg.AI.envKey = envAPIKey(); cfg.AI.envKey != "" {
		cfg.AI.storedKey = fileKey(configDir)
	}

	return &cfg, nil
}

// fileKey reads the api key from the config file alone, ignoring the environment.
func fileKey(configDir string) string {
	v := newViper(configDir)
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return v.GetString("ai.api_key")
}

// SaveConfig writes cfg to configDir. The file holds the API key, so it is
// readable by the owner only. A key that came from the environment is not
// written.
func SaveConfig(configDir string, cfg *Config) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configDir)
	v.SetConfigPermissions(0o600)

	key := cfg.AI.keyToSave()
	v.Set("ai.provider", cfg.AI.Provider)
	v.Set("ai.api_key", key)
	v.Set("ai.model", cfg.AI.Model)
	v.Set("ai.base_url", cfg.AI.BaseURL)
	v.Set("ai.timeout", cfg.AI.Timeout)
	v.Set("ai.system_prompt", cfg.AI.SystemPrompt)

	v.Set("security.command_level", string(cfg.Security.CommandLevel))
	v.Set("security.restricted_paths", cfg.Security.RestrictedPaths)
	v.Set("security.readonly_paths", cfg.Security.ReadOnlyPaths)

	v.Set("shell.timeout", cfg.Shell.Timeout)
	v.Set("log.level", cfg.Log.Level)
	v.Set("repl.history", cfg.REPL.History)

	// An existing file keeps its mode when rewritten, so narrow it first.
	configPath := ConfigPath(configDir)
	if err := os.Chmod(configPath, 0o600); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to restrict config permissions: %w", err)
	}
	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	cfg.AI.storedKey = key
	return nil
}

// ConfigPath returns the config file location inside configDir.
func ConfigPath(configDir string) string {
	return filepath.Join(configDir, ConfigFileName+"."+ConfigFileType)
}

// MaskKey hides all but the first and last four characters of a secret.
// Keys of eight characters or fewer are hidden entirely.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
