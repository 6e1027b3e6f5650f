package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database    DatabaseConfig
	Suggestions SuggestionsConfig
	Log         LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// SuggestionsConfig tunes the advisory suggestion engine. These are
// startup defaults; the runtime on/off switch lives in the app_config
// singleton so it travels with backups.
type SuggestionsConfig struct {
	MinConfidence    float64 `mapstructure:"min_confidence"`
	ReviewConfidence float64 `mapstructure:"review_confidence"`
	MaxSuggestedTags int     `mapstructure:"max_suggested_tags"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix MONEDERO_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "monedero", "monedero.db"))
	v.SetDefault("suggestions.min_confidence", 0.7)
	v.SetDefault("suggestions.review_confidence", 0.5)
	v.SetDefault("suggestions.max_suggested_tags", 2)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MONEDERO_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "monedero"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MONEDERO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("MONEDERO_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "monedero", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("suggestions.min_confidence", cfg.Suggestions.MinConfidence)
	v.Set("suggestions.review_confidence", cfg.Suggestions.ReviewConfidence)
	v.Set("suggestions.max_suggested_tags", cfg.Suggestions.MaxSuggestedTags)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
