package storage

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/nikbrunner/bmparse/internal/netscape"
)

// EnvPrefix prefixes every environment override, e.g. BMPARSE_FOLDER_TAGS.
const EnvPrefix = "BMPARSE_"

// Config holds application configuration.
type Config struct {
	IgnorePersonalToolbarFolder *bool  `json:"ignorePersonalToolbarFolder" env:"IGNORE_TOOLBAR"`
	IncludeFolderTags           *bool  `json:"includeFolderTags" env:"FOLDER_TAGS"`
	UseDateObjects              *bool  `json:"useDateObjects" env:"DATE_OBJECTS"`
	LogLevel                    string `json:"logLevel" env:"LOG_LEVEL"`
	StorePath                   string `json:"storePath" env:"STORE_PATH"`
}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		IgnorePersonalToolbarFolder: boolPtr(true),
		IncludeFolderTags:           boolPtr(true),
		UseDateObjects:              boolPtr(true),
		LogLevel:                    "warn",
	}
}

// LoadConfig reads config from the JSON file and applies BMPARSE_* environment
// overrides. Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	config, err := loadConfigFile(path)
	if err != nil {
		return nil, err
	}

	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, err
	}

	return config, nil
}

func loadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.IgnorePersonalToolbarFolder == nil {
		config.IgnorePersonalToolbarFolder = defaults.IgnorePersonalToolbarFolder
	}
	if config.IncludeFolderTags == nil {
		config.IncludeFolderTags = defaults.IncludeFolderTags
	}
	if config.UseDateObjects == nil {
		config.UseDateObjects = defaults.UseDateObjects
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ParseOptions converts the config into parser options.
func (c *Config) ParseOptions(logger *slog.Logger) netscape.Options {
	opts := netscape.DefaultOptions()
	if c.IgnorePersonalToolbarFolder != nil {
		opts.IgnorePersonalToolbarFolder = *c.IgnorePersonalToolbarFolder
	}
	if c.IncludeFolderTags != nil {
		opts.IncludeFolderTags = *c.IncludeFolderTags
	}
	if c.UseDateObjects != nil {
		opts.UseDateObjects = *c.UseDateObjects
	}
	opts.Logger = logger
	return opts
}

// DefaultConfigFilePath returns the default config path: ~/.config/bmparse/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
