// Package config handles the global cg configuration file and the
// environment overrides layered on top of it.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/cg/config.yml.
type GlobalConfig struct {
	Dataset         string  `yaml:"dataset,omitempty"`
	Listen          string  `yaml:"listen,omitempty"`
	LogLevel        string  `yaml:"log_level,omitempty"`
	Watch           bool    `yaml:"watch,omitempty"`
	SearchCacheSize int     `yaml:"search_cache_size,omitempty"`
	FetchRate       float64 `yaml:"fetch_rate,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "cg"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/cg/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// SaveGlobalConfig writes cfg to the global config file, creating its
// directory if needed, and refreshes the cache.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding global config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	globalConfigCache = cfg
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// HelpfulConfigMessage returns a helpful message when no dataset is configured.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No dataset configured.

Pass one with --dataset, set %s, or create %s:
  mkdir -p %s
  echo 'dataset: /path/to/papers.json' > %s`,
		EnvDataset,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
