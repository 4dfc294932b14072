package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matsen/citegraph/internal/dataset"
)

// Environment overrides. They take precedence over the config file.
const (
	EnvDataset   = "CG_DATASET"
	EnvListen    = "CG_LISTEN"
	EnvLogLevel  = "CG_LOG_LEVEL"
	EnvFetchRate = "CG_FETCH_RATE"
)

// Defaults for unset settings.
const (
	DefaultListen          = "127.0.0.1:8080"
	DefaultLogLevel        = "info"
	DefaultSearchCacheSize = 256
)

// ValidLogLevels lists the accepted log_level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ErrDatasetNotConfigured is returned when no dataset source is set anywhere.
var ErrDatasetNotConfigured = errors.New("dataset not configured")

// Settings is the effective configuration after the config file,
// environment and flags have been merged.
type Settings struct {
	Dataset         string  `json:"dataset"`
	Listen          string  `json:"listen"`
	LogLevel        string  `json:"log_level"`
	Watch           bool    `json:"watch"`
	SearchCacheSize int     `json:"search_cache_size"`
	FetchRate       float64 `json:"fetch_rate"`
}

// Resolve merges the global config file, the environment and the dataset
// flag (highest precedence) into Settings. Missing values get defaults. A
// missing dataset is not an error here; see RequireDataset.
func Resolve(flagDataset string) (Settings, error) {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		Dataset:         cfg.Dataset,
		Listen:          cfg.Listen,
		LogLevel:        cfg.LogLevel,
		Watch:           cfg.Watch,
		SearchCacheSize: cfg.SearchCacheSize,
		FetchRate:       cfg.FetchRate,
	}

	if v := os.Getenv(EnvDataset); v != "" {
		s.Dataset = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		s.Listen = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		s.LogLevel = v
	}
	if v := os.Getenv(EnvFetchRate); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s %q: %w", EnvFetchRate, v, err)
		}
		s.FetchRate = rate
	}
	if flagDataset != "" {
		s.Dataset = flagDataset
	}

	if s.Listen == "" {
		s.Listen = DefaultListen
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
	if s.SearchCacheSize <= 0 {
		s.SearchCacheSize = DefaultSearchCacheSize
	}
	if s.FetchRate <= 0 {
		s.FetchRate = dataset.DefaultFetchRate
	}
	if !dataset.IsRemote(s.Dataset) {
		s.Dataset = ExpandPath(s.Dataset)
	}

	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// RequireDataset returns the dataset source or ErrDatasetNotConfigured.
func (s Settings) RequireDataset() (string, error) {
	if s.Dataset == "" {
		return "", ErrDatasetNotConfigured
	}
	return s.Dataset, nil
}

// ParseLogLevel converts a log_level value to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q: must be one of %v", level, ValidLogLevels)
}

// ValidateDataset checks that a local dataset path exists and is a file.
// Remote sources are checked when fetched.
func ValidateDataset(source string) error {
	if source == "" || dataset.IsRemote(source) {
		return nil
	}
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("dataset does not exist: %s", source)
		}
		return fmt.Errorf("checking dataset: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("dataset is a directory: %s", source)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
