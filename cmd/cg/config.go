package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/dataset"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set values in the global config file (~/.config/cg/config.yml).

Usage:
  cg config                              # Show effective settings
  cg config dataset                      # Get a value from the config file
  cg config dataset ~/data/papers.json   # Set the default dataset
  cg config listen :9090                 # Set the serve address

Keys:
  dataset            Dataset file path or http(s) URL
  listen             Address for cg serve (default 127.0.0.1:8080)
  log-level          debug, info, warn or error
  watch              Reload the dataset on file changes (true/false)
  search-cache-size  Number of memoized search results
  fetch-rate         Maximum remote fetch attempts per second

Environment variables CG_DATASET, CG_LISTEN, CG_LOG_LEVEL and
CG_FETCH_RATE override the file, and --dataset overrides both.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// ConfigUpdateResponse is the response for config set commands.
type ConfigUpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
	Path   string `json:"path"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	// No args: show effective settings
	if len(args) == 0 {
		settings := mustSettings()
		if humanOutput {
			fmt.Printf("config:            %s\n", config.GlobalConfigPath())
			fmt.Printf("dataset:           %s\n", settings.Dataset)
			fmt.Printf("listen:            %s\n", settings.Listen)
			fmt.Printf("log-level:         %s\n", settings.LogLevel)
			fmt.Printf("watch:             %t\n", settings.Watch)
			fmt.Printf("search-cache-size: %d\n", settings.SearchCacheSize)
			fmt.Printf("fetch-rate:        %g\n", settings.FetchRate)
			return nil
		}
		return outputJSON(settings)
	}

	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	key := args[0]
	normalizedKey := normalizeKey(key)

	// One arg: get specific value
	if len(args) == 1 {
		value, ok := configValue(cfg, normalizedKey)
		if !ok {
			exitWithError(ExitError, "unknown configuration key: %s", key)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{strings.ReplaceAll(normalizedKey, "-", "_"): value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := setConfigValue(cfg, normalizedKey, value); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if err := config.SaveGlobalConfig(cfg); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", normalizedKey, value)
	} else {
		outputJSON(ConfigUpdateResponse{
			Status: "updated",
			Key:    normalizedKey,
			Value:  value,
			Path:   config.GlobalConfigPath(),
		})
	}
	return nil
}

// configValue returns the file value for a normalized key.
func configValue(cfg *config.GlobalConfig, key string) (string, bool) {
	switch key {
	case "dataset":
		return cfg.Dataset, true
	case "listen":
		return cfg.Listen, true
	case "log-level":
		return cfg.LogLevel, true
	case "watch":
		return strconv.FormatBool(cfg.Watch), true
	case "search-cache-size":
		return strconv.Itoa(cfg.SearchCacheSize), true
	case "fetch-rate":
		return strconv.FormatFloat(cfg.FetchRate, 'g', -1, 64), true
	}
	return "", false
}

// setConfigValue validates value and stores it under a normalized key.
func setConfigValue(cfg *config.GlobalConfig, key, value string) error {
	switch key {
	case "dataset":
		if !dataset.IsRemote(value) {
			expanded := config.ExpandPath(value)
			if err := config.ValidateDataset(expanded); err != nil {
				return err
			}
			value = expanded
		}
		cfg.Dataset = value

	case "listen":
		cfg.Listen = value

	case "log-level":
		if _, err := config.ParseLogLevel(value); err != nil {
			return err
		}
		cfg.LogLevel = value

	case "watch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid watch value %q: must be true or false", value)
		}
		cfg.Watch = b

	case "search-cache-size":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid search-cache-size %q: must be a positive integer", value)
		}
		cfg.SearchCacheSize = n

	case "fetch-rate":
		r, err := strconv.ParseFloat(value, 64)
		if err != nil || r <= 0 {
			return fmt.Errorf("invalid fetch-rate %q: must be a positive number", value)
		}
		cfg.FetchRate = r

	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// normalizeKey converts key formats (log-level, log_level, LOG_LEVEL) to a consistent format
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "-")
	return key
}
