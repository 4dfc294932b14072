// Package main provides the cg CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/dataset"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/session"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

var (
	datasetFlag  string
	logLevelFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cg",
	Short: "Citation knowledge-graph explorer",
	Long: `cg explores a citation knowledge graph of papers and authors.

Core features:
  - Filter the graph by year, citation count, relation, dataset and text
  - Search papers, authors and dataset tags
  - Expand one-hop neighborhoods around a paper or an author
  - Serve a live 3D force-graph view over HTTP and WebSocket
  - Dataset usage analytics over an in-memory SQLite mirror

The dataset is a JSON array (or JSON Lines) of paper records, read from a
local file or fetched over HTTP. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&datasetFlag, "dataset", "", "Dataset file path or http(s) URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Version = Version
}

// mustSettings resolves the effective settings, exits on error.
func mustSettings() config.Settings {
	settings, err := config.Resolve(datasetFlag)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if logLevelFlag != "" {
		if _, err := config.ParseLogLevel(logLevelFlag); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		settings.LogLevel = logLevelFlag
	}
	return settings
}

// newLogger builds the stderr logger for the configured level.
func newLogger(settings config.Settings) *slog.Logger {
	level, err := config.ParseLogLevel(settings.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadModel fetches and normalizes the dataset.
func loadModel(ctx context.Context, settings config.Settings, logger *slog.Logger) (*graph.Model, error) {
	source, err := settings.RequireDataset()
	if err != nil {
		return nil, err
	}
	loader := dataset.NewLoader(source,
		dataset.WithFetchRate(settings.FetchRate),
		dataset.WithLogger(logger),
	)
	records, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return graph.Normalize(records)
}

// mustLoadModel loads the model, exits on error.
func mustLoadModel(ctx context.Context, settings config.Settings, logger *slog.Logger) *graph.Model {
	m, err := loadModel(ctx, settings, logger)
	if err == nil {
		return m
	}

	var malformed *graph.MalformedDatasetError
	switch {
	case errors.Is(err, config.ErrDatasetNotConfigured):
		if humanOutput {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		exitWithError(ExitConfigError, "%v", err)
	case errors.As(err, &malformed):
		exitWithError(ExitDataError, "%v", err)
	case dataset.IsNotFound(err):
		exitWithError(ExitConfigError, "%v", err)
	}
	exitWithError(ExitDataError, "loading dataset: %v", err)
	return nil
}

// mustController loads the model and wraps it in a session controller.
// The caller is responsible for calling Close() on the returned controller.
func mustController(ctx context.Context) (*session.Controller, config.Settings, *slog.Logger) {
	settings := mustSettings()
	logger := newLogger(settings)
	m := mustLoadModel(ctx, settings, logger)

	ctrl, err := session.New(m,
		session.WithSearchCacheSize(settings.SearchCacheSize),
		session.WithLogger(logger),
	)
	if err != nil {
		exitWithError(ExitError, "starting session: %v", err)
	}
	return ctrl, settings, logger
}
