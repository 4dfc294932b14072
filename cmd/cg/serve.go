package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/citegraph/internal/dataset"
	"github.com/matsen/citegraph/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveListen string
	serveWatch  bool
)

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Address to listen on (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the dataset when the local file changes")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive explorer",
	Long: `Serve the interactive explorer over HTTP.

The page at / renders the current view as a 3D force graph and follows
updates over a WebSocket at /ws. Filters, search and expansion are
available under /api.

Examples:
  # Serve a local dataset
  cg serve --dataset papers.json

  # Listen on all interfaces and reload on file changes
  cg serve --listen :8080 --watch`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctrl, settings, logger := mustController(ctx)
	defer ctrl.Close()

	addr := settings.Listen
	if serveListen != "" {
		addr = serveListen
	}

	watch := settings.Watch || serveWatch
	if watch {
		if dataset.IsRemote(settings.Dataset) {
			logger.Warn("watch ignored for remote dataset", "source", settings.Dataset)
		} else {
			go func() {
				err := dataset.Watch(ctx, settings.Dataset, dataset.DefaultDebounce, func() {
					m, err := loadModel(ctx, settings, logger)
					if err != nil {
						logger.Error("reload failed, keeping previous dataset", "error", err)
						return
					}
					v := ctrl.Reload(m)
					logger.Info("dataset reloaded", "generation", v.Generation, "nodes", m.Len())
				})
				if err != nil {
					logger.Error("watching dataset", "error", err)
				}
			}()
		}
	}

	srv := server.New(ctrl, server.WithLogger(logger))
	defer srv.Close()

	if humanOutput {
		fmt.Fprintf(os.Stderr, "Serving %s on http://%s\n", settings.Dataset, addr)
	}
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	return nil
}
