package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/accessboard/accessboard/internal/config"
	"github.com/accessboard/accessboard/internal/dashboard"
	"github.com/accessboard/accessboard/internal/projects"
	"github.com/accessboard/accessboard/internal/webservice"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web server",
		Long:  "Serves the project list, project pages and task forms. Runs without project grouping when no projects block is configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "accessboard.yaml", "path to config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port <= 0 {
		port = cfg.Port
	}

	log, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	// A missing projects block disables grouping rather than failing.
	var store *projects.Store
	if cfg.ProjectsEnabled() {
		store, err = openStore(cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()
	} else {
		log.Warn("projects block not configured; project features disabled")
	}

	client := webservice.NewClient(cfg.Webservice.URL, &http.Client{Timeout: 30 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	log.Info("starting dashboard", zap.String("webservice", cfg.Webservice.URL))
	return dashboard.Start(ctx, dashboard.StartOpts{
		Store:  store,
		Tasks:  client,
		Port:   port,
		Logger: log,
		Out:    cmd.OutOrStdout(),
	})
}
