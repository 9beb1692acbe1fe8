package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shelfware/stockwise"
	"github.com/shelfware/stockwise/infrastructure/api"
	"github.com/shelfware/stockwise/internal/config"
	"github.com/shelfware/stockwise/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                     Server host to bind to (default: 0.0.0.0)
  PORT                     Server port to listen on (default: 8080)
  DATA_DIR                 Data directory (default: .stockwise)
  DB_URL                   Database URL (default: sqlite:///{data_dir}/stockwise.db)
  LOG_LEVEL                Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT               Log format: pretty, json (default: pretty)
  API_KEYS                 Comma-separated keys required on catalog writes

  EMBEDDING_ENDPOINT_*     Embedding AI service configuration
    BASE_URL               Base URL (e.g., https://api.openai.com/v1)
    MODEL                  Model identifier (e.g., text-embedding-3-small)
    API_KEY                API key for authentication
    TIMEOUT                Request timeout in seconds (default: 60)
    MAX_RETRIES            Retry attempts (default: 3)

  SYNTHESIS_ENDPOINT_*     Answer synthesis AI service configuration
    (same fields as EMBEDDING_ENDPOINT)

  LOCAL_MODEL_DIR          Directory with a local ONNX embedding model
  ASK_INDEX                Vector index: collection, flat (default: collection)
  ASK_DISTANCE_THRESHOLD   Retrieval relevance cutoff (default: 1.35)
  LOW_STOCK_THRESHOLD      Dashboard low-stock cutoff (default: 10)
  EXPIRY_WINDOW_DAYS       Dashboard expiring-soon window (default: 30)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Flags take precedence over env vars.
	if host != "" {
		cfg = cfg.WithHost(host)
	}
	if port != 0 {
		cfg = cfg.WithPort(port)
	}

	logger := log.NewLogger(cfg)
	logger.SetDefault()
	slogger := logger.Slog()

	client, err := stockwise.New(
		stockwise.WithConfig(cfg),
		stockwise.WithLogger(slogger),
	)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("close client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client, cfg.APIKeys())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slogger.Info("shutting down server")
		cancel()
		if err := apiServer.Shutdown(ctx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	addr := cfg.Addr()
	slogger.Info("starting server", slog.String("addr", addr))
	if err := apiServer.ListenAndServe(addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
