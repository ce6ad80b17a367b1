// Civitas server: municipal 311 ticket triage with an LLM-driven
// dispatcher agent. Provides the HTTP API and runs dispatch requests
// against PostgreSQL-backed directory data.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/civitas-project/civitas/pkg/agent"
	"github.com/civitas-project/civitas/pkg/api"
	"github.com/civitas-project/civitas/pkg/config"
	"github.com/civitas-project/civitas/pkg/database"
	"github.com/civitas-project/civitas/pkg/llm"
	"github.com/civitas-project/civitas/pkg/services"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to environment file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Warn("Could not load env file, continuing with existing environment",
			"path", *envFile, "error", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting Civitas",
		"http_port", cfg.HTTPPort,
		"model", cfg.Dispatcher.Model,
		"max_iterations", cfg.Dispatcher.MaxIterations)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		slog.Error("Failed to load database config", "error", err)
		os.Exit(1)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbClient.Close()
	slog.Info("Connected to PostgreSQL database")

	store := services.NewStore(dbClient.Pool())
	directory := services.NewDirectoryService(store)
	tickets := services.NewTicketService(store)

	llmClient, err := llm.NewAnthropicClient(cfg.Dispatcher)
	if err != nil {
		slog.Error("Failed to initialize model client", "error", err)
		os.Exit(1)
	}
	slog.Info("Model client initialized", "model", cfg.Dispatcher.Model)

	executor := agent.NewDirectoryToolExecutor(directory)
	audit := agent.NewAuditLogger(cfg.Dispatcher.AuditDir)
	dispatcher := agent.NewDispatcher(llmClient, executor, audit, cfg.Dispatcher.MaxIterations)

	server := api.NewServer(directory, tickets, dispatcher, dbClient)

	slog.Info("HTTP server listening", "port", cfg.HTTPPort)
	if err := server.Run(ctx, cfg.HTTPPort, cfg.AllowedOrigins); err != nil {
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}
