package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/prepdeck/prepdeck/api"
	"github.com/prepdeck/prepdeck/db"
	"github.com/prepdeck/prepdeck/internal/config"
	internaldb "github.com/prepdeck/prepdeck/internal/db"
	"github.com/prepdeck/prepdeck/internal/genai"
	"github.com/prepdeck/prepdeck/internal/jobs"
	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/internal/repository/sqlite"
	"github.com/prepdeck/prepdeck/internal/session"
	"github.com/prepdeck/prepdeck/pkg/llm"
	"github.com/prepdeck/prepdeck/pkg/llm/ollama"
	"github.com/prepdeck/prepdeck/pkg/llm/openrouter"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	logger.Info("starting prepdeck server",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("addr", cfg.Addr))

	ctx := context.Background()

	conn, err := internaldb.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}

	if err := internaldb.Migrate(ctx, conn, db.Migrations); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	repo := sqlite.New(conn, logger)

	provider, closeProvider, err := buildProvider(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build LLM provider: %v", err)
	}

	generator, err := genai.NewGenerator(provider, logger)
	if err != nil {
		log.Fatalf("Failed to build generator: %v", err)
	}

	sessionManager := session.NewManager(repo, repo, generator, logger)
	questionManager := question.NewManager(repo, repo, generator, logger)

	handlers := jobs.NewHandlers(questionManager, repo, logger, cfg.Worker.InterCallDelay)
	pool := jobs.NewWorkerPool(repo, handlers, logger, cfg.Worker.Count)
	pool.Start(ctx)

	// one sweep per boot catches rows orphaned by an earlier crash
	if _, err := jobs.EnqueueReconcile(ctx, repo); err != nil {
		logger.Warn("enqueue reconcile job", slog.Any("err", err))
	}

	handler := api.SetupRoutes(api.Deps{
		Config:    cfg,
		Users:     repo,
		Jobs:      repo,
		Sessions:  sessionManager,
		Questions: questionManager,
		Generator: generator,
		Logger:    logger,
		Version:   version,
		BuildTime: buildTime,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	pool.Stop()
	closeProvider()

	if err := conn.Close(); err != nil {
		logger.Error("closing DB", slog.Any("err", err))
	}

	logger.Info("server exited")
}

// buildProvider selects the generation backend from config. OpenRouter is
// the default; ollama serves local development without an API key.
func buildProvider(cfg *config.Config, logger *slog.Logger) (llm.Provider, func(), error) {
	switch cfg.LLM.Provider {
	case "ollama":
		ollama.SetLogger(logger)
		client, err := ollama.NewClient(cfg.LLM.Ollama, nil)
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	default:
		openrouter.SetLogger(logger)
		client := openrouter.NewDefaultClient(cfg.LLM.OpenRouter)
		return client, func() { client.Close() }, nil
	}
}
