package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sitewright/internal/config"
	"sitewright/internal/generate"
	"sitewright/internal/intake"
	"sitewright/internal/journal/repositoryimpl"
	"sitewright/internal/llm"
	"sitewright/internal/publish"
	"sitewright/internal/repohost"
	"sitewright/pkg/clog"
	"sitewright/pkg/storage"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup journal storage
	var store storage.Storage
	switch env.JournalEnv.Type {
	case "s3":
		store, err = storage.NewS3Storage(context.Background(), env.JournalEnv.S3Bucket, env.JournalEnv.S3Prefix, env.JournalEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = storage.NewLocalStorage(env.JournalEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
	}
	journalRepo := repositoryimpl.NewYAMLRepository(store)

	// Setup model provider
	var provider llm.Provider
	switch env.LLMEnv.Provider {
	case "claude":
		provider = llm.NewClaudeProvider()
	default:
		if env.LLMEnv.OpenAIAPIKey == "" {
			slog.Error("SITEWRIGHT_OPENAI_API_KEY is required for the openai provider")
			os.Exit(1)
		}
		provider = llm.NewOpenAIProvider(env.LLMEnv.OpenAIAPIKey, env.LLMEnv.OpenAIBaseURL, env.LLMEnv.Model, env.LLMEnv.Temperature)
	}
	slog.Info("using model provider", "provider", provider.Name())

	// Setup remote host and publisher
	host := repohost.NewGitHub(env.GitHubEnv.APIBase, env.GitHubEnv.Owner, env.GitHubEnv.Token)
	orchestrator := generate.NewOrchestrator(provider)
	publisher := publish.NewPublisher(orchestrator, host, publish.NewNotifier(), journalRepo)

	srv := intake.NewServer(env, publisher)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// In-flight task workers are detached and keep running; only the HTTP
	// listener participates in the shutdown grace period.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
