package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/calyptra/mona/internal/config"
	dbRedis "github.com/calyptra/mona/internal/db/redis"
	"github.com/calyptra/mona/internal/domain"
	logpkg "github.com/calyptra/mona/internal/logger"
	"github.com/calyptra/mona/internal/metrics"
	documentrepo "github.com/calyptra/mona/internal/repository/document"
	"github.com/calyptra/mona/internal/repository/embcache"
	chiTransport "github.com/calyptra/mona/internal/transport/chi"
	openaiTransport "github.com/calyptra/mona/internal/transport/openai"
	chatuc "github.com/calyptra/mona/internal/usecase/chat"
	documentuc "github.com/calyptra/mona/internal/usecase/document"
	healthuc "github.com/calyptra/mona/internal/usecase/health"
	intentuc "github.com/calyptra/mona/internal/usecase/intent"
	"github.com/calyptra/mona/internal/version"
)

// defaultVectorDim matches text-embedding-3-small.
const defaultVectorDim = 1536

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting mona API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx := context.Background()

	store, err := dbRedis.NewStore(ctx, dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	readyCtx, cancelReady := context.WithTimeout(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second)
	if err := store.WaitForReady(readyCtx, time.Second); err != nil {
		cancelReady()
		return fmt.Errorf("database not ready: %w", err)
	}
	cancelReady()
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterClassifierMetrics()
	metrics.RegisterProviderMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	// Query embeddings are cached; document ingestion always hits the
	// provider because chunks are embedded in one batch call.
	var queryEmbedder domain.Embedder = embedder
	if cfg.Embedding.CacheTTLHours > 0 {
		queryEmbedder = embcache.New(
			embedder, store, cfg.Storage.KeyPrefix,
			time.Duration(cfg.Embedding.CacheTTLHours)*time.Hour,
			metrics.EmbeddingCacheTotal, logger,
		)
	}

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: float32(cfg.LLM.Temperature),
		MaxTokens:   cfg.LLM.MaxTokens,
		Provider:    cfg.LLM.Provider,
		Logger:      logger,
	})
	logger.Info("Providers created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("llm_model", cfg.LLM.Model),
	)

	vectorDim := cfg.Embedding.Dimensions
	if vectorDim == 0 {
		vectorDim = defaultVectorDim
	}

	docRepo := documentrepo.New(store, cfg.Storage.KeyPrefix, cfg.Storage.IndexName)
	if err := docRepo.EnsureIndexes(ctx, vectorDim, cfg.Storage.HNSWM, cfg.Storage.HNSWEFConstruct); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	classifier, err := intentuc.New(cfg.Classifier, logger)
	if err != nil {
		return fmt.Errorf("create classifier: %w", err)
	}
	logger.Info("Classifier ready", zap.Int("rules", classifier.RuleCount()))

	chatSvc := chatuc.New(classifier, queryEmbedder, docRepo, generator, cfg.Retrieval.TopK, logger)
	docSvc := documentuc.New(docRepo, embedder, cfg.Indexing.SplitWords, cfg.Indexing.OverlapWords, logger)
	healthSvc := healthuc.New(store, embedder, generator)

	server := chiTransport.NewServer(chatSvc, classifier, docSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
