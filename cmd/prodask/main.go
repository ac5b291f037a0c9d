package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodask/internal/config"
	"github.com/kailas-cloud/prodask/internal/db"
	dbRedis "github.com/kailas-cloud/prodask/internal/db/redis"
	"github.com/kailas-cloud/prodask/internal/domain"
	logpkg "github.com/kailas-cloud/prodask/internal/logger"
	"github.com/kailas-cloud/prodask/internal/metrics"
	"github.com/kailas-cloud/prodask/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/prodask/internal/repository/search"
	sessionrepo "github.com/kailas-cloud/prodask/internal/repository/session"
	vocabrepo "github.com/kailas-cloud/prodask/internal/repository/vocab"
	chiTransport "github.com/kailas-cloud/prodask/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/prodask/internal/transport/openai"
	assembleuc "github.com/kailas-cloud/prodask/internal/usecase/assemble"
	extractuc "github.com/kailas-cloud/prodask/internal/usecase/extract"
	generateuc "github.com/kailas-cloud/prodask/internal/usecase/generate"
	healthuc "github.com/kailas-cloud/prodask/internal/usecase/health"
	moderationuc "github.com/kailas-cloud/prodask/internal/usecase/moderation"
	pipelineuc "github.com/kailas-cloud/prodask/internal/usecase/pipeline"
	retrievaluc "github.com/kailas-cloud/prodask/internal/usecase/retrieval"
	rewriteuc "github.com/kailas-cloud/prodask/internal/usecase/rewrite"
	routeuc "github.com/kailas-cloud/prodask/internal/usecase/route"
	"github.com/kailas-cloud/prodask/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting prodask API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	vocab, err := vocabrepo.Load(cfg.Vocabulary.SnapshotPath)
	if err != nil {
		logger.Fatal("Failed to load vocabulary snapshot", zap.Error(err))
	}

	queryEmbedder, embedderChecker := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	rewriteLLM := openaiTransport.NewChatClient(
		cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.RewriteModel,
		time.Duration(cfg.LLM.RewriteTimeoutSec)*time.Second, logger)
	generationLLM := openaiTransport.NewChatClient(
		cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.GenerationModel,
		time.Duration(cfg.LLM.GenTimeoutSec)*time.Second, logger)
	moderationClient := openaiTransport.NewModerationClient(
		cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.Moderation.Model,
		time.Duration(cfg.Moderation.TimeoutSec)*time.Second)

	searchRepo := searchrepo.New(store)
	sessionRepo := sessionrepo.New(store, time.Duration(cfg.Session.TTLHours)*time.Hour)

	pipelineSvc := pipelineuc.New(
		moderationuc.New(moderationClient, cfg.Moderation.FailOpen),
		rewriteuc.New(rewriteLLM, cfg.Session.RewriteWindow),
		extractuc.New(vocab),
		routeuc.New(),
		retrievaluc.New(searchRepo, queryEmbedder, retrievaluc.Config{
			SpecsTopK:   cfg.Retrieval.SpecsTopK,
			ReviewsTopK: cfg.Retrieval.ReviewsTopK,
			MaxEvidence: cfg.Retrieval.MaxEvidence,
			Timeout:     time.Duration(cfg.Retrieval.TimeoutSec) * time.Second,
		}),
		assembleuc.New(cfg.Assembler.MaxChars),
		generateuc.New(generationLLM, cfg.Session.RewriteWindow),
		sessionRepo,
	)

	healthSvc := healthuc.New(store, embedderChecker, generationLLM)

	server := chiTransport.NewServer(pipelineSvc, healthSvc, logger)

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction.
// The undecorated provider is returned separately for health checks.
func buildEmbedder(
	cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger,
) (domain.Embedder, healthuc.ProviderChecker) {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   "openai",
		Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(base, store, logger)
	}

	// Instruction prefix (outermost so the cache key includes it)
	if cfg.QueryInstruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.QueryInstruction)
	}

	return embedder, base
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
