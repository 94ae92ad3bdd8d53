package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chroma-explorer/internal/config"
	"github.com/kailas-cloud/chroma-explorer/internal/db"
	"github.com/kailas-cloud/chroma-explorer/internal/db/valkey"
	"github.com/kailas-cloud/chroma-explorer/internal/domain"
	logpkg "github.com/kailas-cloud/chroma-explorer/internal/logger"
	"github.com/kailas-cloud/chroma-explorer/internal/metrics"
	collectionrepo "github.com/kailas-cloud/chroma-explorer/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/chroma-explorer/internal/repository/document"
	"github.com/kailas-cloud/chroma-explorer/internal/repository/embcache"
	searchrepo "github.com/kailas-cloud/chroma-explorer/internal/repository/search"
	systemrepo "github.com/kailas-cloud/chroma-explorer/internal/repository/system"
	"github.com/kailas-cloud/chroma-explorer/internal/tracing"
	chiTransport "github.com/kailas-cloud/chroma-explorer/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/chroma-explorer/internal/transport/openai"
	"github.com/kailas-cloud/chroma-explorer/internal/upstream"
	collectionuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/document"
	healthuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/health"
	relayuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/relay"
	searchuc "github.com/kailas-cloud/chroma-explorer/internal/usecase/search"
	"github.com/kailas-cloud/chroma-explorer/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting chroma-explorer",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("default_upstream", cfg.Relay.DefaultHost+":"+cfg.Relay.DefaultPort),
		zap.String("console_relay_url", cfg.Console.RelayURL),
	)

	// Register metrics explicitly (no init())
	metrics.Register(prometheus.DefaultRegisterer)

	tracer, err := tracing.Init(context.Background(), tracing.Config{
		ServiceName:    "chroma-explorer",
		ServiceVersion: version.Version,
		Environment:    env,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}
	if tracer.Enabled() {
		logger.Info("Tracing enabled", zap.String("otlp_endpoint", cfg.Tracing.OTLPEndpoint))
	}

	if len(cfg.Relay.AllowedTargets) == 0 {
		logger.Warn("relay.allowed_targets is empty: the relay forwards to any host:port")
	}

	upstreamTimeout := time.Duration(cfg.Relay.UpstreamTimeoutSec) * time.Second
	httpClient := &http.Client{Timeout: upstreamTimeout}

	relaySvc := relayuc.New(httpClient, relayuc.Config{
		DefaultHost:    cfg.Relay.DefaultHost,
		DefaultPort:    cfg.Relay.DefaultPort,
		AllowedTargets: cfg.Relay.AllowedTargets,
		Timeout:        upstreamTimeout,
	})

	// Console client: through the relay when configured, direct otherwise
	target := upstream.DirectTarget(cfg.Relay.DefaultHost, cfg.Relay.DefaultPort)
	if cfg.Console.RelayURL != "" {
		target = upstream.RelayTarget(cfg.Console.RelayURL, cfg.Relay.DefaultHost, cfg.Relay.DefaultPort)
	}
	client := upstream.NewClient(httpClient, target, upstream.WithRelayAPIKey(cfg.ConsoleRelayKey()))

	// Optional query embedder. Pass nil interfaces (not typed nil pointers) when disabled.
	var (
		queryEmbedder   searchuc.Embedder
		embeddingHealth healthuc.EmbeddingChecker
		cacheStore      db.Store
	)
	if cfg.Embedding.Enabled() {
		if cfg.Cache.Enabled() {
			cacheStore = mustOpenCache(cfg.Cache, logger)
			defer cacheStore.Close()
		}
		emb := buildEmbedder(cfg, cacheStore, logger)
		queryEmbedder = emb
		embeddingHealth = emb
		logger.Info("Query embedder enabled",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Bool("cache", cacheStore != nil),
		)
	} else if cfg.Cache.Enabled() {
		logger.Warn("cache.addrs is set but no embedding provider is configured: cache unused")
	}

	// Repositories
	collRepo := collectionrepo.New(client)
	docRepo := documentrepo.New(client)
	searchRepo := searchrepo.New(client)
	sysRepo := systemrepo.New(client)

	defaults := domain.Connection{
		Host:     cfg.Relay.DefaultHost,
		Port:     cfg.Relay.DefaultPort,
		Tenant:   cfg.Console.Tenant,
		Database: cfg.Console.Database,
	}.WithDefaults(cfg.Relay.DefaultHost, cfg.Relay.DefaultPort)

	// Use case services
	collSvc := collectionuc.New(collRepo)
	docSvc := documentuc.New(docRepo)
	searchSvc := searchuc.New(searchRepo, docRepo, queryEmbedder)
	healthSvc := healthuc.New(sysRepo, embeddingHealth, defaults)
	if cacheStore != nil {
		healthSvc = healthSvc.WithCache(cacheStore)
	}

	server := chiTransport.NewServer(relaySvc, collSvc, docSvc, searchSvc, healthSvc, chiTransport.Options{
		Defaults:    defaults,
		SearchLimit: cfg.Console.DefaultSearchLimit,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware)
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
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// mustOpenCache connects to the embedding cache store and waits until it answers.
func mustOpenCache(cfg config.CacheConfig, logger *zap.Logger) db.Store {
	store, err := valkey.NewStore(valkey.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,

		WriteTimeout: time.Duration(cfg.WriteTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache not ready", zap.Strings("addrs", cfg.Addrs), zap.Error(err))
	}
	logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Addrs))
	return store
}

// embeddingChain is what search and health need from the embedding chain.
type embeddingChain interface {
	domain.Embedder
	domain.HealthChecker
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached (when a store is given).
func buildEmbedder(cfg config.Config, store db.Store, logger *zap.Logger) embeddingChain {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	if store == nil {
		return base
	}
	return embcache.New(base, store, embcache.Config{
		Model:      fmt.Sprintf("%s/%s/%d", cfg.Embedding.Provider, cfg.Embedding.Model, cfg.Embedding.Dimensions),
		TTL:        time.Duration(cfg.Cache.TTLSec) * time.Second,
		CacheTotal: metrics.EmbeddingCacheTotal,
		Logger:     logger,
	})
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("upstream_host", r.URL.Query().Get("host")),
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
