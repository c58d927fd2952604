// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/techgadgets/support-chat/internal/chat"
	"github.com/techgadgets/support-chat/internal/config"
	"github.com/techgadgets/support-chat/internal/events"
	"github.com/techgadgets/support-chat/internal/handler"
	"github.com/techgadgets/support-chat/internal/llm"
	"github.com/techgadgets/support-chat/internal/middleware"
	"github.com/techgadgets/support-chat/internal/reply"
	"github.com/techgadgets/support-chat/internal/store"
	"github.com/techgadgets/support-chat/pkg/logger"
	"github.com/techgadgets/support-chat/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "support-chat", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Initialize the conversation store
	var st store.Store
	if cfg.DatabaseDSN != "" {
		mysqlStore, err := store.NewMySQLStore(cfg.DatabaseDSN)
		if err != nil {
			log.Error("failed to initialize database", zap.Error(err))
			os.Exit(1)
		}
		st = mysqlStore
		log.Info("using MySQL store")
	} else {
		st = store.NewMemoryStore()
		log.Warn("no DATABASE_DSN configured, using in-memory store")
	}

	// Connect to NATS for event publication if configured
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		natsClient, err := events.Connect(events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, events disabled", zap.Error(err))
		} else {
			defer natsClient.Close()
			streamPub := events.NewStreamPublisher(natsClient)
			if err := streamPub.EnsureStream(ctx); err != nil {
				log.Warn("failed to ensure event stream, events disabled", zap.Error(err))
			} else {
				publisher = streamPub
			}
		}
	}

	// Initialize LLM client
	llmClient, err := llm.NewClient(llm.Provider(cfg.LLMProvider), llmAPIKey(cfg))
	if err != nil {
		log.Warn("failed to create LLM client, replies will use fallback text", zap.Error(err))
	}

	// Initialize services
	generator := reply.NewGenerator(llmClient, cfg.LLMModel, cfg.LLMTimeout, log)
	chatSvc := chat.NewService(st, generator, publisher, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(st)
	chatHandler := handler.NewChatHandler(chatSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Chat routes
	r.Route("/chat", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/message", chatHandler.SendMessage)
		r.Get("/history/{conversationId}", chatHandler.History)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

func llmAPIKey(cfg *config.Config) string {
	if llm.Provider(cfg.LLMProvider) == llm.ProviderOpenAI {
		return cfg.OpenAIAPIKey
	}
	return cfg.AnthropicAPIKey
}
