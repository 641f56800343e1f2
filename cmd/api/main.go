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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vybrant-care/chat-widget/internal/config"
	"github.com/vybrant-care/chat-widget/internal/engine"
	"github.com/vybrant-care/chat-widget/internal/events"
	"github.com/vybrant-care/chat-widget/internal/handler"
	"github.com/vybrant-care/chat-widget/internal/llm"
	"github.com/vybrant-care/chat-widget/internal/middleware"
	natsclient "github.com/vybrant-care/chat-widget/internal/nats"
	"github.com/vybrant-care/chat-widget/internal/notify"
	"github.com/vybrant-care/chat-widget/internal/service"
	"github.com/vybrant-care/chat-widget/internal/store"
	"github.com/vybrant-care/chat-widget/pkg/logger"
	"github.com/vybrant-care/chat-widget/pkg/tracing"
)

func main() {
	// Load .env if present, then configuration
	godotenv.Load()
	cfg := config.Load()

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
		tp, err := tracing.InitTracer(ctx, "chat-widget", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", "error", err)
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the database
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Connect to NATS
	natsClient, err := natsclient.Connect(ctx, natsclient.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()

	// Ensure the widget events stream exists
	publisher := events.NewStreamPublisher(natsClient, log)
	if err := publisher.EnsureStream(ctx); err != nil {
		log.Error("failed to ensure stream", "error", err)
		os.Exit(1)
	}

	// Initialize the text-generation client
	var generator llm.Client
	if client, err := llm.NewClient(llm.Config{
		Provider:        llm.Provider(cfg.Provider),
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
	}); err != nil {
		log.Warn("failed to create generation client, replies will degrade to canned messages", "error", err)
	} else {
		generator = client
	}

	// Initialize notification dispatch
	var notifier notify.Notifier
	if cfg.NotifyURL != "" {
		notifier = notify.NewHTTPNotifier(cfg.NotifyURL, cfg.NotifyToken, log)
	} else {
		log.Warn("NOTIFY_URL not set, lead notifications disabled")
	}

	// Initialize the dialogue engine and services
	eng := engine.New(generator, cfg.ContextPreamble, log,
		engine.WithInfoRequestDelay(cfg.InfoRequestDelay),
		engine.WithInfoRequestThreshold(cfg.InfoRequestAfter),
	)
	sessionSvc := service.NewSessionService(eng, repo, cfg.Greeting, log)
	leadSvc := service.NewLeadService(repo, notifier, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsClient, repo)
	sessionHandler := handler.NewSessionHandler(sessionSvc, cfg.JWTSecret, cfg.JWTExpiration, log)
	leadHandler := handler.NewLeadHandler(leadSvc, sessionSvc, log)
	eventHandler := handler.NewEventHandler(publisher, log)
	handoffHandler := handler.NewHandoffHandler(cfg.WhatsAppNumber, cfg.WhatsAppGreeting)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Get("/handoff", handoffHandler.Link)
		r.Post("/sessions", sessionHandler.Open)

		// Session-bound routes require the session token
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Use(middleware.SessionAuth(cfg.JWTSecret))

			r.Delete("/", sessionHandler.Close)
			r.Get("/messages", sessionHandler.List)
			r.Post("/messages", sessionHandler.Send)
			r.Post("/lead", leadHandler.Submit)
			r.Post("/events", eventHandler.Track)
		})
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
		log.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
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
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
