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

	"github.com/joho/godotenv"
	"github.com/mmuslimabdulj/goat-board/internal/config"
	httpHandler "github.com/mmuslimabdulj/goat-board/internal/delivery/http"
	"github.com/mmuslimabdulj/goat-board/internal/delivery/ws"
	"github.com/mmuslimabdulj/goat-board/internal/history"
	"github.com/mmuslimabdulj/goat-board/internal/middleware"
	"github.com/mmuslimabdulj/goat-board/internal/observability"
	"github.com/mmuslimabdulj/goat-board/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "goat-board: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file (ignore error if not exists, e.g. in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	log, err := history.NewLog(cfg.HistoryCapacity,
		history.WithObserver(metrics),
		history.WithLogger(logger.Named("history")),
	)
	if err != nil {
		return fmt.Errorf("init history: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := ws.NewHub(log, logger.Named("ws"))
	hub.SetObserver(metrics)
	go hub.Run(hubCtx)

	board := usecase.NewBoard(log, hub, logger.Named("board"))
	handler := httpHandler.NewHandler(board, hub, cfg.AllowedOrigins, logger.Named("http"))

	postLimiter := middleware.NewIPRateLimiter(cfg.RateLimitPost, cfg.RateLimitPostBurst)
	wsLimiter := middleware.NewIPRateLimiter(cfg.RateLimitWS, cfg.RateLimitWSBurst)
	go postLimiter.Run(ctx)
	go wsLimiter.Run(ctx)

	// Setup routes
	mux := http.NewServeMux()

	// Page routes
	mux.HandleFunc("/", handler.HandleIndex)
	mux.HandleFunc("/message", middleware.RateLimitFunc(postLimiter, handler.HandlePostMessage))

	// API routes, listing is not limited
	mux.HandleFunc("GET /api/messages", handler.HandleMessagesAPI)
	mux.HandleFunc("/api/messages", middleware.RateLimitFunc(postLimiter, handler.HandleMessagesAPI))

	// WebSocket route with rate limiting
	mux.HandleFunc("/ws", middleware.RateLimitFunc(wsLimiter, handler.HandleWebSocket))

	mux.HandleFunc("/healthz", handler.HandleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// Apply security headers and request logging to all requests
	root := middleware.RequestLogger(logger.Named("access"), metrics)(middleware.SecurityHeaders(mux))

	// Create server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("GOAT board running",
			zap.String("addr", "http://localhost:"+cfg.Port),
			zap.Int("history_capacity", cfg.HistoryCapacity),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Stop the hub after in-flight posts are answered, closing live feeds
	stopHub()
	<-hub.Done()

	logger.Info("Server exited gracefully")
	return nil
}
