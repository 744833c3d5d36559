// Package main provides the repo-rag server: REST API, MCP and metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bull/repo-rag/internal/api"
	"github.com/bull/repo-rag/internal/app"
	"github.com/bull/repo-rag/internal/config"
	mcpserver "github.com/bull/repo-rag/internal/mcp"
	"github.com/bull/repo-rag/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "YAML config file overriding the environment")
	flag.Parse()

	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer a.Close()

	server := mcpserver.NewServer(a.Service, "")

	mcpHandler := mcpserver.NewHTTPHandler(server, &mcpserver.HTTPHandlerOptions{
		Stateless: cfg.MCPStateless,
		Logger:    logger,
	})

	httpServer := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           routes(a.Service, a.Store, mcpHandler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Stdio mode serves MCP on stdin/stdout for local clients and keeps
	// the HTTP endpoints in the background.
	stdioMode := cfg.ServerMode == config.ModeStdio

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", httpServer.Addr, "stdio", stdioMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if stdioMode {
		go func() {
			logger.Info("Starting MCP server (stdio mode)")
			errCh <- server.Run(ctx)
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", "error", err)
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
}

// routes mounts the REST API, MCP, health, metrics and the landing page.
// The landing page matches "/" exactly so unknown methods on API routes get 405.
func routes(svc api.Service, health mcpserver.HealthChecker, mcpHandler http.Handler, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	api.Register(mux, svc, logger)
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(health))
	mux.Handle("/mcp", mcpHandler)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("GET /{$}", mcpserver.NewLandingHandler())
	return mux
}
