/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the CCA simulation server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env supported)
  2. Configure structured logging
  3. Initialize SQLite store
  4. Connect the report cache (Redis, or in-process fallback)
  5. Configure HTTP router
  6. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

ENVIRONMENT:
  PORT, DB_PATH, REDIS_ADDR, CACHE_TTL_HOURS, LOG_LEVEL
  (see config/config.go)

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/cca-simulator/api"
	"github.com/warp/cca-simulator/cache"
	"github.com/warp/cca-simulator/config"
	"github.com/warp/cca-simulator/logging"
	"github.com/warp/cca-simulator/store/sqlite"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Report cache: Redis when configured, in-process otherwise
	var reportCache cache.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(context.Background(), cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			slog.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		reportCache = redisCache
		slog.Info("using redis report cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	} else {
		reportCache = cache.NewMemory()
		slog.Info("using in-process report cache")
	}

	// Create router
	handler := api.NewHandler(store, reportCache)
	router := api.NewRouter(handler)

	// Keep stored scenarios' reports warm across cache TTL expiry
	warmer := api.NewCacheWarmer(store, handler)
	warmer.Start()
	defer warmer.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "addr", fmt.Sprintf("http://localhost:%d", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
