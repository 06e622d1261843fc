// @title Mock Interview Coach API
// @version 1.0
// @description Scores facial-landmark frames captured while a candidate answers interview questions.
// @BasePath /
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/config"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/monitoring"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/ratelimit"
)

func main() {
	configPath := flag.String("config", getEnvOrDefault("INTERVIEW_CONFIG", ""), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logging setup
	logger := monitoring.NewLogger(monitoring.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger.Logger)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	scoring, err := analysis.NewProfileStore(cfg.ProfilesDir).Load(cfg.Profile)
	if err != nil {
		slog.Error("Failed to load scoring profile", "profile", cfg.Profile, "dir", cfg.ProfilesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Scoring profile loaded", "profile", scoring.Name, "threshold", scoring.AttentionThreshold)

	// Redis is optional; limits fall back to per-process buckets
	redisClient, err := ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("Redis unavailable, using in-memory rate limiting", "addr", cfg.Redis.Addr, "error", err)
	}

	s, err := newServer(cfg, scoring, logger, redisClient)
	if err != nil {
		slog.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	r := s.routes()

	// Performance profiling endpoints (development only)
	if os.Getenv("ENABLE_PROFILING") == "true" {
		slog.Info("Enabling performance profiling endpoints")
		mountProfiling(r)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "profile", scoring.Name, "redis", redisClient.IsEnabled())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		s.Close()
		os.Exit(1)
	}

	s.Close()
	slog.Info("Server exited")
}

func mountProfiling(r *gin.Engine) {
	debug := r.Group("/debug/pprof")
	debug.GET("/", gin.WrapF(pprof.Index))
	debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	debug.GET("/profile", gin.WrapF(pprof.Profile))
	debug.GET("/symbol", gin.WrapF(pprof.Symbol))
	debug.GET("/trace", gin.WrapF(pprof.Trace))
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		debug.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
}

// Helper function for environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
