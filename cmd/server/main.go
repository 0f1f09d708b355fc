package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chromabiz/palette-api/internal/ai"
	"github.com/chromabiz/palette-api/internal/config"
	"github.com/chromabiz/palette-api/internal/palette"
	"github.com/chromabiz/palette-api/internal/quota"
	"github.com/chromabiz/palette-api/internal/server"
	"github.com/chromabiz/palette-api/internal/statuscheck"
	"github.com/chromabiz/palette-api/internal/telemetry"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	flag.Parse()

	// Optional .env for local development; real deployments set the
	// environment directly.
	godotenv.Load()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	loader := config.NewLoader(*configDir, bootLogger)
	if err := loader.Load(); err != nil {
		bootLogger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	cfg := loader.Config()

	logger := buildLogger(cfg.Telemetry)
	slog.SetDefault(logger)

	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to PostgreSQL (status-check bookkeeping only)
	var statusStore *statuscheck.Store
	dbPool, err := pgxpool.New(rootCtx, cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	if err := dbPool.Ping(rootCtx); err != nil {
		logger.Warn("database not reachable (status endpoints will fail)", "error", err)
	} else {
		logger.Info("database connected")
	}
	statusStore = statuscheck.NewStore(dbPool)

	// Quota store: Redis when configured, otherwise in-process.
	var quotaStore quota.Store
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(rootCtx).Err(); err != nil {
			logger.Warn("redis not reachable, quota falls back to process memory", "error", err)
			quotaStore = startMemoryQuota(rootCtx, cfg.Quota.SweepInterval, logger)
		} else {
			logger.Info("redis connected, quota is shared across instances")
			quotaStore = quota.NewRedisStore(rdb)
		}
	} else {
		quotaStore = startMemoryQuota(rootCtx, cfg.Quota.SweepInterval, logger)
	}

	// Upstream AI client, rebuilt on config reload.
	aiHolder := &reloadableAI{}
	aiHolder.configure(rootCtx, cfg.AI, logger)
	loader.OnReload(func() {
		aiHolder.configure(rootCtx, loader.Config().AI, logger)
	})

	metrics := telemetry.NewMetrics()
	go serveMetrics(cfg.Telemetry.MetricsPort, logger)

	handler := server.NewHandler(quotaStore, aiHolder, statusStore, metrics, version)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// startMemoryQuota creates the in-process quota store and its sweeper,
// which keeps the identifier map from growing without bound.
func startMemoryQuota(ctx context.Context, interval time.Duration, logger *slog.Logger) *quota.MemoryStore {
	store := quota.NewMemoryStore()
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := store.Sweep(); removed > 0 {
					logger.Info("stale quota records swept", "removed", removed)
				}
			}
		}
	}()
	return store
}

func serveMetrics(port int, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server failed", "error", err)
	}
}

func buildLogger(t config.TelemetryConfig) *slog.Logger {
	var out io.Writer = os.Stdout
	if t.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   t.LogFile,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(t.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if t.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}

// reloadableAI lets a config reload swap the upstream client under the
// running handlers. A nil inner client means unconfigured: generation
// serves fallbacks, chat apologizes.
type reloadableAI struct {
	client atomic.Pointer[ai.Breaker]
	active atomic.Bool
}

func (r *reloadableAI) configure(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) {
	if cfg.APIKey == "" {
		logger.Warn("AI API key not set, serving fallback palettes only")
		r.active.Store(false)
		return
	}
	client, err := ai.NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
	if err != nil {
		logger.Error("failed to build AI client, serving fallback palettes only", "error", err)
		r.active.Store(false)
		return
	}
	r.client.Store(ai.NewBreaker(client, cfg.BreakerThreshold, cfg.BreakerCooldown))
	r.active.Store(true)
	logger.Info("AI client configured", "model", cfg.Model,
		"breaker_threshold", cfg.BreakerThreshold, "breaker_cooldown", cfg.BreakerCooldown)
}

func (r *reloadableAI) GeneratePalettes(ctx context.Context, profile palette.BusinessProfile) ([]palette.Palette, error) {
	if !r.active.Load() {
		return nil, ai.ErrUnconfigured
	}
	return r.client.Load().GeneratePalettes(ctx, profile)
}

func (r *reloadableAI) Refine(ctx context.Context, message string, rc palette.ChatContext) (string, error) {
	if !r.active.Load() {
		return "", ai.ErrUnconfigured
	}
	return r.client.Load().Refine(ctx, message, rc)
}
