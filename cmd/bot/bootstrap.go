package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"hybrid-trading-bot/internal/broker/brokerobs"
	"hybrid-trading-bot/internal/broker/deriv"
	"hybrid-trading-bot/internal/broker/hybrid"
	"hybrid-trading-bot/internal/broker/kite"
	"hybrid-trading-bot/internal/engine"
	"hybrid-trading-bot/internal/engine/engineobs"
	"hybrid-trading-bot/internal/interfaces"
	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/metrics"
	"hybrid-trading-bot/internal/news"
	"hybrid-trading-bot/internal/store"
	"hybrid-trading-bot/internal/trace"
	"hybrid-trading-bot/internal/tradelog"
)

// initializeSystem initializes env, logger, and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// buildFamily constructs one broker family by name
func buildFamily(cfg *store.Config, name string) interfaces.Broker {
	dryRun := cfg.Mode == "DRY_RUN"
	switch name {
	case "KITE":
		return kite.New(kite.Config{
			APIKey:      os.Getenv("KITE_API_KEY"),
			AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
			Exchange:    cfg.Broker.Kite.Exchange,
			DryRun:      dryRun,
		})
	default:
		return deriv.New(deriv.Config{
			AppID:    strconv.Itoa(cfg.Broker.Deriv.AppID),
			Endpoint: cfg.Broker.Deriv.Endpoint,
			Token:    os.Getenv("DERIV_TOKEN"),
			DryRun:   dryRun,
		})
	}
}

// initializeBroker builds the primary/fallback composite with observability
func initializeBroker(ctx context.Context, cfg *store.Config) (interfaces.Broker, *hybrid.Broker) {
	primary := buildFamily(cfg, cfg.Broker.Primary)
	var fallback interfaces.Broker
	if cfg.Broker.Fallback != "" {
		fallback = buildFamily(cfg, cfg.Broker.Fallback)
	}

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	}
	logger.Info(ctx, "Broker stack assembled",
		"primary", cfg.Broker.Primary,
		"fallback", cfg.Broker.Fallback)

	composite := hybrid.New(primary, fallback)

	// Wrap with observability middleware
	return brokerobs.Wrap(composite), composite
}

// initializeSentiment builds the news sentiment service
func initializeSentiment(ctx context.Context, cfg *store.Config) interfaces.SentimentProvider {
	svcCfg := news.DefaultServiceConfig()
	svcCfg.Enabled = cfg.Sentiment.Enabled
	if cfg.Sentiment.CacheMinutes > 0 {
		svcCfg.CacheDuration = time.Duration(cfg.Sentiment.CacheMinutes) * time.Minute
	}
	if !cfg.Sentiment.Enabled {
		logger.Info(ctx, "News sentiment disabled - all signals use neutral sentiment")
	}
	return news.NewService(svcCfg)
}

// initializeEngine builds the trading engine with observability
func initializeEngine(cfg *store.Config, brk interfaces.Broker, sentiment interfaces.SentimentProvider, composite *hybrid.Broker) interfaces.Engine {
	// Create base engine
	eng := engine.New(cfg, brk, sentiment, composite.Active)

	// Wrap with observability middleware
	return engineobs.Wrap(eng)
}

// serveMetrics exposes Prometheus metrics when an address is configured
func serveMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		logger.Info(ctx, "Metrics server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.ErrorWithErr(ctx, "Metrics server stopped", err)
		}
	}()
}
