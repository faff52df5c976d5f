package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hybrid-trading-bot/internal/eod"
	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/store"
	"hybrid-trading-bot/internal/trace"
)

func main() {
	if err := initializeSystem(); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		os.Exit(1)
	}

	compressOldLogs(ctx)
	serveMetrics(ctx, cfg.MetricsAddr)

	brk, composite := initializeBroker(ctx, cfg)
	sentiment := initializeSentiment(ctx, cfg)
	eng := initializeEngine(cfg, brk, sentiment, composite)

	if err := brk.Connect(ctx); err != nil {
		logger.ErrorWithErr(ctx, "No broker available", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Bot started", "active_broker", composite.Active(), "mode", cfg.Mode)

	eng.Warmup(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	eodTick := time.NewTicker(60 * time.Second)
	defer eodTick.Stop()

	for {
		select {
		case <-eodTick.C:
			if ok, _ := eod.ShouldRunNow(); ok {
				if p, err := eod.SummarizeToday(); err == nil && p != "" {
					logger.Info(ctx, "EOD summary written", "path", p)
				}
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			cancel()
			<-done
			shutdown(brk)
			return
		case err := <-done:
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorWithErr(context.Background(), "Scan loop exited", err)
			}
			shutdown(brk)
			return
		}
	}
}

// shutdown disconnects the broker, writes the final EOD summary, and
// flushes the tracer. Runs against a fresh context since the main one
// is already cancelled.
func shutdown(brk interface {
	Disconnect(ctx context.Context) error
}) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := brk.Disconnect(ctx); err != nil {
		logger.Warn(ctx, "Broker disconnect failed", "error", err.Error())
	}
	if p, err := eod.SummarizeToday(); err == nil && p != "" {
		logger.Info(ctx, "EOD summary written", "path", p)
	}
	if err := trace.Shutdown(ctx); err != nil {
		logger.Warn(ctx, "Tracer shutdown failed", "error", err.Error())
	}
	logger.Info(ctx, "Bot stopped")
}
