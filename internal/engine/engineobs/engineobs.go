package engineobs

import (
	"context"
	"time"

	"hybrid-trading-bot/internal/interfaces"
	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/trace"
	"hybrid-trading-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Run(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "engine.Run")
	defer span.End()

	return oe.engine.Run(ctx)
}

func (oe *observableEngine) Step(ctx context.Context, symbol string) (*types.TradeRecord, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()

	logger.DebugSkip(ctx, 1, "Starting evaluation cycle",
		"symbol", symbol,
	)

	rec, err := oe.engine.Step(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Evaluation cycle failed", err,
			"symbol", symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	if rec != nil {
		logger.InfoSkip(ctx, 1, "Evaluation cycle produced a trade",
			"symbol", symbol,
			"record_id", rec.ID,
			"order_id", rec.OrderID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		logger.DebugSkip(ctx, 1, "Evaluation cycle completed",
			"symbol", symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return rec, nil
}

func (oe *observableEngine) Warmup(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "engine.Warmup")
	defer span.End()

	start := time.Now()
	oe.engine.Warmup(ctx)
	logger.InfoSkip(ctx, 1, "Warmup completed", "duration_ms", time.Since(start).Milliseconds())
}

func (oe *observableEngine) Status(ctx context.Context) interfaces.Status {
	ctx, span := trace.StartSpan(ctx, "engine.Status")
	defer span.End()

	return oe.engine.Status(ctx)
}

func (oe *observableEngine) ManualOrder(ctx context.Context, symbol string, dir types.Direction) (*types.TradeRecord, error) {
	ctx, span := trace.StartSpan(ctx, "engine.ManualOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Manual order", "symbol", symbol, "direction", string(dir))

	rec, err := oe.engine.ManualOrder(ctx, symbol, dir)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Manual order failed", err, "symbol", symbol)
		return nil, err
	}
	return rec, nil
}

func (oe *observableEngine) CloseOrder(ctx context.Context, orderID string) error {
	ctx, span := trace.StartSpan(ctx, "engine.CloseOrder")
	defer span.End()

	err := oe.engine.CloseOrder(ctx, orderID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Close order failed", err, "order_id", orderID)
	}
	return err
}

func (oe *observableEngine) Settle(ctx context.Context, recordID string, status types.TradeStatus, exitPrice float64) error {
	ctx, span := trace.StartSpan(ctx, "engine.Settle")
	defer span.End()

	err := oe.engine.Settle(ctx, recordID, status, exitPrice)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Settlement failed", err, "record_id", recordID)
	}
	return err
}

func (oe *observableEngine) RefreshBias(ctx context.Context, symbol string) types.Bias {
	ctx, span := trace.StartSpan(ctx, "engine.RefreshBias")
	defer span.End()

	return oe.engine.RefreshBias(ctx, symbol)
}

func (oe *observableEngine) RefreshStake(ctx context.Context, symbol string) float64 {
	ctx, span := trace.StartSpan(ctx, "engine.RefreshStake")
	defer span.End()

	return oe.engine.RefreshStake(ctx, symbol)
}

func (oe *observableEngine) Subscribe() <-chan interfaces.Event {
	return oe.engine.Subscribe()
}
