package brokerobs

import (
	"context"

	"hybrid-trading-bot/internal/interfaces"
	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/metrics"
	"hybrid-trading-bot/internal/trace"
	"hybrid-trading-bot/internal/types"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

func (ob *observableBroker) Name() string {
	return ob.broker.Name()
}

// Connect establishes the broker session with observability
func (ob *observableBroker) Connect(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "broker.Connect")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Connecting broker", "broker", ob.broker.Name())

	err := ob.broker.Connect(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to connect broker", err, "broker", ob.broker.Name())
		return err
	}

	logger.InfoSkip(ctx, 1, "Broker connected successfully", "broker", ob.broker.Name())
	return nil
}

// Disconnect tears down the broker session with observability
func (ob *observableBroker) Disconnect(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "broker.Disconnect")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Disconnecting broker", "broker", ob.broker.Name())

	err := ob.broker.Disconnect(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to disconnect broker", err, "broker", ob.broker.Name())
		return err
	}
	return nil
}

// ListSymbols fetches tradable symbols with observability
func (ob *observableBroker) ListSymbols(ctx context.Context) ([]string, error) {
	ctx, span := trace.StartSpan(ctx, "broker.ListSymbols")
	defer span.End()

	symbols, err := ob.broker.ListSymbols(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to list symbols", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Symbols listed", "count", len(symbols))
	return symbols, nil
}

// MarketData fetches a quote with observability
func (ob *observableBroker) MarketData(ctx context.Context, symbol string, granularity int) (types.MarketData, error) {
	ctx, span := trace.StartSpan(ctx, "broker.MarketData")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching market data", "symbol", symbol)

	md, err := ob.broker.MarketData(ctx, symbol, granularity)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch market data", err, "symbol", symbol)
		return types.MarketData{}, err
	}

	logger.DebugSkip(ctx, 1, "Market data fetched successfully", "symbol", symbol, "close", md.Close)
	return md, nil
}

// History fetches candles with observability
func (ob *observableBroker) History(ctx context.Context, symbol string, granularity, count int) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "broker.History")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching candles", "symbol", symbol, "granularity", granularity, "count", count)

	candles, err := ob.broker.History(ctx, symbol, granularity, count)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "symbol", symbol, "count", count)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched successfully", "symbol", symbol, "count", len(candles))
	return candles, nil
}

// PlaceOrder places an order with observability
func (ob *observableBroker) PlaceOrder(ctx context.Context, o types.Order) (string, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", o.Symbol,
		"direction", string(o.Direction),
		"stake", o.Stake,
	)

	orderID, err := ob.broker.PlaceOrder(ctx, o)
	if err != nil {
		metrics.OrdersRejected.WithLabelValues(ob.broker.Name()).Inc()
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", o.Symbol,
			"direction", string(o.Direction),
			"stake", o.Stake,
		)
		return "", err
	}

	metrics.OrdersPlaced.WithLabelValues(ob.broker.Name()).Inc()
	logger.InfoSkip(ctx, 1, "Order placed successfully",
		"symbol", o.Symbol,
		"order_id", orderID,
	)
	return orderID, nil
}

// CloseOrder closes an order with observability
func (ob *observableBroker) CloseOrder(ctx context.Context, orderID string) error {
	ctx, span := trace.StartSpan(ctx, "broker.CloseOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Closing order", "order_id", orderID)

	err := ob.broker.CloseOrder(ctx, orderID)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to close order", err, "order_id", orderID)
		return err
	}

	logger.InfoSkip(ctx, 1, "Order closed successfully", "order_id", orderID)
	return nil
}

// Balance fetches the account balance with observability
func (ob *observableBroker) Balance(ctx context.Context) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Balance")
	defer span.End()

	balance, err := ob.broker.Balance(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch balance", err)
		return 0, err
	}

	metrics.AccountBalance.WithLabelValues(ob.broker.Name()).Set(balance)
	logger.DebugSkip(ctx, 1, "Balance fetched successfully", "balance", balance)
	return balance, nil
}

// OpenOrders fetches open orders with observability
func (ob *observableBroker) OpenOrders(ctx context.Context) ([]types.Order, error) {
	ctx, span := trace.StartSpan(ctx, "broker.OpenOrders")
	defer span.End()

	orders, err := ob.broker.OpenOrders(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch open orders", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Open orders fetched", "count", len(orders))
	return orders, nil
}
