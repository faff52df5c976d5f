package interfaces

import (
	"context"

	"hybrid-trading-bot/internal/types"
)

// Engine drives the evaluate->size->execute pipeline for every configured
// symbol and owns all per-symbol state.
type Engine interface {
	// Run blocks, scanning all symbols once per interval until ctx ends.
	Run(ctx context.Context) error

	// Step evaluates a single symbol once. It returns the trade record
	// appended on a successful submission, or nil when no trade happened.
	Step(ctx context.Context, symbol string) (*types.TradeRecord, error)

	// Warmup primes stake and bias for every configured symbol.
	Warmup(ctx context.Context)

	// Status reports engine state for the operator surface.
	Status(ctx context.Context) Status

	// ManualOrder places an operator-initiated order, bypassing the
	// signal gate but not risk sizing or the trade log.
	ManualOrder(ctx context.Context, symbol string, dir types.Direction) (*types.TradeRecord, error)

	// CloseOrder closes an open order by its broker-assigned id.
	CloseOrder(ctx context.Context, orderID string) error

	// Settle applies an externally detected exit to an open trade record.
	Settle(ctx context.Context, recordID string, status types.TradeStatus, exitPrice float64) error

	// RefreshBias recomputes the long-horizon bias for a symbol.
	RefreshBias(ctx context.Context, symbol string) types.Bias

	// RefreshStake recomputes the risk-based stake for a symbol.
	RefreshStake(ctx context.Context, symbol string) float64

	// Subscribe returns a channel of engine events. The channel is never
	// closed and slow consumers drop events rather than block the loop.
	Subscribe() <-chan Event
}

// Status is a point-in-time view of the engine for operators.
type Status struct {
	ActiveBroker string             `json:"active_broker"`
	Connected    bool               `json:"connected"`
	Balance      float64            `json:"balance"`
	BalanceKnown bool               `json:"balance_known"`
	OpenTrades   int                `json:"open_trades"`
	Bias         map[string]string  `json:"bias"`
	Stakes       map[string]float64 `json:"stakes"`
}

// EventKind enumerates engine event types.
type EventKind string

const (
	EventSignal        EventKind = "SIGNAL"
	EventOrderPlaced   EventKind = "ORDER_PLACED"
	EventOrderRejected EventKind = "ORDER_REJECTED"
	EventBrokerSwitch  EventKind = "BROKER_SWITCH"
	EventTradeSettled  EventKind = "TRADE_SETTLED"
)

// Event is published to subscribers of the operator surface.
type Event struct {
	Kind   EventKind          `json:"kind"`
	Symbol string             `json:"symbol,omitempty"`
	Signal *types.Signal      `json:"signal,omitempty"`
	Trade  *types.TradeRecord `json:"trade,omitempty"`
	Broker string             `json:"broker,omitempty"`
	Reason string             `json:"reason,omitempty"`
}
