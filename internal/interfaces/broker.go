package interfaces

import (
	"context"

	"hybrid-trading-bot/internal/types"
)

// Broker is the capability set implemented once per broker family.
// Granularity is the broker-specific bar width in seconds. Operations
// return *types.ConnError when no session is usable and
// *types.RejectedError when the broker refuses the specific request.
type Broker interface {
	// Name identifies the broker family ("DERIV", "KITE", ...).
	Name() string

	// Connect establishes and authorizes a session.
	Connect(ctx context.Context) error

	// Disconnect tears the session down. Safe to call when not connected.
	Disconnect(ctx context.Context) error

	// ListSymbols returns all tradable symbol identifiers.
	ListSymbols(ctx context.Context) ([]string, error)

	// MarketData returns the current quote for a symbol.
	MarketData(ctx context.Context, symbol string, granularity int) (types.MarketData, error)

	// History returns up to count OHLC bars, oldest first.
	History(ctx context.Context, symbol string, granularity, count int) ([]types.Candle, error)

	// PlaceOrder submits the order and returns the broker-assigned id.
	PlaceOrder(ctx context.Context, order types.Order) (string, error)

	// CloseOrder closes the full referenced position.
	CloseOrder(ctx context.Context, orderID string) error

	// Balance returns the account balance.
	Balance(ctx context.Context) (float64, error)

	// OpenOrders lists currently open orders/positions.
	OpenOrders(ctx context.Context) ([]types.Order, error)
}
