// Package hybrid composes a primary and a fallback broker behind the
// shared broker surface. Exactly one of the two is active at a time;
// the fallback only hands control back through a fresh Connect.
package hybrid

import (
	"context"
	"fmt"
	"sync"

	"hybrid-trading-bot/internal/interfaces"
	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/types"
)

type Broker struct {
	primary  interfaces.Broker
	fallback interfaces.Broker

	mu     sync.RWMutex
	active interfaces.Broker
}

var _ interfaces.Broker = (*Broker)(nil)

// New wires the composite. fallback may be nil, in which case the
// primary is the only candidate.
func New(primary, fallback interfaces.Broker) *Broker {
	return &Broker{primary: primary, fallback: fallback}
}

func (b *Broker) Name() string { return "HYBRID" }

// Active returns the name of the broker currently serving calls, or ""
// when nothing is connected.
func (b *Broker) Active() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.active == nil {
		return ""
	}
	return b.active.Name()
}

// Connect tries the primary first and falls back on failure. A
// successful call always leaves the preferred available broker active,
// so reconnecting is also how control moves back to the primary.
func (b *Broker) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active != nil {
		b.active.Disconnect(ctx)
		b.active = nil
	}

	primaryErr := b.primary.Connect(ctx)
	if primaryErr == nil {
		b.active = b.primary
		logger.Info(ctx, "broker connected", "broker", b.primary.Name(), "role", "primary")
		return nil
	}
	logger.Warn(ctx, "primary broker unavailable",
		"broker", b.primary.Name(),
		"error", primaryErr.Error())

	if b.fallback == nil {
		return primaryErr
	}
	if err := b.fallback.Connect(ctx); err != nil {
		return fmt.Errorf("primary: %v; fallback: %w", primaryErr, err)
	}
	b.active = b.fallback
	logger.Info(ctx, "broker connected", "broker", b.fallback.Name(), "role", "fallback")
	return nil
}

func (b *Broker) Disconnect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active == nil {
		return nil
	}
	err := b.active.Disconnect(ctx)
	b.active = nil
	return err
}

func (b *Broker) current() (interfaces.Broker, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.active == nil {
		return nil, &types.ConnError{Broker: b.Name(), Err: fmt.Errorf("no active broker")}
	}
	return b.active, nil
}

func (b *Broker) ListSymbols(ctx context.Context) ([]string, error) {
	a, err := b.current()
	if err != nil {
		return nil, err
	}
	return a.ListSymbols(ctx)
}

func (b *Broker) MarketData(ctx context.Context, symbol string, granularity int) (types.MarketData, error) {
	a, err := b.current()
	if err != nil {
		return types.MarketData{}, err
	}
	return a.MarketData(ctx, symbol, granularity)
}

func (b *Broker) History(ctx context.Context, symbol string, granularity, count int) ([]types.Candle, error) {
	a, err := b.current()
	if err != nil {
		return nil, err
	}
	return a.History(ctx, symbol, granularity, count)
}

func (b *Broker) PlaceOrder(ctx context.Context, o types.Order) (string, error) {
	a, err := b.current()
	if err != nil {
		return "", err
	}
	return a.PlaceOrder(ctx, o)
}

func (b *Broker) CloseOrder(ctx context.Context, orderID string) error {
	a, err := b.current()
	if err != nil {
		return err
	}
	return a.CloseOrder(ctx, orderID)
}

func (b *Broker) Balance(ctx context.Context) (float64, error) {
	a, err := b.current()
	if err != nil {
		return 0, err
	}
	return a.Balance(ctx)
}

func (b *Broker) OpenOrders(ctx context.Context) ([]types.Order, error) {
	a, err := b.current()
	if err != nil {
		return nil, err
	}
	return a.OpenOrders(ctx)
}
