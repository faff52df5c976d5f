package hybrid

import (
	"context"
	"errors"
	"testing"

	"hybrid-trading-bot/internal/types"
)

type fakeBroker struct {
	name        string
	connectErr  error
	connects    int
	disconnects int
	balance     float64
}

func (f *fakeBroker) Name() string { return f.name }

func (f *fakeBroker) Connect(ctx context.Context) error {
	f.connects++
	return f.connectErr
}

func (f *fakeBroker) Disconnect(ctx context.Context) error {
	f.disconnects++
	return nil
}

func (f *fakeBroker) ListSymbols(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeBroker) MarketData(ctx context.Context, symbol string, granularity int) (types.MarketData, error) {
	return types.MarketData{Symbol: symbol, Broker: f.name}, nil
}

func (f *fakeBroker) History(ctx context.Context, symbol string, granularity, count int) ([]types.Candle, error) {
	return nil, nil
}

func (f *fakeBroker) PlaceOrder(ctx context.Context, o types.Order) (string, error) {
	return f.name + "-1", nil
}

func (f *fakeBroker) CloseOrder(ctx context.Context, orderID string) error { return nil }

func (f *fakeBroker) Balance(ctx context.Context) (float64, error) { return f.balance, nil }

func (f *fakeBroker) OpenOrders(ctx context.Context) ([]types.Order, error) { return nil, nil }

func TestConnectPrefersPrimary(t *testing.T) {
	primary := &fakeBroker{name: "DERIV"}
	fallback := &fakeBroker{name: "KITE"}
	b := New(primary, fallback)

	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := b.Active(); got != "DERIV" {
		t.Errorf("Active = %q, want DERIV", got)
	}
	if fallback.connects != 0 {
		t.Errorf("fallback connected %d times, want 0", fallback.connects)
	}
}

func TestConnectFallsBack(t *testing.T) {
	primary := &fakeBroker{name: "DERIV", connectErr: errors.New("down")}
	fallback := &fakeBroker{name: "KITE", balance: 500}
	b := New(primary, fallback)

	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if got := b.Active(); got != "KITE" {
		t.Errorf("Active = %q, want KITE", got)
	}
	bal, err := b.Balance(context.Background())
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal != 500 {
		t.Errorf("Balance = %v, want 500", bal)
	}
}

func TestConnectBothDown(t *testing.T) {
	primary := &fakeBroker{name: "DERIV", connectErr: errors.New("down")}
	fallback := &fakeBroker{name: "KITE", connectErr: errors.New("also down")}
	b := New(primary, fallback)

	if err := b.Connect(context.Background()); err == nil {
		t.Fatal("Connect succeeded with both brokers down")
	}
	if got := b.Active(); got != "" {
		t.Errorf("Active = %q, want empty", got)
	}
}

func TestOpsFailFastWhenDisconnected(t *testing.T) {
	b := New(&fakeBroker{name: "DERIV"}, nil)

	_, err := b.MarketData(context.Background(), "R_100", 900)
	if !types.IsConnErr(err) {
		t.Fatalf("MarketData error = %v, want *ConnError", err)
	}
	if _, err := b.PlaceOrder(context.Background(), types.Order{}); !types.IsConnErr(err) {
		t.Fatalf("PlaceOrder error = %v, want *ConnError", err)
	}
}

func TestReconnectReturnsToPrimary(t *testing.T) {
	primary := &fakeBroker{name: "DERIV", connectErr: errors.New("down")}
	fallback := &fakeBroker{name: "KITE"}
	b := New(primary, fallback)

	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("first Connect: %v", err)
	}
	if got := b.Active(); got != "KITE" {
		t.Fatalf("Active = %q, want KITE", got)
	}

	// Primary recovers; a fresh Connect hands control back.
	primary.connectErr = nil
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if got := b.Active(); got != "DERIV" {
		t.Errorf("Active = %q, want DERIV", got)
	}
	if fallback.disconnects != 1 {
		t.Errorf("fallback disconnects = %d, want 1", fallback.disconnects)
	}
}
