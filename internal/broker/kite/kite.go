// Package kite implements the margin-trading broker family on top of
// the Zerodha Kite Connect REST API.
package kite

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"hybrid-trading-bot/internal/interfaces"
	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/types"
)

// Broker adapts a Kite Connect session to the shared broker surface.
// Money stakes are converted to integer share quantities at the last
// traded price before submission.
type Broker struct {
	kc          *kiteconnect.Client
	apiKey      string
	accessToken string
	exchange    string
	dryRun      bool

	instruments *instrumentMap

	mu          sync.Mutex
	orderSymbol map[string]string // order id -> tradingsymbol
}

var _ interfaces.Broker = (*Broker)(nil)

type Config struct {
	APIKey      string
	AccessToken string
	Exchange    string
	DryRun      bool
}

func New(cfg Config) *Broker {
	return &Broker{
		apiKey:      cfg.APIKey,
		accessToken: cfg.AccessToken,
		exchange:    cfg.Exchange,
		dryRun:      cfg.DryRun,
		instruments: newInstrumentMap(cfg.Exchange),
		orderSymbol: map[string]string{},
	}
}

func (b *Broker) Name() string { return "KITE" }

// Connect builds the client, loads the instrument map, and probes the
// session with a margin call so a stale access token fails here rather
// than mid-scan.
func (b *Broker) Connect(ctx context.Context) error {
	kc := kiteconnect.New(b.apiKey)
	kc.SetAccessToken(b.accessToken)
	b.kc = kc

	if err := b.instruments.load(ctx, kc); err != nil {
		b.kc = nil
		return wrapErr("connect", err)
	}
	if _, err := kc.GetUserMargins(); err != nil {
		b.kc = nil
		return &types.ConnError{Broker: "KITE", Err: fmt.Errorf("session probe: %w", err)}
	}
	logger.Info(ctx, "kite session established", "exchange", b.exchange)
	return nil
}

func (b *Broker) Disconnect(ctx context.Context) error {
	b.kc = nil
	return nil
}

func (b *Broker) ListSymbols(ctx context.Context) ([]string, error) {
	if b.kc == nil {
		return nil, notConnected()
	}
	return b.instruments.list(), nil
}

func (b *Broker) MarketData(ctx context.Context, symbol string, granularity int) (types.MarketData, error) {
	if b.kc == nil {
		return types.MarketData{}, notConnected()
	}
	key := b.exchange + ":" + symbol
	quotes, err := b.kc.GetLTP(key)
	if err != nil {
		return types.MarketData{}, wrapErr("ltp "+symbol, err)
	}
	q, ok := quotes[key]
	if !ok {
		return types.MarketData{}, types.ErrInsufficientData
	}
	return types.MarketData{
		Symbol: symbol,
		Bid:    q.LastPrice,
		Ask:    q.LastPrice,
		Close:  q.LastPrice,
		Ts:     time.Now().Unix(),
		Broker: b.Name(),
	}, nil
}

// intervalFor maps a candle width in seconds onto the Kite interval
// names. Widths above one day fall back to daily candles which History
// re-aggregates.
func intervalFor(granularity int) (string, bool) {
	switch granularity {
	case 60:
		return "minute", true
	case 180:
		return "3minute", true
	case 300:
		return "5minute", true
	case 600:
		return "10minute", true
	case 900:
		return "15minute", true
	case 1800:
		return "30minute", true
	case 3600:
		return "60minute", true
	}
	if granularity >= 86400 {
		return "day", true
	}
	return "", false
}

func (b *Broker) History(ctx context.Context, symbol string, granularity, count int) ([]types.Candle, error) {
	if b.kc == nil {
		return nil, notConnected()
	}
	interval, ok := intervalFor(granularity)
	if !ok {
		return nil, fmt.Errorf("kite: unsupported candle width %ds", granularity)
	}
	token, ok := b.instruments.token(symbol)
	if !ok {
		return nil, fmt.Errorf("kite: unknown symbol %q on %s", symbol, b.exchange)
	}

	to := time.Now()
	from := to.Add(-time.Duration(granularity*count) * time.Second)
	data, err := b.kc.GetHistoricalData(token, interval, from, to, false, false)
	if err != nil {
		return nil, wrapErr("history "+symbol, err)
	}
	if len(data) == 0 {
		return nil, types.ErrInsufficientData
	}

	candles := make([]types.Candle, 0, len(data))
	for _, h := range data {
		candles = append(candles, types.Candle{
			Ts:    h.Date.Unix(),
			Open:  h.Open,
			High:  h.High,
			Low:   h.Low,
			Close: h.Close,
			Vol:   float64(h.Volume),
		})
	}
	if granularity > 86400 {
		candles = aggregate(candles, int64(granularity))
	}
	if len(candles) > count {
		candles = candles[len(candles)-count:]
	}
	return candles, nil
}

// aggregate rolls fine candles up into fixed-width buckets, oldest
// first. Used for widths Kite has no native interval for.
func aggregate(cs []types.Candle, widthSec int64) []types.Candle {
	if len(cs) == 0 || widthSec <= 0 {
		return nil
	}
	var out []types.Candle
	var cur *types.Candle
	var bucket int64 = -1
	for _, c := range cs {
		b := c.Ts - (c.Ts % widthSec)
		if cur == nil || b != bucket {
			if cur != nil {
				out = append(out, *cur)
			}
			bucket = b
			cc := c
			cc.Ts = b
			cur = &cc
			continue
		}
		cur.High = math.Max(cur.High, c.High)
		cur.Low = math.Min(cur.Low, c.Low)
		cur.Close = c.Close
		cur.Vol += c.Vol
	}
	out = append(out, *cur)
	return out
}

func (b *Broker) PlaceOrder(ctx context.Context, o types.Order) (string, error) {
	if b.kc == nil {
		return "", notConnected()
	}
	qty := quantityFor(o.Stake, o.EntryPrice)
	if qty < 1 {
		return "", &types.RejectedError{Broker: b.Name(), Reason: "stake below one share"}
	}

	if b.dryRun {
		id := fmt.Sprintf("DRY-%d", time.Now().UnixNano())
		logger.Info(ctx, "dry-run order simulated",
			"symbol", o.Symbol,
			"direction", string(o.Direction),
			"quantity", qty,
			"order_id", id)
		b.remember(id, o.Symbol)
		return id, nil
	}

	txn := kiteconnect.TransactionTypeBuy
	if o.Direction == types.Sell {
		txn = kiteconnect.TransactionTypeSell
	}
	resp, err := b.kc.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Exchange:        b.exchange,
		Tradingsymbol:   o.Symbol,
		TransactionType: txn,
		OrderType:       kiteconnect.OrderTypeMarket,
		Product:         kiteconnect.ProductMIS,
		Validity:        kiteconnect.ValidityDay,
		Quantity:        qty,
	})
	if err != nil {
		return "", wrapErr("place "+o.Symbol, err)
	}
	b.remember(resp.OrderID, o.Symbol)
	return resp.OrderID, nil
}

// CloseOrder squares off by reading the live net position for the
// order's symbol and submitting the opposite side with that quantity.
func (b *Broker) CloseOrder(ctx context.Context, orderID string) error {
	if b.kc == nil {
		return notConnected()
	}
	symbol := b.recall(orderID)
	if symbol == "" {
		return &types.RejectedError{Broker: b.Name(), Reason: "unknown order " + orderID}
	}
	if b.dryRun {
		logger.Info(ctx, "dry-run close simulated", "order_id", orderID, "symbol", symbol)
		b.forget(orderID)
		return nil
	}

	positions, err := b.kc.GetPositions()
	if err != nil {
		return wrapErr("positions", err)
	}
	qty := 0
	for _, p := range positions.Net {
		if p.Tradingsymbol == symbol && p.Exchange == b.exchange {
			qty = p.Quantity
			break
		}
	}
	if qty == 0 {
		// Nothing held; the position already squared off elsewhere.
		b.forget(orderID)
		return nil
	}

	txn := kiteconnect.TransactionTypeSell
	if qty < 0 {
		txn = kiteconnect.TransactionTypeBuy
		qty = -qty
	}
	_, err = b.kc.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Exchange:        b.exchange,
		Tradingsymbol:   symbol,
		TransactionType: txn,
		OrderType:       kiteconnect.OrderTypeMarket,
		Product:         kiteconnect.ProductMIS,
		Validity:        kiteconnect.ValidityDay,
		Quantity:        qty,
	})
	if err != nil {
		return wrapErr("close "+symbol, err)
	}
	b.forget(orderID)
	return nil
}

func (b *Broker) Balance(ctx context.Context) (float64, error) {
	if b.kc == nil {
		return 0, notConnected()
	}
	margins, err := b.kc.GetUserMargins()
	if err != nil {
		return 0, wrapErr("margins", err)
	}
	return margins.Equity.Net, nil
}

func (b *Broker) OpenOrders(ctx context.Context) ([]types.Order, error) {
	if b.kc == nil {
		return nil, notConnected()
	}
	positions, err := b.kc.GetPositions()
	if err != nil {
		return nil, wrapErr("positions", err)
	}
	out := make([]types.Order, 0, len(positions.Net))
	for _, p := range positions.Net {
		if p.Quantity == 0 || p.Exchange != b.exchange {
			continue
		}
		dir := types.Buy
		qty := p.Quantity
		if qty < 0 {
			dir = types.Sell
			qty = -qty
		}
		out = append(out, types.Order{
			Symbol:     p.Tradingsymbol,
			Direction:  dir,
			EntryPrice: p.AveragePrice,
			Stake:      p.AveragePrice * float64(qty),
			Broker:     b.Name(),
			Status:     types.OrderOpen,
		})
	}
	return out, nil
}

func (b *Broker) remember(orderID, symbol string) {
	b.mu.Lock()
	b.orderSymbol[orderID] = symbol
	b.mu.Unlock()
}

func (b *Broker) recall(orderID string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.orderSymbol[orderID]
}

func (b *Broker) forget(orderID string) {
	b.mu.Lock()
	delete(b.orderSymbol, orderID)
	b.mu.Unlock()
}

func quantityFor(stake, price float64) int {
	if price <= 0 {
		return 0
	}
	return int(math.Floor(stake / price))
}

func notConnected() error {
	return &types.ConnError{Broker: "KITE", Err: fmt.Errorf("not connected")}
}

// wrapErr classifies Kite API failures: token problems mean the
// session is gone and want a reconnect, everything else is transient.
func wrapErr(op string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "TokenException") || strings.Contains(msg, "api_key or access_token") {
		return &types.ConnError{Broker: "KITE", Err: fmt.Errorf("%s: %w", op, err)}
	}
	return fmt.Errorf("kite %s: %w", op, err)
}
