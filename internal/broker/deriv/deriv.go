// Package deriv implements the binary-options broker family over the
// Deriv websocket API.
package deriv

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"hybrid-trading-bot/internal/interfaces"
	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/types"
)

const defaultMultiplier = 100

// Broker talks to one Deriv account over a single websocket session.
type Broker struct {
	client *client
	token  string
	dryRun bool
}

var _ interfaces.Broker = (*Broker)(nil)

type Config struct {
	AppID    string
	Endpoint string
	Token    string
	DryRun   bool
}

func New(cfg Config) *Broker {
	return &Broker{
		client: newClient(cfg.Endpoint, cfg.AppID),
		token:  cfg.Token,
		dryRun: cfg.DryRun,
	}
}

func (b *Broker) Name() string { return "DERIV" }

func (b *Broker) Connect(ctx context.Context) error {
	if err := b.client.dial(ctx); err != nil {
		return err
	}
	var resp struct {
		Authorize struct {
			LoginID  string  `json:"loginid"`
			Balance  float64 `json:"balance"`
			Currency string  `json:"currency"`
		} `json:"authorize"`
	}
	if err := b.client.call(ctx, map[string]any{"authorize": b.token}, &resp); err != nil {
		b.client.close()
		return err
	}
	logger.Info(ctx, "deriv session authorized",
		"loginid", resp.Authorize.LoginID,
		"currency", resp.Authorize.Currency)
	return nil
}

func (b *Broker) Disconnect(ctx context.Context) error {
	return b.client.close()
}

func (b *Broker) ListSymbols(ctx context.Context) ([]string, error) {
	var resp struct {
		ActiveSymbols []struct {
			Symbol string `json:"symbol"`
		} `json:"active_symbols"`
	}
	req := map[string]any{"active_symbols": "brief", "product_type": "basic"}
	if err := b.client.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.ActiveSymbols))
	for _, s := range resp.ActiveSymbols {
		out = append(out, s.Symbol)
	}
	return out, nil
}

func (b *Broker) MarketData(ctx context.Context, symbol string, granularity int) (types.MarketData, error) {
	var resp struct {
		History struct {
			Prices []float64 `json:"prices"`
			Times  []int64   `json:"times"`
		} `json:"history"`
	}
	req := map[string]any{
		"ticks_history": symbol,
		"style":         "ticks",
		"count":         1,
		"end":           "latest",
	}
	if err := b.client.call(ctx, req, &resp); err != nil {
		return types.MarketData{}, err
	}
	if len(resp.History.Prices) == 0 {
		return types.MarketData{}, types.ErrInsufficientData
	}
	last := len(resp.History.Prices) - 1
	price := resp.History.Prices[last]
	return types.MarketData{
		Symbol: symbol,
		Bid:    price,
		Ask:    price,
		Close:  price,
		Ts:     resp.History.Times[last],
		Broker: b.Name(),
	}, nil
}

func (b *Broker) History(ctx context.Context, symbol string, granularity, count int) ([]types.Candle, error) {
	var resp struct {
		Candles []struct {
			Epoch int64   `json:"epoch"`
			Open  float64 `json:"open"`
			High  float64 `json:"high"`
			Low   float64 `json:"low"`
			Close float64 `json:"close"`
		} `json:"candles"`
	}
	req := map[string]any{
		"ticks_history": symbol,
		"style":         "candles",
		"granularity":   granularity,
		"count":         count,
		"end":           "latest",
	}
	if err := b.client.call(ctx, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candles) == 0 {
		return nil, types.ErrInsufficientData
	}
	out := make([]types.Candle, 0, len(resp.Candles))
	for _, c := range resp.Candles {
		out = append(out, types.Candle{
			Ts:    c.Epoch,
			Open:  c.Open,
			High:  c.High,
			Low:   c.Low,
			Close: c.Close,
		})
	}
	return out, nil
}

// PlaceOrder quotes a multiplier contract via proposal and, outside
// dry-run, buys it at the quoted price. Stop loss and take profit ride
// on the contract as limit_order amounts.
func (b *Broker) PlaceOrder(ctx context.Context, o types.Order) (string, error) {
	contractType := "MULTUP"
	if o.Direction == types.Sell {
		contractType = "MULTDOWN"
	}

	var prop struct {
		Proposal struct {
			ID       string  `json:"id"`
			AskPrice float64 `json:"ask_price"`
			Spot     float64 `json:"spot"`
		} `json:"proposal"`
	}
	req := map[string]any{
		"proposal":      1,
		"amount":        o.Stake,
		"basis":         "stake",
		"contract_type": contractType,
		"currency":      "USD",
		"multiplier":    defaultMultiplier,
		"symbol":        o.Symbol,
		"limit_order": map[string]any{
			"stop_loss":   round2(o.StopLoss),
			"take_profit": round2(o.TakeProfit),
		},
	}
	if err := b.client.call(ctx, req, &prop); err != nil {
		return "", err
	}

	if b.dryRun {
		id := fmt.Sprintf("DRY-%d", time.Now().UnixNano())
		logger.Info(ctx, "dry-run order simulated",
			"symbol", o.Symbol,
			"direction", string(o.Direction),
			"ask_price", prop.Proposal.AskPrice,
			"order_id", id)
		return id, nil
	}

	var buy struct {
		Buy struct {
			ContractID    int64   `json:"contract_id"`
			BuyPrice      float64 `json:"buy_price"`
			TransactionID int64   `json:"transaction_id"`
		} `json:"buy"`
	}
	buyReq := map[string]any{
		"buy":   prop.Proposal.ID,
		"price": prop.Proposal.AskPrice,
	}
	if err := b.client.call(ctx, buyReq, &buy); err != nil {
		return "", err
	}
	return strconv.FormatInt(buy.Buy.ContractID, 10), nil
}

func (b *Broker) CloseOrder(ctx context.Context, orderID string) error {
	if b.dryRun {
		logger.Info(ctx, "dry-run close simulated", "order_id", orderID)
		return nil
	}
	contractID, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return &types.RejectedError{Broker: b.Name(), Reason: "malformed contract id " + orderID}
	}
	var resp struct {
		Sell struct {
			SoldFor float64 `json:"sold_for"`
		} `json:"sell"`
	}
	// price 0 sells at market.
	req := map[string]any{"sell": contractID, "price": 0}
	return b.client.call(ctx, req, &resp)
}

func (b *Broker) Balance(ctx context.Context) (float64, error) {
	var resp struct {
		Balance struct {
			Balance  float64 `json:"balance"`
			Currency string  `json:"currency"`
		} `json:"balance"`
	}
	if err := b.client.call(ctx, map[string]any{"balance": 1}, &resp); err != nil {
		return 0, err
	}
	return resp.Balance.Balance, nil
}

func (b *Broker) OpenOrders(ctx context.Context) ([]types.Order, error) {
	var resp struct {
		Portfolio struct {
			Contracts []struct {
				ContractID   int64   `json:"contract_id"`
				Symbol       string  `json:"symbol"`
				BuyPrice     float64 `json:"buy_price"`
				ContractType string  `json:"contract_type"`
			} `json:"contracts"`
		} `json:"portfolio"`
	}
	if err := b.client.call(ctx, map[string]any{"portfolio": 1}, &resp); err != nil {
		return nil, err
	}
	out := make([]types.Order, 0, len(resp.Portfolio.Contracts))
	for _, c := range resp.Portfolio.Contracts {
		dir := types.Buy
		if c.ContractType == "MULTDOWN" || c.ContractType == "PUT" {
			dir = types.Sell
		}
		out = append(out, types.Order{
			ID:        strconv.FormatInt(c.ContractID, 10),
			Symbol:    c.Symbol,
			Direction: dir,
			Stake:     c.BuyPrice,
			Broker:    b.Name(),
			Status:    types.OrderOpen,
		})
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
