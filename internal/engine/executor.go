package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"hybrid-trading-bot/internal/interfaces"
	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/metrics"
	"hybrid-trading-bot/internal/tradelog"
	"hybrid-trading-bot/internal/types"
)

// execute prices and submits one order. The entry price comes from a
// fresh quote; if that quote is unavailable the attempt aborts with
// nothing persisted. The appended OPEN record is the durability point:
// once it is on disk the trade exists,
// whatever happens to the process afterwards.
func (e *Engine) execute(ctx context.Context, symbol string, dir types.Direction, stake float64, st *symbolState) (*types.TradeRecord, error) {
	md, err := e.brk.MarketData(ctx, symbol, e.cfg.Scan.GranularitySeconds)
	if err != nil {
		return nil, fmt.Errorf("entry price for %s: %w", symbol, err)
	}

	order := types.Order{
		Symbol:     symbol,
		Direction:  dir,
		EntryPrice: md.Close,
		Stake:      stake,
		StopLoss:   round2(stake),
		TakeProfit: round2(stake * e.cfg.Risk.RRRatio),
		Broker:     e.activeFn(),
		Status:     types.OrderPending,
	}

	orderID, err := e.brk.PlaceOrder(ctx, order)
	if err != nil {
		if types.IsRejected(err) {
			logger.Warn(ctx, "Order rejected",
				"symbol", symbol,
				"direction", string(dir),
				"reason", err.Error())
			e.emit(interfaces.Event{
				Kind:   interfaces.EventOrderRejected,
				Symbol: symbol,
				Reason: err.Error(),
			})
			return nil, nil
		}
		return nil, err
	}

	now := time.Now().UTC()
	rec := types.TradeRecord{
		ID:         ulid.Make().String(),
		Timestamp:  now.Format(time.RFC3339),
		Symbol:     symbol,
		Direction:  dir,
		EntryPrice: md.Close,
		Stake:      stake,
		StopLoss:   order.StopLoss,
		TakeProfit: order.TakeProfit,
		Status:     types.TradeOpen,
		OrderID:    orderID,
		Broker:     order.Broker,
	}
	if err := tradelog.AppendTrade(rec); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist trade record", err,
			"record_id", rec.ID,
			"order_id", orderID)
	}

	e.mu.Lock()
	st.lastTradeAt = now
	e.open[rec.ID] = &rec
	openCount := len(e.open)
	e.mu.Unlock()

	metrics.OpenTrades.Set(float64(openCount))
	logger.Trade(ctx, symbol, string(dir), stake, md.Close, orderID,
		"record_id", rec.ID,
		"stop_loss", rec.StopLoss,
		"take_profit", rec.TakeProfit)
	e.emit(interfaces.Event{Kind: interfaces.EventOrderPlaced, Symbol: symbol, Trade: &rec})
	return &rec, nil
}

// ManualOrder places an operator-initiated order. It bypasses the
// signal gates but not sizing, the trade log, or the cooldown.
func (e *Engine) ManualOrder(ctx context.Context, symbol string, dir types.Direction) (*types.TradeRecord, error) {
	st := e.state(symbol)
	stake := e.stakeFor(ctx, symbol, st)
	logger.Info(ctx, "Manual order requested",
		"symbol", symbol,
		"direction", string(dir),
		"stake", stake)

	rec, err := e.execute(ctx, symbol, dir, stake, st)
	if err != nil && types.IsConnErr(err) {
		e.reconnect(ctx)
	}
	return rec, err
}

// CloseOrder closes an open broker order. The trade record stays OPEN
// until the settlement feed reports the outcome through Settle.
func (e *Engine) CloseOrder(ctx context.Context, orderID string) error {
	if err := e.brk.CloseOrder(ctx, orderID); err != nil {
		if types.IsConnErr(err) {
			e.reconnect(ctx)
		}
		return err
	}
	logger.Info(ctx, "Order close submitted", "order_id", orderID)
	return nil
}

// Settle applies an externally detected exit to an open trade. The
// terminal record always carries exit price, exit timestamp, and
// realized profit/loss together; the limits are amount-based, so WON
// pays the take-profit amount and LOST costs the stop-loss amount.
func (e *Engine) Settle(ctx context.Context, recordID string, status types.TradeStatus, exitPrice float64) error {
	switch status {
	case types.TradeWon, types.TradeLost, types.TradeCancelled:
	default:
		return fmt.Errorf("settle %s: %q is not a terminal status", recordID, status)
	}

	e.mu.Lock()
	rec, ok := e.open[recordID]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("settle %s: no open trade with that id", recordID)
	}

	var pl float64
	switch status {
	case types.TradeWon:
		pl = rec.TakeProfit
	case types.TradeLost:
		pl = -rec.StopLoss
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rec.Status = status
	rec.ExitPrice = &exitPrice
	rec.ExitTimestamp = &now
	rec.ProfitLoss = &pl

	settled := *rec
	delete(e.open, recordID)
	openCount := len(e.open)
	e.mu.Unlock()

	if err := tradelog.AppendTrade(settled); err != nil {
		logger.ErrorWithErr(ctx, "Failed to persist settlement", err, "record_id", recordID)
	}

	metrics.OpenTrades.Set(float64(openCount))
	metrics.TradesSettled.WithLabelValues(string(status)).Inc()
	logger.Info(ctx, "Trade settled",
		"record_id", recordID,
		"symbol", settled.Symbol,
		"status", string(status),
		"exit_price", exitPrice,
		"profit_loss", pl)
	e.emit(interfaces.Event{Kind: interfaces.EventTradeSettled, Symbol: settled.Symbol, Trade: &settled})
	return nil
}
