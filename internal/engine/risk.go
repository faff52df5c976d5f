package engine

import (
	"context"
	"math"

	"hybrid-trading-bot/internal/logger"
)

// stakeFor returns the cached stake for symbol, computing it on first
// use. The stake only moves at warmup, first use, or explicit refresh,
// so one scan's balance wobble never resizes an in-flight strategy.
func (e *Engine) stakeFor(ctx context.Context, symbol string, st *symbolState) float64 {
	e.mu.Lock()
	known := st.stakeKnown
	stake := st.stake
	e.mu.Unlock()
	if known {
		return stake
	}
	return e.RefreshStake(ctx, symbol)
}

// RefreshStake recomputes the risk-based stake from the live balance.
// On a balance failure the previous cached stake survives; with no
// cache yet the floor stake is used.
func (e *Engine) RefreshStake(ctx context.Context, symbol string) float64 {
	st := e.state(symbol)

	balance, err := e.brk.Balance(ctx)
	if err != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		if st.stakeKnown {
			logger.Risk(ctx, symbol, "STAKE_FALLBACK_CACHED",
				"stake", st.stake,
				"error", err.Error())
			return st.stake
		}
		st.stake = e.cfg.Risk.MinStake
		st.stakeKnown = true
		logger.Risk(ctx, symbol, "STAKE_FALLBACK_FLOOR",
			"stake", st.stake,
			"error", err.Error())
		return st.stake
	}

	stake := round2(math.Max(balance*e.cfg.Risk.RiskPercent, e.cfg.Risk.MinStake))

	e.mu.Lock()
	st.stake = stake
	st.stakeKnown = true
	e.lastBalance = balance
	e.balanceKnown = true
	e.mu.Unlock()

	logger.Risk(ctx, symbol, "STAKE_SIZED",
		"balance", balance,
		"risk_percent", e.cfg.Risk.RiskPercent,
		"stake", stake)
	return stake
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
