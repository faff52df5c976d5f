package engine

import (
	"context"

	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/types"
)

// biasFor returns the cached long-horizon bias for symbol, computing it
// on first use. NEUTRAL is the fail-safe: a symbol with unknown trend
// never trades.
func (e *Engine) biasFor(ctx context.Context, symbol string, st *symbolState) types.Bias {
	e.mu.Lock()
	known := st.biasKnown
	bias := st.bias
	e.mu.Unlock()
	if known {
		return bias
	}
	return e.RefreshBias(ctx, symbol)
}

// RefreshBias recomputes the trend bias from the most recent ~monthly
// candle: close above open is BULLISH, below is BEARISH. Any fetch
// failure or empty history yields NEUTRAL.
func (e *Engine) RefreshBias(ctx context.Context, symbol string) types.Bias {
	st := e.state(symbol)

	bias := types.BiasNeutral
	candles, err := e.brk.History(ctx, symbol, monthSeconds, 2)
	switch {
	case err != nil:
		logger.Warn(ctx, "Bias fetch failed, defaulting to neutral",
			"symbol", symbol,
			"error", err.Error())
	case len(candles) == 0:
		logger.Warn(ctx, "Bias fetch returned no candles", "symbol", symbol)
	default:
		last := candles[len(candles)-1]
		if last.Close > last.Open {
			bias = types.BiasBullish
		} else {
			bias = types.BiasBearish
		}
	}

	e.mu.Lock()
	st.bias = bias
	st.biasKnown = true
	e.mu.Unlock()

	logger.Info(ctx, "Bias updated", "symbol", symbol, "bias", string(bias))
	return bias
}
