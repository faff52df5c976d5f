package ta

import "hybrid-trading-bot/internal/types"

// Params are the indicator periods used to annotate a series.
type Params struct {
	RSIPeriod int
	ATRPeriod int
	ADXPeriod int
	BBPeriod  int
	BBStdDev  float64
}

// Annotate computes indicator values and pattern scores for the most
// recent bar. Short series never panic: individual indicators come back
// NaN, and fewer than two bars is ErrInsufficientData.
func Annotate(cs []types.Candle, p Params) (types.Snapshot, error) {
	if len(cs) < 2 {
		return types.Snapshot{}, types.ErrInsufficientData
	}

	closes := make([]float64, len(cs))
	highs := make([]float64, len(cs))
	lows := make([]float64, len(cs))
	for i, c := range cs {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	snap := types.Snapshot{
		RSI:      RSI(closes, p.RSIPeriod),
		ATR:      ATR(highs, lows, closes, p.ATRPeriod),
		ADX:      ADX(highs, lows, closes, p.ADXPeriod),
		Patterns: Patterns(cs),
	}
	snap.BBMiddle, snap.BBUpper, snap.BBLower = Bollinger(closes, p.BBPeriod, p.BBStdDev)
	return snap, nil
}
