package engine

import (
	"math"

	"hybrid-trading-bot/internal/ta"
	"hybrid-trading-bot/internal/types"
)

const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0
	adxTrendFloor = 25.0
)

// evaluate applies the confluence gates to one snapshot. Every gate
// must pass; there is no weighting and no partial score. A NaN
// indicator fails its gate outright.
func evaluate(symbol string, bias types.Bias, snap types.Snapshot, sentiment, threshold float64) *types.Signal {
	var dir types.Direction
	var pool []string
	switch bias {
	case types.BiasBullish:
		dir = types.Buy
		pool = ta.BullishPatterns
	case types.BiasBearish:
		dir = types.Sell
		pool = ta.BearishPatterns
	default:
		return nil
	}

	var matched []string
	for _, name := range pool {
		score, ok := snap.Patterns[name]
		if !ok {
			continue
		}
		if dir == types.Buy && score > 0 {
			matched = append(matched, name)
		}
		if dir == types.Sell && score < 0 {
			matched = append(matched, name)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	// Strongly opposed sentiment vetoes the signal; anything milder
	// passes, including an unavailable (zero) score.
	if dir == types.Buy && !(sentiment > -threshold) {
		return nil
	}
	if dir == types.Sell && !(sentiment < threshold) {
		return nil
	}

	if math.IsNaN(snap.RSI) {
		return nil
	}
	if dir == types.Buy && snap.RSI >= rsiOverbought {
		return nil
	}
	if dir == types.Sell && snap.RSI <= rsiOversold {
		return nil
	}

	if math.IsNaN(snap.ADX) || snap.ADX <= adxTrendFloor {
		return nil
	}

	return &types.Signal{
		Symbol:    symbol,
		Direction: dir,
		Patterns:  matched,
		RSI:       snap.RSI,
		ADX:       snap.ADX,
		Sentiment: sentiment,
	}
}
