package engine

import (
	"math"
	"testing"

	"hybrid-trading-bot/internal/ta"
	"hybrid-trading-bot/internal/types"
)

func bullishSnapshot() types.Snapshot {
	return types.Snapshot{
		RSI: 55,
		ADX: 30,
		ATR: 1.2,
		Patterns: map[string]float64{
			ta.PatternBullishEngulfing: 100,
			ta.PatternHammer:           0,
		},
	}
}

func TestEvaluateBullishConfluence(t *testing.T) {
	sig := evaluate("R_100", types.BiasBullish, bullishSnapshot(), 0.2, 0.5)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Direction != types.Buy {
		t.Errorf("Direction = %q, want BUY", sig.Direction)
	}
	if len(sig.Patterns) != 1 || sig.Patterns[0] != ta.PatternBullishEngulfing {
		t.Errorf("Patterns = %v, want [%s]", sig.Patterns, ta.PatternBullishEngulfing)
	}
}

func TestEvaluateNeutralBiasNeverSignals(t *testing.T) {
	snap := bullishSnapshot()
	snap.Patterns[ta.PatternBearishEngulfing] = -100
	if sig := evaluate("R_100", types.BiasNeutral, snap, 0, 0.5); sig != nil {
		t.Fatalf("neutral bias produced signal %+v", sig)
	}
}

func TestEvaluateWeakTrendNeverSignals(t *testing.T) {
	snap := bullishSnapshot()
	snap.ADX = 10
	if sig := evaluate("R_100", types.BiasBullish, snap, 0.2, 0.5); sig != nil {
		t.Fatalf("ADX=10 produced signal %+v", sig)
	}
	snap.ADX = 25
	if sig := evaluate("R_100", types.BiasBullish, snap, 0.2, 0.5); sig != nil {
		t.Fatal("ADX exactly at the floor should not signal")
	}
}

func TestEvaluateSentimentVeto(t *testing.T) {
	snap := bullishSnapshot()
	// Strongly opposed for a bullish setup.
	if sig := evaluate("R_100", types.BiasBullish, snap, -0.5, 0.5); sig != nil {
		t.Fatal("sentiment at -threshold should veto a bullish signal")
	}
	// Just inside the allowed band.
	if sig := evaluate("R_100", types.BiasBullish, snap, -0.49, 0.5); sig == nil {
		t.Fatal("sentiment inside the band should pass")
	}

	bearish := types.Snapshot{
		RSI:      45,
		ADX:      30,
		Patterns: map[string]float64{ta.PatternBearishEngulfing: -100},
	}
	if sig := evaluate("R_100", types.BiasBearish, bearish, 0.5, 0.5); sig != nil {
		t.Fatal("sentiment at +threshold should veto a bearish signal")
	}
	if sig := evaluate("R_100", types.BiasBearish, bearish, 0.2, 0.5); sig == nil {
		t.Fatal("mildly bullish sentiment should not veto a bearish signal")
	}
}

func TestEvaluateRSIGate(t *testing.T) {
	snap := bullishSnapshot()
	snap.RSI = 70
	if sig := evaluate("R_100", types.BiasBullish, snap, 0, 0.5); sig != nil {
		t.Fatal("overbought RSI should gate a bullish signal")
	}

	bearish := types.Snapshot{
		RSI:      30,
		ADX:      30,
		Patterns: map[string]float64{ta.PatternShootingStar: -100},
	}
	if sig := evaluate("R_100", types.BiasBearish, bearish, 0, 0.5); sig != nil {
		t.Fatal("oversold RSI should gate a bearish signal")
	}
}

func TestEvaluateNaNIndicatorFails(t *testing.T) {
	snap := bullishSnapshot()
	snap.RSI = math.NaN()
	if sig := evaluate("R_100", types.BiasBullish, snap, 0, 0.5); sig != nil {
		t.Fatal("NaN RSI should fail its gate")
	}

	snap = bullishSnapshot()
	snap.ADX = math.NaN()
	if sig := evaluate("R_100", types.BiasBullish, snap, 0, 0.5); sig != nil {
		t.Fatal("NaN ADX should fail its gate")
	}
}

func TestEvaluateDirectionMismatch(t *testing.T) {
	// Only bearish-set patterns fired under a bullish bias.
	snap := types.Snapshot{
		RSI:      55,
		ADX:      30,
		Patterns: map[string]float64{ta.PatternBearishEngulfing: -100},
	}
	if sig := evaluate("R_100", types.BiasBullish, snap, 0, 0.5); sig != nil {
		t.Fatal("bearish patterns should not confirm a bullish bias")
	}
}
