package ta

import (
	"math"

	"hybrid-trading-bot/internal/types"
)

// Pattern scores follow the talib convention: +100 bullish, -100 bearish,
// 0 absent. Each scorer looks only at the most recent bars of the series.

const (
	PatternBullishEngulfing   = "Bullish_Engulfing"
	PatternBearishEngulfing   = "Bearish_Engulfing"
	PatternHammer             = "Hammer"
	PatternShootingStar       = "Shooting_Star"
	PatternPiercingLine       = "Piercing_Line"
	PatternDarkCloud          = "DarkCloud"
	PatternMorningStar        = "Morning_Star"
	PatternEveningStar        = "Evening_Star"
	PatternThreeWhiteSoldiers = "Three_White_Soldiers"
	PatternThreeBlackCrows    = "Three_Black_Crows"
)

// BullishPatterns are the reversal/continuation patterns whose positive
// score supports a long entry.
var BullishPatterns = []string{
	PatternMorningStar,
	PatternHammer,
	PatternBullishEngulfing,
	PatternPiercingLine,
	PatternThreeWhiteSoldiers,
}

// BearishPatterns are the patterns whose negative score supports a short.
var BearishPatterns = []string{
	PatternEveningStar,
	PatternShootingStar,
	PatternBearishEngulfing,
	PatternDarkCloud,
	PatternThreeBlackCrows,
}

func body(c types.Candle) float64      { return math.Abs(c.Close - c.Open) }
func bullish(c types.Candle) bool      { return c.Close > c.Open }
func bearish(c types.Candle) bool      { return c.Close < c.Open }
func upperWick(c types.Candle) float64 { return c.High - math.Max(c.Open, c.Close) }
func lowerWick(c types.Candle) float64 { return math.Min(c.Open, c.Close) - c.Low }
func midpoint(c types.Candle) float64  { return (c.Open + c.Close) / 2 }

// Patterns scores all known candlestick patterns for the latest bar of cs.
// Fewer than 3 bars yields zero scores for the 3-bar patterns; fewer than
// 2 bars yields an all-zero map.
func Patterns(cs []types.Candle) map[string]float64 {
	scores := map[string]float64{
		PatternBullishEngulfing:   0,
		PatternBearishEngulfing:   0,
		PatternHammer:             0,
		PatternShootingStar:       0,
		PatternPiercingLine:       0,
		PatternDarkCloud:          0,
		PatternMorningStar:        0,
		PatternEveningStar:        0,
		PatternThreeWhiteSoldiers: 0,
		PatternThreeBlackCrows:    0,
	}
	if len(cs) < 2 {
		return scores
	}

	cur := cs[len(cs)-1]
	prev := cs[len(cs)-2]

	if isBullishEngulfing(prev, cur) {
		scores[PatternBullishEngulfing] = 100
	}
	if isBearishEngulfing(prev, cur) {
		scores[PatternBearishEngulfing] = -100
	}
	if isHammer(cur) {
		scores[PatternHammer] = 100
	}
	if isShootingStar(cur) {
		scores[PatternShootingStar] = -100
	}
	if isPiercingLine(prev, cur) {
		scores[PatternPiercingLine] = 100
	}
	if isDarkCloudCover(prev, cur) {
		scores[PatternDarkCloud] = -100
	}

	if len(cs) >= 3 {
		first := cs[len(cs)-3]
		if isMorningStar(first, prev, cur) {
			scores[PatternMorningStar] = 100
		}
		if isEveningStar(first, prev, cur) {
			scores[PatternEveningStar] = -100
		}
		if isThreeWhiteSoldiers(first, prev, cur) {
			scores[PatternThreeWhiteSoldiers] = 100
		}
		if isThreeBlackCrows(first, prev, cur) {
			scores[PatternThreeBlackCrows] = -100
		}
	}

	return scores
}

func isBullishEngulfing(prev, cur types.Candle) bool {
	return bearish(prev) && bullish(cur) &&
		cur.Open <= prev.Close && cur.Close >= prev.Open &&
		body(cur) > body(prev)
}

func isBearishEngulfing(prev, cur types.Candle) bool {
	return bullish(prev) && bearish(cur) &&
		cur.Open >= prev.Close && cur.Close <= prev.Open &&
		body(cur) > body(prev)
}

// isHammer: small body near the top of the range with a lower shadow at
// least twice the body.
func isHammer(c types.Candle) bool {
	b := body(c)
	if b == 0 {
		return false
	}
	return lowerWick(c) >= 2*b && upperWick(c) <= b
}

// isShootingStar: mirror of the hammer, upper shadow dominates.
func isShootingStar(c types.Candle) bool {
	b := body(c)
	if b == 0 {
		return false
	}
	return upperWick(c) >= 2*b && lowerWick(c) <= b
}

// isPiercingLine: bearish bar followed by a bullish bar opening below the
// prior close and closing above the prior body midpoint.
func isPiercingLine(prev, cur types.Candle) bool {
	return bearish(prev) && bullish(cur) &&
		cur.Open < prev.Close &&
		cur.Close > midpoint(prev) && cur.Close < prev.Open
}

func isDarkCloudCover(prev, cur types.Candle) bool {
	return bullish(prev) && bearish(cur) &&
		cur.Open > prev.Close &&
		cur.Close < midpoint(prev) && cur.Close > prev.Open
}

// isMorningStar: long bearish bar, small-bodied middle bar below it, then
// a bullish bar closing above the first bar's midpoint.
func isMorningStar(first, mid, cur types.Candle) bool {
	return bearish(first) &&
		body(mid) < body(first)*0.5 &&
		midpoint(mid) < first.Close &&
		bullish(cur) && cur.Close > midpoint(first)
}

func isEveningStar(first, mid, cur types.Candle) bool {
	return bullish(first) &&
		body(mid) < body(first)*0.5 &&
		midpoint(mid) > first.Close &&
		bearish(cur) && cur.Close < midpoint(first)
}

func isThreeWhiteSoldiers(a, b, c types.Candle) bool {
	return bullish(a) && bullish(b) && bullish(c) &&
		b.Close > a.Close && c.Close > b.Close &&
		b.Open > a.Open && b.Open < a.Close &&
		c.Open > b.Open && c.Open < b.Close
}

func isThreeBlackCrows(a, b, c types.Candle) bool {
	return bearish(a) && bearish(b) && bearish(c) &&
		b.Close < a.Close && c.Close < b.Close &&
		b.Open < a.Open && b.Open > a.Close &&
		c.Open < b.Open && c.Open > b.Close
}
