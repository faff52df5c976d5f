package news

import (
	"strings"

	"hybrid-trading-bot/internal/types"
)

// Scorer turns scraped headlines into a sentiment score in [-1, 1] using
// a plain keyword count. Deliberately simple: the score only gates trades
// (it never generates them), so a cheap directional reading is enough.
type Scorer struct {
	positive []string
	negative []string
}

func NewScorer() *Scorer {
	return &Scorer{
		positive: []string{"bullish", "surge", "gain", "rally", "growth", "up"},
		negative: []string{"bearish", "decline", "loss", "fall", "crash", "down"},
	}
}

// Score averages per-article keyword hits and clamps to [-1, 1].
// No articles means neutral.
func (s *Scorer) Score(articles []types.NewsArticle) float64 {
	if len(articles) == 0 {
		return 0.0
	}

	compound := 0.0
	for _, a := range articles {
		title := strings.ToLower(a.Title)
		for _, kw := range s.positive {
			if strings.Contains(title, kw) {
				compound += 0.5
			}
		}
		for _, kw := range s.negative {
			if strings.Contains(title, kw) {
				compound -= 0.5
			}
		}
	}

	avg := compound / float64(len(articles))
	if avg > 1.0 {
		return 1.0
	}
	if avg < -1.0 {
		return -1.0
	}
	return avg
}
