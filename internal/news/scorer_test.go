package news

import (
	"testing"

	"hybrid-trading-bot/internal/types"
)

func articles(titles ...string) []types.NewsArticle {
	out := make([]types.NewsArticle, len(titles))
	for i, title := range titles {
		out[i] = types.NewsArticle{Title: title, Source: "test"}
	}
	return out
}

func TestScoreEmptyIsNeutral(t *testing.T) {
	s := NewScorer()
	if got := s.Score(nil); got != 0 {
		t.Errorf("Score(nil) = %v, want 0", got)
	}
}

func TestScorePositiveHeadlines(t *testing.T) {
	s := NewScorer()
	got := s.Score(articles(
		"Markets rally as sentiment turns bullish",
		"Tech stocks surge on strong growth",
	))
	if got <= 0 {
		t.Errorf("Score = %v, want positive", got)
	}
}

func TestScoreNegativeHeadlines(t *testing.T) {
	s := NewScorer()
	got := s.Score(articles(
		"Shares crash in worst decline this year",
		"Bearish outlook deepens as indices fall",
	))
	if got >= 0 {
		t.Errorf("Score = %v, want negative", got)
	}
}

func TestScoreMixedAveragesOut(t *testing.T) {
	s := NewScorer()
	got := s.Score(articles(
		"Shares rally",
		"Shares fall",
	))
	if got != 0 {
		t.Errorf("balanced headlines scored %v, want 0", got)
	}
}

func TestScoreClamped(t *testing.T) {
	s := NewScorer()
	got := s.Score(articles(
		"surge rally gain growth up bullish",
	))
	if got > 1 {
		t.Errorf("Score = %v, want clamped to 1", got)
	}
	if got != 1 {
		t.Errorf("six positive hits in one headline = %v, want clamp at 1", got)
	}

	got = s.Score(articles(
		"crash decline loss fall down bearish",
	))
	if got != -1 {
		t.Errorf("six negative hits = %v, want clamp at -1", got)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	s := NewScorer()
	if got := s.Score(articles("MARKETS RALLY")); got <= 0 {
		t.Errorf("uppercase headline scored %v, want positive", got)
	}
}
