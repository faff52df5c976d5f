package interfaces

import "context"

// SentimentProvider returns a market sentiment score in [-1, 1].
// Implementations cache internally and degrade to 0.0 (neutral) on any
// upstream failure; sentiment is never fatal.
type SentimentProvider interface {
	MarketSentiment(ctx context.Context) float64
}
