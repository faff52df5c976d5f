package news

import (
	"context"
	"sync"
	"time"

	"hybrid-trading-bot/internal/logger"
)

// Service provides the cached market sentiment score. One score covers
// the whole market: sentiment gates trades globally, it is not computed
// per symbol.
type Service struct {
	scraper *Scraper
	scorer  *Scorer
	cfg     *ServiceConfig

	mu        sync.RWMutex
	cached    float64
	fetchedAt time.Time
}

// ServiceConfig configures the sentiment service
type ServiceConfig struct {
	MaxArticles    int           // Maximum articles to scrape per refresh
	CacheDuration  time.Duration // How long a score stays fresh
	ScraperTimeout time.Duration // Timeout for scraping operations
	Enabled        bool          // Whether sentiment analysis is enabled
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxArticles:    10,
		CacheDuration:  1 * time.Hour,
		ScraperTimeout: 30 * time.Second,
		Enabled:        true,
	}
}

// NewService creates a new sentiment service
func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	return &Service{
		scraper: NewScraper(cfg.ScraperTimeout),
		scorer:  NewScorer(),
		cfg:     cfg,
	}
}

// MarketSentiment returns the current market sentiment in [-1, 1].
// Disabled or failing upstreams degrade to 0.0 (neutral); sentiment is
// never a reason to stop the scan loop.
func (s *Service) MarketSentiment(ctx context.Context) float64 {
	if !s.cfg.Enabled {
		return 0.0
	}

	s.mu.RLock()
	if !s.fetchedAt.IsZero() && time.Since(s.fetchedAt) < s.cfg.CacheDuration {
		cached := s.cached
		s.mu.RUnlock()
		logger.Debug(ctx, "Using cached sentiment", "score", cached,
			"age_minutes", time.Since(s.fetchedAt).Minutes())
		return cached
	}
	s.mu.RUnlock()

	score, err := s.refresh(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to refresh sentiment, using neutral", err)
		return 0.0
	}
	return score
}

// Refresh forces a fresh fetch, bypassing the cache.
func (s *Service) Refresh(ctx context.Context) (float64, error) {
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) (float64, error) {
	articles, err := s.scraper.ScrapeMarketNews(ctx, s.cfg.MaxArticles)
	if err != nil {
		return 0, err
	}

	// Listing pages blocked or empty: fall back to Google News.
	if len(articles) == 0 {
		logger.Info(ctx, "No articles from primary sources, trying Google News")
		articles, err = s.scraper.ScrapeGoogleNews(ctx, "stock market forex", s.cfg.MaxArticles)
		if err != nil {
			return 0, err
		}
	}

	score := s.scorer.Score(articles)

	s.mu.Lock()
	s.cached = score
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	logger.Info(ctx, "Market sentiment updated", "score", score, "articles", len(articles))
	return score, nil
}

// setCached seeds the cache directly; used by tests.
func (s *Service) setCached(score float64, at time.Time) {
	s.mu.Lock()
	s.cached = score
	s.fetchedAt = at
	s.mu.Unlock()
}
