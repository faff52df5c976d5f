package news

import (
	"context"
	"testing"
	"time"
)

func TestServiceConfigDefaults(t *testing.T) {
	cfg := DefaultServiceConfig()

	if cfg.MaxArticles != 10 {
		t.Errorf("MaxArticles = %d, want 10", cfg.MaxArticles)
	}
	if cfg.CacheDuration != 1*time.Hour {
		t.Errorf("CacheDuration = %v, want 1h", cfg.CacheDuration)
	}
	if !cfg.Enabled {
		t.Error("Enabled = false, want true")
	}
}

func TestMarketSentimentDisabled(t *testing.T) {
	cfg := DefaultServiceConfig()
	cfg.Enabled = false
	svc := NewService(cfg)

	if got := svc.MarketSentiment(context.Background()); got != 0 {
		t.Errorf("disabled sentiment = %v, want 0", got)
	}
}

func TestMarketSentimentUsesFreshCache(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	svc.setCached(0.7, time.Now())

	if got := svc.MarketSentiment(context.Background()); got != 0.7 {
		t.Errorf("sentiment = %v, want cached 0.7", got)
	}
}

func TestStaleCacheIsNotServed(t *testing.T) {
	svc := NewService(DefaultServiceConfig())
	svc.setCached(0.9, time.Now().Add(-2*time.Hour))

	svc.mu.RLock()
	fresh := time.Since(svc.fetchedAt) < svc.cfg.CacheDuration
	svc.mu.RUnlock()
	if fresh {
		t.Error("two-hour-old score still considered fresh under a 1h window")
	}
}

func TestGetDomain(t *testing.T) {
	if got := getDomain("https://www.moneycontrol.com/news/business/markets/"); got != "www.moneycontrol.com" {
		t.Errorf("getDomain = %q", got)
	}
	if got := getDomain("://bad"); got != "" {
		t.Errorf("getDomain of malformed url = %q, want empty", got)
	}
}
