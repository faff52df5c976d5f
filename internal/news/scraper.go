package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"hybrid-trading-bot/internal/logger"
	"hybrid-trading-bot/internal/types"
)

// Scraper collects broad-market headlines from financial news sources.
type Scraper struct {
	sources []NewsSource
	timeout time.Duration
}

// NewsSource defines a news source configuration
type NewsSource struct {
	Name      string
	BaseURL   string
	Path      string // listing page with broad market coverage
	Selectors ArticleSelectors
	RateLimit time.Duration
}

// ArticleSelectors defines CSS selectors for extracting article data
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	PublishedAt      string
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// NewScraper creates a new scraper with default sources
func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: getDefaultSources(),
		timeout: timeout,
	}
}

// getDefaultSources returns the financial news sources to scrape
func getDefaultSources() []NewsSource {
	return []NewsSource{
		{
			Name:    "MoneyControl",
			BaseURL: "https://www.moneycontrol.com",
			Path:    "/news/business/markets/",
			Selectors: ArticleSelectors{
				ArticleContainer: "li.clearfix",
				Title:            "h2 a, h3 a",
				URL:              "h2 a, h3 a",
				PublishedAt:      "span.ago",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:    "EconomicTimes",
			BaseURL: "https://economictimes.indiatimes.com",
			Path:    "/markets",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.story-box",
				Title:            "a",
				URL:              "a",
				PublishedAt:      "time",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// ScrapeMarketNews fetches broad-market headlines from all sources.
func (s *Scraper) ScrapeMarketNews(ctx context.Context, maxArticles int) ([]types.NewsArticle, error) {
	logger.Info(ctx, "Starting news scraping", "sources", len(s.sources))

	allArticles := []types.NewsArticle{}
	if len(s.sources) == 0 {
		return allArticles, nil
	}
	articlesPerSource := maxArticles / len(s.sources)
	if articlesPerSource < 1 {
		articlesPerSource = 1
	}

	for _, source := range s.sources {
		articles, err := s.scrapeSource(ctx, source, articlesPerSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name)
			continue
		}
		allArticles = append(allArticles, articles...)

		// Rate limiting between sources
		time.Sleep(source.RateLimit)
	}

	logger.Info(ctx, "News scraping completed", "articles", len(allArticles))
	return allArticles, nil
}

// scrapeSource scrapes headlines from a single news source
func (s *Scraper) scrapeSource(ctx context.Context, source NewsSource, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnHTML(source.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}

		articleURL := e.ChildAttr(source.Selectors.URL, "href")
		if articleURL != "" && !strings.HasPrefix(articleURL, "http") {
			articleURL = source.BaseURL + articleURL
		}

		articles = append(articles, types.NewsArticle{
			Title:       title,
			URL:         articleURL,
			Source:      source.Name,
			PublishedAt: strings.TrimSpace(e.ChildText(source.Selectors.PublishedAt)),
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	if err := c.Visit(source.BaseURL + source.Path); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", source.BaseURL+source.Path, err)
	}
	c.Wait()

	return articles, nil
}

// ScrapeGoogleNews searches Google News for market headlines (fallback).
func (s *Scraper) ScrapeGoogleNews(ctx context.Context, query string, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		// Google News nests headline anchors unpredictably; walk the DOM
		// for the first non-empty candidate.
		title := headlineFromDOM(e.DOM)
		link := e.ChildAttr("a", "href")
		if title == "" || link == "" {
			return
		}

		if strings.HasPrefix(link, "./articles/") {
			link = "https://news.google.com" + link[1:]
		}

		articles = append(articles, types.NewsArticle{
			Title:  title,
			URL:    link,
			Source: "GoogleNews",
		})
	})

	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-IN&gl=IN&ceid=IN:en", url.QueryEscape(query))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}
	c.Wait()

	logger.Info(ctx, "Google News scraping completed", "query", query, "articles", len(articles))
	return articles, nil
}

// headlineFromDOM picks the first plausible headline text from an article
// element.
func headlineFromDOM(sel *goquery.Selection) string {
	var title string
	sel.Find("h3, h4, a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if len(text) > 15 {
			title = text
			return false
		}
		return true
	})
	return title
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
