package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/collector"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/config"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/storage"
)

// Kind distinguishes the two source families. Feeds are cheap and run often;
// key-gated APIs are quota-limited and run on a slower cron.
type Kind string

const (
	KindFeed Kind = "feed"
	KindAPI  Kind = "api"
)

// Cron specs per family.
const (
	feedCronSpec = "*/30 * * * *"
	apiCronSpec  = "0 */2 * * *"
)

// Source is one registered external provider. Registrations are built once
// at process start and immutable afterwards.
type Source struct {
	ID         string
	Name       string
	Kind       Kind
	Fetcher    collector.Fetcher
	Countries  []string
	Categories []string
	// Delay is the fixed pause after each call to this source, a coarse
	// stand-in for its rate limit.
	Delay    time.Duration
	CronSpec string
	Key      storage.UpsertKey

	Enabled        bool
	DisabledReason string
}

// BuildRegistry declares every configured source. A missing API key disables
// that source only; it is logged once at startup and skipped silently on
// every run after that.
func BuildRegistry(cfg *config.Config, log zerolog.Logger) []Source {
	timeout := cfg.HTTPTimeout

	sources := []Source{
		{
			ID:   "bbc",
			Name: "BBC News",
			Kind: KindFeed,
			Fetcher: collector.NewRSSFetcher(
				"bbc", "BBC News",
				"https://feeds.bbci.co.uk/news/{category}/rss.xml",
				cfg.FeedMaxItems, timeout, log,
			),
			Countries:  []string{"gb"},
			Categories: []string{"business", "technology", "health", "science"},
			Delay:      2 * time.Second,
			CronSpec:   feedCronSpec,
			Key:        storage.ByTitle,
			Enabled:    true,
		},
		{
			ID:   "guardian",
			Name: "The Guardian",
			Kind: KindFeed,
			Fetcher: collector.NewRSSFetcher(
				"guardian", "The Guardian",
				"https://www.theguardian.com/{category}/rss",
				cfg.FeedMaxItems, timeout, log,
			),
			Countries:  []string{"gb"},
			Categories: []string{"business", "technology", "science"},
			Delay:      2 * time.Second,
			CronSpec:   feedCronSpec,
			Key:        storage.ByTitle,
			Enabled:    true,
		},
		{
			ID:         "google_news",
			Name:       "Google News",
			Kind:       KindFeed,
			Fetcher:    collector.NewGoogleNewsFetcher(timeout, log),
			Countries:  []string{"us", "gb", "in"},
			Categories: []string{"general", "business", "technology", "sports"},
			Delay:      2 * time.Second,
			CronSpec:   feedCronSpec,
			Key:        storage.ByTitle,
			Enabled:    true,
		},
		{
			ID:         "newsapi",
			Name:       "NewsAPI",
			Kind:       KindAPI,
			Fetcher:    collector.NewNewsAPIFetcher(cfg.NewsAPIKey, timeout, log),
			Countries:  []string{"us", "gb"},
			Categories: storage.DefaultTopics,
			Delay:      time.Second,
			CronSpec:   apiCronSpec,
			Key:        storage.ByURL,
			Enabled:    cfg.NewsAPIKey != "",
		},
		{
			ID:         "gnews",
			Name:       "GNews",
			Kind:       KindAPI,
			Fetcher:    collector.NewGNewsFetcher(cfg.GNewsKey, timeout, log),
			Countries:  []string{"us", "in"},
			Categories: []string{"general", "business", "technology"},
			Delay:      time.Second,
			CronSpec:   apiCronSpec,
			Key:        storage.ByURL,
			Enabled:    cfg.GNewsKey != "",
		},
	}

	for i := range sources {
		if !sources[i].Enabled && sources[i].DisabledReason == "" {
			sources[i].DisabledReason = "missing API key"
		}
	}
	return sources
}
