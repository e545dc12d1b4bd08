package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
)

const googleNewsMaxItems = 10

// GoogleNewsFetcher handles the Google News feed dialect: category-keyed
// search feeds with hl/gl/ceid locale parameters, and item titles suffixed
// with " - Publisher" which doubles as the source label.
type GoogleNewsFetcher struct {
	client *http.Client
	parser *gofeed.Parser
	log    zerolog.Logger
}

func NewGoogleNewsFetcher(timeout time.Duration, log zerolog.Logger) *GoogleNewsFetcher {
	return &GoogleNewsFetcher{
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
		log:    log.With().Str("fetcher", "google_news").Logger(),
	}
}

func (f *GoogleNewsFetcher) ID() string { return "google_news" }

func (f *GoogleNewsFetcher) Fetch(ctx context.Context, params FetchParams) ([]RawItem, bool) {
	feedURL := f.buildURL(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		f.log.Warn().Err(err).Msg("build request failed")
		return nil, false
	}
	req.Header.Set("User-Agent", "MarketplaceNewsBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn().Err(err).Str("url", feedURL).Msg("feed fetch failed")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.log.Warn().Int("status", resp.StatusCode).Str("url", feedURL).Msg("feed fetch failed")
		return nil, false
	}

	body, err := readBounded(resp)
	if err != nil {
		f.log.Warn().Err(err).Msg("read feed body failed")
		return nil, false
	}

	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		f.log.Warn().Err(err).Str("url", feedURL).Msg("feed parse failed")
		return nil, false
	}

	items := make([]RawItem, 0, googleNewsMaxItems)
	for _, entry := range feed.Items {
		if len(items) >= googleNewsMaxItems {
			break
		}
		if entry.Title == "" || entry.Link == "" {
			continue
		}
		item := feedEntryToRaw(entry, "Google News")
		item.Title, item.SourceLabel = splitPublisherSuffix(item.Title, item.SourceLabel)
		items = append(items, item)
	}
	return items, true
}

// baseURL is a var so tests can point the fetcher at a local server.
var googleNewsBaseURL = "https://news.google.com"

func (f *GoogleNewsFetcher) buildURL(params FetchParams) string {
	country := strings.ToUpper(params.Country)
	if country == "" {
		country = "US"
	}
	locale := fmt.Sprintf("hl=en-%s&gl=%s&ceid=%s:en", country, country, country)

	if params.Category == "" || params.Category == "general" {
		return fmt.Sprintf("%s/rss?%s", googleNewsBaseURL, locale)
	}
	return fmt.Sprintf("%s/rss/search?q=%s&%s",
		googleNewsBaseURL, url.QueryEscape(params.Category), locale)
}

// splitPublisherSuffix strips the trailing " - Publisher" Google News appends
// to titles, using it as the source label instead.
func splitPublisherSuffix(title, fallback string) (string, string) {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		publisher := strings.TrimSpace(title[idx+3:])
		if publisher != "" && len(publisher) < 60 {
			return strings.TrimSpace(title[:idx]), publisher
		}
	}
	return title, fallback
}
