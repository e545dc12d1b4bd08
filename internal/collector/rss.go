package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
)

// RSSFetcher is the generic syndication-feed fetcher. Dialect differences
// between providers are confined to URL construction, so most feed sources
// are just an RSSFetcher with a different template.
//
// The URL template may contain {country} and {category} placeholders.
type RSSFetcher struct {
	id          string
	sourceLabel string
	urlTemplate string
	maxItems    int
	client      *http.Client
	parser      *gofeed.Parser
	log         zerolog.Logger
}

func NewRSSFetcher(id, sourceLabel, urlTemplate string, maxItems int, timeout time.Duration, log zerolog.Logger) *RSSFetcher {
	if maxItems <= 0 {
		maxItems = 10
	}
	return &RSSFetcher{
		id:          id,
		sourceLabel: sourceLabel,
		urlTemplate: urlTemplate,
		maxItems:    maxItems,
		client:      &http.Client{Timeout: timeout},
		parser:      gofeed.NewParser(),
		log:         log.With().Str("fetcher", id).Logger(),
	}
}

func (f *RSSFetcher) ID() string { return f.id }

func (f *RSSFetcher) Fetch(ctx context.Context, params FetchParams) ([]RawItem, bool) {
	url := expandTemplate(f.urlTemplate, params)

	feed, err := f.fetchFeed(ctx, url)
	if err != nil {
		f.log.Warn().Err(err).Str("url", url).Msg("feed fetch failed")
		return nil, false
	}

	items := make([]RawItem, 0, f.maxItems)
	for _, entry := range feed.Items {
		if len(items) >= f.maxItems {
			break
		}
		if entry.Title == "" || entry.Link == "" {
			continue
		}
		items = append(items, feedEntryToRaw(entry, f.sourceLabel))
	}
	return items, true
}

func (f *RSSFetcher) fetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "MarketplaceNewsBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, url: url}
	}

	body, err := readBounded(resp)
	if err != nil {
		return nil, err
	}
	return f.parser.Parse(bytes.NewReader(body))
}

// feedEntryToRaw maps a parsed feed entry onto the loose RawItem shape shared
// by every fetcher family.
func feedEntryToRaw(entry *gofeed.Item, sourceLabel string) RawItem {
	item := RawItem{
		Title:       strings.TrimSpace(entry.Title),
		Link:        strings.TrimSpace(entry.Link),
		Description: entry.Description,
		Content:     entry.Content,
		Published:   entry.Published,
		SourceLabel: sourceLabel,
	}
	if item.Published == "" {
		item.Published = entry.Updated
	}
	if len(entry.Authors) > 0 {
		item.Author = entry.Authors[0].Name
	}
	if entry.Image != nil {
		item.ImageURL = entry.Image.URL
	}
	if item.ImageURL == "" {
		for _, enc := range entry.Enclosures {
			if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
				item.ImageURL = enc.URL
				break
			}
		}
	}
	return item
}

func expandTemplate(tpl string, params FetchParams) string {
	url := strings.ReplaceAll(tpl, "{country}", params.Country)
	return strings.ReplaceAll(url, "{category}", params.Category)
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.code, e.url)
}
