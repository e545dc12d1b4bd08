package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	newsAPIPageSize = 20
	newsAPIMaxPages = 3
)

// NewsAPIFetcher pulls top headlines from newsapi.org, a key-authenticated,
// paginated JSON REST API. With no key configured the fetcher reports the
// unit as succeeded-but-empty so the scheduler does not count it as a
// failure; the registry normally disables the source before it gets here.
type NewsAPIFetcher struct {
	apiKey string
	client *http.Client
	log    zerolog.Logger
}

func NewNewsAPIFetcher(apiKey string, timeout time.Duration, log zerolog.Logger) *NewsAPIFetcher {
	return &NewsAPIFetcher{
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("fetcher", "newsapi").Logger(),
	}
}

func (f *NewsAPIFetcher) ID() string { return "newsapi" }

// var so tests can point the fetcher at a local server.
var newsAPIBaseURL = "https://newsapi.org"

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (f *NewsAPIFetcher) Fetch(ctx context.Context, params FetchParams) ([]RawItem, bool) {
	if f.apiKey == "" {
		return nil, true
	}

	var items []RawItem
	for page := 1; page <= newsAPIMaxPages; page++ {
		batch, total, err := f.fetchPage(ctx, params, page)
		if err != nil {
			f.log.Warn().Err(err).Int("page", page).Msg("newsapi fetch failed")
			// keep what earlier pages produced
			return items, len(items) > 0
		}
		items = append(items, batch...)
		if page*newsAPIPageSize >= total {
			break
		}
	}
	return items, true
}

func (f *NewsAPIFetcher) fetchPage(ctx context.Context, params FetchParams, page int) ([]RawItem, int, error) {
	q := url.Values{}
	q.Set("country", params.Country)
	q.Set("category", params.Category)
	q.Set("pageSize", fmt.Sprint(newsAPIPageSize))
	q.Set("page", fmt.Sprint(page))

	reqURL := fmt.Sprintf("%s/v2/top-headlines?%s", newsAPIBaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("X-Api-Key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, &statusError{code: resp.StatusCode, url: reqURL}
	}

	body, err := readBounded(resp)
	if err != nil {
		return nil, 0, err
	}

	var parsed newsAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Status != "ok" {
		return nil, 0, fmt.Errorf("api status %q", parsed.Status)
	}

	items := make([]RawItem, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		// entries without a title, description or image are too thin to store
		if a.Title == "" || a.Description == "" || a.URLToImage == "" {
			continue
		}
		sourceLabel := a.Source.Name
		if sourceLabel == "" {
			sourceLabel = "NewsAPI"
		}
		content := a.Content
		if content == "" {
			content = a.Description
		}
		items = append(items, RawItem{
			Title:       strings.TrimSpace(a.Title),
			Link:        a.URL,
			Description: a.Description,
			Content:     content,
			Author:      a.Author,
			ImageURL:    a.URLToImage,
			Published:   a.PublishedAt,
			SourceLabel: sourceLabel,
			Raw:         map[string]any{"source_id": a.Source.ID},
		})
	}
	return items, parsed.TotalResults, nil
}
