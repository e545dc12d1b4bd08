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

const gnewsMaxItems = 10

// GNewsFetcher pulls top headlines from gnews.io. Same family as NewsAPI but
// a different envelope: token query auth, single page (the free tier does not
// paginate), image under "image".
type GNewsFetcher struct {
	apiKey string
	client *http.Client
	log    zerolog.Logger
}

func NewGNewsFetcher(apiKey string, timeout time.Duration, log zerolog.Logger) *GNewsFetcher {
	return &GNewsFetcher{
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("fetcher", "gnews").Logger(),
	}
}

func (f *GNewsFetcher) ID() string { return "gnews" }

// var so tests can point the fetcher at a local server.
var gnewsBaseURL = "https://gnews.io"

type gnewsResponse struct {
	TotalArticles int `json:"totalArticles"`
	Articles      []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		Image       string `json:"image"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"source"`
	} `json:"articles"`
}

func (f *GNewsFetcher) Fetch(ctx context.Context, params FetchParams) ([]RawItem, bool) {
	if f.apiKey == "" {
		return nil, true
	}

	q := url.Values{}
	q.Set("country", params.Country)
	q.Set("category", params.Category)
	q.Set("max", fmt.Sprint(gnewsMaxItems))
	q.Set("token", f.apiKey)

	reqURL := fmt.Sprintf("%s/api/v4/top-headlines?%s", gnewsBaseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		f.log.Warn().Err(err).Msg("build request failed")
		return nil, false
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn().Err(err).Msg("gnews fetch failed")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.log.Warn().Int("status", resp.StatusCode).Msg("gnews fetch failed")
		return nil, false
	}

	body, err := readBounded(resp)
	if err != nil {
		f.log.Warn().Err(err).Msg("read gnews body failed")
		return nil, false
	}

	var parsed gnewsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		f.log.Warn().Err(err).Msg("decode gnews response failed")
		return nil, false
	}

	items := make([]RawItem, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		if a.Title == "" || a.Description == "" || a.Image == "" {
			continue
		}
		sourceLabel := a.Source.Name
		if sourceLabel == "" {
			sourceLabel = "GNews"
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
			ImageURL:    a.Image,
			Published:   a.PublishedAt,
			SourceLabel: sourceLabel,
			Raw:         map[string]any{"source_url": a.Source.URL},
		})
	}
	return items, true
}
