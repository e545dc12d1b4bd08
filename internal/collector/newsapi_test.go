package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewsAPISkipsWithoutKey(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	old := newsAPIBaseURL
	newsAPIBaseURL = srv.URL
	defer func() { newsAPIBaseURL = old }()

	f := NewNewsAPIFetcher("", 5*time.Second, zerolog.Nop())
	items, ok := f.Fetch(context.Background(), FetchParams{Country: "us", Category: "general"})

	if !ok {
		t.Fatalf("missing key is a skip, not a failure")
	}
	if len(items) != 0 || calls != 0 {
		t.Fatalf("disabled fetcher must not call out: items=%d calls=%d", len(items), calls)
	}
}

func TestNewsAPIFiltersLowQualityEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "k123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"status":"ok","totalResults":3,"articles":[
			{"title":"Good story","description":"has everything","url":"https://n/1","urlToImage":"https://n/1.jpg","publishedAt":"2024-01-01T10:00:00Z","source":{"id":"s1","name":"Source One"}},
			{"title":"No image","description":"desc","url":"https://n/2","urlToImage":""},
			{"title":"","description":"no title","url":"https://n/3","urlToImage":"https://n/3.jpg"}
		]}`)
	}))
	defer srv.Close()

	old := newsAPIBaseURL
	newsAPIBaseURL = srv.URL
	defer func() { newsAPIBaseURL = old }()

	f := NewNewsAPIFetcher("k123", 5*time.Second, zerolog.Nop())
	items, ok := f.Fetch(context.Background(), FetchParams{Country: "us", Category: "business"})

	if !ok {
		t.Fatalf("expected ok fetch")
	}
	if len(items) != 1 {
		t.Fatalf("expected entries without title/description/image dropped, got %d", len(items))
	}
	if items[0].Title != "Good story" || items[0].ImageURL != "https://n/1.jpg" || items[0].SourceLabel != "Source One" {
		t.Fatalf("item mapped wrong: %+v", items[0])
	}
}

func TestNewsAPIWalksPages(t *testing.T) {
	pagesSeen := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesSeen[page] = true
		fmt.Fprintf(w, `{"status":"ok","totalResults":25,"articles":[
			{"title":"Story page %s","description":"d","url":"https://n/p%s","urlToImage":"https://n/p%s.jpg"}
		]}`, page, page, page)
	}))
	defer srv.Close()

	old := newsAPIBaseURL
	newsAPIBaseURL = srv.URL
	defer func() { newsAPIBaseURL = old }()

	f := NewNewsAPIFetcher("k123", 5*time.Second, zerolog.Nop())
	items, ok := f.Fetch(context.Background(), FetchParams{Country: "us", Category: "general"})

	if !ok {
		t.Fatalf("expected ok fetch")
	}
	// totalResults 25 with pageSize 20 means exactly two pages
	if !pagesSeen["1"] || !pagesSeen["2"] || pagesSeen["3"] {
		t.Fatalf("pagination wrong, pages seen: %v", pagesSeen)
	}
	if len(items) != 2 {
		t.Fatalf("expected one kept item per page, got %d", len(items))
	}
}

func TestNewsAPIRateLimitFailsUnit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	old := newsAPIBaseURL
	newsAPIBaseURL = srv.URL
	defer func() { newsAPIBaseURL = old }()

	f := NewNewsAPIFetcher("k123", 5*time.Second, zerolog.Nop())
	items, ok := f.Fetch(context.Background(), FetchParams{Country: "us", Category: "general"})
	if ok || len(items) != 0 {
		t.Fatalf("429 should fail the unit: ok=%v items=%d", ok, len(items))
	}
}

func TestGNewsFetchAndFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "g123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"totalArticles":2,"articles":[
			{"title":"Kept","description":"d","content":"full text","url":"https://g/1","image":"https://g/1.jpg","publishedAt":"2024-01-01T10:00:00Z","source":{"name":"GSrc","url":"https://gsrc"}},
			{"title":"Dropped","description":"","url":"https://g/2","image":"https://g/2.jpg"}
		]}`)
	}))
	defer srv.Close()

	old := gnewsBaseURL
	gnewsBaseURL = srv.URL
	defer func() { gnewsBaseURL = old }()

	f := NewGNewsFetcher("g123", 5*time.Second, zerolog.Nop())
	items, ok := f.Fetch(context.Background(), FetchParams{Country: "us", Category: "general"})

	if !ok || len(items) != 1 {
		t.Fatalf("expected 1 kept item, got %d (ok=%v)", len(items), ok)
	}
	if items[0].Title != "Kept" || items[0].Content != "full text" {
		t.Fatalf("item mapped wrong: %+v", items[0])
	}

	// no key: silent skip
	calls := 0
	srv2 := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv2.Close()
	gnewsBaseURL = srv2.URL

	f = NewGNewsFetcher("", 5*time.Second, zerolog.Nop())
	if items, ok := f.Fetch(context.Background(), FetchParams{}); !ok || len(items) != 0 || calls != 0 {
		t.Fatalf("missing key should skip silently: ok=%v items=%d calls=%d", ok, len(items), calls)
	}
}
