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

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <item>
    <title>City opens new park</title>
    <link>https://x/1</link>
    <description>&lt;img src='https://x/img.jpg'/&gt;Great news for residents</description>
    <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Second story</title>
    <link>https://x/2</link>
    <description>plain text</description>
  </item>
  <item>
    <title>Third story</title>
    <link>https://x/3</link>
    <description>over the cap</description>
  </item>
</channel>
</rss>`

func TestRSSFetcherParsesEntries(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, sampleRSS)
	}))
	defer srv.Close()

	f := NewRSSFetcher("test", "Test Feed", srv.URL+"/{country}/{category}/rss.xml", 10, 5*time.Second, zerolog.Nop())
	items, ok := f.Fetch(context.Background(), FetchParams{Country: "gb", Category: "business"})

	if !ok {
		t.Fatalf("expected ok fetch")
	}
	if gotPath != "/gb/business/rss.xml" {
		t.Fatalf("template not expanded: %q", gotPath)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.Title != "City opens new park" || first.Link != "https://x/1" {
		t.Fatalf("first item wrong: %+v", first)
	}
	if first.Published != "Mon, 01 Jan 2024 10:00:00 GMT" {
		t.Fatalf("pubDate not carried as string: %q", first.Published)
	}
	if first.SourceLabel != "Test Feed" {
		t.Fatalf("source label = %q", first.SourceLabel)
	}
}

func TestRSSFetcherBoundsItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer srv.Close()

	f := NewRSSFetcher("test", "Test Feed", srv.URL, 2, 5*time.Second, zerolog.Nop())
	items, ok := f.Fetch(context.Background(), FetchParams{})

	if !ok || len(items) != 2 {
		t.Fatalf("expected 2 bounded items, got %d (ok=%v)", len(items), ok)
	}
}

func TestRSSFetcherFailureReturnsNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewRSSFetcher("test", "Test Feed", srv.URL, 10, 5*time.Second, zerolog.Nop())
	items, ok := f.Fetch(context.Background(), FetchParams{})
	if ok || len(items) != 0 {
		t.Fatalf("rate-limited fetch should fail the unit: ok=%v items=%d", ok, len(items))
	}

	// unreachable host
	f = NewRSSFetcher("test", "Test Feed", "http://127.0.0.1:1/rss", 10, time.Second, zerolog.Nop())
	if _, ok := f.Fetch(context.Background(), FetchParams{}); ok {
		t.Fatalf("transport error should fail the unit")
	}
}

func TestRSSFetcherMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not xml at all {{{")
	}))
	defer srv.Close()

	f := NewRSSFetcher("test", "Test Feed", srv.URL, 10, 5*time.Second, zerolog.Nop())
	if _, ok := f.Fetch(context.Background(), FetchParams{}); ok {
		t.Fatalf("parse error should fail the unit")
	}
}
