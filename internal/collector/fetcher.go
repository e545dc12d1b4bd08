package collector

import (
	"context"
	"io"
	"net/http"
)

// Cap on any response body we are willing to read from a source.
const maxResponseBytes = 2 << 20 // 2MB

// RawItem is one article as a source produced it, before normalization.
// Fields are loosely typed on purpose: dates stay strings, descriptions may
// carry inline HTML, anything may be empty.
type RawItem struct {
	Title       string
	Link        string
	Description string
	Content     string
	Author      string
	ImageURL    string
	Published   string
	SourceLabel string
	Raw         map[string]any
}

// FetchParams selects one (country, category) unit within a source.
type FetchParams struct {
	Country  string
	Category string
}

// Fetcher pulls raw items from one external source. Implementations never
// return an error for ordinary network/parse failures: they log the cause and
// report ok=false, so one broken source cannot abort a batch.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, params FetchParams) (items []RawItem, ok bool)
}

func readBounded(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}
