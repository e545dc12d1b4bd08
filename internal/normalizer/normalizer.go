package normalizer

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"gorm.io/datatypes"

	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/collector"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/storage"
)

const (
	slugMaxLen    = 100
	excerptMaxLen = 240
)

// SourceMeta carries provenance for the unit being normalized.
type SourceMeta struct {
	SourceID   string
	SourceName string
	Country    string
	Category   string
	TenantID   string
}

// Normalize converts one raw item into the canonical Article shape: HTML
// stripped, slug and excerpt derived, publish date parsed with ingestion time
// as fallback. Category is left as the source supplied it; the classifier
// fills it in later when empty.
func Normalize(raw collector.RawItem, meta SourceMeta, now time.Time) storage.Article {
	content := raw.Content
	if content == "" {
		content = raw.Description
	}

	imageURL := raw.ImageURL
	if imageURL == "" {
		// feed descriptions often smuggle the thumbnail in an <img> tag
		imageURL = firstImageURL(raw.Description)
	}

	plain := StripHTML(content)
	if plain == "" {
		plain = StripHTML(raw.Description)
	}

	sourceName := raw.SourceLabel
	if sourceName == "" {
		sourceName = meta.SourceName
	}

	priority := 0
	if imageURL != "" {
		priority = 1
	}

	return storage.Article{
		TenantID:    meta.TenantID,
		Title:       strings.TrimSpace(raw.Title),
		Slug:        Slugify(raw.Title),
		Content:     plain,
		Excerpt:     Excerpt(plain, excerptMaxLen),
		ImageURL:    imageURL,
		Author:      strings.TrimSpace(raw.Author),
		SourceName:  sourceName,
		SourceID:    meta.SourceID,
		URL:         strings.TrimSpace(raw.Link),
		Country:     meta.Country,
		Category:    meta.Category,
		PublishedAt: ParseDate(raw.Published, now),
		Priority:    priority,
		Raw:         datatypes.JSONMap(raw.Raw),
	}
}

// StripHTML reduces markup to plain text with collapsed whitespace. Input
// that is already plain text passes through unchanged.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// firstImageURL returns the src of the first <img> in an HTML fragment.
func firstImageURL(s string) string {
	if !strings.Contains(s, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return strings.TrimSpace(src)
}

// Slugify derives a URL-friendly slug: lowercase, runs of non-alphanumerics
// collapsed to a single hyphen, no edge hyphens, capped at 100 characters.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > slugMaxLen {
		slug = strings.TrimRight(slug[:slugMaxLen], "-")
	}
	return slug
}

// Excerpt returns a bounded prefix of text, cut at a word boundary when one
// is reasonably close.
func Excerpt(text string, limit int) string {
	rs := []rune(text)
	if len(rs) <= limit {
		return text
	}
	cut := string(rs[:limit])
	if idx := strings.LastIndex(cut, " "); idx > limit/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	time.RFC822Z,
	time.RFC822,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a source publish-date string, trying the formats feeds
// and APIs actually emit. Unparsable or empty input yields the ingestion
// time so every article has a usable timestamp.
func ParseDate(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}
