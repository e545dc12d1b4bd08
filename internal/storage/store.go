package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UpsertKey selects the natural identity an upsert matches on. Feed sources
// dedup on title, API sources on url.
type UpsertKey int

const (
	ByTitle UpsertKey = iota
	ByURL
)

const listCacheTTL = 5 * time.Minute

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
	log   zerolog.Logger
}

func NewStore(dsn, redisAddr string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.AutoMigrate(&Article{}, &Category{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// cache is optional, reads fall through to the DB
		log.Warn().Err(err).Msg("redis ping failed, list cache disabled")
		rdb = nil
	}

	return &Store{DB: db, Redis: rdb, log: log}, nil
}

// UpsertArticle writes one article for its tenant: if a row with the same
// identity key exists its fields are refreshed in place, otherwise a new row
// is inserted. Re-running the same article is a no-op row-count-wise.
func (s *Store) UpsertArticle(ctx context.Context, a *Article, key UpsertKey) error {
	return s.upsertTx(s.DB.WithContext(ctx), a, key)
}

func (s *Store) upsertTx(tx *gorm.DB, a *Article, key UpsertKey) error {
	title := truncateRunes(toValidUTF8(a.Title), 512)
	content := toValidUTF8(a.Content)
	excerpt := truncateRunes(toValidUTF8(a.Excerpt), 400)

	// The lookup matches on both identity columns, not just the family's
	// primary one: a cross-posted item that reuses a stored URL under a new
	// title must update that row, not trip the unique index on insert.
	q := tx.Where("tenant_id = ?", a.TenantID)
	switch key {
	case ByURL:
		if title != "" {
			q = q.Where("url = ? OR title = ?", a.URL, title)
		} else {
			q = q.Where("url = ?", a.URL)
		}
	default:
		if a.URL != "" {
			q = q.Where("title = ? OR url = ?", title, a.URL)
		} else {
			q = q.Where("title = ?", title)
		}
	}

	// Keep the destination free of a primary key: a pre-filled random ID
	// would join the query conditions and the lookup could never match.
	var existing Article
	err := q.First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row := *a
		row.ID = uuid.NewString()
		row.Title = title
		row.Content = content
		row.Excerpt = excerpt
		return tx.Create(&row).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&existing).Updates(map[string]any{
		"title":        title,
		"slug":         a.Slug,
		"content":      content,
		"excerpt":      excerpt,
		"image_url":    a.ImageURL,
		"author":       a.Author,
		"source_name":  a.SourceName,
		"source_id":    a.SourceID,
		"url":          a.URL,
		"country":      a.Country,
		"category":     a.Category,
		"published_at": a.PublishedAt,
		"priority":     a.Priority,
		"raw":          a.Raw,
	}).Error
}

// SaveBatch upserts a fetch unit's articles in one transaction. Semantics
// are identical to calling UpsertArticle once per article.
func (s *Store) SaveBatch(ctx context.Context, articles []Article, key UpsertKey) error {
	if len(articles) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range articles {
			if err := s.upsertTx(tx, &articles[i], key); err != nil {
				return err
			}
		}
		return nil
	})
}

// EnsureCategory looks up or creates a taxonomy row keyed by (tenant, slug).
func (s *Store) EnsureCategory(ctx context.Context, tenantID, name, slug string) (*Category, error) {
	cat := &Category{}
	err := s.DB.WithContext(ctx).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		First(cat).Error
	if err == nil {
		return cat, nil
	}

	cat = &Category{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Name:     name,
		Slug:     slug,
	}
	if err := s.DB.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, err
	}
	return cat, nil
}

// DefaultTopics is the taxonomy seeded for every tenant before first use.
var DefaultTopics = []string{
	"general", "business", "sports", "technology",
	"health", "science", "entertainment",
}

// SeedCategories makes sure the default taxonomy exists for a tenant.
// Idempotent, safe to call on every boot.
func (s *Store) SeedCategories(ctx context.Context, tenantID string) error {
	for _, name := range DefaultTopics {
		if _, err := s.EnsureCategory(ctx, tenantID, titleCase(name), name); err != nil {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}
	return nil
}

// ArticleFilter narrows ListArticles. Zero values mean no filtering.
type ArticleFilter struct {
	Country  string
	Category string
	SourceID string
	Limit    int
	Offset   int
}

// ListArticles returns a tenant's articles, newest first, optionally
// filtered. Results are cached in redis with a short TTL.
func (s *Store) ListArticles(ctx context.Context, tenantID string, f ArticleFilter) ([]Article, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}

	cacheKey := fmt.Sprintf("articles:%s:%s:%s:%s:%d:%d",
		tenantID, f.Country, f.Category, f.SourceID, f.Limit, f.Offset)
	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Article
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	db := s.DB.WithContext(ctx).Model(&Article{}).Where("tenant_id = ?", tenantID)
	if f.Country != "" {
		db = db.Where("country = ?", f.Country)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.SourceID != "" {
		db = db.Where("source_id = ?", f.SourceID)
	}

	var list []Article
	err := db.Order("published_at DESC").
		Order("priority DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&list).Error
	if err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}
	return list, nil
}

// ListCategories returns a tenant's taxonomy sorted by name, optionally
// filtered by a name prefix.
func (s *Store) ListCategories(ctx context.Context, tenantID, name string) ([]Category, error) {
	db := s.DB.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if name != "" {
		db = db.Where("name ILIKE ?", name+"%")
	}
	var list []Category
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// toValidUTF8 keeps postgres from rejecting mixed-encoding source text.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunes caps a string by rune count so varchar limits hold even for
// multi-byte text.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
