package storage

import (
	"time"

	"gorm.io/datatypes"
)

// Article is the canonical editorial record. Everything the pipeline stores
// is scoped to a tenant; the composite unique indexes on (tenant_id, title)
// and (tenant_id, url) back the upsert identity but the write path never
// relies on them erroring.
type Article struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	TenantID string `gorm:"size:64;index;uniqueIndex:idx_tenant_title;uniqueIndex:idx_tenant_url;not null" json:"tenantId"`

	Title   string `gorm:"size:512;uniqueIndex:idx_tenant_title;not null" json:"title"`
	Slug    string `gorm:"size:120;index" json:"slug"`
	Content string `gorm:"type:text" json:"content"`
	Excerpt string `gorm:"size:400" json:"excerpt"`

	ImageURL   string `gorm:"size:1024" json:"imageUrl,omitempty"`
	Author     string `gorm:"size:256" json:"author,omitempty"`
	SourceName string `gorm:"size:128" json:"sourceName"`
	SourceID   string `gorm:"size:64;index" json:"sourceId"`
	URL        string `gorm:"size:1024;uniqueIndex:idx_tenant_url" json:"url"`

	Country  string `gorm:"size:8;index" json:"country"`
	Category string `gorm:"size:64;index" json:"category"`

	PublishedAt time.Time `gorm:"index" json:"publishedAt"`
	// Soft ordering hint: articles with an image rank above those without.
	Priority int               `gorm:"index" json:"priority"`
	Raw      datatypes.JSONMap `gorm:"type:jsonb" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category is the tenant-scoped taxonomy. Rows are created lazily the first
// time a topic shows up for a tenant, never duplicated.
type Category struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	TenantID string `gorm:"size:64;uniqueIndex:idx_tenant_cat_slug;not null" json:"tenantId"`
	Name     string `gorm:"size:128;not null" json:"name"`
	Slug     string `gorm:"size:128;uniqueIndex:idx_tenant_cat_slug;not null" json:"slug"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
