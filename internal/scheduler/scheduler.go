package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/classifier"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/collector"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/normalizer"
	"github.com/TomMcAvoy/e-commerce-platform-sub001/internal/storage"
)

// startupDelay gives the store a moment to become ready before the seed pass.
const startupDelay = 15 * time.Second

// countryPause separates country batches; vars so tests run without sleeping.
var (
	countryPause = 5 * time.Second
	unitTimeout  = 30 * time.Second
)

// Writer is the slice of the store the pipeline writes through.
type Writer interface {
	SaveBatch(ctx context.Context, articles []storage.Article, key storage.UpsertKey) error
	EnsureCategory(ctx context.Context, tenantID, name, slug string) (*storage.Category, error)
	SeedCategories(ctx context.Context, tenantID string) error
}

// Scheduler owns the source registry and drives periodic ingestion runs.
// Units within a run execute sequentially to respect upstream rate limits;
// an overlapping tick is skipped, not queued (every write is an idempotent
// upsert, so the next tick re-covers the same ground).
type Scheduler struct {
	cron       *cron.Cron
	sources    []Source
	store      Writer
	classifier *classifier.Classifier
	tenantID   string
	running    atomic.Bool
	log        zerolog.Logger
}

func New(sources []Source, store Writer, cls *classifier.Classifier, tenantID string, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(),
		sources:    sources,
		store:      store,
		classifier: cls,
		tenantID:   tenantID,
		log:        log.With().Str("component", "scheduler").Logger(),
	}

	// one cron entry per source family
	bySpec := make(map[string][]Source)
	for _, src := range sources {
		bySpec[src.CronSpec] = append(bySpec[src.CronSpec], src)
	}
	for spec, group := range bySpec {
		group := group
		if _, err := s.cron.AddFunc(spec, func() { s.run(group, false) }); err != nil {
			return nil, fmt.Errorf("add cron %q: %w", spec, err)
		}
	}
	return s, nil
}

// Start launches the cron loop and schedules the seed pass. Disabled sources
// are announced here, once, and never mentioned again.
func (s *Scheduler) Start() {
	for _, src := range s.sources {
		if !src.Enabled {
			s.log.Info().Str("source", src.ID).Str("reason", src.DisabledReason).
				Msg("source disabled, will be skipped")
		}
	}
	s.cron.Start()
	time.AfterFunc(startupDelay, func() { s.run(s.sources, true) })
}

// RunOnce executes one full pass over every source. Used by cmd/collect.
func (s *Scheduler) RunOnce() {
	s.run(s.sources, false)
}

// run iterates source × country × category units sequentially. seed restricts
// each source to its default country and category so the first pass finishes
// fast and the system has content immediately.
func (s *Scheduler) run(sources []Source, seed bool) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn().Msg("previous run still in progress, skipping this tick")
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	if seed {
		s.log.Info().Msg("starting seed pass")
	} else {
		s.log.Info().Int("sources", len(sources)).Msg("starting ingestion run")
	}

	if err := s.store.SeedCategories(context.Background(), s.tenantID); err != nil {
		s.log.Error().Err(err).Msg("seed categories failed")
	}

	var processed, failedUnits int
	for _, src := range sources {
		if !src.Enabled {
			continue
		}
		countries := src.Countries
		categories := src.Categories
		if seed {
			countries = countries[:1]
			categories = []string{defaultCategory(src)}
		}

		for ci, country := range countries {
			if ci > 0 {
				time.Sleep(countryPause)
			}
			for _, category := range categories {
				n, err := s.processUnit(src, country, category)
				if err != nil {
					failedUnits++
					s.log.Warn().Err(err).
						Str("source", src.ID).Str("country", country).Str("category", category).
						Msg("unit failed")
				} else {
					processed += n
				}
				time.Sleep(src.Delay)
			}
		}
	}

	s.log.Info().
		Int("articles", processed).
		Int("failed_units", failedUnits).
		Dur("took", time.Since(start)).
		Msg("ingestion run done")
}

// processUnit runs one fetch→normalize→classify→write pass. Any failure is
// contained here: the caller logs it and moves on to the next unit.
func (s *Scheduler) processUnit(src Source, country, category string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), unitTimeout)
	defer cancel()

	items, ok := src.Fetcher.Fetch(ctx, collector.FetchParams{Country: country, Category: category})
	if !ok {
		return 0, fmt.Errorf("fetch %s/%s/%s failed", src.ID, country, category)
	}
	if len(items) == 0 {
		return 0, nil
	}

	meta := normalizer.SourceMeta{
		SourceID:   src.ID,
		SourceName: src.Name,
		Country:    country,
		Category:   category,
		TenantID:   s.tenantID,
	}

	now := time.Now()
	articles := make([]storage.Article, 0, len(items))
	seenCategories := make(map[string]bool)
	for _, item := range items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		a := normalizer.Normalize(item, meta, now)

		// general units carry no real topic; infer one from the text
		if a.Category == "" || a.Category == classifier.DefaultCategory {
			a.Category = s.classifier.Classify(a.Title, a.Excerpt)
		}
		if !seenCategories[a.Category] {
			if _, err := s.store.EnsureCategory(ctx, s.tenantID, titleCase(a.Category), a.Category); err != nil {
				return 0, fmt.Errorf("ensure category %s: %w", a.Category, err)
			}
			seenCategories[a.Category] = true
		}
		articles = append(articles, a)
	}

	if len(articles) == 0 {
		return 0, nil
	}
	if err := s.store.SaveBatch(ctx, articles, src.Key); err != nil {
		return 0, fmt.Errorf("save batch: %w", err)
	}
	return len(articles), nil
}

func defaultCategory(src Source) string {
	for _, c := range src.Categories {
		if c == classifier.DefaultCategory {
			return c
		}
	}
	return src.Categories[0]
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
