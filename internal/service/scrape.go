package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"content_scraper/internal/domain"
	"content_scraper/internal/logger"
)

// modeLevels holds the log levels that differ between invocation modes.
type modeLevels struct {
	duplicate    slog.Level
	fetchFailure slog.Level
}

var levelsByMode = map[domain.Mode]modeLevels{
	domain.ModeScheduled: {duplicate: slog.LevelError, fetchFailure: slog.LevelError},
	domain.ModeOnDemand:  {duplicate: slog.LevelDebug, fetchFailure: slog.LevelWarn},
}

func levelsFor(mode domain.Mode) modeLevels {
	if l, ok := levelsByMode[mode]; ok {
		return l
	}
	return levelsByMode[domain.ModeOnDemand]
}

type ScrapeService struct {
	source    Source
	contents  ContentStore
	states    StateStore
	publisher Publisher
	locker    Locker
	logger    *slog.Logger
}

func NewScrapeService(
	source Source,
	contents ContentStore,
	states StateStore,
	publisher Publisher,
	locker Locker,
	logger *slog.Logger,
) *ScrapeService {
	return &ScrapeService{
		source:    source,
		contents:  contents,
		states:    states,
		publisher: publisher,
		locker:    locker,
		logger:    logger.With("source", source.ID()),
	}
}

// Run performs one fetch-normalize-persist cycle. Failures are logged and
// reflected in the returned stats, never returned. A cycle that finds
// another one running is skipped.
func (s *ScrapeService) Run(ctx context.Context, mode domain.Mode) *domain.CycleStats {
	startTime := time.Now()
	ctx = logger.Ctx(ctx,
		slog.String("cycle_id", uuid.NewString()),
		slog.String("mode", string(mode)),
	)

	acquired, err := s.locker.TryLock(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to acquire cycle lock", "error", err)
		return &domain.CycleStats{Mode: mode, Skipped: true}
	}
	if !acquired {
		s.logger.WarnContext(ctx, "previous cycle still running, skipping")
		return &domain.CycleStats{Mode: mode, Skipped: true}
	}
	defer func() {
		if err := s.locker.Unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.ErrorContext(ctx, "failed to release cycle lock", "error", err)
		}
	}()

	s.logger.InfoContext(ctx, "starting scrape", "source_name", s.source.Name())

	contents, ok := s.scrape(ctx, mode)

	stats := s.Save(ctx, mode, contents)
	stats.Fetched = len(contents)
	stats.FetchFailed = !ok
	stats.Duration = time.Since(startTime)

	if ok {
		s.updateState(ctx, mode, stats.New)
	}

	s.logger.InfoContext(ctx, "scrape completed",
		"fetched", stats.Fetched,
		"new", stats.New,
		"duplicates", stats.Duplicates,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats
}

func (s *ScrapeService) updateState(ctx context.Context, mode domain.Mode, saved int) {
	state, err := s.states.Get(ctx, s.source.ID())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to get scrape state", "error", err)
		return
	}

	state.LastScrapedAt = time.Now()
	state.LastMode = mode
	state.TotalSaved += int64(saved)

	if err := s.states.Update(ctx, state); err != nil {
		s.logger.ErrorContext(ctx, "failed to update scrape state", "error", err)
	}
}

// Scrape fetches and normalizes the feed. A failed fetch is logged and
// yields no records.
func (s *ScrapeService) Scrape(ctx context.Context, mode domain.Mode) []domain.Content {
	contents, _ := s.scrape(ctx, mode)
	return contents
}

func (s *ScrapeService) scrape(ctx context.Context, mode domain.Mode) ([]domain.Content, bool) {
	contents, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Log(ctx, levelsFor(mode).fetchFailure, "error during scraping", "error", err)
		return []domain.Content{}, false
	}

	s.logger.DebugContext(ctx, "fetched contents from source", "count", len(contents))
	return contents, true
}

// Save persists every content whose article URL is not yet stored. Each
// record is checked and inserted on its own; a failure moves on to the next.
func (s *ScrapeService) Save(ctx context.Context, mode domain.Mode, contents []domain.Content) *domain.CycleStats {
	levels := levelsFor(mode)
	stats := &domain.CycleStats{Mode: mode}

	for i := range contents {
		content := &contents[i]

		err := s.saveContent(ctx, content)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			stats.Duplicates++
			s.logger.Log(ctx, levels.duplicate, "content already exists", "article_url", content.ArticleURL)
			continue
		case err != nil:
			stats.Errors++
			s.logger.ErrorContext(ctx, "failed to save content",
				"article_url", content.ArticleURL,
				"error", err,
			)
			continue
		}

		stats.New++
		s.logger.DebugContext(ctx, "saved new content", "article_url", content.ArticleURL)

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, content); err != nil {
				stats.Errors++
				s.logger.WarnContext(ctx, "failed to publish content",
					"article_url", content.ArticleURL,
					"error", err,
				)
			} else {
				stats.Published++
			}
		}
	}

	return stats
}

func (s *ScrapeService) saveContent(ctx context.Context, content *domain.Content) error {
	exists, err := s.contents.ExistsByArticleURL(ctx, content.ArticleURL)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicate
	}

	return s.contents.Insert(ctx, content)
}
