package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"content_scraper/internal/domain"
)

const stateTable = "scrape_state"

type ScrapeStateStore struct {
	db *sqlx.DB
}

func NewScrapeStateStore(db *sqlx.DB) *ScrapeStateStore {
	return &ScrapeStateStore{db: db}
}

// Get returns the state for a source. A source that never completed a
// cycle gets a zero state.
func (s *ScrapeStateStore) Get(ctx context.Context, sourceID string) (*domain.ScrapeState, error) {
	query, args, err := psql.
		Select("id", "source_id", "last_scraped_at", "last_mode", "total_saved").
		From(stateTable).
		Where(sq.Eq{"source_id": sourceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build state query: %w", err)
	}

	var state domain.ScrapeState
	err = s.db.GetContext(ctx, &state, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.ScrapeState{SourceID: sourceID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scrape state: %w", err)
	}
	return &state, nil
}

func (s *ScrapeStateStore) Update(ctx context.Context, state *domain.ScrapeState) error {
	query, args, err := psql.
		Insert(stateTable).
		Columns("source_id", "last_scraped_at", "last_mode", "total_saved").
		Values(state.SourceID, state.LastScrapedAt, state.LastMode, state.TotalSaved).
		Suffix(`ON CONFLICT (source_id) DO UPDATE SET
			last_scraped_at = EXCLUDED.last_scraped_at,
			last_mode = EXCLUDED.last_mode,
			total_saved = EXCLUDED.total_saved`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build state upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update scrape state: %w", err)
	}
	return nil
}
