package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"content_scraper/internal/domain"
)

const (
	contentTable = "publisher_content"

	uniqueViolation = "23505"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type ContentStore struct {
	db *sqlx.DB
}

func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) ExistsByArticleURL(ctx context.Context, articleURL string) (bool, error) {
	query, args, err := psql.
		Select("1").
		Prefix("SELECT EXISTS (").
		From(contentTable).
		Where(sq.Eq{"article_url": articleURL}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check content exists: %w", err)
	}
	return exists, nil
}

// Insert stores content. A row with the same article URL yields
// domain.ErrDuplicate.
func (s *ContentStore) Insert(ctx context.Context, content *domain.Content) error {
	query, args, err := psql.
		Insert(contentTable).
		Columns("id", "article_url", "title", "author", "html_content", "original_content", "main_image_url").
		Values(
			content.ID,
			content.ArticleURL,
			content.Title,
			content.Author,
			content.HTMLContent,
			content.OriginalContent,
			content.MainImageURL,
		).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&content.CreatedAt)
	if pqErr := (&pq.Error{}); errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("insert content %q: %w", content.ArticleURL, domain.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert content: %w", err)
	}

	return nil
}

// List returns the most recently stored contents, newest first.
func (s *ContentStore) List(ctx context.Context, limit int) ([]domain.Content, error) {
	query, args, err := psql.
		Select("id", "article_url", "title", "author", "html_content", "original_content", "main_image_url", "created_at").
		From(contentTable).
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	contents := []domain.Content{}
	if err := s.db.SelectContext(ctx, &contents, query, args...); err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	return contents, nil
}
