package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"content_scraper/internal/domain"
)

// ContentStore is the persistence capability the persister needs.
type ContentStore interface {
	ExistsByArticleURL(ctx context.Context, articleURL string) (bool, error)
	Insert(ctx context.Context, content *domain.Content) error
}

// StateStore keeps per-source cycle bookkeeping.
type StateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.ScrapeState, error)
	Update(ctx context.Context, state *domain.ScrapeState) error
}

type Source interface {
	ID() string
	Name() string
	Fetch(ctx context.Context) ([]domain.Content, error)
}

type Publisher interface {
	Publish(ctx context.Context, content *domain.Content) error
	Close() error
}

// Locker serializes cycles. TryLock reports false when another cycle holds
// the lock.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}
