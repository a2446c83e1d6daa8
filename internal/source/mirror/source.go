package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"content_scraper/internal/domain"
)

const (
	SourceID   = "mirror"
	SourceName = "Publisher Mirror Feed"

	// DefaultMaxBodySize caps the feed body when Config leaves it unset.
	DefaultMaxBodySize int64 = 10 << 20
)

// ErrBodyTooLarge is returned when the feed body exceeds the configured cap.
var ErrBodyTooLarge = errors.New("feed body too large")

// Config holds mirror source configuration.
type Config struct {
	URL         string
	Timeout     time.Duration
	UserAgent   string
	MaxBodySize int64
}

// Source fetches the publisher mirror feed and normalizes its items.
type Source struct {
	httpClient  *http.Client
	url         string
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// New creates a new mirror source.
func New(cfg Config, logger *slog.Logger) *Source {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}

	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		url:         cfg.URL,
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
		logger:      logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// Fetch downloads the feed once and returns one record per item. Any
// failure discards the whole document.
func (s *Source) Fetch(ctx context.Context) ([]domain.Content, error) {
	body, err := s.doRequest(ctx)
	if err != nil {
		return nil, err
	}

	items, err := SelectItems(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	s.logger.DebugContext(ctx, "fetched feed", "items", len(items), "bytes", len(body))

	return s.transform(ctx, items), nil
}

func (s *Source) doRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(raw)) > s.maxBodySize {
		return nil, fmt.Errorf("read body: %w (limit %d bytes)", ErrBodyTooLarge, s.maxBodySize)
	}

	body, err := toUTF8(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return body, nil
}

func (s *Source) transform(ctx context.Context, items []Item) []domain.Content {
	contents := make([]domain.Content, 0, len(items))

	for _, item := range items {
		content := Normalize(item)
		s.logMissing(ctx, content)
		contents = append(contents, content)
	}

	return contents
}

func (s *Source) logMissing(ctx context.Context, content domain.Content) {
	for _, field := range content.MissingFields() {
		if field == "article_url" {
			s.logger.DebugContext(ctx, "content field missing", "field", field, "title", content.Title)
			continue
		}
		s.logger.DebugContext(ctx, "content field missing", "field", field, "article_url", content.ArticleURL)
	}
}
