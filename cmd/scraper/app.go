package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sethvargo/go-retry"

	"content_scraper/internal/config"
	"content_scraper/internal/lock"
	"content_scraper/internal/logger"
	"content_scraper/internal/publisher"
	"content_scraper/internal/service"
	"content_scraper/internal/source/mirror"
	"content_scraper/internal/storage/postgres"
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	contents *postgres.ContentStore
	states   *postgres.ScrapeStateStore
	service  *service.ScrapeService

	closers []io.Closer
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat),
	}

	a.db, err = connectDB(ctx, cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.db)
	a.logger.Info("connected to database")

	if err := postgres.Migrate(a.db); err != nil {
		a.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, a.logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, rabbitMQ)
		pub = rabbitMQ
	}

	locker, err := a.newLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	source := mirror.New(mirror.Config{
		URL:         cfg.Feed.URL,
		Timeout:     cfg.Feed.Timeout,
		UserAgent:   cfg.Feed.UserAgent,
		MaxBodySize: cfg.Feed.MaxBodySize,
	}, a.logger)

	a.contents = postgres.NewContentStore(a.db)
	a.states = postgres.NewScrapeStateStore(a.db)
	a.service = service.NewScrapeService(source, a.contents, a.states, pub, locker, a.logger)

	return a, nil
}

func (a *app) newLocker(ctx context.Context) (service.Locker, error) {
	if a.cfg.Lock.RedisAddr == "" {
		return lock.NewLocal(), nil
	}

	rl, err := lock.NewRedis(ctx, a.cfg.Lock.RedisAddr, a.cfg.Lock.Key, a.cfg.Lock.TTL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rl)
	a.logger.Info("using redis cycle lock", "addr", a.cfg.Lock.RedisAddr, "key", a.cfg.Lock.Key)
	return rl, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("error closing resource", "error", err)
		}
	}
}

// connectDB waits for postgres with Fibonacci backoff, bounded by the
// configured connect timeout.
func connectDB(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var db *sqlx.DB
	err := retry.Fibonacci(ctx, 500*time.Millisecond, func(ctx context.Context) error {
		d, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
		if err != nil {
			logger.Warn("database not ready", "error", err)
			return retry.RetryableError(err)
		}
		db = d
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}
