package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"content_scraper/internal/domain"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Runner interface {
	Run(ctx context.Context, mode domain.Mode) *domain.CycleStats
}

type ContentLister interface {
	List(ctx context.Context, limit int) ([]domain.Content, error)
}

type StateGetter interface {
	Get(ctx context.Context, sourceID string) (*domain.ScrapeState, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Config struct {
	Addr       string
	SourceID   string
	RunTimeout time.Duration
}

// Server exposes on-demand scraping and read access to stored contents.
type Server struct {
	*http.Server

	runner     Runner
	contents   ContentLister
	states     StateGetter
	db         Pinger
	sourceID   string
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewServer(cfg Config, runner Runner, contents ContentLister, states StateGetter, db Pinger, logger *slog.Logger) *Server {
	r := mux.NewRouter()

	s := &Server{
		Server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: cfg.RunTimeout + 5*time.Second,
		},
		runner:     runner,
		contents:   contents,
		states:     states,
		db:         db,
		sourceID:   cfg.SourceID,
		runTimeout: cfg.RunTimeout,
		logger:     logger.With("component", "control"),
	}

	r.Use(s.accessLog)
	r.Handle("/healthz", s.errHandler(s.handleHealth)).Methods(http.MethodGet)
	r.Handle("/v1/scrape", s.errHandler(s.postScrape)).Methods(http.MethodPost)
	r.Handle("/v1/contents", s.errHandler(s.getContents)).Methods(http.MethodGet)
	r.Handle("/v1/status", s.errHandler(s.getStatus)).Methods(http.MethodGet)

	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("control server listening", "addr", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve control: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	if err := s.db.PingContext(r.Context()); err != nil {
		return &Error{Status: http.StatusServiceUnavailable, Message: "database unavailable", cause: err}
	}
	return writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// postScrape runs one on-demand cycle. The cycle is detached from the
// request so a disconnecting client does not abort it halfway.
func (s *Server) postScrape(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.runTimeout)
	defer cancel()

	stats := s.runner.Run(ctx, domain.ModeOnDemand)

	status := http.StatusOK
	if stats.Skipped {
		status = http.StatusConflict
	}
	return writeJSON(w, status, stats)
}

func (s *Server) getContents(w http.ResponseWriter, r *http.Request) error {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		return err
	}

	contents, err := s.contents.List(r.Context(), limit)
	if err != nil {
		return fmt.Errorf("list contents: %w", err)
	}
	return writeJSON(w, http.StatusOK, contents)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) error {
	state, err := s.states.Get(r.Context(), s.sourceID)
	if err != nil {
		return fmt.Errorf("get scrape state: %w", err)
	}
	return writeJSON(w, http.StatusOK, state)
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultListLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, &Error{Status: http.StatusBadRequest, Message: "limit must be a positive integer"}
	}
	return min(limit, maxListLimit), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("encode json response: %w", err)
	}
	return nil
}
