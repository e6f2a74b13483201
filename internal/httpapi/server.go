package httpapi

import (
	"context"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MimeLyc/subtitle-vocab-miner/internal/config"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/jobs"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/library"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/persistence"
	"github.com/MimeLyc/subtitle-vocab-miner/internal/service"
)

type runtimeSettingsStore interface {
	GetRuntimeSettings() (config.RuntimeSettings, error)
	UpdateRuntimeSettings(next config.RuntimeSettings) (config.RuntimeSettings, error)
}

type runtimeSettingsApplier func(next config.RuntimeSettings) error

// queueController starts, stops and reports queue runs.
type queueController interface {
	Start(ctx context.Context) error
	Cancel() bool
	Status() service.QueueStatus
	Events() *service.EventHub
}

type statsSource interface {
	OverallStats(ctx context.Context) (persistence.OverallStats, error)
	SeriesStats(ctx context.Context) ([]persistence.SeriesStats, error)
	RecentSessions(ctx context.Context, limit int) ([]persistence.MiningSession, error)
	DifficultyRanking(ctx context.Context) ([]persistence.SeriesDifficulty, error)
	ListCards(ctx context.Context, limit int) ([]persistence.Card, error)
	KnownWordCount(ctx context.Context) (int, error)
}

type Server struct {
	queue    *jobs.Queue
	runs     queueController
	stats    statsSource
	scanner  *library.Scanner
	settings runtimeSettingsStore
	apply    runtimeSettingsApplier

	uiEnabled   bool
	uiStaticDir string
	mediaDir    string

	streamInterval time.Duration

	router chi.Router
	server *http.Server
}

type Option func(*Server)

func WithUI(staticDir string, enabled bool) Option {
	return func(s *Server) {
		s.uiStaticDir = staticDir
		s.uiEnabled = enabled
	}
}

// WithMediaDir serves extracted screenshots and audio under /media/.
func WithMediaDir(dir string) Option {
	return func(s *Server) {
		s.mediaDir = dir
	}
}

func WithRuntimeSettingsStore(store runtimeSettingsStore) Option {
	return func(s *Server) {
		s.settings = store
	}
}

func WithRuntimeSettingsApplier(apply runtimeSettingsApplier) Option {
	return func(s *Server) {
		s.apply = apply
	}
}

func WithStats(stats statsSource) Option {
	return func(s *Server) {
		s.stats = stats
	}
}

func WithScanner(scanner *library.Scanner) Option {
	return func(s *Server) {
		s.scanner = scanner
	}
}

// WithStreamInterval sets how often /api/queue/stream sends a snapshot.
func WithStreamInterval(interval time.Duration) Option {
	return func(s *Server) {
		if interval > 0 {
			s.streamInterval = interval
		}
	}
}

func NewServer(queue *jobs.Queue, runs queueController, opts ...Option) *Server {
	s := &Server{
		queue:          queue,
		runs:           runs,
		scanner:        library.NewScanner(),
		streamInterval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", s.handleListQueue)
			r.Post("/", s.handleAddQueueItem)
			r.Delete("/", s.handleClearQueue)
			r.Post("/run", s.handleRunQueue)
			r.Post("/cancel", s.handleCancelQueue)
			r.Get("/stream", s.handleQueueStream)
			r.Delete("/{id}", s.handleRemoveQueueItem)
			r.Post("/{id}/requeue", s.handleRequeueItem)
		})
		r.Get("/events", s.handleEvents)
		r.Get("/stats", s.handleStats)
		r.Get("/stats/series", s.handleSeriesStats)
		r.Get("/cards", s.handleListCards)
		r.Get("/library", s.handleLibrary)
		r.Get("/pairs", s.handlePairs)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
	})

	if s.mediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(s.mediaDir))))
	}
	r.NotFound(s.handleStatic)
	s.router = r
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if !s.uiEnabled || s.uiStaticDir == "" || strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	rel := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	indexPath := filepath.Join(s.uiStaticDir, "index.html")

	if rel == "" || !strings.Contains(filepath.Base(rel), ".") {
		http.ServeFile(w, r, indexPath)
		return
	}

	filePath := filepath.Join(s.uiStaticDir, rel)
	if _, err := os.Stat(filePath); err != nil {
		// unknown asset paths fall back to the dashboard page
		http.ServeFile(w, r, indexPath)
		return
	}
	http.ServeFile(w, r, filePath)
}
