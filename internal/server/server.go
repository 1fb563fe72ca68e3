package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"telegram-chat-stats/internal/cache"
	"telegram-chat-stats/internal/core/services"
	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/metrics"
	"telegram-chat-stats/internal/pkg/config"
)

// taskTTL - время хранения записи о задаче.
const taskTTL = 24 * time.Hour

// ChatProcessor определяет интерфейс для варианта использования, который обрабатывает чаты.
type ChatProcessor interface {
	ProcessChat(ctx context.Context, filePath string) (*domain.Dataset, error)
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	taskStore  *TaskStore
	cacheStore *cache.CacheStore
	processor  ChatProcessor
	reports    *services.ReportService
	logger     *slog.Logger
	tempDir    string
}

// New создает новый экземпляр Server
func New(
	cfg *config.Config,
	processor ChatProcessor,
	reports *services.ReportService,
	taskStore *TaskStore,
	cacheStore *cache.CacheStore,
	logger *slog.Logger,
) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		taskStore:  taskStore,
		cacheStore: cacheStore,
		processor:  processor,
		reports:    reports,
		logger:     logger,
	}

	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)
	chiRouter.Use(metrics.Middleware)

	chiRouter.Get("/health", s.handleHealth)
	chiRouter.Handle("/metrics", promhttp.Handler())

	// Маршруты API
	chiRouter.Route("/api/v1", func(r chi.Router) {
		r.Post("/process", s.handleProcess)

		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Get("/", s.handleTaskStatus)
			r.Get("/report", s.handleReport)
			r.Get("/report.xlsx", s.handleReportXLSX)
			r.Get("/words", s.handleWords)
			r.Get("/cloud", s.handleCloud)
			r.Get("/random", s.handleRandom)
			r.Get("/messages", s.handleMessages)
		})
	})

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// StartCleanup запускает периодическую очистку задач и кеша до отмены ctx
func (s *Server) StartCleanup(ctx context.Context) {
	interval := s.cfg.Server.CleanupInterval
	if interval <= 0 {
		interval = config.DefaultCleanupInterval
	}
	s.taskStore.StartCleanupTicker(ctx, interval)
	s.cacheStore.StartCleanupTicker(ctx, interval)
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Завершение работы HTTP-сервера")
	return s.HTTPServer.Shutdown(ctx)
}
