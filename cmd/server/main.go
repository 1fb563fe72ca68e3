package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"

	"telegram-chat-stats/internal/cache"
	"telegram-chat-stats/internal/core/services"
	"telegram-chat-stats/internal/core/stopwords"
	"telegram-chat-stats/internal/log"
	"telegram-chat-stats/internal/pkg/config"
	"telegram-chat-stats/internal/server"
	"telegram-chat-stats/internal/server/usecase"
)

func main() {
	var (
		configPath string
		background bool
	)

	root := &cobra.Command{
		Use:           "chatstats-server",
		Short:         "HTTP-сервер статистики экспортов Telegram",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, background)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFile, "путь к файлу конфигурации")
	root.Flags().BoolVarP(&background, "daemon", "d", false, "запустить в фоне")

	if err := root.Execute(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run(configPath string, background bool) error {
	// 1. Загрузка и валидация конфигурации
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// 2. Уход в фон: родительский процесс завершается сразу после запуска потомка
	if background {
		dctx := &daemon.Context{
			PidFileName: cfg.Daemon.PidFile,
			PidFilePerm: 0o644,
			LogFileName: cfg.Daemon.LogFile,
			LogFilePerm: 0o640,
			WorkDir:     cfg.Daemon.WorkDir,
			Umask:       0o27,
		}
		child, err := dctx.Reborn()
		if err != nil {
			return fmt.Errorf("не удалось запустить демон: %w", err)
		}
		if child != nil {
			fmt.Printf("Сервер запущен в фоне, pid %d\n", child.Pid)
			return nil
		}
		defer func() { _ = dctx.Release() }()
	}

	// 3. Инициализация логгера
	logger, err := log.NewLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	slog.SetDefault(logger)

	// 4. Инициализация зависимостей
	opts, err := cfg.NormalizerOptions()
	if err != nil {
		return err
	}
	normalizer, err := services.NewNormalizer(append(opts, services.WithNormalizerLogger(logger))...)
	if err != nil {
		return fmt.Errorf("failed to create normalizer: %w", err)
	}

	stop := stopwords.Russian()
	if cfg.Analytics.StopwordsFile != "" {
		if stop, err = stopwords.Load(cfg.Analytics.StopwordsFile); err != nil {
			return err
		}
	}
	reports := services.NewReportService(services.NewTextAnalyzer(stop), cfg.ReportOptions(), logger)

	taskStore := server.NewTaskStore()
	cacheStore := cache.NewCacheStore()
	processor := usecase.NewProcessChatUseCase(cfg, nil, normalizer, cacheStore, logger)

	// 5. Создание HTTP-сервера
	srv, err := server.New(cfg, processor, reports, taskStore, cacheStore, logger.With(slog.String("component", "server")))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()
	srv.StartCleanup(appCtx)

	// 6. Запуск сервера и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Starting server", "addr", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("Signal received, shutting down...")
	case <-serverDone:
		return fmt.Errorf("server stopped unexpectedly")
	}

	// Сначала останавливаем фоновую очистку хранилищ
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("Application exited gracefully")
	return nil
}
