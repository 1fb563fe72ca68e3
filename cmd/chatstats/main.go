// Команда chatstats строит статистику по экспорту чата Telegram локально, без сервера.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"telegram-chat-stats/internal/cache"
	"telegram-chat-stats/internal/core/services"
	"telegram-chat-stats/internal/core/stopwords"
	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/log"
	"telegram-chat-stats/internal/pkg/config"
	"telegram-chat-stats/internal/server/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const stdinFile = "-"

// options - общие флаги всех подкоманд.
type options struct {
	configPath string
	file       string
}

// session - загруженный набор сообщений и сервис отчетов к нему.
type session struct {
	cfg     *config.Config
	dataset *domain.Dataset
	reports *services.ReportService
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "chatstats",
		Short:         "Статистика по экспорту чата Telegram (result.json или messages.html)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigFile, "путь к файлу конфигурации")
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "файл экспорта; \"-\" читает stdin, по умолчанию analytics.input_path из конфигурации")

	root.AddCommand(
		newReportCmd(opts),
		newWordsCmd(opts),
		newCloudCmd(opts),
		newRandomCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// load читает конфигурацию и обрабатывает файл экспорта.
func (o *options) load(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}

	// Логи пишутся в stderr, отчет в stdout
	logger, err := log.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level, "text")
	if err != nil {
		return nil, err
	}

	normOpts, err := cfg.NormalizerOptions()
	if err != nil {
		return nil, err
	}
	normalizer, err := services.NewNormalizer(append(normOpts, services.WithNormalizerLogger(logger))...)
	if err != nil {
		return nil, err
	}

	stop := stopwords.Russian()
	if cfg.Analytics.StopwordsFile != "" {
		if stop, err = stopwords.Load(cfg.Analytics.StopwordsFile); err != nil {
			return nil, err
		}
	}

	file := o.file
	if file == "" {
		file = cfg.Analytics.InputPath
	}

	processor := usecase.NewProcessChatUseCase(cfg, nil, normalizer, cache.NewCacheStore(), logger)
	var dataset *domain.Dataset
	if file == stdinFile {
		data, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return nil, fmt.Errorf("не удалось прочитать stdin: %w", readErr)
		}
		dataset, err = processor.ProcessData(cmd.Context(), "stdin", data)
	} else {
		dataset, err = processor.ProcessChat(cmd.Context(), file)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("Набор сообщений загружен",
		slog.String("chat", dataset.ChatName),
		slog.Int("all", len(dataset.All)),
		slog.Int("visible", len(dataset.Visible)),
	)

	return &session{
		cfg:     cfg,
		dataset: dataset,
		reports: services.NewReportService(services.NewTextAnalyzer(stop), cfg.ReportOptions(), logger),
	}, nil
}
