package usecase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"telegram-chat-stats/internal/adapters/parser"
	"telegram-chat-stats/internal/adapters/source"
	"telegram-chat-stats/internal/cache"
	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/metrics"
	"telegram-chat-stats/internal/pkg/config"
	"telegram-chat-stats/internal/ports"
)

// ProcessChatUseCase инкапсулирует бизнес-логику для обработки файлов экспорта чата.
type ProcessChatUseCase struct {
	cfg        *config.Config
	parser     ports.Parser
	normalizer ports.Normalizer
	cacheStore *cache.CacheStore
	logger     *slog.Logger
}

// NewProcessChatUseCase создает новый экземпляр ProcessChatUseCase.
// Если parser равен nil, формат каждого файла определяется по содержимому.
func NewProcessChatUseCase(
	cfg *config.Config,
	parser ports.Parser,
	normalizer ports.Normalizer,
	cacheStore *cache.CacheStore,
	logger *slog.Logger,
) *ProcessChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessChatUseCase{
		cfg:        cfg,
		parser:     parser,
		normalizer: normalizer,
		cacheStore: cacheStore,
		logger:     logger,
	}
}

// ProcessChat обрабатывает один файл экспорта чата (result.json или messages.html)
// и возвращает нормализованный набор.
func (uc *ProcessChatUseCase) ProcessChat(ctx context.Context, filePath string) (*domain.Dataset, error) {
	return uc.observe(func() (*domain.Dataset, bool, error) {
		if filePath == "" {
			return nil, false, fmt.Errorf("не передан файл для обработки")
		}

		fileHash, err := cache.CalculateFileHash(filePath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, &domain.MissingInputError{Path: filePath, Err: err}
		}
		if err != nil {
			return nil, false, fmt.Errorf("не удалось вычислить хеш файла %s: %w", filePath, err)
		}
		return uc.process(ctx, fileHash, filePath, source.NewCliSource(filePath))
	})
}

// ProcessData обрабатывает экспорт, уже прочитанный в память (например, из stdin).
// name используется только в логах и сообщениях об ошибках.
func (uc *ProcessChatUseCase) ProcessData(ctx context.Context, name string, data []byte) (*domain.Dataset, error) {
	return uc.observe(func() (*domain.Dataset, bool, error) {
		if len(data) == 0 {
			return nil, false, fmt.Errorf("пустые данные экспорта (%s)", name)
		}
		return uc.process(ctx, cache.CalculateDataHash(data), name, source.NewMemorySource(name, data))
	})
}

func (uc *ProcessChatUseCase) observe(run func() (*domain.Dataset, bool, error)) (*domain.Dataset, error) {
	start := time.Now()
	ds, hit, err := run()

	var outcome string
	var count int
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case hit:
		outcome = metrics.OutcomeCacheHit
	default:
		outcome = metrics.OutcomeSuccess
		count = len(ds.All)
	}
	metrics.ObserveProcessing(outcome, count, time.Since(start))

	return ds, err
}

func (uc *ProcessChatUseCase) process(ctx context.Context, key, name string, src ports.DataSource) (*domain.Dataset, bool, error) {
	if entry, found := uc.cacheStore.Get(key); found {
		uc.logger.Info("Попадание в кеш для файла", "path", name, "hash", key)
		return entry.Dataset, true, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("обработка прервана: %w", err)
	}
	uc.logger.Info("Обработка файла", "path", name)

	data, err := src.Fetch()
	if err != nil {
		return nil, false, fmt.Errorf("не удалось извлечь данные из %s: %w", name, err)
	}

	p := uc.parser
	if p == nil {
		p = parser.Detect(data)
	}
	chat, err := p.Parse(data)
	if err != nil {
		return nil, false, fmt.Errorf("не удалось разобрать данные из %s: %w", name, err)
	}
	uc.logger.Info("Разобран чат", "path", name, "message_count", len(chat.Messages))

	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("обработка прервана: %w", err)
	}

	ds, err := uc.normalizer.Normalize(chat)
	if err != nil {
		return nil, false, fmt.Errorf("не удалось нормализовать сообщения: %w", err)
	}

	ttl := uc.cfg.Processing.CacheTTL
	uc.cacheStore.Put(key, ds, ttl)
	uc.logger.Info("Результат кеширован", "hash", key, "ttl", ttl.String())

	return ds, false, nil
}
