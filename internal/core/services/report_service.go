package services

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/ports"
)

// ReportOptions задает размеры рейтингов в отчете.
type ReportOptions struct {
	TopSenders    int
	TopWords      int
	TopLengths    int
	HistogramBins int
	BurstDays     int
	CloudMaxWords int
}

// DefaultReportOptions возвращает размеры, принятые в отчетах по умолчанию.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		TopSenders:    10,
		TopWords:      20,
		TopLengths:    10,
		HistogramBins: 30,
		BurstDays:     5,
		CloudMaxWords: DefaultCloudMaxWords,
	}
}

// ReportService собирает статистику по нормализованному набору сообщений.
// Набор не изменяется: каждый вызов пересчитывает результат заново.
type ReportService struct {
	analyzer ports.TextAnalyzer
	opts     ReportOptions
	logger   *slog.Logger
}

// NewReportService создает сервис отчетов.
func NewReportService(analyzer ports.TextAnalyzer, opts ReportOptions, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultReportOptions()
	if opts.TopSenders <= 0 {
		opts.TopSenders = defaults.TopSenders
	}
	if opts.TopWords <= 0 {
		opts.TopWords = defaults.TopWords
	}
	if opts.TopLengths <= 0 {
		opts.TopLengths = defaults.TopLengths
	}
	if opts.HistogramBins <= 0 {
		opts.HistogramBins = defaults.HistogramBins
	}
	if opts.BurstDays <= 0 {
		opts.BurstDays = defaults.BurstDays
	}
	if opts.CloudMaxWords <= 0 {
		opts.CloudMaxWords = defaults.CloudMaxWords
	}
	return &ReportService{analyzer: analyzer, opts: opts, logger: logger}
}

// Options возвращает действующие размеры рейтингов.
func (s *ReportService) Options() ReportOptions {
	return s.opts
}

// Build строит полный отчет по видимой части набора.
func (s *ReportService) Build(ds *domain.Dataset) (*domain.Report, error) {
	if ds == nil {
		return nil, fmt.Errorf("нет данных для построения отчета")
	}
	msgs := ds.Visible

	report := &domain.Report{
		ChatName:        ds.ChatName,
		TotalMessages:   len(ds.All),
		VisibleMessages: len(msgs),
		Skipped:         ds.Skipped,
		Senders:         ds.Senders(),
		TopSenders:      TopSenders(msgs, s.opts.TopSenders),
		DailyCounts:     DailyCounts(msgs),
		WeekdayCounts:   WeekdayCounts(msgs),
		HourlyCounts:    HourlyCounts(msgs),
		Heatmap:         HourSenderHeatmap(msgs),
		MediaCounts:     MediaCounts(msgs),
		AverageLengths:  AverageLengthBySender(msgs, s.opts.TopLengths),
		LengthHistogram: LengthHistogram(msgs, s.opts.HistogramBins),
		MediaShare:      MediaShare(msgs),
		AveragePerDay:   AverageMessagesPerDay(msgs),
		BurstDays:       TopBurstDays(msgs, s.opts.BurstDays),
		Longest:         LongestMessage(msgs),
		TopWords:        s.analyzer.WordFrequencies(msgs, domain.WholeChat, s.opts.TopWords),
		Cloud:           s.analyzer.CloudWeights(msgs, domain.WholeChat, s.opts.CloudMaxWords),
	}
	if first, last, ok := DateRange(msgs); ok {
		report.FirstDay = &first
		report.LastDay = &last
	}

	s.logger.Debug("Отчет построен",
		"chat", ds.ChatName,
		"visible", report.VisibleMessages,
		"senders", len(report.Senders))
	return report, nil
}

// Words возвращает рейтинг слов для области. topN <= 0 - размер из настроек.
func (s *ReportService) Words(ds *domain.Dataset, scope domain.Scope, topN int) domain.WordRanking {
	if topN <= 0 {
		topN = s.opts.TopWords
	}
	return s.analyzer.WordFrequencies(ds.Visible, scope, topN)
}

// Cloud возвращает данные облака слов для области.
func (s *ReportService) Cloud(ds *domain.Dataset, scope domain.Scope) domain.WordCloud {
	return s.analyzer.CloudWeights(ds.Visible, scope, s.opts.CloudMaxWords)
}

// RandomMessage выбирает случайное сообщение за день.
func (s *ReportService) RandomMessage(ds *domain.Dataset, day domain.Date, rng *rand.Rand) domain.MessagePick {
	return RandomMessageOn(ds.Visible, day, rng)
}
