package services

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"
	"unicode/utf8"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/ports"
)

// dateLayouts перечисляет допустимые форматы поля date, в порядке проверки.
var dateLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NormalizerOption - функциональная опция для настройки Normalizer.
type NormalizerOption func(*Normalizer)

// WithExclusionPatterns задает регулярные выражения для исключения авторов.
func WithExclusionPatterns(patterns []string) NormalizerOption {
	return func(n *Normalizer) {
		n.rawPatterns = append([]string(nil), patterns...)
	}
}

// WithLocation задает часовой пояс для дат без смещения.
func WithLocation(loc *time.Location) NormalizerOption {
	return func(n *Normalizer) {
		if loc != nil {
			n.location = loc
		}
	}
}

// WithSkipInvalidDates включает мягкий режим: записи с некорректной датой
// пропускаются с предупреждением вместо отказа всего файла.
func WithSkipInvalidDates(skip bool) NormalizerOption {
	return func(n *Normalizer) {
		n.skipInvalid = skip
	}
}

// WithNormalizerLogger задает логгер.
func WithNormalizerLogger(logger *slog.Logger) NormalizerOption {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// Normalizer реализует интерфейс ports.Normalizer.
type Normalizer struct {
	rawPatterns []string
	patterns    []*regexp.Regexp
	location    *time.Location
	skipInvalid bool
	logger      *slog.Logger
}

// NewNormalizer создает Normalizer. Некорректное выражение исключения - ошибка конструктора.
func NewNormalizer(opts ...NormalizerOption) (ports.Normalizer, error) {
	n := &Normalizer{
		location: time.UTC,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}

	patterns, err := CompilePatterns(n.rawPatterns)
	if err != nil {
		return nil, err
	}
	n.patterns = patterns
	return n, nil
}

// CompilePatterns компилирует список выражений фильтра исключений.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("некорректное выражение исключения %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Normalize оставляет только записи типа "message", приводит их к единому виду
// и строит отфильтрованное представление. Ошибка разбора даты любой записи
// прерывает обработку всего файла, если не включен мягкий режим.
func (n *Normalizer) Normalize(chat *domain.ExportedChat) (*domain.Dataset, error) {
	if chat == nil {
		return nil, fmt.Errorf("нет данных чата для нормализации")
	}

	all := make([]domain.NormalizedMessage, 0, len(chat.Messages))
	skipped := 0
	for i, raw := range chat.Messages {
		if raw.Type != domain.MessageTypeMessage {
			continue
		}

		ts, err := n.parseTimestamp(raw.Date)
		if err != nil {
			formatErr := &domain.DataFormatError{Index: i, MessageID: raw.ID, Value: raw.Date, Err: err}
			if !n.skipInvalid {
				return nil, formatErr
			}
			n.logger.Warn("Пропущено сообщение с некорректной датой",
				"message_id", raw.ID, "index", i, "date", raw.Date)
			skipped++
			continue
		}

		all = append(all, newNormalizedMessage(raw, ts))
	}

	visible := ApplyExclusionFilter(all, n.patterns)
	n.logger.Info("Сообщения нормализованы",
		"chat", chat.Name,
		"records", len(chat.Messages),
		"messages", len(all),
		"visible", len(visible),
		"skipped", skipped)

	return &domain.Dataset{
		ChatName: chat.Name,
		All:      all,
		Visible:  visible,
		Skipped:  skipped,
	}, nil
}

func (n *Normalizer) parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("пустая дата")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		ts, err := time.ParseInLocation(layout, value, n.location)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func newNormalizedMessage(raw domain.Message, ts time.Time) domain.NormalizedMessage {
	sender := domain.UnknownSender
	if raw.From != nil {
		sender = *raw.From
	}
	text := FlattenText(raw.Text)

	return domain.NormalizedMessage{
		ID:        raw.ID,
		Sender:    sender,
		Timestamp: ts,
		Text:      text,
		Media:     ResolveMediaKind(raw),
		Day:       domain.DateOf(ts),
		Hour:      ts.Hour(),
		Weekday:   ts.Weekday(),
		Length:    utf8.RuneCountInString(text),
	}
}

// FlattenText склеивает "богатый" текст в обычную строку без разделителей,
// сохраняя порядок сегментов.
func FlattenText(text domain.RawText) string {
	switch text.Kind {
	case domain.TextPlain:
		return text.Plain
	case domain.TextSegments:
		size := 0
		for _, seg := range text.Segments {
			size += len(seg.Text)
		}
		buf := make([]byte, 0, size)
		for _, seg := range text.Segments {
			switch seg.Kind {
			case domain.SegmentPlain, domain.SegmentEntity:
				buf = append(buf, seg.Text...)
			}
		}
		return string(buf)
	default:
		return ""
	}
}

// ResolveMediaKind определяет тип вложения: photo, затем file, затем анимация.
func ResolveMediaKind(raw domain.Message) domain.MediaKind {
	switch {
	case len(raw.Photo) > 0:
		return domain.MediaPhoto
	case len(raw.File) > 0:
		return domain.MediaFile
	case raw.MediaType == "animation":
		return domain.MediaAnimation
	default:
		return domain.MediaNone
	}
}

// ApplyExclusionFilter возвращает новый срез без сообщений, автор которых
// совпадает хотя бы с одним выражением (поиск подстроки, с учетом регистра).
func ApplyExclusionFilter(messages []domain.NormalizedMessage, patterns []*regexp.Regexp) []domain.NormalizedMessage {
	filtered := make([]domain.NormalizedMessage, 0, len(messages))
	for _, m := range messages {
		if isExcluded(m.Sender, patterns) {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

func isExcluded(sender string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(sender) {
			return true
		}
	}
	return false
}
