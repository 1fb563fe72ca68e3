package log

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// TokenMask - замена для найденных секретов.
const TokenMask = "***masked***"

// токены бота в формате botID:token, где ID - числа, token - буквенно-цифровой
var telegramTokenRegex = regexp.MustCompile(`(\bbot\d+:[A-Za-z0-9_-]{35,})`)

// TokenMaskerHandler - обертка для slog.Handler, которая маскирует токены бота
// и явно переданные секреты в сообщениях и атрибутах.
type TokenMaskerHandler struct {
	handler slog.Handler
	secrets []string
}

// NewTokenMaskerHandler создает обработчик с маскировкой токенов.
// Пустые строки в secrets игнорируются.
func NewTokenMaskerHandler(handler slog.Handler, secrets ...string) *TokenMaskerHandler {
	h := &TokenMaskerHandler{handler: handler}
	for _, s := range secrets {
		if s != "" {
			h.secrets = append(h.secrets, s)
		}
	}
	return h
}

// mask заменяет токены бота и секреты на маску
func (h *TokenMaskerHandler) mask(text string) string {
	text = telegramTokenRegex.ReplaceAllString(text, "bot"+TokenMask)
	for _, s := range h.secrets {
		text = strings.ReplaceAll(text, s, TokenMask)
	}
	return text
}

// Enabled реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Новая запись вместо исходной: slog может переиспользовать record после возврата.
	r := slog.NewRecord(record.Time, record.Level, h.mask(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(h.maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		masked[i] = h.maskAttr(attr)
	}
	return &TokenMaskerHandler{
		handler: h.handler.WithAttrs(masked),
		secrets: h.secrets,
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *TokenMaskerHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskerHandler{
		handler: h.handler.WithGroup(name),
		secrets: h.secrets,
	}
}

func (h *TokenMaskerHandler) maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: h.maskValue(a.Value)}
}

// maskValue рекурсивно маскирует значения атрибутов
func (h *TokenMaskerHandler) maskValue(value slog.Value) slog.Value {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(h.mask(value.String()))
	case slog.KindAny:
		// Ошибки часто содержат URL запроса к Bot API вместе с токеном.
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(h.mask(err.Error()))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		masked := make([]slog.Attr, len(group))
		for i, attr := range group {
			masked[i] = h.maskAttr(attr)
		}
		return slog.GroupValue(masked...)
	default:
		return value
	}
}

// NewMaskedLogger создает новый экземпляр slog.Logger с маскировкой токенов
func NewMaskedLogger(handler slog.Handler, secrets ...string) *slog.Logger {
	return slog.New(NewTokenMaskerHandler(handler, secrets...))
}
