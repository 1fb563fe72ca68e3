// Package log содержит настройку slog для бинарников: уровень, формат и маскировку секретов.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel переводит имя уровня из конфигурации в slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("неизвестный уровень логирования %q", level)
	}
}

// NewLogger создает логгер с маскировкой токенов. format - "json" или "text".
func NewLogger(w io.Writer, level, format string, secrets ...string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("неизвестный формат логирования %q", format)
	}

	return NewMaskedLogger(handler, secrets...), nil
}
