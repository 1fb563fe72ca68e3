package log

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// TGBotAPIAdapter направляет журнал go-telegram-bot-api/v5 в slog.
// Записи проходят через маскировщик: в тексте библиотеки бывает URL с токеном.
type TGBotAPIAdapter struct {
	logger *slog.Logger
}

// NewTGBotAPIAdapter создает адаптер, помечающий записи компонентом tgbotapi.
func NewTGBotAPIAdapter(logger *slog.Logger) *TGBotAPIAdapter {
	return &TGBotAPIAdapter{logger: logger.With(slog.String("component", "tgbotapi"))}
}

func (a *TGBotAPIAdapter) Println(v ...any) {
	a.write(fmt.Sprintln(v...))
}

func (a *TGBotAPIAdapter) Printf(format string, v ...any) {
	a.write(fmt.Sprintf(format, v...))
}

// write пишет ошибки библиотеки как WARN, остальное (запросы в режиме Debug) как DEBUG.
func (a *TGBotAPIAdapter) write(msg string) {
	msg = strings.TrimSpace(msg)
	level := slog.LevelDebug
	if strings.Contains(strings.ToLower(msg), "error") {
		level = slog.LevelWarn
	}
	a.logger.Log(context.Background(), level, msg)
}
