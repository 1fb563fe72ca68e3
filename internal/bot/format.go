package bot

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"telegram-chat-stats/cmd/bot/config"
	"telegram-chat-stats/internal/adapters/exporter"
	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/pkg/term"
)

// maxMessageLength - ограничение Telegram на длину текста сообщения.
const maxMessageLength = 4096

// summaryTopSenders - сколько авторов показывать в сводке.
const summaryTopSenders = 10

// FormatSummary строит краткую сводку отчета для сообщения с разметкой HTML.
func FormatSummary(report *domain.Report, widths config.ColumnWidths) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n", html.EscapeString(report.ChatName))
	fmt.Fprintf(&sb, "Сообщений: %d (в анализе %d)\n", report.TotalMessages, report.VisibleMessages)
	if report.FirstDay != nil && report.LastDay != nil {
		fmt.Fprintf(&sb, "Период: с %s по %s\n", report.FirstDay, report.LastDay)
	}
	fmt.Fprintf(&sb, "Сообщений с медиа: %s%%\n", report.MediaShare.Percent.StringFixed(2))
	fmt.Fprintf(&sb, "В среднем в день: %s\n", report.AveragePerDay.StringFixed(2))

	if len(report.TopSenders) > 0 {
		table := term.NewTable(
			term.Column{Title: "Пользователь", Width: widths.Sender},
			term.Column{Title: "Сообщений", AlignRight: true},
		)
		for i, s := range report.TopSenders {
			if i == summaryTopSenders {
				break
			}
			table.AddRow(s.Sender, strconv.Itoa(s.Count))
		}
		sb.WriteString("\n")
		sb.WriteString(preformatted(table))
	}

	if len(report.TopWords.Words) > 0 {
		sb.WriteString("\nЧастые слова: ")
		words := make([]string, 0, len(report.TopWords.Words))
		for _, w := range report.TopWords.Words {
			words = append(words, html.EscapeString(w.Word))
		}
		sb.WriteString(strings.Join(words, ", "))
		sb.WriteString("\n")
	}

	sb.WriteString("\n/words [имя] - рейтинг слов, /random ГГГГ-ММ-ДД - случайное сообщение за день.")
	return sb.String()
}

// FormatWords оформляет рейтинг слов. Пустая область возвращает текст предупреждения.
func FormatWords(ranking *domain.WordRanking, widths config.ColumnWidths) string {
	if ranking.NoData() {
		return html.EscapeString(ranking.Warning.Message)
	}
	if len(ranking.Words) == 0 {
		return "Нет данных."
	}

	table := term.NewTable(
		term.Column{Title: "#", AlignRight: true},
		term.Column{Title: "Слово", Width: widths.Word},
		term.Column{Title: "Количество", AlignRight: true},
	)
	for i, w := range ranking.Words {
		table.AddRow(strconv.Itoa(i+1), w.Word, strconv.Itoa(w.Count))
	}
	return fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(ranking.Scope.String()), preformatted(table))
}

// FormatPick оформляет случайное сообщение или предупреждение о пустом дне.
func FormatPick(pick *domain.MessagePick, width int) string {
	if pick.NoData() {
		if pick.Warning != nil {
			return html.EscapeString(pick.Warning.Message)
		}
		return "Нет данных."
	}
	return "<pre>" + html.EscapeString(exporter.FormatMessage(*pick.Message, width)) + "</pre>"
}

func preformatted(table *term.Table) string {
	var sb strings.Builder
	table.Render(&sb)
	return "<pre><code>" + html.EscapeString(sb.String()) + "</code></pre>"
}
