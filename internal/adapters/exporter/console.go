package exporter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/pkg/term"
	"telegram-chat-stats/internal/ports"
)

// ConsoleExporter реализует интерфейс Exporter для вывода отчета в консоль.
type ConsoleExporter struct {
	out       io.Writer
	textWidth int
}

// NewConsoleExporter создает экспортер в w. textWidth ограничивает ширину
// колонок с текстом сообщений, 0 - без ограничения.
func NewConsoleExporter(w io.Writer, textWidth int) ports.Exporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleExporter{out: w, textWidth: textWidth}
}

// Export выводит отчет набором таблиц.
func (e *ConsoleExporter) Export(report *domain.Report) error {
	if report == nil {
		return fmt.Errorf("нет отчета для вывода")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s ===\n", report.ChatName)
	fmt.Fprintf(&sb, "Сообщений: %d (в анализе %d)\n", report.TotalMessages, report.VisibleMessages)
	if report.Skipped > 0 {
		fmt.Fprintf(&sb, "Пропущено из-за некорректной даты: %d\n", report.Skipped)
	}
	if report.FirstDay != nil && report.LastDay != nil {
		fmt.Fprintf(&sb, "Период: с %s по %s\n", report.FirstDay, report.LastDay)
	}
	fmt.Fprintf(&sb, "Сообщений с медиа: %d / %d (%s%%)\n",
		report.MediaShare.WithMedia, report.MediaShare.Total, report.MediaShare.Percent.StringFixed(2))
	fmt.Fprintf(&sb, "Среднее количество сообщений в день: %s\n", report.AveragePerDay.StringFixed(2))

	sections := []struct {
		title string
		table *term.Table
	}{
		{"Самые активные пользователи", senderTable(report.TopSenders)},
		{"Сообщения по дням недели", weekdayTable(report.WeekdayCounts)},
		{"Сообщения по часам", hourTable(report.HourlyCounts)},
		{"Медиа в сообщениях", mediaTable(report.MediaCounts)},
		{"Средняя длина сообщения", lengthTable(report.AverageLengths)},
		{"Самые активные дни", dayTable(report.BurstDays)},
	}
	for _, s := range sections {
		fmt.Fprintf(&sb, "\n%s\n", s.title)
		if s.table.Len() == 0 {
			sb.WriteString("Нет данных.\n")
			continue
		}
		if err := s.table.Render(&sb); err != nil {
			return err
		}
	}

	sb.WriteString("\nСамые употребляемые слова\n")
	if err := e.writeWords(&sb, report.TopWords); err != nil {
		return err
	}

	sb.WriteString("\nСамое длинное сообщение\n")
	e.writePick(&sb, report.Longest)

	if _, err := io.WriteString(e.out, sb.String()); err != nil {
		return fmt.Errorf("не удалось вывести отчет: %w", err)
	}
	return nil
}

func (e *ConsoleExporter) writeWords(sb *strings.Builder, ranking domain.WordRanking) error {
	if ranking.NoData() {
		sb.WriteString(ranking.Warning.Message + "\n")
		return nil
	}
	if len(ranking.Words) == 0 {
		sb.WriteString("Нет данных.\n")
		return nil
	}
	return WordsTable(ranking).Render(sb)
}

func (e *ConsoleExporter) writePick(sb *strings.Builder, pick domain.MessagePick) {
	if pick.NoData() {
		if pick.Warning != nil {
			sb.WriteString(pick.Warning.Message + "\n")
		}
		return
	}
	sb.WriteString(FormatMessage(*pick.Message, e.textWidth))
}

// FormatMessage оформляет одно сообщение: автор, время, длина и текст.
func FormatMessage(m domain.NormalizedMessage, textWidth int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "От: %s\n", m.Sender)
	fmt.Fprintf(&sb, "Время: %s\n", m.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Длина: %d символов\n\n", m.Length)
	if textWidth > 0 {
		for _, line := range strings.Split(m.Text, "\n") {
			sb.WriteString(strings.Join(term.Wrap(line, textWidth), "\n"))
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString(m.Text + "\n")
	}
	return sb.String()
}

// WordsTable строит таблицу рейтинга слов.
func WordsTable(ranking domain.WordRanking) *term.Table {
	table := term.NewTable(
		term.Column{Title: "#", AlignRight: true},
		term.Column{Title: "Слово"},
		term.Column{Title: "Количество", AlignRight: true},
	)
	for i, w := range ranking.Words {
		table.AddRow(strconv.Itoa(i+1), w.Word, strconv.Itoa(w.Count))
	}
	return table
}

func senderTable(rows []domain.SenderCount) *term.Table {
	table := term.NewTable(term.Column{Title: "Пользователь"}, term.Column{Title: "Сообщений", AlignRight: true})
	for _, r := range rows {
		table.AddRow(r.Sender, strconv.Itoa(r.Count))
	}
	return table
}

func weekdayTable(rows []domain.WeekdayCount) *term.Table {
	table := term.NewTable(term.Column{Title: "День недели"}, term.Column{Title: "Сообщений", AlignRight: true})
	for _, r := range rows {
		table.AddRow(r.Weekday, strconv.Itoa(r.Count))
	}
	return table
}

func hourTable(rows []domain.HourCount) *term.Table {
	table := term.NewTable(term.Column{Title: "Час", AlignRight: true}, term.Column{Title: "Сообщений", AlignRight: true})
	for _, r := range rows {
		table.AddRow(strconv.Itoa(r.Hour), strconv.Itoa(r.Count))
	}
	return table
}

func mediaTable(rows []domain.MediaCount) *term.Table {
	table := term.NewTable(term.Column{Title: "Медиа"}, term.Column{Title: "Сообщений", AlignRight: true})
	for _, r := range rows {
		table.AddRow(r.Label, strconv.Itoa(r.Count))
	}
	return table
}

func lengthTable(rows []domain.SenderLength) *term.Table {
	table := term.NewTable(term.Column{Title: "Пользователь"}, term.Column{Title: "Символов", AlignRight: true})
	for _, r := range rows {
		table.AddRow(r.Sender, strconv.FormatFloat(r.Average, 'f', 1, 64))
	}
	return table
}

func dayTable(rows []domain.DayCount) *term.Table {
	table := term.NewTable(term.Column{Title: "День"}, term.Column{Title: "Сообщений", AlignRight: true})
	for _, r := range rows {
		table.AddRow(r.Day.String(), strconv.Itoa(r.Count))
	}
	return table
}
