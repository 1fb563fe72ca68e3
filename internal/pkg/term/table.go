// Package term форматирует текстовые таблицы для консоли и сообщений бота.
// Ширина считается в экранных колонках, поэтому кириллица и CJK выравниваются верно.
package term

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Column описывает колонку таблицы. Width == 0 - ширина по самому длинному значению.
type Column struct {
	Title      string
	Width      int
	AlignRight bool
}

// Table - таблица с рамкой из символов "|" и "-".
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable создает таблицу с заданными колонками.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// AddRow добавляет строку. Лишние значения отбрасываются, недостающие считаются пустыми.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	for i, c := range row {
		row[i] = strings.ReplaceAll(strings.ToValidUTF8(c, ""), "\n", " ")
	}
	t.rows = append(t.rows, row)
}

// Len возвращает число строк данных.
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) widths() []int {
	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		if col.Width > 0 {
			widths[i] = col.Width
			continue
		}
		widths[i] = runewidth.StringWidth(col.Title)
		for _, row := range t.rows {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// Render выводит таблицу. Значения шире колонки переносятся по словам.
func (t *Table) Render(w io.Writer) error {
	widths := t.widths()

	titles := make([]string, len(t.columns))
	for i, col := range t.columns {
		titles[i] = col.Title
	}

	var sb strings.Builder
	t.writeRow(&sb, titles, widths, false)

	sb.WriteString("|")
	for _, width := range widths {
		sb.WriteString(strings.Repeat("-", width+2))
		sb.WriteString("|")
	}
	sb.WriteString("\n")

	for _, row := range t.rows {
		t.writeRow(&sb, row, widths, true)
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("не удалось вывести таблицу: %w", err)
	}
	return nil
}

func (t *Table) writeRow(sb *strings.Builder, cells []string, widths []int, align bool) {
	lines := make([][]string, len(cells))
	maxLines := 1
	for i, c := range cells {
		lines[i] = Wrap(c, widths[i])
		if len(lines[i]) > maxLines {
			maxLines = len(lines[i])
		}
	}

	for l := 0; l < maxLines; l++ {
		for i := range cells {
			part := ""
			if l < len(lines[i]) {
				part = lines[i][l]
			}
			pad := Padding(part, widths[i])
			if align && t.columns[i].AlignRight {
				fmt.Fprintf(sb, "| %s%s ", pad, part)
			} else {
				fmt.Fprintf(sb, "| %s%s ", part, pad)
			}
		}
		sb.WriteString("|\n")
	}
}

// Padding вычисляет отступ для строки с учетом поправки на CJK-символы.
func Padding(s string, colWidth int) string {
	paddingNeeded := colWidth - runewidth.StringWidth(s)

	// Некоторые клиенты Telegram рисуют CJK-символы шире, добавляем один пробел.
	hasCJK := false
	for _, r := range s {
		if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
			hasCJK = true
			break
		}
	}

	if hasCJK && paddingNeeded >= 0 {
		paddingNeeded++
	}

	if paddingNeeded > 0 {
		return strings.Repeat(" ", paddingNeeded)
	}
	return ""
}

// Wrap разбивает строку на строки не шире width, по возможности по границам слов.
// Слово длиннее width разрезается.
func Wrap(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}

	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var currentLine strings.Builder
	for _, word := range words {
		wordWidth := runewidth.StringWidth(word)

		if wordWidth > width {
			if currentLine.Len() > 0 {
				lines = append(lines, currentLine.String())
				currentLine.Reset()
			}
			lines = append(lines, splitByWidth(word, width)...)
			continue
		}

		lineLen := runewidth.StringWidth(currentLine.String())
		if lineLen > 0 && lineLen+1+wordWidth > width {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
		}

		if currentLine.Len() > 0 {
			currentLine.WriteString(" ")
		}
		currentLine.WriteString(word)
	}

	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return lines
}

func splitByWidth(word string, width int) []string {
	var lines []string
	runes := []rune(word)
	for len(runes) > 0 {
		i := 0
		currentWidth := 0
		for i < len(runes) {
			rw := runewidth.RuneWidth(runes[i])
			if currentWidth+rw > width {
				break
			}
			currentWidth += rw
			i++
		}
		if i == 0 {
			i = 1
		}
		lines = append(lines, string(runes[:i]))
		runes = runes[i:]
	}
	return lines
}

// Truncate обрезает строку до width колонок, добавляя многоточие.
func Truncate(s string, width int) string {
	return runewidth.Truncate(strings.ReplaceAll(s, "\n", " "), width, "…")
}
