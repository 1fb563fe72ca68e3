package exporter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/ports"
)

// Листы книги отчета.
const (
	SheetSummary  = "Сводка"
	SheetSenders  = "Участники"
	SheetDays     = "По дням"
	SheetWeekdays = "Дни недели"
	SheetHours    = "По часам"
	SheetMedia    = "Медиа"
	SheetWords    = "Слова"
)

// ExcelExporter реализует интерфейс Exporter, записывая отчет в книгу xlsx.
type ExcelExporter struct {
	out io.Writer
}

// NewExcelExporter создает экспортер, пишущий книгу в w.
func NewExcelExporter(w io.Writer) ports.Exporter {
	return &ExcelExporter{out: w}
}

// Export формирует книгу и записывает ее.
func (e *ExcelExporter) Export(report *domain.Report) error {
	f, err := NewWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(e.out); err != nil {
		return fmt.Errorf("не удалось записать Excel-файл: %w", err)
	}
	return nil
}

// WorkbookBytes возвращает книгу отчета в виде среза байт.
func WorkbookBytes(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewExcelExporter(&buf).Export(report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewWorkbook строит книгу с листами отчета. Вызывающий закрывает файл.
func NewWorkbook(report *domain.Report) (*excelize.File, error) {
	if report == nil {
		return nil, fmt.Errorf("нет отчета для экспорта")
	}

	f := excelize.NewFile()
	// Лист по умолчанию переименовывается в сводку.
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("не удалось подготовить книгу: %w", err)
	}

	summary := [][]any{
		{"Чат", report.ChatName},
		{"Всего сообщений", report.TotalMessages},
		{"Сообщений в анализе", report.VisibleMessages},
		{"Пропущено", report.Skipped},
		{"Сообщений с медиа", report.MediaShare.WithMedia},
		{"Доля медиа, %", report.MediaShare.Percent.InexactFloat64()},
		{"Среднее в день", report.AveragePerDay.InexactFloat64()},
	}
	if report.FirstDay != nil && report.LastDay != nil {
		summary = append(summary, []any{"Первый день", report.FirstDay.String()}, []any{"Последний день", report.LastDay.String()})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{SheetSummary, []string{"Показатель", "Значение"}, summary},
		{SheetSenders, []string{"Пользователь", "Сообщений"}, senderRows(report.TopSenders)},
		{SheetDays, []string{"День", "Сообщений"}, dayRows(report.DailyCounts)},
		{SheetWeekdays, []string{"День недели", "Сообщений"}, weekdayRows(report.WeekdayCounts)},
		{SheetHours, []string{"Час", "Сообщений"}, hourRows(report.HourlyCounts)},
		{SheetMedia, []string{"Медиа", "Сообщений"}, mediaRows(report.MediaCounts)},
		{SheetWords, []string{"Слово", "Количество"}, wordRows(report.TopWords)},
	}

	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.headers, s.rows); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeSheet(f *excelize.File, name string, headers []string, rows [][]any) error {
	if idx, _ := f.GetSheetIndex(name); idx < 0 {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("не удалось создать лист %s: %w", name, err)
		}
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(name, cell, h); err != nil {
			return fmt.Errorf("не удалось записать заголовок листа %s: %w", name, err)
		}
	}
	for r, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("не удалось записать строку листа %s: %w", name, err)
		}
	}
	return nil
}

func senderRows(rows []domain.SenderCount) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.Sender, r.Count}
	}
	return out
}

func dayRows(rows []domain.DayCount) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.Day.String(), r.Count}
	}
	return out
}

func weekdayRows(rows []domain.WeekdayCount) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.Weekday, r.Count}
	}
	return out
}

func hourRows(rows []domain.HourCount) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.Hour, r.Count}
	}
	return out
}

func mediaRows(rows []domain.MediaCount) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = []any{r.Label, r.Count}
	}
	return out
}

func wordRows(ranking domain.WordRanking) [][]any {
	out := make([][]any, len(ranking.Words))
	for i, w := range ranking.Words {
		out[i] = []any{w.Word, w.Count}
	}
	return out
}
