package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"telegram-chat-stats/internal/adapters/exporter"
	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/pkg/term"
)

const defaultTextWidth = 100

// textWidth возвращает ширину колонок текста для w.
func textWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		return term.Width(f, defaultTextWidth) / 2
	}
	return defaultTextWidth / 2
}

func scopeOf(sender string) domain.Scope {
	if sender == "" {
		return domain.WholeChat
	}
	return domain.SenderScope(sender)
}

func newReportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Полный отчет по чату",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			report, err := s.reports.Build(s.dataset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return exporter.NewConsoleExporter(out, textWidth(out)).Export(report)
		},
	}
}

func newWordsCmd(opts *options) *cobra.Command {
	var (
		sender string
		top    int
	)
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Самые частые слова в чате или у одного автора",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			ranking := s.reports.Words(s.dataset, scopeOf(sender), top)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Частые слова (%s)\n", ranking.Scope)
			if ranking.NoData() {
				_, err := fmt.Fprintln(out, ranking.Warning.Message)
				return err
			}
			return exporter.WordsTable(ranking).Render(out)
		},
	}
	cmd.Flags().StringVarP(&sender, "sender", "s", "", "автор; по умолчанию весь чат")
	cmd.Flags().IntVarP(&top, "top", "n", 0, "размер рейтинга; по умолчанию из конфигурации")
	return cmd
}

func newCloudCmd(opts *options) *cobra.Command {
	var sender string
	cmd := &cobra.Command{
		Use:   "cloud",
		Short: "Веса слов для облака",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			cloud := s.reports.Cloud(s.dataset, scopeOf(sender))

			out := cmd.OutOrStdout()
			if cloud.Warning != nil {
				_, err := fmt.Fprintln(out, cloud.Warning.Message)
				return err
			}
			table := term.NewTable(
				term.Column{Title: "Слово"},
				term.Column{Title: "Количество", AlignRight: true},
				term.Column{Title: "Вес", AlignRight: true},
			)
			for _, w := range cloud.Words {
				table.AddRow(w.Word, strconv.Itoa(w.Count), strconv.FormatFloat(w.Weight, 'f', 3, 64))
			}
			return table.Render(out)
		},
	}
	cmd.Flags().StringVarP(&sender, "sender", "s", "", "автор; по умолчанию весь чат")
	return cmd
}

func newRandomCmd(opts *options) *cobra.Command {
	var (
		date string
		seed uint64
	)
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Случайное сообщение за день",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := domain.ParseDate(date)
			if err != nil {
				return err
			}
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			var rng *rand.Rand
			if seed != 0 {
				rng = rand.New(rand.NewPCG(seed, seed))
			}
			pick := s.reports.RandomMessage(s.dataset, day, rng)

			out := cmd.OutOrStdout()
			if pick.NoData() {
				_, err := fmt.Fprintln(out, pick.Warning.Message)
				return err
			}
			_, err = io.WriteString(out, exporter.FormatMessage(*pick.Message, textWidth(out)))
			return err
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "день в формате "+domain.DateLayout)
	cmd.Flags().Uint64Var(&seed, "seed", 0, "зерно генератора для воспроизводимого выбора; 0 - случайное")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Сохранить отчет в xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.load(cmd)
			if err != nil {
				return err
			}
			report, err := s.reports.Build(s.dataset)
			if err != nil {
				return err
			}
			data, err := exporter.WorkbookBytes(report)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("не удалось сохранить %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Отчет сохранен в %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "report.xlsx", "путь к xlsx-файлу")
	return cmd
}
