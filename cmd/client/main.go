package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"telegram-chat-stats/internal/adapters/exporter"
	"telegram-chat-stats/internal/bot"
	"telegram-chat-stats/internal/pkg/term"
)

func main() {
	var (
		serverAddr string
		xlsxPath   string
		interval   time.Duration
	)
	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "Server address")
	flag.StringVar(&xlsxPath, "xlsx", "", "Сохранить отчет в xlsx по указанному пути")
	flag.DurationVar(&interval, "interval", 2*time.Second, "Интервал опроса статуса задачи")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Exactly one file path is required. Usage: client [flags] <result.json|messages.html>")
	}
	path := flag.Arg(0)

	ctx := context.Background()
	client := bot.NewServerClient(serverAddr, time.Minute)

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Не удалось открыть файл %s: %v", path, err)
	}
	defer file.Close()

	task, err := client.StartTask(ctx, bot.DocumentFile{Name: filepath.Base(path), Content: file})
	if err != nil {
		log.Fatalf("Не удалось отправить запрос: %v", err)
	}
	fmt.Printf("Задача создана с идентификатором: %s\n", task.TaskID)

	// Опрос о статусе задачи
	for {
		time.Sleep(interval)

		status, err := client.GetTaskStatus(ctx, task.TaskID)
		if err != nil {
			log.Fatalf("Не удалось опросить статус задачи: %v", err)
		}
		fmt.Printf("Статус задачи: %s\n", status.Status)

		switch status.Status {
		case "completed":
			printReport(ctx, client, task.TaskID, xlsxPath)
			return
		case "failed":
			fmt.Printf("Задача не выполнена: %s\n", status.ErrorMessage)
			os.Exit(1)
		case "pending", "processing":
			continue
		default:
			log.Fatalf("Неизвестный статус задачи: %s", status.Status)
		}
	}
}

func printReport(ctx context.Context, client *bot.ServerClient, taskID, xlsxPath string) {
	report, err := client.GetReport(ctx, taskID)
	if err != nil {
		log.Fatalf("Не удалось получить отчет: %v", err)
	}

	console := exporter.NewConsoleExporter(os.Stdout, term.Width(os.Stdout, 100)/2)
	if err := console.Export(report); err != nil {
		log.Fatalf("Не удалось вывести отчет: %v", err)
	}

	if xlsxPath == "" {
		return
	}
	data, err := client.GetReportXLSX(ctx, taskID)
	if err != nil {
		log.Fatalf("Не удалось получить xlsx: %v", err)
	}
	if err := os.WriteFile(xlsxPath, data, 0o644); err != nil {
		log.Fatalf("Не удалось сохранить %s: %v", xlsxPath, err)
	}
	fmt.Printf("Отчет сохранен в %s\n", xlsxPath)
}
