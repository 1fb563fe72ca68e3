package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-chat-stats/cmd/bot/config"
	"telegram-chat-stats/internal/domain"
	tglog "telegram-chat-stats/internal/log"
)

const (
	startCommand  = "start"
	helpCommand   = "help"
	reportCommand = "report"
	wordsCommand  = "words"
	randomCommand = "random"
)

const helpText = "Я бот для статистики чатов Telegram.\n\n" +
	"Отправьте мне файл экспорта чата (result.json или messages.html).\n\n" +
	"После обработки доступны команды:\n" +
	"/report - сводка по чату\n" +
	"/words [имя] - самые частые слова всего чата или одного участника\n" +
	"/random ГГГГ-ММ-ДД - случайное сообщение за день\n\n" +
	"Файлы не сохраняются на сервере и обрабатываются на лету."

// Bot представляет собой основной объект Telegram-бота.
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          config.BotConfig
	serverClient ServerAPI
	taskStore    *TaskStore
	logger       *slog.Logger
	httpClient   *http.Client

	// Чаты, файл которых скачивается и еще не отправлен на сервер.
	uploading      map[int64]struct{}
	uploadingMutex sync.Mutex
	// Фоновые загрузки и опросы статуса.
	wg sync.WaitGroup

	// Подменяются в тестах.
	sendMessageFunc      func(msg tgbotapi.Chattable) (tgbotapi.Message, error)
	getFileDirectURLFunc func(fileID string) (string, error)
}

// NewBot создает и инициализирует новый экземпляр бота.
func NewBot(cfg config.BotConfig, serverClient ServerAPI, taskStore *TaskStore, logger *slog.Logger) (*Bot, error) {
	if err := tgbotapi.SetLogger(tglog.NewTGBotAPIAdapter(logger)); err != nil {
		return nil, fmt.Errorf("failed to set bot api logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	logger.Info("Authorized on account", slog.String("username", api.Self.UserName))

	return &Bot{
		api:                  api,
		cfg:                  cfg,
		serverClient:         serverClient,
		taskStore:            taskStore,
		logger:               logger,
		httpClient:           &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second},
		uploading:            make(map[int64]struct{}),
		sendMessageFunc:      api.Send,
		getFileDirectURLFunc: api.GetFileDirectURL,
	}, nil
}

// Start запускает основной цикл обработки обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Context cancelled, stopping bot...")
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// Stop ждет завершения фоновых загрузок и опросов.
// Их контекст отменяется вместе с контекстом Start.
func (b *Bot) Stop() {
	b.wg.Wait()
}

// handleMessage обрабатывает входящее сообщение.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	b.reply(msg.Chat.ID, "Пожалуйста, отправьте мне файл экспорта чата Telegram в формате JSON или HTML.")
}

// handleCommand обрабатывает команды.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case startCommand, helpCommand:
		b.reply(chatID, "Добро пожаловать! "+helpText)
	case reportCommand:
		if taskID, ok := b.completedTask(chatID); ok {
			b.sendReport(ctx, chatID, taskID)
		}
	case wordsCommand:
		b.handleWords(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case randomCommand:
		b.handleRandom(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	default:
		b.reply(chatID, "Я не знаю такой команды.")
	}
}

func (b *Bot) completedTask(chatID int64) (string, bool) {
	taskID, ok := b.taskStore.Completed(chatID)
	if !ok {
		b.reply(chatID, "Сначала отправьте файл экспорта чата.")
	}
	return taskID, ok
}

func (b *Bot) handleWords(ctx context.Context, chatID int64, sender string) {
	taskID, ok := b.completedTask(chatID)
	if !ok {
		return
	}
	ranking, err := b.serverClient.GetWords(ctx, taskID, sender, b.cfg.TopWords)
	if err != nil {
		b.logger.Error("failed to get words", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось получить рейтинг слов. Возможно, результат обработки устарел, отправьте файл заново.")
		return
	}
	b.replyHTML(chatID, FormatWords(ranking, b.cfg.Render))
}

func (b *Bot) handleRandom(ctx context.Context, chatID int64, arg string) {
	taskID, ok := b.completedTask(chatID)
	if !ok {
		return
	}
	day, err := domain.ParseDate(arg)
	if err != nil {
		b.reply(chatID, "Укажите дату в формате ГГГГ-ММ-ДД, например: /random 2023-01-31")
		return
	}
	pick, err := b.serverClient.GetRandom(ctx, taskID, day)
	if err != nil {
		b.logger.Error("failed to get random message", slog.Int64("chat_id", chatID), slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось получить сообщение. Попробуйте позже.")
		return
	}
	b.replyHTML(chatID, FormatPick(pick, b.cfg.MessageWidth))
}

// handleDocument запускает обработку присланного файла. В одном чате
// одновременно обрабатывается не больше одного файла.
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	logger := b.logger.With(slog.Int64("chat_id", chatID))

	if !b.beginUpload(chatID) {
		logger.Warn("user tried to start a new task while another is active")
		b.reply(chatID, "Пожалуйста, подождите завершения предыдущей задачи, прежде чем начинать новую.")
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer b.endUpload(chatID)
		b.processDocument(ctx, chatID, msg.Document)
	}()
}

// beginUpload отмечает чат как занятый, если в нем нет активной задачи.
func (b *Bot) beginUpload(chatID int64) bool {
	b.uploadingMutex.Lock()
	defer b.uploadingMutex.Unlock()

	if _, busy := b.uploading[chatID]; busy {
		return false
	}
	if _, active := b.taskStore.Get(chatID); active {
		return false
	}
	b.uploading[chatID] = struct{}{}
	return true
}

func (b *Bot) endUpload(chatID int64) {
	b.uploadingMutex.Lock()
	delete(b.uploading, chatID)
	b.uploadingMutex.Unlock()
}

// processDocument скачивает файл и запускает задачу на бэкенде.
func (b *Bot) processDocument(ctx context.Context, chatID int64, doc *tgbotapi.Document) {
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("file_name", doc.FileName))

	data, err := b.downloadFile(ctx, doc.FileID)
	if err != nil {
		logger.Error("failed to download file", slog.String("error", err.Error()))
		b.reply(chatID, fmt.Sprintf("Не удалось скачать файл %s. Попробуйте отправить его еще раз.", doc.FileName))
		return
	}

	startResp, err := b.serverClient.StartTask(ctx, DocumentFile{Name: doc.FileName, Content: bytes.NewReader(data)})
	if err != nil {
		logger.Error("failed to start task on backend", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось начать обработку файла на сервере. Пожалуйста, попробуйте позже.")
		return
	}

	taskID := startResp.TaskID
	logger.Info("task started on backend", slog.String("task_id", taskID), slog.Int("size", len(data)))

	// Задача становится активной до снятия отметки о загрузке.
	b.taskStore.Set(chatID, taskID)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.pollTaskStatus(ctx, chatID, taskID)
	}()

	b.reply(chatID, "✅ Файл поставлен в очередь на обработку, ожидайте результата.")
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := b.getFileDirectURLFunc(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file direct url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// pollTaskStatus асинхронно опрашивает статус задачи на бэкенд-сервере.
func (b *Bot) pollTaskStatus(ctx context.Context, chatID int64, taskID string) {
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("task_id", taskID))
	// Задача снимается с активных при любом исходе.
	defer b.taskStore.Delete(chatID)

	ticker := time.NewTicker(time.Duration(b.cfg.PollingIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Warn("polling cancelled by context")
			return
		case <-ticker.C:
			logger.Debug("polling task status")
			status, err := b.serverClient.GetTaskStatus(ctx, taskID)
			if err != nil {
				logger.Error("failed to get task status", slog.String("error", err.Error()))
				continue
			}

			switch status.Status {
			case "completed":
				logger.Info("task completed", slog.Int("messages", status.Messages))
				b.taskStore.Complete(chatID, taskID)
				b.sendReport(ctx, chatID, taskID)
				return
			case "failed":
				logger.Warn("task failed", slog.String("reason", status.ErrorMessage))
				b.reply(chatID, fmt.Sprintf("Произошла ошибка при обработке файла: %s", status.ErrorMessage))
				return
			case "pending", "processing":
				logger.Debug("task is in progress", slog.String("status", status.Status))
			default:
				logger.Warn("unknown task status", slog.String("status", status.Status))
			}
		}
	}
}

// sendReport отправляет сводку по завершенной задаче и, для больших чатов, xlsx-отчет.
func (b *Bot) sendReport(ctx context.Context, chatID int64, taskID string) {
	logger := b.logger.With(slog.Int64("chat_id", chatID), slog.String("task_id", taskID))

	report, err := b.serverClient.GetReport(ctx, taskID)
	if err != nil {
		logger.Error("failed to fetch report", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось получить результаты для выполненной задачи. Пожалуйста, попробуйте позже.")
		return
	}

	if report.VisibleMessages == 0 {
		b.reply(chatID, "В предоставленном файле не найдено сообщений для анализа.")
		return
	}

	text := FormatSummary(report, b.cfg.Render)
	if length := utf8.RuneCountInString(text); length > maxMessageLength {
		logger.Warn("summary is too long, sending as file", slog.Int("length", length))
		b.sendDocument(chatID, "summary.html", []byte(text), "Сводка слишком большая для одного сообщения.")
	} else {
		b.replyHTML(chatID, text)
	}

	if report.VisibleMessages < b.cfg.ExcelThreshold {
		return
	}

	logger.Info("message count is over threshold, sending excel file", slog.Int("messages", report.VisibleMessages))
	data, err := b.serverClient.GetReportXLSX(ctx, taskID)
	if err != nil {
		logger.Error("failed to fetch xlsx report", slog.String("error", err.Error()))
		b.reply(chatID, "Не удалось сформировать Excel-файл.")
		return
	}
	fileName := fmt.Sprintf("chat_stats_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	b.sendDocument(chatID, fileName, data, fmt.Sprintf("Полный отчет: %d сообщений.", report.VisibleMessages))
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte, caption string) {
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	msg.Caption = caption
	b.send(msg)
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.sendMessageFunc(msg); err != nil {
		b.logger.Error("failed to send message", slog.String("error", err.Error()))
	}
}
