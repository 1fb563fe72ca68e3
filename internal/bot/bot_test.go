package bot

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-chat-stats/cmd/bot/config"
	"telegram-chat-stats/internal/domain"
)

// mockServerClient - мок для ServerAPI.
type mockServerClient struct {
	startTaskFunc func(ctx context.Context, file DocumentFile) (*StartTaskResponse, error)
	report        *domain.Report
	words         *domain.WordRanking
	pick          *domain.MessagePick

	mu          sync.Mutex
	wordsSender string
	randomDay   domain.Date
	xlsxCalls   int
}

func (m *mockServerClient) StartTask(ctx context.Context, file DocumentFile) (*StartTaskResponse, error) {
	if m.startTaskFunc != nil {
		return m.startTaskFunc(ctx, file)
	}
	return &StartTaskResponse{TaskID: "mock-task-id"}, nil
}

func (m *mockServerClient) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatusResponse, error) {
	return &TaskStatusResponse{TaskID: taskID, Status: "completed"}, nil
}

func (m *mockServerClient) GetReport(ctx context.Context, taskID string) (*domain.Report, error) {
	if m.report != nil {
		return m.report, nil
	}
	return &domain.Report{}, nil
}

func (m *mockServerClient) GetReportXLSX(ctx context.Context, taskID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.xlsxCalls++
	return []byte("xlsx"), nil
}

func (m *mockServerClient) GetWords(ctx context.Context, taskID, sender string, top int) (*domain.WordRanking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wordsSender = sender
	if m.words != nil {
		return m.words, nil
	}
	return &domain.WordRanking{Scope: domain.SenderScope(sender)}, nil
}

func (m *mockServerClient) GetRandom(ctx context.Context, taskID string, day domain.Date) (*domain.MessagePick, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.randomDay = day
	if m.pick != nil {
		return m.pick, nil
	}
	return &domain.MessagePick{}, nil
}

// newTestBot создает бота с моками для тестирования.
func newTestBot(t *testing.T, cfg config.BotConfig, serverClient ServerAPI) *Bot {
	bot := &Bot{
		api:          nil, // Не используется напрямую благодаря мокам
		cfg:          cfg,
		serverClient: serverClient,
		taskStore:    NewTaskStore(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		uploading:    make(map[int64]struct{}),
		httpClient:   http.DefaultClient, // Будет заменен в тестах
	}
	bot.sendMessageFunc = func(msg tgbotapi.Chattable) (tgbotapi.Message, error) { return tgbotapi.Message{}, nil }
	bot.getFileDirectURLFunc = func(fileID string) (string, error) { return "", nil }
	return bot
}

// messageRecorder собирает тексты отправленных сообщений и имена документов.
type messageRecorder struct {
	mu        sync.Mutex
	texts     []string
	documents []string
}

func (r *messageRecorder) send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch m := msg.(type) {
	case tgbotapi.MessageConfig:
		r.texts = append(r.texts, m.Text)
	case tgbotapi.DocumentConfig:
		if f, ok := m.File.(tgbotapi.FileBytes); ok {
			r.documents = append(r.documents, f.Name)
		}
	}
	return tgbotapi.Message{}, nil
}

func (r *messageRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func TestBot_HandleDocument(t *testing.T) {
	cfg := config.BotConfig{
		PollingIntervalSeconds: 1, // Положительное значение для тикера
		ExcelThreshold:         100,
	}

	ctx := context.Background()

	// Тестовый сервер имитирует API Telegram для скачивания файлов
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("fake file content"))
	}))
	defer ts.Close()

	t.Run("Файл скачивается и отправляется на сервер", func(t *testing.T) {
		startTaskCalled := make(chan DocumentFile, 1)
		mockClient := &mockServerClient{
			startTaskFunc: func(ctx context.Context, file DocumentFile) (*StartTaskResponse, error) {
				startTaskCalled <- file
				return &StartTaskResponse{TaskID: "test-task"}, nil
			},
		}

		bot := newTestBot(t, cfg, mockClient)
		bot.httpClient = ts.Client()
		bot.getFileDirectURLFunc = func(fileID string) (string, error) {
			return ts.URL + "/" + fileID, nil
		}

		msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 123}, Document: &tgbotapi.Document{FileID: "file1", FileName: "result.json"}}
		bot.handleDocument(ctx, msg)

		select {
		case file := <-startTaskCalled:
			assert.Equal(t, "result.json", file.Name)
			data, err := io.ReadAll(file.Content)
			require.NoError(t, err)
			assert.Equal(t, "fake file content", string(data))
		case <-time.After(3 * time.Second):
			t.Fatal("timed out waiting for StartTask to be called")
		}
		bot.Stop()
	})

	t.Run("Новые файлы отклоняются, пока идет обработка", func(t *testing.T) {
		bot := newTestBot(t, cfg, &mockServerClient{})
		rec := &messageRecorder{}
		bot.sendMessageFunc = rec.send

		chatID := int64(789)
		bot.taskStore.Set(chatID, "some-active-task-id")

		msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Document: &tgbotapi.Document{FileID: "fileX", FileName: "X.json"}}
		bot.handleDocument(ctx, msg)

		texts := rec.all()
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "Пожалуйста, подождите завершения предыдущей задачи")
	})

	t.Run("Второй файл во время скачивания первого отклоняется", func(t *testing.T) {
		bot := newTestBot(t, cfg, &mockServerClient{})
		rec := &messageRecorder{}
		bot.sendMessageFunc = rec.send

		chatID := int64(999)
		require.True(t, bot.beginUpload(chatID))

		msg := &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Document: &tgbotapi.Document{FileID: "file2", FileName: "messages.html"}}
		bot.handleDocument(ctx, msg)

		texts := rec.all()
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "Пожалуйста, подождите завершения предыдущей задачи")

		bot.endUpload(chatID)
		assert.True(t, bot.beginUpload(chatID))
	})

	t.Run("Ошибка скачивания", func(t *testing.T) {
		failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer failing.Close()

		mockClient := &mockServerClient{
			startTaskFunc: func(ctx context.Context, file DocumentFile) (*StartTaskResponse, error) {
				t.Error("StartTask не должен вызываться")
				return nil, nil
			},
		}
		bot := newTestBot(t, cfg, mockClient)
		rec := &messageRecorder{}
		bot.sendMessageFunc = rec.send
		bot.httpClient = failing.Client()
		bot.getFileDirectURLFunc = func(fileID string) (string, error) { return failing.URL + "/" + fileID, nil }

		chatID := int64(555)
		bot.handleDocument(ctx, &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Document: &tgbotapi.Document{FileID: "f", FileName: "result.json"}})
		bot.Stop()

		texts := rec.all()
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "Не удалось скачать файл result.json")
		assert.True(t, bot.beginUpload(chatID), "чат должен освободиться после ошибки")
	})
}

func TestBot_ProcessDocument(t *testing.T) {
	cfg := config.BotConfig{
		PollingIntervalSeconds: 1,
		ExcelThreshold:         2,
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<html>export</html>`))
	}))
	defer ts.Close()

	mockClient := &mockServerClient{
		report: &domain.Report{
			ChatName:        "Клуб",
			VisibleMessages: 5,
			TopSenders:      []domain.SenderCount{{Sender: "Анна", Count: 5}},
			MediaShare:      domain.MediaShare{Percent: decimal.NewFromInt(20)},
		},
	}

	bot := newTestBot(t, cfg, mockClient)
	rec := &messageRecorder{}
	bot.sendMessageFunc = rec.send
	bot.httpClient = ts.Client()
	bot.getFileDirectURLFunc = func(fileID string) (string, error) { return ts.URL + "/" + fileID, nil }

	chatID := int64(123)
	bot.processDocument(context.Background(), chatID, &tgbotapi.Document{FileID: "file1", FileName: "messages.html"})

	t.Run("Задача становится активной", func(t *testing.T) {
		texts := rec.all()
		require.NotEmpty(t, texts)
		assert.Contains(t, texts[0], "поставлен в очередь")
	})

	t.Run("После завершения приходит сводка и xlsx", func(t *testing.T) {
		bot.Stop()

		taskID, ok := bot.taskStore.Completed(chatID)
		require.True(t, ok)
		assert.Equal(t, "mock-task-id", taskID)

		_, active := bot.taskStore.Get(chatID)
		assert.False(t, active)

		joined := strings.Join(rec.all(), "\n")
		assert.Contains(t, joined, "<b>Клуб</b>")
		assert.Contains(t, joined, "Анна")

		rec.mu.Lock()
		defer rec.mu.Unlock()
		require.Len(t, rec.documents, 1)
		assert.True(t, strings.HasSuffix(rec.documents[0], ".xlsx"))
	})
}

func TestBot_Commands(t *testing.T) {
	cfg := config.BotConfig{TopWords: 5, MessageWidth: 40}
	chatID := int64(42)

	command := func(text string) *tgbotapi.Message {
		cmd := strings.Fields(text)[0]
		return &tgbotapi.Message{
			Chat:     &tgbotapi.Chat{ID: chatID},
			Text:     text,
			Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
		}
	}

	t.Run("Команды без обработанного файла", func(t *testing.T) {
		bot := newTestBot(t, cfg, &mockServerClient{})
		rec := &messageRecorder{}
		bot.sendMessageFunc = rec.send

		bot.handleMessage(context.Background(), command("/words"))

		texts := rec.all()
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "Сначала отправьте файл")
	})

	t.Run("Рейтинг слов участника", func(t *testing.T) {
		client := &mockServerClient{words: &domain.WordRanking{
			Scope: domain.SenderScope("Анна Петрова"),
			Words: []domain.WordFrequency{{Word: "кот", Count: 3}},
		}}
		bot := newTestBot(t, cfg, client)
		rec := &messageRecorder{}
		bot.sendMessageFunc = rec.send
		bot.taskStore.Complete(chatID, "done")

		bot.handleMessage(context.Background(), command("/words Анна Петрова"))

		assert.Equal(t, "Анна Петрова", client.wordsSender)
		texts := rec.all()
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "кот")
	})

	t.Run("Случайное сообщение за день", func(t *testing.T) {
		client := &mockServerClient{pick: &domain.MessagePick{
			Warning: domain.NewEmptyScopeWarning("2023-01-02", domain.NoMessagesOnDate),
		}}
		bot := newTestBot(t, cfg, client)
		rec := &messageRecorder{}
		bot.sendMessageFunc = rec.send
		bot.taskStore.Complete(chatID, "done")

		bot.handleMessage(context.Background(), command("/random 2023-01-02"))
		bot.handleMessage(context.Background(), command("/random вчера"))

		assert.Equal(t, "2023-01-02", client.randomDay.String())
		texts := rec.all()
		require.Len(t, texts, 2)
		assert.Equal(t, domain.NoMessagesOnDate, texts[0])
		assert.Contains(t, texts[1], "ГГГГ-ММ-ДД")
	})

	t.Run("Неизвестная команда", func(t *testing.T) {
		bot := newTestBot(t, cfg, &mockServerClient{})
		rec := &messageRecorder{}
		bot.sendMessageFunc = rec.send

		bot.handleMessage(context.Background(), command("/unknown"))
		assert.Equal(t, []string{"Я не знаю такой команды."}, rec.all())
	})
}

func TestBot_SendReportLength(t *testing.T) {
	cfg := config.BotConfig{PollingIntervalSeconds: 1, ExcelThreshold: 1000}

	send := func(t *testing.T, chatName string) *messageRecorder {
		t.Helper()
		mockClient := &mockServerClient{report: &domain.Report{
			ChatName:        chatName,
			VisibleMessages: 3,
			MediaShare:      domain.MediaShare{Percent: decimal.Zero},
		}}
		bot := newTestBot(t, cfg, mockClient)
		rec := &messageRecorder{}
		bot.sendMessageFunc = rec.send
		bot.sendReport(context.Background(), 1, "task")
		return rec
	}

	t.Run("Длина считается в символах, а не в байтах", func(t *testing.T) {
		// 3000 кириллических символов занимают 6000 байт
		rec := send(t, strings.Repeat("я", 3000))

		texts := rec.all()
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], strings.Repeat("я", 3000))
		assert.Empty(t, rec.documents)
	})

	t.Run("Сводка длиннее лимита уходит файлом", func(t *testing.T) {
		rec := send(t, strings.Repeat("я", maxMessageLength+1))

		assert.Empty(t, rec.all())
		require.Len(t, rec.documents, 1)
		assert.Equal(t, "summary.html", rec.documents[0])
	})
}
