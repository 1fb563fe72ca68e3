package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"telegram-chat-stats/internal/domain"
)

// ServerAPI описывает методы бэкенд-сервера, которые использует бот.
type ServerAPI interface {
	StartTask(ctx context.Context, file DocumentFile) (*StartTaskResponse, error)
	GetTaskStatus(ctx context.Context, taskID string) (*TaskStatusResponse, error)
	GetReport(ctx context.Context, taskID string) (*domain.Report, error)
	GetReportXLSX(ctx context.Context, taskID string) ([]byte, error)
	GetWords(ctx context.Context, taskID, sender string, top int) (*domain.WordRanking, error)
	GetRandom(ctx context.Context, taskID string, day domain.Date) (*domain.MessagePick, error)
}

// ServerClient - клиент для взаимодействия с API бэкенд-сервера.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServerClient создает новый экземпляр ServerClient.
func NewServerClient(baseURL string, timeout time.Duration) *ServerClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServerClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout, // Общий таймаут для запросов
		},
	}
}

// API-ответы
type StartTaskResponse struct {
	TaskID string `json:"task_id"`
}

type TaskStatusResponse struct {
	TaskID       string `json:"task_id"`
	Status       string `json:"status"`
	FileName     string `json:"file_name"`
	ErrorMessage string `json:"error_message,omitempty"`
	ChatName     string `json:"chat_name,omitempty"`
	Messages     int    `json:"messages,omitempty"`
}

// DocumentFile представляет файл для загрузки.
type DocumentFile struct {
	Name    string
	Content io.Reader
}

// StartTask отправляет файл экспорта чата на сервер.
func (c *ServerClient) StartTask(ctx context.Context, file DocumentFile) (*StartTaskResponse, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err = io.Copy(fw, file.Content); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/process", &b)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result StartTaskResponse
	if err := c.do(req, http.StatusAccepted, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTaskStatus запрашивает статус задачи.
func (c *ServerClient) GetTaskStatus(ctx context.Context, taskID string) (*TaskStatusResponse, error) {
	var result TaskStatusResponse
	if err := c.getJSON(ctx, c.taskURL(taskID, "", nil), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetReport запрашивает полный отчет по завершенной задаче.
func (c *ServerClient) GetReport(ctx context.Context, taskID string) (*domain.Report, error) {
	var report domain.Report
	if err := c.getJSON(ctx, c.taskURL(taskID, "/report", nil), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetReportXLSX скачивает отчет в формате xlsx.
func (c *ServerClient) GetReportXLSX(ctx context.Context, taskID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.taskURL(taskID, "/report.xlsx", nil), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// GetWords запрашивает рейтинг слов. Пустой sender означает весь чат.
func (c *ServerClient) GetWords(ctx context.Context, taskID, sender string, top int) (*domain.WordRanking, error) {
	query := url.Values{}
	if sender != "" {
		query.Set("sender", sender)
	}
	if top > 0 {
		query.Set("top", strconv.Itoa(top))
	}

	var ranking domain.WordRanking
	if err := c.getJSON(ctx, c.taskURL(taskID, "/words", query), &ranking); err != nil {
		return nil, err
	}
	return &ranking, nil
}

// GetRandom запрашивает случайное сообщение за указанный день.
func (c *ServerClient) GetRandom(ctx context.Context, taskID string, day domain.Date) (*domain.MessagePick, error) {
	query := url.Values{"date": []string{day.String()}}

	var pick domain.MessagePick
	if err := c.getJSON(ctx, c.taskURL(taskID, "/random", query), &pick); err != nil {
		return nil, err
	}
	return &pick, nil
}

func (c *ServerClient) taskURL(taskID, suffix string, query url.Values) string {
	u := c.baseURL + "/api/v1/tasks/" + url.PathEscape(taskID) + suffix
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *ServerClient) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, http.StatusOK, out)
}

func (c *ServerClient) do(req *http.Request, expected int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
