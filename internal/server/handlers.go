package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"telegram-chat-stats/internal/adapters/exporter"
	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/metrics"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 1000
)

// TaskResponse - ответ на запрос статуса задачи.
type TaskResponse struct {
	TaskID       string     `json:"task_id"`
	Status       TaskStatus `json:"status"`
	FileName     string     `json:"file_name"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ChatName     string     `json:"chat_name,omitempty"`
	Messages     int        `json:"messages,omitempty"`
}

// Pagination - метаданные постраничной выдачи.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
}

// MessagesPage - страница видимых сообщений.
type MessagesPage struct {
	Pagination Pagination                 `json:"pagination"`
	Data       []domain.NormalizedMessage `json:"data"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleProcess принимает файл экспорта (поле file) и запускает его обработку в фоне.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.Server.MaxUploadSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Файл слишком большой", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Не удалось разобрать форму", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["file"]
	switch {
	case len(headers) == 0:
		http.Error(w, "Не удалось получить файл из формы", http.StatusBadRequest)
		return
	case len(headers) > 1:
		http.Error(w, "Можно загрузить только один файл экспорта", http.StatusBadRequest)
		return
	}
	header := headers[0]

	taskID := uuid.NewString()
	path, err := s.saveUpload(taskID, header)
	if err != nil {
		s.logger.Error("Не удалось сохранить загруженный файл", "error", err, "task_id", taskID)
		http.Error(w, "Не удалось сохранить загруженный файл", http.StatusInternalServerError)
		return
	}
	s.logger.Info("Получен файл экспорта", "task_id", taskID, "file", header.Filename, "size", header.Size)

	s.taskStore.CreateTask(taskID, header.Filename, taskTTL)
	go s.runTask(taskID, path)

	writeJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}

func (s *Server) saveUpload(taskID string, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("не удалось открыть часть формы: %w", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".html" && ext != ".htm" {
		ext = ".json"
	}
	dir := s.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("chat_%s%s", taskID, ext))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("не удалось записать временный файл: %w", err)
	}
	return path, nil
}

// runTask обрабатывает файлы задачи с таймаутом из конфигурации.
func (s *Server) runTask(taskID, path string) {
	defer os.Remove(path)
	metrics.TaskStarted()
	defer metrics.TaskFinished()

	s.taskStore.UpdateTaskStatus(taskID, TaskStatusProcessing)

	taskCtx := context.Background()
	if timeout := s.cfg.Processing.TaskTimeout; timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(taskCtx, timeout)
		defer cancel()
	}

	result, err := s.processor.ProcessChat(taskCtx, path)
	if err != nil {
		s.logger.Error("Ошибка обработки задачи", "task_id", taskID, "error", err)
		s.taskStore.UpdateTaskError(taskID, err.Error())
		return
	}

	s.taskStore.UpdateTaskResult(taskID, result)
	s.logger.Info("Задача завершена", "task_id", taskID, "messages", len(result.Visible))
}

func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.taskStore.GetTask(chi.URLParam(r, "taskID"))
	if err != nil {
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return
	}

	resp := TaskResponse{
		TaskID:       task.ID,
		Status:       task.Status,
		FileName:     task.FileName,
		ErrorMessage: task.ErrorMessage,
	}
	if task.Result != nil {
		resp.ChatName = task.Result.ChatName
		resp.Messages = len(task.Result.Visible)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.completedDataset(w, r)
	if !ok {
		return
	}
	report, err := s.reports.Build(ds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleReportXLSX(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.completedDataset(w, r)
	if !ok {
		return
	}
	report, err := s.reports.Build(ds)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	data, err := exporter.WorkbookBytes(report)
	if err != nil {
		s.logger.Error("Не удалось сформировать xlsx", "error", err)
		http.Error(w, "Не удалось сформировать отчет", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="report.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.completedDataset(w, r)
	if !ok {
		return
	}
	top, err := intParam(r, "top", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scope := domain.SenderScope(r.URL.Query().Get("sender"))
	writeJSON(w, http.StatusOK, s.reports.Words(ds, scope, top))
}

func (s *Server) handleCloud(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.completedDataset(w, r)
	if !ok {
		return
	}
	scope := domain.SenderScope(r.URL.Query().Get("sender"))
	writeJSON(w, http.StatusOK, s.reports.Cloud(ds, scope))
}

func (s *Server) handleRandom(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.completedDataset(w, r)
	if !ok {
		return
	}
	day, err := domain.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "Ожидается дата в формате ГГГГ-ММ-ДД", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.reports.RandomMessage(ds, day, nil))
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.completedDataset(w, r)
	if !ok {
		return
	}
	page, err := intParam(r, "page", defaultPage)
	if err != nil || page < 1 {
		http.Error(w, "Некорректный номер страницы", http.StatusBadRequest)
		return
	}
	pageSize, err := intParam(r, "page_size", defaultPageSize)
	if err != nil || pageSize < 1 {
		http.Error(w, "Некорректный размер страницы", http.StatusBadRequest)
		return
	}
	pageSize = min(pageSize, maxPageSize)

	total := len(ds.Visible)
	// Страницы за концом списка пустые, номер страницы сравнивается до умножения.
	start := total
	if page-1 < (total+pageSize-1)/pageSize {
		start = (page - 1) * pageSize
	}
	end := min(start+pageSize, total)

	writeJSON(w, http.StatusOK, MessagesPage{
		Pagination: Pagination{
			CurrentPage: page,
			PageSize:    pageSize,
			TotalItems:  total,
			TotalPages:  (total + pageSize - 1) / pageSize, // Округление вверх
		},
		Data: ds.Visible[start:end],
	})
}

// completedDataset возвращает набор завершенной задачи или пишет ошибку:
// 404 для неизвестной задачи, 400 для незавершенной.
func (s *Server) completedDataset(w http.ResponseWriter, r *http.Request) (*domain.Dataset, bool) {
	ds, err := s.taskStore.GetResult(chi.URLParam(r, "taskID"))
	switch {
	case errors.Is(err, ErrTaskNotFound):
		http.Error(w, "Задача не найдена", http.StatusNotFound)
		return nil, false
	case errors.Is(err, ErrTaskNotCompleted):
		http.Error(w, "Задача не завершена", http.StatusBadRequest)
		return nil, false
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return ds, true
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("параметр %s должен быть числом", name)
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
