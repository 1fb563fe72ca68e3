package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"telegram-chat-stats/internal/domain"
)

// TaskStatus представляет статус задачи обработки
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

var (
	// ErrTaskNotFound возвращается для неизвестной или удаленной задачи.
	ErrTaskNotFound = errors.New("задача не найдена")
	// ErrTaskNotCompleted возвращается, когда результат задачи еще не готов.
	ErrTaskNotCompleted = errors.New("задача не завершена")
)

// Task представляет собой одну задачу обработки
type Task struct {
	ID           string
	Status       TaskStatus
	FileName     string
	Result       *domain.Dataset
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  time.Time
	ExpiresAt    time.Time // Для автоматической очистки
}

// TaskStore управляет хранением и извлечением задач
type TaskStore struct {
	tasks map[string]*Task
	mutex sync.RWMutex
}

// NewTaskStore создает новый экземпляр TaskStore
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks: make(map[string]*Task),
	}
}

// CreateTask создает новую задачу со статусом 'pending'
func (ts *TaskStore) CreateTask(taskID, fileName string, ttl time.Duration) {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	now := time.Now()
	ts.tasks[taskID] = &Task{
		ID:        taskID,
		Status:    TaskStatusPending,
		FileName:  fileName,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// UpdateTaskStatus обновляет статус задачи
func (ts *TaskStore) UpdateTaskStatus(taskID string, status TaskStatus) error {
	return ts.update(taskID, func(task *Task) {
		task.Status = status
	})
}

// UpdateTaskResult сохраняет нормализованный набор и переводит задачу в 'completed'
func (ts *TaskStore) UpdateTaskResult(taskID string, result *domain.Dataset) error {
	return ts.update(taskID, func(task *Task) {
		task.Status = TaskStatusCompleted
		task.Result = result
		task.CompletedAt = time.Now()
	})
}

// UpdateTaskError обновляет сообщение об ошибке и статус задачи на 'failed'
func (ts *TaskStore) UpdateTaskError(taskID string, errorMessage string) error {
	return ts.update(taskID, func(task *Task) {
		task.Status = TaskStatusFailed
		task.ErrorMessage = errorMessage
		task.CompletedAt = time.Now()
	})
}

func (ts *TaskStore) update(taskID string, apply func(task *Task)) error {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	task, exists := ts.tasks[taskID]
	if !exists {
		return fmt.Errorf("задача с ID %s: %w", taskID, ErrTaskNotFound)
	}

	apply(task)
	return nil
}

// GetTask возвращает копию задачи по ее ID
func (ts *TaskStore) GetTask(taskID string) (*Task, error) {
	ts.mutex.RLock()
	defer ts.mutex.RUnlock()

	task, exists := ts.tasks[taskID]
	if !exists || time.Now().After(task.ExpiresAt) {
		return nil, fmt.Errorf("задача с ID %s: %w", taskID, ErrTaskNotFound)
	}

	snapshot := *task
	return &snapshot, nil
}

// GetResult возвращает набор сообщений завершенной задачи
func (ts *TaskStore) GetResult(taskID string) (*domain.Dataset, error) {
	task, err := ts.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task.Status != TaskStatusCompleted {
		return nil, fmt.Errorf("задача с ID %s в статусе %s: %w", taskID, task.Status, ErrTaskNotCompleted)
	}
	return task.Result, nil
}

// Len возвращает число хранимых задач
func (ts *TaskStore) Len() int {
	ts.mutex.RLock()
	defer ts.mutex.RUnlock()
	return len(ts.tasks)
}

// CleanupExpired удаляет просроченные задачи из хранилища
func (ts *TaskStore) CleanupExpired() {
	ts.mutex.Lock()
	defer ts.mutex.Unlock()

	now := time.Now()
	for taskID, task := range ts.tasks {
		if now.After(task.ExpiresAt) {
			delete(ts.tasks, taskID)
		}
	}
}

// StartCleanupTicker запускает тикер для периодической очистки просроченных задач
func (ts *TaskStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ts.CleanupExpired()
			}
		}
	}()
}
