package bot

import "sync"

// TaskStore - потокобезопасное in-memory хранилище, которое сопоставляет
// чат Telegram с задачами на бэкенд-сервере: активной и последней завершенной.
type TaskStore struct {
	mu        sync.RWMutex
	tasks     map[int64]string // map[chatID]taskID активной задачи
	completed map[int64]string // map[chatID]taskID последней завершенной
}

// NewTaskStore создает новый экземпляр TaskStore.
func NewTaskStore() *TaskStore {
	return &TaskStore{
		tasks:     make(map[int64]string),
		completed: make(map[int64]string),
	}
}

// Set сохраняет активную задачу чата, перезаписывая прежнюю.
func (s *TaskStore) Set(chatID int64, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[chatID] = taskID
}

// Get возвращает активную задачу чата.
func (s *TaskStore) Get(chatID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	taskID, ok := s.tasks[chatID]
	return taskID, ok
}

// Delete удаляет активную задачу чата.
func (s *TaskStore) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, chatID)
}

// Complete снимает активную задачу и запоминает ее как последнюю завершенную.
// По ней выполняются команды /words, /random и /report.
func (s *TaskStore) Complete(chatID int64, taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, chatID)
	s.completed[chatID] = taskID
}

// Completed возвращает последнюю завершенную задачу чата.
func (s *TaskStore) Completed(chatID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	taskID, ok := s.completed[chatID]
	return taskID, ok
}
