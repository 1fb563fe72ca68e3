package domain

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrEmptyScope - признак пустой области анализа, проверяется через errors.Is.
var ErrEmptyScope = errors.New("empty scope")

// MissingInputError возвращается, когда файл экспорта не найден.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("Файл '%s' не найден (%s).", filepath.Base(e.Path), e.Path)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// DataFormatError возвращается, когда дату сообщения не удалось разобрать.
// Ошибка фатальна для всего файла: частичный результат не формируется.
type DataFormatError struct {
	// Index - позиция записи в массиве messages.
	Index     int
	MessageID int64
	Value     string
	Err       error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("некорректная дата %q в сообщении %d (позиция %d): %v", e.Value, e.MessageID, e.Index, e.Err)
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// EmptyScopeWarning сообщает, что в выбранной области нет сообщений.
// Это не ошибка обработки: результат возвращается пустым с этим признаком.
type EmptyScopeWarning struct {
	Scope   string `json:"scope"`
	Message string `json:"message"`
}

// NewEmptyScopeWarning создает предупреждение для области.
func NewEmptyScopeWarning(scope, message string) *EmptyScopeWarning {
	return &EmptyScopeWarning{Scope: scope, Message: message}
}

func (w *EmptyScopeWarning) Error() string {
	return w.Message
}

func (w *EmptyScopeWarning) Is(target error) bool {
	return target == ErrEmptyScope
}
