package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/ports"
)

// CliSource читает файл экспорта с диска: путь из командной строки,
// конфигурации или временный файл загрузки.
type CliSource struct {
	path string
}

// NewCliSource создает новый экземпляр CliSource.
func NewCliSource(path string) ports.DataSource {
	return &CliSource{path: path}
}

// Fetch читает файл целиком. Отсутствующий файл - *domain.MissingInputError,
// каталог на месте файла - обычная ошибка.
func (s *CliSource) Fetch() ([]byte, error) {
	if s.path == "" {
		return nil, fmt.Errorf("не указан путь к файлу")
	}

	info, err := os.Stat(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &domain.MissingInputError{Path: s.path, Err: err}
	case err != nil:
		return nil, fmt.Errorf("не удалось открыть файл %s: %w", s.path, err)
	case info.IsDir():
		return nil, fmt.Errorf("%s - каталог, а не файл экспорта", s.path)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл %s: %w", s.path, err)
	}
	return data, nil
}
