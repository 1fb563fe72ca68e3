package source

import (
	"fmt"

	"telegram-chat-stats/internal/ports"
)

// MemorySource отдает экспорт, уже прочитанный в память (stdin, тело запроса).
type MemorySource struct {
	name string
	data []byte
}

// NewMemorySource создает источник; name попадает в сообщения об ошибках.
func NewMemorySource(name string, data []byte) ports.DataSource {
	return &MemorySource{name: name, data: data}
}

// Fetch возвращает копию данных.
func (s *MemorySource) Fetch() ([]byte, error) {
	if len(s.data) == 0 {
		return nil, fmt.Errorf("источник %s не содержит данных", s.name)
	}
	return append([]byte(nil), s.data...), nil
}
