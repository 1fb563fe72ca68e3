package parser

import (
	"encoding/json"
	"fmt"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/ports"
)

// JsonParser разбирает машиночитаемый экспорт одного чата (result.json).
type JsonParser struct{}

// NewJsonParser создает новый экземпляр JsonParser.
func NewJsonParser() ports.Parser {
	return &JsonParser{}
}

// exportDocument отличает экспорт одного чата от экспорта всего аккаунта,
// в котором чаты лежат в chats.list, а messages на верхнем уровне нет.
type exportDocument struct {
	domain.ExportedChat
	Chats json.RawMessage `json:"chats"`
}

// Parse читает result.json. Документ без массива messages не считается экспортом чата.
func (p *JsonParser) Parse(data []byte) (*domain.ExportedChat, error) {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("не удалось разобрать JSON экспорта: %w", err)
	}
	if doc.Messages == nil {
		if len(doc.Chats) > 0 {
			return nil, fmt.Errorf("это экспорт всего аккаунта, нужен экспорт одного чата")
		}
		return nil, fmt.Errorf("в JSON экспорта нет массива messages")
	}
	return &doc.ExportedChat, nil
}
