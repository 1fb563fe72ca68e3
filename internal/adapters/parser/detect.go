package parser

import (
	"bytes"

	"telegram-chat-stats/internal/ports"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// Detect выбирает парсер по содержимому: HTML, если первый значащий символ "<", иначе JSON.
func Detect(data []byte) ports.Parser {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return NewHtmlParser()
	}
	return NewJsonParser()
}
