package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// UnknownSender подставляется вместо автора, если поле from отсутствует.
const UnknownSender = "Неизвестный"

// MessageTypeMessage - единственный тип записей, который попадает в анализ.
const MessageTypeMessage = "message"

// ExportedChat представляет корневую структуру файла экспорта.
type ExportedChat struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	ID       int64     `json:"id"`
	Messages []Message `json:"messages"`
}

// Message представляет одну "сырую" запись из файла экспорта.
type Message struct {
	ID        int64   `json:"id"`
	Type      string  `json:"type"`
	Date      string  `json:"date"`
	From      *string `json:"from"`
	FromID    string  `json:"from_id"`
	Text      RawText `json:"text"`
	MediaType string  `json:"media_type"`
	// Photo и File хранятся как есть: важен только факт наличия ключа.
	Photo json.RawMessage `json:"photo"`
	File  json.RawMessage `json:"file"`
}

// TextKind различает формы поля text.
type TextKind int

const (
	TextAbsent TextKind = iota
	TextPlain
	TextSegments
)

// RawText - поле text сообщения: строка, массив сегментов или ничего.
type RawText struct {
	Kind     TextKind
	Plain    string
	Segments []TextSegment
}

// SegmentKind различает элементы массива text.
type SegmentKind int

const (
	SegmentOther SegmentKind = iota
	SegmentPlain
	SegmentEntity
)

// TextSegment - один элемент "богатого" текста.
type TextSegment struct {
	Kind SegmentKind
	// Text - строка для SegmentPlain или значение поля text для SegmentEntity.
	Text string
	// EntityType заполняется только для SegmentEntity (mention, link, bold...).
	EntityType string
}

// PlainText создает RawText из обычной строки.
func PlainText(s string) RawText {
	return RawText{Kind: TextPlain, Plain: s}
}

// SegmentedText создает RawText из набора сегментов.
func SegmentedText(segments ...TextSegment) RawText {
	return RawText{Kind: TextSegments, Segments: segments}
}

// UnmarshalJSON разбирает text в одну из трех форм.
func (t *RawText) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = RawText{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("failed to decode text string: %w", err)
		}
		*t = PlainText(s)
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("failed to decode text segments: %w", err)
		}
		segments := make([]TextSegment, 0, len(items))
		for _, item := range items {
			var seg TextSegment
			if err := seg.UnmarshalJSON(item); err != nil {
				return err
			}
			segments = append(segments, seg)
		}
		*t = SegmentedText(segments...)
	default:
		// Числа, логические значения и объекты приводятся к строке как есть.
		*t = PlainText(string(trimmed))
	}
	return nil
}

// UnmarshalJSON разбирает элемент массива text.
func (s *TextSegment) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*s = TextSegment{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return fmt.Errorf("failed to decode text segment: %w", err)
		}
		*s = TextSegment{Kind: SegmentPlain, Text: text}
	case '{':
		var entity struct {
			Type string          `json:"type"`
			Text json.RawMessage `json:"text"`
		}
		if err := json.Unmarshal(trimmed, &entity); err != nil {
			return fmt.Errorf("failed to decode text entity: %w", err)
		}
		*s = TextSegment{Kind: SegmentEntity, Text: coerceString(entity.Text), EntityType: entity.Type}
	default:
		*s = TextSegment{Kind: SegmentOther}
	}
	return nil
}

// coerceString приводит произвольное JSON-значение к строке, null и отсутствие дают "".
func coerceString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// MediaKind - тип вложения сообщения.
type MediaKind string

const (
	MediaNone      MediaKind = "none"
	MediaPhoto     MediaKind = "photo"
	MediaFile      MediaKind = "file"
	MediaAnimation MediaKind = "animation"
)

// Label возвращает подпись типа вложения для отчетов.
func (k MediaKind) Label() string {
	switch k {
	case MediaPhoto:
		return "фото"
	case MediaFile:
		return "файл"
	case MediaAnimation:
		return "анимация"
	default:
		return "нет"
	}
}

// HasMedia сообщает, есть ли у сообщения вложение.
func (k MediaKind) HasMedia() bool {
	return k != "" && k != MediaNone
}

// NormalizedMessage - каноническое представление одного сообщения чата.
type NormalizedMessage struct {
	ID        int64        `json:"id"`
	Sender    string       `json:"sender"`
	Timestamp time.Time    `json:"timestamp"`
	Text      string       `json:"text"`
	Media     MediaKind    `json:"media"`
	Day       Date         `json:"day"`
	Hour      int          `json:"hour"`
	Weekday   time.Weekday `json:"-"`
	Length    int          `json:"length"`
}

// WeekdayName возвращает английское название дня недели.
func (m NormalizedMessage) WeekdayName() string {
	return m.Weekday.String()
}

// normalizedMessageJSON - NormalizedMessage, в котором день недели записан названием.
type normalizedMessageJSON NormalizedMessage

// MarshalJSON записывает день недели строкой ("Monday").
func (m NormalizedMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		normalizedMessageJSON
		Weekday string `json:"weekday"`
	}{normalizedMessageJSON(m), m.WeekdayName()})
}

// UnmarshalJSON читает день недели по названию. Без поля weekday день
// берется из timestamp.
func (m *NormalizedMessage) UnmarshalJSON(data []byte) error {
	aux := struct {
		*normalizedMessageJSON
		Weekday string `json:"weekday"`
	}{normalizedMessageJSON: (*normalizedMessageJSON)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.Weekday = m.Timestamp.Weekday()
	if aux.Weekday == "" {
		return nil
	}
	for _, wd := range WeekdayOrder {
		if wd.String() == aux.Weekday {
			m.Weekday = wd
			return nil
		}
	}
	return fmt.Errorf("неизвестный день недели %q", aux.Weekday)
}

// Dataset - результат нормализации одного файла экспорта.
// All содержит все сообщения, Visible - сообщения после фильтра исключений.
type Dataset struct {
	ChatName string              `json:"chat_name"`
	All      []NormalizedMessage `json:"-"`
	Visible  []NormalizedMessage `json:"-"`
	// Skipped - число записей, пропущенных из-за некорректной даты (только в мягком режиме).
	Skipped int `json:"skipped"`
}

// Senders возвращает отсортированный список авторов из видимой части.
func (d *Dataset) Senders() []string {
	seen := make(map[string]struct{})
	var senders []string
	for _, m := range d.Visible {
		if _, ok := seen[m.Sender]; ok {
			continue
		}
		seen[m.Sender] = struct{}{}
		senders = append(senders, m.Sender)
	}
	sort.Strings(senders)
	return senders
}

// Scope задает область анализа: весь чат или один автор.
type Scope struct {
	Sender string `json:"sender,omitempty"`
}

// WholeChat - область "весь чат".
var WholeChat = Scope{}

// SenderScope создает область одного автора.
func SenderScope(sender string) Scope {
	return Scope{Sender: sender}
}

// IsWholeChat сообщает, охватывает ли область весь чат.
func (s Scope) IsWholeChat() bool {
	return s.Sender == ""
}

// Includes сообщает, попадает ли сообщение в область.
func (s Scope) Includes(m NormalizedMessage) bool {
	return s.IsWholeChat() || m.Sender == s.Sender
}

func (s Scope) String() string {
	if s.IsWholeChat() {
		return "Весь чат"
	}
	return s.Sender
}

// WordFrequency - слово и число его употреблений.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// WordRanking - частотный рейтинг слов для одной области.
type WordRanking struct {
	Scope   Scope              `json:"scope"`
	Words   []WordFrequency    `json:"words"`
	Warning *EmptyScopeWarning `json:"warning,omitempty"`
}

// NoData сообщает, что в области не нашлось сообщений.
func (r WordRanking) NoData() bool {
	return r.Warning != nil
}
