package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/ports"
)

// Форматы атрибута title у даты в HTML-экспорте Telegram Desktop.
const (
	htmlDateLayout       = "02.01.2006 15:04:05"
	htmlDateOffsetLayout = "02.01.2006 15:04:05 UTC-07:00"
	isoDateLayout        = "2006-01-02T15:04:05"
)

// fileMedia - обертки вложений, которые в JSON-экспорте записываются с ключом file.
// mediaType повторяет значение media_type из JSON, пустое - ключа нет.
var fileMedia = []struct {
	selector  string
	mediaType string
}{
	{".animated_wrap, .media_animation", "animation"},
	{".video_file_wrap, .media_video", "video_file"},
	{".media_voice_message", "voice_message"},
	{".media_audio_file", "audio_file"},
	{".sticker_wrap", "sticker"},
	{".media_file", ""},
}

// HtmlParser реализует интерфейс Parser для HTML-экспорта (messages.html).
// Результат приводится к той же структуре, что и JSON-экспорт.
type HtmlParser struct{}

// NewHtmlParser создает новый экземпляр HtmlParser.
func NewHtmlParser() ports.Parser {
	return &HtmlParser{}
}

// Parse разбирает страницу экспорта.
func (p *HtmlParser) Parse(data []byte) (*domain.ExportedChat, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать HTML экспорта: %w", err)
	}

	chat := &domain.ExportedChat{
		Name:     strings.TrimSpace(doc.Find(".page_header .text").First().Text()),
		Messages: []domain.Message{},
	}

	// Блоки .joined не содержат имени автора и наследуют его от предыдущего сообщения.
	var lastFrom *string
	doc.Find("div.message").Each(func(_ int, sel *goquery.Selection) {
		msg := domain.Message{ID: parseMessageID(sel)}

		if !sel.HasClass("default") {
			msg.Type = "service"
			chat.Messages = append(chat.Messages, msg)
			return
		}
		msg.Type = domain.MessageTypeMessage

		body := sel.ChildrenFiltered(".body")
		if from := body.ChildrenFiltered(".from_name"); from.Length() > 0 {
			name := strings.TrimSpace(from.First().Text())
			lastFrom = &name
		}
		if lastFrom != nil {
			name := *lastFrom
			msg.From = &name
		}

		if title, ok := body.ChildrenFiltered(".date").Attr("title"); ok {
			msg.Date = convertHTMLDate(title)
		}

		if text := body.ChildrenFiltered(".text"); text.Length() > 0 {
			text.Find("br").ReplaceWithHtml("\n")
			msg.Text = domain.PlainText(strings.TrimSpace(text.Text()))
		}

		media := body.Find(".media_wrap")
		if photo := media.Find(".photo_wrap"); photo.Length() > 0 {
			msg.Photo = hrefValue(photo)
		} else {
			for _, fm := range fileMedia {
				if wrap := media.Find(fm.selector); wrap.Length() > 0 {
					msg.File = hrefValue(wrap)
					msg.MediaType = fm.mediaType
					break
				}
			}
		}

		chat.Messages = append(chat.Messages, msg)
	})

	return chat, nil
}

func parseMessageID(sel *goquery.Selection) int64 {
	raw, _ := sel.Attr("id")
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "message"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// convertHTMLDate переводит дату из title в ISO 8601. Нераспознанное значение
// возвращается как есть, чтобы ошибку формата обнаружил нормализатор.
func convertHTMLDate(title string) string {
	title = strings.TrimSpace(title)
	if t, err := time.Parse(htmlDateOffsetLayout, title); err == nil {
		return t.Format(time.RFC3339)
	}
	if t, err := time.Parse(htmlDateLayout, title); err == nil {
		return t.Format(isoDateLayout)
	}
	return title
}

func hrefValue(sel *goquery.Selection) json.RawMessage {
	href, _ := sel.First().Attr("href")
	value, err := json.Marshal(href)
	if err != nil {
		return json.RawMessage(`""`)
	}
	return value
}
