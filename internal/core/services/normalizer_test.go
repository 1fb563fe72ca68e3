package services

import (
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-chat-stats/internal/domain"
)

func strPtr(s string) *string {
	return &s
}

func parseChat(t *testing.T, data string) *domain.ExportedChat {
	t.Helper()
	var chat domain.ExportedChat
	require.NoError(t, json.Unmarshal([]byte(data), &chat))
	return &chat
}

func TestNormalizer(t *testing.T) {
	t.Run("Служебные записи отбрасываются, поля вычисляются", func(t *testing.T) {
		chat := parseChat(t, `{
			"name": "Тест",
			"messages": [
				{"id": 1, "type": "message", "date": "2023-01-01T10:00:00", "from": "A", "text": "hi"},
				{"id": 2, "type": "service", "date": "2023-01-01T10:05:00", "actor": "A"},
				{"id": 3, "type": "message", "date": "2023-01-02T23:59:59", "text": ["x", {"type": "bold", "text": "y"}]}
			]
		}`)

		n, err := NewNormalizer()
		require.NoError(t, err)

		ds, err := n.Normalize(chat)
		require.NoError(t, err)
		require.Len(t, ds.All, 2)
		assert.Equal(t, "Тест", ds.ChatName)

		first := ds.All[0]
		assert.Equal(t, "A", first.Sender)
		assert.Equal(t, "hi", first.Text)
		assert.Equal(t, domain.Date{Year: 2023, Month: time.January, Day: 1}, first.Day)
		assert.Equal(t, 10, first.Hour)
		assert.Equal(t, time.Sunday, first.Weekday)
		assert.Equal(t, "Sunday", first.WeekdayName())
		assert.Equal(t, 2, first.Length)
		assert.Equal(t, domain.MediaNone, first.Media)

		second := ds.All[1]
		assert.Equal(t, domain.UnknownSender, second.Sender)
		assert.Equal(t, "xy", second.Text)
		assert.Equal(t, 23, second.Hour)
		assert.Equal(t, time.Monday, second.Weekday)
	})

	t.Run("Длина считается в символах", func(t *testing.T) {
		chat := &domain.ExportedChat{Messages: []domain.Message{
			{ID: 1, Type: "message", Date: "2023-05-01T08:00:00", From: strPtr("Анна"), Text: domain.PlainText("привет")},
		}}
		n, err := NewNormalizer()
		require.NoError(t, err)

		ds, err := n.Normalize(chat)
		require.NoError(t, err)
		assert.Equal(t, 6, ds.All[0].Length)
	})

	t.Run("Некорректная дата прерывает обработку всего файла", func(t *testing.T) {
		chat := &domain.ExportedChat{Messages: []domain.Message{
			{ID: 1, Type: "message", Date: "2023-01-01T10:00:00"},
			{ID: 7, Type: "message", Date: "вчера"},
		}}
		n, err := NewNormalizer()
		require.NoError(t, err)

		ds, err := n.Normalize(chat)
		assert.Nil(t, ds)

		var formatErr *domain.DataFormatError
		require.True(t, errors.As(err, &formatErr))
		assert.Equal(t, int64(7), formatErr.MessageID)
		assert.Equal(t, 1, formatErr.Index)
		assert.Equal(t, "вчера", formatErr.Value)
	})

	t.Run("Некорректная дата служебной записи не мешает", func(t *testing.T) {
		chat := &domain.ExportedChat{Messages: []domain.Message{
			{ID: 1, Type: "service", Date: "???"},
			{ID: 2, Type: "message", Date: "2023-01-01"},
		}}
		n, err := NewNormalizer()
		require.NoError(t, err)

		ds, err := n.Normalize(chat)
		require.NoError(t, err)
		assert.Len(t, ds.All, 1)
	})

	t.Run("Мягкий режим пропускает записи с некорректной датой", func(t *testing.T) {
		chat := &domain.ExportedChat{Messages: []domain.Message{
			{ID: 1, Type: "message", Date: "2023-01-01T10:00:00"},
			{ID: 2, Type: "message", Date: ""},
			{ID: 3, Type: "message", Date: "2023-01-01T11:00:00"},
		}}
		n, err := NewNormalizer(WithSkipInvalidDates(true))
		require.NoError(t, err)

		ds, err := n.Normalize(chat)
		require.NoError(t, err)
		assert.Len(t, ds.All, 2)
		assert.Equal(t, 1, ds.Skipped)
	})

	t.Run("Поддерживаются даты со смещением и в заданном поясе", func(t *testing.T) {
		loc := time.FixedZone("MSK", 3*60*60)
		chat := &domain.ExportedChat{Messages: []domain.Message{
			{ID: 1, Type: "message", Date: "2023-01-01T01:30:00"},
			{ID: 2, Type: "message", Date: "2023-01-01T01:30:00+05:00"},
		}}
		n, err := NewNormalizer(WithLocation(loc))
		require.NoError(t, err)

		ds, err := n.Normalize(chat)
		require.NoError(t, err)
		assert.Equal(t, loc, ds.All[0].Timestamp.Location())
		assert.Equal(t, 1, ds.All[0].Hour)
		assert.Equal(t, 1, ds.All[1].Hour)
	})

	t.Run("Фильтр исключений формирует видимую часть", func(t *testing.T) {
		chat := &domain.ExportedChat{Messages: []domain.Message{
			{ID: 1, Type: "message", Date: "2023-01-01T10:00:00", From: strPtr("Bot ID-C 42")},
			{ID: 2, Type: "message", Date: "2023-01-01T10:00:00", From: strPtr("\u08e7\u08e7")},
			{ID: 3, Type: "message", Date: "2023-01-01T10:00:00", From: strPtr("Анна")},
		}}
		n, err := NewNormalizer(WithExclusionPatterns([]string{"ID-C", "\u08e7+"}))
		require.NoError(t, err)

		ds, err := n.Normalize(chat)
		require.NoError(t, err)
		assert.Len(t, ds.All, 3)
		require.Len(t, ds.Visible, 1)
		assert.Equal(t, "Анна", ds.Visible[0].Sender)
	})

	t.Run("Некорректное выражение исключения - ошибка конструктора", func(t *testing.T) {
		_, err := NewNormalizer(WithExclusionPatterns([]string{"("}))
		assert.Error(t, err)
	})

	t.Run("nil вместо чата", func(t *testing.T) {
		n, err := NewNormalizer()
		require.NoError(t, err)
		_, err = n.Normalize(nil)
		assert.Error(t, err)
	})
}

func TestFlattenText(t *testing.T) {
	testCases := []struct {
		name     string
		input    domain.RawText
		expected string
	}{
		{"отсутствует", domain.RawText{}, ""},
		{"строка", domain.PlainText("hello"), "hello"},
		{
			"сегменты склеиваются без разделителя",
			domain.SegmentedText(
				domain.TextSegment{Kind: domain.SegmentPlain, Text: "a"},
				domain.TextSegment{Kind: domain.SegmentEntity, Text: "b", EntityType: "bold"},
				domain.TextSegment{Kind: domain.SegmentPlain, Text: "c"},
			),
			"abc",
		},
		{
			"прочие элементы пропускаются",
			domain.SegmentedText(
				domain.TextSegment{Kind: domain.SegmentPlain, Text: "a"},
				domain.TextSegment{Kind: domain.SegmentOther},
				domain.TextSegment{Kind: domain.SegmentEntity, EntityType: "link"},
			),
			"a",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FlattenText(tc.input))
		})
	}
}

func TestResolveMediaKind(t *testing.T) {
	photo := json.RawMessage(`"photos/1.jpg"`)
	file := json.RawMessage(`"files/a.pdf"`)

	testCases := []struct {
		name     string
		msg      domain.Message
		expected domain.MediaKind
	}{
		{"фото и файл - фото", domain.Message{Photo: photo, File: file}, domain.MediaPhoto},
		{"только файл", domain.Message{File: file}, domain.MediaFile},
		{"файл важнее анимации", domain.Message{File: file, MediaType: "animation"}, domain.MediaFile},
		{"анимация", domain.Message{MediaType: "animation"}, domain.MediaAnimation},
		{"стикер не считается", domain.Message{MediaType: "sticker"}, domain.MediaNone},
		{"ключ photo со значением null", domain.Message{Photo: json.RawMessage(`null`)}, domain.MediaPhoto},
		{"без вложений", domain.Message{}, domain.MediaNone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ResolveMediaKind(tc.msg))
		})
	}
}

func TestApplyExclusionFilter(t *testing.T) {
	patterns := regexp.MustCompile
	msgs := []domain.NormalizedMessage{
		{ID: 1, Sender: "Анна"},
		{ID: 2, Sender: "xID-Cx"},
		{ID: 3, Sender: "id-c"},
		{ID: 4, Sender: "Борис"},
	}

	t.Run("Поиск подстроки с учетом регистра", func(t *testing.T) {
		visible := ApplyExclusionFilter(msgs, []*regexp.Regexp{patterns("ID-C")})
		require.Len(t, visible, 3)
		assert.Equal(t, int64(1), visible[0].ID)
		assert.Equal(t, int64(3), visible[1].ID)
		assert.Equal(t, int64(4), visible[2].ID)
	})

	t.Run("Порядок сохраняется, исходный срез не меняется", func(t *testing.T) {
		visible := ApplyExclusionFilter(msgs, []*regexp.Regexp{patterns("Анна"), patterns("^Бор")})
		require.Len(t, visible, 2)
		assert.Equal(t, "xID-Cx", visible[0].Sender)
		assert.Len(t, msgs, 4)
	})

	t.Run("Без выражений остается все", func(t *testing.T) {
		assert.Equal(t, msgs, ApplyExclusionFilter(msgs, nil))
	})
}
