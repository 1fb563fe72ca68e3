package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-chat-stats/internal/core/services"
	"telegram-chat-stats/internal/domain"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"/><title>Exported Data</title></head>
<body>
<div class="page_wrap">
 <div class="page_header"><div class="content"><div class="text bold">Клуб любителей котов</div></div></div>
 <div class="page_body chat_page">
  <div class="history">
   <div class="message service" id="message-1"><div class="body details">1 January 2023</div></div>
   <div class="message default clearfix" id="message1">
    <div class="pull_left userpic_wrap"><div class="userpic userpic1"><div class="initials">А</div></div></div>
    <div class="body">
     <div class="pull_right date details" title="01.01.2023 10:00:00 UTC+03:00">10:00</div>
     <div class="from_name">Анна</div>
     <div class="text">Привет,<br>кот!</div>
    </div>
   </div>
   <div class="message default clearfix joined" id="message2">
    <div class="body">
     <div class="pull_right date details" title="01.01.2023 10:01:00 UTC+03:00">10:01</div>
     <div class="media_wrap clearfix">
      <a class="photo_wrap clearfix pull_left" href="photos/photo_1.jpg"><img class="photo" src="photos/photo_1_thumb.jpg"/></a>
     </div>
    </div>
   </div>
   <div class="message service" id="message3"><div class="body details">Анна pinned a message</div></div>
   <div class="message default clearfix" id="message4">
    <div class="body">
     <div class="pull_right date details" title="02.01.2023 23:15:00">23:15</div>
     <div class="from_name">Борис</div>
     <div class="media_wrap clearfix">
      <div class="media clearfix pull_left media_file"><div class="body"><div class="title bold">doc.pdf</div></div></div>
     </div>
     <div class="text">Держите <a href="https://example.com">ссылку</a></div>
    </div>
   </div>
   <div class="message default clearfix" id="message5">
    <div class="body">
     <div class="pull_right date details" title="02.01.2023 23:16:00">23:16</div>
     <div class="from_name">Борис</div>
     <div class="media_wrap clearfix"><a class="animated_wrap clearfix pull_left" href="video_files/anim.mp4"></a></div>
    </div>
   </div>
   <div class="message default clearfix joined" id="message6">
    <div class="body">
     <div class="pull_right date details" title="02.01.2023 23:17:00">23:17</div>
     <div class="media_wrap clearfix"><a class="video_file_wrap clearfix pull_left" href="video_files/cat.mp4"><div class="video_play_bg"></div></a></div>
    </div>
   </div>
   <div class="message default clearfix joined" id="message7">
    <div class="body">
     <div class="pull_right date details" title="02.01.2023 23:18:00">23:18</div>
     <div class="media_wrap clearfix"><a class="media clearfix pull_left block_link media_voice_message" href="voice_messages/audio_1.ogg"></a></div>
    </div>
   </div>
  </div>
 </div>
</div>
</body>
</html>`

func TestHtmlParser(t *testing.T) {
	t.Run("Разбор страницы экспорта", func(t *testing.T) {
		chat, err := NewHtmlParser().Parse([]byte(sampleHTML))
		require.NoError(t, err)

		assert.Equal(t, "Клуб любителей котов", chat.Name)
		require.Len(t, chat.Messages, 8)

		assert.Equal(t, "service", chat.Messages[0].Type)

		first := chat.Messages[1]
		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, domain.MessageTypeMessage, first.Type)
		require.NotNil(t, first.From)
		assert.Equal(t, "Анна", *first.From)
		assert.Equal(t, "2023-01-01T10:00:00+03:00", first.Date)
		assert.Equal(t, domain.PlainText("Привет,\nкот!"), first.Text)

		joined := chat.Messages[2]
		require.NotNil(t, joined.From)
		assert.Equal(t, "Анна", *joined.From)
		assert.Equal(t, domain.TextAbsent, joined.Text.Kind)
		assert.JSONEq(t, `"photos/photo_1.jpg"`, string(joined.Photo))

		third := chat.Messages[4]
		assert.Equal(t, "2023-01-02T23:15:00", third.Date)
		assert.Equal(t, domain.PlainText("Держите ссылку"), third.Text)
		assert.NotEmpty(t, third.File)

		gif := chat.Messages[5]
		assert.Equal(t, "animation", gif.MediaType)
		assert.JSONEq(t, `"video_files/anim.mp4"`, string(gif.File))

		video := chat.Messages[6]
		require.NotNil(t, video.From)
		assert.Equal(t, "Борис", *video.From)
		assert.Equal(t, "video_file", video.MediaType)
		assert.JSONEq(t, `"video_files/cat.mp4"`, string(video.File))

		assert.Equal(t, "voice_message", chat.Messages[7].MediaType)
		assert.NotEmpty(t, chat.Messages[7].File)
	})

	t.Run("Нераспознанная дата сохраняется как есть", func(t *testing.T) {
		assert.Equal(t, "вчера", convertHTMLDate("вчера"))
	})

	t.Run("Страница без сообщений", func(t *testing.T) {
		chat, err := NewHtmlParser().Parse([]byte(`<html><body></body></html>`))
		require.NoError(t, err)
		assert.Empty(t, chat.Messages)
	})
}

func TestHtmlAndJsonGiveSameDataset(t *testing.T) {
	const jsonExport = `{
		"name": "Клуб любителей котов",
		"messages": [
			{"id": -1, "type": "service", "date": "2023-01-01T00:00:00"},
			{"id": 1, "type": "message", "date": "2023-01-01T10:00:00+03:00", "from": "Анна", "text": "Привет,\nкот!"},
			{"id": 2, "type": "message", "date": "2023-01-01T10:01:00+03:00", "from": "Анна", "text": "", "photo": "photos/photo_1.jpg"},
			{"id": 3, "type": "service", "date": "2023-01-01T10:02:00+03:00"},
			{"id": 4, "type": "message", "date": "2023-01-02T23:15:00", "from": "Борис", "text": ["Держите ", {"type": "link", "text": "ссылку"}], "file": "files/doc.pdf"},
			{"id": 5, "type": "message", "date": "2023-01-02T23:16:00", "from": "Борис", "text": "", "file": "video_files/anim.mp4", "media_type": "animation", "mime_type": "video/mp4"},
			{"id": 6, "type": "message", "date": "2023-01-02T23:17:00", "from": "Борис", "text": "", "file": "video_files/cat.mp4", "media_type": "video_file", "mime_type": "video/mp4"},
			{"id": 7, "type": "message", "date": "2023-01-02T23:18:00", "from": "Борис", "text": "", "file": "voice_messages/audio_1.ogg", "media_type": "voice_message"}
		]
	}`

	normalizer, err := services.NewNormalizer()
	require.NoError(t, err)

	fromHTML, err := NewHtmlParser().Parse([]byte(sampleHTML))
	require.NoError(t, err)
	fromJSON, err := NewJsonParser().Parse([]byte(jsonExport))
	require.NoError(t, err)

	htmlDataset, err := normalizer.Normalize(fromHTML)
	require.NoError(t, err)
	jsonDataset, err := normalizer.Normalize(fromJSON)
	require.NoError(t, err)

	require.Len(t, htmlDataset.All, len(jsonDataset.All))
	for i := range jsonDataset.All {
		h, j := htmlDataset.All[i], jsonDataset.All[i]
		assert.Equal(t, j.ID, h.ID)
		assert.Equal(t, j.Sender, h.Sender)
		assert.True(t, j.Timestamp.Equal(h.Timestamp))
		assert.Equal(t, j.Text, h.Text)
		assert.Equal(t, j.Media, h.Media)
		assert.Equal(t, j.Length, h.Length)
	}
	assert.Equal(t, domain.MediaFile, htmlDataset.All[3].Media, "GIF с файлом относится к file")
	assert.Equal(t, domain.MediaFile, htmlDataset.All[4].Media)
}

func TestDetect(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		isHTML bool
	}{
		{"JSON", `{"messages": []}`, false},
		{"HTML", `<!DOCTYPE html><html></html>`, true},
		{"HTML с пробелами и BOM", "\xef\xbb\xbf  \n<html></html>", true},
		{"пустой ввод", ``, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, isHTML := Detect([]byte(tc.input)).(*HtmlParser)
			assert.Equal(t, tc.isHTML, isHTML)
		})
	}
}
