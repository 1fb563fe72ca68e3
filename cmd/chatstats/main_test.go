package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-chat-stats/internal/domain"
)

const exportJSON = `{
	"name": "Кошатники",
	"type": "private_group",
	"messages": [
		{"id": 1, "type": "message", "date": "2023-01-01T10:00:00", "from": "Анна", "text": "кот спит, кот ест"},
		{"id": 2, "type": "service", "date": "2023-01-01T10:01:00"},
		{"id": 3, "type": "message", "date": "2023-01-02T11:00:00", "from": "Борис", "text": "собака лает", "photo": "p.jpg"}
	]
}`

// execute запускает команду в каталоге с файлом экспорта и пустой конфигурацией.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	input := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(input, []byte(exportJSON), 0o644))

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.yml"), "--file", input}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func TestChatstatsCommands(t *testing.T) {
	t.Run("Полный отчет", func(t *testing.T) {
		out, err := execute(t, "report")
		require.NoError(t, err)
		assert.Contains(t, out, "=== Кошатники ===")
		assert.Contains(t, out, "Сообщений: 2 (в анализе 2)")
		assert.Contains(t, out, "Самые употребляемые слова")
	})

	t.Run("Слова одного автора", func(t *testing.T) {
		out, err := execute(t, "words", "--sender", "Анна")
		require.NoError(t, err)
		assert.Contains(t, out, "Частые слова (Анна)")
		assert.Contains(t, out, "кот")
		assert.NotContains(t, out, "собака")
	})

	t.Run("Слова автора без сообщений", func(t *testing.T) {
		out, err := execute(t, "words", "-s", "Вера")
		require.NoError(t, err)
		assert.Contains(t, out, "Частые слова (Вера)")
		assert.NotContains(t, out, "кот")
	})

	t.Run("Облако слов", func(t *testing.T) {
		out, err := execute(t, "cloud")
		require.NoError(t, err)
		assert.Contains(t, out, "1.000")
		assert.Contains(t, out, "кот")
	})

	t.Run("Случайное сообщение за день", func(t *testing.T) {
		out, err := execute(t, "random", "--date", "2023-01-02")
		require.NoError(t, err)
		assert.Contains(t, out, "От: Борис")
		assert.Contains(t, out, "собака лает")
	})

	t.Run("Одинаковое зерно дает одинаковый выбор", func(t *testing.T) {
		first, err := execute(t, "random", "--date", "2023-01-01", "--seed", "42")
		require.NoError(t, err)
		second, err := execute(t, "random", "--date", "2023-01-01", "--seed", "42")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("День без сообщений", func(t *testing.T) {
		out, err := execute(t, "random", "--date", "2023-01-05")
		require.NoError(t, err)
		assert.Contains(t, out, domain.NoMessagesOnDate)
	})

	t.Run("Некорректная дата", func(t *testing.T) {
		_, err := execute(t, "random", "--date", "05.01.2023")
		assert.Error(t, err)
	})

	t.Run("Экспорт в xlsx", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.xlsx")
		out, err := execute(t, "export", "--out", path)
		require.NoError(t, err)
		assert.Contains(t, out, path)
		assert.FileExists(t, path)
	})
}

func TestChatstatsStdin(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(exportJSON))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yml"), "--file", "-", "words", "-s", "Борис"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "собака")
	assert.NotContains(t, out.String(), "кот")
}

func TestChatstatsMissingFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "result.json")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yml"), "--file", missing, "report"})

	err := cmd.Execute()
	require.Error(t, err)

	var missingErr *domain.MissingInputError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, missing, missingErr.Path)
	assert.Equal(t, "Файл 'result.json' не найден ("+missing+").", err.Error())
}
