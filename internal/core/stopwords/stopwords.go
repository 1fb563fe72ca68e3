// Package stopwords хранит наборы стоп-слов для частотного анализа.
package stopwords

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Set - набор стоп-слов в нижнем регистре.
type Set map[string]struct{}

// FromWords строит набор из списка слов, приводя их к нижнему регистру.
func FromWords(words []string) Set {
	lower := cases.Lower(language.Russian)
	set := make(Set, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		set[lower.String(w)] = struct{}{}
	}
	return set
}

// Contains сообщает, является ли слово стоп-словом. Слово должно быть уже в нижнем регистре.
func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Russian возвращает новый экземпляр встроенного русского набора.
func Russian() Set {
	return FromWords(russian)
}

// Read читает набор из текста: одно слово на строку, строки с # пропускаются.
func Read(r io.Reader) (Set, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("не удалось прочитать стоп-слова: %w", err)
	}
	return FromWords(words), nil
}

// Load читает набор из файла. Пустой путь означает встроенный русский набор.
func Load(path string) (Set, error) {
	if path == "" {
		return Russian(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл стоп-слов %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
