package services

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"telegram-chat-stats/internal/core/stopwords"
	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/ports"
)

// MinTokenRunes - минимальная длина слова, участвующего в рейтинге.
const MinTokenRunes = 3

// DefaultCloudMaxWords - число слов в облаке по умолчанию.
const DefaultCloudMaxWords = 200

// wordRE выделяет максимальные последовательности букв любых алфавитов, цифр и "_".
var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize приводит текст к нижнему регистру и разбивает его на слова.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	// Caser хранит состояние, поэтому создается на каждый вызов.
	lower := cases.Lower(language.Russian)
	return wordRE.FindAllString(lower.String(norm.NFC.String(text)), -1)
}

// FilterTokens отбрасывает стоп-слова и слова короче MinTokenRunes символов.
func FilterTokens(tokens []string, stop stopwords.Set) []string {
	filtered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if utf8.RuneCountInString(t) < MinTokenRunes {
			continue
		}
		if stop.Contains(t) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

// Rank считает употребления слов и упорядочивает их по убыванию частоты.
// При равной частоте раньше идет слово, встретившееся первым. topN <= 0 - без ограничения.
func Rank(tokens []string, topN int) []domain.WordFrequency {
	index := make(map[string]int)
	ranking := make([]domain.WordFrequency, 0)
	for _, t := range tokens {
		if i, ok := index[t]; ok {
			ranking[i].Count++
			continue
		}
		index[t] = len(ranking)
		ranking = append(ranking, domain.WordFrequency{Word: t, Count: 1})
	}

	sort.SliceStable(ranking, func(a, b int) bool {
		return ranking[a].Count > ranking[b].Count
	})

	if topN > 0 && topN < len(ranking) {
		ranking = ranking[:topN]
	}
	return ranking
}

// TextAnalyzer реализует интерфейс ports.TextAnalyzer.
type TextAnalyzer struct {
	stopwords stopwords.Set
}

// NewTextAnalyzer создает анализатор с заданным набором стоп-слов.
func NewTextAnalyzer(stop stopwords.Set) ports.TextAnalyzer {
	if stop == nil {
		stop = stopwords.Set{}
	}
	return &TextAnalyzer{stopwords: stop}
}

// ScopeText склеивает тексты сообщений области через один пробел
// и возвращает число сообщений в области.
func ScopeText(messages []domain.NormalizedMessage, scope domain.Scope) (string, int) {
	var sb strings.Builder
	count := 0
	for _, m := range messages {
		if !scope.Includes(m) {
			continue
		}
		if count > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(m.Text)
		count++
	}
	return sb.String(), count
}

// tokens - единый конвейер выделения, фильтрации слов для любой области.
func (a *TextAnalyzer) tokens(messages []domain.NormalizedMessage, scope domain.Scope) ([]string, int) {
	text, count := ScopeText(messages, scope)
	return FilterTokens(Tokenize(text), a.stopwords), count
}

// WordFrequencies строит рейтинг слов для всего чата или одного автора.
func (a *TextAnalyzer) WordFrequencies(messages []domain.NormalizedMessage, scope domain.Scope, topN int) domain.WordRanking {
	tokens, count := a.tokens(messages, scope)
	ranking := domain.WordRanking{Scope: scope, Words: Rank(tokens, topN)}
	if count == 0 {
		ranking.Warning = domain.NewEmptyScopeWarning(scope.String(), domain.NoMessagesScope)
	}
	return ranking
}

// CloudWeights готовит данные облака слов: веса нормированы на самое частое слово.
func (a *TextAnalyzer) CloudWeights(messages []domain.NormalizedMessage, scope domain.Scope, maxWords int) domain.WordCloud {
	if maxWords <= 0 {
		maxWords = DefaultCloudMaxWords
	}
	tokens, _ := a.tokens(messages, scope)
	ranking := Rank(tokens, maxWords)
	if len(ranking) == 0 {
		return domain.WordCloud{
			Words:   []domain.WeightedWord{},
			Warning: domain.NewEmptyScopeWarning(scope.String(), domain.NoCloudData),
		}
	}

	top := float64(ranking[0].Count)
	words := make([]domain.WeightedWord, len(ranking))
	for i, wf := range ranking {
		words[i] = domain.WeightedWord{Word: wf.Word, Count: wf.Count, Weight: float64(wf.Count) / top}
	}
	return domain.WordCloud{Words: words}
}
