package services

import (
	"telegram-chat-stats/internal/domain"
)

// MockTextAnalyzer - мок-реализация ports.TextAnalyzer для тестирования
type MockTextAnalyzer struct {
	WordFrequenciesFunc func(msgs []domain.NormalizedMessage, scope domain.Scope, topN int) domain.WordRanking
	CloudWeightsFunc    func(msgs []domain.NormalizedMessage, scope domain.Scope, maxWords int) domain.WordCloud

	Calls []domain.Scope
}

// WordFrequencies реализует интерфейс ports.TextAnalyzer
func (m *MockTextAnalyzer) WordFrequencies(msgs []domain.NormalizedMessage, scope domain.Scope, topN int) domain.WordRanking {
	m.Calls = append(m.Calls, scope)
	if m.WordFrequenciesFunc != nil {
		return m.WordFrequenciesFunc(msgs, scope, topN)
	}
	return domain.WordRanking{Scope: scope}
}

// CloudWeights реализует интерфейс ports.TextAnalyzer
func (m *MockTextAnalyzer) CloudWeights(msgs []domain.NormalizedMessage, scope domain.Scope, maxWords int) domain.WordCloud {
	if m.CloudWeightsFunc != nil {
		return m.CloudWeightsFunc(msgs, scope, maxWords)
	}
	return domain.WordCloud{}
}
