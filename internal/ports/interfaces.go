package ports

import (
	"telegram-chat-stats/internal/domain"
)

// DataSource определяет интерфейс для получения исходных данных чата.
type DataSource interface {
	// Fetch загружает данные из источника и возвращает их в виде байтового среза.
	Fetch() ([]byte, error)
}

// Parser определяет интерфейс для парсинга данных чата.
type Parser interface {
	// Parse преобразует сырые данные в структурированную модель чата.
	Parse(data []byte) (*domain.ExportedChat, error)
}

// Normalizer превращает разобранный экспорт в нормализованный набор сообщений.
type Normalizer interface {
	Normalize(chat *domain.ExportedChat) (*domain.Dataset, error)
}

// TextAnalyzer строит частотные рейтинги слов для области анализа.
type TextAnalyzer interface {
	WordFrequencies(messages []domain.NormalizedMessage, scope domain.Scope, topN int) domain.WordRanking
	CloudWeights(messages []domain.NormalizedMessage, scope domain.Scope, maxWords int) domain.WordCloud
}

// Exporter определяет интерфейс для вывода результата.
type Exporter interface {
	// Export принимает готовый отчет и выводит его.
	Export(report *domain.Report) error
}
