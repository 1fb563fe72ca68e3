package domain

import "github.com/shopspring/decimal"

// Тексты для пустых областей анализа.
const (
	NoMessagesOnDate = "В этот день сообщений нет."
	NoMessagesScope  = "Нет сообщений для выбранной области."
	NoCloudData      = "Нет данных для облака слов."
)

// SenderCount - число сообщений автора.
type SenderCount struct {
	Sender string `json:"sender"`
	Count  int    `json:"count"`
}

// DayCount - число сообщений за календарный день.
type DayCount struct {
	Day   Date `json:"day"`
	Count int  `json:"count"`
}

// WeekdayCount - число сообщений за день недели.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// HourCount - число сообщений за час суток.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Heatmap - активность по часам (строки) и авторам (столбцы).
type Heatmap struct {
	Senders []string `json:"senders"`
	// Counts[hour][i] - число сообщений автора Senders[i] в час hour.
	Counts [24][]int `json:"counts"`
}

// MediaCount - число сообщений с вложением данного типа.
type MediaCount struct {
	Kind  MediaKind `json:"kind"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// SenderLength - средняя длина сообщения автора в символах.
type SenderLength struct {
	Sender  string  `json:"sender"`
	Average float64 `json:"average"`
}

// HistogramBin - интервал гистограммы длин сообщений.
type HistogramBin struct {
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Count int     `json:"count"`
}

// MediaShare - доля сообщений с вложениями.
type MediaShare struct {
	WithMedia int             `json:"with_media"`
	Total     int             `json:"total"`
	Percent   decimal.Decimal `json:"percent"`
}

// WeightedWord - слово облака с весом в диапазоне (0, 1].
type WeightedWord struct {
	Word   string  `json:"word"`
	Count  int     `json:"count"`
	Weight float64 `json:"weight"`
}

// WordCloud - входные данные для отрисовки облака слов.
type WordCloud struct {
	Words   []WeightedWord     `json:"words"`
	Warning *EmptyScopeWarning `json:"warning,omitempty"`
}

// MessagePick - выбранное сообщение или признак отсутствия данных.
type MessagePick struct {
	Message *NormalizedMessage `json:"message,omitempty"`
	Warning *EmptyScopeWarning `json:"warning,omitempty"`
}

// NoData сообщает, что выбрать было не из чего.
func (p MessagePick) NoData() bool {
	return p.Message == nil
}

// Report - полный набор статистики по одному чату.
type Report struct {
	ChatName        string          `json:"chat_name"`
	TotalMessages   int             `json:"total_messages"`
	VisibleMessages int             `json:"visible_messages"`
	Skipped         int             `json:"skipped"`
	FirstDay        *Date           `json:"first_day,omitempty"`
	LastDay         *Date           `json:"last_day,omitempty"`
	Senders         []string        `json:"senders"`
	TopSenders      []SenderCount   `json:"top_senders"`
	DailyCounts     []DayCount      `json:"daily_counts"`
	WeekdayCounts   []WeekdayCount  `json:"weekday_counts"`
	HourlyCounts    []HourCount     `json:"hourly_counts"`
	Heatmap         Heatmap         `json:"heatmap"`
	MediaCounts     []MediaCount    `json:"media_counts"`
	AverageLengths  []SenderLength  `json:"average_lengths"`
	LengthHistogram []HistogramBin  `json:"length_histogram"`
	MediaShare      MediaShare      `json:"media_share"`
	AveragePerDay   decimal.Decimal `json:"average_per_day"`
	BurstDays       []DayCount      `json:"burst_days"`
	Longest         MessagePick     `json:"longest"`
	TopWords        WordRanking     `json:"top_words"`
	Cloud           WordCloud       `json:"cloud"`
}
