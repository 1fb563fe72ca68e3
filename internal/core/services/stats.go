package services

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/shopspring/decimal"

	"telegram-chat-stats/internal/domain"
)

// percentPlaces - число знаков после запятой в процентах и средних.
const percentPlaces = 2

// TopSenders возвращает n самых активных авторов. При равенстве раньше идет
// автор, написавший первым. n <= 0 - все авторы.
func TopSenders(messages []domain.NormalizedMessage, n int) []domain.SenderCount {
	index := make(map[string]int)
	counts := make([]domain.SenderCount, 0)
	for _, m := range messages {
		if i, ok := index[m.Sender]; ok {
			counts[i].Count++
			continue
		}
		index[m.Sender] = len(counts)
		counts = append(counts, domain.SenderCount{Sender: m.Sender, Count: 1})
	}

	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})
	if n > 0 && n < len(counts) {
		counts = counts[:n]
	}
	return counts
}

// DailyCounts возвращает число сообщений по календарным дням в порядке возрастания даты.
func DailyCounts(messages []domain.NormalizedMessage) []domain.DayCount {
	index := make(map[domain.Date]int)
	days := make([]domain.DayCount, 0)
	for _, m := range messages {
		if i, ok := index[m.Day]; ok {
			days[i].Count++
			continue
		}
		index[m.Day] = len(days)
		days = append(days, domain.DayCount{Day: m.Day, Count: 1})
	}

	sort.Slice(days, func(a, b int) bool {
		return days[a].Day.Before(days[b].Day)
	})
	return days
}

// WeekdayCounts возвращает число сообщений по дням недели с понедельника по воскресенье.
// Дни без сообщений присутствуют с нулем.
func WeekdayCounts(messages []domain.NormalizedMessage) []domain.WeekdayCount {
	var counts [7]int
	for _, m := range messages {
		counts[domain.WeekdayIndex(m.Weekday)]++
	}

	result := make([]domain.WeekdayCount, len(domain.WeekdayOrder))
	for i, wd := range domain.WeekdayOrder {
		result[i] = domain.WeekdayCount{Weekday: wd.String(), Count: counts[i]}
	}
	return result
}

// HourlyCounts возвращает число сообщений по часам суток. В результат попадают
// только часы, в которые были сообщения.
func HourlyCounts(messages []domain.NormalizedMessage) []domain.HourCount {
	var counts [24]int
	for _, m := range messages {
		counts[m.Hour]++
	}

	result := make([]domain.HourCount, 0, 24)
	for hour, c := range counts {
		if c > 0 {
			result = append(result, domain.HourCount{Hour: hour, Count: c})
		}
	}
	return result
}

// HourSenderHeatmap строит матрицу активности: 24 часа на отсортированный список авторов.
func HourSenderHeatmap(messages []domain.NormalizedMessage) domain.Heatmap {
	ds := domain.Dataset{Visible: messages}
	senders := ds.Senders()
	column := make(map[string]int, len(senders))
	for i, s := range senders {
		column[s] = i
	}

	heatmap := domain.Heatmap{Senders: senders}
	for hour := range heatmap.Counts {
		heatmap.Counts[hour] = make([]int, len(senders))
	}
	for _, m := range messages {
		heatmap.Counts[m.Hour][column[m.Sender]]++
	}
	return heatmap
}

// mediaOrder задает порядок типов вложений при равных значениях.
var mediaOrder = []domain.MediaKind{domain.MediaPhoto, domain.MediaFile, domain.MediaAnimation}

// MediaCounts возвращает число сообщений по типам вложений, по убыванию.
// Сообщения без вложений не учитываются.
func MediaCounts(messages []domain.NormalizedMessage) []domain.MediaCount {
	counts := make(map[domain.MediaKind]int)
	for _, m := range messages {
		if m.Media.HasMedia() {
			counts[m.Media]++
		}
	}

	result := make([]domain.MediaCount, 0, len(counts))
	for _, kind := range mediaOrder {
		if c := counts[kind]; c > 0 {
			result = append(result, domain.MediaCount{Kind: kind, Label: kind.Label(), Count: c})
		}
	}
	sort.SliceStable(result, func(a, b int) bool {
		return result[a].Count > result[b].Count
	})
	return result
}

// AverageLengthBySender возвращает среднюю длину сообщения для n авторов
// с самыми длинными сообщениями. При равенстве авторы идут по алфавиту.
func AverageLengthBySender(messages []domain.NormalizedMessage, n int) []domain.SenderLength {
	type acc struct {
		total int
		count int
	}
	totals := make(map[string]*acc)
	for _, m := range messages {
		a, ok := totals[m.Sender]
		if !ok {
			a = &acc{}
			totals[m.Sender] = a
		}
		a.total += m.Length
		a.count++
	}

	ds := domain.Dataset{Visible: messages}
	result := make([]domain.SenderLength, 0, len(totals))
	for _, sender := range ds.Senders() {
		a := totals[sender]
		result = append(result, domain.SenderLength{
			Sender:  sender,
			Average: float64(a.total) / float64(a.count),
		})
	}

	sort.SliceStable(result, func(a, b int) bool {
		return result[a].Average > result[b].Average
	})
	if n > 0 && n < len(result) {
		result = result[:n]
	}
	return result
}

// LengthHistogram делит диапазон длин сообщений на bins равных интервалов.
// Последний интервал включает правую границу. Если все длины одинаковы,
// диапазон расширяется на 0.5 в обе стороны.
func LengthHistogram(messages []domain.NormalizedMessage, bins int) []domain.HistogramBin {
	if len(messages) == 0 || bins <= 0 {
		return []domain.HistogramBin{}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, m := range messages {
		l := float64(m.Length)
		lo = math.Min(lo, l)
		hi = math.Max(hi, l)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)
	result := make([]domain.HistogramBin, bins)
	for i := range result {
		result[i].From = lo + float64(i)*width
		result[i].To = lo + float64(i+1)*width
	}
	result[bins-1].To = hi

	for _, m := range messages {
		l := float64(m.Length)
		i := int((l - lo) / width)
		if i >= bins || l == hi {
			i = bins - 1
		}
		result[i].Count++
	}
	return result
}

// MediaShare считает долю сообщений с вложениями в процентах.
func MediaShare(messages []domain.NormalizedMessage) domain.MediaShare {
	share := domain.MediaShare{Total: len(messages), Percent: decimal.Zero}
	for _, m := range messages {
		if m.Media.HasMedia() {
			share.WithMedia++
		}
	}
	if share.Total == 0 {
		return share
	}

	share.Percent = decimal.NewFromInt(int64(share.WithMedia)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(share.Total))).
		Round(percentPlaces)
	return share
}

// AverageMessagesPerDay возвращает среднее число сообщений в день по дням,
// в которые были сообщения.
func AverageMessagesPerDay(messages []domain.NormalizedMessage) decimal.Decimal {
	days := DailyCounts(messages)
	if len(days) == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(len(messages))).
		Div(decimal.NewFromInt(int64(len(days)))).
		Round(percentPlaces)
}

// TopBurstDays возвращает n самых активных дней. При равенстве раньше идет более ранний день.
func TopBurstDays(messages []domain.NormalizedMessage, n int) []domain.DayCount {
	days := DailyCounts(messages)
	sort.SliceStable(days, func(a, b int) bool {
		return days[a].Count > days[b].Count
	})
	if n > 0 && n < len(days) {
		days = days[:n]
	}
	return days
}

// LongestMessage возвращает первое сообщение максимальной длины.
func LongestMessage(messages []domain.NormalizedMessage) domain.MessagePick {
	if len(messages) == 0 {
		return domain.MessagePick{Warning: domain.NewEmptyScopeWarning(domain.WholeChat.String(), domain.NoMessagesScope)}
	}

	best := 0
	for i, m := range messages {
		if m.Length > messages[best].Length {
			best = i
		}
	}
	picked := messages[best]
	return domain.MessagePick{Message: &picked}
}

// RandomMessageOn выбирает случайное сообщение за указанный день.
// rng == nil - используется общий генератор пакета math/rand/v2.
func RandomMessageOn(messages []domain.NormalizedMessage, day domain.Date, rng *rand.Rand) domain.MessagePick {
	candidates := make([]int, 0)
	for i, m := range messages {
		if m.Day == day {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return domain.MessagePick{Warning: domain.NewEmptyScopeWarning(day.String(), domain.NoMessagesOnDate)}
	}

	var n int
	if rng != nil {
		n = rng.IntN(len(candidates))
	} else {
		n = rand.IntN(len(candidates))
	}
	picked := messages[candidates[n]]
	return domain.MessagePick{Message: &picked}
}

// DateRange возвращает первый и последний день переписки. ok == false для пустого набора.
func DateRange(messages []domain.NormalizedMessage) (first, last domain.Date, ok bool) {
	for i, m := range messages {
		if i == 0 || m.Day.Before(first) {
			first = m.Day
		}
		if i == 0 || m.Day.After(last) {
			last = m.Day
		}
	}
	return first, last, len(messages) > 0
}
