// Package metrics содержит Prometheus-метрики HTTP-слоя и обработки файлов экспорта.
//
// Метка path - шаблон маршрута chi (например, /api/v1/tasks/{taskID}), а не исходный URL.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Исходы обработки файла.
const (
	OutcomeSuccess  = "success"
	OutcomeCacheHit = "cache_hit"
	OutcomeError    = "error"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)

	chatsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatstats_chats_processed_total",
			Help: "Number of processed chat exports by outcome.",
		},
		[]string{"outcome"},
	)

	messagesNormalized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chatstats_messages_normalized_total",
			Help: "Number of normalized messages.",
		},
	)

	processingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatstats_processing_duration_seconds",
			Help:    "Duration of chat export processing in seconds.",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	tasksActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chatstats_tasks_active",
			Help: "Number of tasks currently being processed.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, chatsProcessed, messagesNormalized, processingDuration, tasksActive)
}

// Middleware возвращает chi-middleware, учитывающий запросы, их длительность и число активных.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpReqs.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		httpLat.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// ObserveProcessing учитывает одну обработку файла экспорта.
func ObserveProcessing(outcome string, messages int, duration time.Duration) {
	chatsProcessed.WithLabelValues(outcome).Inc()
	if messages > 0 {
		messagesNormalized.Add(float64(messages))
	}
	processingDuration.Observe(duration.Seconds())
}

// TaskStarted увеличивает число активных задач.
func TaskStarted() {
	tasksActive.Inc()
}

// TaskFinished уменьшает число активных задач.
func TaskFinished() {
	tasksActive.Dec()
}
