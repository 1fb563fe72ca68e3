package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/tasks/{taskID}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	baseOK := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/tasks/{taskID}", "200"))
	base404 := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/missing", "404"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/abc", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	t.Run("Путь берется из шаблона маршрута", func(t *testing.T) {
		got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/tasks/{taskID}", "200"))
		assert.Equal(t, baseOK+1, got)
	})

	t.Run("Для ненайденного маршрута используется исходный путь", func(t *testing.T) {
		got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "/missing", "404"))
		assert.Equal(t, base404+1, got)
	})

	t.Run("После запросов нет активных", func(t *testing.T) {
		assert.Equal(t, 0.0, testutil.ToFloat64(httpInflight))
	})
}

func TestObserveProcessing(t *testing.T) {
	baseHit := testutil.ToFloat64(chatsProcessed.WithLabelValues(OutcomeCacheHit))
	baseMessages := testutil.ToFloat64(messagesNormalized)

	ObserveProcessing(OutcomeCacheHit, 0, time.Millisecond)
	ObserveProcessing(OutcomeSuccess, 42, time.Second)

	assert.Equal(t, baseHit+1, testutil.ToFloat64(chatsProcessed.WithLabelValues(OutcomeCacheHit)))
	assert.Equal(t, baseMessages+42, testutil.ToFloat64(messagesNormalized))

	TaskStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(tasksActive))
	TaskFinished()
	assert.Equal(t, 0.0, testutil.ToFloat64(tasksActive))
}
