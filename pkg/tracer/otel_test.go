package tracer_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/appstore/pkg/tracer"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	t.Run("invalid config pass through", func(t *testing.T) {
		h := tracer.Middleware(tracer.MiddlewareConfig{}, next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apps", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})

	t.Run("recorded response is copied", func(t *testing.T) {
		h := tracer.Middleware(tracer.MiddlewareConfig{
			TracerName:     "test",
			ServiceName:    "appstore",
			TracerProvider: trace.NewNoopTracerProvider(),
			TextPropagator: propagation.TraceContext{},
		}, next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apps", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "yes", rec.Header().Get("X-Test"))
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
	})
}
