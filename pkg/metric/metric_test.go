package metric_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/appstore/pkg/metric"
)

func TestMiddleware(t *testing.T) {
	router := chi.NewRouter()
	router.Use(metric.Middleware)
	router.Get("/apps/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Handle("/metrics", promhttp.Handler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/apps/123", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	metric.Downloads.Inc()

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `appstore_http_requests_total{method="GET",path="/apps/{id}",status="404"} 1`), body)
	assert.Contains(t, body, "appstore_app_downloads_total")
}
