package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"delegation-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type pingRoutes struct{}

func (pingRoutes) Routes(r chi.Router) {
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "router_test_total", Help: "test"}))
	h := New(pingRoutes{}, reg, logger.NewNop())

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/health", wantStatus: http.StatusOK, wantBody: "Healthy"},
		{path: "/api/ping", wantStatus: http.StatusOK, wantBody: "pong"},
		{path: "/metrics", wantStatus: http.StatusOK, wantBody: "router_test_total"},
		{path: "/api/panic", wantStatus: http.StatusInternalServerError},
		{path: "/api/missing", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
