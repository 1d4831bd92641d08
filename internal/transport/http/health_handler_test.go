package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consolidator/internal/services"
)

func newHealthRouter(ready func() bool) chi.Router {
	h := NewHealthHandler(services.NewHealthService("1.0.0-test", ready, quietLogger()), quietLogger())
	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		ready      func() bool
		wantStatus int
		wantField  string
		wantValue  string
	}{
		{"health", "/api/health", nil, http.StatusOK, "status", "ok"},
		{"live", "/api/health/live", nil, http.StatusOK, "status", "alive"},
		{"ready", "/api/health/ready", nil, http.StatusOK, "status", "ready"},
		{"not ready", "/api/health/ready", func() bool { return false }, http.StatusServiceUnavailable, "status", "not_ready"},
		{"version", "/api/version", nil, http.StatusOK, "version", "1.0.0-test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHealthRouter(tt.ready).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantValue, body[tt.wantField])
		})
	}
}
