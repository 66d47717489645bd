package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCheck struct{ err error }

func (s stubCheck) HealthCheck(context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		checks     map[string]HealthChecker
		wantStatus int
		wantFailed []string
	}{
		{
			name:       "all checks pass",
			checks:     map[string]HealthChecker{"database": stubCheck{}, "leaderboard": stubCheck{}},
			wantStatus: http.StatusOK,
		},
		{
			name: "database down",
			checks: map[string]HealthChecker{
				"database":    stubCheck{err: errors.New("connection refused")},
				"leaderboard": stubCheck{},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantFailed: []string{"database"},
		},
		{
			name:       "ping func adapter",
			checks:     map[string]HealthChecker{"database": pingChecker{ping: func(context.Context) error { return errors.New("down") }}},
			wantStatus: http.StatusServiceUnavailable,
			wantFailed: []string{"database"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HealthHandler(tt.checks, logger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Status string            `json:"status"`
				Failed map[string]string `json:"failed"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ok", body.Status)
				return
			}
			assert.Equal(t, "unavailable", body.Status)
			for _, name := range tt.wantFailed {
				assert.Contains(t, body.Failed, name)
			}
		})
	}
}

func TestNewRouter_CORS(t *testing.T) {
	r := newRouter([]string{"https://play.example.com"})
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://play.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://play.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_RecoversPanics(t *testing.T) {
	r := newRouter(nil)
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
