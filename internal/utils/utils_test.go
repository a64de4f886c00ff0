package utils

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := NewBackoff(time.Millisecond, 3).Do(context.Background(), func(i int) error {
		calls++
		if i < 2 {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestBackoffReturnsLastError(t *testing.T) {
	calls := 0
	err := NewBackoff(time.Millisecond, 2).Do(context.Background(), func(i int) error {
		calls++
		return errors.New("attempt failed")
	})
	assert.EqualError(t, err, "attempt failed")
	assert.Equal(t, 3, calls)
}

func TestBackoffStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := NewBackoff(time.Hour, 5).Do(ctx, func(int) error {
		calls++
		return errors.New("nope")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRequestIDAndLogger(t *testing.T) {
	var logs strings.Builder
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	var seen string
	h := RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, logs.String(), `"status":418`)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "given")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "given", seen)
}

func TestInstrumentUsesRoutePattern(t *testing.T) {
	tel := NewTelemetry()
	mux := chi.NewRouter()
	mux.Use(Instrument(tel))
	mux.Get("/analysis/{section}", func(w http.ResponseWriter, r *http.Request) {})
	mux.Get("/metrics", tel.Handler().ServeHTTP)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/analysis/forms", nil))
	tel.CacheLookup(true)
	tel.Analysis(false)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `http_requests_total{method="GET",route="/analysis/{section}",status="200"} 1`)
	assert.Contains(t, string(body), `analysis_cache_lookups_total{result="hit"} 1`)
	assert.Contains(t, string(body), `analyses_generated_total{outcome="error"} 1`)
}
