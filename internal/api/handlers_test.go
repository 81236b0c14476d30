package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestydev/woolworths-catalog-scraper/internal/jobs"
	"github.com/bestydev/woolworths-catalog-scraper/internal/scraper"
)

type instantRunner struct {
	summary scraper.RunSummary
}

func (r *instantRunner) Run(ctx context.Context) (scraper.RunSummary, error) {
	return r.summary, nil
}

func testRouter(t *testing.T) (*chi.Mux, *jobs.Manager) {
	t.Helper()

	manager := jobs.NewManager(&instantRunner{summary: scraper.RunSummary{Products: 5}})
	handlers := NewHandlers(manager, context.Background())

	r := chi.NewRouter()
	r.Get("/health", handlers.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", handlers.CreateRun)
		r.Get("/runs", handlers.ListRuns)
		r.Get("/runs/{runID}", handlers.GetRun)
		r.Get("/stats", handlers.GetStats)
	})

	return r, manager
}

func TestHealth(t *testing.T) {
	router, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateAndGetRun(t *testing.T) {
	router, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var created jobs.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	// The runner finishes immediately; poll until the registry reflects it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+created.ID, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got jobs.Run
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		if got.Status == jobs.StatusCompleted {
			require.NotNil(t, got.Summary)
			assert.Equal(t, 5, got.Summary.Products)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("run never completed")
}

func TestGetRun_NotFound(t *testing.T) {
	router, _ := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRunsAndStats(t *testing.T) {
	router, manager := testRouter(t)

	_, err := manager.StartRun(context.Background())
	require.NoError(t, err)

	// Let the instant runner finish.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && manager.GetStats().CompletedRuns == 0 {
		time.Sleep(5 * time.Millisecond)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var runs []jobs.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Len(t, runs, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats jobs.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalRuns)
}
