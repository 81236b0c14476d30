package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bestydev/woolworths-catalog-scraper/internal/jobs"
)

type Handlers struct {
	jobs   *jobs.Manager
	runCtx context.Context
	logger *slog.Logger
}

// NewHandlers wires the run registry behind the HTTP surface. runCtx bounds
// the lifetime of runs started over HTTP; it is the server's context, not the
// request's, because a sweep outlives the request that started it.
func NewHandlers(jobs *jobs.Manager, runCtx context.Context) *Handlers {
	return &Handlers{
		jobs:   jobs,
		runCtx: runCtx,
		logger: slog.Default().With("component", "api"),
	}
}

// CreateRun kicks off a full catalog sweep.
func (h *Handlers) CreateRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.jobs.StartRun(h.runCtx)
	if err != nil {
		h.respondError(w, http.StatusConflict, err.Error())
		return
	}

	h.respondJSON(w, http.StatusAccepted, run)
}

// GetRun returns one run by ID.
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if runID == "" {
		h.respondError(w, http.StatusBadRequest, "run ID is required")
		return
	}

	run, ok := h.jobs.GetRun(runID)
	if !ok {
		h.respondError(w, http.StatusNotFound, "run not found")
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

// ListRuns returns all runs, newest first.
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.jobs.ListRuns())
}

// GetStats returns aggregate run statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.jobs.GetStats())
}

// Health is a liveness probe.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
