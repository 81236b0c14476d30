package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bestydev/woolworths-catalog-scraper/internal/scraper"
)

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Runner executes one full catalog sweep.
type Runner interface {
	Run(ctx context.Context) (scraper.RunSummary, error)
}

// Run is the record of one sweep, live or finished.
type Run struct {
	ID          string              `json:"id"`
	Status      RunStatus           `json:"status"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Summary     *scraper.RunSummary `json:"summary,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// Stats aggregates across all runs the manager has seen.
type Stats struct {
	TotalRuns     int `json:"total_runs"`
	RunningRuns   int `json:"running_runs"`
	CompletedRuns int `json:"completed_runs"`
	FailedRuns    int `json:"failed_runs"`
	TotalProducts int `json:"total_products"`
	TotalFailed   int `json:"total_failed"`
}

// Manager tracks catalog runs. The browser session is single-threaded, so at
// most one run may be active at a time; starting a second is rejected.
type Manager struct {
	mu     sync.Mutex
	runs   map[string]*Run
	active string
	runner Runner
	logger *slog.Logger
}

func NewManager(runner Runner) *Manager {
	return &Manager{
		runs:   make(map[string]*Run),
		runner: runner,
		logger: slog.Default().With("component", "job_manager"),
	}
}

// StartRun launches a sweep on its own goroutine and returns immediately.
func (m *Manager) StartRun(ctx context.Context) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != "" {
		return nil, fmt.Errorf("run %s is already in progress", m.active)
	}

	run := &Run{
		ID:        uuid.New().String(),
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
	m.runs[run.ID] = run
	m.active = run.ID

	m.logger.Info("run started", "id", run.ID)

	go m.execute(ctx, run.ID)

	return m.snapshot(run), nil
}

func (m *Manager) execute(ctx context.Context, runID string) {
	summary, err := m.runner.Run(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	run := m.runs[runID]
	now := time.Now()
	run.CompletedAt = &now
	run.Summary = &summary

	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
		m.logger.Error("run failed", "id", runID, "error", err)
	} else {
		run.Status = StatusCompleted
		m.logger.Info("run completed", "id", runID, "products", summary.Products)
	}

	m.active = ""
}

func (m *Manager) GetRun(runID string) (*Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, false
	}
	return m.snapshot(run), true
}

// ListRuns returns all runs, newest first.
func (m *Manager) ListRuns() []*Run {
	m.mu.Lock()
	defer m.mu.Unlock()

	runs := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, m.snapshot(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs
}

func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := Stats{TotalRuns: len(m.runs)}
	for _, run := range m.runs {
		switch run.Status {
		case StatusRunning:
			stats.RunningRuns++
		case StatusCompleted:
			stats.CompletedRuns++
		case StatusFailed:
			stats.FailedRuns++
		}
		if run.Summary != nil {
			stats.TotalProducts += run.Summary.Products
			stats.TotalFailed += run.Summary.Failed
		}
	}
	return stats
}

// snapshot copies a run so callers never share the mutable record.
func (m *Manager) snapshot(run *Run) *Run {
	copied := *run
	if run.Summary != nil {
		summary := *run.Summary
		copied.Summary = &summary
	}
	return &copied
}
