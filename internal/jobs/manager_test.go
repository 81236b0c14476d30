package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestydev/woolworths-catalog-scraper/internal/scraper"
)

// blockingRunner holds its Run open until released, so tests can observe the
// running state deterministically.
type blockingRunner struct {
	release chan struct{}
	summary scraper.RunSummary
	err     error

	mu    sync.Mutex
	calls int
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{release: make(chan struct{})}
}

func (r *blockingRunner) Run(ctx context.Context) (scraper.RunSummary, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()

	<-r.release
	return r.summary, r.err
}

func waitForStatus(t *testing.T, m *Manager, runID string, status RunStatus) *Run {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		run, ok := m.GetRun(runID)
		require.True(t, ok)
		if run.Status == status {
			return run
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run %s never reached status %s", runID, status)
	return nil
}

func TestManager_StartRun(t *testing.T) {
	runner := newBlockingRunner()
	runner.summary = scraper.RunSummary{Products: 42, Created: 40, Updated: 2}
	m := NewManager(runner)

	run, err := m.StartRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)

	close(runner.release)
	done := waitForStatus(t, m, run.ID, StatusCompleted)

	require.NotNil(t, done.Summary)
	assert.Equal(t, 42, done.Summary.Products)
	assert.NotNil(t, done.CompletedAt)
	assert.Empty(t, done.Error)
}

func TestManager_RejectsConcurrentRuns(t *testing.T) {
	runner := newBlockingRunner()
	m := NewManager(runner)

	first, err := m.StartRun(context.Background())
	require.NoError(t, err)

	_, err = m.StartRun(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), first.ID)

	close(runner.release)
	waitForStatus(t, m, first.ID, StatusCompleted)

	// A new run is allowed once the active one finished.
	runner.release = make(chan struct{})
	close(runner.release)
	_, err = m.StartRun(context.Background())
	assert.NoError(t, err)
}

func TestManager_FailedRun(t *testing.T) {
	runner := newBlockingRunner()
	runner.err = errors.New("browser crashed")
	m := NewManager(runner)

	run, err := m.StartRun(context.Background())
	require.NoError(t, err)

	close(runner.release)
	failed := waitForStatus(t, m, run.ID, StatusFailed)
	assert.Equal(t, "browser crashed", failed.Error)
}

func TestManager_StatsAndList(t *testing.T) {
	runner := newBlockingRunner()
	runner.summary = scraper.RunSummary{Products: 10, Failed: 1}
	m := NewManager(runner)

	run, err := m.StartRun(context.Background())
	require.NoError(t, err)
	close(runner.release)
	waitForStatus(t, m, run.ID, StatusCompleted)

	stats := m.GetStats()
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.CompletedRuns)
	assert.Equal(t, 10, stats.TotalProducts)
	assert.Equal(t, 1, stats.TotalFailed)

	runs := m.ListRuns()
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
}

func TestManager_GetRunUnknown(t *testing.T) {
	m := NewManager(newBlockingRunner())

	_, ok := m.GetRun("nope")
	assert.False(t, ok)
}
