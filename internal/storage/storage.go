package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

const filenameTimestamp = "2006-01-02_15-04-05"

// RunWriter appends products to a newline-delimited JSON artifact, one file
// per run. Each line is a complete product document, so a run killed halfway
// through still leaves every product written so far intact.
type RunWriter struct {
	mu     sync.Mutex
	file   *os.File
	enc    *json.Encoder
	path   string
	count  int
	logger *slog.Logger
}

// NewRunWriter creates the run's output file in dir, named with the given
// prefix and the run's start timestamp.
func NewRunWriter(dir, prefix string) (*RunWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json", prefix, time.Now().Format(filenameTimestamp))
	path := filepath.Join(dir, name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	logger := slog.Default().With("component", "storage")
	logger.Info("output file created", "path", path)

	return &RunWriter{
		file:   file,
		enc:    json.NewEncoder(file),
		path:   path,
		logger: logger,
	}, nil
}

func (w *RunWriter) Write(p *models.Product) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("writer is closed")
	}

	if err := w.enc.Encode(p); err != nil {
		return fmt.Errorf("failed to write product %s: %w", p.ID, err)
	}

	w.count++
	return nil
}

func (w *RunWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

func (w *RunWriter) Path() string {
	return w.path
}

func (w *RunWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil
	if err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	w.logger.Info("output file closed", "path", w.path, "products", w.count)
	return nil
}
