// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress maintains the run-status snapshot of an extraction run.
// The snapshot is serialized as a single JSON document and overwritten in
// place after each file, so an external poller always sees a complete,
// current report rather than an append log.
package progress

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/federation-index/pkg/types"
)

// SchemaVersion marks the report format.
const SchemaVersion = "1.0.0"

const timestampLayout = "2006-01-02 15:04:05"

// Reporter accumulates per-file statistics and writes the snapshot file.
// Safe for concurrent use, though the pipeline processes files one at a
// time.
type Reporter struct {
	path  string
	runID string
	start time.Time
	now   func() time.Time

	mu             sync.Mutex
	filesProcessed int
	totalElements  int64
	files          []types.FileStat
}

// NewReporter creates a reporter writing snapshots to path. Each reporter
// gets a fresh run identifier.
func NewReporter(path string) *Reporter {
	now := time.Now
	return &Reporter{
		path:  path,
		runID: uuid.NewString(),
		start: now(),
		now:   now,
	}
}

// RunID returns the run's identifier, stamped on every snapshot.
func (r *Reporter) RunID() string {
	return r.runID
}

// Start writes the initial "starting" snapshot.
func (r *Reporter) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(r.snapshot(types.RunStarting))
}

// FileDone records one processed file and rewrites the snapshot with
// status "in_progress".
func (r *Reporter) FileDone(filename, discipline string, elements int, duration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.filesProcessed++
	r.totalElements += int64(elements)
	r.files = append(r.files, types.FileStat{
		Filename:        filename,
		Discipline:      discipline,
		Elements:        elements,
		DurationSeconds: round2(duration.Seconds()),
	})

	return r.write(r.snapshot(types.RunInProgress))
}

// Finalize writes the terminal snapshot with the completion fields set and
// returns it. Individual skipped files do not make a run failed; only a
// store-level fatal error does.
func (r *Reporter) Finalize(databasePath string, databaseSizeMB float64, failed bool) (types.ProgressReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := types.RunCompleted
	if failed {
		status = types.RunFailed
	}

	report := r.snapshot(status)
	report.TotalFiles = r.filesProcessed
	report.TotalDurationSeconds = report.ElapsedSeconds
	report.DatabasePath = databasePath
	report.DatabaseSizeMB = round2(databaseSizeMB)

	if err := r.write(report); err != nil {
		return report, err
	}
	return report, nil
}

// snapshot builds the current report. Callers hold r.mu.
func (r *Reporter) snapshot(status types.RunStatus) types.ProgressReport {
	files := r.files
	if files == nil {
		files = []types.FileStat{}
	}
	return types.ProgressReport{
		SchemaVersion:  SchemaVersion,
		RunID:          r.runID,
		Timestamp:      r.now().Format(timestampLayout),
		Status:         status,
		FilesProcessed: r.filesProcessed,
		TotalElements:  r.totalElements,
		ElapsedSeconds: round2(r.now().Sub(r.start).Seconds()),
		Files:          files,
	}
}

// write replaces the snapshot file atomically so a poller never reads a
// torn document.
func (r *Reporter) write(report types.ProgressReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding progress report: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing progress report: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing progress report: %w", err)
	}
	return nil
}

// Read loads a progress snapshot, for out-of-band polling of a run.
func Read(path string) (types.ProgressReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ProgressReport{}, fmt.Errorf("reading progress report: %w", err)
	}
	var report types.ProgressReport
	if err := json.Unmarshal(data, &report); err != nil {
		return types.ProgressReport{}, fmt.Errorf("parsing progress report %s: %w", path, err)
	}
	return report, nil
}

// DefaultPath derives the progress file path from the database path by
// swapping the extension for .json.
func DefaultPath(databasePath string) string {
	ext := filepath.Ext(databasePath)
	return databasePath[:len(databasePath)-len(ext)] + ".json"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
