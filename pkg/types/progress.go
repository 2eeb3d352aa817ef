// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RunStatus is the lifecycle state of an extraction run.
type RunStatus string

const (
	RunStarting   RunStatus = "starting"
	RunInProgress RunStatus = "in_progress"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// FileStat records per-file extraction statistics.
type FileStat struct {
	Filename        string  `json:"filename"`
	Discipline      string  `json:"discipline"`
	Elements        int     `json:"elements"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// ProgressReport is the run-status snapshot written to the progress file.
// The file is overwritten in place on every update; it is a snapshot, not
// an append log. The Status field is the single source of truth for whether
// a run's output is safe to use.
type ProgressReport struct {
	SchemaVersion  string     `json:"schema_version"`
	RunID          string     `json:"run_id"`
	Timestamp      string     `json:"timestamp"`
	Status         RunStatus  `json:"status"`
	FilesProcessed int        `json:"files_processed"`
	TotalElements  int64      `json:"total_elements"`
	ElapsedSeconds float64    `json:"elapsed_seconds"`
	Files          []FileStat `json:"files"`

	// Set on completion only.
	TotalFiles           int     `json:"total_files,omitempty"`
	TotalDurationSeconds float64 `json:"total_duration_seconds,omitempty"`
	DatabasePath         string  `json:"database_path,omitempty"`
	DatabaseSizeMB       float64 `json:"database_size_mb,omitempty"`
}
