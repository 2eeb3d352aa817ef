// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractionConfig holds settings for the bbox extraction stage.
type ExtractionConfig struct {
	// DatabasePath is the destination federation store.
	DatabasePath string `json:"database_path" yaml:"database_path"`

	// ProgressPath is the progress report JSON file. Empty means the
	// database path with a .json extension.
	ProgressPath string `json:"progress_path,omitempty" yaml:"progress_path,omitempty"`

	// Workers is the geometry worker pool size per file. Zero or negative
	// means one worker per available CPU core.
	Workers int `json:"workers" yaml:"workers"`
}

// QueryConfig holds settings for the spatial query stage.
type QueryConfig struct {
	// DatabasePath is the federation store to query.
	DatabasePath string `json:"database_path" yaml:"database_path"`

	// CorridorBuffer is the default corridor expansion distance when a
	// query does not supply one.
	CorridorBuffer float64 `json:"corridor_buffer" yaml:"corridor_buffer"`

	// Limit caps how many records a query returns. Zero or negative means
	// unlimited.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}
