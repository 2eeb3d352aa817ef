// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Manifest is the on-disk list of discipline files to extract. The
// discipline hint is optional per entry; files without one get a code
// auto-detected from the filename.
type Manifest struct {
	Files []ManifestEntry `yaml:"files"`
}

// ManifestEntry names one discipline file.
type ManifestEntry struct {
	Path       string `yaml:"path"`
	Discipline string `yaml:"discipline,omitempty"`
}

// LoadManifest reads a YAML manifest and returns the pipeline inputs.
func LoadManifest(path string) ([]Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if len(m.Files) == 0 {
		return nil, fmt.Errorf("manifest %s lists no files", path)
	}

	inputs := make([]Input, 0, len(m.Files))
	for i, entry := range m.Files {
		if entry.Path == "" {
			return nil, fmt.Errorf("manifest %s: entry %d has an empty path", path, i)
		}
		inputs = append(inputs, Input{Path: entry.Path, Discipline: entry.Discipline})
	}
	return inputs, nil
}
