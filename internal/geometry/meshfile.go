// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package geometry

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// MeshFileProvider reads pre-triangulated mesh dump files: a YAML document
// with an elements list, each carrying an internal id, an optional guid, a
// type tag, and a flat world-coordinate vertex list. Mesh dumps are produced
// upstream by whatever toolkit triangulated the source model, so the index
// never parses the source format itself.
type MeshFileProvider struct{}

// meshFile is the on-disk document structure.
type meshFile struct {
	Elements []meshElement `yaml:"elements"`
}

type meshElement struct {
	ID    int64     `yaml:"id"`
	GUID  string    `yaml:"guid,omitempty"`
	Class string    `yaml:"class"`
	Verts []float64 `yaml:"verts"`
}

// Open parses the mesh dump at path and returns an iterator over its
// elements.
func (MeshFileProvider) Open(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}

	var doc meshFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing mesh file %s: %w", path, err)
	}

	return &meshModel{elements: doc.Elements}, nil
}

type meshModel struct {
	elements []meshElement
	pos      int
}

func (m *meshModel) Next() (Element, bool, error) {
	if m.pos >= len(m.elements) {
		return Element{}, false, nil
	}
	e := m.elements[m.pos]
	m.pos++
	return Element{
		NativeID: e.ID,
		GlobalID: e.GUID,
		TypeTag:  e.Class,
		Verts:    e.Verts,
	}, true, nil
}

func (m *meshModel) Close() error {
	m.elements = nil
	return nil
}
