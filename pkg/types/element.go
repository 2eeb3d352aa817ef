// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the value types shared across the federation index:
// bounding boxes, element records, progress reports, and configuration.
package types

// ElementRecord identifies one federated building element extracted from a
// discipline file. Records are written once per extraction run and replaced
// by GUID on re-extraction, never mutated in place.
type ElementRecord struct {
	// GUID is the element's stable identifier, unique within the store.
	// Elements without a native identifier get a synthetic "NO_GUID_<id>"
	// value derived from the internal numeric id, so re-extraction of the
	// same file is idempotent.
	GUID string `json:"guid" yaml:"guid"`

	// Discipline is the canonical short code (e.g. "ARC", "STR", "ACMV").
	Discipline string `json:"discipline" yaml:"discipline"`

	// TypeTag is the element's semantic category (e.g. "IfcWall", "IfcDuctSegment").
	TypeTag string `json:"type_tag" yaml:"type_tag"`

	// BBox is the element's axis-aligned bounding box in world coordinates.
	BBox BoundingBox `json:"bbox" yaml:"bbox"`

	// SourcePath is the absolute path of the originating file, retained
	// for traceability.
	SourcePath string `json:"source_path" yaml:"source_path"`
}
