// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geometry defines the contract between the extraction pipeline and
// a geometry provider: for each element in a model file, yield a stable
// identifier, a semantic type tag, and a world-coordinate vertex list.
// Providers must open models with world-coordinate semantics; no local
// transforms survive into the vertex lists.
package geometry

import "github.com/pdiddy/federation-index/pkg/types"

// Element is one model element as produced by a provider. Verts is a flat
// list of xyz triples in world coordinates; a trailing partial triple is
// ignored by consumers.
type Element struct {
	// NativeID is the provider's internal numeric id, used to synthesize
	// a GUID when GlobalID is empty.
	NativeID int64

	// GlobalID is the element's native stable identifier, if any.
	GlobalID string

	// TypeTag is the element's semantic category (e.g. "IfcWall").
	TypeTag string

	// Verts is the flat world-coordinate vertex list: x0,y0,z0,x1,y1,z1,...
	Verts []float64
}

// Model iterates the elements of one opened discipline file.
type Model interface {
	// Next returns the next element. ok is false once the model is
	// exhausted; err reports an iterator failure, which ends iteration.
	Next() (el Element, ok bool, err error)

	// Close releases the model's resources.
	Close() error
}

// Provider opens discipline files for element iteration. Each
// implementation wraps one model format.
type Provider interface {
	Open(path string) (Model, error)
}

// ComputeAABB returns the axis-aligned bounding box of a flat xyz vertex
// list. ok is false when the list holds no complete vertex; such elements
// yield no record.
func ComputeAABB(verts []float64) (box types.BoundingBox, ok bool) {
	n := len(verts) / 3 * 3
	if n == 0 {
		return types.BoundingBox{}, false
	}

	box = types.BoundingBox{
		MinX: verts[0], MinY: verts[1], MinZ: verts[2],
		MaxX: verts[0], MaxY: verts[1], MaxZ: verts[2],
	}
	for i := 3; i < n; i += 3 {
		x, y, z := verts[i], verts[i+1], verts[i+2]
		if x < box.MinX {
			box.MinX = x
		}
		if x > box.MaxX {
			box.MaxX = x
		}
		if y < box.MinY {
			box.MinY = y
		}
		if y > box.MaxY {
			box.MaxY = y
		}
		if z < box.MinZ {
			box.MinZ = z
		}
		if z > box.MaxZ {
			box.MaxZ = z
		}
	}
	return box, true
}
