// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BoundingBox is an axis-aligned bounding box in world coordinates, using
// the project-wide linear unit. A box with Min == Max on every axis is a
// degenerate point and is legal.
type BoundingBox struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MinZ float64 `json:"min_z" yaml:"min_z"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
	MaxZ float64 `json:"max_z" yaml:"max_z"`
}

// Valid reports whether Min <= Max holds on every axis.
func (b BoundingBox) Valid() bool {
	return b.MinX <= b.MaxX && b.MinY <= b.MaxY && b.MinZ <= b.MaxZ
}

// Intersects reports whether the two boxes overlap or touch on every axis.
// Intervals are closed: boxes that meet exactly at a face, edge, or corner
// intersect.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.MinX <= o.MaxX && b.MaxX >= o.MinX &&
		b.MinY <= o.MaxY && b.MaxY >= o.MinY &&
		b.MinZ <= o.MaxZ && b.MaxZ >= o.MinZ
}

// Contains reports whether the point lies inside or on the boundary of the box.
func (b BoundingBox) Contains(x, y, z float64) bool {
	return b.MinX <= x && x <= b.MaxX &&
		b.MinY <= y && y <= b.MaxY &&
		b.MinZ <= z && z <= b.MaxZ
}

// Centroid returns the midpoint of the box on each axis.
func (b BoundingBox) Centroid() (x, y, z float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2, (b.MinZ + b.MaxZ) / 2
}

// Expand returns a copy of the box grown by d on every side of every axis.
// A negative d shrinks the box; the caller is responsible for keeping it valid.
func (b BoundingBox) Expand(d float64) BoundingBox {
	return BoundingBox{
		MinX: b.MinX - d, MinY: b.MinY - d, MinZ: b.MinZ - d,
		MaxX: b.MaxX + d, MaxY: b.MaxY + d, MaxZ: b.MaxZ + d,
	}
}

// BoxFromCorners returns the bounding box spanned by two arbitrary corner
// points, ordering each axis so the result is valid.
func BoxFromCorners(a, b [3]float64) BoundingBox {
	box := BoundingBox{
		MinX: a[0], MinY: a[1], MinZ: a[2],
		MaxX: b[0], MaxY: b[1], MaxZ: b[2],
	}
	if box.MinX > box.MaxX {
		box.MinX, box.MaxX = box.MaxX, box.MinX
	}
	if box.MinY > box.MaxY {
		box.MinY, box.MaxY = box.MaxY, box.MinY
	}
	if box.MinZ > box.MaxZ {
		box.MinZ, box.MaxZ = box.MaxZ, box.MinZ
	}
	return box
}
