// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index answers spatial queries over a federation store. A Spatial
// starts unattached; Build validates the store and caches aggregate
// statistics, Clear detaches again. All query operations require a built
// index and fail with ErrNotLoaded otherwise.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/federation-index/internal/discipline"
	"github.com/pdiddy/federation-index/internal/store"
	"github.com/pdiddy/federation-index/pkg/types"
)

// ErrNotLoaded is returned by query operations issued before Build succeeds.
// It is fatal to that call, not to the index.
var ErrNotLoaded = errors.New("spatial index not loaded: call Build first")

// Statistics is the aggregate snapshot captured at the most recent Build.
// It is not a live recount.
type Statistics struct {
	TotalElements int64    `json:"total_elements"`
	Disciplines   []string `json:"disciplines"`
	TypeTags      []string `json:"type_tags"`
}

// Spatial is the query engine over one federation store. The store's
// per-axis range indexes back every query, so Build performs no bulk load.
type Spatial struct {
	store  *store.Store
	loaded bool
	stats  Statistics
}

// New returns an unattached index over the given store.
func New(s *store.Store) *Spatial {
	return &Spatial{store: s}
}

// Build validates the store and caches statistics: total record count and
// the distinct discipline and type-tag sets. A schema failure propagates as
// the store's *SchemaError.
func (x *Spatial) Build(ctx context.Context) error {
	if err := x.store.Validate(ctx); err != nil {
		return err
	}

	total, err := x.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("loading statistics: %w", err)
	}
	disciplines, err := x.store.Disciplines(ctx)
	if err != nil {
		return fmt.Errorf("loading statistics: %w", err)
	}
	tags, err := x.store.TypeTags(ctx)
	if err != nil {
		return fmt.Errorf("loading statistics: %w", err)
	}

	x.stats = Statistics{
		TotalElements: total,
		Disciplines:   disciplines,
		TypeTags:      tags,
	}
	x.loaded = true
	return nil
}

// Loaded reports whether Build has succeeded since the last Clear.
func (x *Spatial) Loaded() bool {
	return x.loaded
}

// Clear detaches the index and resets statistics. The persistent store is
// untouched.
func (x *Spatial) Clear() {
	x.loaded = false
	x.stats = Statistics{}
}

// Statistics returns the snapshot captured at the most recent Build.
func (x *Spatial) Statistics() Statistics {
	return x.stats
}

// QueryByBox returns every record whose bbox intersects the query box under
// closed-interval AABB intersection; boxes that touch at a face, edge, or
// corner intersect. A degenerate point box is legal and returns all records
// containing that point. Discipline filters are normalized before matching;
// type filters match exactly.
func (x *Spatial) QueryByBox(ctx context.Context, min, max [3]float64, disciplines, typeTags []string) ([]types.ElementRecord, error) {
	if !x.loaded {
		return nil, ErrNotLoaded
	}

	box := types.BoundingBox{
		MinX: min[0], MinY: min[1], MinZ: min[2],
		MaxX: max[0], MaxY: max[1], MaxZ: max[2],
	}
	if !box.Valid() {
		return nil, fmt.Errorf("invalid query box: min exceeds max on an axis")
	}

	return x.store.QueryBox(ctx, box, discipline.NormalizeAll(disciplines), typeTags)
}

// QueryByPoint returns records at or near a point: the box query over
// point±radius. Radius 0 is an exact-point box query.
func (x *Spatial) QueryByPoint(ctx context.Context, point [3]float64, radius float64, disciplines []string) ([]types.ElementRecord, error) {
	min := [3]float64{point[0] - radius, point[1] - radius, point[2] - radius}
	max := [3]float64{point[0] + radius, point[1] + radius, point[2] + radius}
	return x.QueryByBox(ctx, min, max, disciplines, nil)
}

// QueryCorridor returns records along the segment start..end, using the
// segment's bounding box expanded by buffer on every side of every axis.
// This over-approximates the true corridor; callers needing a tight capsule
// test must post-filter.
func (x *Spatial) QueryCorridor(ctx context.Context, start, end [3]float64, buffer float64, disciplines []string) ([]types.ElementRecord, error) {
	if !x.loaded {
		return nil, ErrNotLoaded
	}

	box := types.BoxFromCorners(start, end).Expand(buffer)
	return x.store.QueryBox(ctx, box, discipline.NormalizeAll(disciplines), nil)
}

// QueryByDiscipline returns all records whose normalized discipline equals
// the normalized input, independent of box.
func (x *Spatial) QueryByDiscipline(ctx context.Context, d string) ([]types.ElementRecord, error) {
	if !x.loaded {
		return nil, ErrNotLoaded
	}
	return x.store.QueryDiscipline(ctx, discipline.Normalize(d))
}

// GetByGUID returns the record with the exact guid, or nil when absent. No
// partial matches.
func (x *Spatial) GetByGUID(ctx context.Context, guid string) (*types.ElementRecord, error) {
	if !x.loaded {
		return nil, ErrNotLoaded
	}
	return x.store.GetByGUID(ctx, guid)
}
