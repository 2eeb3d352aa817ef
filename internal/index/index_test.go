// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pdiddy/federation-index/internal/store"
	"github.com/pdiddy/federation-index/pkg/types"
)

// --- test helpers ---

func testIndex(t *testing.T, records []types.ElementRecord) *Spatial {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "federation.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	if err := s.InitSchema(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertBatch(ctx, records); err != nil {
		t.Fatal(err)
	}

	x := New(s)
	if err := x.Build(ctx); err != nil {
		t.Fatal(err)
	}
	return x
}

// scenarioRecords is the three-element fixture: an architectural volume, a
// distant structural volume, and a mechanical volume nested inside the first.
func scenarioRecords() []types.ElementRecord {
	return []types.ElementRecord{
		{
			GUID: "R1", Discipline: "ARC", TypeTag: "IfcWall",
			BBox:       types.BoundingBox{MinX: 0, MinY: 0, MinZ: 0, MaxX: 10, MaxY: 10, MaxZ: 10},
			SourcePath: "/models/ARC.yaml",
		},
		{
			GUID: "R2", Discipline: "STR", TypeTag: "IfcBeam",
			BBox:       types.BoundingBox{MinX: 20, MinY: 20, MinZ: 20, MaxX: 30, MaxY: 30, MaxZ: 30},
			SourcePath: "/models/STR.yaml",
		},
		{
			GUID: "R3", Discipline: "ACMV", TypeTag: "IfcDuctSegment",
			BBox:       types.BoundingBox{MinX: 5, MinY: 5, MinZ: 5, MaxX: 8, MaxY: 8, MaxZ: 8},
			SourcePath: "/models/ACMV.yaml",
		},
	}
}

func guids(records []types.ElementRecord) map[string]bool {
	out := make(map[string]bool, len(records))
	for _, r := range records {
		out[r.GUID] = true
	}
	return out
}

// --- tests ---

func TestQueryBeforeBuildFails(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "federation.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatal(err)
	}

	x := New(s)
	_, err = x.QueryByBox(context.Background(), [3]float64{0, 0, 0}, [3]float64{1, 1, 1}, nil, nil)
	if !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	_, err = x.QueryByDiscipline(context.Background(), "ARC")
	if !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestBuildFailsOnInvalidStore(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "raw.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	x := New(s)
	err = x.Build(context.Background())
	var schemaErr *store.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *store.SchemaError, got %v", err)
	}
	if x.Loaded() {
		t.Fatal("index must stay unattached after failed Build")
	}
}

func TestScenarioQueries(t *testing.T) {
	x := testIndex(t, scenarioRecords())
	ctx := context.Background()

	// Box probe catches R1 and the nested R3, not the distant R2.
	got, err := x.QueryByBox(ctx, [3]float64{0, 0, 0}, [3]float64{9, 9, 9}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := guids(got)
	if len(got) != 2 || !want["R1"] || !want["R3"] {
		t.Fatalf("box probe: got %v", want)
	}

	// Point probe with radius 1 inside R2 only.
	got, err = x.QueryByPoint(ctx, [3]float64{25, 25, 25}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].GUID != "R2" {
		t.Fatalf("point probe: got %v", guids(got))
	}

	// Discipline query normalizes "Mechanical" to ACMV.
	got, err = x.QueryByDiscipline(ctx, "Mechanical")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].GUID != "R3" {
		t.Fatalf("discipline probe: got %v", guids(got))
	}
}

func TestQueryByPointZeroRadius(t *testing.T) {
	x := testIndex(t, scenarioRecords())

	// Radius 0 is an exact-point box query: the point (5,5,5) lies on R3's
	// boundary and inside R1, so both match.
	got, err := x.QueryByPoint(context.Background(), [3]float64{5, 5, 5}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := guids(got)
	if len(got) != 2 || !want["R1"] || !want["R3"] {
		t.Fatalf("zero-radius point: got %v", want)
	}
}

func TestQueryCorridor(t *testing.T) {
	x := testIndex(t, scenarioRecords())

	// A corridor from (12,12,12) to (19,19,19) misses everything with no
	// buffer, but expanding by 2.5 reaches both R1 (max corner 10) and R2
	// (min corner 20).
	got, err := x.QueryCorridor(context.Background(),
		[3]float64{12, 12, 12}, [3]float64{19, 19, 19}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("unbuffered corridor: got %v", guids(got))
	}

	got, err = x.QueryCorridor(context.Background(),
		[3]float64{12, 12, 12}, [3]float64{19, 19, 19}, 2.5, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := guids(got)
	if !want["R1"] || !want["R2"] {
		t.Fatalf("buffered corridor: got %v", want)
	}

	// Corner order must not matter.
	swapped, err := x.QueryCorridor(context.Background(),
		[3]float64{19, 19, 19}, [3]float64{12, 12, 12}, 2.5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(swapped) != len(got) {
		t.Fatalf("corridor not symmetric in endpoints: %d vs %d", len(swapped), len(got))
	}
}

func TestFilterComposition(t *testing.T) {
	x := testIndex(t, scenarioRecords())
	ctx := context.Background()

	min, max := [3]float64{0, 0, 0}, [3]float64{30, 30, 30}

	unfiltered, err := x.QueryByBox(ctx, min, max, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	filtered, err := x.QueryByBox(ctx, min, max, []string{"hvac"}, []string{"IfcDuctSegment"})
	if err != nil {
		t.Fatal(err)
	}

	if len(filtered) > len(unfiltered) {
		t.Fatalf("filtered result larger than unfiltered")
	}
	all := guids(unfiltered)
	for _, r := range filtered {
		if !all[r.GUID] {
			t.Fatalf("filtered record %s not in unfiltered result", r.GUID)
		}
		if r.Discipline != "ACMV" || r.TypeTag != "IfcDuctSegment" {
			t.Fatalf("record %s does not satisfy both filters", r.GUID)
		}
	}
	if len(filtered) != 1 {
		t.Fatalf("expected exactly R3, got %v", guids(filtered))
	}
}

func TestInvalidQueryBox(t *testing.T) {
	x := testIndex(t, scenarioRecords())
	_, err := x.QueryByBox(context.Background(), [3]float64{1, 0, 0}, [3]float64{0, 1, 1}, nil, nil)
	if err == nil {
		t.Fatal("expected error for inverted query box")
	}
}

func TestGetByGUID(t *testing.T) {
	x := testIndex(t, scenarioRecords())
	ctx := context.Background()

	got, err := x.GetByGUID(ctx, "R2")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Discipline != "STR" {
		t.Fatalf("GetByGUID(R2): got %+v", got)
	}

	missing, err := x.GetByGUID(ctx, "R")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("partial guid must not match: got %+v", missing)
	}
}

func TestEmptyStore(t *testing.T) {
	x := testIndex(t, nil)
	ctx := context.Background()

	stats := x.Statistics()
	if stats.TotalElements != 0 || len(stats.Disciplines) != 0 || len(stats.TypeTags) != 0 {
		t.Fatalf("empty store stats: %+v", stats)
	}

	got, err := x.QueryByBox(ctx, [3]float64{-100, -100, -100}, [3]float64{100, 100, 100}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("empty store query: got %v", guids(got))
	}
}

func TestStatisticsSnapshotAndClear(t *testing.T) {
	records := scenarioRecords()
	x := testIndex(t, records)

	stats := x.Statistics()
	if stats.TotalElements != 3 {
		t.Fatalf("total: %d", stats.TotalElements)
	}
	if len(stats.Disciplines) != 3 || len(stats.TypeTags) != 3 {
		t.Fatalf("stats: %+v", stats)
	}

	x.Clear()
	if x.Loaded() {
		t.Fatal("Clear must detach the index")
	}
	if x.Statistics().TotalElements != 0 {
		t.Fatal("Clear must reset statistics")
	}
	if _, err := x.QueryByDiscipline(context.Background(), "ARC"); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("query after Clear: %v", err)
	}
}
