// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pdiddy/federation-index/internal/geometry"
	"github.com/pdiddy/federation-index/internal/progress"
	"github.com/pdiddy/federation-index/internal/store"
	"github.com/pdiddy/federation-index/pkg/types"
)

// --- test doubles ---

// fakeProvider serves canned elements per path and can fail opening.
type fakeProvider struct {
	models   map[string][]geometry.Element
	openErrs map[string]error
}

func (f *fakeProvider) Open(path string) (geometry.Model, error) {
	if err, ok := f.openErrs[path]; ok {
		return nil, err
	}
	els, ok := f.models[path]
	if !ok {
		return nil, fmt.Errorf("unknown model %s", path)
	}
	return &fakeModel{elements: els}, nil
}

type fakeModel struct {
	elements []geometry.Element
	pos      int
}

func (m *fakeModel) Next() (geometry.Element, bool, error) {
	if m.pos >= len(m.elements) {
		return geometry.Element{}, false, nil
	}
	el := m.elements[m.pos]
	m.pos++
	return el, true, nil
}

func (m *fakeModel) Close() error { return nil }

// --- test helpers ---

type pipelineEnv struct {
	store    *store.Store
	provider *fakeProvider
	dir      string
	progress string
}

func testEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	dir := t.TempDir()

	s, err := store.Open(filepath.Join(dir, "federation.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	return &pipelineEnv{
		store: s,
		provider: &fakeProvider{
			models:   map[string][]geometry.Element{},
			openErrs: map[string]error{},
		},
		dir:      dir,
		progress: filepath.Join(dir, "federation.json"),
	}
}

// addFile registers elements under a real on-disk path so the run's
// existence check passes.
func (e *pipelineEnv) addFile(t *testing.T, name string, els []geometry.Element) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte("placeholder"), 0o644); err != nil {
		t.Fatal(err)
	}
	e.provider.models[path] = els
	return path
}

func (e *pipelineEnv) pipeline(workers int) *Pipeline {
	cfg := types.ExtractionConfig{Workers: workers}
	return NewPipeline(e.provider, e.store, progress.NewReporter(e.progress), zap.NewNop(), cfg)
}

func cube(min, max float64) []float64 {
	return []float64{min, min, min, max, max, max}
}

func wallElements(n int) []geometry.Element {
	els := make([]geometry.Element, 0, n)
	for i := 0; i < n; i++ {
		els = append(els, geometry.Element{
			NativeID: int64(i + 1),
			GlobalID: fmt.Sprintf("WALL-%03d", i),
			TypeTag:  "IfcWall",
			Verts:    cube(float64(i), float64(i)+1),
		})
	}
	return els
}

// --- tests ---

func TestRunWritesRecordsAndProgress(t *testing.T) {
	e := testEnv(t)
	arc := e.addFile(t, "ARC.yaml", wallElements(3))
	str := e.addFile(t, "STR.yaml", []geometry.Element{
		{NativeID: 1, GlobalID: "BEAM-1", TypeTag: "IfcBeam", Verts: cube(0, 8)},
	})

	summary, err := e.pipeline(2).Run(context.Background(), []Input{
		{Path: arc, Discipline: "Architectural"},
		{Path: str, Discipline: "STR"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if summary.Status != types.RunCompleted {
		t.Fatalf("status: %s", summary.Status)
	}
	if summary.FilesProcessed != 2 || summary.TotalElements != 4 {
		t.Fatalf("summary: %+v", summary)
	}

	n, err := e.store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("store count: %d", n)
	}

	// Discipline hints are normalized before storage.
	rec, err := e.store.GetByGUID(context.Background(), "WALL-000")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Discipline != "ARC" {
		t.Fatalf("record: %+v", rec)
	}
	if !strings.HasSuffix(rec.SourcePath, "ARC.yaml") || !filepath.IsAbs(rec.SourcePath) {
		t.Fatalf("source path: %s", rec.SourcePath)
	}

	report, err := progress.Read(e.progress)
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != types.RunCompleted || report.TotalFiles != 2 || report.TotalElements != 4 {
		t.Fatalf("progress report: %+v", report)
	}
	if len(report.Files) != 2 || report.Files[1].Discipline != "STR" {
		t.Fatalf("per-file stats: %+v", report.Files)
	}
	if report.DatabasePath != e.store.Path() {
		t.Fatalf("database path: %s", report.DatabasePath)
	}
}

func TestRunIdempotentReextraction(t *testing.T) {
	e := testEnv(t)
	arc := e.addFile(t, "ARC.yaml", wallElements(5))
	inputs := []Input{{Path: arc, Discipline: "ARC"}}
	ctx := context.Background()

	if _, err := e.pipeline(4).Run(ctx, inputs); err != nil {
		t.Fatal(err)
	}
	first, err := e.store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.pipeline(4).Run(ctx, inputs); err != nil {
		t.Fatal(err)
	}
	second, err := e.store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if first != second || first != 5 {
		t.Fatalf("record count grew on re-extraction: %d -> %d", first, second)
	}
}

func TestRunFailsFastOnMissingInput(t *testing.T) {
	e := testEnv(t)
	arc := e.addFile(t, "ARC.yaml", wallElements(1))

	_, err := e.pipeline(1).Run(context.Background(), []Input{
		{Path: arc, Discipline: "ARC"},
		{Path: filepath.Join(e.dir, "absent.yaml"), Discipline: "STR"},
	})
	if err == nil {
		t.Fatal("expected error for missing input file")
	}

	// Fail-fast means nothing was processed, not even the existing file.
	if _, statErr := os.Stat(e.progress); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("progress file written despite fail-fast abort")
	}
}

func TestRunSkipsUnopenableFile(t *testing.T) {
	e := testEnv(t)
	arc := e.addFile(t, "ARC.yaml", wallElements(2))
	bad := e.addFile(t, "ACMV.yaml", nil)
	e.provider.openErrs[bad] = errors.New("corrupt geometry stream")

	summary, err := e.pipeline(1).Run(context.Background(), []Input{
		{Path: bad, Discipline: "ACMV"},
		{Path: arc, Discipline: "ARC"},
	})
	if err != nil {
		t.Fatal(err)
	}

	// The run still completes; only the bad file is skipped.
	if summary.Status != types.RunCompleted || summary.FilesSkipped != 1 || summary.FilesProcessed != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	if summary.TotalElements != 2 {
		t.Fatalf("elements: %d", summary.TotalElements)
	}
}

func TestRunFiltersCategoriesAndEmptyGeometry(t *testing.T) {
	e := testEnv(t)
	path := e.addFile(t, "ARC.yaml", []geometry.Element{
		{NativeID: 1, GlobalID: "W1", TypeTag: "IfcWall", Verts: cube(0, 1)},
		{NativeID: 2, GlobalID: "A1", TypeTag: "IfcAnnotation", Verts: cube(0, 1)},
		{NativeID: 3, GlobalID: "W2", TypeTag: "IfcWall", Verts: nil},
		{NativeID: 4, GlobalID: "", TypeTag: "IfcDoor", Verts: cube(2, 3)},
	})

	summary, err := e.pipeline(3).Run(context.Background(), []Input{{Path: path, Discipline: "ARC"}})
	if err != nil {
		t.Fatal(err)
	}
	if summary.TotalElements != 2 {
		t.Fatalf("expected the annotation and empty elements skipped, got %d records", summary.TotalElements)
	}

	// Elements without a native identifier get a deterministic synthetic guid.
	rec, err := e.store.GetByGUID(context.Background(), "NO_GUID_4")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.TypeTag != "IfcDoor" {
		t.Fatalf("synthetic guid record: %+v", rec)
	}
}

func TestRunAutoDetectsDiscipline(t *testing.T) {
	e := testEnv(t)
	path := e.addFile(t, "Terminal1_STR.yaml", wallElements(1))

	summary, err := e.pipeline(1).Run(context.Background(), []Input{{Path: path}})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Files[0].Discipline != "STR" {
		t.Fatalf("auto-detected discipline: %s", summary.Files[0].Discipline)
	}

	rec, err := e.store.GetByGUID(context.Background(), "WALL-000")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Discipline != "STR" {
		t.Fatalf("stored discipline: %s", rec.Discipline)
	}
}

func TestRunNoInputs(t *testing.T) {
	e := testEnv(t)
	if _, err := e.pipeline(1).Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty input list")
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "federation.yaml")
	doc := `files:
  - path: /models/ARC.yaml
    discipline: ARC
  - path: /models/ACMV_R01.yaml
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	inputs, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 2 {
		t.Fatalf("inputs: %+v", inputs)
	}
	if inputs[0].Discipline != "ARC" || inputs[1].Discipline != "" {
		t.Fatalf("disciplines: %+v", inputs)
	}
}

func TestLoadManifestErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadManifest(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatal("expected error for missing manifest")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("files: []"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(empty); err == nil {
		t.Fatal("expected error for manifest with no files")
	}

	noPath := filepath.Join(dir, "nopath.yaml")
	if err := os.WriteFile(noPath, []byte("files:\n  - discipline: ARC\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadManifest(noPath); err == nil {
		t.Fatal("expected error for entry without path")
	}
}

func TestSupportedCategory(t *testing.T) {
	for _, tag := range []string{"IfcWall", "IfcDuctSegment", "IfcFurniture", "IfcBeam"} {
		if !SupportedCategory(tag) {
			t.Errorf("%s should be supported", tag)
		}
	}
	for _, tag := range []string{"IfcAnnotation", "IfcGrid", "IfcSpace", ""} {
		if SupportedCategory(tag) {
			t.Errorf("%s should not be supported", tag)
		}
	}
}
