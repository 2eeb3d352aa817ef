// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns heavyweight discipline models into compact element
// records: per file, a worker pool decodes geometry in parallel, each
// element's world-space vertex list collapses to an axis-aligned bounding
// box, and the file's full batch lands in the federation store as one
// upsert. Element- and file-level failures are contained; a run reaches
// "completed" unless the store itself fails.
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/federation-index/internal/discipline"
	"github.com/pdiddy/federation-index/internal/geometry"
	"github.com/pdiddy/federation-index/internal/progress"
	"github.com/pdiddy/federation-index/internal/store"
	"github.com/pdiddy/federation-index/pkg/types"
)

// Input names one discipline file for extraction. An empty Discipline is
// auto-detected from the filename.
type Input struct {
	Path       string
	Discipline string
}

// RunSummary holds the outcome of one extraction run. Status is the single
// source of truth for whether the store is safe to use: skipped files do
// not fail a run, a store-level write failure does.
type RunSummary struct {
	RunID          string
	FilesProcessed int
	FilesSkipped   int
	TotalElements  int64
	Duration       time.Duration
	Status         types.RunStatus
	Files          []types.FileStat
}

// Pipeline drives per-file extraction into one destination store. A
// pipeline run is not re-entrant on the same store while a prior run
// targeting it is active; callers serialize runs.
type Pipeline struct {
	provider geometry.Provider
	store    *store.Store
	reporter *progress.Reporter
	log      *zap.Logger
	workers  int
}

// NewPipeline wires a pipeline. A worker count <= 0 sizes the pool to the
// host core count; a nil logger disables logging.
func NewPipeline(provider geometry.Provider, st *store.Store, reporter *progress.Reporter, log *zap.Logger, cfg types.ExtractionConfig) *Pipeline {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		provider: provider,
		store:    st,
		reporter: reporter,
		log:      log,
		workers:  workers,
	}
}

// Run extracts every input file in order. It fails fast when an input path
// does not exist, before any processing; after that, a file that cannot be
// opened or iterated is skipped with a warning and the run continues. The
// progress reporter is updated after each file and finalized with the run
// status.
func (p *Pipeline) Run(ctx context.Context, inputs []Input) (RunSummary, error) {
	start := time.Now()
	summary := RunSummary{RunID: p.reporter.RunID(), Status: types.RunFailed}

	if len(inputs) == 0 {
		return summary, fmt.Errorf("no input files")
	}
	for _, in := range inputs {
		if _, err := os.Stat(in.Path); err != nil {
			return summary, fmt.Errorf("input file not found: %s", in.Path)
		}
	}

	if err := p.store.InitSchema(ctx); err != nil {
		p.finalize(true)
		return summary, fmt.Errorf("initializing store: %w", err)
	}
	if err := p.reporter.Start(); err != nil {
		p.log.Warn("progress report write failed", zap.Error(err))
	}

	for _, in := range inputs {
		code := discipline.Normalize(in.Discipline)
		if strings.TrimSpace(in.Discipline) == "" {
			code = discipline.DetectFromFilename(in.Path)
			p.log.Info("discipline auto-detected",
				zap.String("file", filepath.Base(in.Path)),
				zap.String("discipline", code))
		}

		fileStart := time.Now()
		p.log.Info("processing file",
			zap.String("file", filepath.Base(in.Path)),
			zap.String("discipline", code))

		records, err := p.extractFile(ctx, in.Path, code)
		if err != nil {
			if ctx.Err() != nil {
				p.finalize(true)
				return summary, ctx.Err()
			}
			p.log.Warn("skipping file", zap.String("file", in.Path), zap.Error(err))
			summary.FilesSkipped++
			continue
		}

		if err := p.store.UpsertBatch(ctx, records); err != nil {
			p.finalize(true)
			return summary, fmt.Errorf("writing batch for %s: %w", in.Path, err)
		}

		duration := time.Since(fileStart)
		summary.FilesProcessed++
		summary.TotalElements += int64(len(records))
		summary.Files = append(summary.Files, types.FileStat{
			Filename:        filepath.Base(in.Path),
			Discipline:      code,
			Elements:        len(records),
			DurationSeconds: duration.Seconds(),
		})

		if err := p.reporter.FileDone(filepath.Base(in.Path), code, len(records), duration); err != nil {
			p.log.Warn("progress report write failed", zap.Error(err))
		}
		p.log.Info("file complete",
			zap.String("file", filepath.Base(in.Path)),
			zap.Int("elements", len(records)),
			zap.Duration("duration", duration))
	}

	p.finalize(false)
	summary.Status = types.RunCompleted
	summary.Duration = time.Since(start)
	return summary, nil
}

func (p *Pipeline) finalize(failed bool) {
	if _, err := p.reporter.Finalize(p.store.Path(), p.store.SizeMB(), failed); err != nil {
		p.log.Warn("final progress report write failed", zap.Error(err))
	}
}

// extractFile opens one model and drains its elements through the worker
// pool. The pool is scoped to this file and fully drained before the batch
// is returned, so store writes stay a single-writer stream. Any error here
// means the file contributes nothing; the store never sees a partial batch.
func (p *Pipeline) extractFile(ctx context.Context, path, code string) ([]types.ElementRecord, error) {
	model, err := p.provider.Open(path)
	if err != nil {
		return nil, fmt.Errorf("initializing geometry: %w", err)
	}
	defer model.Close()

	source, err := filepath.Abs(path)
	if err != nil {
		source = path
	}

	jobs := make(chan geometry.Element)
	results := make(chan types.ElementRecord)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for el := range jobs {
				rec, ok := p.buildRecord(el, code, source)
				if ok {
					results <- rec
				}
			}
		}()
	}

	var iterErr error
	go func() {
		defer close(jobs)
		for {
			el, ok, err := model.Next()
			if err != nil {
				iterErr = err
				return
			}
			if !ok {
				return
			}
			select {
			case jobs <- el:
			case <-ctx.Done():
				iterErr = ctx.Err()
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var records []types.ElementRecord
	for rec := range results {
		records = append(records, rec)
	}

	if iterErr != nil {
		return nil, fmt.Errorf("iterating elements: %w", iterErr)
	}
	return records, nil
}

// buildRecord converts one element, or reports false when the element is
// outside the supported category set or has no vertices.
func (p *Pipeline) buildRecord(el geometry.Element, code, source string) (types.ElementRecord, bool) {
	if !SupportedCategory(el.TypeTag) {
		return types.ElementRecord{}, false
	}

	box, ok := geometry.ComputeAABB(el.Verts)
	if !ok {
		p.log.Debug("skipping element with no vertices",
			zap.Int64("id", el.NativeID),
			zap.String("type", el.TypeTag))
		return types.ElementRecord{}, false
	}

	guid := el.GlobalID
	if guid == "" {
		guid = fmt.Sprintf("NO_GUID_%d", el.NativeID)
	}

	return types.ElementRecord{
		GUID:       guid,
		Discipline: code,
		TypeTag:    el.TypeTag,
		BBox:       box,
		SourcePath: source,
	}, true
}
