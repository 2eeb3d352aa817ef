// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/federation-index/internal/extract"
	"github.com/pdiddy/federation-index/internal/geometry"
	"github.com/pdiddy/federation-index/internal/progress"
	"github.com/pdiddy/federation-index/internal/store"
	"github.com/pdiddy/federation-index/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract bounding boxes from discipline files into the federation store",
	Long: `Extract processes mesh dump files one at a time, decoding geometry
across a worker pool sized to the host core count, and writes each file's
element batch to the federation store in one upsert. Re-running extraction
for a file replaces its records by guid.

Files come from repeated --file flags (paired positionally with
--discipline flags) or from a YAML manifest. A missing discipline hint is
auto-detected from the filename.

Progress is written to a JSON snapshot after every file; poll it with the
status command while a long run is in flight.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	files, _ := cmd.Flags().GetStringArray("file")
	disciplines, _ := cmd.Flags().GetStringArray("discipline")
	manifest, _ := cmd.Flags().GetString("manifest")
	output, _ := cmd.Flags().GetString("output")
	progressPath, _ := cmd.Flags().GetString("progress")
	workers, _ := cmd.Flags().GetInt("workers")

	if output == "" {
		output = viper.GetString("database")
	}
	if workers == 0 {
		workers = viper.GetInt("workers")
	}
	if progressPath == "" {
		progressPath = viper.GetString("progress")
	}
	if progressPath == "" {
		progressPath = progress.DefaultPath(output)
	}
	cfg := types.ExtractionConfig{
		DatabasePath: output,
		ProgressPath: progressPath,
		Workers:      workers,
	}

	var inputs []extract.Input
	switch {
	case manifest != "":
		if len(files) > 0 {
			return fmt.Errorf("use either --manifest or --file, not both")
		}
		var err error
		inputs, err = extract.LoadManifest(manifest)
		if err != nil {
			return err
		}
	case len(files) > 0:
		if len(disciplines) > len(files) {
			return fmt.Errorf("more --discipline values (%d) than --file values (%d)", len(disciplines), len(files))
		}
		for i, f := range files {
			in := extract.Input{Path: f}
			if i < len(disciplines) {
				in.Discipline = disciplines[i]
			}
			inputs = append(inputs, in)
		}
	default:
		return fmt.Errorf("no input files: provide --file or --manifest")
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	pipeline := extract.NewPipeline(
		geometry.MeshFileProvider{},
		st,
		progress.NewReporter(cfg.ProgressPath),
		logger,
		cfg,
	)

	summary, err := pipeline.Run(context.Background(), inputs)
	if err != nil {
		return err
	}

	printRunSummary(summary, st, cfg.ProgressPath)
	return nil
}

func printRunSummary(summary extract.RunSummary, st *store.Store, progressPath string) {
	w := os.Stdout
	line := strings.Repeat("=", 60)

	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "FEDERATION EXTRACTION COMPLETE")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Status:           %s\n", summary.Status)
	fmt.Fprintf(w, "Files Processed:  %d\n", summary.FilesProcessed)
	if summary.FilesSkipped > 0 {
		fmt.Fprintf(w, "Files Skipped:    %d\n", summary.FilesSkipped)
	}
	fmt.Fprintf(w, "Total Elements:   %d\n", summary.TotalElements)
	fmt.Fprintf(w, "Duration:         %.1fs\n", summary.Duration.Seconds())
	fmt.Fprintf(w, "Database:         %s (%.2f MB)\n", st.Path(), st.SizeMB())
	fmt.Fprintf(w, "Progress Report:  %s\n", progressPath)

	if len(summary.Files) > 0 {
		fmt.Fprintln(w, "\nPer-File Statistics:")
		fmt.Fprintln(w, strings.Repeat("-", 60))
		for _, fs := range summary.Files {
			fmt.Fprintf(w, "  %-30s %-8s %6d elements (%.1fs)\n",
				fs.Filename, fs.Discipline, fs.Elements, fs.DurationSeconds)
		}
	}
	fmt.Fprintln(w, line)
}

func init() {
	extractCmd.Flags().StringArray("file", nil, "discipline file to extract (repeatable)")
	extractCmd.Flags().StringArray("discipline", nil, "discipline hint for the matching --file (repeatable; auto-detected when omitted)")
	extractCmd.Flags().String("manifest", "", "YAML manifest listing files and discipline hints")
	extractCmd.Flags().String("output", "", "destination federation database (default from config)")
	extractCmd.Flags().String("progress", "", "progress report path (default: database path with .json extension)")
	extractCmd.Flags().Int("workers", 0, "geometry workers per file (0 = host core count)")

	rootCmd.AddCommand(extractCmd)
}
