// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/federation-index/internal/index"
	"github.com/pdiddy/federation-index/internal/store"
	"github.com/pdiddy/federation-index/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run spatial queries against the federation store",
	Long: `Query answers spatial lookups across all federated disciplines:
box returns elements intersecting an axis-aligned box (closed intervals,
touching counts), point probes at or around a point, corridor takes the
bounding box of a segment expanded by a buffer, and discipline lists one
trade's elements independent of location. guid is an exact lookup.`,
}

// --- box subcommand ---

var queryBoxCmd = &cobra.Command{
	Use:   "box",
	Short: "Elements intersecting an axis-aligned box",
	RunE: func(cmd *cobra.Command, args []string) error {
		min, err := parseXYZ(mustFlag(cmd, "min"))
		if err != nil {
			return fmt.Errorf("--min: %w", err)
		}
		max, err := parseXYZ(mustFlag(cmd, "max"))
		if err != nil {
			return fmt.Errorf("--max: %w", err)
		}

		return withIndex(cmd, func(ctx context.Context, x *index.Spatial) error {
			disciplines, _ := cmd.Flags().GetStringSlice("disciplines")
			typeTags, _ := cmd.Flags().GetStringSlice("types")
			records, err := x.QueryByBox(ctx, min, max, disciplines, typeTags)
			if err != nil {
				return err
			}
			return printRecords(cmd, records)
		})
	},
}

// --- point subcommand ---

var queryPointCmd = &cobra.Command{
	Use:   "point",
	Short: "Elements at or near a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		at, err := parseXYZ(mustFlag(cmd, "at"))
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		radius, _ := cmd.Flags().GetFloat64("radius")
		if radius < 0 {
			return fmt.Errorf("--radius must be >= 0")
		}

		return withIndex(cmd, func(ctx context.Context, x *index.Spatial) error {
			disciplines, _ := cmd.Flags().GetStringSlice("disciplines")
			records, err := x.QueryByPoint(ctx, at, radius, disciplines)
			if err != nil {
				return err
			}
			return printRecords(cmd, records)
		})
	},
}

// --- corridor subcommand ---

var queryCorridorCmd = &cobra.Command{
	Use:   "corridor",
	Short: "Elements along a buffered route segment",
	Long: `Corridor queries the bounding box of the segment start..end expanded
by the buffer on every side on every axis. This over-approximates the true
corridor; post-filter when a tight capsule test is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseXYZ(mustFlag(cmd, "start"))
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		end, err := parseXYZ(mustFlag(cmd, "end"))
		if err != nil {
			return fmt.Errorf("--end: %w", err)
		}
		buffer, _ := cmd.Flags().GetFloat64("buffer")
		if !cmd.Flags().Changed("buffer") {
			buffer = queryConfig(cmd).CorridorBuffer
		}
		if buffer < 0 {
			return fmt.Errorf("--buffer must be >= 0")
		}

		return withIndex(cmd, func(ctx context.Context, x *index.Spatial) error {
			disciplines, _ := cmd.Flags().GetStringSlice("disciplines")
			records, err := x.QueryCorridor(ctx, start, end, buffer, disciplines)
			if err != nil {
				return err
			}
			return printRecords(cmd, records)
		})
	},
}

// --- discipline subcommand ---

var queryDisciplineCmd = &cobra.Command{
	Use:   "discipline [label]",
	Short: "All elements of one discipline, independent of location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(cmd, func(ctx context.Context, x *index.Spatial) error {
			records, err := x.QueryByDiscipline(ctx, args[0])
			if err != nil {
				return err
			}
			return printRecords(cmd, records)
		})
	},
}

// --- guid subcommand ---

var queryGUIDCmd = &cobra.Command{
	Use:   "guid [guid]",
	Short: "Exact element lookup by guid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(cmd, func(ctx context.Context, x *index.Spatial) error {
			record, err := x.GetByGUID(ctx, args[0])
			if err != nil {
				return err
			}
			if record == nil {
				return fmt.Errorf("no element with guid %q", args[0])
			}
			return printRecords(cmd, []types.ElementRecord{*record})
		})
	},
}

// --- shared helpers ---

// queryConfig resolves the query settings from flags and configuration.
func queryConfig(cmd *cobra.Command) types.QueryConfig {
	db, _ := cmd.Flags().GetString("db")
	if db == "" {
		db = viper.GetString("database")
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if !cmd.Flags().Changed("limit") {
		limit = viper.GetInt("limit")
	}
	return types.QueryConfig{
		DatabasePath:   db,
		CorridorBuffer: viper.GetFloat64("corridor_buffer"),
		Limit:          limit,
	}
}

// withIndex opens the configured store, builds the index, runs fn, and
// releases everything. A schema failure or not-loaded error propagates as
// the command's error.
func withIndex(cmd *cobra.Command, fn func(context.Context, *index.Spatial) error) error {
	cfg := queryConfig(cmd)
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()
	st.SetLimit(cfg.Limit)

	x := index.New(st)
	ctx := context.Background()
	if err := x.Build(ctx); err != nil {
		return err
	}
	defer x.Clear()

	return fn(ctx, x)
}

// parseXYZ parses "x,y,z" into a point.
func parseXYZ(s string) ([3]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return [3]float64{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var p [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return [3]float64{}, fmt.Errorf("coordinate %q: %w", part, err)
		}
		p[i] = v
	}
	return p, nil
}

func mustFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func printRecords(cmd *cobra.Command, records []types.ElementRecord) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No elements found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-10s  %-22s  %s\n", "GUID", "Discipline", "Type", "BBox (min .. max)")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, r := range records {
		guid := r.GUID
		if len(guid) > 24 {
			guid = guid[:21] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-24s  %-10s  %-22s  (%.2f, %.2f, %.2f) .. (%.2f, %.2f, %.2f)\n",
			guid, r.Discipline, r.TypeTag,
			r.BBox.MinX, r.BBox.MinY, r.BBox.MinZ,
			r.BBox.MaxX, r.BBox.MaxY, r.BBox.MaxZ)
	}
	fmt.Fprintf(os.Stdout, "\n%d elements\n", len(records))
	return nil
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	queryCmd.PersistentFlags().String("db", "", "federation database path (default from config)")
	queryCmd.PersistentFlags().Bool("json", false, "output results as JSON")
	queryCmd.PersistentFlags().StringSlice("disciplines", nil, "filter by discipline labels (normalized before matching)")
	queryCmd.PersistentFlags().Int("limit", 0, "cap result count, 0 = unlimited (default from config)")

	queryBoxCmd.Flags().String("min", "", "minimum corner as x,y,z")
	queryBoxCmd.Flags().String("max", "", "maximum corner as x,y,z")
	queryBoxCmd.Flags().StringSlice("types", nil, "filter by exact type tags")
	_ = queryBoxCmd.MarkFlagRequired("min")
	_ = queryBoxCmd.MarkFlagRequired("max")

	queryPointCmd.Flags().String("at", "", "query point as x,y,z")
	queryPointCmd.Flags().Float64("radius", 0, "search radius (0 = exact point)")
	_ = queryPointCmd.MarkFlagRequired("at")

	queryCorridorCmd.Flags().String("start", "", "segment start as x,y,z")
	queryCorridorCmd.Flags().String("end", "", "segment end as x,y,z")
	queryCorridorCmd.Flags().Float64("buffer", 0, "expansion on every side (default from config)")
	_ = queryCorridorCmd.MarkFlagRequired("start")
	_ = queryCorridorCmd.MarkFlagRequired("end")

	queryCmd.AddCommand(queryBoxCmd)
	queryCmd.AddCommand(queryPointCmd)
	queryCmd.AddCommand(queryCorridorCmd)
	queryCmd.AddCommand(queryDisciplineCmd)
	queryCmd.AddCommand(queryGUIDCmd)

	rootCmd.AddCommand(queryCmd)
}
