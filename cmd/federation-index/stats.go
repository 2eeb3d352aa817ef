// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/federation-index/internal/index"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Validate the federation store and print index statistics",
	Long: `Stats validates the store schema, builds the spatial index, and prints
the statistics captured at build time: total elements and the distinct
discipline and type-tag sets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIndex(cmd, func(ctx context.Context, x *index.Spatial) error {
			stats := x.Statistics()

			jsonOutput, _ := cmd.Flags().GetBool("json")
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Println("Federation Index Statistics:")
			fmt.Printf("  Total Elements:  %d\n", stats.TotalElements)
			fmt.Printf("  Disciplines:     %s\n", joinOrNone(stats.Disciplines))
			fmt.Printf("  Type Tags:       %d unique types\n", len(stats.TypeTags))
			return nil
		})
	},
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}

func init() {
	statsCmd.Flags().String("db", "", "federation database path (default from config)")
	statsCmd.Flags().Bool("json", false, "output statistics as JSON")

	rootCmd.AddCommand(statsCmd)
}
