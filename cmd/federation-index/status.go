// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/federation-index/internal/progress"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the progress of an extraction run",
	Long: `Status reads the progress snapshot an extraction run overwrites after
each file, so a long-running extraction can be polled out-of-band.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("progress")
		if path == "" {
			path = progress.DefaultPath(viper.GetString("database"))
		}

		report, err := progress.Read(path)
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("Run:              %s\n", report.RunID)
		fmt.Printf("Status:           %s\n", report.Status)
		fmt.Printf("Files Processed:  %d\n", report.FilesProcessed)
		fmt.Printf("Total Elements:   %d\n", report.TotalElements)
		fmt.Printf("Elapsed:          %.1fs\n", report.ElapsedSeconds)
		for _, f := range report.Files {
			fmt.Printf("  %-30s %-8s %6d elements (%.1fs)\n",
				f.Filename, f.Discipline, f.Elements, f.DurationSeconds)
		}
		if report.DatabasePath != "" {
			fmt.Printf("Database:         %s (%.2f MB)\n", report.DatabasePath, report.DatabaseSizeMB)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().String("progress", "", "progress report path (default: database path with .json extension)")
	statusCmd.Flags().Bool("json", false, "print the raw progress document")

	rootCmd.AddCommand(statusCmd)
}
