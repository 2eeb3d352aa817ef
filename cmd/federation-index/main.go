// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the federation-index CLI.
// The CLI drives the two halves of the federation index: the bbox
// extraction pipeline that turns discipline model files into a queryable
// store, and the spatial query engine over that store.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is shared by all commands; built in PersistentPreRunE so the
// --verbose flag is honored.
var logger = zap.NewNop()

// rootCmd is the base command for the federation-index CLI.
var rootCmd = &cobra.Command{
	Use:   "federation-index",
	Short: "Spatial index over federated building-model files",
	Long: `federation-index coordinates multiple independently authored discipline
models (architecture, structure, mechanical, ...) without merging them:
extract collapses each model's elements into bounding boxes inside a shared
SQLite store, and the query commands answer box, point, corridor, and
discipline lookups across all disciplines at once.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./federation-index.yaml or ~/.config/federation-index/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "debug logging in console format")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("federation-index")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "federation-index"))
		}
	}

	viper.SetDefault("database", "federation.db")
	viper.SetDefault("progress", "")
	viper.SetDefault("workers", 0)
	viper.SetDefault("corridor_buffer", 0.5)
	viper.SetDefault("limit", 0)

	viper.SetEnvPrefix("FEDERATION_INDEX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
