// GeoETL - vector geospatial ETL.
// Converts datasets between vector formats (CSV, GeoJSON) with streaming
// schema inference and cloud object-store inputs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/geoyogesh/GeoETL/pkg/config"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// Global flags
var (
	verbose bool
	debug   bool
)

var (
	logger *zap.Logger
	cfg    *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "geoetl",
	Short: "GeoETL - Modern vector geospatial ETL",
	Long: `GeoETL is a high-performance CLI tool for spatial data conversion and processing.

Datasets may live on the local filesystem or in object storage
(s3://, gs://, az://, https://).`,
	Version:           fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (info level) output")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(driversCmd)
}

// setup loads configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	manager := config.NewManager()
	if err := manager.Load(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = manager.Get()

	// Config-provided region feeds the S3 backend unless already set.
	if cfg.Storage.S3Region != "" && os.Getenv("AWS_REGION") == "" {
		os.Setenv("AWS_REGION", cfg.Storage.S3Region)
	}

	level := zapcore.WarnLevel
	if debug {
		level = zapcore.DebugLevel
	} else if verbose {
		level = zapcore.InfoLevel
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.DisableStacktrace = true

	var err error
	logger, err = zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}
