package main

import (
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/spf13/cobra"

	"github.com/geoyogesh/GeoETL/internal/display"
	"github.com/geoyogesh/GeoETL/pkg/drivers"
	"github.com/geoyogesh/GeoETL/pkg/objstore"
	"github.com/geoyogesh/GeoETL/pkg/ops"
)

var infoDriver string

var infoCmd = &cobra.Command{
	Use:   "info <dataset>",
	Short: "Display information about a vector geospatial dataset",
	Long: `Inspect a dataset: identify its driver, geometry columns, and field schema.

Examples:
  geoetl info cities.geojson
  geoetl info --driver CSV data/pois.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().StringVar(&infoDriver, "driver", "", "Driver to read the dataset with (detected from the extension if omitted)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	engine := ops.NewEngine(drivers.NewRegistry(), objstore.NewRegistry(), memory.DefaultAllocator, logger)

	info, err := engine.Info(cmd.Context(), ops.InfoRequest{
		Input:  args[0],
		Driver: infoDriver,
	})
	if err != nil {
		return err
	}
	cmd.Println(display.DatasetInfo(info))
	return nil
}
