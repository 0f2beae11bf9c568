package main

import (
	"github.com/spf13/cobra"

	"github.com/geoyogesh/GeoETL/internal/display"
	"github.com/geoyogesh/GeoETL/pkg/drivers"
)

var driversAvailable bool

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List available geospatial drivers and their capabilities",
	RunE:  runDrivers,
}

func init() {
	driversCmd.Flags().BoolVar(&driversAvailable, "available", false, "Only list drivers with at least one supported operation")
}

func runDrivers(cmd *cobra.Command, args []string) error {
	registry := drivers.NewRegistry()
	list := registry.Drivers()
	if driversAvailable {
		list = registry.Available()
	}
	cmd.Println(display.Drivers(list))
	return nil
}
