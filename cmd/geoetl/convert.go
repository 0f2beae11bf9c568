package main

import (
	"os"
	"strings"
	"time"

	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/geoyogesh/GeoETL/internal/display"
	"github.com/geoyogesh/GeoETL/pkg/drivers"
	csvformat "github.com/geoyogesh/GeoETL/pkg/formats/csv"
	"github.com/geoyogesh/GeoETL/pkg/objstore"
	"github.com/geoyogesh/GeoETL/pkg/ops"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

var (
	convertInput        string
	convertOutput       string
	convertInputDriver  string
	convertOutputDriver string
	geometryColumn      string
	geometryType        string
	csvDelimiter        string
	csvNoHeader         bool
	convertBatchSize    int
	noProgress          bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert data between vector geospatial formats",
	Long: `Convert an input dataset to an output dataset, specifying the input
and output drivers.

Examples:
  geoetl convert -i cities.csv -o cities.geojson --input-driver CSV --output-driver GeoJSON
  geoetl convert -i s3://bucket/pois/ -o pois.csv --input-driver GeoJSON --output-driver CSV
  geoetl convert -i places.csv -o places.geojson --input-driver CSV --output-driver GeoJSON --geometry-column wkt`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "Input dataset path or URL (required)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output dataset path (required)")
	convertCmd.Flags().StringVar(&convertInputDriver, "input-driver", "", "Driver for reading the input dataset (required)")
	convertCmd.Flags().StringVar(&convertOutputDriver, "output-driver", "", "Driver for writing the output dataset (required)")
	convertCmd.Flags().StringVar(&geometryColumn, "geometry-column", "", "CSV column holding WKT geometry")
	convertCmd.Flags().StringVar(&geometryType, "geometry-type", "", "Geometry kind (Point, LineString, ... ; default mixed)")
	convertCmd.Flags().StringVar(&csvDelimiter, "delimiter", "", "CSV field delimiter (default ',')")
	convertCmd.Flags().BoolVar(&csvNoHeader, "no-header", false, "Treat the first CSV record as data")
	convertCmd.Flags().IntVar(&convertBatchSize, "batch-size", 0, "Rows per batch (default from config)")
	convertCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	convertCmd.MarkFlagRequired("input")
	convertCmd.MarkFlagRequired("output")
	convertCmd.MarkFlagRequired("input-driver")
	convertCmd.MarkFlagRequired("output-driver")
}

func runConvert(cmd *cobra.Command, args []string) error {
	engine := ops.NewEngine(drivers.NewRegistry(), objstore.NewRegistry(), memory.DefaultAllocator, logger)

	req := ops.ConvertRequest{
		Input:          convertInput,
		Output:         convertOutput,
		InputDriver:    convertInputDriver,
		OutputDriver:   convertOutputDriver,
		GeometryColumn: geometryColumn,
		GeometryType:   geometryType,
	}
	if req.GeometryColumn == "" {
		req.GeometryColumn = cfg.Geometry.Column
	}
	if req.GeometryType == "" {
		req.GeometryType = cfg.Geometry.Type
	}
	opts, err := csvInputOverrides(req)
	if err != nil {
		return err
	}
	if opts != nil {
		req.InputOptions = opts
	}

	if !noProgress {
		bar := newProgressBar()
		req.OnBatch = func(rows int64) { bar.Set64(rows) }
		defer bar.Finish()
	}

	res, err := engine.Convert(cmd.Context(), req)
	if err != nil {
		return err
	}
	cmd.Println(display.ConvertResult(res, convertInput, convertOutput))
	return nil
}

// csvInputOverrides builds CSV read options from the CLI flags and config.
// Returns nil for non-CSV inputs, leaving option handling to the engine.
func csvInputOverrides(req ops.ConvertRequest) (*csvformat.Options, error) {
	if !strings.EqualFold(req.InputDriver, "CSV") {
		return nil, nil
	}
	batch := convertBatchSize
	if batch == 0 {
		batch = cfg.Conversion.BatchSize
	}
	opts := csvformat.DefaultOptions().
		WithBatchSize(batch).
		WithSchemaInferMaxRecords(cfg.Conversion.SchemaInferMaxRecords).
		WithHasHeader(!csvNoHeader)
	if csvDelimiter != "" {
		opts = opts.WithDelimiter(csvDelimiter[0])
	}
	if req.GeometryColumn != "" {
		typ := schema.Mixed()
		if req.GeometryType != "" {
			kind, err := schema.ParseGeometryKind(req.GeometryType)
			if err != nil {
				return nil, err
			}
			typ = schema.GeometryType{Kind: kind, Dim: schema.DimXY}
		}
		opts = opts.WithGeometryFromWKT(req.GeometryColumn, typ)
	}
	return opts, nil
}

func newProgressBar() *progressbar.ProgressBar {
	return progressbar.NewOptions64(-1,
		progressbar.OptionSetDescription("converting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
	)
}
