// Package ops implements the user-facing ETL operations: format
// conversion between datasets and dataset inspection. Operations work in
// terms of drivers and dataset URLs; all byte-level access goes through
// the object store registry.
package ops

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow/go/v14/arrow/memory"
	"go.uber.org/zap"

	"github.com/geoyogesh/GeoETL/pkg/drivers"
	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/formats"
	csvformat "github.com/geoyogesh/GeoETL/pkg/formats/csv"
	geojsonformat "github.com/geoyogesh/GeoETL/pkg/formats/geojson"
	"github.com/geoyogesh/GeoETL/pkg/objstore"
	"github.com/geoyogesh/GeoETL/pkg/schema"
	"github.com/geoyogesh/GeoETL/pkg/table"
)

// DefaultGeometryColumn names the column conversions treat as geometry
// when the caller does not say otherwise.
const DefaultGeometryColumn = "geometry"

// Engine runs ETL operations against a driver registry and an object
// store registry.
type Engine struct {
	drivers *drivers.Registry
	stores  *objstore.Registry
	alloc   memory.Allocator
	logger  *zap.Logger
}

// NewEngine creates an operations engine. A nil logger disables logging.
func NewEngine(dr *drivers.Registry, stores *objstore.Registry, alloc memory.Allocator, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	return &Engine{drivers: dr, stores: stores, alloc: alloc, logger: logger}
}

// ConvertRequest describes one conversion.
type ConvertRequest struct {
	Input        string
	Output       string
	InputDriver  string
	OutputDriver string

	// GeometryColumn names the WKT column for CSV inputs; empty means
	// DefaultGeometryColumn.
	GeometryColumn string
	// GeometryType constrains the geometry kind; empty means mixed
	// (auto-detect per value).
	GeometryType string

	// InputOptions and OutputOptions override the driver defaults.
	InputOptions  formats.Options
	OutputOptions formats.Options

	// OnBatch, when set, is invoked after each batch is written with the
	// cumulative row count.
	OnBatch func(rows int64)
}

// ConvertResult summarizes a finished conversion.
type ConvertResult struct {
	Rows       int64
	Batches    int
	InputFiles int
	Duration   time.Duration
	Throughput float64 // rows/sec
}

// Convert reads the input dataset and serializes it through the output
// driver, returning the row count and timing.
func (e *Engine) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	start := time.Now()

	in, err := e.drivers.Find(req.InputDriver)
	if err != nil {
		return nil, err
	}
	out, err := e.drivers.Find(req.OutputDriver)
	if err != nil {
		return nil, err
	}
	if !in.Capabilities.Read.IsSupported() {
		return nil, geoerrors.Otherf("input driver '%s' does not support reading", in.ShortName)
	}
	if !out.Capabilities.Write.IsSupported() {
		return nil, geoerrors.Otherf("output driver '%s' does not support writing", out.ShortName)
	}

	e.logger.Info("starting conversion",
		zap.String("input", req.Input), zap.String("input_driver", in.ShortName),
		zap.String("output", req.Output), zap.String("output_driver", out.ShortName))

	inOpts := req.InputOptions
	if inOpts == nil {
		inOpts, err = e.inputOptions(in, req)
		if err != nil {
			return nil, err
		}
	}
	outOpts := req.OutputOptions
	if outOpts == nil {
		outOpts, err = defaultOptions(out)
		if err != nil {
			return nil, err
		}
	}

	provider, err := table.Open(ctx, e.stores, in, inOpts, req.Input, e.alloc)
	if err != nil {
		return nil, err
	}

	f, err := e.createOutput(ctx, req.Output)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sink, err := table.NewSink(out, f, provider.Schema(), outOpts, req.Output)
	if err != nil {
		return nil, err
	}

	stream, err := provider.Scan(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var rows int64
	var batches int
	for stream.Next() {
		rec := stream.Record()
		rows += rec.NumRows()
		batches++
		err := sink.Write(rec)
		rec.Release()
		if err != nil {
			return nil, err
		}
		if req.OnBatch != nil {
			req.OnBatch(rows)
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	if _, err := sink.Flush(); err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, geoerrors.Io(err, req.Output)
	}

	elapsed := time.Since(start)
	res := &ConvertResult{
		Rows:       rows,
		Batches:    batches,
		InputFiles: len(provider.Files()),
		Duration:   elapsed,
	}
	if secs := elapsed.Seconds(); secs > 0 {
		res.Throughput = float64(rows) / secs
	}
	e.logger.Info("conversion completed",
		zap.Int64("rows", rows), zap.Int("batches", batches),
		zap.Duration("duration", elapsed))
	return res, nil
}

// inputOptions builds the default read options for a driver, applying the
// WKT geometry override for CSV inputs.
func (e *Engine) inputOptions(driver *drivers.Driver, req ConvertRequest) (formats.Options, error) {
	opts, err := defaultOptions(driver)
	if err != nil {
		return nil, err
	}
	csvOpts, ok := opts.(*csvformat.Options)
	if !ok {
		return opts, nil
	}

	column := req.GeometryColumn
	if column == "" {
		column = DefaultGeometryColumn
	}
	typ := schema.Mixed()
	if req.GeometryType != "" {
		kind, err := schema.ParseGeometryKind(req.GeometryType)
		if err != nil {
			return nil, err
		}
		typ = schema.GeometryType{Kind: kind, Dim: schema.DimXY}
	}
	e.logger.Info("parsing WKT geometry",
		zap.String("column", column), zap.Stringer("type", typ))
	return csvOpts.WithGeometryFromWKT(column, typ), nil
}

// createOutput opens the output object for writing. Only local outputs
// are supported.
func (e *Engine) createOutput(ctx context.Context, rawURL string) (*os.File, error) {
	source, path, err := e.stores.Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if source != e.stores.Local() {
		return nil, geoerrors.Otherf("writing to remote storage is not supported yet: %s", rawURL)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, geoerrors.Io(fmt.Errorf("failed to create output file: %w", err), rawURL)
	}
	return f, nil
}

// defaultOptions maps a driver to its format's default options.
func defaultOptions(driver *drivers.Driver) (formats.Options, error) {
	switch strings.ToLower(driver.ShortName) {
	case "csv":
		return csvformat.DefaultOptions(), nil
	case "geojson":
		return geojsonformat.DefaultOptions(), nil
	default:
		return nil, geoerrors.Otherf("driver '%s' has no format options", driver.ShortName)
	}
}
