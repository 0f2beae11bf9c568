// Package csv decodes delimited text files into typed columnar batches:
// schema inference over a sampled prefix, a streaming record tokenizer, and
// batch assembly with WKT geometry extraction for declared geometry columns.
package csv

import (
	"github.com/geoyogesh/GeoETL/pkg/batch"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// GeometryOverride declares that a named input column holds WKT geometry
// text and should be decoded into a geometry column of the given type.
type GeometryOverride struct {
	Column string
	Type   schema.GeometryType
}

// Options configures delimited-text reading and writing.
type Options struct {
	// Delimiter is the field separator byte. Defaults to ','.
	Delimiter byte
	// HasHeader declares whether the first row carries column names.
	HasHeader bool
	// SchemaInferMaxRecords caps the number of records sampled during
	// schema inference. Zero samples nothing beyond the first record.
	SchemaInferMaxRecords int
	// BatchSize is the number of rows per produced batch.
	BatchSize int
	// FileExtension filters directory listings when a dataset URL names a
	// directory rather than a single object.
	FileExtension string
	// GeometryColumns lists WKT geometry declarations, applied in order.
	GeometryColumns []GeometryOverride
}

// DefaultOptions returns the standard CSV configuration: comma-delimited,
// header present, 1000-record inference sample, 8192-row batches.
func DefaultOptions() *Options {
	return &Options{
		Delimiter:             ',',
		HasHeader:             true,
		SchemaInferMaxRecords: 1000,
		BatchSize:             batch.DefaultSize,
		FileExtension:         ".csv",
	}
}

// Format reports the driver short name.
func (o *Options) Format() string { return "csv" }

// WithDelimiter sets the field separator byte.
func (o *Options) WithDelimiter(delimiter byte) *Options {
	o.Delimiter = delimiter
	return o
}

// WithHasHeader declares whether the first row carries column names.
func (o *Options) WithHasHeader(hasHeader bool) *Options {
	o.HasHeader = hasHeader
	return o
}

// WithSchemaInferMaxRecords caps the schema-inference sample.
func (o *Options) WithSchemaInferMaxRecords(n int) *Options {
	o.SchemaInferMaxRecords = n
	return o
}

// WithBatchSize sets the number of rows per produced batch.
func (o *Options) WithBatchSize(n int) *Options {
	o.BatchSize = n
	return o
}

// WithFileExtension sets the extension used to filter directory listings.
func (o *Options) WithFileExtension(ext string) *Options {
	o.FileExtension = ext
	return o
}

// WithGeometryFromWKT declares that the named column holds WKT text to be
// decoded as the given geometry type.
func (o *Options) WithGeometryFromWKT(column string, typ schema.GeometryType) *Options {
	o.GeometryColumns = append(o.GeometryColumns, GeometryOverride{Column: column, Type: typ})
	return o
}
