// Package geojson decodes GeoJSON documents into typed columnar batches. A
// document may be a FeatureCollection, a single Feature, a bare Geometry,
// or a newline-delimited sequence of any of those shapes. Property types
// are inferred per name over a sampled prefix; geometries land in one
// configurable geometry column.
package geojson

import (
	"github.com/geoyogesh/GeoETL/pkg/batch"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// Options configures GeoJSON reading and writing.
type Options struct {
	// SchemaInferMaxFeatures caps the number of features sampled during
	// schema inference. Zero or negative means unlimited.
	SchemaInferMaxFeatures int
	// BatchSize is the number of rows per produced batch.
	BatchSize int
	// FileExtension filters directory listings when a dataset URL names a
	// directory rather than a single object.
	FileExtension string
	// GeometryColumn names the geometry column in the output schema.
	GeometryColumn string
	// GeometryType is the declared type of the geometry column.
	GeometryType schema.GeometryType
	// WriteSequence emits newline-delimited Features instead of a single
	// FeatureCollection document.
	WriteSequence bool
}

// DefaultOptions returns the standard GeoJSON configuration: 1000-feature
// inference sample, 8192-row batches, a mixed-type "geometry" column.
func DefaultOptions() *Options {
	return &Options{
		SchemaInferMaxFeatures: 1000,
		BatchSize:              batch.DefaultSize,
		FileExtension:          ".geojson",
		GeometryColumn:         "geometry",
		GeometryType:           schema.Mixed(),
	}
}

// Format reports the driver short name.
func (o *Options) Format() string { return "geojson" }

// WithSchemaInferMaxFeatures caps the schema-inference sample.
func (o *Options) WithSchemaInferMaxFeatures(n int) *Options {
	o.SchemaInferMaxFeatures = n
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

// WithGeometryColumnName renames the geometry column.
func (o *Options) WithGeometryColumnName(name string) *Options {
	o.GeometryColumn = name
	return o
}

// WithGeometryType declares the geometry column's type.
func (o *Options) WithGeometryType(typ schema.GeometryType) *Options {
	o.GeometryType = typ
	return o
}

// WithWriteSequence switches the writer to newline-delimited output.
func (o *Options) WithWriteSequence(sequence bool) *Options {
	o.WriteSequence = sequence
	return o
}
