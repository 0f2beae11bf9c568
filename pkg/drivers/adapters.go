package drivers

import (
	"bytes"
	"io"

	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/geoyogesh/GeoETL/pkg/batch"
	"github.com/geoyogesh/GeoETL/pkg/formats"
	"github.com/geoyogesh/GeoETL/pkg/formats/csv"
	"github.com/geoyogesh/GeoETL/pkg/formats/geojson"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// csvReader adapts the csv package to the Reader capability. Every method
// rejects options of another format at the dispatch boundary.
type csvReader struct{}

func (csvReader) Extension(opts formats.Options) (string, error) {
	o, ok := opts.(*csv.Options)
	if !ok {
		return "", optionsError("CSV", opts)
	}
	return o.FileExtension, nil
}

func (csvReader) Infer(data []byte, opts formats.Options, context string) (*schema.Schema, error) {
	o, ok := opts.(*csv.Options)
	if !ok {
		return nil, optionsError("CSV", opts)
	}
	return csv.Infer(bytes.NewReader(data), o, context)
}

func (csvReader) Open(alloc memory.Allocator, s *schema.Schema, data []byte, opts formats.Options, projection []int, context string) (batch.Stream, error) {
	o, ok := opts.(*csv.Options)
	if !ok {
		return nil, optionsError("CSV", opts)
	}
	return csv.NewStream(alloc, s, io.NopCloser(bytes.NewReader(data)), o, projection, context)
}

type csvWriter struct{}

func (csvWriter) Create(w io.Writer, s *schema.Schema, opts formats.Options, context string) (BatchWriter, error) {
	o, ok := opts.(*csv.Options)
	if !ok {
		return nil, optionsError("CSV", opts)
	}
	return csv.NewWriter(w, s, o, context), nil
}

// geojsonReader adapts the geojson package to the Reader capability.
type geojsonReader struct{}

func (geojsonReader) Extension(opts formats.Options) (string, error) {
	o, ok := opts.(*geojson.Options)
	if !ok {
		return "", optionsError("GeoJSON", opts)
	}
	return o.FileExtension, nil
}

func (geojsonReader) Infer(data []byte, opts formats.Options, context string) (*schema.Schema, error) {
	o, ok := opts.(*geojson.Options)
	if !ok {
		return nil, optionsError("GeoJSON", opts)
	}
	return geojson.Infer(data, o, context)
}

func (geojsonReader) Open(alloc memory.Allocator, s *schema.Schema, data []byte, opts formats.Options, projection []int, context string) (batch.Stream, error) {
	o, ok := opts.(*geojson.Options)
	if !ok {
		return nil, optionsError("GeoJSON", opts)
	}
	return geojson.NewStream(alloc, s, data, o, projection, context)
}

type geojsonWriter struct{}

func (geojsonWriter) Create(w io.Writer, s *schema.Schema, opts formats.Options, context string) (BatchWriter, error) {
	o, ok := opts.(*geojson.Options)
	if !ok {
		return nil, optionsError("GeoJSON", opts)
	}
	return geojson.NewWriter(w, s, o, context), nil
}
