package geojson

import (
	"encoding/json"
	"io"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	orbjson "github.com/paulmach/orb/geojson"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/geom"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// Writer serializes Arrow record batches as GeoJSON: a single
// FeatureCollection document by default, or newline-delimited Features
// when the options request sequence output. Null scalar cells become null
// properties; a null geometry cell becomes a null feature geometry.
type Writer struct {
	w       io.Writer
	schema  *schema.Schema
	opts    *Options
	context string

	started bool
	rows    int64
}

// NewWriter creates a batch writer targeting w.
func NewWriter(w io.Writer, s *schema.Schema, opts *Options, context string) *Writer {
	return &Writer{w: w, schema: s, opts: opts, context: context}
}

// Write serializes one batch. The batch's column count must match the
// writer's schema.
func (w *Writer) Write(rec arrow.Record) error {
	for r := 0; r < int(rec.NumRows()); r++ {
		feature, err := w.buildFeature(rec, r)
		if err != nil {
			return err
		}
		data, err := json.Marshal(feature)
		if err != nil {
			return geoerrors.Otherf("failed to encode GeoJSON feature: %v", err)
		}
		if err := w.writeFeature(data); err != nil {
			return err
		}
		w.rows++
	}
	return nil
}

func (w *Writer) writeFeature(data []byte) error {
	var parts []byte
	if w.opts.WriteSequence {
		parts = append(parts, data...)
		parts = append(parts, '\n')
	} else {
		if !w.started {
			parts = append(parts, []byte(`{"type":"FeatureCollection","features":[`)...)
		} else {
			parts = append(parts, ',')
		}
		parts = append(parts, data...)
	}
	w.started = true
	if _, err := w.w.Write(parts); err != nil {
		return geoerrors.Io(err, w.context)
	}
	return nil
}

func (w *Writer) buildFeature(rec arrow.Record, row int) (map[string]any, error) {
	properties := make(map[string]any)
	var geometry any

	for c := 0; c < w.schema.Len(); c++ {
		field := w.schema.Field(c)
		col := rec.Column(c)

		if field.IsGeometry() {
			if col.IsNull(row) {
				continue
			}
			g, err := geom.DecodeWKB(col.(*array.Binary).Value(row))
			if err != nil {
				return nil, err
			}
			geometry = orbjson.NewGeometry(g)
			continue
		}

		if col.IsNull(row) {
			properties[field.Name] = nil
			continue
		}
		switch field.Scalar {
		case schema.Boolean:
			properties[field.Name] = col.(*array.Boolean).Value(row)
		case schema.Int64:
			properties[field.Name] = col.(*array.Int64).Value(row)
		case schema.Float64:
			properties[field.Name] = col.(*array.Float64).Value(row)
		default:
			properties[field.Name] = col.(*array.String).Value(row)
		}
	}

	return map[string]any{
		"type":       "Feature",
		"geometry":   geometry,
		"properties": properties,
	}, nil
}

// Flush finalizes the document and returns the total row count written.
func (w *Writer) Flush() (int64, error) {
	if !w.opts.WriteSequence {
		closing := []byte("]}")
		if !w.started {
			closing = []byte(`{"type":"FeatureCollection","features":[]}`)
		}
		if _, err := w.w.Write(closing); err != nil {
			return 0, geoerrors.Io(err, w.context)
		}
		w.started = true
	}
	return w.rows, nil
}
