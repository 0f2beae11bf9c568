package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/geom"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// Writer serializes Arrow record batches as delimited text. Geometry
// columns are rendered as WKT; nulls render as empty cells. The header row
// is written before the first batch when the options declare one.
type Writer struct {
	cw      *stdcsv.Writer
	schema  *schema.Schema
	context string

	wroteHeader bool
	rows        int64
}

// NewWriter creates a batch writer targeting w.
func NewWriter(w io.Writer, s *schema.Schema, opts *Options, context string) *Writer {
	cw := stdcsv.NewWriter(w)
	cw.Comma = rune(opts.Delimiter)
	return &Writer{
		cw:          cw,
		schema:      s,
		context:     context,
		wroteHeader: !opts.HasHeader,
	}
}

// Write serializes one batch. The batch's column count must match the
// writer's schema.
func (w *Writer) Write(rec arrow.Record) error {
	if !w.wroteHeader {
		names := make([]string, w.schema.Len())
		for i, f := range w.schema.Fields() {
			names[i] = f.Name
		}
		if err := w.cw.Write(names); err != nil {
			return geoerrors.Io(err, w.context)
		}
		w.wroteHeader = true
	}

	row := make([]string, w.schema.Len())
	for r := 0; r < int(rec.NumRows()); r++ {
		for c := 0; c < w.schema.Len(); c++ {
			cell, err := w.formatCell(w.schema.Field(c), rec.Column(c), r)
			if err != nil {
				return err
			}
			row[c] = cell
		}
		if err := w.cw.Write(row); err != nil {
			return geoerrors.Io(err, w.context)
		}
	}
	w.rows += rec.NumRows()
	return nil
}

func (w *Writer) formatCell(field schema.Field, col arrow.Array, row int) (string, error) {
	if col.IsNull(row) {
		return "", nil
	}
	if field.IsGeometry() {
		g, err := geom.DecodeWKB(col.(*array.Binary).Value(row))
		if err != nil {
			var gerr *geoerrors.Error
			if errors.As(err, &gerr) {
				return "", gerr.WithContext(w.context)
			}
			return "", err
		}
		return geom.EncodeWKT(g), nil
	}
	switch field.Scalar {
	case schema.Boolean:
		return strconv.FormatBool(col.(*array.Boolean).Value(row)), nil
	case schema.Int64:
		return strconv.FormatInt(col.(*array.Int64).Value(row), 10), nil
	case schema.Float64:
		return strconv.FormatFloat(col.(*array.Float64).Value(row), 'g', -1, 64), nil
	default:
		return col.(*array.String).Value(row), nil
	}
}

// Flush commits buffered output and returns the total row count written.
func (w *Writer) Flush() (int64, error) {
	w.cw.Flush()
	if err := w.cw.Error(); err != nil {
		return 0, geoerrors.Io(err, w.context)
	}
	return w.rows, nil
}
