package csv

import (
	"io"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/geoyogesh/GeoETL/pkg/batch"
	"github.com/geoyogesh/GeoETL/pkg/geom"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// stream assembles fixed-size batches from the tokenizer. It owns its
// decoder state and record window exclusively and is not safe for
// concurrent consumers.
type stream struct {
	alloc       memory.Allocator
	schema      *schema.Schema
	arrowSchema *arrow.Schema
	projection  []int
	rdr         *reader
	src         io.Closer
	batchSize   int

	rec    arrow.Record
	err    error
	closed bool
	// 1-based number of the next data record, for geometry error positions.
	nextRecord uint64
}

// NewStream opens a batch stream over raw CSV bytes. The schema must come
// from Infer with the same options. The header row, when declared, is
// consumed and discarded. Projection indices are resolved into schema
// order; batchSize rows are decoded per batch.
func NewStream(alloc memory.Allocator, s *schema.Schema, r io.ReadCloser, opts *Options, projection []int, context string) (batch.Stream, error) {
	proj := batch.NormalizeProjection(s, projection)
	projected, err := s.Project(proj)
	if err != nil {
		return nil, err
	}

	rdr := newReader(r, opts.Delimiter, context)
	if opts.HasHeader {
		if _, err := rdr.Read(); err != nil && err != io.EOF {
			r.Close()
			return nil, err
		}
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = batch.DefaultSize
	}

	return &stream{
		alloc:       alloc,
		schema:      s,
		arrowSchema: projected.ToArrow(),
		projection:  proj,
		rdr:         rdr,
		src:         r,
		batchSize:   batchSize,
		nextRecord:  1,
	}, nil
}

func (st *stream) Next() bool {
	if st.closed || st.err != nil {
		return false
	}

	window := make([][]string, 0, st.batchSize)
	for len(window) < st.batchSize {
		record, err := st.rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			st.err = err
			return false
		}
		window = append(window, record)
	}
	if len(window) == 0 {
		return false
	}
	startRecord := st.nextRecord
	st.nextRecord += uint64(len(window))

	columns := make([]arrow.Array, 0, len(st.projection))
	defer func() {
		for _, col := range columns {
			col.Release()
		}
	}()

	for _, idx := range st.projection {
		field := st.schema.Field(idx)
		col, err := st.buildColumn(field, idx, window, startRecord)
		if err != nil {
			st.err = err
			return false
		}
		columns = append(columns, col)
	}

	st.rec = array.NewRecord(st.arrowSchema, columns, int64(len(window)))
	return true
}

func (st *stream) buildColumn(field schema.Field, idx int, window [][]string, startRecord uint64) (arrow.Array, error) {
	if field.IsGeometry() {
		cells := make([]*string, len(window))
		for row, record := range window {
			trimmed := strings.TrimSpace(record[idx])
			if trimmed != "" {
				cells[row] = &trimmed
			}
		}
		return geom.BuildColumnFromWKT(st.alloc, field.Name, *field.Geometry, cells, startRecord)
	}

	builder := batch.NewScalarBuilder(st.alloc, field.Scalar)
	defer builder.Release()
	for _, record := range window {
		batch.AppendScalar(builder, field.Scalar, &record[idx])
	}
	return builder.NewArray(), nil
}

func (st *stream) Record() arrow.Record { return st.rec }

func (st *stream) Err() error { return st.err }

func (st *stream) Close() error {
	if st.closed {
		return nil
	}
	st.closed = true
	return st.src.Close()
}
