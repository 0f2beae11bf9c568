package geojson

import (
	"encoding/json"
	"strconv"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/paulmach/orb"

	"github.com/geoyogesh/GeoETL/pkg/batch"
	"github.com/geoyogesh/GeoETL/pkg/geom"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// stream chunks parsed feature records into fixed-size batches. GeoJSON
// documents are parsed whole, so the record window is materialized up
// front and only batch assembly is incremental.
type stream struct {
	alloc       memory.Allocator
	schema      *schema.Schema
	arrowSchema *arrow.Schema
	projection  []int
	records     []FeatureRecord
	batchSize   int

	offset int
	rec    arrow.Record
	err    error
	closed bool
}

// NewStream opens a batch stream over raw GeoJSON bytes. The schema must
// come from Infer with the same options.
func NewStream(alloc memory.Allocator, s *schema.Schema, data []byte, opts *Options, projection []int, context string) (batch.Stream, error) {
	records, err := ParseBytes(data, 0, context)
	if err != nil {
		return nil, err
	}

	proj := batch.NormalizeProjection(s, projection)
	projected, err := s.Project(proj)
	if err != nil {
		return nil, err
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
		records:     records,
		batchSize:   batchSize,
	}, nil
}

func (st *stream) Next() bool {
	if st.closed || st.err != nil || st.offset >= len(st.records) {
		return false
	}

	end := st.offset + st.batchSize
	if end > len(st.records) {
		end = len(st.records)
	}
	window := st.records[st.offset:end]
	startRecord := uint64(st.offset) + 1
	st.offset = end

	columns := make([]arrow.Array, 0, len(st.projection))
	defer func() {
		for _, col := range columns {
			col.Release()
		}
	}()

	for _, idx := range st.projection {
		field := st.schema.Field(idx)
		col, err := st.buildColumn(field, window, startRecord)
		if err != nil {
			st.err = err
			return false
		}
		columns = append(columns, col)
	}

	st.rec = array.NewRecord(st.arrowSchema, columns, int64(len(window)))
	return true
}

func (st *stream) buildColumn(field schema.Field, window []FeatureRecord, startRecord uint64) (arrow.Array, error) {
	if field.IsGeometry() {
		geoms := make([]orb.Geometry, len(window))
		for row, record := range window {
			geoms[row] = record.Geometry
		}
		return geom.BuildColumnFromGeometries(st.alloc, field.Name, *field.Geometry, geoms, startRecord)
	}

	builder := batch.NewScalarBuilder(st.alloc, field.Scalar)
	defer builder.Release()
	for _, record := range window {
		appendProperty(builder, field, record.Properties[field.Name])
	}
	return builder.NewArray(), nil
}

// appendProperty coerces one JSON property value onto a column builder.
// Missing properties and JSON nulls become nulls, as does any value that
// does not fit the column's type. String columns render non-string values
// as their JSON text.
func appendProperty(builder array.Builder, field schema.Field, value any) {
	if value == nil {
		builder.AppendNull()
		return
	}

	switch field.Scalar {
	case schema.Boolean:
		if v, ok := value.(bool); ok {
			builder.(*array.BooleanBuilder).Append(v)
		} else {
			builder.AppendNull()
		}
	case schema.Int64:
		if n, ok := value.(json.Number); ok {
			if v, err := strconv.ParseInt(string(n), 10, 64); err == nil {
				builder.(*array.Int64Builder).Append(v)
				return
			}
		}
		builder.AppendNull()
	case schema.Float64:
		if n, ok := value.(json.Number); ok {
			if v, err := strconv.ParseFloat(string(n), 64); err == nil {
				builder.(*array.Float64Builder).Append(v)
				return
			}
		}
		builder.AppendNull()
	default:
		builder.(*array.StringBuilder).Append(stringifyProperty(value))
	}
}

func stringifyProperty(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func (st *stream) Record() arrow.Record { return st.rec }

func (st *stream) Err() error { return st.err }

func (st *stream) Close() error {
	if st.closed {
		return nil
	}
	st.closed = true
	st.records = nil
	return nil
}
