// Package batch defines the pull-driven stream of columnar record batches
// produced by the format decoders, plus the shared scalar coercion rules.
package batch

import (
	"sort"
	"strconv"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// DefaultSize is the default number of rows per batch.
const DefaultSize = 8192

// Stream yields Arrow records lazily. It is finite, single-consumer and not
// restartable; re-scanning a source requires opening a fresh stream.
//
// The usage pattern follows Arrow's RecordReader:
//
//	for stream.Next() {
//	    rec := stream.Record() // caller owns rec; release when done
//	    ...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// Closing a stream before exhaustion releases its byte-stream handle and
// buffered records without further decode work.
type Stream interface {
	// Next advances to the next batch, returning false at end of stream or
	// on error.
	Next() bool
	// Record returns the current batch. Ownership transfers to the caller;
	// the stream keeps no reference.
	Record() arrow.Record
	// Err returns the error that terminated the stream, if any.
	Err() error
	// Close releases underlying resources. Safe to call more than once.
	Close() error
}

// AppendScalar coerces one raw text cell onto a column builder. A nil cell
// is a null. A cell that fails to parse as the column's type also becomes a
// null: scalar type mismatches are tolerated as missing values, unlike
// geometry cells. String columns receive the text verbatim.
func AppendScalar(builder array.Builder, typ schema.ScalarType, cell *string) {
	if cell == nil {
		builder.AppendNull()
		return
	}
	switch typ {
	case schema.Boolean:
		if v, err := strconv.ParseBool(*cell); err == nil {
			builder.(*array.BooleanBuilder).Append(v)
		} else {
			builder.AppendNull()
		}
	case schema.Int64:
		if v, err := strconv.ParseInt(*cell, 10, 64); err == nil {
			builder.(*array.Int64Builder).Append(v)
		} else {
			builder.AppendNull()
		}
	case schema.Float64:
		if v, err := strconv.ParseFloat(*cell, 64); err == nil {
			builder.(*array.Float64Builder).Append(v)
		} else {
			builder.AppendNull()
		}
	default:
		builder.(*array.StringBuilder).Append(*cell)
	}
}

// NewScalarBuilder creates the Arrow builder matching a scalar type.
func NewScalarBuilder(alloc memory.Allocator, typ schema.ScalarType) array.Builder {
	switch typ {
	case schema.Boolean:
		return array.NewBooleanBuilder(alloc)
	case schema.Int64:
		return array.NewInt64Builder(alloc)
	case schema.Float64:
		return array.NewFloat64Builder(alloc)
	default:
		return array.NewStringBuilder(alloc)
	}
}

// NormalizeProjection resolves a projection against a schema: indices are
// deduplicated and sorted into schema order, so batch column order follows
// the schema rather than the projection's input order. A nil projection
// selects every column.
func NormalizeProjection(s *schema.Schema, projection []int) []int {
	if projection == nil {
		all := make([]int, s.Len())
		for i := range all {
			all[i] = i
		}
		return all
	}
	seen := make(map[int]bool, len(projection))
	out := make([]int, 0, len(projection))
	for _, idx := range projection {
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out
}
