package geom

import (
	"fmt"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/paulmach/orb"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// BuildColumnFromWKT converts a window of WKT cells into a WKB-encoded
// Binary array. A nil or empty cell becomes a null; a single unparseable or
// type-incompatible cell fails the whole column build with a Parse error
// naming the column. startRecord is the 1-based record number of the first
// cell (0 when unknown) and is used for error positions only.
func BuildColumnFromWKT(alloc memory.Allocator, column string, target schema.GeometryType, cells []*string, startRecord uint64) (arrow.Array, error) {
	builder := array.NewBinaryBuilder(alloc, arrow.BinaryTypes.Binary)
	defer builder.Release()

	for i, cell := range cells {
		if cell == nil {
			builder.AppendNull()
			continue
		}
		g, err := DecodeWKT(*cell)
		if err != nil {
			return nil, columnError(err, column, startRecord, i)
		}
		if g == nil {
			builder.AppendNull()
			continue
		}
		if err := Validate(g, target); err != nil {
			return nil, columnError(err, column, startRecord, i)
		}
		if err := appendWKB(builder, g); err != nil {
			return nil, err
		}
	}
	return builder.NewArray(), nil
}

// BuildColumnFromGeometries converts pre-parsed geometries (the GeoJSON
// path) into a WKB-encoded Binary array under the same contract as
// BuildColumnFromWKT.
func BuildColumnFromGeometries(alloc memory.Allocator, column string, target schema.GeometryType, geoms []orb.Geometry, startRecord uint64) (arrow.Array, error) {
	builder := array.NewBinaryBuilder(alloc, arrow.BinaryTypes.Binary)
	defer builder.Release()

	for i, g := range geoms {
		if g == nil {
			builder.AppendNull()
			continue
		}
		if err := Validate(g, target); err != nil {
			return nil, columnError(err, column, startRecord, i)
		}
		if err := appendWKB(builder, g); err != nil {
			return nil, err
		}
	}
	return builder.NewArray(), nil
}

func appendWKB(builder *array.BinaryBuilder, g orb.Geometry) error {
	data, err := EncodeWKB(g)
	if err != nil {
		return err
	}
	builder.Append(data)
	return nil
}

func columnError(err error, column string, startRecord uint64, offset int) error {
	msg := fmt.Sprintf("failed to decode geometry for column '%s': %v", column, err)
	if startRecord > 0 {
		pos := geoerrors.SourcePosition{Record: startRecord + uint64(offset)}
		return geoerrors.ParseAt(msg, pos, fmt.Sprintf("geometry column '%s'", column))
	}
	return geoerrors.Parse(msg, fmt.Sprintf("geometry column '%s'", column))
}
