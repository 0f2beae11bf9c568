package geojson

import (
	"encoding/json"
	"sort"
	"strconv"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// latticeState tracks one property's inferred type across sampled
// features. Widening is monotonic: Null -> Boolean, Null/Int64 -> Int64 or
// Float64 depending on integer-ness, anything incompatible -> Utf8.
// Strings, arrays, and objects widen to Utf8 immediately.
type latticeState uint8

const (
	latticeNull latticeState = iota
	latticeBoolean
	latticeInt64
	latticeFloat64
	latticeUtf8
)

func (s latticeState) update(value any) latticeState {
	switch v := value.(type) {
	case nil:
		return s
	case bool:
		if s == latticeNull || s == latticeBoolean {
			return latticeBoolean
		}
		return latticeUtf8
	case json.Number:
		_, err := strconv.ParseInt(string(v), 10, 64)
		isInt := err == nil
		switch s {
		case latticeNull, latticeInt64:
			if isInt {
				return latticeInt64
			}
			return latticeFloat64
		case latticeFloat64:
			return latticeFloat64
		default:
			return latticeUtf8
		}
	default:
		return latticeUtf8
	}
}

func (s latticeState) scalarType() schema.ScalarType {
	switch s {
	case latticeBoolean:
		return schema.Boolean
	case latticeInt64:
		return schema.Int64
	case latticeFloat64:
		return schema.Float64
	default:
		return schema.String
	}
}

// Infer derives the schema for raw GeoJSON bytes by sampling up to
// Options.SchemaInferMaxFeatures features. Scalar properties appear in
// lexicographic name order followed by the geometry column.
func Infer(data []byte, opts *Options, context string) (*schema.Schema, error) {
	records, err := ParseBytes(data, opts.SchemaInferMaxFeatures, context)
	if err != nil {
		return nil, err
	}
	return InferFromRecords(records, opts, context)
}

// InferFromRecords derives the schema from already-parsed feature records.
func InferFromRecords(records []FeatureRecord, opts *Options, context string) (*schema.Schema, error) {
	inferred := make(map[string]latticeState)
	for _, record := range records {
		for name, value := range record.Properties {
			inferred[name] = inferred[name].update(value)
		}
	}

	names := make([]string, 0, len(inferred))
	for name := range inferred {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]schema.Field, 0, len(names)+1)
	for _, name := range names {
		fields = append(fields, schema.Field{
			Name:     name,
			Scalar:   inferred[name].scalarType(),
			Nullable: true,
		})
	}
	geomType := opts.GeometryType
	fields = append(fields, schema.Field{
		Name:     opts.GeometryColumn,
		Geometry: &geomType,
		Nullable: true,
	})

	s, err := schema.New(fields)
	if err != nil {
		return nil, geoerrors.SchemaInference(err.Error(), context)
	}
	return s, nil
}
