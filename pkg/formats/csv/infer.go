package csv

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// typeScanLimit caps how many sampled values each column inspects. The
// sample itself may be larger; values past this limit never influence the
// inferred type.
const typeScanLimit = 100

// Infer derives a column schema by sampling a prefix of the input.
//
// With a header, column names come from the header row and up to
// Options.SchemaInferMaxRecords data records are sampled. Without one,
// names are synthesized as column_0..column_{n-1} from the first record's
// width, and that record joins the sample only when the cap is positive.
// Geometry overrides then replace the matching scalar columns.
func Infer(r io.Reader, opts *Options, context string) (*schema.Schema, error) {
	rdr := newReader(r, opts.Delimiter, context)

	first, err := rdr.Read()
	if err == io.EOF {
		return nil, geoerrors.SchemaInference("cannot infer schema from empty file", context)
	}
	if err != nil {
		return nil, err
	}

	var names []string
	var samples [][]string
	if opts.HasHeader {
		names = first
	} else {
		names = make([]string, len(first))
		for i := range first {
			names[i] = fmt.Sprintf("column_%d", i)
		}
		if opts.SchemaInferMaxRecords > 0 {
			samples = append(samples, first)
		}
	}
	if len(names) == 0 {
		return nil, geoerrors.SchemaInference("cannot infer schema from empty file", context)
	}

	for len(samples) < opts.SchemaInferMaxRecords {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		samples = append(samples, record)
	}

	fields := make([]schema.Field, len(names))
	for i, name := range names {
		fields[i] = schema.Field{
			Name:     name,
			Scalar:   inferColumnType(samples, i),
			Nullable: true,
		}
	}

	for _, override := range opts.GeometryColumns {
		applied := false
		for i := range fields {
			if fields[i].Name == override.Column {
				typ := override.Type
				fields[i].Geometry = &typ
				applied = true
				break
			}
		}
		if !applied {
			return nil, geoerrors.SchemaInference(
				fmt.Sprintf("geometry column '%s' not found in inferred schema", override.Column), context)
		}
	}

	s, err := schema.New(fields)
	if err != nil {
		return nil, geoerrors.SchemaInference(err.Error(), context)
	}
	return s, nil
}

// inferColumnType resolves one column's scalar type from sampled values.
// Only the first typeScanLimit values are inspected; values are trimmed and
// empty ones skipped. Priority: boolean when only boolean literals were
// seen, then float, then integer, then string. A value that parses as a
// number without a decimal point counts as an integer candidate, so
// exponent forms like "1e5" widen to Int64, not Float64.
func inferColumnType(samples [][]string, col int) schema.ScalarType {
	var hasBool, hasInt, hasFloat bool
	totalValues := 0

	limit := len(samples)
	if limit > typeScanLimit {
		limit = typeScanLimit
	}
	for _, record := range samples[:limit] {
		if col >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[col])
		if value == "" {
			continue
		}
		totalValues++

		if strings.EqualFold(value, "true") || strings.EqualFold(value, "false") {
			hasBool = true
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			if strings.Contains(value, ".") {
				hasFloat = true
			} else {
				hasInt = true
			}
		}
	}

	switch {
	case totalValues == 0:
		return schema.String
	case hasBool && !hasInt && !hasFloat:
		return schema.Boolean
	case hasFloat:
		return schema.Float64
	case hasInt:
		return schema.Int64
	default:
		return schema.String
	}
}
