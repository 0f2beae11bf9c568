// Package schema defines the typed column schema produced by inference and
// consumed by the batch builders. A column is either scalar-typed or
// geometry-typed; the distinction is a first-class part of each field rather
// than a metadata annotation.
package schema

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
)

// ScalarType enumerates the scalar column types GeoETL infers.
type ScalarType uint8

const (
	Boolean ScalarType = iota
	Int64
	Float64
	String
)

func (t ScalarType) String() string {
	switch t {
	case Boolean:
		return "Boolean"
	case Int64:
		return "Int64"
	case Float64:
		return "Float64"
	default:
		return "String"
	}
}

// Arrow returns the Arrow data type backing this scalar type.
func (t ScalarType) Arrow() arrow.DataType {
	switch t {
	case Boolean:
		return arrow.FixedWidthTypes.Boolean
	case Int64:
		return arrow.PrimitiveTypes.Int64
	case Float64:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// GeometryKind enumerates the geometry column kinds.
type GeometryKind uint8

const (
	// GeometryMixed accepts any geometry kind ("Geometry" in user options).
	GeometryMixed GeometryKind = iota
	Point
	LineString
	Polygon
	MultiPoint
	MultiLineString
	MultiPolygon
)

func (k GeometryKind) String() string {
	switch k {
	case Point:
		return "Point"
	case LineString:
		return "LineString"
	case Polygon:
		return "Polygon"
	case MultiPoint:
		return "MultiPoint"
	case MultiLineString:
		return "MultiLineString"
	case MultiPolygon:
		return "MultiPolygon"
	default:
		return "Geometry"
	}
}

// ParseGeometryKind parses a user-supplied geometry kind name.
func ParseGeometryKind(s string) (GeometryKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "geometry":
		return GeometryMixed, nil
	case "point":
		return Point, nil
	case "linestring":
		return LineString, nil
	case "polygon":
		return Polygon, nil
	case "multipoint":
		return MultiPoint, nil
	case "multilinestring":
		return MultiLineString, nil
	case "multipolygon":
		return MultiPolygon, nil
	}
	return GeometryMixed, geoerrors.Otherf(
		"unsupported geometry type %q. Supported types: Geometry (mixed), Point, LineString, Polygon, MultiPoint, MultiLineString, MultiPolygon", s)
}

// Dimension is the coordinate dimensionality of a geometry column.
type Dimension uint8

// DimXY is the only supported dimensionality; no z/m coordinates.
const DimXY Dimension = iota

func (d Dimension) String() string { return "XY" }

// GeometryType describes a geometry column: its kind and dimensionality.
type GeometryType struct {
	Kind GeometryKind
	Dim  Dimension
}

// Mixed returns the auto-detecting geometry type used as the default for
// GeoJSON geometry columns and WKT overrides.
func Mixed() GeometryType { return GeometryType{Kind: GeometryMixed, Dim: DimXY} }

func (g GeometryType) String() string {
	return fmt.Sprintf("%s (%s)", g.Kind, g.Dim)
}

// Arrow field metadata identifying geometry columns in converted schemas.
const (
	ExtensionKey     = "ARROW:extension:name"
	WKBExtensionName = "geoarrow.wkb"
	geometryKindKey  = "geoetl:geometry"
)

// Field is one schema entry: a name plus either a scalar or a geometry type.
type Field struct {
	Name     string
	Scalar   ScalarType
	Geometry *GeometryType
	Nullable bool
}

// IsGeometry reports whether the field holds geometries.
func (f Field) IsGeometry() bool { return f.Geometry != nil }

// TypeString renders the field type for display.
func (f Field) TypeString() string {
	if f.IsGeometry() {
		return f.Geometry.String()
	}
	return f.Scalar.String()
}

func (f Field) arrow() arrow.Field {
	if f.IsGeometry() {
		return arrow.Field{
			Name:     f.Name,
			Type:     arrow.BinaryTypes.Binary,
			Nullable: f.Nullable,
			Metadata: arrow.NewMetadata(
				[]string{ExtensionKey, geometryKindKey},
				[]string{WKBExtensionName, f.Geometry.Kind.String()},
			),
		}
	}
	return arrow.Field{Name: f.Name, Type: f.Scalar.Arrow(), Nullable: f.Nullable}
}

// Schema is an ordered, immutable sequence of uniquely named fields. Order
// determines batch column order.
type Schema struct {
	fields []Field
	index  map[string]int
}

// New builds a schema, rejecting duplicate field names.
func New(fields []Field) (*Schema, error) {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if _, dup := index[f.Name]; dup {
			return nil, geoerrors.SchemaInference(
				fmt.Sprintf("duplicate column name %q", f.Name), "")
		}
		index[f.Name] = i
	}
	return &Schema{fields: append([]Field(nil), fields...), index: index}, nil
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Field returns the field at position i.
func (s *Schema) Field(i int) Field { return s.fields[i] }

// Fields returns a copy of the field list.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// FieldIndex returns the position of the named field.
func (s *Schema) FieldIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Project returns a schema restricted to the given indices, reordered into
// schema order regardless of the order indices were supplied in.
func (s *Schema) Project(indices []int) (*Schema, error) {
	seen := make(map[int]bool, len(indices))
	picked := make([]Field, 0, len(indices))
	for i := range s.fields {
		for _, idx := range indices {
			if idx == i {
				if !seen[i] {
					picked = append(picked, s.fields[i])
					seen[i] = true
				}
				break
			}
		}
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(s.fields) {
			return nil, geoerrors.Otherf("projection index %d out of range for %d columns", idx, len(s.fields))
		}
	}
	return New(picked)
}

// ToArrow converts the schema to an Arrow schema. Geometry fields become
// Binary columns holding WKB, tagged with the geoarrow.wkb extension name.
func (s *Schema) ToArrow() *arrow.Schema {
	fields := make([]arrow.Field, len(s.fields))
	for i, f := range s.fields {
		fields[i] = f.arrow()
	}
	return arrow.NewSchema(fields, nil)
}

// Equal reports structural equality with another schema.
func (s *Schema) Equal(other *Schema) bool {
	if s.Len() != other.Len() {
		return false
	}
	for i, f := range s.fields {
		o := other.fields[i]
		if f.Name != o.Name || f.Nullable != o.Nullable || f.IsGeometry() != o.IsGeometry() {
			return false
		}
		if f.IsGeometry() {
			if *f.Geometry != *o.Geometry {
				return false
			}
		} else if f.Scalar != o.Scalar {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	parts := make([]string, len(s.fields))
	for i, f := range s.fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.TypeString())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
