// Package geom converts textual geometry representations (WKT strings,
// GeoJSON geometry objects) into orb geometries and, in bulk, into typed
// Arrow geometry columns encoded as WKB.
package geom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"
	orbjson "github.com/paulmach/orb/geojson"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// DecodeWKT parses a Well-Known-Text geometry. Input is trimmed first;
// empty or whitespace-only text is a null cell, returned as (nil, nil).
func DecodeWKT(s string) (orb.Geometry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, geoerrors.Parse(fmt.Sprintf("invalid WKT geometry: %v", err), "")
	}
	return g, nil
}

// DecodeGeoJSON parses a GeoJSON geometry object.
func DecodeGeoJSON(raw json.RawMessage) (orb.Geometry, error) {
	g, err := orbjson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, geoerrors.Parse(fmt.Sprintf("invalid GeoJSON geometry: %v", err), "")
	}
	return g.Geometry(), nil
}

// EncodeWKT renders a geometry as Well-Known Text.
func EncodeWKT(g orb.Geometry) string {
	return wkt.MarshalString(g)
}

// EncodeWKB serializes a geometry to Well-Known Binary, the cell encoding
// used inside Arrow geometry columns.
func EncodeWKB(g orb.Geometry) ([]byte, error) {
	data, err := wkb.Marshal(g)
	if err != nil {
		return nil, geoerrors.Otherf("encoding geometry to WKB: %v", err)
	}
	return data, nil
}

// DecodeWKB deserializes one geometry cell.
func DecodeWKB(data []byte) (orb.Geometry, error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, geoerrors.Parse(fmt.Sprintf("invalid WKB geometry: %v", err), "")
	}
	return g, nil
}

// KindOf maps a parsed geometry to its schema kind. Collections map to the
// mixed kind.
func KindOf(g orb.Geometry) schema.GeometryKind {
	switch g.(type) {
	case orb.Point:
		return schema.Point
	case orb.LineString:
		return schema.LineString
	case orb.Ring, orb.Polygon, orb.Bound:
		return schema.Polygon
	case orb.MultiPoint:
		return schema.MultiPoint
	case orb.MultiLineString:
		return schema.MultiLineString
	case orb.MultiPolygon:
		return schema.MultiPolygon
	default:
		return schema.GeometryMixed
	}
}

// Validate rejects a geometry that is incompatible with the declared column
// type. The mixed kind accepts everything; nil (null cell) always passes.
func Validate(g orb.Geometry, target schema.GeometryType) error {
	if g == nil || target.Kind == schema.GeometryMixed {
		return nil
	}
	if kind := KindOf(g); kind != target.Kind {
		return geoerrors.Parse(fmt.Sprintf(
			"geometry kind %s is incompatible with declared kind %s", kind, target.Kind), "")
	}
	return nil
}
