package geojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/geom"
)

// FeatureRecord is one parsed feature with materialized properties and an
// optional geometry. Property numbers are json.Number so integer-valued
// inputs stay distinguishable from floats during inference.
type FeatureRecord struct {
	Properties map[string]any
	Geometry   orb.Geometry
}

type featureDoc struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
	Features   []featureDoc    `json:"features"`
}

// ParseBytes decodes raw bytes into feature records. The whole input is
// first tried as one JSON document (FeatureCollection, Feature, or bare
// Geometry); if that fails, it is reinterpreted as newline-delimited JSON
// where each non-blank line is one of the same three shapes. When both
// interpretations fail, the error carries both underlying messages. A
// positive limit truncates the result. Zero parsed features is always an
// error, never an empty dataset.
func ParseBytes(data []byte, limit int, context string) ([]FeatureRecord, error) {
	records, docErr := parseDocument(data)
	if docErr == nil {
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}
		return records, nil
	}

	records, seqErr := parseSequence(data, limit, context)
	if seqErr == nil {
		return records, nil
	}
	return nil, geoerrors.Parse(fmt.Sprintf(
		"failed to parse GeoJSON as FeatureCollection (%s); also failed to parse as GeoJSON sequence: %s",
		docErr, seqErr), context)
}

// parseDocument decodes one JSON document into feature records.
func parseDocument(data []byte) ([]FeatureRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc featureDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		// Trailing values mean this is a sequence, not one document.
		return nil, fmt.Errorf("unexpected data after JSON document")
	}

	switch doc.Type {
	case "FeatureCollection":
		records := make([]FeatureRecord, 0, len(doc.Features))
		for _, feature := range doc.Features {
			record, err := featureToRecord(feature)
			if err != nil {
				return nil, err
			}
			records = append(records, record)
		}
		return records, nil
	case "Feature":
		record, err := featureToRecord(doc)
		if err != nil {
			return nil, err
		}
		return []FeatureRecord{record}, nil
	case "Point", "LineString", "Polygon", "MultiPoint", "MultiLineString", "MultiPolygon", "GeometryCollection":
		// A bare geometry becomes a single feature with empty properties.
		g, err := geom.DecodeGeoJSON(data)
		if err != nil {
			return nil, err
		}
		return []FeatureRecord{{Properties: map[string]any{}, Geometry: g}}, nil
	default:
		return nil, fmt.Errorf("unsupported GeoJSON type %q", doc.Type)
	}
}

func featureToRecord(doc featureDoc) (FeatureRecord, error) {
	record := FeatureRecord{Properties: map[string]any{}}

	if len(doc.Properties) > 0 && !bytes.Equal(doc.Properties, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(doc.Properties))
		dec.UseNumber()
		if err := dec.Decode(&record.Properties); err != nil {
			return FeatureRecord{}, fmt.Errorf("invalid feature properties: %w", err)
		}
	}

	if len(doc.Geometry) > 0 && !bytes.Equal(doc.Geometry, []byte("null")) {
		g, err := geom.DecodeGeoJSON(doc.Geometry)
		if err != nil {
			return FeatureRecord{}, err
		}
		record.Geometry = g
	}
	return record, nil
}

// parseSequence decodes newline-delimited GeoJSON, one document per
// non-blank line.
func parseSequence(data []byte, limit int, context string) ([]FeatureRecord, error) {
	var records []FeatureRecord
	for lineIdx, rawLine := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(rawLine))
		if line == "" {
			continue
		}

		parsed, err := parseDocument([]byte(line))
		if err != nil {
			pos := geoerrors.SourcePosition{Line: uint64(lineIdx + 1)}
			return nil, geoerrors.ParseAt(fmt.Sprintf("failed to parse GeoJSON feature: %s", err), pos, context)
		}
		records = append(records, parsed...)

		if limit > 0 && len(records) >= limit {
			records = records[:limit]
			break
		}
	}

	if len(records) == 0 {
		return nil, geoerrors.Parse("no GeoJSON features found", context)
	}
	return records, nil
}
