package geojson

import (
	"bytes"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

const featureNYC = `{"type":"Feature","geometry":{"type":"Point","coordinates":[5.0,10.0]},"properties":{"city":"NYC"}}`

func TestParseSingleFeature(t *testing.T) {
	records, err := ParseBytes([]byte(featureNYC), 0, "test.geojson")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "NYC", stringifyProperty(records[0].Properties["city"]))
	require.NotNil(t, records[0].Geometry)
	pt, ok := records[0].Geometry.(orb.Point)
	require.True(t, ok)
	assert.Equal(t, orb.Point{5, 10}, pt)
}

func TestParseFeatureCollection(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[` + featureNYC + `,` +
		`{"type":"Feature","geometry":null,"properties":{"city":"LA"}}]}`
	records, err := ParseBytes([]byte(data), 0, "test.geojson")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Nil(t, records[1].Geometry)
}

func TestParseBareGeometry(t *testing.T) {
	records, err := ParseBytes([]byte(`{"type":"Point","coordinates":[1.0,2.0]}`), 0, "test.geojson")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Properties)
	assert.Equal(t, orb.Point{1, 2}, records[0].Geometry)
}

func TestParseSequence(t *testing.T) {
	data := featureNYC + "\n\n" +
		`{"type":"FeatureCollection","features":[` + featureNYC + `]}` + "\n" +
		`{"type":"Point","coordinates":[0.0,0.0]}` + "\n"
	records, err := ParseBytes([]byte(data), 0, "test.geojson")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestParseLimit(t *testing.T) {
	collection := `{"type":"FeatureCollection","features":[` + featureNYC + `,` + featureNYC + `,` + featureNYC + `]}`
	records, err := ParseBytes([]byte(collection), 2, "test.geojson")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	sequence := strings.Repeat(featureNYC+"\n", 5)
	records, err = ParseBytes([]byte(sequence), 3, "test.geojson")
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestParseCombinedError(t *testing.T) {
	_, err := ParseBytes([]byte("not valid json at all"), 0, "test.geojson")
	require.Error(t, err)
	assert.True(t, geoerrors.IsKind(err, geoerrors.KindParse))
	assert.Contains(t, err.Error(), "failed to parse GeoJSON as FeatureCollection")
	assert.Contains(t, err.Error(), "also failed to parse as GeoJSON sequence")
}

func TestParseEmptyInput(t *testing.T) {
	for _, data := range []string{"", "\n   \n"} {
		_, err := ParseBytes([]byte(data), 0, "test.geojson")
		require.Error(t, err)
		assert.True(t, geoerrors.IsKind(err, geoerrors.KindParse))
	}
}

func TestInferLattice(t *testing.T) {
	tests := []struct {
		name string
		docs []string
		want schema.ScalarType
	}{
		{"booleans", []string{`true`, `false`}, schema.Boolean},
		{"integers", []string{`1`, `2`}, schema.Int64},
		{"integer then float widens", []string{`1`, `2.5`}, schema.Float64},
		{"float then integer stays float", []string{`2.5`, `1`}, schema.Float64},
		{"boolean then number widens to string", []string{`true`, `1`}, schema.String},
		{"strings", []string{`"a"`}, schema.String},
		{"null then integer", []string{`null`, `3`}, schema.Int64},
		{"array widens immediately", []string{`[1,2]`}, schema.String},
		{"object widens immediately", []string{`{"a":1}`}, schema.String},
		{"string stays string despite later booleans", []string{`"x"`, `true`, `false`}, schema.String},
		{"null only", []string{`null`}, schema.String},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lines []string
			for _, doc := range tt.docs {
				lines = append(lines, `{"type":"Feature","geometry":null,"properties":{"v":`+doc+`}}`)
			}
			s, err := Infer([]byte(strings.Join(lines, "\n")), DefaultOptions(), "test.geojson")
			require.NoError(t, err)
			require.Equal(t, 2, s.Len())
			assert.Equal(t, tt.want, s.Field(0).Scalar)
		})
	}
}

func TestInferColumnOrder(t *testing.T) {
	data := `{"type":"Feature","geometry":null,"properties":{"zeta":1,"alpha":"x","mid":true}}`
	s, err := Infer([]byte(data), DefaultOptions(), "test.geojson")
	require.NoError(t, err)

	require.Equal(t, 4, s.Len())
	assert.Equal(t, "alpha", s.Field(0).Name)
	assert.Equal(t, "mid", s.Field(1).Name)
	assert.Equal(t, "zeta", s.Field(2).Name)
	assert.Equal(t, "geometry", s.Field(3).Name)
	require.True(t, s.Field(3).IsGeometry())
	assert.Equal(t, schema.GeometryMixed, s.Field(3).Geometry.Kind)
}

func TestInferCustomGeometryColumn(t *testing.T) {
	opts := DefaultOptions().
		WithGeometryColumnName("geom").
		WithGeometryType(schema.GeometryType{Kind: schema.Point})
	s, err := Infer([]byte(featureNYC), opts, "test.geojson")
	require.NoError(t, err)

	idx, ok := s.FieldIndex("geom")
	require.True(t, ok)
	assert.Equal(t, schema.Point, s.Field(idx).Geometry.Kind)
}

func TestInferSampleCap(t *testing.T) {
	// The float on the fourth line is past the cap and must not widen.
	data := strings.Join([]string{
		`{"type":"Feature","geometry":null,"properties":{"v":1}}`,
		`{"type":"Feature","geometry":null,"properties":{"v":2}}`,
		`{"type":"Feature","geometry":null,"properties":{"v":3}}`,
		`{"type":"Feature","geometry":null,"properties":{"v":4.5}}`,
	}, "\n")

	s, err := Infer([]byte(data), DefaultOptions().WithSchemaInferMaxFeatures(3), "test.geojson")
	require.NoError(t, err)
	assert.Equal(t, schema.Int64, s.Field(0).Scalar)
}

func openStream(t *testing.T, alloc memory.Allocator, data string, opts *Options, projection []int) (*stream, *schema.Schema) {
	t.Helper()
	s, err := Infer([]byte(data), opts, "test.geojson")
	require.NoError(t, err)
	st, err := NewStream(alloc, s, []byte(data), opts, projection, "test.geojson")
	require.NoError(t, err)
	return st.(*stream), s
}

func TestStreamBatchSizes(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer alloc.AssertSize(t, 0)

	data := strings.Repeat(featureNYC+"\n", 5)
	st, _ := openStream(t, alloc, data, DefaultOptions().WithBatchSize(2), nil)
	defer st.Close()

	var sizes []int64
	for st.Next() {
		rec := st.Record()
		sizes = append(sizes, rec.NumRows())
		rec.Release()
	}
	require.NoError(t, st.Err())
	assert.Equal(t, []int64{2, 2, 1}, sizes)
}

func TestStreamPropertyCoercion(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer alloc.AssertSize(t, 0)

	data := strings.Join([]string{
		`{"type":"Feature","geometry":null,"properties":{"n":1.5,"s":42,"b":true}}`,
		`{"type":"Feature","geometry":null,"properties":{"n":2,"s":"hello"}}`,
		`{"type":"Feature","geometry":null,"properties":{"n":null,"s":null}}`,
	}, "\n")
	st, s := openStream(t, alloc, data, DefaultOptions(), nil)
	defer st.Close()

	bIdx, _ := s.FieldIndex("b")
	nIdx, _ := s.FieldIndex("n")
	sIdx, _ := s.FieldIndex("s")

	require.True(t, st.Next())
	rec := st.Record()
	defer rec.Release()

	// "n" saw 1.5 then integer 2: Float64 column; null stays null.
	floats := rec.Column(nIdx).(*array.Float64)
	assert.Equal(t, 1.5, floats.Value(0))
	assert.Equal(t, 2.0, floats.Value(1))
	assert.True(t, floats.IsNull(2))

	// "s" saw a number then a string: Utf8 column rendering JSON text.
	strs := rec.Column(sIdx).(*array.String)
	assert.Equal(t, "42", strs.Value(0))
	assert.Equal(t, "hello", strs.Value(1))
	assert.True(t, strs.IsNull(2))

	// "b" is boolean; missing and non-boolean values are nulls.
	bools := rec.Column(bIdx).(*array.Boolean)
	assert.True(t, bools.Value(0))
	assert.True(t, bools.IsNull(1))
	assert.True(t, bools.IsNull(2))

	assert.False(t, st.Next())
	require.NoError(t, st.Err())
}

func TestStreamGeometryTypeMismatch(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer alloc.AssertSize(t, 0)

	opts := DefaultOptions().WithGeometryType(schema.GeometryType{Kind: schema.Point})
	data := `{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0.0,0.0],[1.0,1.0]]},"properties":{}}`
	st, _ := openStream(t, alloc, data, opts, nil)
	defer st.Close()

	assert.False(t, st.Next())
	err := st.Err()
	require.Error(t, err)
	assert.True(t, geoerrors.IsKind(err, geoerrors.KindParse))
	assert.Contains(t, err.Error(), "geometry")
}

func TestWriterFeatureCollection(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer alloc.AssertSize(t, 0)

	data := featureNYC + "\n" + `{"type":"Feature","geometry":null,"properties":{"city":null}}`
	st, s := openStream(t, alloc, data, DefaultOptions(), nil)
	defer st.Close()

	var buf bytes.Buffer
	w := NewWriter(&buf, s, DefaultOptions(), "out.geojson")
	for st.Next() {
		rec := st.Record()
		require.NoError(t, w.Write(rec))
		rec.Release()
	}
	require.NoError(t, st.Err())

	rows, err := w.Flush()
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	// The output is itself valid GeoJSON with the same shape.
	records, err := ParseBytes(buf.Bytes(), 0, "out.geojson")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, orb.Point{5, 10}, records[0].Geometry)
	assert.Nil(t, records[1].Geometry)

	again, err := Infer(buf.Bytes(), DefaultOptions(), "out.geojson")
	require.NoError(t, err)
	assert.True(t, s.Equal(again))
}

func TestWriterSequence(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer alloc.AssertSize(t, 0)

	st, s := openStream(t, alloc, featureNYC, DefaultOptions(), nil)
	defer st.Close()

	var buf bytes.Buffer
	w := NewWriter(&buf, s, DefaultOptions().WithWriteSequence(true), "out.geojson")
	for st.Next() {
		rec := st.Record()
		require.NoError(t, w.Write(rec))
		rec.Release()
	}
	rows, err := w.Flush()
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"type":"Feature"`)
}

func TestWriterEmpty(t *testing.T) {
	s, err := InferFromRecords(nil, DefaultOptions(), "out.geojson")
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf, s, DefaultOptions(), "out.geojson")
	rows, err := w.Flush()
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, buf.String())
}
