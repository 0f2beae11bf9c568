package table

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoyogesh/GeoETL/pkg/drivers"
	csvformat "github.com/geoyogesh/GeoETL/pkg/formats/csv"
	geojsonformat "github.com/geoyogesh/GeoETL/pkg/formats/geojson"
	"github.com/geoyogesh/GeoETL/pkg/objstore"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func openCSV(t *testing.T, url string, opts *csvformat.Options, alloc memory.Allocator) *Provider {
	t.Helper()
	reg := drivers.NewRegistry()
	driver, err := reg.Find("CSV")
	require.NoError(t, err)
	p, err := Open(context.Background(), objstore.NewRegistry(), driver, opts, url, alloc)
	require.NoError(t, err)
	return p
}

func countRows(t *testing.T, p *Provider, projection []int) int64 {
	t.Helper()
	st, err := p.Scan(context.Background(), projection)
	require.NoError(t, err)
	defer st.Close()
	var rows int64
	for st.Next() {
		rec := st.Record()
		rows += rec.NumRows()
		rec.Release()
	}
	require.NoError(t, st.Err())
	return rows
}

func TestOpenSingleFile(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer alloc.AssertSize(t, 0)

	dir := t.TempDir()
	path := writeFile(t, dir, "cities.csv", "name,population\nParis,2100000\nLyon,520000\n")

	p := openCSV(t, path, csvformat.DefaultOptions(), alloc)
	require.Len(t, p.Files(), 1)
	require.Equal(t, 2, p.Schema().Len())
	assert.Equal(t, schema.String, p.Schema().Field(0).Scalar)
	assert.Equal(t, schema.Int64, p.Schema().Field(1).Scalar)

	assert.Equal(t, int64(2), countRows(t, p, nil))
}

func TestOpenDirectoryChainsFiles(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer alloc.AssertSize(t, 0)

	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "id,score\n1,0.5\n2,0.75\n")
	writeFile(t, dir, "b.csv", "id,score\n3,1.5\n")
	writeFile(t, dir, "notes.txt", "not part of the dataset\n")

	p := openCSV(t, dir, csvformat.DefaultOptions(), alloc)
	require.Len(t, p.Files(), 2)

	assert.Equal(t, int64(3), countRows(t, p, nil))
	// Streams are independent; a second scan sees the full dataset again.
	assert.Equal(t, int64(3), countRows(t, p, []int{1}))
}

func TestOpenExactObjectIgnoresExtension(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer alloc.AssertSize(t, 0)

	dir := t.TempDir()
	path := writeFile(t, dir, "export.dat", "id\n1\n")

	p := openCSV(t, path, csvformat.DefaultOptions(), alloc)
	require.Len(t, p.Files(), 1)
	assert.Equal(t, int64(1), countRows(t, p, nil))
}

func TestOpenNoMatchingObjects(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "nothing here\n")

	reg := drivers.NewRegistry()
	driver, err := reg.Find("CSV")
	require.NoError(t, err)
	_, err = Open(context.Background(), objstore.NewRegistry(), driver, csvformat.DefaultOptions(), dir, memory.DefaultAllocator)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .csv objects found")
}

func TestOpenDriverWithoutReader(t *testing.T) {
	reg := drivers.NewRegistry()
	driver, err := reg.Find("GML")
	require.NoError(t, err)
	_, err = Open(context.Background(), objstore.NewRegistry(), driver, csvformat.DefaultOptions(), t.TempDir(), memory.DefaultAllocator)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support reading")
}

func TestScanHonorsContextCancellation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", "id\n1\n2\n")

	p := openCSV(t, filepath.Join(dir, "a.csv"), csvformat.DefaultOptions(), memory.DefaultAllocator)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st, err := p.Scan(ctx, nil)
	require.NoError(t, err)
	defer st.Close()
	assert.False(t, st.Next())
	require.Error(t, st.Err())
}

func TestSinkRoundTripCSV(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer alloc.AssertSize(t, 0)

	dir := t.TempDir()
	path := writeFile(t, dir, "in.csv", "name,active\nalpha,true\nbeta,false\n")

	p := openCSV(t, path, csvformat.DefaultOptions(), alloc)

	reg := drivers.NewRegistry()
	driver, err := reg.Find("CSV")
	require.NoError(t, err)

	var out bytes.Buffer
	sink, err := NewSink(driver, &out, p.Schema(), csvformat.DefaultOptions(), "out.csv")
	require.NoError(t, err)

	st, err := p.Scan(context.Background(), nil)
	require.NoError(t, err)
	rows, err := sink.Consume(st)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)
	assert.Equal(t, "name,active\nalpha,true\nbeta,false\n", out.String())
}

func TestSinkCSVToGeoJSON(t *testing.T) {
	alloc := memory.NewCheckedAllocator(memory.DefaultAllocator)
	defer alloc.AssertSize(t, 0)

	dir := t.TempDir()
	path := writeFile(t, dir, "points.csv", "name,geom\nhome,POINT(1 2)\n")

	opts := csvformat.DefaultOptions().WithGeometryFromWKT("geom", schema.Mixed())
	p := openCSV(t, path, opts, alloc)
	require.True(t, p.Schema().Field(1).IsGeometry())

	reg := drivers.NewRegistry()
	driver, err := reg.Find("GeoJSON")
	require.NoError(t, err)

	var out bytes.Buffer
	sink, err := NewSink(driver, &out, p.Schema(), geojsonformat.DefaultOptions(), "out.geojson")
	require.NoError(t, err)

	st, err := p.Scan(context.Background(), nil)
	require.NoError(t, err)
	rows, err := sink.Consume(st)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.Contains(t, out.String(), `"type":"FeatureCollection"`)
	assert.Contains(t, out.String(), `"name":"home"`)
	assert.Contains(t, out.String(), `[1,2]`)
}

func TestSinkDriverWithoutWriter(t *testing.T) {
	reg := drivers.NewRegistry()
	driver, err := reg.Find("GML")
	require.NoError(t, err)
	s, err := schema.New([]schema.Field{{Name: "id", Scalar: schema.Int64}})
	require.NoError(t, err)
	var out bytes.Buffer
	_, err = NewSink(driver, &out, s, csvformat.DefaultOptions(), "out.gml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support writing")
}
