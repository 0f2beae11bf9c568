package ops

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoyogesh/GeoETL/pkg/drivers"
	"github.com/geoyogesh/GeoETL/pkg/objstore"
)

const testCSV = "id,name,geometry\n" +
	"1,Alice,POINT(1 1)\n" +
	"2,Bob,POINT(2 2)\n" +
	"3,Charlie,POINT(3 3)\n"

const testGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-74.0060, 40.7128]},
      "properties": {"name": "New York", "population": 8336817}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [-118.2437, 34.0522]},
      "properties": {"name": "Los Angeles", "population": 3979576}
    }
  ]
}`

func newEngine(t *testing.T) *Engine {
	t.Helper()
	alloc := memory.NewCheckedAllocator(memory.DefaultAllocator)
	t.Cleanup(func() { alloc.AssertSize(t, 0) })
	return NewEngine(drivers.NewRegistry(), objstore.NewRegistry(), alloc, nil)
}

func writeFixture(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestConvertCSVToGeoJSON(t *testing.T) {
	e := newEngine(t)
	input := writeFixture(t, "input.csv", testCSV)
	output := filepath.Join(t.TempDir(), "output.geojson")

	var lastRows int64
	res, err := e.Convert(context.Background(), ConvertRequest{
		Input:        input,
		Output:       output,
		InputDriver:  "CSV",
		OutputDriver: "GeoJSON",
		OnBatch:      func(rows int64) { lastRows = rows },
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Rows)
	assert.Equal(t, 1, res.InputFiles)
	assert.Equal(t, int64(3), lastRows)

	out, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"type":"FeatureCollection"`)
	assert.Contains(t, string(out), `"name":"Alice"`)
	assert.Contains(t, string(out), `[3,3]`)
}

func TestConvertGeoJSONToCSV(t *testing.T) {
	e := newEngine(t)
	input := writeFixture(t, "input.geojson", testGeoJSON)
	output := filepath.Join(t.TempDir(), "output.csv")

	res, err := e.Convert(context.Background(), ConvertRequest{
		Input:        input,
		Output:       output,
		InputDriver:  "GeoJSON",
		OutputDriver: "CSV",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Rows)

	out, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,population,geometry", lines[0])
	assert.Contains(t, lines[1], "New York")
	assert.Contains(t, lines[1], "POINT(-74.006 40.7128)")
}

func TestConvertCSVToCSV(t *testing.T) {
	e := newEngine(t)
	input := writeFixture(t, "input.csv", testCSV)
	output := filepath.Join(t.TempDir(), "output.csv")

	res, err := e.Convert(context.Background(), ConvertRequest{
		Input:        input,
		Output:       output,
		InputDriver:  "CSV",
		OutputDriver: "CSV",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Rows)

	out, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, testCSV, string(out))
}

func TestConvertCustomGeometryColumn(t *testing.T) {
	e := newEngine(t)
	input := writeFixture(t, "input.csv", "id,wkt\n1,POINT(5 6)\n")
	output := filepath.Join(t.TempDir(), "output.geojson")

	_, err := e.Convert(context.Background(), ConvertRequest{
		Input:          input,
		Output:         output,
		InputDriver:    "CSV",
		OutputDriver:   "GeoJSON",
		GeometryColumn: "wkt",
	})
	require.NoError(t, err)

	out, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(out), `[5,6]`)
}

func TestConvertRejectsUnreadableInputDriver(t *testing.T) {
	e := newEngine(t)
	_, err := e.Convert(context.Background(), ConvertRequest{
		Input:        "in.gml",
		Output:       "out.csv",
		InputDriver:  "GML",
		OutputDriver: "CSV",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input driver 'GML' does not support reading")
}

func TestConvertRejectsUnwritableOutputDriver(t *testing.T) {
	e := newEngine(t)
	_, err := e.Convert(context.Background(), ConvertRequest{
		Input:        "in.csv",
		Output:       "out.shp",
		InputDriver:  "CSV",
		OutputDriver: "ESRI Shapefile",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output driver 'ESRI Shapefile' does not support writing")
}

func TestConvertUnknownDriver(t *testing.T) {
	e := newEngine(t)
	_, err := e.Convert(context.Background(), ConvertRequest{
		Input:        "in.csv",
		Output:       "out.csv",
		InputDriver:  "NetCDF",
		OutputDriver: "CSV",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver 'NetCDF'")
}

func TestConvertInvalidGeometryType(t *testing.T) {
	e := newEngine(t)
	_, err := e.Convert(context.Background(), ConvertRequest{
		Input:        writeFixture(t, "input.csv", testCSV),
		Output:       filepath.Join(t.TempDir(), "out.geojson"),
		InputDriver:  "CSV",
		OutputDriver: "GeoJSON",
		GeometryType: "Hexagon",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported geometry type "Hexagon"`)
}

func TestInfoCSV(t *testing.T) {
	e := newEngine(t)
	input := writeFixture(t, "cities.csv", testCSV)

	info, err := e.Info(context.Background(), InfoRequest{Input: input, Driver: "CSV"})
	require.NoError(t, err)
	assert.Equal(t, "CSV", info.Driver)
	assert.Equal(t, "Comma Separated Value (.csv)", info.DriverLongName)
	assert.Equal(t, 1, info.Files)
	// Plain CSV inspection has no geometry override, so every column is a
	// scalar field.
	assert.Empty(t, info.GeometryColumns)
	require.Len(t, info.Fields, 3)
	assert.Equal(t, "id", info.Fields[0].Name)
	assert.Equal(t, "Int64", info.Fields[0].DataType)
}

func TestInfoGeoJSONDetectsDriver(t *testing.T) {
	e := newEngine(t)
	input := writeFixture(t, "cities.geojson", testGeoJSON)

	info, err := e.Info(context.Background(), InfoRequest{Input: input})
	require.NoError(t, err)
	assert.Equal(t, "GeoJSON", info.Driver)
	require.Len(t, info.GeometryColumns, 1)
	assert.Equal(t, "geometry", info.GeometryColumns[0].Name)
	assert.Equal(t, "Geometry (XY)", info.GeometryColumns[0].DataType)
	assert.Equal(t, "geoarrow.wkb", info.GeometryColumns[0].Extension)
	require.Len(t, info.Fields, 2)
	assert.Equal(t, "name", info.Fields[0].Name)
	assert.Equal(t, "population", info.Fields[1].Name)
}

func TestInfoUnknownExtension(t *testing.T) {
	e := newEngine(t)
	_, err := e.Info(context.Background(), InfoRequest{Input: "data.nc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot detect driver")
}
