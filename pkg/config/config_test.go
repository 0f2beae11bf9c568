package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8192, cfg.Conversion.BatchSize)
	assert.Equal(t, 1000, cfg.Conversion.SchemaInferMaxRecords)
	assert.Equal(t, 1000, cfg.Conversion.SchemaInferMaxFeatures)
	assert.Equal(t, "geometry", cfg.Geometry.Column)
	assert.Equal(t, "Geometry", cfg.Geometry.Type)
}

func TestMergeKeepsDefaultsForZeroValues(t *testing.T) {
	m := NewManager()
	m.merge(&Config{
		Conversion: ConversionConfig{BatchSize: 512},
		Geometry:   GeometryConfig{Column: "wkt"},
	})

	cfg := m.Get()
	assert.Equal(t, 512, cfg.Conversion.BatchSize)
	assert.Equal(t, "wkt", cfg.Geometry.Column)
	// Untouched values keep their defaults.
	assert.Equal(t, 1000, cfg.Conversion.SchemaInferMaxRecords)
	assert.Equal(t, "Geometry", cfg.Geometry.Type)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEOETL_BATCH_SIZE", "256")
	t.Setenv("GEOETL_GEOMETRY_COLUMN", "geom")
	t.Setenv("GEOETL_S3_REGION", "eu-west-1")

	m := NewManager()
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, 256, cfg.Conversion.BatchSize)
	assert.Equal(t, "geom", cfg.Geometry.Column)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3Region)
}

func TestEnvIgnoresInvalidBatchSize(t *testing.T) {
	t.Setenv("GEOETL_BATCH_SIZE", "not-a-number")

	m := NewManager()
	require.NoError(t, m.Load())
	assert.Equal(t, 8192, m.Get().Conversion.BatchSize)
}
