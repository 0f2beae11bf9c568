// Package config provides layered configuration for the CLI.
// Priority: defaults < user < project < env < flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all GeoETL configuration.
type Config struct {
	Version int `yaml:"version"`

	Conversion ConversionConfig `yaml:"conversion"`
	Geometry   GeometryConfig   `yaml:"geometry"`
	Storage    StorageConfig    `yaml:"storage"`
}

// ConversionConfig controls default conversion behavior.
type ConversionConfig struct {
	BatchSize              int `yaml:"batch_size"`
	SchemaInferMaxRecords  int `yaml:"schema_infer_max_records"`
	SchemaInferMaxFeatures int `yaml:"schema_infer_max_features"`
}

// GeometryConfig controls geometry column handling for CSV inputs.
type GeometryConfig struct {
	Column string `yaml:"column"`
	Type   string `yaml:"type"`
}

// StorageConfig seeds remote storage backends.
type StorageConfig struct {
	S3Region string `yaml:"s3_region"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Conversion: ConversionConfig{
			BatchSize:              8192,
			SchemaInferMaxRecords:  1000,
			SchemaInferMaxFeatures: 1000,
		},
		Geometry: GeometryConfig{
			Column: "geometry",
			Type:   "Geometry",
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string
}

// NewManager creates a configuration manager seeded with defaults.
func NewManager() *Manager {
	return &Manager{config: Default()}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = Default()
	m.paths = nil

	for _, path := range configPaths() {
		if err := m.loadFile(path); err != nil {
			if !os.IsNotExist(err) {
				return err
			}
			continue
		}
		m.paths = append(m.paths, path)
	}

	m.loadEnv()
	return nil
}

func configPaths() []string {
	var paths []string
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/geoetl/config.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".geoetl", "config.yaml"))
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".geoetl.yaml"))
	}
	return paths
}

func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}
	m.merge(&partial)
	return nil
}

// merge overlays non-zero values from src.
func (m *Manager) merge(src *Config) {
	if src.Conversion.BatchSize != 0 {
		m.config.Conversion.BatchSize = src.Conversion.BatchSize
	}
	if src.Conversion.SchemaInferMaxRecords != 0 {
		m.config.Conversion.SchemaInferMaxRecords = src.Conversion.SchemaInferMaxRecords
	}
	if src.Conversion.SchemaInferMaxFeatures != 0 {
		m.config.Conversion.SchemaInferMaxFeatures = src.Conversion.SchemaInferMaxFeatures
	}
	if src.Geometry.Column != "" {
		m.config.Geometry.Column = src.Geometry.Column
	}
	if src.Geometry.Type != "" {
		m.config.Geometry.Type = src.Geometry.Type
	}
	if src.Storage.S3Region != "" {
		m.config.Storage.S3Region = src.Storage.S3Region
	}
}

func (m *Manager) loadEnv() {
	if v := os.Getenv("GEOETL_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			m.config.Conversion.BatchSize = n
		}
	}
	if v := os.Getenv("GEOETL_GEOMETRY_COLUMN"); v != "" {
		m.config.Geometry.Column = v
	}
	if v := os.Getenv("GEOETL_GEOMETRY_TYPE"); v != "" {
		m.config.Geometry.Type = v
	}
	if v := os.Getenv("GEOETL_S3_REGION"); v != "" {
		m.config.Storage.S3Region = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Paths returns the config files that were loaded.
func (m *Manager) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".geoetl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644)
}
