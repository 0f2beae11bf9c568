package ops

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/geoyogesh/GeoETL/pkg/drivers"
	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/schema"
	"github.com/geoyogesh/GeoETL/pkg/table"
)

// InfoRequest describes one dataset inspection.
type InfoRequest struct {
	// Input is the dataset URL or path.
	Input string
	// Driver names the format driver; empty means detect from the file
	// extension.
	Driver string
}

// DatasetInfo is the inspection result for a dataset.
type DatasetInfo struct {
	Dataset         string
	Driver          string
	DriverLongName  string
	Files           int
	GeometryColumns []GeometryColumnInfo
	Fields          []FieldInfo
}

// GeometryColumnInfo describes one geometry column.
type GeometryColumnInfo struct {
	Name      string
	DataType  string
	Extension string
	CRS       string
}

// FieldInfo describes one non-geometry field.
type FieldInfo struct {
	Name     string
	DataType string
	Nullable bool
}

// Info inspects a dataset: driver identification, geometry columns, and
// the inferred field schema.
func (e *Engine) Info(ctx context.Context, req InfoRequest) (*DatasetInfo, error) {
	var driver *drivers.Driver
	var err error
	if req.Driver != "" {
		driver, err = e.drivers.Find(req.Driver)
	} else {
		driver, err = e.detectDriver(req.Input)
	}
	if err != nil {
		return nil, err
	}
	if !driver.Capabilities.Info.IsSupported() {
		return nil, geoerrors.Otherf("driver '%s' does not support dataset info", driver.ShortName)
	}

	e.logger.Info("inspecting dataset",
		zap.String("input", req.Input), zap.String("driver", driver.ShortName))

	opts, err := defaultOptions(driver)
	if err != nil {
		return nil, err
	}
	provider, err := table.Open(ctx, e.stores, driver, opts, req.Input, e.alloc)
	if err != nil {
		return nil, err
	}

	info := &DatasetInfo{
		Dataset:        req.Input,
		Driver:         driver.ShortName,
		DriverLongName: driver.LongName,
		Files:          len(provider.Files()),
	}
	s := provider.Schema()
	for i := 0; i < s.Len(); i++ {
		field := s.Field(i)
		if field.IsGeometry() {
			info.GeometryColumns = append(info.GeometryColumns, GeometryColumnInfo{
				Name:      field.Name,
				DataType:  field.Geometry.String(),
				Extension: schema.WKBExtensionName,
			})
			continue
		}
		info.Fields = append(info.Fields, FieldInfo{
			Name:     field.Name,
			DataType: field.Scalar.String(),
			Nullable: field.Nullable,
		})
	}
	return info, nil
}

// detectDriver matches a dataset path against the default file extension
// of each available driver.
func (e *Engine) detectDriver(input string) (*drivers.Driver, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSuffix(input, "/")))
	if ext != "" {
		for _, d := range e.drivers.Available() {
			reader := d.NewReader()
			if reader == nil {
				continue
			}
			opts, err := defaultOptions(d)
			if err != nil {
				continue
			}
			dext, err := reader.Extension(opts)
			if err == nil && strings.EqualFold(dext, ext) {
				return d, nil
			}
		}
	}
	return nil, geoerrors.Otherf("cannot detect driver for '%s'; specify one with --driver", input)
}
