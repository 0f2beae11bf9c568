// Package drivers holds the format driver registry: the capability table
// describing which operations (info, read, write) each geospatial format
// supports, and the reader/writer constructors for the implemented ones.
// The registry is modeled after GDAL's driver system; an explicit
// NewRegistry call builds it, so every built-in driver is registered
// before the first lookup and no global mutable state is involved.
package drivers

import (
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/geoyogesh/GeoETL/pkg/batch"
	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/formats"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// SupportStatus indicates whether a driver operation is implemented,
// planned, or not supported.
type SupportStatus uint8

const (
	NotSupported SupportStatus = iota
	Planned
	Supported
)

// IsSupported reports whether the operation is fully implemented.
func (s SupportStatus) IsSupported() bool { return s == Supported }

// IsAvailable reports whether the operation is implemented or planned.
func (s SupportStatus) IsAvailable() bool { return s != NotSupported }

func (s SupportStatus) String() string {
	switch s {
	case Supported:
		return "Supported"
	case Planned:
		return "Planned"
	default:
		return "Not Supported"
	}
}

// Capabilities describes a driver's support for each operation.
type Capabilities struct {
	Info  SupportStatus
	Read  SupportStatus
	Write SupportStatus
}

// HasSupportedOperation reports whether at least one operation is
// implemented or planned.
func (c Capabilities) HasSupportedOperation() bool {
	return c.Info.IsAvailable() || c.Read.IsAvailable() || c.Write.IsAvailable()
}

// Reader is the read capability of an implemented driver: schema inference
// over raw bytes and batch stream construction.
type Reader interface {
	// Extension returns the file extension used to filter directory
	// listings under the given options.
	Extension(opts formats.Options) (string, error)
	// Infer derives the dataset schema from raw bytes.
	Infer(data []byte, opts formats.Options, context string) (*schema.Schema, error)
	// Open starts a batch stream over raw bytes using a schema previously
	// produced by Infer with the same options.
	Open(alloc memory.Allocator, s *schema.Schema, data []byte, opts formats.Options, projection []int, context string) (batch.Stream, error)
}

// Writer is the write capability of an implemented driver.
type Writer interface {
	// Create returns a batch writer targeting w.
	Create(w io.Writer, s *schema.Schema, opts formats.Options, context string) (BatchWriter, error)
}

// BatchWriter serializes a sequence of batches and reports the total row
// count on Flush.
type BatchWriter interface {
	Write(rec arrow.Record) error
	Flush() (int64, error)
}

// Driver describes one geospatial format.
type Driver struct {
	// ShortName is the registry key, e.g. "GeoJSON".
	ShortName string
	// LongName is the human-readable format description.
	LongName     string
	Capabilities Capabilities

	newReader func() Reader
	newWriter func() Writer
}

// NewReader returns the driver's read capability, or nil when reading is
// not implemented.
func (d *Driver) NewReader() Reader {
	if d.newReader == nil {
		return nil
	}
	return d.newReader()
}

// NewWriter returns the driver's write capability, or nil when writing is
// not implemented.
func (d *Driver) NewWriter() Writer {
	if d.newWriter == nil {
		return nil
	}
	return d.newWriter()
}

// Registry is an ordered driver table keyed by case-insensitive short name.
type Registry struct {
	drivers []*Driver
	index   map[string]*Driver
}

// NewRegistry builds the registry with every built-in driver registered.
func NewRegistry() *Registry {
	r := &Registry{index: make(map[string]*Driver)}
	for _, d := range builtinDrivers() {
		r.Register(d)
	}
	return r
}

// Register appends a driver. Re-registering a short name replaces the
// earlier entry in place.
func (r *Registry) Register(d *Driver) {
	key := strings.ToLower(d.ShortName)
	if existing, ok := r.index[key]; ok {
		*existing = *d
		return
	}
	r.drivers = append(r.drivers, d)
	r.index[key] = d
}

// Drivers returns every registered driver in registration order.
func (r *Registry) Drivers() []*Driver {
	out := make([]*Driver, len(r.drivers))
	copy(out, r.drivers)
	return out
}

// Available returns the drivers with at least one implemented or planned
// operation, in registration order.
func (r *Registry) Available() []*Driver {
	var out []*Driver
	for _, d := range r.drivers {
		if d.Capabilities.HasSupportedOperation() {
			out = append(out, d)
		}
	}
	return out
}

// Find looks a driver up by short name, case-insensitively.
func (r *Registry) Find(name string) (*Driver, error) {
	if d, ok := r.index[strings.ToLower(name)]; ok {
		return d, nil
	}
	var available []string
	for _, d := range r.Available() {
		available = append(available, d.ShortName)
	}
	return nil, geoerrors.Otherf("unknown driver '%s'. Available drivers: %s",
		name, strings.Join(available, ", "))
}

// optionsError reports a format options type that does not belong to the
// driver dispatching on it.
func optionsError(driver string, opts formats.Options) error {
	return fmt.Errorf("%s driver cannot use %s format options", driver, opts.Format())
}
