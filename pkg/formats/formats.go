// Package formats defines the closed set of format configurations shared by
// the decoders, writers, and the driver registry. Each supported format
// contributes one Options type in its own subpackage; consumers dispatch on
// the concrete type rather than on stringly-typed metadata.
package formats

// Options is implemented by exactly one configuration type per supported
// format: csv.Options and geojson.Options. Format returns the driver short
// name the options belong to.
type Options interface {
	Format() string
}
