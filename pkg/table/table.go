// Package table bridges datasets to the decode core: a Provider resolves a
// URL onto a byte source, discovers the file group, infers the schema from
// the first object, and hands out batch streams; a Sink drains batch
// streams into a format writer and reports the row count.
package table

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/memory"

	"github.com/geoyogesh/GeoETL/pkg/batch"
	"github.com/geoyogesh/GeoETL/pkg/drivers"
	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
	"github.com/geoyogesh/GeoETL/pkg/formats"
	"github.com/geoyogesh/GeoETL/pkg/objstore"
	"github.com/geoyogesh/GeoETL/pkg/schema"
)

// Provider is a scannable dataset: one or more objects of the same format
// behind a single URL, with a schema inferred once from the first object.
type Provider struct {
	driver *drivers.Driver
	reader drivers.Reader
	opts   formats.Options
	alloc  memory.Allocator

	source objstore.ByteSource
	files  []objstore.ObjectInfo
	schema *schema.Schema
	url    string
}

// Open resolves a dataset URL, lists the file group behind it (filtered by
// the format's file extension when the URL names a directory or prefix),
// and infers the schema from the first object.
func Open(ctx context.Context, registry *objstore.Registry, driver *drivers.Driver, opts formats.Options, url string, alloc memory.Allocator) (*Provider, error) {
	reader := driver.NewReader()
	if reader == nil {
		return nil, geoerrors.Otherf("driver '%s' does not support reading", driver.ShortName)
	}

	source, path, err := registry.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}

	files, err := source.List(ctx, path)
	if err != nil {
		return nil, err
	}
	ext, err := reader.Extension(opts)
	if err != nil {
		return nil, err
	}
	files = filterByExtension(files, ext, path)
	if len(files) == 0 {
		return nil, geoerrors.Io(fmt.Errorf("no %s objects found", ext), url)
	}

	data, err := fetchObject(ctx, source, files[0].Path)
	if err != nil {
		return nil, err
	}
	inferred, err := reader.Infer(data, opts, files[0].Path)
	if err != nil {
		return nil, err
	}

	return &Provider{
		driver: driver,
		reader: reader,
		opts:   opts,
		alloc:  alloc,
		source: source,
		files:  files,
		schema: inferred,
		url:    url,
	}, nil
}

// Schema returns the inferred dataset schema.
func (p *Provider) Schema() *schema.Schema { return p.schema }

// Driver returns the dataset's format driver.
func (p *Provider) Driver() *drivers.Driver { return p.driver }

// Files returns the object group behind the dataset URL.
func (p *Provider) Files() []objstore.ObjectInfo {
	out := make([]objstore.ObjectInfo, len(p.files))
	copy(out, p.files)
	return out
}

// Scan opens a fresh batch stream over the whole file group. Streams are
// independent: each owns its decoder state, so concurrent scans are safe.
func (p *Provider) Scan(ctx context.Context, projection []int) (batch.Stream, error) {
	return &multiStream{ctx: ctx, provider: p, projection: projection}, nil
}

func filterByExtension(files []objstore.ObjectInfo, ext, path string) []objstore.ObjectInfo {
	if ext == "" {
		return files
	}
	// A URL naming one exact object wins over its extension; prefix
	// listings are always filtered.
	if len(files) == 1 && files[0].Path == path {
		return files
	}
	var out []objstore.ObjectInfo
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f.Path), strings.ToLower(ext)) {
			out = append(out, f)
		}
	}
	return out
}

func fetchObject(ctx context.Context, source objstore.ByteSource, path string) ([]byte, error) {
	rc, err := source.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, geoerrors.Io(err, path)
	}
	return data, nil
}

// multiStream chains per-file batch streams over a provider's file group,
// opening each file lazily as the previous one is exhausted.
type multiStream struct {
	ctx        context.Context
	provider   *Provider
	projection []int

	fileIdx int
	cur     batch.Stream
	rec     arrow.Record
	err     error
	closed  bool
}

func (m *multiStream) Next() bool {
	if m.closed || m.err != nil {
		return false
	}
	for {
		if err := m.ctx.Err(); err != nil {
			m.err = geoerrors.Io(err, m.provider.url)
			return false
		}

		if m.cur == nil {
			if m.fileIdx >= len(m.provider.files) {
				return false
			}
			file := m.provider.files[m.fileIdx]
			m.fileIdx++

			data, err := fetchObject(m.ctx, m.provider.source, file.Path)
			if err != nil {
				m.err = err
				return false
			}
			st, err := m.provider.reader.Open(
				m.provider.alloc, m.provider.schema, data, m.provider.opts, m.projection, file.Path)
			if err != nil {
				m.err = err
				return false
			}
			m.cur = st
		}

		if m.cur.Next() {
			m.rec = m.cur.Record()
			return true
		}
		if err := m.cur.Err(); err != nil {
			m.err = err
			m.cur.Close()
			m.cur = nil
			return false
		}
		m.cur.Close()
		m.cur = nil
	}
}

func (m *multiStream) Record() arrow.Record { return m.rec }

func (m *multiStream) Err() error { return m.err }

func (m *multiStream) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	if m.cur != nil {
		err := m.cur.Close()
		m.cur = nil
		return err
	}
	return nil
}

// Sink serializes a stream of batches through a driver's writer.
type Sink struct {
	writer drivers.BatchWriter
}

// NewSink creates a sink writing the given schema through the driver's
// write capability.
func NewSink(driver *drivers.Driver, w io.Writer, s *schema.Schema, opts formats.Options, context string) (*Sink, error) {
	factory := driver.NewWriter()
	if factory == nil {
		return nil, geoerrors.Otherf("driver '%s' does not support writing", driver.ShortName)
	}
	bw, err := factory.Create(w, s, opts, context)
	if err != nil {
		return nil, err
	}
	return &Sink{writer: bw}, nil
}

// Write serializes one batch.
func (s *Sink) Write(rec arrow.Record) error { return s.writer.Write(rec) }

// Flush finalizes the output and returns the total row count written.
func (s *Sink) Flush() (int64, error) { return s.writer.Flush() }

// Consume drains a stream into the sink and returns the total row count.
// The stream is closed on return.
func (s *Sink) Consume(stream batch.Stream) (int64, error) {
	defer stream.Close()
	for stream.Next() {
		rec := stream.Record()
		err := s.writer.Write(rec)
		rec.Release()
		if err != nil {
			return 0, err
		}
	}
	if err := stream.Err(); err != nil {
		return 0, err
	}
	return s.writer.Flush()
}
