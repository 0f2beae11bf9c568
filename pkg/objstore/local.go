package objstore

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
)

// Local reads from the local filesystem. Paths are used as-is, relative
// paths resolve against the working directory.
type Local struct{}

func (Local) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, geoerrors.Io(err, path)
	}
	return f, nil
}

// List returns the file at prefix, or every regular file under it when
// prefix names a directory. Results are sorted by path.
func (Local) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	info, err := os.Stat(prefix)
	if err != nil {
		return nil, geoerrors.Io(err, prefix)
	}

	if !info.IsDir() {
		return []ObjectInfo{{Path: prefix, Size: info.Size(), ModTime: info.ModTime()}}, nil
	}

	var results []ObjectInfo
	err = filepath.WalkDir(prefix, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		results = append(results, ObjectInfo{Path: path, Size: fi.Size(), ModTime: fi.ModTime()})
		return nil
	})
	if err != nil {
		return nil, geoerrors.Io(err, prefix)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// Memory is an in-memory byte source for tests.
type Memory struct {
	objects map[string][]byte
}

// NewMemory creates a memory byte source seeded with the given objects.
func NewMemory(objects map[string][]byte) *Memory {
	copied := make(map[string][]byte, len(objects))
	for path, data := range objects {
		copied[path] = append([]byte(nil), data...)
	}
	return &Memory{objects: copied}
}

// Put stores an object, replacing any previous contents.
func (m *Memory) Put(path string, data []byte) {
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[path] = append([]byte(nil), data...)
}

func (m *Memory) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	data, ok := m.objects[path]
	if !ok {
		return nil, geoerrors.Io(os.ErrNotExist, path)
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func (m *Memory) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var results []ObjectInfo
	for path, data := range m.objects {
		if strings.HasPrefix(path, prefix) {
			results = append(results, ObjectInfo{Path: path, Size: int64(len(data))})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}
