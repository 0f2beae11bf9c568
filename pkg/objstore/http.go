package objstore

import (
	"context"
	"fmt"
	"io"
	"net/http"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
)

// HTTP reads objects from a plain web server, rooted at one
// scheme://host:port base. Servers generally cannot enumerate, so List
// degrades to a HEAD probe of the prefix itself.
type HTTP struct {
	base   string
	client *http.Client
}

func newHTTP(base string) (*HTTP, error) {
	return &HTTP{base: base, client: http.DefaultClient}, nil
}

func (h *HTTP) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	u := h.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, geoerrors.Io(err, u)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, geoerrors.Io(err, u)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, geoerrors.Io(fmt.Errorf("HTTP %s", resp.Status), u)
	}
	return resp.Body, nil
}

func (h *HTTP) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	u := h.base + prefix
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return nil, geoerrors.Io(err, u)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, geoerrors.Io(err, u)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, geoerrors.Io(fmt.Errorf("HTTP %s", resp.Status), u)
	}

	return []ObjectInfo{{Path: prefix, Size: resp.ContentLength}}, nil
}
