// Package objstore resolves dataset URLs onto byte-stream backends: local
// filesystem, Amazon S3, Google Cloud Storage, Azure Blob Storage, or a
// generic HTTP server. Backend selection is driven by the URL scheme and
// ambient credential environment variables; when no credentials are
// detected a cloud backend is configured for anonymous (unsigned) access.
package objstore

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
)

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	// Path of the object within its byte source.
	Path string
	// Size in bytes, -1 when unknown.
	Size int64
	// ModTime is the last modification time, zero when unknown.
	ModTime time.Time
}

// ByteSource is a URL-addressed, byte-range-readable storage backend.
type ByteSource interface {
	// Get opens a byte stream for the object at path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// List enumerates objects under a prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// Registry maps URL prefixes (scheme://authority) to configured byte
// sources. It is append-only: resolving the same URL twice returns the
// already-registered backend and never fails or duplicates.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]ByteSource
	group   singleflight.Group
	local   ByteSource
}

// NewRegistry creates a registry with the default local filesystem backend.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]ByteSource),
		local:   Local{},
	}
}

// Local returns the default local filesystem backend.
func (r *Registry) Local() ByteSource { return r.local }

// Resolve selects the byte source for a dataset URL and returns it together
// with the object path within that source. Plain filesystem paths and
// file:// URLs resolve to the local backend. Remote backends are
// constructed once per scheme://authority prefix and reused afterwards.
func (r *Registry) Resolve(ctx context.Context, rawURL string) (ByteSource, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", geoerrors.Parse("failed to parse URL: "+err.Error(), rawURL)
	}

	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "", "file":
		return r.local, strings.TrimPrefix(rawURL, "file://"), nil
	case "s3", "s3a":
		bucket := u.Host
		if bucket == "" {
			return nil, "", geoerrors.Parse("S3 URL has no bucket", rawURL)
		}
		src, err := r.source(scheme+"://"+u.Host, func() (ByteSource, error) {
			return newS3(ctx, bucket)
		})
		if err != nil {
			return nil, "", err
		}
		return src, strings.TrimPrefix(u.Path, "/"), nil
	case "gs":
		bucket := u.Host
		if bucket == "" {
			return nil, "", geoerrors.Parse("GCS URL has no bucket", rawURL)
		}
		src, err := r.source(scheme+"://"+u.Host, func() (ByteSource, error) {
			return newGCS(ctx, bucket)
		})
		if err != nil {
			return nil, "", err
		}
		return src, strings.TrimPrefix(u.Path, "/"), nil
	case "az", "adl", "azure", "abfs", "abfss":
		if u.Host == "" {
			return nil, "", geoerrors.Parse("Azure URL has no container", rawURL)
		}
		src, err := r.source(scheme+"://"+u.Host, func() (ByteSource, error) {
			return newAzureFromEnv(rawURL)
		})
		if err != nil {
			return nil, "", err
		}
		// Container comes from the URL host; the blob path follows.
		return src, u.Host + "/" + strings.TrimPrefix(u.Path, "/"), nil
	case "http", "https":
		host := u.Host
		if host == "" {
			return nil, "", geoerrors.Parse("URL has no host", rawURL)
		}
		if isAzureBlobHost(u.Hostname()) {
			src, err := r.source(scheme+"://"+host, func() (ByteSource, error) {
				return newAzureFromServiceURL(scheme + "://" + host)
			})
			if err != nil {
				return nil, "", err
			}
			return src, strings.TrimPrefix(u.Path, "/"), nil
		}
		base := scheme + "://" + authorityWithPort(u)
		src, err := r.source(base, func() (ByteSource, error) {
			return newHTTP(base)
		})
		if err != nil {
			return nil, "", err
		}
		return src, u.Path, nil
	default:
		// Unknown schemes are treated as local paths, e.g. C:\ on Windows.
		return r.local, rawURL, nil
	}
}

// source returns the backend registered under key, constructing and
// registering it on first use.
func (r *Registry) source(key string, construct func() (ByteSource, error)) (ByteSource, error) {
	r.mu.RLock()
	src, ok := r.sources[key]
	r.mu.RUnlock()
	if ok {
		return src, nil
	}

	// Collapse concurrent first resolutions of the same prefix into one
	// backend construction.
	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		src, err := construct()
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sources[key] = src
		r.mu.Unlock()
		return src, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(ByteSource), nil
}

func authorityWithPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		return u.Hostname() + ":80"
	case "https":
		return u.Hostname() + ":443"
	}
	return u.Host
}

func isAzureBlobHost(host string) bool {
	host = strings.ToLower(host)
	return strings.HasSuffix(host, "blob.core.windows.net") ||
		strings.HasSuffix(host, "dfs.core.windows.net") ||
		strings.HasSuffix(host, "blob.fabric.microsoft.com") ||
		strings.HasSuffix(host, "dfs.fabric.microsoft.com")
}

var gcpCredentialVars = []string{
	"GOOGLE_APPLICATION_CREDENTIALS",
	"GOOGLE_SERVICE_ACCOUNT",
	"GOOGLE_SERVICE_ACCOUNT_PATH",
	"SERVICE_ACCOUNT",
	"GOOGLE_SERVICE_ACCOUNT_KEY",
	"SERVICE_ACCOUNT_KEY",
	"GOOGLE_APPLICATION_CREDENTIALS_JSON",
}

var azureCredentialVars = []string{
	"AZURE_STORAGE_CONNECTION_STRING",
	"AZURE_STORAGE_ACCOUNT_KEY",
	"AZURE_STORAGE_ACCESS_KEY",
	"AZURE_STORAGE_MASTER_KEY",
	"AZURE_STORAGE_SAS",
	"AZURE_STORAGE_SAS_KEY",
	"AZURE_STORAGE_BEARER_TOKEN",
	"AZURE_STORAGE_TOKEN",
	"AZURE_STORAGE_CLIENT_SECRET",
	"AZURE_CLIENT_SECRET",
	"AZURE_STORAGE_CLIENT_ID",
	"AZURE_CLIENT_ID",
	"AZURE_STORAGE_TENANT_ID",
	"AZURE_TENANT_ID",
}

func anyEnvSet(keys []string) bool {
	for _, key := range keys {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}
