package objstore

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
)

// GCS reads objects from one Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

// newGCS builds a GCS byte source for a bucket. When none of the usual
// service-account environment variables are set the client skips
// authentication entirely so public buckets remain readable.
func newGCS(ctx context.Context, bucket string) (*GCS, error) {
	var opts []option.ClientOption
	if !anyEnvSet(gcpCredentialVars) {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, geoerrors.Io(err, "gs://"+bucket)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, geoerrors.Io(err, "gs://"+g.bucket+"/"+key)
	}
	return r, nil
}

func (g *GCS) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var results []ObjectInfo
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, geoerrors.Io(err, "gs://"+g.bucket+"/"+prefix)
		}
		results = append(results, ObjectInfo{
			Path:    attrs.Name,
			Size:    attrs.Size,
			ModTime: attrs.Updated,
		})
	}
	return results, nil
}
