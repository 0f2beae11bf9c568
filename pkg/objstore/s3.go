package objstore

import (
	"context"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	geoerrors "github.com/geoyogesh/GeoETL/pkg/errors"
)

// S3 reads objects from one Amazon S3 bucket.
type S3 struct {
	client *s3.Client
	bucket string
}

// newS3 builds an S3 byte source for a bucket. The region comes from
// AWS_REGION, then AWS_DEFAULT_REGION, falling back to us-east-1.
// Requests are unsigned unless both AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY are set, so public buckets work out of the box.
func newS3(ctx context.Context, bucket string) (*S3, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if os.Getenv("AWS_ACCESS_KEY_ID") == "" || os.Getenv("AWS_SECRET_ACCESS_KEY") == "" {
		opts = append(opts, config.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, geoerrors.Io(err, "s3://"+bucket)
	}

	return &S3{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func (s *S3) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, geoerrors.Io(err, "s3://"+s.bucket+"/"+key)
	}
	return out.Body, nil
}

func (s *S3) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var results []ObjectInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, geoerrors.Io(err, "s3://"+s.bucket+"/"+prefix)
		}
		for _, obj := range page.Contents {
			results = append(results, ObjectInfo{
				Path:    aws.ToString(obj.Key),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}
	return results, nil
}
