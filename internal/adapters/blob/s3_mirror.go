package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"cytodash/internal/logging"
	"cytodash/internal/ports"
)

// s3API is the subset of the S3 client the mirror uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config holds the mirror destination
type S3Config struct {
	Bucket    string
	Endpoint  string // optional, for MinIO and other S3-compatible servers
	PathStyle bool
	Prefix    string
	Region    string
}

// S3Mirror uploads checkpoint files to an S3 bucket
type S3Mirror struct {
	bucket string
	client s3API
	prefix string
}

// Verify interface compliance at compile time
var _ ports.CheckpointMirror = (*S3Mirror)(nil)

// NewS3Mirror creates an S3Mirror using the default AWS credential chain
func NewS3Mirror(ctx context.Context, cfg S3Config) (*S3Mirror, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return newS3MirrorWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3MirrorWithClient(client s3API, bucket, prefix string) *S3Mirror {
	return &S3Mirror{bucket: bucket, client: client, prefix: prefix}
}

// Upload implements CheckpointMirror.Upload and returns the object key
func (m *S3Mirror) Upload(ctx context.Context, name string, body io.Reader, size int64, checksum string) (string, error) {
	key := path.Join(m.prefix, name)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("application/vnd.sqlite3"),
	}
	if checksum != "" {
		input.Metadata = map[string]string{"blake2b-512": checksum}
	}

	if _, err := m.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s to s3://%s: %w", key, m.bucket, err)
	}

	logging.Logger.Info("Checkpoint mirrored", "bucket", m.bucket, "key", key, "size", size)
	return key, nil
}

// List implements CheckpointMirror.List, returning keys under the prefix
func (m *S3Mirror) List(ctx context.Context) ([]string, error) {
	var keys []string
	var token *string
	prefix := m.prefix
	for {
		out, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(m.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", m.bucket, prefix, err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Strings(keys)
	return keys, nil
}
