package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	meta    map[string]map[string]string
	putErr  error
	pages   int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, meta: map[string]map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = data
	f.meta[aws.ToString(in.Key)] = in.Metadata
	return &s3.PutObjectOutput{}, nil
}

// ListObjectsV2 returns one key per page to exercise pagination
func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.pages++
	var keys []string
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	start := 0
	if in.ContinuationToken != nil {
		for i, k := range keys {
			if k == *in.ContinuationToken {
				start = i
			}
		}
	}
	if start >= len(keys) {
		return &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}, nil
	}
	out := &s3.ListObjectsV2Output{
		Contents:    []types.Object{{Key: aws.String(keys[start])}},
		IsTruncated: aws.Bool(start+1 < len(keys)),
	}
	if start+1 < len(keys) {
		out.NextContinuationToken = aws.String(keys[start+1])
	}
	return out, nil
}

func TestS3Mirror_Upload(t *testing.T) {
	fake := newFakeS3()
	mirror := newS3MirrorWithClient(fake, "bucket", "checkpoints")

	key, err := mirror.Upload(context.Background(), "cell-count_checkpoint_20260101_000000.db",
		bytes.NewReader([]byte("sqlite")), 6, "abc123")
	require.NoError(t, err)

	assert.Equal(t, "checkpoints/cell-count_checkpoint_20260101_000000.db", key)
	assert.Equal(t, []byte("sqlite"), fake.objects[key])
	assert.Equal(t, "abc123", fake.meta[key]["blake2b-512"])
}

func TestS3Mirror_UploadError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("access denied")
	mirror := newS3MirrorWithClient(fake, "bucket", "")

	_, err := mirror.Upload(context.Background(), "x.db", bytes.NewReader(nil), 0, "")
	assert.ErrorContains(t, err, "access denied")
}

func TestS3Mirror_ListPaginates(t *testing.T) {
	fake := newFakeS3()
	fake.objects["p/b.db"] = nil
	fake.objects["p/a.db"] = nil
	fake.objects["p/c.db"] = nil
	mirror := newS3MirrorWithClient(fake, "bucket", "p")

	keys, err := mirror.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"p/a.db", "p/b.db", "p/c.db"}, keys)
	assert.Equal(t, 3, fake.pages)
}

func TestNewS3Mirror_RequiresBucket(t *testing.T) {
	_, err := NewS3Mirror(context.Background(), S3Config{})
	assert.Error(t, err)
}
