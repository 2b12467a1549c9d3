package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	objects  map[string]string
	pageSize int
}

func (f *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	keys := make([]string, 0)
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if in.ContinuationToken != nil {
		for i, k := range keys {
			if k == *in.ContinuationToken {
				start = i
				break
			}
		}
	}
	end := min(start+f.pageSize, len(keys))

	out := &s3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func (f *fakeBucket) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func newBucket() *fakeBucket {
	return &fakeBucket{
		pageSize: 2,
		objects: map[string]string{
			"graphs/demo/entities.parquet":        "E",
			"graphs/demo/relationships.parquet":   "R",
			"graphs/demo/text_units.parquet":      "T",
			"graphs/demo/stats.json":              "{}",
			"graphs/demo/lancedb/vectors.parquet": "V",
			"graphs/other/entities.parquet":       "X",
		},
	}
}

func TestListArtifacts(t *testing.T) {
	keys, err := ListArtifacts(context.Background(), newBucket(), "bucket", "/graphs/demo")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"graphs/demo/entities.parquet",
		"graphs/demo/relationships.parquet",
		"graphs/demo/text_units.parquet",
	}, keys)
}

func TestSyncArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")

	n, err := SyncArtifacts(context.Background(), newBucket(), "bucket", "graphs/demo/", dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := os.ReadFile(filepath.Join(dir, "relationships.parquet"))
	require.NoError(t, err)
	assert.Equal(t, "R", string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp files may remain")
}

func TestSyncArtifacts_EmptyPrefix(t *testing.T) {
	dir := t.TempDir()
	n, err := SyncArtifacts(context.Background(), newBucket(), "bucket", "missing", dir)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
