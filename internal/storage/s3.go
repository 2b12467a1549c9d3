package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	appconfig "github.com/cristofima/maf-graphrag-series/internal/config"
	"github.com/cristofima/maf-graphrag-series/pkg/graph"
	"github.com/cristofima/maf-graphrag-series/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of *s3.Client used to pull artifacts.
type ObjectAPI interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client builds a client for cfg. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg appconfig.S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.Endpoint))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.Endpoint != ""
	}), nil
}

// ListArtifacts returns the keys of parquet artifacts directly under prefix.
func ListArtifacts(ctx context.Context, client ObjectAPI, bucket, prefix string) ([]string, error) {
	prefix = normalizePrefix(prefix)

	var keys []string
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}

	for {
		listOutput, err := client.ListObjectsV2(ctx, listInput)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects with prefix %s: %w", prefix, err)
		}

		for _, obj := range listOutput.Contents {
			if obj.Key == nil {
				continue
			}
			rest := strings.TrimPrefix(*obj.Key, prefix)
			if strings.Contains(rest, "/") || path.Ext(rest) != graph.ArtifactExt {
				continue
			}
			keys = append(keys, *obj.Key)
		}

		if listOutput.IsTruncated != nil && *listOutput.IsTruncated {
			listInput.ContinuationToken = listOutput.NextContinuationToken
		} else {
			break
		}
	}

	return keys, nil
}

// SyncArtifacts downloads every parquet artifact under prefix into dir and
// returns the number of files written. Each file is written to a temporary
// name first and renamed into place, so readers never see a partial file.
func SyncArtifacts(ctx context.Context, client ObjectAPI, bucket, prefix, dir string) (int, error) {
	keys, err := ListArtifacts(ctx, client, bucket, prefix)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		logger.Warn("No graph artifacts found in bucket", "bucket", bucket, "prefix", prefix)
		return 0, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, key := range keys {
		if err := downloadFile(ctx, client, bucket, key, filepath.Join(dir, path.Base(key))); err != nil {
			return 0, err
		}
		logger.Debug("Synced graph artifact", "key", key)
	}

	logger.Info("Synced graph artifacts from S3", "bucket", bucket, "prefix", prefix, "files", len(keys), "dir", dir)
	return len(keys), nil
}

func downloadFile(ctx context.Context, client ObjectAPI, bucket, key, dest string) error {
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get file %s from S3: %w", key, err)
	}
	defer result.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".sync-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, result.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to read file contents of %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", dest, err)
	}
	return nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimPrefix(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
