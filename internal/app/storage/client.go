package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"linkhub/internal/pkg/logx"
)

// s3Store implements BlobStore on top of an S3-compatible bucket. A PutObject replaces the
// object atomically, so readers see either the old or the new directory document.
type s3Store struct {
	cfg      S3Config
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Store initializes the S3 client using a static credentials provider and a custom endpoint.
func NewS3Store(ctx context.Context, cfg S3Config) (BlobStore, error) {
	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		logx.Error(err, "Failed to load AWS SDK config")
		return nil, errors.New("failed to initialize S3 client configuration")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Store{
		cfg:      cfg,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// Name implements BlobStore.
func (c *s3Store) Name() string {
	return fmt.Sprintf("s3://%s/%s", c.cfg.S3BucketName, c.cfg.Key)
}

// Load implements BlobStore.
func (c *s3Store) Load(ctx context.Context) ([]byte, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &c.cfg.S3BucketName,
		Key:    &c.cfg.Key,
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, ErrBlobNotFound
		}
		logx.Error(err, "S3 get failed", "key", c.cfg.Key)
		return nil, fmt.Errorf("failed to fetch directory from S3: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory object body: %w", err)
	}

	return data, nil
}

// Save implements BlobStore.
func (c *s3Store) Save(ctx context.Context, data []byte) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &c.cfg.S3BucketName,
		Key:         &c.cfg.Key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		logx.Error(err, "S3 upload failed", "key", c.cfg.Key)
		return fmt.Errorf("failed to upload directory to S3: %w", err)
	}

	return nil
}

// isS3NotFound reports whether err means the object does not exist.
func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound"
	}

	return false
}
