package texture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PutObjectAPI is the part of the S3 client the exporter uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ExportConfig locates the bucket. AccessKey and SecretKey are optional;
// without them the default AWS credential chain is used.
type ExportConfig struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// Exporter uploads textures to an S3 compatible bucket.
type Exporter struct {
	api    PutObjectAPI
	bucket string
	now    func() time.Time
}

func NewExporter(api PutObjectAPI, bucket string) *Exporter {
	return &Exporter{api: api, bucket: bucket, now: time.Now}
}

// NewS3Exporter builds an S3 client for cfg. A custom BaseEndpoint (MinIO
// and similar) switches to path-style addressing.
func NewS3Exporter(ctx context.Context, cfg ExportConfig) (*Exporter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("export bucket is not configured")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return NewExporter(client, cfg.Bucket), nil
}

// StorageKey is textures/<yyyy>/<mm>/<dd>/<uuid><ext>.
func StorageKey(at time.Time, contentType string) string {
	at = at.UTC()
	return fmt.Sprintf("textures/%04d/%02d/%02d/%s%s", at.Year(), at.Month(), at.Day(), uuid.New(), extension(contentType))
}

// Export uploads img and returns its key.
func (e *Exporter) Export(ctx context.Context, img Image) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("empty image")
	}
	key := StorageKey(e.now(), img.ContentType)
	_, err := e.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}
