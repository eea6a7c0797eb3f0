package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config describes the bucket and how to reach it.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS itself
	AccessKey string
	SecretKey string
	PublicURL string // prefix for returned URLs, e.g. https://cdn.example or http://minio:9000/bucket
	PathStyle bool   // MinIO needs path-style addressing
}

// s3API is the part of *s3.Client the store calls.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps media in an S3-compatible bucket.
type S3Store struct {
	client    s3API
	bucket    string
	publicURL string
	now       func() time.Time
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// an access key is given; otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("media/s3: bucket is required")
	}
	if cfg.PublicURL == "" {
		return nil, errors.New("media/s3: public URL is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("media/s3: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return newS3Store(client, cfg.Bucket, cfg.PublicURL), nil
}

func newS3Store(client s3API, bucket, publicURL string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// Upload puts the object and returns publicURL/key.
func (s *S3Store) Upload(ctx context.Context, u Upload) (string, error) {
	key := NewKey(u, s.now().UTC())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          u.Body,
		ContentType:   aws.String(u.ContentType),
		ContentLength: aws.Int64(u.Size),
	})
	if err != nil {
		return "", fmt.Errorf("media/s3: putting %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

// Destroy deletes the object behind url. Foreign URLs are a no-op.
func (s *S3Store) Destroy(ctx context.Context, url string) error {
	key, ok := keyFromURL(s.publicURL, url)
	if !ok {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("media/s3: deleting %s: %w", key, err)
	}
	return nil
}
