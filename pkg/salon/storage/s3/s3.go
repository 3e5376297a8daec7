package s3

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/ngabo-dev/salon-backend/pkg/salon"
)

// Config options for the S3 backend.
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)

	// PublicBaseURL is the base the stored objects are served from (a CDN
	// or the bucket website endpoint). When empty the standard
	// virtual-hosted bucket URL is used.
	PublicBaseURL string

	// MinIO-specific option
	CreateBucketIfNotExist bool // Create bucket if it doesn't exist
}

// Store is an AWS S3 implementation of the salon.BlobStore interface.
type Store struct {
	client        *s3.Client
	uploader      *manager.Uploader
	bucket        string
	region        string
	publicBaseURL string
}

// New creates a new S3 storage backend.
func New(ctx context.Context, config Config) (*Store, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	if config.Region == "" {
		config.Region = "us-east-1" // Default region
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
		if config.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	if config.CreateBucketIfNotExist {
		_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
			Bucket: aws.String(config.Bucket),
		})
		if err != nil {
			_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: aws.String(config.Bucket),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create bucket: %w", err)
			}
		}
	}

	return &Store{
		client:        client,
		uploader:      manager.NewUploader(client),
		bucket:        config.Bucket,
		region:        config.Region,
		publicBaseURL: strings.TrimSuffix(config.PublicBaseURL, "/"),
	}, nil
}

func (s *Store) Put(ctx context.Context, localPath, prefix string) (salon.ImageRef, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return salon.ImageRef{}, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer f.Close()

	ext := filepath.Ext(localPath)
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New(), ext)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return salon.ImageRef{}, fmt.Errorf("failed to upload object: %w", err)
	}

	return salon.ImageRef{Key: key, URL: s.objectURL(key)}, nil
}

// Delete removes an object by key. S3 treats deletion of a missing key as
// success, and NotFound responses from S3-compatible stores are swallowed
// here so the operation stays idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NoSuchKey", "NotFound":
				return nil
			}
		}
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *Store) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
