// Package s3 provides a podpub.BlobStore for S3-compatible object stores
// (AWS S3, Cloudflare R2, Backblaze B2, MinIO).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/castforge/podpub/pkg/podpub"
)

// Config options for the S3 backend.
type Config struct {
	Region          string // defaults to us-east-1
	Bucket          string
	AccessKeyID     string // empty = default credential chain
	SecretAccessKey string
	Endpoint        string // custom endpoint for S3-compatible services
	CustomDomain    string // optional domain override for public URLs
	UsePathStyle    bool   // path-style addressing, required by MinIO

	// CreateBucketIfNotExist bootstraps the bucket on startup, mainly for
	// MinIO in development.
	CreateBucketIfNotExist bool
}

// Backend implements podpub.BlobStore on an S3-compatible store.
type Backend struct {
	client   *s3.Client
	uploader *manager.Uploader
	config   Config
}

// New creates an S3-compatible storage backend.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(config.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)
	backend := &Backend{
		client:   client,
		uploader: manager.NewUploader(client),
		config:   config,
	}

	if config.CreateBucketIfNotExist {
		if err := backend.createBucketIfNotExists(ctx); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return backend, nil
}

func (b *Backend) Upload(ctx context.Context, reader io.Reader, params podpub.UploadParams) error {
	_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.config.Bucket),
		Key:         aws.String(params.ObjectKey),
		Body:        reader,
		ContentType: aws.String(params.MimeType),
	})
	if err != nil {
		return &podpub.StorageError{Backend: "s3", Key: params.ObjectKey, Op: "upload", Err: err}
	}
	return nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.config.Bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, &podpub.StorageError{Backend: "s3", Key: objectKey, Op: "download",
				Err: fmt.Errorf("%w: %w", podpub.ErrObjectNotFound, err)}
		}
		return nil, &podpub.StorageError{Backend: "s3", Key: objectKey, Op: "download", Err: err}
	}
	return result.Body, nil
}

func (b *Backend) Exists(ctx context.Context, objectKey string) (bool, error) {
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.config.Bucket),
		Key:    aws.String(objectKey),
	})
	if err == nil {
		return true, nil
	}

	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	// HeadObject reports missing keys as a bare 404 without a modeled type
	// on some S3-compatible services.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, &podpub.StorageError{Backend: "s3", Key: objectKey, Op: "head", Err: err}
}

// PublicURL prefers the custom domain, then the custom endpoint
// (path-style), then the default virtual-hosted AWS form. Pure computation;
// no network call.
func (b *Backend) PublicURL(objectKey string) string {
	if b.config.CustomDomain != "" {
		return fmt.Sprintf("https://%s/%s", b.config.CustomDomain, objectKey)
	}
	if b.config.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(b.config.Endpoint, "/"), b.config.Bucket, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", b.config.Bucket, b.config.Region, objectKey)
}

func (b *Backend) createBucketIfNotExists(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.config.Bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) &&
		!strings.Contains(err.Error(), "NotFound") &&
		!strings.Contains(err.Error(), "NoSuchBucket") {
		return fmt.Errorf("check bucket: %w", err)
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(b.config.Bucket),
	}
	if b.config.Region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.config.Region),
		}
	}

	_, err = b.client.CreateBucket(ctx, createInput)
	if err != nil {
		if strings.Contains(err.Error(), "BucketAlreadyExists") ||
			strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
			return nil
		}
		return err
	}
	return nil
}
