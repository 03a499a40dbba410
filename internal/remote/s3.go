package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/lifetrack/internal/models"
)

// S3Config carries the settings of the object-storage backup backend.
// BaseEndpoint is set when targeting MinIO instead of AWS.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Store keeps one object per (user, data type) under the key
// <userID>/<kind>.json. A PutObject is a full replacement, matching the
// row-upsert contract.
type S3Store struct {
	client s3API
	bucket string
}

// s3API is the slice of the S3 client the store uses; tests substitute it.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Store builds the object-storage adapter. An empty bucket yields an
// unconfigured adapter whose operations fail with FailureNotConfigured.
func NewS3Store(ctx context.Context, c S3Config) (*S3Store, error) {
	if c.Bucket == "" {
		return &S3Store{}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: c.Bucket}, nil
}

// Available implements Store.
func (s *S3Store) Available() bool { return s.client != nil }

func objectKey(userID string, kind models.Kind) string {
	return fmt.Sprintf("%s/%s.json", userID, kind)
}

// FetchRow implements Store.
func (s *S3Store) FetchRow(ctx context.Context, userID string, kind models.Kind) ([]json.RawMessage, error) {
	if s.client == nil {
		return nil, newError(FailureNotConfigured, "fetch", errNoBackend)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(userID, kind)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return []json.RawMessage{}, nil
		}
		return nil, classifyS3("fetch", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, newError(FailureTransient, "fetch", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, newError(FailurePermanent, "fetch", fmt.Errorf("malformed payload: %w", err))
	}
	return records, nil
}

// UpsertRow implements Store.
func (s *S3Store) UpsertRow(ctx context.Context, userID string, kind models.Kind, records []json.RawMessage) error {
	if s.client == nil {
		return newError(FailureNotConfigured, "upsert", errNoBackend)
	}

	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return newError(FailurePermanent, "upsert", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey(userID, kind)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return classifyS3("upsert", err)
	}
	return nil
}

// classifyS3 maps S3 API errors onto the retry taxonomy. A missing bucket
// counts as "backend not ready" and stays retryable; credential failures
// are permanent.
func classifyS3(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return newError(FailureTransient, op, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return newError(FailurePermanent, op, err)
		}
	}
	return newError(FailureTransient, op, err)
}
