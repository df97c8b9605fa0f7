package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
)

// S3Config holds connection settings for an S3-compatible object store.
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Region          string
}

// S3Store stores blobs in an S3-compatible bucket. It honors the same
// no-overwrite contract as the filesystem store by checking existence before
// every put.
type S3Store struct {
	client *s3.S3
	bucket string
}

// NewS3Store creates a store backed by the configured bucket.
func NewS3Store(cfg *S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, fmt.Errorf("s3 configuration is incomplete")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	sess := session.Must(session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.AccessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
	}))

	return &S3Store{
		client: s3.New(sess),
		bucket: cfg.Bucket,
	}, nil
}

// Write uploads data under name, failing hard if the key already exists.
func (s *S3Store) Write(ctx context.Context, name string, data []byte) error {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return &domain.StorageError{Op: "write", Name: name, Err: fmt.Errorf("blob already exists")}
	}

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return &domain.StorageError{Op: "write", Name: name, Err: err}
	}
	return nil
}

// Read downloads the stored bytes for name.
func (s *S3Store) Read(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, &domain.NotFoundError{Resource: "blob", ID: name}
		}
		return nil, &domain.StorageError{Op: "read", Name: name, Err: err}
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, &domain.StorageError{Op: "read", Name: name, Err: err}
	}
	return data, nil
}

// Delete removes the object. A missing key maps to NotFoundError so callers
// can treat it as already-gone.
func (s *S3Store) Delete(ctx context.Context, name string) error {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return &domain.NotFoundError{Resource: "blob", ID: name}
	}

	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return &domain.StorageError{Op: "delete", Name: name, Err: err}
	}
	return nil
}

// Exists reports whether an object with the given key is stored.
func (s *S3Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, &domain.StorageError{Op: "stat", Name: name, Err: err}
	}
	return true, nil
}

func isNoSuchKey(err error) bool {
	if aerr, ok := err.(awserr.RequestFailure); ok {
		return aerr.StatusCode() == 404
	}
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}
