package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var errStorageDisabled = errors.New("storage: minio endpoint not configured")

// MinIOService is the MinIO-backed StorageService.
type MinIOService struct {
	client *minio.Client
}

func NewMinIOService(cfg Config) (*MinIOService, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, errStorageDisabled
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	}
	client, err := minio.New(cfg.GetMinIOEndpoint(), opts)
	if err != nil {
		return nil, fmt.Errorf("storage: connect %s: %w", cfg.GetMinIOEndpoint(), err)
	}
	return &MinIOService{client: client}, nil
}

// EnsureBucketExists is safe to call from several processes at once.
func (s *MinIOService) EnsureBucketExists(ctx context.Context, bucket string) error {
	ok, err := s.client.BucketExists(ctx, bucket)
	switch {
	case err != nil:
		return fmt.Errorf("storage: stat bucket %s: %w", bucket, err)
	case ok:
		return nil
	}

	err = s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
	if err == nil {
		return nil
	}
	if code := minio.ToErrorResponse(err).Code; code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
		return nil
	}
	return fmt.Errorf("storage: create bucket %s: %w", bucket, err)
}

func (s *MinIOService) PutObject(ctx context.Context, obj Object) error {
	if err := obj.validate(); err != nil {
		return err
	}

	info, err := s.client.PutObject(ctx, obj.Bucket, obj.Key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		UserMetadata: obj.Metadata,
	})
	if err != nil {
		return fmt.Errorf("storage: put %s/%s: %w", obj.Bucket, obj.Key, err)
	}
	if info.Size != obj.Size {
		return fmt.Errorf("storage: put %s/%s: wrote %d of %d bytes", obj.Bucket, obj.Key, info.Size, obj.Size)
	}
	return nil
}

func (s *MinIOService) ValidateContentType(contentType string) error {
	return validateContentType(contentType)
}

var _ StorageService = (*MinIOService)(nil)
