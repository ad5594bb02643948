// Package storage writes objects to S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
)

// ErrInvalidKey is returned for empty keys or keys that escape their prefix.
var ErrInvalidKey = errors.New("storage: invalid object key")

// Object is a single upload. Metadata keys are sent as user metadata.
type Object struct {
	Bucket      string
	Key         string
	ContentType string
	Body        io.Reader
	Size        int64
	Metadata    map[string]string
}

type StorageService interface {
	PutObject(ctx context.Context, obj Object) error
	EnsureBucketExists(ctx context.Context, bucket string) error
	ValidateContentType(contentType string) error
}

// Config is satisfied by platform/config.Config.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	IsMinIOEnabled() bool
}

var archivableMediaTypes = map[string]struct{}{
	"application/json": {},
	"text/csv":         {},
	"text/plain":       {},
}

func validateContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("parse content type %q: %w", contentType, err)
	}
	if _, ok := archivableMediaTypes[mediaType]; !ok {
		return fmt.Errorf("content type %q is not archivable", mediaType)
	}
	return nil
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

func (o Object) validate() error {
	if o.Bucket == "" {
		return errors.New("storage: bucket is required")
	}
	if err := validateKey(o.Key); err != nil {
		return fmt.Errorf("%w: %q", err, o.Key)
	}
	if o.Body == nil || o.Size < 0 {
		return errors.New("storage: body with known size is required")
	}
	return validateContentType(o.ContentType)
}
