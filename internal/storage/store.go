// Package storage persists uploaded images on local disk or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"wanderlog/internal/config"
)

// ErrForeignReference is returned by Delete for references the store did not issue.
var ErrForeignReference = errors.New("reference does not belong to this store")

// Store saves objects under a key and returns the public reference that is
// persisted on the owning row.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// New builds the Store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.UploadDir, cfg.PublicUploadPath)
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// cleanKey rejects keys that would escape the store's namespace.
func cleanKey(key string) (string, error) {
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != key || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}

// keyFromRef strips base from ref and validates the remainder.
func keyFromRef(base, ref string) (string, error) {
	base = strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(ref, base) {
		return "", ErrForeignReference
	}
	return cleanKey(strings.TrimPrefix(ref, base))
}
