package storage

import (
	"context"
	"fmt"

	"github.com/VtlBz/foodgram-project/internal/config"
)

// New returns the image store selected by STORAGE_TYPE.
func New(ctx context.Context, cfg *config.Config) (ImageStore, error) {
	switch cfg.StorageType {
	case "local", "":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
}
