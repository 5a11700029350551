package filestorage

import (
	"context"
	"os"

	"github.com/monjez/monjez/internal/config"
)

type Provider interface {
	GetPublicURL(ctx context.Context) (string, error)
	GetTempUploadURL(ctx context.Context, name string) (string, string, error)
	MoveTempFilePublic(ctx context.Context, source string, dest string) error
	GetPresignedURL(ctx context.Context, path string) (string, error)
}

// NewFromEnv selects the storage driver: MinIO by default, the local
// filesystem when FILE_STORAGE_DRIVER=local.
func NewFromEnv() (Provider, error) {
	if os.Getenv(config.ENV_KEY_FILE_STORAGE_DRIVER) == "local" {
		root := os.Getenv(config.ENV_KEY_LOCAL_STORAGE_PATH)
		if root == "" {
			root = "./storage"
		}
		return NewLocalStorage(root, os.Getenv(config.ENV_KEY_APP_URL))
	}

	return NewMinIOStorage(
		os.Getenv(config.ENV_KEY_MINIO_BUCKET),
		os.Getenv(config.ENV_KEY_MINIO_TEMP_PATH),
		os.Getenv(config.ENV_KEY_MINIO_PUBLIC_PATH),
		os.Getenv(config.ENV_KEY_MINIO_ENDPOINT),
		os.Getenv(config.ENV_KEY_MINIO_ACCESS_KEY),
		os.Getenv(config.ENV_KEY_MINIO_SECRET_KEY),
	), nil
}
