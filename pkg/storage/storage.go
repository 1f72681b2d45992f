package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"medlink/config"

	"github.com/google/uuid"
)

// FileStore uploads document files and returns a URL clients can fetch them from.
type FileStore interface {
	Upload(ctx context.Context, file io.Reader, size int64, fileName, contentType string) (string, error)
}

// New returns the store selected by STORAGE_DRIVER, or nil for "none".
func New(ctx context.Context, cfg *config.Config) (FileStore, error) {
	switch cfg.Storage.Driver {
	case "", "none":
		return nil, nil
	case "cloudinary":
		return NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret, cfg.Storage.Folder)
	case "minio":
		return NewMinio(ctx, cfg.Minio, cfg.Storage.Folder)
	}
	return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
}

// ObjectName keeps the extension of fileName behind a random id so uploads never collide.
func ObjectName(folder, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	name := uuid.NewString() + ext
	if folder == "" {
		return name
	}
	return strings.Trim(folder, "/") + "/" + name
}
