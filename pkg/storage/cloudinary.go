package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/google/uuid"
)

type cloudinaryStore struct {
	folder   string
	uploader *uploader.API
}

// NewCloudinary builds a FileStore from Cloudinary cloud name, API key, and secret.
func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (FileStore, error) {
	cfg, err := cldconfig.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &cloudinaryStore{folder: folder, uploader: up}, nil
}

// Upload stores PDFs and scans as "auto" resources so images keep their transformations.
func (c *cloudinaryStore) Upload(ctx context.Context, file io.Reader, _ int64, fileName, _ string) (string, error) {
	publicID := uuid.NewString()
	if ext := strings.ToLower(path.Ext(fileName)); ext == ".pdf" {
		publicID += ext
	}
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:       c.folder,
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}
