package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore uploads images to a Cloudinary cloud.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage/cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (s *CloudinaryStore) Store(ctx context.Context, name, _ string, data []byte) (string, error) {
	// Cloudinary appends the format itself.
	publicID := strings.TrimSuffix(name, path.Ext(name))

	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID: publicID,
	})
	if err != nil {
		return "", fmt.Errorf("storage/cloudinary: upload %s: %w", name, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("storage/cloudinary: upload %s: %s", name, res.Error.Message)
	}
	return res.SecureURL, nil
}
