// Package storage uploads product images to the configured provider.
//
// Four adapters implement ImageStore:
//   - "local"      files under STORAGE_LOCAL_ROOT, served from STORAGE_URL
//   - "s3"         S3-compatible object storage (AWS S3, MinIO, R2)
//   - "cloudinary" Cloudinary media library
//   - "freeimage"  the FreeImage.host upload API
//
// Boot once, then store through the default adapter:
//
//	storage.Connect(ctx)
//	url, err := storage.Default().Store(ctx, storage.ObjectKey("shoe.png", time.Now()), "image/png", data)
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ImageStore persists an image and returns the public reference (URL) that
// is saved on the product.
type ImageStore interface {
	Store(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// ObjectKey builds the storage key for an uploaded file:
// products/<unix-millis>_<base filename>.
func ObjectKey(filename string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.ReplaceAll(base, " ", "_")
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("products/%d_%s", now.UnixMilli(), base)
}
