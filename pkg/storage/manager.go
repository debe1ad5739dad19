package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

var (
	managerMu    sync.RWMutex
	stores       = map[string]ImageStore{}
	defaultStore = "local"
)

// Connect boots every adapter that has configuration and selects
// IMAGE_STORE as the default. Adapters that fail to boot are logged and
// skipped; local is always available.
func Connect(ctx context.Context) {
	Register("local", NewLocalStore(config.StorageLocalRoot(), config.StorageURL()))

	if config.StorageS3Bucket() != "" {
		s, err := NewS3Store(ctx, S3Config{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
		if err != nil {
			logger.Warn("storage: s3 disabled", "error", err)
		} else {
			Register("s3", s)
		}
	}

	if config.CloudinaryCloudName() != "" {
		s, err := NewCloudinaryStore(config.CloudinaryCloudName(), config.CloudinaryAPIKey(), config.CloudinaryAPISecret())
		if err != nil {
			logger.Warn("storage: cloudinary disabled", "error", err)
		} else {
			Register("cloudinary", s)
		}
	}

	if config.FreeImageAPIKey() != "" {
		Register("freeimage", NewFreeImageStore(config.FreeImageEndpoint(), config.FreeImageAPIKey()))
	}

	want := config.ImageStore()
	if _, err := Use(want); err != nil {
		logger.Warn("storage: falling back to local", "requested", want, "error", err)
		want = "local"
	}

	managerMu.Lock()
	defaultStore = want
	managerMu.Unlock()
}

// Register plugs in an adapter under name.
func Register(name string, s ImageStore) {
	managerMu.Lock()
	stores[name] = s
	managerMu.Unlock()
}

// Use returns the named adapter.
func Use(name string) (ImageStore, error) {
	managerMu.RLock()
	defer managerMu.RUnlock()

	s, ok := stores[name]
	if !ok {
		return nil, fmt.Errorf("storage: %q is not configured", name)
	}
	return s, nil
}

// Default returns the adapter selected by Connect.
func Default() ImageStore {
	managerMu.RLock()
	name := defaultStore
	managerMu.RUnlock()

	if s, err := Use(name); err == nil {
		return s
	}
	return NewLocalStore(config.StorageLocalRoot(), config.StorageURL())
}
