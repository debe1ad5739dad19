package storage_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	assert.Equal(t, "products/1700000000123_shoe.png", storage.ObjectKey("shoe.png", at))
	assert.Equal(t, "products/1700000000123_shoe.png", storage.ObjectKey(`C:\Users\me\shoe.png`, at))
	assert.Equal(t, "products/1700000000123_red_shoe.png", storage.ObjectKey("red shoe.png", at))
}

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	s := storage.NewLocalStore(root, "http://cdn.test/storage/")

	ref, err := s.Store(context.Background(), "products/1_a.png", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/storage/products/1_a.png", ref)

	data, err := os.ReadFile(filepath.Join(root, "products", "1_a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestLocalStoreRejectsEscape(t *testing.T) {
	s := storage.NewLocalStore(t.TempDir(), "http://cdn.test")

	_, err := s.Store(context.Background(), "../../etc/passwd", "", []byte("x"))
	assert.Error(t, err)
}

func TestFreeImageStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "k123", r.PostForm.Get("key"))
		assert.Equal(t, "upload", r.PostForm.Get("action"))
		assert.Equal(t, "json", r.PostForm.Get("format"))
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img")), r.PostForm.Get("source"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status_code":200,"image":{"url":"https://iili.io/abc.png"}}`))
	}))
	defer srv.Close()

	ref, err := storage.NewFreeImageStore(srv.URL, "k123").Store(context.Background(), "products/1_a.png", "image/png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "https://iili.io/abc.png", ref)
}

func TestFreeImageStoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status_code":400,"error":{"message":"Invalid API key"}}`))
	}))
	defer srv.Close()

	_, err := storage.NewFreeImageStore(srv.URL, "bad").Store(context.Background(), "a.png", "", []byte("img"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API key")
}

func TestManagerFallsBackToLocal(t *testing.T) {
	storage.Register("local", storage.NewLocalStore(t.TempDir(), "http://x"))

	_, err := storage.Use("nope")
	assert.Error(t, err)
	assert.NotNil(t, storage.Default())
}
