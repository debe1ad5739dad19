package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/http"
)

// FreeImageStore uploads images to the FreeImage.host API as base64 form
// posts.
type FreeImageStore struct {
	endpoint string
	apiKey   string
}

func NewFreeImageStore(endpoint, apiKey string) *FreeImageStore {
	return &FreeImageStore{endpoint: endpoint, apiKey: apiKey}
}

type freeImageResponse struct {
	StatusCode int `json:"status_code"`
	Image      struct {
		URL string `json:"url"`
	} `json:"image"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *FreeImageStore) Store(ctx context.Context, name, _ string, data []byte) (string, error) {
	form := url.Values{
		"key":    {s.apiKey},
		"action": {"upload"},
		"source": {base64.StdEncoding.EncodeToString(data)},
		"format": {"json"},
	}

	resp, err := http.Post(s.endpoint).
		WithContext(ctx).
		Form(form).
		Timeout(30*time.Second).
		Retry(2, time.Second).
		Send()
	if err != nil {
		return "", fmt.Errorf("storage/freeimage: upload %s: %w", name, err)
	}

	var out freeImageResponse
	if err := resp.JSON(&out); err != nil {
		return "", fmt.Errorf("storage/freeimage: upload %s: %w", name, err)
	}
	if !resp.OK() {
		msg := out.Error.Message
		if msg == "" {
			msg = resp.Text()
		}
		return "", fmt.Errorf("storage/freeimage: upload %s: status %d: %s", name, resp.StatusCode, msg)
	}
	if out.Image.URL == "" {
		return "", errors.New("storage/freeimage: response carried no image url")
	}
	return out.Image.URL, nil
}
