package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shopspring/decimal"
)

// ProductInput is the admin product form. Image is optional on update.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string

	ImageName        string
	ImageContentType string
	Image            []byte
}

// ProductPatch carries only the fields an update should change.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string

	ImageName        string
	ImageContentType string
	Image            []byte
}

type ProductService struct {
	store  *repositories.Store
	images storage.ImageStore
	now    func() time.Time
}

func NewProductService(store *repositories.Store, images storage.ImageStore) *ProductService {
	return &ProductService{store: store, images: images, now: time.Now}
}

func (s *ProductService) All(ctx context.Context) ([]models.Product, error) {
	products, err := s.store.Products.All(ctx)
	if err != nil {
		return nil, internal("Error fetching products", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (models.Product, error) {
	p, err := s.store.Products.FindByID(ctx, id)
	if err != nil {
		return models.Product{}, lookup(err, "Product not found with id: %d", id)
	}
	return p, nil
}

func (s *ProductService) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.store.Products.ByCategory(ctx, category)
	if err != nil {
		return nil, internal("Error fetching products", err)
	}
	return products, nil
}

func (s *ProductService) Search(ctx context.Context, query string) ([]models.Product, error) {
	products, err := s.store.Products.Search(ctx, query)
	if err != nil {
		return nil, internal("Error searching products", err)
	}
	return products, nil
}

// Create uploads the image and saves the product with its URL.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	if len(in.Image) == 0 {
		return models.Product{}, validation("Please select a file to upload.")
	}
	if strings.TrimSpace(in.Name) == "" {
		return models.Product{}, validation("Product name is required.")
	}
	if strings.TrimSpace(in.Description) == "" {
		return models.Product{}, validation("Description is required.")
	}
	if !in.Price.IsPositive() {
		return models.Product{}, validation("Price must be greater than 0.")
	}
	if strings.TrimSpace(in.Category) == "" {
		return models.Product{}, validation("Category is required.")
	}

	url, err := s.upload(ctx, in.ImageName, in.ImageContentType, in.Image)
	if err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price.Round(2),
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    url,
	}
	if err := s.store.Products.Create(ctx, &p); err != nil {
		return models.Product{}, internal("Error saving product", err)
	}

	logger.WithCtx(ctx).Info("product: created", "product_id", p.ID, "name", p.Name)
	return p, nil
}

// Update applies a partial update; a new image replaces the URL.
func (s *ProductService) Update(ctx context.Context, id uint, patch ProductPatch) (models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return models.Product{}, validation("Product name is required.")
		}
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		if !patch.Price.IsPositive() {
			return models.Product{}, validation("Price must be greater than 0.")
		}
		p.Price = patch.Price.Round(2)
	}
	if patch.Category != nil {
		if strings.TrimSpace(*patch.Category) == "" {
			return models.Product{}, validation("Category is required.")
		}
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if len(patch.Image) > 0 {
		url, err := s.upload(ctx, patch.ImageName, patch.ImageContentType, patch.Image)
		if err != nil {
			return models.Product{}, err
		}
		p.ImageURL = url
	}

	if err := s.store.Products.Update(ctx, &p); err != nil {
		return models.Product{}, internal("Error saving product", err)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	if err := s.store.Products.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrReferenced) {
			return conflict("Product has existing orders and cannot be deleted", err)
		}
		return lookup(err, "Product not found with id: %d", id)
	}
	logger.WithCtx(ctx).Info("product: deleted", "product_id", id)
	return nil
}

func (s *ProductService) upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if s.images == nil {
		return "", internal("Failed to upload file", errors.New("no image store configured"))
	}
	key := storage.ObjectKey(filename, s.now())
	url, err := s.images.Store(ctx, key, contentType, data)
	if err != nil {
		return "", internal("Failed to upload file", err)
	}
	return url, nil
}
