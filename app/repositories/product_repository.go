package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

// ProductListKey caches the full catalogue listing.
const ProductListKey = "products:all"

const productListTTL = time.Minute

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// All returns the whole catalogue, served from Redis for up to a minute.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := orm.From(ctx, r.db).Model(&models.Product{}).Order("id").
		Cache(ProductListKey, productListTTL, &products)
	return products, err
}

func (r *ProductRepository) FindByID(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := orm.From(ctx, r.db).Model(&models.Product{}).Where("id = ?", id).First(&p)
	return p, err
}

// ByCategory matches the category exactly.
func (r *ProductRepository) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	products := []models.Product{}
	err := orm.From(ctx, r.db).Model(&models.Product{}).
		Where("category = ?", category).
		Order("id").
		Get(&products)
	return products, err
}

// Search is a case-insensitive substring match on name or description.
func (r *ProductRepository) Search(ctx context.Context, query string) ([]models.Product, error) {
	like := "%" + strings.ToLower(query) + "%"
	products := []models.Product{}
	err := orm.From(ctx, r.db).Model(&models.Product{}).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).
		Order("id").
		Get(&products)
	return products, err
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := orm.Translate(r.db.WithContext(ctx).Create(p).Error); err != nil {
		return err
	}
	orm.Forget(ctx, ProductListKey)
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	if err := orm.Translate(r.db.WithContext(ctx).Save(p).Error); err != nil {
		return err
	}
	orm.Forget(ctx, ProductListKey)
	return nil
}

// Delete refuses with ErrReferenced while any order item points at the
// product; cart lines cascade.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	sold, err := orm.From(ctx, r.db).Model(&models.OrderItem{}).Where("product_id = ?", id).Exists()
	if err != nil {
		return err
	}
	if sold {
		return ErrReferenced
	}

	n, err := orm.From(ctx, r.db).Where("id = ?", id).Delete(&models.Product{})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	orm.Forget(ctx, ProductListKey)
	return nil
}
