package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) FindByID(ctx context.Context, id uint) (models.Cart, error) {
	var c models.Cart
	err := orm.From(ctx, r.db).Model(&models.Cart{}).Preload("Product").Where("id = ?", id).First(&c)
	return c, err
}

func (r *CartRepository) FindByUserAndProduct(ctx context.Context, userID, productID uint) (models.Cart, error) {
	var c models.Cart
	err := orm.From(ctx, r.db).Model(&models.Cart{}).
		Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&c)
	return c, err
}

// ForUser returns the user's lines with their products loaded.
func (r *CartRepository) ForUser(ctx context.Context, userID uint) ([]models.Cart, error) {
	items := []models.Cart{}
	err := orm.From(ctx, r.db).Model(&models.Cart{}).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id").
		Get(&items)
	return items, err
}

func (r *CartRepository) Save(ctx context.Context, c *models.Cart) error {
	return orm.Translate(r.db.WithContext(ctx).Omit("User", "Product").Save(c).Error)
}

func (r *CartRepository) Delete(ctx context.Context, id uint) error {
	_, err := orm.From(ctx, r.db).Where("id = ?", id).Delete(&models.Cart{})
	return err
}

// Clear empties the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID uint) (int64, error) {
	return orm.From(ctx, r.db).Where("user_id = ?", userID).Delete(&models.Cart{})
}
