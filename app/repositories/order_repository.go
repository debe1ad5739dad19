package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (models.CustomerOrder, error) {
	var o models.CustomerOrder
	err := orm.From(ctx, r.db).Model(&models.CustomerOrder{}).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&o)
	return o, err
}

func (r *OrderRepository) FindByPaymentIntent(ctx context.Context, intentID string) (models.CustomerOrder, error) {
	var o models.CustomerOrder
	err := orm.From(ctx, r.db).Model(&models.CustomerOrder{}).
		Preload("Items.Product").
		Where("payment_intent_id = ?", intentID).
		First(&o)
	return o, err
}

// ForUser returns the user's orders, oldest first.
func (r *OrderRepository) ForUser(ctx context.Context, userID uint) ([]models.CustomerOrder, error) {
	orders := []models.CustomerOrder{}
	err := orm.From(ctx, r.db).Model(&models.CustomerOrder{}).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("id").
		Get(&orders)
	return orders, err
}

func (r *OrderRepository) CountByPaymentIntent(ctx context.Context, intentID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CustomerOrder{}).
		Where("payment_intent_id = ?", intentID).
		Count(&n).Error
	return n, orm.Translate(err)
}

// Save inserts or updates the order row and replaces its items with
// o.Items.
func (r *OrderRepository) Save(ctx context.Context, o *models.CustomerOrder) error {
	db := r.db.WithContext(ctx)

	items := o.Items
	o.Items = nil
	if err := db.Omit("User").Save(o).Error; err != nil {
		o.Items = items
		return orm.Translate(err)
	}

	if err := db.Where("order_id = ?", o.ID).Delete(&models.OrderItem{}).Error; err != nil {
		o.Items = items
		return orm.Translate(err)
	}
	for i := range items {
		items[i].ID = 0
		items[i].OrderID = o.ID
	}
	if len(items) > 0 {
		if err := db.Omit("Product").Create(&items).Error; err != nil {
			o.Items = items
			return orm.Translate(err)
		}
	}

	o.Items = items
	return nil
}

// UpdateStatus sets status and shipment status in one write.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, status, shipment string) error {
	err := r.db.WithContext(ctx).Model(&models.CustomerOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "shipment_status": shipment}).Error
	return orm.Translate(err)
}
