package repositories

import (
	"context"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

type ContactMessageRepository struct {
	db *gorm.DB
}

func NewContactMessageRepository(db *gorm.DB) *ContactMessageRepository {
	return &ContactMessageRepository{db: db}
}

func (r *ContactMessageRepository) Create(ctx context.Context, m *models.ContactMessage) error {
	return orm.Translate(r.db.WithContext(ctx).Create(m).Error)
}

func (r *ContactMessageRepository) Recent(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	msgs := []models.ContactMessage{}
	err := orm.From(ctx, r.db).Model(&models.ContactMessage{}).Order("id desc").Limit(limit).Get(&msgs)
	return msgs, err
}
