package repositories

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

type PasswordResetTokenRepository struct {
	db *gorm.DB
}

func NewPasswordResetTokenRepository(db *gorm.DB) *PasswordResetTokenRepository {
	return &PasswordResetTokenRepository{db: db}
}

// FindByToken loads the token with its user.
func (r *PasswordResetTokenRepository) FindByToken(ctx context.Context, token string) (models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := orm.From(ctx, r.db).Model(&models.PasswordResetToken{}).
		Preload("User").
		Where("token = ?", token).
		First(&t)
	return t, err
}

func (r *PasswordResetTokenRepository) FindByUser(ctx context.Context, userID uint) (models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := orm.From(ctx, r.db).Model(&models.PasswordResetToken{}).Where("user_id = ?", userID).First(&t)
	return t, err
}

func (r *PasswordResetTokenRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	return orm.Translate(r.db.WithContext(ctx).Omit("User").Create(t).Error)
}

func (r *PasswordResetTokenRepository) Delete(ctx context.Context, id uint) error {
	_, err := orm.From(ctx, r.db).Where("id = ?", id).Delete(&models.PasswordResetToken{})
	return err
}

func (r *PasswordResetTokenRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	return orm.From(ctx, r.db).Where("user_id = ?", userID).Delete(&models.PasswordResetToken{})
}

// DeleteExpired removes every token whose expiry is before now.
func (r *PasswordResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return orm.From(ctx, r.db).Where("expiry_date < ?", now).Delete(&models.PasswordResetToken{})
}
