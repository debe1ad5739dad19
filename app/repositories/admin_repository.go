package repositories

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (models.Admin, error) {
	var admin models.Admin
	err := orm.From(ctx, r.db).Model(&models.Admin{}).
		Where("username = ?", strings.ToLower(username)).
		First(&admin)
	return admin, err
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (models.Admin, error) {
	var admin models.Admin
	err := orm.From(ctx, r.db).Model(&models.Admin{}).
		Where("email = ?", strings.ToLower(email)).
		First(&admin)
	return admin, err
}

func (r *AdminRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return orm.From(ctx, r.db).Model(&models.Admin{}).Where("username = ?", strings.ToLower(username)).Exists()
}

func (r *AdminRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return orm.From(ctx, r.db).Model(&models.Admin{}).Where("email = ?", strings.ToLower(email)).Exists()
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return orm.Translate(r.db.WithContext(ctx).Create(admin).Error)
}
